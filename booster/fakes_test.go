package booster

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"booster-bot/model"
	"booster-bot/utils/database"
	"booster-bot/utils/ratelimit"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

// mutatorCall records one Discord mutation issued by the engine.
type mutatorCall struct {
	Op      string
	GuildID string
	UserID  string
	RoleID  string
	Name    string
}

type fakeMutator struct {
	mu     sync.Mutex
	calls  []mutatorCall
	nextID int
	// failOps makes the named operations return an error.
	failOps map[string]error
}

func newFakeMutator() *fakeMutator {
	return &fakeMutator{failOps: make(map[string]error)}
}

func (f *fakeMutator) record(c mutatorCall) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
	return f.failOps[c.Op]
}

func (f *fakeMutator) callsFor(op string) []mutatorCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []mutatorCall
	for _, c := range f.calls {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeMutator) CreateRole(ctx context.Context, guildID, name string, color int, baseRoleID string) (string, error) {
	f.mu.Lock()
	f.nextID++
	id := fmt.Sprintf("role-%d", f.nextID)
	f.mu.Unlock()
	if err := f.record(mutatorCall{Op: "create", GuildID: guildID, Name: name, RoleID: id}); err != nil {
		return "", err
	}
	return id, nil
}

func (f *fakeMutator) EditRole(ctx context.Context, guildID, roleID, name string, color int) error {
	return f.record(mutatorCall{Op: "edit", GuildID: guildID, RoleID: roleID, Name: name})
}

func (f *fakeMutator) EditRoleIcon(ctx context.Context, guildID, roleID, iconURL string) error {
	return f.record(mutatorCall{Op: "icon", GuildID: guildID, RoleID: roleID, Name: iconURL})
}

func (f *fakeMutator) DeleteRole(ctx context.Context, guildID, roleID string) error {
	return f.record(mutatorCall{Op: "delete", GuildID: guildID, RoleID: roleID})
}

func (f *fakeMutator) AssignRole(ctx context.Context, guildID, userID, roleID string) error {
	return f.record(mutatorCall{Op: "assign", GuildID: guildID, UserID: userID, RoleID: roleID})
}

func (f *fakeMutator) RevokeRole(ctx context.Context, guildID, userID, roleID string) error {
	return f.record(mutatorCall{Op: "revoke", GuildID: guildID, UserID: userID, RoleID: roleID})
}

func (f *fakeMutator) SetNickname(ctx context.Context, guildID, userID, nickname string) error {
	return f.record(mutatorCall{Op: "nickname", GuildID: guildID, UserID: userID, Name: nickname})
}

type fakeOracle struct {
	mu           sync.Mutex
	boosters     map[string]bool
	members      map[string]bool
	admins       map[string]bool
	memberRole   map[string][]string
	guildRoles   map[string]bool
	managedRoles map[string]bool
}

func newFakeOracle() *fakeOracle {
	return &fakeOracle{
		boosters:     make(map[string]bool),
		members:      make(map[string]bool),
		admins:       make(map[string]bool),
		memberRole:   make(map[string][]string),
		guildRoles:   make(map[string]bool),
		managedRoles: make(map[string]bool),
	}
}

func (f *fakeOracle) IsBooster(ctx context.Context, guildID, userID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.boosters[userID], nil
}

func (f *fakeOracle) MemberExists(ctx context.Context, guildID, userID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.members[userID], nil
}

func (f *fakeOracle) HasManageGuild(ctx context.Context, guildID, userID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.admins[userID], nil
}

func (f *fakeOracle) MemberRoleIDs(ctx context.Context, guildID, userID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.memberRole[userID], nil
}

func (f *fakeOracle) RoleManaged(ctx context.Context, guildID, roleID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.managedRoles[roleID], nil
}

func (f *fakeOracle) GuildRoleIDs(ctx context.Context, guildID string) (map[string]bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]bool, len(f.guildRoles))
	for k, v := range f.guildRoles {
		out[k] = v
	}
	return out, nil
}

func (f *fakeOracle) BoosterIDs(ctx context.Context, guildID string) (map[string]bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]bool, len(f.boosters))
	for k, v := range f.boosters {
		out[k] = v
	}
	return out, nil
}

// addBooster registers a member who is boosting.
func (f *fakeOracle) addBooster(userID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.boosters[userID] = true
	f.members[userID] = true
}

func (f *fakeOracle) addMember(userID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.members[userID] = true
}

func (f *fakeOracle) addAdmin(userID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.admins[userID] = true
	f.members[userID] = true
}

func (f *fakeOracle) addGuildRole(roleID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.guildRoles[roleID] = true
}

func (f *fakeOracle) addManagedRole(roleID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.managedRoles[roleID] = true
}

func (f *fakeOracle) removeGuildRole(roleID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.guildRoles, roleID)
}

func (f *fakeOracle) removeBooster(userID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.boosters, userID)
}

func (f *fakeOracle) removeMember(userID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.members, userID)
	delete(f.boosters, userID)
}

type fakeNotifier struct {
	mu      sync.Mutex
	entries []model.LogEntry
}

func (f *fakeNotifier) SendLog(channelID string, entry model.LogEntry) {
	if channelID == "" {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, entry)
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries)
}

type testEnv struct {
	svc      *Service
	db       *sqlx.DB
	mutator  *fakeMutator
	oracle   *fakeOracle
	notifier *fakeNotifier
	limiter  *ratelimit.CooldownLimiter
}

func newTestEnv(t *testing.T, cfg Config) *testEnv {
	t.Helper()

	db, err := sqlx.Connect("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.CreateTables(db))

	mutator := newFakeMutator()
	oracle := newFakeOracle()
	notifier := &fakeNotifier{}
	limiter := ratelimit.New()
	cache := NewSettingsCache(db, 5*time.Minute)

	return &testEnv{
		svc:      NewService(db, cache, limiter, mutator, oracle, notifier, cfg),
		db:       db,
		mutator:  mutator,
		oracle:   oracle,
		notifier: notifier,
		limiter:  limiter,
	}
}
