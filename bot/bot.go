package bot

import (
	"log"
	"sync/atomic"

	"booster-bot/booster"
	"booster-bot/commands"
	"booster-bot/model"
	"booster-bot/utils"
	"booster-bot/utils/ratelimit"

	"github.com/bwmarrin/discordgo"
	"github.com/jmoiron/sqlx"
)

type Bot struct {
	Session            *discordgo.Session
	DB                 *sqlx.DB
	Service            *booster.Service
	Dispatcher         *booster.Dispatcher
	Limiter            *ratelimit.CooldownLimiter
	RegisteredCommands []*discordgo.ApplicationCommand

	config    atomic.Value // *model.Config
	scheduler *Scheduler
}

func New(cfg *model.Config, db *sqlx.DB) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		return nil, err
	}
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMembers
	dg.StateEnabled = false

	limiter := ratelimit.New()
	adapter := newDiscordAdapter(dg)
	cache := booster.NewSettingsCache(db, cfg.Tuning.CacheTTL)
	service := booster.NewService(db, cache, limiter, adapter, adapter, utils.NewChannelNotifier(dg), booster.Config{
		ColorCooldown:    cfg.Tuning.ColorCooldown,
		IconCooldown:     cfg.Tuning.IconCooldown,
		ShareCooldown:    cfg.Tuning.ShareCooldown,
		SettingsCooldown: cfg.Tuning.SettingsCooldown,
		MutatorTimeout:   cfg.Tuning.MutatorTimeout,
	})

	b := &Bot{
		Session:    dg,
		DB:         db,
		Service:    service,
		Dispatcher: booster.NewDispatcher(),
		Limiter:    limiter,
	}
	b.config.Store(cfg)
	b.scheduler = NewScheduler(b)
	return b, nil
}

func (b *Bot) GetConfig() *model.Config {
	return b.config.Load().(*model.Config)
}

// RegisterCommands bulk-overwrites the global command set.
func (b *Bot) RegisterCommands() {
	cmds := commands.GenerateCommands()
	log.Printf("Registering %d application commands...", len(cmds))
	registered, err := b.Session.ApplicationCommandBulkOverwrite(b.GetConfig().AppID, "", cmds)
	if err != nil {
		log.Printf("Cannot register application commands: %v", err)
		return
	}
	b.RegisteredCommands = registered
}

func (b *Bot) Close() {
	log.Println("Gracefully shutting down.")
	b.scheduler.Stop()
	b.Dispatcher.Wait()
	b.Session.Close()
}
