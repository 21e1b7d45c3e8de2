package model

import "time"

// Config holds process-level configuration resolved at startup.
// Secrets come from the environment, tunables from data/settings.yaml.
type Config struct {
	BotToken     string
	AppID        string
	LogChannelID string
	DBPath       string
	Tuning       Tuning
}

// Tuning groups the knobs that have sane defaults and rarely change.
type Tuning struct {
	CacheTTL         time.Duration `mapstructure:"cache_ttl"`
	ColorCooldown    time.Duration `mapstructure:"color_cooldown"`
	IconCooldown     time.Duration `mapstructure:"icon_cooldown"`
	ShareCooldown    time.Duration `mapstructure:"share_cooldown"`
	SettingsCooldown time.Duration `mapstructure:"settings_cooldown"`
	MutatorTimeout   time.Duration `mapstructure:"mutator_timeout"`
	CleanupInterval  time.Duration `mapstructure:"cleanup_interval"`
	LimiterSweep     time.Duration `mapstructure:"limiter_sweep"`
}
