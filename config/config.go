package config

import (
	"log"
	"os"
	"time"

	"booster-bot/model"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load resolves configuration from the environment plus the optional
// settings file. Secrets only ever come from the environment.
func Load() (*model.Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: .env file not found, relying on environment variables")
	}

	token := os.Getenv("BOT_TOKEN")
	if token == "" {
		log.Fatal("Error: BOT_TOKEN environment variable not set")
	}

	appID := os.Getenv("APP_ID")
	if appID == "" {
		log.Fatal("Error: APP_ID environment variable not set")
	}

	logChannelID := os.Getenv("LOG_CHANNEL_ID")
	if logChannelID == "" {
		log.Println("Warning: LOG_CHANNEL_ID not set, operational logging to Discord is disabled")
	}

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "data/booster.db"
	}

	tuning, err := loadTuning(os.Getenv("SETTINGS_PATH"))
	if err != nil {
		return nil, err
	}

	return &model.Config{
		BotToken:     token,
		AppID:        appID,
		LogChannelID: logChannelID,
		DBPath:       dbPath,
		Tuning:       tuning,
	}, nil
}

// loadTuning reads the optional tunables file. Missing file or keys
// fall back to defaults.
func loadTuning(path string) (model.Tuning, error) {
	v := viper.New()
	v.SetDefault("cache_ttl", 5*time.Minute)
	v.SetDefault("color_cooldown", time.Minute)
	v.SetDefault("icon_cooldown", time.Minute)
	v.SetDefault("share_cooldown", 30*time.Second)
	v.SetDefault("settings_cooldown", time.Minute)
	v.SetDefault("mutator_timeout", 5*time.Second)
	v.SetDefault("cleanup_interval", 6*time.Hour)
	v.SetDefault("limiter_sweep", time.Hour)

	if path == "" {
		path = "data/settings.yaml"
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok || os.IsNotExist(err) {
			log.Printf("Warning: settings file not found at %s, using defaults", path)
		} else {
			return model.Tuning{}, err
		}
	}

	var tuning model.Tuning
	if err := v.Unmarshal(&tuning); err != nil {
		return model.Tuning{}, err
	}
	return tuning, nil
}
