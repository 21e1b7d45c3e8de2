package bot

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"booster-bot/model"
	"booster-bot/utils"
)

func (b *Bot) Run() {
	if err := b.Session.Open(); err != nil {
		log.Fatalf("Error opening connection: %v", err)
	}

	b.RegisterCommands()
	b.scheduler.Start()

	fmt.Println("Bot is now running. Press CTRL-C to exit.")
	notifier := utils.NewChannelNotifier(b.Session)
	notifier.SendLog(b.GetConfig().LogChannelID, model.LogEntry{
		Title: "Startup",
		Color: utils.ColorGreen,
		Fields: []model.LogField{
			{Name: "Status", Value: "Bot has started successfully."},
		},
	})

	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc
}
