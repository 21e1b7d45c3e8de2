package utils

import (
	"log"

	"booster-bot/model"

	"github.com/bwmarrin/discordgo"
)

const (
	ColorGreen  = 3066993
	ColorOrange = 15105570
	ColorRed    = 15158332
	ColorBlue   = 3447003
)

// ChannelNotifier posts log embeds to Discord channels. It satisfies
// model.Notifier. Delivery failures are logged and dropped so that a
// broken log channel never fails the operation being logged.
type ChannelNotifier struct {
	Session *discordgo.Session
}

func NewChannelNotifier(s *discordgo.Session) *ChannelNotifier {
	return &ChannelNotifier{Session: s}
}

func (n *ChannelNotifier) SendLog(channelID string, entry model.LogEntry) {
	if channelID == "" {
		return
	}

	fields := make([]*discordgo.MessageEmbedField, 0, len(entry.Fields))
	for _, f := range entry.Fields {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:   f.Name,
			Value:  f.Value,
			Inline: true,
		})
	}

	color := entry.Color
	if color == 0 {
		color = ColorBlue
	}

	_, err := n.Session.ChannelMessageSendEmbed(channelID, &discordgo.MessageEmbed{
		Title:       entry.Title,
		Description: entry.Description,
		Color:       color,
		Fields:      fields,
	})
	if err != nil {
		log.Printf("Failed to send log embed to channel %s: %v", channelID, err)
	}
}
