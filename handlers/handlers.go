package handlers

import (
	"context"
	"log"

	"booster-bot/booster"
	"booster-bot/bot"

	"github.com/bwmarrin/discordgo"
)

// Register wires the gateway event handlers and the command dispatch.
func Register(b *bot.Bot) {
	b.Session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		log.Printf("Logged in as: %v#%v", r.User.Username, r.User.Discriminator)
	})

	b.Session.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		if i.Type != discordgo.InteractionApplicationCommand {
			return
		}
		switch i.ApplicationCommandData().Name {
		case "boosterrole":
			HandleBoosterRole(s, i, b)
		case "settings":
			HandleSettings(s, i, b)
		case "botinfo":
			SystemInfoHandler(s, i, b)
		}
	})

	// Member events for the same (guild, user) must apply in order,
	// so they go through the keyed dispatcher.
	b.Session.AddHandler(func(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
		username := m.User.Username
		b.Dispatcher.Enqueue(booster.EventKey(m.GuildID, m.User.ID), func() {
			if err := b.Service.HandleMemberJoin(context.Background(), m.GuildID, m.User.ID, username); err != nil {
				log.Printf("Member join handling failed for %s in guild %s: %v", m.User.ID, m.GuildID, err)
			}
		})
	})

	b.Session.AddHandler(func(s *discordgo.Session, m *discordgo.GuildMemberRemove) {
		username := m.User.Username
		b.Dispatcher.Enqueue(booster.EventKey(m.GuildID, m.User.ID), func() {
			if err := b.Service.HandleMemberLeave(context.Background(), m.GuildID, m.User.ID, username); err != nil {
				log.Printf("Member leave handling failed for %s in guild %s: %v", m.User.ID, m.GuildID, err)
			}
		})
	})

	b.Session.AddHandler(func(s *discordgo.Session, m *discordgo.GuildMemberUpdate) {
		boosting := m.PremiumSince != nil
		b.Dispatcher.Enqueue(booster.EventKey(m.GuildID, m.User.ID), func() {
			var err error
			if boosting {
				err = b.Service.HandleBoostAdded(context.Background(), m.GuildID, m.User.ID)
			} else {
				err = b.Service.HandleBoostRemoved(context.Background(), m.GuildID, m.User.ID)
			}
			if err != nil {
				log.Printf("Boost transition handling failed for %s in guild %s: %v", m.User.ID, m.GuildID, err)
			}
		})
	})

	b.Session.AddHandler(func(s *discordgo.Session, e *discordgo.GuildRoleDelete) {
		b.Dispatcher.Enqueue(booster.EventKey(e.GuildID, "role:"+e.RoleID), func() {
			if err := b.Service.HandleRoleDeleted(context.Background(), e.GuildID, e.RoleID); err != nil {
				log.Printf("Role delete handling failed for role %s in guild %s: %v", e.RoleID, e.GuildID, err)
			}
		})
	})
}
