package handlers

import (
	"context"
	"fmt"
	"strings"

	"booster-bot/bot"
	"booster-bot/utils"

	"github.com/bwmarrin/discordgo"
)

// HandleSettings routes the /settings subcommands.
func HandleSettings(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if i.Member == nil {
		utils.SendErrorResponse(s, i, "This command only works inside a server.")
		return
	}

	guildID := i.GuildID
	userID := i.Member.User.ID
	sub := i.ApplicationCommandData().Options[0]
	ctx := context.Background()

	switch sub.Name {
	case "staff":
		handleStaffGroup(s, i, b, guildID, userID, sub)
	case "autonick":
		opts := optionMap(sub.Options)
		template := stringOption(opts, "template")
		if err := b.Service.SetAutoNickname(ctx, guildID, userID, template); err != nil {
			respondError(s, i, err)
			return
		}
		if template == "" {
			utils.SendSimpleResponse(s, i, "Automatic nicknames disabled.")
		} else {
			utils.SendSimpleResponse(s, i, fmt.Sprintf("New members will be nicknamed `%s`.", template))
		}
	case "joinlogs":
		opts := optionMap(sub.Options)
		channelID := ""
		if opt, ok := opts["channel"]; ok {
			channelID = opt.ChannelValue(nil).ID
		}
		if err := b.Service.SetJoinLogChannel(ctx, guildID, userID, channelID); err != nil {
			respondError(s, i, err)
			return
		}
		if channelID == "" {
			utils.SendSimpleResponse(s, i, "Join and leave logs disabled.")
		} else {
			utils.SendSimpleResponse(s, i, fmt.Sprintf("Join and leave logs go to <#%s>.", channelID))
		}
	case "premiumrole":
		handleRoleSetting(s, i, b, guildID, userID, sub, "premium role", b.Service.SetPremiumRole)
	case "baserole":
		handleRoleSetting(s, i, b, guildID, userID, sub, "base role", b.Service.SetBaseRole)
	case "awardrole":
		handleRoleSetting(s, i, b, guildID, userID, sub, "award role", b.Service.SetAwardRole)
	case "rolelimit":
		opts := optionMap(sub.Options)
		limit, _ := intOption(opts, "limit")
		if err := b.Service.SetRoleLimit(ctx, guildID, userID, limit); err != nil {
			respondError(s, i, err)
			return
		}
		if limit == 0 {
			utils.SendSimpleResponse(s, i, "Booster role count is now unlimited.")
		} else {
			utils.SendSimpleResponse(s, i, fmt.Sprintf("Booster roles capped at %d.", limit))
		}
	case "sharelimits":
		handleShareLimits(s, i, b, guildID, userID, sub)
	case "renamecooldown":
		opts := optionMap(sub.Options)
		minutes, _ := intOption(opts, "minutes")
		if err := b.Service.SetRenameCooldown(ctx, guildID, userID, minutes); err != nil {
			respondError(s, i, err)
			return
		}
		utils.SendSimpleResponse(s, i, fmt.Sprintf("Rename cooldown set to %d minute(s).", minutes))
	case "view":
		handleSettingsView(s, i, b, guildID)
	case "audit":
		handleAudit(s, i, b, guildID, userID, sub)
	}
}

func handleStaffGroup(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, guildID, userID string, group *discordgo.ApplicationCommandInteractionDataOption) {
	sub := group.Options[0]
	roleID := optionMap(sub.Options)["role"].RoleValue(nil, "").ID

	switch sub.Name {
	case "add":
		if err := b.Service.AddStaffRole(context.Background(), guildID, userID, roleID); err != nil {
			respondError(s, i, err)
			return
		}
		utils.SendSimpleResponse(s, i, fmt.Sprintf("<@&%s> now has staff standing.", roleID))
	case "remove":
		if err := b.Service.RemoveStaffRole(context.Background(), guildID, userID, roleID); err != nil {
			respondError(s, i, err)
			return
		}
		utils.SendSimpleResponse(s, i, fmt.Sprintf("<@&%s> no longer has staff standing.", roleID))
	}
}

func handleRoleSetting(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, guildID, userID string,
	sub *discordgo.ApplicationCommandInteractionDataOption, label string,
	set func(ctx context.Context, guildID, actorID, roleID string) error) {

	roleID := ""
	if opt, ok := optionMap(sub.Options)["role"]; ok {
		roleID = opt.RoleValue(nil, "").ID
	}
	if err := set(context.Background(), guildID, userID, roleID); err != nil {
		respondError(s, i, err)
		return
	}
	if roleID == "" {
		utils.SendSimpleResponse(s, i, fmt.Sprintf("The %s has been cleared.", label))
	} else {
		utils.SendSimpleResponse(s, i, fmt.Sprintf("The %s is now <@&%s>.", label, roleID))
	}
}

func handleShareLimits(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, guildID, userID string, sub *discordgo.ApplicationCommandInteractionDataOption) {
	opts := optionMap(sub.Options)

	var perRole, perMember *int
	if v, ok := intOption(opts, "per_role"); ok {
		perRole = &v
	}
	if v, ok := intOption(opts, "per_member"); ok {
		perMember = &v
	}
	if perRole == nil && perMember == nil {
		utils.SendErrorResponse(s, i, "Provide at least one of `per_role` or `per_member`.")
		return
	}

	if err := b.Service.SetSharingLimits(context.Background(), guildID, userID, perRole, perMember); err != nil {
		respondError(s, i, err)
		return
	}
	utils.SendSimpleResponse(s, i, "Sharing limits updated.")
}

func handleSettingsView(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, guildID string) {
	cfg, err := b.Service.GuildConfig(context.Background(), guildID)
	if err != nil {
		respondError(s, i, err)
		return
	}

	utils.SendEmbedResponse(s, i, &discordgo.MessageEmbed{
		Title: "Booster role settings",
		Color: utils.ColorBlue,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Staff roles", Value: roleMentions(cfg.StaffRoleIDs), Inline: false},
			{Name: "Auto nickname", Value: orUnset(cfg.AutoNickname), Inline: true},
			{Name: "Join logs", Value: channelMention(cfg.JoinLogChannelID), Inline: true},
			{Name: "Premium role", Value: roleMention(cfg.PremiumRoleID), Inline: true},
			{Name: "Base role", Value: roleMention(cfg.BaseRoleID), Inline: true},
			{Name: "Award role", Value: roleMention(cfg.AwardRoleID), Inline: true},
			{Name: "Role limit", Value: limitValue(cfg.MaxGeneratedRoles), Inline: true},
			{Name: "Members per role", Value: fmt.Sprintf("%d", cfg.MaxMembersPerRole), Inline: true},
			{Name: "Shared roles per member", Value: fmt.Sprintf("%d", cfg.MaxSharedRolesPerMember), Inline: true},
			{Name: "Rename cooldown", Value: fmt.Sprintf("%d min", cfg.RenameCooldownMinutes), Inline: true},
		},
	})
}

func handleAudit(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, guildID, userID string, sub *discordgo.ApplicationCommandInteractionDataOption) {
	count, _ := intOption(optionMap(sub.Options), "count")
	entries, err := b.Service.AuditTrail(context.Background(), guildID, count)
	if err != nil {
		respondError(s, i, err)
		return
	}
	if len(entries) == 0 {
		utils.SendSimpleResponse(s, i, "No settings changes recorded yet.")
		return
	}

	var sb strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&sb, "<t:%d:R> <@%s> **%s** %s\n", e.CreatedAt.Unix(), e.UserID, e.Action, e.Details)
	}
	utils.SendEmbedResponse(s, i, &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("Last %d settings change(s)", len(entries)),
		Description: sb.String(),
		Color:       utils.ColorBlue,
	})
}

func roleMention(id string) string {
	if id == "" {
		return "not set"
	}
	return "<@&" + id + ">"
}

func roleMentions(ids []string) string {
	if len(ids) == 0 {
		return "none"
	}
	mentions := make([]string, len(ids))
	for n, id := range ids {
		mentions[n] = "<@&" + id + ">"
	}
	return strings.Join(mentions, " ")
}

func channelMention(id string) string {
	if id == "" {
		return "disabled"
	}
	return "<#" + id + ">"
}

func orUnset(v string) string {
	if v == "" {
		return "disabled"
	}
	return "`" + v + "`"
}

func limitValue(v int) string {
	if v == 0 {
		return "unlimited"
	}
	return fmt.Sprintf("%d", v)
}
