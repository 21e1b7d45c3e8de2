package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"booster-bot/bot"
	"booster-bot/utils"

	"github.com/bwmarrin/discordgo"
)

// HandleBoosterRole routes the /boosterrole subcommands.
func HandleBoosterRole(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if i.Member == nil {
		utils.SendErrorResponse(s, i, "This command only works inside a server.")
		return
	}

	guildID := i.GuildID
	userID := i.Member.User.ID
	sub := i.ApplicationCommandData().Options[0]

	switch sub.Name {
	case "color":
		handleRoleColor(s, i, b, guildID, userID, sub)
	case "random":
		handleRoleRandom(s, i, b, guildID, userID, sub)
	case "dominant":
		handleRoleDominant(s, i, b, guildID, userID, sub)
	case "rename":
		handleRoleRename(s, i, b, guildID, userID, sub)
	case "icon":
		handleRoleIcon(s, i, b, guildID, userID, sub)
	case "remove":
		handleRoleRemove(s, i, b, guildID, userID)
	case "share":
		handleShare(s, i, b, guildID, userID, sub)
	case "link":
		handleLink(s, i, b, guildID, userID, sub)
	case "revoke":
		handleRevoke(s, i, b, guildID, userID, sub)
	case "leave":
		handleLeave(s, i, b, guildID, userID, sub)
	case "shares":
		handleShareList(s, i, b, guildID, userID)
	case "list":
		handleRoleList(s, i, b, guildID)
	case "cleanup":
		handleCleanup(s, i, b, guildID, userID, sub)
	case "filter":
		handleFilter(s, i, b, guildID, userID, sub)
	}
}

func handleRoleColor(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, guildID, userID string, sub *discordgo.ApplicationCommandInteractionDataOption) {
	opts := optionMap(sub.Options)
	result, err := b.Service.SetRoleColor(context.Background(), guildID, userID,
		stringOption(opts, "name"), stringOption(opts, "color"), stringOption(opts, "secondary"))
	if err != nil {
		respondError(s, i, err)
		return
	}

	verb := "updated"
	if result.Created {
		verb = "created"
	}
	utils.SendSimpleResponse(s, i, fmt.Sprintf("Your role <@&%s> has been %s with color `%s`.",
		result.Role.RoleID, verb, result.Role.PrimaryColor))
}

func handleRoleRandom(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, guildID, userID string, sub *discordgo.ApplicationCommandInteractionDataOption) {
	opts := optionMap(sub.Options)
	result, err := b.Service.RandomColor(context.Background(), guildID, userID, stringOption(opts, "name"))
	if err != nil {
		respondError(s, i, err)
		return
	}
	utils.SendSimpleResponse(s, i, fmt.Sprintf("Rolled `%s` for your role <@&%s>.",
		result.Role.PrimaryColor, result.Role.RoleID))
}

func handleRoleDominant(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, guildID, userID string, sub *discordgo.ApplicationCommandInteractionDataOption) {
	// Downloading the avatar can take a moment, so defer first.
	if err := utils.DeferResponse(s, i, true); err != nil {
		return
	}

	ctx := context.Background()
	color, err := utils.FetchDominantColor(ctx, i.Member.User.AvatarURL("128"))
	if err != nil {
		utils.SendFollowUp(s, i.Interaction, "❌ Could not read your avatar. Try `/boosterrole color` instead.")
		return
	}

	opts := optionMap(sub.Options)
	result, err := b.Service.SetRoleColor(ctx, guildID, userID, stringOption(opts, "name"), color, "")
	if err != nil {
		utils.SendFollowUp(s, i.Interaction, "❌ "+errorMessage(err))
		return
	}
	utils.SendFollowUp(s, i.Interaction, fmt.Sprintf("Matched your avatar: role <@&%s> is now `%s`.",
		result.Role.RoleID, result.Role.PrimaryColor))
}

func handleRoleRename(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, guildID, userID string, sub *discordgo.ApplicationCommandInteractionDataOption) {
	opts := optionMap(sub.Options)
	newName := stringOption(opts, "name")
	oldName, err := b.Service.Rename(context.Background(), guildID, userID, newName)
	if err != nil {
		respondError(s, i, err)
		return
	}
	utils.SendSimpleResponse(s, i, fmt.Sprintf("Renamed your role from **%s** to **%s**.", oldName, newName))
}

func handleRoleIcon(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, guildID, userID string, sub *discordgo.ApplicationCommandInteractionDataOption) {
	// Fetching the image can take a moment, so defer first.
	if err := utils.DeferResponse(s, i, true); err != nil {
		return
	}
	opts := optionMap(sub.Options)
	if err := b.Service.SetIcon(context.Background(), guildID, userID, stringOption(opts, "url")); err != nil {
		utils.SendFollowUp(s, i.Interaction, "❌ "+errorMessage(err))
		return
	}
	utils.SendFollowUp(s, i.Interaction, "Your role icon has been updated.")
}

func handleRoleRemove(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, guildID, userID string) {
	if err := b.Service.RemoveRole(context.Background(), guildID, userID); err != nil {
		respondError(s, i, err)
		return
	}
	utils.SendSimpleResponse(s, i, "Your booster role has been removed.")
}

func handleShare(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, guildID, userID string, sub *discordgo.ApplicationCommandInteractionDataOption) {
	opts := optionMap(sub.Options)
	target := opts["member"].UserValue(nil)

	var expiresIn time.Duration
	if days, ok := intOption(opts, "days"); ok {
		if days < 1 || days > 365 {
			utils.SendErrorResponse(s, i, "Share duration must be between 1 and 365 days.")
			return
		}
		expiresIn = time.Duration(days) * 24 * time.Hour
	}

	role, err := b.Service.ShareRole(context.Background(), guildID, userID, target.ID, expiresIn)
	if err != nil {
		respondError(s, i, err)
		return
	}
	if expiresIn > 0 {
		utils.SendSimpleResponse(s, i, fmt.Sprintf("Shared <@&%s> with <@%s> until <t:%d:D>.",
			role.RoleID, target.ID, time.Now().Add(expiresIn).Unix()))
		return
	}
	utils.SendSimpleResponse(s, i, fmt.Sprintf("Shared <@&%s> with <@%s>.", role.RoleID, target.ID))
}

func handleLink(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, guildID, userID string, sub *discordgo.ApplicationCommandInteractionDataOption) {
	opts := optionMap(sub.Options)
	target := opts["member"].UserValue(nil)
	roleID := opts["role"].RoleValue(nil, "").ID

	replaced, err := b.Service.LinkRole(context.Background(), guildID, userID, target.ID, roleID)
	if err != nil {
		respondError(s, i, err)
		return
	}
	verb := "linked"
	if replaced {
		verb = "re-linked"
	}
	utils.SendSimpleResponse(s, i, fmt.Sprintf("Role <@&%s> %s to <@%s>.", roleID, verb, target.ID))
}

func handleRevoke(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, guildID, userID string, sub *discordgo.ApplicationCommandInteractionDataOption) {
	opts := optionMap(sub.Options)
	target := opts["member"].UserValue(nil)
	if err := b.Service.RevokeShare(context.Background(), guildID, userID, target.ID); err != nil {
		respondError(s, i, err)
		return
	}
	utils.SendSimpleResponse(s, i, fmt.Sprintf("<@%s> no longer has access to your role.", target.ID))
}

func handleLeave(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, guildID, userID string, sub *discordgo.ApplicationCommandInteractionDataOption) {
	opts := optionMap(sub.Options)
	roleID := opts["role"].RoleValue(nil, "").ID
	if err := b.Service.UnshareRole(context.Background(), guildID, userID, roleID); err != nil {
		respondError(s, i, err)
		return
	}
	utils.SendSimpleResponse(s, i, fmt.Sprintf("You left the shared role <@&%s>.", roleID))
}

func handleShareList(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, guildID, userID string) {
	shares, err := b.Service.ListShares(context.Background(), guildID, userID)
	if err != nil {
		respondError(s, i, err)
		return
	}
	if len(shares) == 0 {
		utils.SendSimpleResponse(s, i, "Your role isn't shared with anyone.")
		return
	}

	var sb strings.Builder
	for _, share := range shares {
		fmt.Fprintf(&sb, "<@%s> since <t:%d:R>\n", share.SharedWithID, share.SharedAt.Unix())
	}
	utils.SendEmbedResponse(s, i, &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("Shared with %d member(s)", len(shares)),
		Description: sb.String(),
		Color:       utils.ColorBlue,
	})
}

func handleRoleList(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, guildID string) {
	roles, err := b.Service.ListRoles(context.Background(), guildID)
	if err != nil {
		respondError(s, i, err)
		return
	}
	if len(roles) == 0 {
		utils.SendSimpleResponse(s, i, "No booster roles exist in this server yet.")
		return
	}

	var sb strings.Builder
	for _, role := range roles {
		fmt.Fprintf(&sb, "<@&%s> owned by <@%s>\n", role.RoleID, role.UserID)
		if sb.Len() > 3800 {
			sb.WriteString("…\n")
			break
		}
	}
	utils.SendEmbedResponse(s, i, &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("%d booster role(s)", len(roles)),
		Description: sb.String(),
		Color:       utils.ColorBlue,
	})
}

func handleCleanup(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, guildID, userID string, sub *discordgo.ApplicationCommandInteractionDataOption) {
	dryRun := false
	for _, opt := range sub.Options {
		if opt.Name == "dry_run" {
			dryRun = opt.BoolValue()
		}
	}

	// A sweep pages through the member list, which can take a while.
	if err := utils.DeferResponse(s, i, true); err != nil {
		return
	}
	report, err := b.Service.CleanupCommand(context.Background(), guildID, userID, dryRun)
	if err != nil {
		utils.SendFollowUp(s, i.Interaction, "❌ "+errorMessage(err))
		return
	}

	title := "Cleanup complete"
	if report.DryRun {
		title = "Cleanup dry run"
	}
	utils.SendFollowUpEmbed(s, i.Interaction, &discordgo.MessageEmbed{
		Title: title,
		Color: utils.ColorOrange,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Scanned", Value: fmt.Sprintf("%d", report.Scanned), Inline: true},
			{Name: "Stopped boosting", Value: fmt.Sprintf("%d", report.NotBoosting), Inline: true},
			{Name: "Member left", Value: fmt.Sprintf("%d", report.MemberLeft), Inline: true},
			{Name: "Role deleted", Value: fmt.Sprintf("%d", report.RoleDeleted), Inline: true},
			{Name: "Removed", Value: fmt.Sprintf("%d", report.Removed), Inline: true},
			{Name: "Failed", Value: fmt.Sprintf("%d", report.Failed), Inline: true},
		},
	})
}

func handleFilter(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, guildID, userID string, group *discordgo.ApplicationCommandInteractionDataOption) {
	sub := group.Options[0]
	opts := optionMap(sub.Options)

	switch sub.Name {
	case "add":
		word := stringOption(opts, "word")
		if err := b.Service.AddFilterWord(context.Background(), guildID, userID, word); err != nil {
			respondError(s, i, err)
			return
		}
		utils.SendSimpleResponse(s, i, fmt.Sprintf("Added `%s` to the role name filter.", strings.ToLower(word)))
	case "remove":
		word := stringOption(opts, "word")
		if err := b.Service.RemoveFilterWord(context.Background(), guildID, userID, word); err != nil {
			respondError(s, i, err)
			return
		}
		utils.SendSimpleResponse(s, i, fmt.Sprintf("Removed `%s` from the role name filter.", strings.ToLower(word)))
	case "list":
		words, err := b.Service.ListFilterWords(context.Background(), guildID)
		if err != nil {
			respondError(s, i, err)
			return
		}
		if len(words) == 0 {
			utils.SendSimpleResponse(s, i, "The role name filter is empty.")
			return
		}
		utils.SendEmbedResponse(s, i, &discordgo.MessageEmbed{
			Title:       fmt.Sprintf("%d filtered word(s)", len(words)),
			Description: "`" + strings.Join(words, "`, `") + "`",
			Color:       utils.ColorBlue,
		})
	}
}
