package handlers

import (
	"errors"
	"fmt"
	"time"

	"booster-bot/model"
	"booster-bot/utils"

	"github.com/bwmarrin/discordgo"
)

// respondError maps an engine error onto a user-facing message.
func respondError(s *discordgo.Session, i *discordgo.InteractionCreate, err error) {
	utils.SendErrorResponse(s, i, errorMessage(err))
}

func errorMessage(err error) string {
	var verr *model.ValidationError
	var berr *model.BlacklistedNameError
	var rerr *model.RateLimitedError
	var lerr *model.LimitExceededError
	var xerr *model.ExternalError

	switch {
	case errors.As(err, &verr):
		return verr.Reason
	case errors.As(err, &berr):
		return fmt.Sprintf("That name contains the filtered word `%s`.", berr.Word)
	case errors.As(err, &rerr):
		return fmt.Sprintf("You're doing that too fast. Try again in %s.", rerr.Remaining.Round(time.Second))
	case errors.As(err, &lerr):
		return fmt.Sprintf("The %s limit of %d has been reached.", lerr.Kind, lerr.Limit)
	case errors.As(err, &xerr):
		return "Discord rejected the change. Check the bot's role permissions and try again."
	case errors.Is(err, model.ErrPermissionDenied):
		return "You don't have permission to do that."
	case errors.Is(err, model.ErrNotFound):
		return "There's nothing here to act on. Create a booster role first with `/boosterrole color`."
	case errors.Is(err, model.ErrConflict):
		return "That already exists."
	case errors.Is(err, model.ErrInvalidTarget):
		return "That target can't be used here."
	default:
		return "Something went wrong. Please try again later."
	}
}

// optionMap flattens interaction options by name.
func optionMap(options []*discordgo.ApplicationCommandInteractionDataOption) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	out := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(options))
	for _, opt := range options {
		out[opt.Name] = opt
	}
	return out
}

func stringOption(opts map[string]*discordgo.ApplicationCommandInteractionDataOption, name string) string {
	if opt, ok := opts[name]; ok {
		return opt.StringValue()
	}
	return ""
}

func intOption(opts map[string]*discordgo.ApplicationCommandInteractionDataOption, name string) (int, bool) {
	if opt, ok := opts[name]; ok {
		return int(opt.IntValue()), true
	}
	return 0, false
}
