package bot

import (
	"gopkg.in/telebot.v4"
)

// OwnerOnly lets through only the updates of the configured owner.
func (b *Bot) OwnerOnly(next telebot.HandlerFunc) telebot.HandlerFunc {
	return func(ctx telebot.Context) error {
		sender := ctx.Sender()
		if sender != nil && sender.ID == b.ownerID {
			return next(ctx)
		}

		if sender != nil {
			b.log.Info("Access denied", "username", sender.Username, "id", sender.ID)
		}
		if ctx.Callback() != nil {
			return ctx.Respond(&telebot.CallbackResponse{
				Text:      "Access denied.",
				ShowAlert: true,
			})
		}
		return nil
	}
}
