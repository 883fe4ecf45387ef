package bot

import (
	"github.com/UnknownOlympus/hazira/internal/i18n"
	"gopkg.in/telebot.v4"
)

// languageHandler handles the language selection request from the user.
// It presents the user with a menu to choose their preferred language.
func (b *Bot) languageHandler(ctx telebot.Context) error {
	b.metrics.CommandReceived.WithLabelValues("language").Inc()

	menu := &telebot.ReplyMarkup{}
	menu.Inline(
		menu.Row(menu.Data(b.t(ctx, "language.button.english"), btnLanguageChoice.Unique, i18n.English)),
		menu.Row(menu.Data(b.t(ctx, "language.button.bengali"), btnLanguageChoice.Unique, i18n.Bengali)),
	)

	b.metrics.SentMessages.WithLabelValues("text").Inc()
	return ctx.Send(b.t(ctx, "language.select"), menu)
}

// languageChangeHandler stores the chosen language and resends the main menu in it.
func (b *Bot) languageChangeHandler(ctx telebot.Context) error {
	userID := ctx.Sender().ID
	langCode := ""
	if args := callbackArgs(ctx); len(args) == 1 {
		langCode = args[0]
	}

	if !i18n.IsSupported(langCode) {
		b.log.Error("Unknown language callback", "data", langCode)
		return ctx.Respond(&telebot.CallbackResponse{Text: "Unknown language"})
	}

	b.setLanguage(userID, langCode)
	b.log.Info("User changed language", "userID", userID, "language", langCode)

	b.metrics.SentMessages.WithLabelValues("respond").Inc()
	_ = ctx.Respond(&telebot.CallbackResponse{Text: "✅"})

	return b.menus.ShowMenu(ctx, MenuMain, "language.changed")
}
