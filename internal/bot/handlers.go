package bot

import (
	"context"
	"errors"
	"strings"

	"gopkg.in/telebot.v4"
)

// startHandler greets the user and shows the main menu.
func (b *Bot) startHandler(ctx telebot.Context) error {
	b.metrics.CommandReceived.WithLabelValues("start").Inc()

	if ctx.Sender() != nil {
		b.stateManager.Clear(ctx.Sender().ID)
		b.log.Info("User started the bot", "username", ctx.Sender().Username, "id", ctx.Sender().ID)
	}

	return b.menus.ShowMenu(ctx, MenuMain, "general.welcome")
}

// routeTextHandler dispatches reply keyboard buttons and free text input.
// A menu button always wins over a pending input step and drops it.
func (b *Bot) routeTextHandler(ctx telebot.Context) error {
	userID := ctx.Sender().ID
	text := strings.TrimSpace(ctx.Text())

	handler, subMenu := b.menus.ResolveHandlerFromButtonText(text)
	if handler != "" || subMenu != "" {
		b.stateManager.Clear(userID)
	}

	if subMenu != "" {
		b.log.Debug("Opening submenu", "menu", subMenu, "userID", userID)
		return b.menus.ShowMenu(ctx, subMenu, "")
	}

	switch handler {
	case handlerBack:
		return b.menus.ShowMenu(ctx, MenuMain, "")
	case handlerDashboard:
		return b.dashboardHandler(ctx)
	case handlerAttendance:
		return b.attendanceHandler(ctx)
	case handlerWorkerList:
		return b.workersHandler(ctx)
	case handlerAddWorker:
		return b.addWorkerHandler(ctx)
	case handlerSearch:
		return b.searchHandler(ctx)
	case handlerReport:
		return b.reportHandler(ctx)
	case handlerInsight:
		return b.insightHandler(ctx)
	case handlerLanguage:
		return b.languageHandler(ctx)
	}

	if state, ok := b.stateManager.Get(userID); ok {
		return b.handleStateInput(ctx, state, text)
	}

	b.metrics.SentMessages.WithLabelValues("text").Inc()
	return ctx.Send(b.t(ctx, "general.use_buttons"), b.menus.Build(ctx, MenuMain))
}

// dashboardHandler sends the counters of the current day.
func (b *Bot) dashboardHandler(ctx telebot.Context) error {
	b.metrics.CommandReceived.WithLabelValues("dashboard").Inc()

	last, hasLast := b.book.LastMarked()
	text := b.view(ctx).dashboard(b.book.Today(), b.book.Summary(), last, hasLast)

	b.metrics.SentMessages.WithLabelValues("text").Inc()
	return ctx.Send(text, telebot.ModeHTML)
}

// callbackArgs splits the payload of an inline button.
func callbackArgs(ctx telebot.Context) []string {
	if ctx.Callback() == nil || ctx.Callback().Data == "" {
		return nil
	}
	return strings.Split(ctx.Callback().Data, "|")
}

// respondText answers a callback query with a short notification.
func (b *Bot) respondText(ctx telebot.Context, text string) error {
	b.metrics.SentMessages.WithLabelValues("respond").Inc()
	return ctx.Respond(&telebot.CallbackResponse{Text: text})
}

// respondError answers a callback query with the internal error message.
func (b *Bot) respondError(ctx telebot.Context) error {
	b.metrics.SentMessages.WithLabelValues("error").Inc()
	return ctx.Respond(&telebot.CallbackResponse{Text: b.t(ctx, "error.internal"), ShowAlert: true})
}

// edit replaces the callback message, ignoring edits that would not change it.
func (b *Bot) edit(ctx telebot.Context, text string, markup *telebot.ReplyMarkup) error {
	b.metrics.SentMessages.WithLabelValues("edit").Inc()

	opts := []any{telebot.ModeHTML}
	if markup != nil {
		opts = append(opts, markup)
	}

	err := ctx.Edit(text, opts...)
	if errors.Is(err, telebot.ErrSameMessageContent) {
		return nil
	}
	return err
}

// requestContext bounds a single update.
func requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), handlerTimeout)
}
