package bot

import (
	"context"
	"html"

	"github.com/UnknownOlympus/hazira/internal/insight"
	"gopkg.in/telebot.v4"
)

// insightHandler posts a placeholder and replaces it with the generated summary
// once the background task finishes. The summary covers the state at the time
// of the request.
func (b *Bot) insightHandler(ctx telebot.Context) error {
	b.metrics.CommandReceived.WithLabelValues("insight").Inc()

	b.metrics.SentMessages.WithLabelValues("text").Inc()
	placeholder, err := b.sender.Send(ctx.Recipient(), b.t(ctx, "insight.loading"))
	if err != nil {
		return err
	}

	lang := b.getUserLanguage(ctx)
	workers, records := b.book.Recent(insight.RecentLimit)

	taskCtx, cancel := context.WithTimeout(context.Background(), insightTimeout)
	task := insight.Launch(taskCtx, b.summarizer, workers, records)

	go func() {
		defer cancel()

		text := task.Wait(taskCtx)
		message := b.localizer.GetWithData(lang, "insight.title", map[string]any{"text": html.EscapeString(text)})

		b.metrics.SentMessages.WithLabelValues("edit").Inc()
		if _, editErr := b.sender.Edit(placeholder, message, telebot.ModeHTML); editErr != nil {
			b.log.Error("Failed to deliver insight", "error", editErr)
		}
	}()

	return nil
}
