package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/UnknownOlympus/hazira/internal/ledger"
	"github.com/UnknownOlympus/hazira/internal/models"
	"github.com/UnknownOlympus/hazira/internal/report"
	"gopkg.in/telebot.v4"
)

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// reportHandler sends the attendance workbook of the current day.
func (b *Bot) reportHandler(ctx telebot.Context) error {
	b.metrics.CommandReceived.WithLabelValues("report").Inc()

	date := b.book.Today()
	reportFile, err := b.buildReport("command", b.view(ctx), date)
	if errors.Is(err, report.ErrNoWorkers) {
		b.metrics.SentMessages.WithLabelValues("text").Inc()
		return ctx.Send(b.t(ctx, "report.empty"))
	}
	if err != nil {
		b.log.Error("Failed to generate report", "error", err, "date", date)
		b.metrics.SentMessages.WithLabelValues("error").Inc()
		return ctx.Send(b.t(ctx, "error.internal"))
	}

	b.log.Info("Successfully generated report", "date", date, "userID", ctx.Sender().ID)
	b.metrics.SentMessages.WithLabelValues("file").Inc()
	return ctx.Send(reportFile)
}

// buildReport renders the roll of the current day into an xlsx document.
func (b *Bot) buildReport(trigger string, v views, date models.Date) (*telebot.Document, error) {
	startTime := time.Now()
	rows := report.RowsFromEntries(b.book.Roll(ledger.FilterAll))
	reportBuffer, err := report.GenerateExcelReport(date, rows)
	b.metrics.ReportGeneration.WithLabelValues(trigger).Observe(time.Since(startTime).Seconds())
	if err != nil {
		return nil, err
	}

	return &telebot.Document{
		File:     telebot.FromReader(reportBuffer),
		FileName: fmt.Sprintf("hazira_%s.xlsx", date),
		MIME:     xlsxMIME,
		Caption:  v.tWithData("report.caption", map[string]any{"date": v.date(date)}),
	}, nil
}

// SendDigest sends the day counters and the workbook of the day to the owner.
func (b *Bot) SendDigest(ctx context.Context) error {
	if b.ownerID == 0 {
		return errors.New("digest owner is not configured")
	}

	owner := &telebot.User{ID: b.ownerID}
	v := views{loc: b.localizer, lang: b.langFor(b.ownerID)}
	date := b.book.Today()
	last, hasLast := b.book.LastMarked()

	b.metrics.SentMessages.WithLabelValues("text").Inc()
	if _, err := b.sender.Send(owner, v.digest(date, b.book.Summary(), last, hasLast), telebot.ModeHTML); err != nil {
		return fmt.Errorf("failed to send digest: %w", err)
	}

	reportFile, err := b.buildReport("digest", v, date)
	if errors.Is(err, report.ErrNoWorkers) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to generate digest report: %w", err)
	}

	b.metrics.SentMessages.WithLabelValues("file").Inc()
	if _, err = b.sender.Send(owner, reportFile); err != nil {
		return fmt.Errorf("failed to send digest report: %w", err)
	}

	b.log.InfoContext(ctx, "Digest sent", "date", date, "owner", b.ownerID)
	return nil
}
