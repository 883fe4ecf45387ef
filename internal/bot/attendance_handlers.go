package bot

import (
	"errors"

	"github.com/UnknownOlympus/hazira/internal/ledger"
	"github.com/UnknownOlympus/hazira/internal/tracker"
	"gopkg.in/telebot.v4"
)

var filterModes = []ledger.FilterMode{ledger.FilterAll, ledger.FilterPresent, ledger.FilterPending}

// attendanceHandler sends the roll of the day with one toggle button per worker.
func (b *Bot) attendanceHandler(ctx telebot.Context) error {
	b.metrics.CommandReceived.WithLabelValues("attendance").Inc()

	text, markup := b.attendanceView(ctx, ledger.FilterAll)

	b.metrics.SentMessages.WithLabelValues("text").Inc()
	return ctx.Send(text, markup, telebot.ModeHTML)
}

// attendanceView renders the roll of the day filtered by mode.
func (b *Bot) attendanceView(ctx telebot.Context, mode ledger.FilterMode) (string, *telebot.ReplyMarkup) {
	v := b.view(ctx)
	entries := b.book.Roll(mode)

	menu := &telebot.ReplyMarkup{}
	rows := make([]telebot.Row, 0, len(entries)+1)

	filters := make([]telebot.Btn, 0, len(filterModes))
	for _, filter := range filterModes {
		label := v.t("attendance.filter." + string(filter))
		if filter == mode {
			label = "• " + label
		}
		filters = append(filters, menu.Data(label, btnFilter.Unique, string(filter)))
	}
	rows = append(rows, menu.Row(filters...))

	for _, entry := range entries {
		rows = append(rows, menu.Row(
			menu.Data(v.attendanceButton(entry), btnToggle.Unique, entry.Worker.ID, string(mode)),
		))
	}
	menu.Inline(rows...)

	return v.attendanceTitle(b.book.Today(), entries), menu
}

// filterHandler switches the filter of the attendance list.
func (b *Bot) filterHandler(ctx telebot.Context) error {
	args := callbackArgs(ctx)
	if len(args) != 1 {
		return b.respondError(ctx)
	}

	mode, err := ledger.ParseFilterMode(args[0])
	if err != nil {
		b.log.Warn("Unknown filter in callback", "data", args[0], "error", err)
		return b.respondError(ctx)
	}

	text, markup := b.attendanceView(ctx, mode)
	if err = b.edit(ctx, text, markup); err != nil {
		return err
	}
	return b.respondText(ctx, "")
}

// toggleHandler flips a worker between present and absent and refreshes the list.
func (b *Bot) toggleHandler(ctx telebot.Context) error {
	args := callbackArgs(ctx)
	if len(args) != 2 { //nolint:mnd // worker id and filter
		return b.respondError(ctx)
	}
	workerID := args[0]
	mode, err := ledger.ParseFilterMode(args[1])
	if err != nil {
		mode = ledger.FilterAll
	}

	reqCtx, cancel := requestContext()
	defer cancel()

	record, err := b.book.Toggle(reqCtx, workerID)
	if errors.Is(err, tracker.ErrWorkerNotFound) {
		return b.respondText(ctx, b.t(ctx, "error.worker_not_found"))
	}
	if err != nil {
		b.log.Error("Failed to toggle attendance", "workerID", workerID, "error", err)
		return b.respondError(ctx)
	}

	text, markup := b.attendanceView(ctx, mode)
	if err = b.edit(ctx, text, markup); err != nil {
		return err
	}

	worker, _ := b.book.Worker(workerID)
	return b.respondText(ctx, b.tWithData(ctx, "worker.marked", map[string]any{
		"name":   worker.Name,
		"status": b.t(ctx, "status."+string(record.Status)),
	}))
}
