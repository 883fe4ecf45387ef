package bot

import (
	"errors"
	"html"

	"github.com/UnknownOlympus/hazira/internal/ledger"
	"github.com/UnknownOlympus/hazira/internal/models"
	"github.com/UnknownOlympus/hazira/internal/tracker"
	"gopkg.in/telebot.v4"
)

// workersHandler lists the whole roster.
func (b *Bot) workersHandler(ctx telebot.Context) error {
	b.metrics.CommandReceived.WithLabelValues("workers").Inc()

	workers := b.book.Workers()

	b.metrics.SentMessages.WithLabelValues("text").Inc()
	return ctx.Send(b.view(ctx).workerList(len(workers)), workerListMarkup(workers), telebot.ModeHTML)
}

// searchHandler asks for a name to search for.
func (b *Bot) searchHandler(ctx telebot.Context) error {
	b.metrics.CommandReceived.WithLabelValues("search").Inc()
	b.stateManager.Set(ctx.Sender().ID, UserState{Step: StepSearch})

	b.metrics.SentMessages.WithLabelValues("text").Inc()
	return ctx.Send(b.t(ctx, "workers.search_prompt"))
}

// searchResultsHandler answers a search query with the matching workers.
func (b *Bot) searchResultsHandler(ctx telebot.Context, query string) error {
	b.stateManager.Clear(ctx.Sender().ID)

	workers := b.book.Search(query)
	data := map[string]any{"query": html.EscapeString(query)}

	b.metrics.SentMessages.WithLabelValues("text").Inc()
	if len(workers) == 0 {
		return ctx.Send(b.tWithData(ctx, "workers.search_empty", data), telebot.ModeHTML)
	}
	return ctx.Send(b.tWithData(ctx, "workers.search_title", data), workerListMarkup(workers), telebot.ModeHTML)
}

// workerListMarkup builds one details button per worker.
func workerListMarkup(workers []models.Worker) *telebot.ReplyMarkup {
	menu := &telebot.ReplyMarkup{}
	rows := make([]telebot.Row, 0, len(workers))
	for _, worker := range workers {
		rows = append(rows, menu.Row(menu.Data(workerButton(worker), btnWorkerDetails.Unique, worker.ID)))
	}
	menu.Inline(rows...)
	return menu
}

// entryFor returns the roster entry of a worker for the current day.
func (b *Bot) entryFor(workerID string) (tracker.Entry, bool) {
	for _, entry := range b.book.Roll(ledger.FilterAll) {
		if entry.Worker.ID == workerID {
			return entry, true
		}
	}
	return tracker.Entry{}, false
}

// workerCardMarkup builds the status and management buttons of a worker card.
func (b *Bot) workerCardMarkup(ctx telebot.Context, worker models.Worker) *telebot.ReplyMarkup {
	menu := &telebot.ReplyMarkup{}

	mark := func(key string, status models.Status) telebot.Btn {
		return menu.Data(b.t(ctx, key), btnMark.Unique, worker.ID, string(status))
	}

	rows := []telebot.Row{
		menu.Row(
			mark("worker.button.present", models.StatusPresent),
			mark("worker.button.absent", models.StatusAbsent),
		),
		menu.Row(
			mark("worker.button.late", models.StatusLate),
			mark("worker.button.clear", models.StatusNone),
		),
	}

	manage := []telebot.Btn{menu.Data(b.t(ctx, "worker.button.delete"), btnWorkerDelete.Unique, worker.ID)}
	if worker.Photo != "" {
		manage = append([]telebot.Btn{
			menu.Data(b.t(ctx, "worker.button.photo"), btnWorkerPhoto.Unique, worker.ID),
		}, manage...)
	}
	rows = append(rows, menu.Row(manage...))

	menu.Inline(rows...)
	return menu
}

// workerDetailsHandler sends the card of a worker.
func (b *Bot) workerDetailsHandler(ctx telebot.Context) error {
	args := callbackArgs(ctx)
	if len(args) != 1 {
		return b.respondError(ctx)
	}

	entry, ok := b.entryFor(args[0])
	if !ok {
		return b.respondText(ctx, b.t(ctx, "error.worker_not_found"))
	}

	b.metrics.SentMessages.WithLabelValues("text").Inc()
	if err := ctx.Send(b.view(ctx).workerCard(entry), b.workerCardMarkup(ctx, entry.Worker), telebot.ModeHTML); err != nil {
		return err
	}
	return b.respondText(ctx, "")
}

// markHandler sets an explicit status for a worker and refreshes the card.
func (b *Bot) markHandler(ctx telebot.Context) error {
	args := callbackArgs(ctx)
	if len(args) != 2 { //nolint:mnd // worker id and status
		return b.respondError(ctx)
	}
	workerID, status := args[0], models.Status(args[1])
	if !status.Valid() {
		b.log.Warn("Unknown status in callback", "data", args[1])
		return b.respondError(ctx)
	}

	reqCtx, cancel := requestContext()
	defer cancel()

	record, err := b.book.MarkStatus(reqCtx, workerID, status)
	if errors.Is(err, tracker.ErrWorkerNotFound) {
		return b.respondText(ctx, b.t(ctx, "error.worker_not_found"))
	}
	if err != nil {
		b.log.Error("Failed to mark attendance", "workerID", workerID, "status", status, "error", err)
		return b.respondError(ctx)
	}

	entry, ok := b.entryFor(workerID)
	if ok {
		if err = b.edit(ctx, b.view(ctx).workerCard(entry), b.workerCardMarkup(ctx, entry.Worker)); err != nil {
			return err
		}
	}

	return b.respondText(ctx, b.tWithData(ctx, "worker.marked", map[string]any{
		"name":   entry.Worker.Name,
		"status": b.t(ctx, "status."+string(record.Status)),
	}))
}

// workerPhotoHandler sends the stored photo of a worker.
func (b *Bot) workerPhotoHandler(ctx telebot.Context) error {
	args := callbackArgs(ctx)
	if len(args) != 1 {
		return b.respondError(ctx)
	}

	worker, ok := b.book.Worker(args[0])
	if !ok {
		return b.respondText(ctx, b.t(ctx, "error.worker_not_found"))
	}
	if worker.Photo == "" {
		return b.respondText(ctx, b.t(ctx, "worker.no_photo"))
	}

	photo := &telebot.Photo{File: telebot.File{FileID: worker.Photo}, Caption: html.EscapeString(worker.Name)}
	b.metrics.SentMessages.WithLabelValues("photo").Inc()
	if err := ctx.Send(photo, telebot.ModeHTML); err != nil {
		return err
	}
	return b.respondText(ctx, "")
}

// workerDeleteHandler asks to confirm the removal of a worker.
func (b *Bot) workerDeleteHandler(ctx telebot.Context) error {
	args := callbackArgs(ctx)
	if len(args) != 1 {
		return b.respondError(ctx)
	}

	worker, ok := b.book.Worker(args[0])
	if !ok {
		return b.respondText(ctx, b.t(ctx, "error.worker_not_found"))
	}

	menu := &telebot.ReplyMarkup{}
	menu.Inline(menu.Row(
		menu.Data(b.t(ctx, "worker.delete_yes"), btnDeleteConfirm.Unique, worker.ID),
		menu.Data(b.t(ctx, "worker.delete_no"), btnDeleteCancel.Unique, worker.ID),
	))

	text := b.tWithData(ctx, "worker.delete_confirm", map[string]any{"name": html.EscapeString(worker.Name)})
	if err := b.edit(ctx, text, menu); err != nil {
		return err
	}
	return b.respondText(ctx, "")
}

// workerDeleteConfirmHandler removes a worker together with their attendance history.
func (b *Bot) workerDeleteConfirmHandler(ctx telebot.Context) error {
	args := callbackArgs(ctx)
	if len(args) != 1 {
		return b.respondError(ctx)
	}

	worker, ok := b.book.Worker(args[0])
	if !ok {
		return b.respondText(ctx, b.t(ctx, "error.worker_not_found"))
	}

	reqCtx, cancel := requestContext()
	defer cancel()

	if !b.book.RemoveWorker(reqCtx, worker.ID) {
		return b.respondText(ctx, b.t(ctx, "error.worker_not_found"))
	}
	b.log.Info("Worker removed", "workerID", worker.ID, "userID", ctx.Sender().ID)

	text := b.tWithData(ctx, "worker.deleted", map[string]any{"name": html.EscapeString(worker.Name)})
	if err := b.edit(ctx, text, nil); err != nil {
		return err
	}
	return b.respondText(ctx, "")
}

// workerDeleteCancelHandler restores the worker card.
func (b *Bot) workerDeleteCancelHandler(ctx telebot.Context) error {
	args := callbackArgs(ctx)
	if len(args) != 1 {
		return b.respondError(ctx)
	}

	entry, ok := b.entryFor(args[0])
	if !ok {
		return b.respondText(ctx, b.t(ctx, "error.worker_not_found"))
	}

	if err := b.edit(ctx, b.view(ctx).workerCard(entry), b.workerCardMarkup(ctx, entry.Worker)); err != nil {
		return err
	}
	return b.respondText(ctx, b.t(ctx, "worker.delete_canceled"))
}
