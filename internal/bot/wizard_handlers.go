package bot

import (
	"errors"
	"html"
	"strconv"

	"github.com/UnknownOlympus/hazira/internal/models"
	"github.com/UnknownOlympus/hazira/internal/roster"
	"github.com/go-playground/validator/v10"
	"gopkg.in/telebot.v4"
)

// stepRules holds the validation tag of every free text wizard step.
var stepRules = map[Step]string{
	StepName:        "required,max=128",
	StepIDNum:       "max=32",
	StepPhone:       "max=32",
	StepDesignation: "required,max=64",
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// addWorkerHandler starts the add worker wizard.
func (b *Bot) addWorkerHandler(ctx telebot.Context) error {
	b.metrics.CommandReceived.WithLabelValues("add_worker").Inc()
	b.stateManager.Set(ctx.Sender().ID, UserState{Step: StepName})

	return b.promptStep(ctx, StepName)
}

// handleStateInput processes free text sent while the user is in a wizard or search step.
func (b *Bot) handleStateInput(ctx telebot.Context, state UserState, text string) error {
	if state.Step == StepSearch {
		return b.searchResultsHandler(ctx, text)
	}

	rule, ok := stepRules[state.Step]
	if !ok {
		// only a photo or Skip moves on from here
		b.metrics.SentMessages.WithLabelValues("text").Inc()
		return ctx.Send(b.t(ctx, "wizard.expect_photo"))
	}

	if err := validate.Var(text, rule); err != nil {
		b.log.Debug("Rejected wizard input", "step", state.Step, "error", err)
		b.metrics.SentMessages.WithLabelValues("text").Inc()
		return ctx.Send(b.t(ctx, "wizard.invalid"))
	}

	switch state.Step {
	case StepName:
		state.Draft.Name = text
	case StepIDNum:
		state.Draft.WorkerIDNum = text
	case StepPhone:
		state.Draft.Phone = text
	case StepDesignation:
		state.Draft.Designation = text
	case StepPhoto, StepSearch:
	}

	return b.advance(ctx, state)
}

// photoHandler stores the photo of the worker being added.
func (b *Bot) photoHandler(ctx telebot.Context) error {
	state, ok := b.stateManager.Get(ctx.Sender().ID)
	if !ok || state.Step != StepPhoto {
		b.metrics.SentMessages.WithLabelValues("text").Inc()
		return ctx.Send(b.t(ctx, "general.use_buttons"))
	}

	if msg := ctx.Message(); msg != nil && msg.Photo != nil {
		state.Draft.Photo = msg.Photo.FileID
	}
	return b.advance(ctx, state)
}

// designationHandler picks one of the predefined designations.
func (b *Bot) designationHandler(ctx telebot.Context) error {
	state, ok := b.stateManager.Get(ctx.Sender().ID)
	if !ok || state.Step != StepDesignation {
		return b.respondText(ctx, "")
	}

	args := callbackArgs(ctx)
	if len(args) != 1 {
		return b.respondError(ctx)
	}
	idx, err := strconv.Atoi(args[0])
	if err != nil || idx < 0 || idx >= len(models.Designations) {
		return b.respondError(ctx)
	}

	state.Draft.Designation = models.Designations[idx]
	if err = b.respondText(ctx, state.Draft.Designation); err != nil {
		return err
	}
	return b.advance(ctx, state)
}

// wizardSkipHandler leaves the current optional field empty.
func (b *Bot) wizardSkipHandler(ctx telebot.Context) error {
	state, ok := b.stateManager.Get(ctx.Sender().ID)
	if !ok || state.Step == StepName || state.Step == StepSearch {
		return b.respondText(ctx, "")
	}

	if err := b.respondText(ctx, ""); err != nil {
		return err
	}
	return b.advance(ctx, state)
}

// wizardCancelHandler drops the wizard and returns to the main menu.
func (b *Bot) wizardCancelHandler(ctx telebot.Context) error {
	b.stateManager.Clear(ctx.Sender().ID)

	if ctx.Callback() != nil {
		if err := b.respondText(ctx, ""); err != nil {
			return err
		}
	}
	return b.menus.ShowMenu(ctx, MenuMain, "wizard.canceled")
}

// advance moves the wizard to the step after state.Step and adds the worker
// once the last step is done.
func (b *Bot) advance(ctx telebot.Context, state UserState) error {
	next, done := nextStep(state.Step)
	if done {
		return b.finishWizard(ctx, state.Draft)
	}

	state.Step = next
	b.stateManager.Set(ctx.Sender().ID, state)
	return b.promptStep(ctx, next)
}

func nextStep(step Step) (Step, bool) {
	switch step {
	case StepName:
		return StepIDNum, false
	case StepIDNum:
		return StepPhone, false
	case StepPhone:
		return StepDesignation, false
	case StepDesignation:
		return StepPhoto, false
	case StepPhoto, StepSearch:
		return "", true
	default:
		return "", true
	}
}

// promptStep asks for the input of step.
func (b *Bot) promptStep(ctx telebot.Context, step Step) error {
	menu := &telebot.ReplyMarkup{}
	rows := make([]telebot.Row, 0, len(models.Designations)+1)

	if step == StepDesignation {
		for i, designation := range models.Designations {
			rows = append(rows, menu.Row(menu.Data(designation, btnDesignation.Unique, strconv.Itoa(i))))
		}
	}

	controls := []telebot.Btn{menu.Data(b.t(ctx, "wizard.cancel"), btnWizardCancel.Unique)}
	if step != StepName {
		controls = append([]telebot.Btn{menu.Data(b.t(ctx, "wizard.skip"), btnWizardSkip.Unique)}, controls...)
	}
	rows = append(rows, menu.Row(controls...))
	menu.Inline(rows...)

	b.metrics.SentMessages.WithLabelValues("text").Inc()
	return ctx.Send(b.t(ctx, "wizard."+string(step)), menu)
}

// finishWizard adds the drafted worker to the roster.
func (b *Bot) finishWizard(ctx telebot.Context, draft models.WorkerDraft) error {
	b.stateManager.Clear(ctx.Sender().ID)

	reqCtx, cancel := requestContext()
	defer cancel()

	worker, err := b.book.AddWorker(reqCtx, draft)
	if errors.Is(err, roster.ErrInvalidWorker) {
		b.log.Warn("Rejected worker draft", "error", err)
		b.metrics.SentMessages.WithLabelValues("error").Inc()
		return ctx.Send(b.t(ctx, "wizard.invalid"), b.menus.Build(ctx, MenuWorkers))
	}
	if err != nil {
		b.log.Error("Failed to add worker", "error", err)
		b.metrics.SentMessages.WithLabelValues("error").Inc()
		return ctx.Send(b.t(ctx, "error.internal"), b.menus.Build(ctx, MenuWorkers))
	}

	b.metrics.SentMessages.WithLabelValues("text").Inc()
	return ctx.Send(
		b.tWithData(ctx, "wizard.done", map[string]any{"name": html.EscapeString(worker.Name)}),
		b.menus.Build(ctx, MenuWorkers),
		telebot.ModeHTML,
	)
}
