package bot

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/UnknownOlympus/hazira/internal/i18n"
	"github.com/UnknownOlympus/hazira/internal/insight"
	"github.com/UnknownOlympus/hazira/internal/ledger"
	"github.com/UnknownOlympus/hazira/internal/metrics"
	"github.com/UnknownOlympus/hazira/internal/models"
	"github.com/UnknownOlympus/hazira/internal/tracker"
	"gopkg.in/telebot.v4"
)

const (
	handlerTimeout = 3 * time.Second
	insightTimeout = 30 * time.Second
)

// AttendanceBook is the roster and attendance state the bot works on.
type AttendanceBook interface {
	AddWorker(ctx context.Context, draft models.WorkerDraft) (models.Worker, error)
	RemoveWorker(ctx context.Context, workerID string) bool
	MarkStatus(ctx context.Context, workerID string, status models.Status) (models.AttendanceRecord, error)
	Toggle(ctx context.Context, workerID string) (models.AttendanceRecord, error)
	Today() models.Date
	Summary() ledger.DaySummary
	Roll(mode ledger.FilterMode) []tracker.Entry
	Workers() []models.Worker
	Search(query string) []models.Worker
	Worker(workerID string) (models.Worker, bool)
	Recent(n int) ([]models.Worker, []models.AttendanceRecord)
	LastMarked() (models.LastMarked, bool)
}

// messenger sends messages outside of an update, e.g. the digest or a finished insight.
type messenger interface {
	Send(to telebot.Recipient, what any, opts ...any) (*telebot.Message, error)
	Edit(msg telebot.Editable, what any, opts ...any) (*telebot.Message, error)
}

// Settings holds the bot options taken from the configuration.
type Settings struct {
	Token    string
	Poller   time.Duration
	OwnerID  int64  // restricts the bot to this user when not zero
	Language string // default interface language
}

// Bot contains the bot API instance and other information.
type Bot struct {
	bot          *telebot.Bot
	sender       messenger
	log          *slog.Logger
	book         AttendanceBook
	summarizer   *insight.Summarizer
	metrics      *metrics.Metrics
	stateManager *StateManager
	localizer    *i18n.Localizer
	menus        *MenuBuilder
	ownerID      int64
	defaultLang  string

	langMu    sync.RWMutex
	languages map[int64]string // user id -> chosen language
}

var (
	btnToggle         = telebot.InlineButton{Unique: "att_toggle"}
	btnFilter         = telebot.InlineButton{Unique: "att_filter"}
	btnMark           = telebot.InlineButton{Unique: "worker_mark"}
	btnWorkerDetails  = telebot.InlineButton{Unique: "worker_details"}
	btnWorkerPhoto    = telebot.InlineButton{Unique: "worker_photo"}
	btnWorkerDelete   = telebot.InlineButton{Unique: "worker_delete"}
	btnDeleteConfirm  = telebot.InlineButton{Unique: "worker_delete_yes"}
	btnDeleteCancel   = telebot.InlineButton{Unique: "worker_delete_no"}
	btnDesignation    = telebot.InlineButton{Unique: "wizard_designation"}
	btnWizardSkip     = telebot.InlineButton{Unique: "wizard_skip"}
	btnWizardCancel   = telebot.InlineButton{Unique: "wizard_cancel"}
	btnLanguageChoice = telebot.InlineButton{Unique: "language"}
)

// NewBot creates a new bot with the given token.
func NewBot(
	log *slog.Logger,
	book AttendanceBook,
	summarizer *insight.Summarizer,
	appMetrics *metrics.Metrics,
	settings Settings,
) (*Bot, error) {
	bot, err := telebot.NewBot(telebot.Settings{
		Token:  settings.Token,
		Poller: &telebot.LongPoller{Timeout: settings.Poller},
		OnError: func(err error, ctx telebot.Context) {
			log.Error("Failed to handle update", "error", err)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Telegram bot: %w", err)
	}
	log.Info("Authorized on account", "account", bot.Me.Username)

	botInstance, err := newBot(log, book, summarizer, appMetrics, settings)
	if err != nil {
		return nil, err
	}
	botInstance.bot = bot
	botInstance.sender = bot

	botInstance.registerRoutes()

	return botInstance, nil
}

// newBot builds the bot without connecting to Telegram.
func newBot(
	log *slog.Logger,
	book AttendanceBook,
	summarizer *insight.Summarizer,
	appMetrics *metrics.Metrics,
	settings Settings,
) (*Bot, error) {
	localizer, err := i18n.NewLocalizer()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize localizer: %w", err)
	}

	botInstance := &Bot{
		log:          log,
		book:         book,
		summarizer:   summarizer,
		metrics:      appMetrics,
		stateManager: NewStateManager(),
		localizer:    localizer,
		ownerID:      settings.OwnerID,
		defaultLang:  i18n.NormalizeLanguageCode(settings.Language, i18n.Bengali),
		languages:    make(map[int64]string),
	}
	botInstance.menus = NewMenuBuilder(botInstance)

	return botInstance, nil
}

// Start launches the bot to listen for updates.
func (b *Bot) Start() {
	b.log.Info("Telegram bot is starting...")
	b.bot.Start()
}

// Stop gracefully stops the Telegram bot and logs the action.
func (b *Bot) Stop() {
	b.log.Info("Telegram bot is stopped...")
	b.bot.Stop()
}

// registerRoutes configures all routes (commands).
func (b *Bot) registerRoutes() {
	if b.ownerID != 0 {
		b.bot.Use(b.OwnerOnly)
	}

	b.bot.Handle("/start", b.startHandler)
	b.bot.Handle("/dashboard", b.dashboardHandler)
	b.bot.Handle("/attendance", b.attendanceHandler)
	b.bot.Handle("/workers", b.workersHandler)
	b.bot.Handle("/add", b.addWorkerHandler)
	b.bot.Handle("/report", b.reportHandler)
	b.bot.Handle("/insight", b.insightHandler)
	b.bot.Handle("/language", b.languageHandler)
	b.bot.Handle("/cancel", b.wizardCancelHandler)
	b.bot.Handle(telebot.OnText, b.routeTextHandler)
	b.bot.Handle(telebot.OnPhoto, b.photoHandler)

	// Inline button callbacks
	b.bot.Handle(&btnToggle, b.toggleHandler)
	b.bot.Handle(&btnFilter, b.filterHandler)
	b.bot.Handle(&btnMark, b.markHandler)
	b.bot.Handle(&btnWorkerDetails, b.workerDetailsHandler)
	b.bot.Handle(&btnWorkerPhoto, b.workerPhotoHandler)
	b.bot.Handle(&btnWorkerDelete, b.workerDeleteHandler)
	b.bot.Handle(&btnDeleteConfirm, b.workerDeleteConfirmHandler)
	b.bot.Handle(&btnDeleteCancel, b.workerDeleteCancelHandler)
	b.bot.Handle(&btnDesignation, b.designationHandler)
	b.bot.Handle(&btnWizardSkip, b.wizardSkipHandler)
	b.bot.Handle(&btnWizardCancel, b.wizardCancelHandler)
	b.bot.Handle(&btnLanguageChoice, b.languageChangeHandler)
}

// langFor returns the language chosen by the user, or the default one.
func (b *Bot) langFor(userID int64) string {
	b.langMu.RLock()
	defer b.langMu.RUnlock()

	if lang, ok := b.languages[userID]; ok {
		return lang
	}
	return b.defaultLang
}

func (b *Bot) setLanguage(userID int64, lang string) {
	b.langMu.Lock()
	defer b.langMu.Unlock()

	b.languages[userID] = lang
}

// getUserLanguage returns the language of the user behind the update.
func (b *Bot) getUserLanguage(tCtx telebot.Context) string {
	if tCtx.Sender() == nil {
		return b.defaultLang
	}
	return b.langFor(tCtx.Sender().ID)
}

// t is a shorthand method for getting translations.
func (b *Bot) t(tCtx telebot.Context, key string) string {
	return b.localizer.Get(b.getUserLanguage(tCtx), key)
}

// tWithData is a shorthand method for getting translations with placeholder data.
func (b *Bot) tWithData(tCtx telebot.Context, key string, data map[string]any) string {
	return b.localizer.GetWithData(b.getUserLanguage(tCtx), key, data)
}

// view returns the formatter for the user behind the update.
func (b *Bot) view(tCtx telebot.Context) views {
	return views{loc: b.localizer, lang: b.getUserLanguage(tCtx)}
}
