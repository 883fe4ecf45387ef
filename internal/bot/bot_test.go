package bot

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/UnknownOlympus/hazira/internal/i18n"
	"github.com/UnknownOlympus/hazira/internal/insight"
	"github.com/UnknownOlympus/hazira/internal/metrics"
	"github.com/UnknownOlympus/hazira/internal/models"
	"github.com/UnknownOlympus/hazira/internal/repository"
	"github.com/UnknownOlympus/hazira/internal/roster"
	"github.com/UnknownOlympus/hazira/internal/tracker"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"gopkg.in/telebot.v4"
)

const testUserID int64 = 42

var fixedNow = time.Date(2024, time.March, 15, 9, 0, 0, 0, time.UTC)

type nopStore struct{}

func (nopStore) Load(_ context.Context) ([]byte, error) { return nil, repository.ErrStateNotFound }

func (nopStore) Save(_ context.Context, _ []byte) error { return nil }

type sentMessage struct {
	to   telebot.Recipient
	what any
	opts []any
}

func (m sentMessage) text() string {
	text, _ := m.what.(string)
	return text
}

func (m sentMessage) markup() *telebot.ReplyMarkup {
	for _, opt := range m.opts {
		if markup, ok := opt.(*telebot.ReplyMarkup); ok {
			return markup
		}
	}
	return nil
}

// fakeContext records what handlers send. Methods that are not overridden
// panic through the nil embedded interface.
type fakeContext struct {
	telebot.Context

	sender    *telebot.User
	callback  *telebot.Callback
	text      string
	message   *telebot.Message
	sent      []sentMessage
	edited    []sentMessage
	responses []*telebot.CallbackResponse
}

func newTextContext(text string) *fakeContext {
	return &fakeContext{sender: &telebot.User{ID: testUserID, Username: "foreman"}, text: text}
}

func newCallbackContext(data string) *fakeContext {
	return &fakeContext{
		sender:   &telebot.User{ID: testUserID, Username: "foreman"},
		callback: &telebot.Callback{Data: data},
	}
}

func (c *fakeContext) Sender() *telebot.User        { return c.sender }
func (c *fakeContext) Recipient() telebot.Recipient { return c.sender }
func (c *fakeContext) Callback() *telebot.Callback  { return c.callback }
func (c *fakeContext) Text() string                 { return c.text }
func (c *fakeContext) Message() *telebot.Message    { return c.message }

func (c *fakeContext) Send(what any, opts ...any) error {
	c.sent = append(c.sent, sentMessage{to: c.sender, what: what, opts: opts})
	return nil
}

func (c *fakeContext) Edit(what any, opts ...any) error {
	c.edited = append(c.edited, sentMessage{what: what, opts: opts})
	return nil
}

func (c *fakeContext) Respond(resp ...*telebot.CallbackResponse) error {
	c.responses = append(c.responses, resp...)
	return nil
}

func (c *fakeContext) lastSent(t *testing.T) sentMessage {
	t.Helper()
	require.NotEmpty(t, c.sent, "nothing was sent")
	return c.sent[len(c.sent)-1]
}

func (c *fakeContext) lastEdit(t *testing.T) sentMessage {
	t.Helper()
	require.NotEmpty(t, c.edited, "nothing was edited")
	return c.edited[len(c.edited)-1]
}

func (c *fakeContext) lastResponse(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, c.responses, "callback was not answered")
	return c.responses[len(c.responses)-1].Text
}

type fakeMessenger struct {
	mu    sync.Mutex
	sent  []sentMessage
	edits []sentMessage
	err   error
}

func (m *fakeMessenger) Send(to telebot.Recipient, what any, opts ...any) (*telebot.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.sent = append(m.sent, sentMessage{to: to, what: what, opts: opts})
	return &telebot.Message{ID: len(m.sent), Chat: &telebot.Chat{ID: testUserID}}, nil
}

func (m *fakeMessenger) Edit(_ telebot.Editable, what any, opts ...any) (*telebot.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.edits = append(m.edits, sentMessage{what: what, opts: opts})
	return &telebot.Message{}, nil
}

func (m *fakeMessenger) sentMessages() []sentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sentMessage(nil), m.sent...)
}

func (m *fakeMessenger) editedMessages() []sentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sentMessage(nil), m.edits...)
}

func newTestBot(t *testing.T, settings Settings) (*Bot, *tracker.Tracker, *fakeMessenger) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	appMetrics := metrics.NewMetrics(prometheus.NewRegistry())

	seq := 0
	book := tracker.New(logger, nopStore{}, appMetrics,
		tracker.WithClock(func() time.Time { return fixedNow }),
		tracker.WithLocation(time.UTC),
		tracker.WithRosterOptions(roster.WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("w-%d", seq)
		})),
	)

	if settings.Language == "" {
		settings.Language = i18n.English
	}

	b, err := newBot(logger, book, insight.NewSummarizer(logger, nil, appMetrics), appMetrics, settings)
	require.NoError(t, err)

	sender := &fakeMessenger{}
	b.sender = sender

	return b, book, sender
}

func addWorker(t *testing.T, book *tracker.Tracker, draft models.WorkerDraft) models.Worker {
	t.Helper()
	worker, err := book.AddWorker(t.Context(), draft)
	require.NoError(t, err)
	return worker
}
