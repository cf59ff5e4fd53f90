package notification

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"terrasite_backend/internal/events"
	"terrasite_backend/internal/leads/domain"
	"terrasite_backend/internal/notification/message"
	"terrasite_backend/platform/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	channel string
	err     error
	panics  bool

	mu   sync.Mutex
	sent []message.Message
}

func (n *recordingNotifier) Channel() string { return n.channel }

func (n *recordingNotifier) Send(_ context.Context, msg message.Message) error {
	if n.panics {
		panic("boom")
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
	return n.err
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

type fakeQueue struct {
	err   error
	leads []domain.Lead
}

func (q *fakeQueue) EnqueueLeadNotify(_ context.Context, lead domain.Lead) error {
	q.leads = append(q.leads, lead)
	return q.err
}

func testLead() domain.Lead {
	return domain.NewLead(12, domain.Submission{
		Name:          "Олег",
		Services:      []string{"Лендинг"},
		Description:   "Нужен лендинг для продажи туров по Алтаю с формой бронирования и отзывами",
		Budget:        domain.Budget150to300,
		ContactMethod: domain.ContactWhatsApp,
		Phone:         "+79161234567",
	}, time.Date(2024, time.May, 2, 8, 0, 0, 0, time.UTC))
}

func newTestLogger() (*logger.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return logger.NewWithWriter("production", &buf), &buf
}

func TestDispatchSendsToEveryNotifier(t *testing.T) {
	log, _ := newTestLogger()
	mail := &recordingNotifier{channel: "email"}
	tg := &recordingNotifier{channel: "telegram"}
	d := NewDispatcher(log, time.UTC, mail, tg)

	require.NoError(t, d.Dispatch(context.Background(), testLead()))

	require.Equal(t, 1, mail.count())
	require.Equal(t, 1, tg.count())
	assert.Equal(t, "Новая заявка с сайта Terrasite от Олег", mail.sent[0].Subject)
	assert.Equal(t, []string{"email", "telegram"}, d.Channels())
}

func TestDispatchContinuesAfterFailure(t *testing.T) {
	log, buf := newTestLogger()
	broken := &recordingNotifier{channel: "email", err: errors.New("auth failed")}
	panicky := &recordingNotifier{channel: "pager", panics: true}
	tg := &recordingNotifier{channel: "telegram"}
	d := NewDispatcher(log, time.UTC, broken, panicky, tg)

	err := d.Dispatch(context.Background(), testLead())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "email: auth failed")
	assert.Contains(t, err.Error(), "pager: notifier panic")
	assert.Equal(t, 1, tg.count())
	assert.Contains(t, buf.String(), "notification_failed")
	assert.Contains(t, buf.String(), `"lead_id":12`)
}

func TestDispatchWithoutNotifiers(t *testing.T) {
	log, _ := newTestLogger()
	d := NewDispatcher(log, nil)

	assert.False(t, d.Enabled())
	assert.NoError(t, d.Dispatch(context.Background(), testLead()))
}

func TestHandleLeadAcceptedInline(t *testing.T) {
	log, _ := newTestLogger()
	mail := &recordingNotifier{channel: "email", err: errors.New("down")}
	m := New(NewDispatcher(log, time.UTC, mail), nil, log)

	err := m.Handle(context.Background(), events.LeadAccepted{Lead: testLead()})

	assert.NoError(t, err)
	assert.Equal(t, 1, mail.count())
}

func TestHandleLeadAcceptedQueued(t *testing.T) {
	log, _ := newTestLogger()
	mail := &recordingNotifier{channel: "email"}
	queue := &fakeQueue{}
	m := New(NewDispatcher(log, time.UTC, mail), queue, log)

	require.NoError(t, m.Handle(context.Background(), events.LeadAccepted{Lead: testLead()}))

	require.Len(t, queue.leads, 1)
	assert.Equal(t, int64(12), queue.leads[0].ID)
	assert.Zero(t, mail.count())
}

func TestHandleFallsBackWhenQueueFails(t *testing.T) {
	log, buf := newTestLogger()
	mail := &recordingNotifier{channel: "email"}
	queue := &fakeQueue{err: errors.New("redis down")}
	m := New(NewDispatcher(log, time.UTC, mail), queue, log)

	require.NoError(t, m.Handle(context.Background(), events.LeadAccepted{Lead: testLead()}))

	assert.Equal(t, 1, mail.count())
	assert.Contains(t, buf.String(), `"channel":"queue"`)
}

func TestRegisterHandlersReceivesBusEvents(t *testing.T) {
	log, _ := newTestLogger()
	mail := &recordingNotifier{channel: "email"}
	bus := events.NewInMemoryBus(log)
	New(NewDispatcher(log, time.UTC, mail), nil, log).RegisterHandlers(bus)

	bus.Publish(context.Background(), events.LeadAccepted{BaseEvent: events.NewBaseEvent(), Lead: testLead()})
	bus.Wait()

	assert.Equal(t, 1, mail.count())
}
