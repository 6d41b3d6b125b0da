package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/chatty/internal/core"
)

type fakeMemory struct {
	lastUser    time.Time
	hasHistory  bool
	lastUserErr error

	recent   []core.Message
	facts    []string
	messages []core.Message
}

func (f *fakeMemory) LastUserMessageTime(context.Context) (time.Time, bool, error) {
	return f.lastUser, f.hasHistory, f.lastUserErr
}

func (f *fakeMemory) RecentHistory(context.Context, int) ([]core.Message, error) {
	return f.recent, nil
}

func (f *fakeMemory) AllFacts(context.Context) ([]string, error) {
	return f.facts, nil
}

func (f *fakeMemory) AddMessage(_ context.Context, role, content string) (string, error) {
	f.messages = append(f.messages, core.Message{Role: role, Content: content})
	return "id", nil
}

type fakeGenerator struct {
	message   string
	err       error
	gotPrompt string
	calls     int
}

func (f *fakeGenerator) GenerateProactiveMessage(_ context.Context, _ string, proactivePrompt string, _ []core.Message, _ []string) (string, error) {
	f.calls++
	f.gotPrompt = proactivePrompt
	return f.message, f.err
}

type fakePersona struct {
	prompts map[string]string
}

func (f *fakePersona) SystemPrompt() string { return "sys" }
func (f *fakePersona) ProactivePrompt(kind string) string {
	return f.prompts[kind]
}

type fakeSender struct {
	err  error
	sent []string
}

func (f *fakeSender) SendProactive(_ context.Context, text string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, text)
	return nil
}

func newTestScheduler(mem *fakeMemory, gen *fakeGenerator, sender *fakeSender, now time.Time) *Scheduler {
	s := New(mem, gen, &fakePersona{}, sender, time.Hour, 24*time.Hour, 10)
	s.nowFn = func() time.Time { return now }
	return s
}

func TestCheckSendsAfterInactivity(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	mem := &fakeMemory{lastUser: now.Add(-25 * time.Hour), hasHistory: true, facts: []string{"has a dog"}}
	gen := &fakeGenerator{message: "hey, long time!"}
	sender := &fakeSender{}
	s := newTestScheduler(mem, gen, sender, now)

	s.checkAndSend(context.Background())

	require.Equal(t, []string{"hey, long time!"}, sender.sent)
	require.Len(t, mem.messages, 1)
	assert.Equal(t, core.RoleAssistant, mem.messages[0].Role)
	assert.Equal(t, "hey, long time!", mem.messages[0].Content)
	assert.Equal(t, now, s.lastProactiveAt)
	assert.Equal(t, defaultProactivePrompt, gen.gotPrompt)
}

func TestCheckUsesCharacterPrompt(t *testing.T) {
	now := time.Now()
	mem := &fakeMemory{lastUser: now.Add(-25 * time.Hour), hasHistory: true}
	gen := &fakeGenerator{message: "hi"}
	s := New(mem, gen, &fakePersona{prompts: map[string]string{"check_in": "be gentle"}}, &fakeSender{}, time.Hour, 24*time.Hour, 10)
	s.nowFn = func() time.Time { return now }

	s.checkAndSend(context.Background())

	assert.Equal(t, "be gentle", gen.gotPrompt)
}

func TestCheckSkipsWithoutHistory(t *testing.T) {
	gen := &fakeGenerator{message: "hi"}
	sender := &fakeSender{}
	s := newTestScheduler(&fakeMemory{hasHistory: false}, gen, sender, time.Now())

	s.checkAndSend(context.Background())

	assert.Zero(t, gen.calls)
	assert.Empty(t, sender.sent)
}

func TestCheckSkipsWhenUserActive(t *testing.T) {
	now := time.Now()
	sender := &fakeSender{}
	s := newTestScheduler(&fakeMemory{lastUser: now.Add(-2 * time.Hour), hasHistory: true}, &fakeGenerator{message: "hi"}, sender, now)

	s.checkAndSend(context.Background())

	assert.Empty(t, sender.sent)
}

func TestCheckSuppressesSecondSendInWindow(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	mem := &fakeMemory{lastUser: now.Add(-30 * time.Hour), hasHistory: true}
	gen := &fakeGenerator{message: "hi"}
	sender := &fakeSender{}
	s := newTestScheduler(mem, gen, sender, now)

	s.checkAndSend(context.Background())
	require.Len(t, sender.sent, 1)

	// One hour later, still the same inactivity window
	s.nowFn = func() time.Time { return now.Add(time.Hour) }
	s.checkAndSend(context.Background())
	assert.Len(t, sender.sent, 1)

	// Past the window it fires again
	s.nowFn = func() time.Time { return now.Add(25 * time.Hour) }
	s.checkAndSend(context.Background())
	assert.Len(t, sender.sent, 2)
}

func TestCheckSendFailureLeavesWindowOpen(t *testing.T) {
	now := time.Now()
	mem := &fakeMemory{lastUser: now.Add(-25 * time.Hour), hasHistory: true}
	sender := &fakeSender{err: errors.New("telegram down")}
	s := newTestScheduler(mem, &fakeGenerator{message: "hi"}, sender, now)

	s.checkAndSend(context.Background())

	assert.True(t, s.lastProactiveAt.IsZero())
	assert.Empty(t, mem.messages)

	// Recovery on the next tick
	sender.err = nil
	s.checkAndSend(context.Background())
	assert.Len(t, sender.sent, 1)
	assert.Len(t, mem.messages, 1)
}

func TestCheckGenerationFailureIsSwallowed(t *testing.T) {
	now := time.Now()
	mem := &fakeMemory{lastUser: now.Add(-25 * time.Hour), hasHistory: true}
	sender := &fakeSender{}
	s := newTestScheduler(mem, &fakeGenerator{err: errors.New("model gone")}, sender, now)

	s.checkAndSend(context.Background())

	assert.Empty(t, sender.sent)
	assert.True(t, s.lastProactiveAt.IsZero())
}

func TestCheckStorageErrorIsSwallowed(t *testing.T) {
	sender := &fakeSender{}
	s := newTestScheduler(&fakeMemory{lastUserErr: errors.New("db locked")}, &fakeGenerator{message: "hi"}, sender, time.Now())

	s.checkAndSend(context.Background())

	assert.Empty(t, sender.sent)
}

func TestStartStopsOnShutdown(t *testing.T) {
	s := newTestScheduler(&fakeMemory{}, &fakeGenerator{}, &fakeSender{}, time.Now())

	done := make(chan struct{})
	go func() {
		_ = s.Start(context.Background())
		close(done)
	}()

	require.NoError(t, s.Shutdown(context.Background()))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}
