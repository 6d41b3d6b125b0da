package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/chatty/internal/core"
)

type fakeRecaller struct {
	relevant []core.Message
	recent   []core.Message
	facts    []string
	err      error
}

func (f *fakeRecaller) RelevantHistory(context.Context, string, int) ([]core.Message, error) {
	return f.relevant, f.err
}

func (f *fakeRecaller) RecentHistory(context.Context, int) ([]core.Message, error) {
	return f.recent, f.err
}

func (f *fakeRecaller) RelevantFacts(context.Context, string, int) ([]string, error) {
	return f.facts, f.err
}

type fakePersona struct{}

func (fakePersona) SystemPrompt() string { return "You are Chatty." }

func at(sec int) time.Time {
	return time.Date(2025, 5, 1, 10, 0, sec, 0, time.UTC)
}

func msg(role string, sec int, content string) core.Message {
	return core.Message{Role: role, Content: content, Timestamp: at(sec)}
}

func TestAssembleMergesAndSorts(t *testing.T) {
	store := &fakeRecaller{
		recent: []core.Message{
			msg(core.RoleUser, 30, "newest"),
			msg(core.RoleAssistant, 20, "middle"),
		},
		relevant: []core.Message{
			msg(core.RoleUser, 10, "oldest"),
			// Same role and timestamp as a recent entry: dropped
			msg(core.RoleAssistant, 20, "middle duplicate"),
		},
	}
	a := NewAssembler(store, fakePersona{}, 10, 5, 5)

	prompt, history, err := a.Assemble(context.Background(), "query")

	require.NoError(t, err)
	assert.Equal(t, "You are Chatty.", prompt)

	require.Len(t, history, 3)
	assert.Equal(t, "oldest", history[0].Content)
	assert.Equal(t, "middle", history[1].Content)
	assert.Equal(t, "newest", history[2].Content)
}

func TestAssembleRecentWinsOnCollision(t *testing.T) {
	store := &fakeRecaller{
		recent:   []core.Message{msg(core.RoleUser, 10, "from recent")},
		relevant: []core.Message{msg(core.RoleUser, 10, "from relevant")},
	}
	a := NewAssembler(store, fakePersona{}, 10, 5, 5)

	_, history, err := a.Assemble(context.Background(), "query")

	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "from recent", history[0].Content)
}

func TestAssembleSameTimestampDifferentRolesKept(t *testing.T) {
	store := &fakeRecaller{
		recent: []core.Message{
			msg(core.RoleUser, 10, "question"),
			msg(core.RoleAssistant, 10, "answer"),
		},
	}
	a := NewAssembler(store, fakePersona{}, 10, 5, 5)

	_, history, err := a.Assemble(context.Background(), "query")

	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestAssembleAppendsFacts(t *testing.T) {
	store := &fakeRecaller{facts: []string{"has a dog", "lives in Berlin"}}
	a := NewAssembler(store, fakePersona{}, 10, 5, 5)

	prompt, _, err := a.Assemble(context.Background(), "query")

	require.NoError(t, err)
	assert.Contains(t, prompt, "## What you know about the user:")
	assert.Contains(t, prompt, "- has a dog\n- lives in Berlin")
}

func TestAssembleNoFactsLeavesPromptBare(t *testing.T) {
	a := NewAssembler(&fakeRecaller{}, fakePersona{}, 10, 5, 5)

	prompt, _, err := a.Assemble(context.Background(), "query")

	require.NoError(t, err)
	assert.Equal(t, "You are Chatty.", prompt)
}

func TestAssembleStoreFailure(t *testing.T) {
	a := NewAssembler(&fakeRecaller{err: errors.New("db locked")}, fakePersona{}, 10, 5, 5)

	_, _, err := a.Assemble(context.Background(), "query")
	require.Error(t, err)
}

func TestMergeHistoriesEmpty(t *testing.T) {
	assert.Empty(t, mergeHistories(nil, nil))
}
