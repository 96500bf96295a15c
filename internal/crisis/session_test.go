package crisis

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ventspace/vent/internal/models"
)

// echoCompleter replies with a deterministic echo of the last user turn.
type echoCompleter struct{}

func (echoCompleter) Complete(_ context.Context, turns []models.ChatTurn) (string, error) {
	last := turns[len(turns)-1]
	return fmt.Sprintf("reply-to-%s", last.Content), nil
}

type failingCompleter struct{}

func (failingCompleter) Complete(context.Context, []models.ChatTurn) (string, error) {
	return "", errors.New("gateway exploded: 502 Bad Gateway")
}

// blockingCompleter holds the reply until release is closed.
type blockingCompleter struct {
	started chan struct{}
	release chan struct{}
}

func (c *blockingCompleter) Complete(context.Context, []models.ChatTurn) (string, error) {
	close(c.started)
	<-c.release
	return "done", nil
}

func TestStartSeedsGreeting(t *testing.T) {
	session := NewSession("quietfox", false, echoCompleter{}, zap.NewNop())

	transcript := session.Transcript()
	require.Len(t, transcript, 1)
	assert.Equal(t, models.RoleAssistant, transcript[0].Role)
	assert.Equal(t, GreetingMessage, transcript[0].Content)
}

func TestStartSeedsCheckInOpener(t *testing.T) {
	session := NewSession("quietfox", true, echoCompleter{}, zap.NewNop())

	transcript := session.Transcript()
	require.Len(t, transcript, 1)
	assert.Equal(t, CheckInMessage, transcript[0].Content)
}

func TestSendAppendsTurnsInOrder(t *testing.T) {
	session := NewSession("quietfox", false, echoCompleter{}, zap.NewNop())

	_, err := session.Send(context.Background(), "a")
	require.NoError(t, err)
	transcript, err := session.Send(context.Background(), "b")
	require.NoError(t, err)

	require.Len(t, transcript, 5) // seed + user a + reply + user b + reply
	assert.Equal(t, models.RoleUser, transcript[1].Role)
	assert.Equal(t, "a", transcript[1].Content)
	assert.Equal(t, models.RoleAssistant, transcript[2].Role)
	assert.Equal(t, "reply-to-a", transcript[2].Content)
	assert.Equal(t, "b", transcript[3].Content)
	assert.Equal(t, "reply-to-b", transcript[4].Content)
}

func TestSendFallsBackOnCompletionFailure(t *testing.T) {
	session := NewSession("quietfox", false, failingCompleter{}, zap.NewNop())

	transcript, err := session.Send(context.Background(), "I feel hopeless")
	require.NoError(t, err)

	last := transcript[len(transcript)-1]
	assert.Equal(t, models.RoleAssistant, last.Role)
	assert.Contains(t, last.Content, "988")
	assert.NotContains(t, last.Content, "502 Bad Gateway")
	assert.False(t, session.Busy())
}

func TestSendWhileBusyIsRejected(t *testing.T) {
	completer := &blockingCompleter{
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	session := NewSession("quietfox", false, completer, zap.NewNop())

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := session.Send(context.Background(), "first")
		assert.NoError(t, err)
	}()

	<-completer.started
	assert.True(t, session.Busy())

	_, err := session.Send(context.Background(), "second")
	assert.ErrorIs(t, err, ErrSessionBusy)

	close(completer.release)
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("first send did not finish")
	}
	assert.False(t, session.Busy())
}

func TestManagerStartAndGet(t *testing.T) {
	manager := NewSessionManager(echoCompleter{}, zap.NewNop())

	session := manager.Start("quietfox", false)
	found, exists := manager.Get(session.ID)
	require.True(t, exists)
	assert.Same(t, session, found)

	// Re-opening via Get never re-seeds.
	_, err := session.Send(context.Background(), "hello")
	require.NoError(t, err)
	again, _ := manager.Get(session.ID)
	assert.Len(t, again.Transcript(), 3)

	manager.Drop(session.ID)
	_, exists = manager.Get(session.ID)
	assert.False(t, exists)
}
