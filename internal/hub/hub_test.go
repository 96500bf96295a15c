package hub

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testEvent struct {
	Text string `json:"text"`
}

func dialTopic(t *testing.T, server *httptest.Server, topic string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?topic=" + topic
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	return conn
}

func TestBroadcastReachesTopicSubscribersOnly(t *testing.T) {
	h := New(zap.NewNop())
	server := httptest.NewServer(http.HandlerFunc(h.HandleWS))
	defer server.Close()

	groupConn := dialTopic(t, server, GroupTopic("g1"))
	defer groupConn.Close()
	dmConn := dialTopic(t, server, ConversationTopic("c1"))
	defer dmConn.Close()

	h.Broadcast(GroupTopic("g1"), testEvent{Text: "hello"})

	require.NoError(t, groupConn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var got testEvent
	require.NoError(t, groupConn.ReadJSON(&got))
	assert.Equal(t, "hello", got.Text)

	// The DM subscriber must not see group traffic.
	require.NoError(t, dmConn.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	assert.Error(t, dmConn.ReadJSON(&got))
}

func TestBroadcastToEmptyTopicIsNoOp(t *testing.T) {
	h := New(zap.NewNop())
	h.Broadcast(GroupTopic("nobody-home"), testEvent{Text: "x"})
}

func TestConcurrentBroadcastsToOneSubscriber(t *testing.T) {
	h := New(zap.NewNop())
	server := httptest.NewServer(http.HandlerFunc(h.HandleWS))
	defer server.Close()

	conn := dialTopic(t, server, GroupTopic("g1"))
	defer conn.Close()

	const senders = 8
	const perSender = 50

	// Drain on the client side so the server's write buffer never fills.
	received := make(chan struct{}, senders*perSender)
	go func() {
		var got testEvent
		for {
			if err := conn.ReadJSON(&got); err != nil {
				return
			}
			received <- struct{}{}
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < senders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perSender; j++ {
				h.Broadcast(GroupTopic("g1"), testEvent{Text: "m"})
			}
		}()
	}
	wg.Wait()

	for i := 0; i < senders*perSender; i++ {
		select {
		case <-received:
		case <-time.After(5 * time.Second):
			t.Fatalf("received %d of %d messages", i, senders*perSender)
		}
	}
}

func TestCloseAllDisconnectsSubscribers(t *testing.T) {
	h := New(zap.NewNop())
	server := httptest.NewServer(http.HandlerFunc(h.HandleWS))
	defer server.Close()

	conn := dialTopic(t, server, GroupTopic("g1"))
	defer conn.Close()

	h.CloseAll()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)

	done := make(chan struct{})
	go func() {
		h.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("hub goroutines did not finish")
	}
}

func TestHandleWSRequiresTopic(t *testing.T) {
	h := New(zap.NewNop())
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ws", nil)

	h.HandleWS(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
