package chatclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFakeAPI(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := NewClient(server.URL, "test-token", WithHTTPClient(server.Client()))
	return server, client
}

func threadResponse(messages ...Message) ThreadDetail {
	detail := ThreadDetail{Messages: messages}
	detail.ID = "thread-1"
	return detail
}

func TestPoller_MergesServerUpdates(t *testing.T) {
	var calls atomic.Int64
	_, client := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		n := calls.Add(1)
		var detail ThreadDetail
		if n == 1 {
			detail = threadResponse(msg("a", 0, "SENT"))
		} else {
			detail = threadResponse(msg("a", 0, "READ"), msg("b", time.Minute, "SENT"))
		}
		_ = json.NewEncoder(w).Encode(detail)
	})

	updates := make(chan []Message, 16)
	poller := NewPoller(client, "thread-1", 20*time.Millisecond, OnUpdate(func(messages []Message) {
		updates <- messages
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	poller.Start(ctx)

	// Первый полл - bootstrap
	first := waitForUpdate(t, updates)
	require.Len(t, first, 1)
	assert.Equal(t, "SENT", first[0].Delivery)

	// Дожидаемся полла с двумя сообщениями
	deadline := time.After(2 * time.Second)
	for {
		select {
		case snapshot := <-updates:
			if len(snapshot) == 2 {
				assert.Equal(t, "READ", snapshot[0].Delivery, "Сервер подтвердил прочтение")
				assert.Equal(t, "b", snapshot[1].ID)
				return
			}
		case <-deadline:
			t.Fatal("Поллер так и не слил второй ответ сервера")
		}
	}
}

// TestPoller_SingleInFlight - медленный сервер не порождает
// накладывающихся запросов
func TestPoller_SingleInFlight(t *testing.T) {
	var inFlight atomic.Int64
	var maxInFlight atomic.Int64

	_, client := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		current := inFlight.Add(1)
		defer inFlight.Add(-1)

		for {
			prev := maxInFlight.Load()
			if current <= prev || maxInFlight.CompareAndSwap(prev, current) {
				break
			}
		}

		// Ответ заметно дольше интервала поллинга
		time.Sleep(100 * time.Millisecond)
		_ = json.NewEncoder(w).Encode(threadResponse(msg("a", 0, "SENT")))
	})

	poller := NewPoller(client, "thread-1", 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	poller.Start(ctx)

	time.Sleep(400 * time.Millisecond)
	cancel()

	assert.Equal(t, int64(1), maxInFlight.Load(), "Одновременный полл должен быть ровно один")
}

// TestPoller_StopsOnCancel - отмена контекста останавливает поллинг
func TestPoller_StopsOnCancel(t *testing.T) {
	var calls atomic.Int64
	_, client := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_ = json.NewEncoder(w).Encode(threadResponse())
	})

	poller := NewPoller(client, "thread-1", 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	poller.Start(ctx)
	time.Sleep(60 * time.Millisecond)
	cancel()

	time.Sleep(30 * time.Millisecond)
	after := calls.Load()
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, after, calls.Load(), "После отмены не должно быть новых поллов")
}

// TestPoller_SurvivesErrors - ошибка полла не убивает поллер
func TestPoller_SurvivesErrors(t *testing.T) {
	var calls atomic.Int64
	_, client := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":{"code":"INTERNAL","message":"boom"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(threadResponse(msg("a", 0, "SENT")))
	})

	var gotErr error
	var mu sync.Mutex
	updates := make(chan []Message, 16)
	poller := NewPoller(client, "thread-1", 20*time.Millisecond,
		OnUpdate(func(messages []Message) { updates <- messages }),
		OnError(func(err error) {
			mu.Lock()
			gotErr = err
			mu.Unlock()
		}),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	poller.Start(ctx)

	snapshot := waitForUpdate(t, updates)
	assert.Len(t, snapshot, 1)

	mu.Lock()
	defer mu.Unlock()
	var apiErr *APIError
	if assert.ErrorAs(t, gotErr, &apiErr) {
		assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	}
}

func waitForUpdate(t *testing.T, updates <-chan []Message) []Message {
	t.Helper()
	select {
	case snapshot := <-updates:
		return snapshot
	case <-time.After(2 * time.Second):
		t.Fatal("Поллер не прислал обновление")
		return nil
	}
}
