package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/vistoria/inspection-api/internal/core/domain"
)

type recordingHandler struct {
	mu       sync.Mutex
	calls    map[string]int
	order    []string
	failures map[string]int
	done     chan string
}

func newRecordingHandler() *recordingHandler {
	return &recordingHandler{
		calls:    map[string]int{},
		failures: map[string]int{},
		done:     make(chan string, 64),
	}
}

func (h *recordingHandler) Process(_ context.Context, id string) error {
	h.mu.Lock()
	h.calls[id]++
	h.order = append(h.order, id)
	fail := h.failures[id] > 0
	if fail {
		h.failures[id]--
	}
	h.mu.Unlock()

	h.done <- id
	if fail {
		return errors.New("store unavailable")
	}
	return nil
}

func (h *recordingHandler) count(id string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.calls[id]
}

func waitFor(t *testing.T, ch <-chan string, n int) {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for i := 0; i < n; i++ {
		select {
		case <-ch:
		case <-timeout:
			t.Fatalf("timed out after %d of %d calls", i, n)
		}
	}
}

func TestDispatcher_ProcessesInOrderPerCompany(t *testing.T) {
	h := newRecordingHandler()
	d := NewDispatcher(4, 3, h, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	ids := []string{"op-1", "op-2", "op-3", "op-4"}
	for _, id := range ids {
		d.Enqueue(&domain.SyncOperation{ID: id, CompanyID: "company-a"})
	}
	waitFor(t, h.done, len(ids))

	h.mu.Lock()
	defer h.mu.Unlock()
	for i, id := range ids {
		if h.order[i] != id {
			t.Fatalf("expected %s at position %d, got %v", id, i, h.order)
		}
	}
}

func TestDispatcher_RetriesFailedOperation(t *testing.T) {
	h := newRecordingHandler()
	h.failures["op-1"] = 1
	d := NewDispatcher(1, 3, h, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	d.Enqueue(&domain.SyncOperation{ID: "op-1", CompanyID: "company-a"})
	waitFor(t, h.done, 2)

	if got := h.count("op-1"); got != 2 {
		t.Fatalf("expected 2 calls, got %d", got)
	}
}

func TestDispatcher_RetryRejoinsBackOfQueue(t *testing.T) {
	h := newRecordingHandler()
	h.failures["op-1"] = 1
	d := NewDispatcher(1, 3, h, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	d.Enqueue(&domain.SyncOperation{ID: "op-1", CompanyID: "company-a"})
	d.Enqueue(&domain.SyncOperation{ID: "op-2", CompanyID: "company-a"})
	waitFor(t, h.done, 3)

	h.mu.Lock()
	defer h.mu.Unlock()
	want := []string{"op-1", "op-2", "op-1"}
	for i, id := range want {
		if h.order[i] != id {
			t.Fatalf("expected order %v, got %v", want, h.order)
		}
	}
}

func TestDispatcher_StopsAfterMaxAttempts(t *testing.T) {
	h := newRecordingHandler()
	h.failures["op-1"] = 10
	d := NewDispatcher(1, 2, h, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	d.Enqueue(&domain.SyncOperation{ID: "op-1", CompanyID: "company-a"})
	waitFor(t, h.done, 2)
	time.Sleep(2 * baseBackoff)

	if got := h.count("op-1"); got != 2 {
		t.Fatalf("expected processing to stop at 2 attempts, got %d", got)
	}
}

func TestDispatcher_ShardIndexIsStable(t *testing.T) {
	d := NewDispatcher(8, 0, newRecordingHandler(), zerolog.Nop())
	first := d.shardIndex("company-a")
	for i := 0; i < 10; i++ {
		if got := d.shardIndex("company-a"); got != first {
			t.Fatalf("shard changed from %d to %d", first, got)
		}
	}
	if first < 0 || first >= 8 {
		t.Fatalf("shard %d out of range", first)
	}
}

func TestBackoff(t *testing.T) {
	if got := backoff(1); got != baseBackoff {
		t.Fatalf("expected %s, got %s", baseBackoff, got)
	}
	if got := backoff(2); got != 2*baseBackoff {
		t.Fatalf("expected %s, got %s", 2*baseBackoff, got)
	}
	if got := backoff(40); got != maxBackoff {
		t.Fatalf("expected cap %s, got %s", maxBackoff, got)
	}
}

func TestDispatcher_StopsOnCancel(t *testing.T) {
	d := NewDispatcher(2, 1, newRecordingHandler(), zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		d.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("workers did not stop")
	}
}
