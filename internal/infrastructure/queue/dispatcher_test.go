package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/inkpress/cms-backend/internal/core/domain"
	"github.com/inkpress/cms-backend/internal/core/ports"
)

type stubPosts struct {
	posts map[string]*domain.Post
}

func (s stubPosts) FindByID(_ context.Context, id string) (*domain.Post, error) {
	if p, ok := s.posts[id]; ok {
		return p, nil
	}
	return nil, domain.ErrPostNotFound
}

type recordingIndexer struct {
	mu      sync.Mutex
	calls   []string
	done    chan struct{}
	pending int
}

func newRecordingIndexer(expected int) *recordingIndexer {
	return &recordingIndexer{done: make(chan struct{}), pending: expected}
}

func (r *recordingIndexer) record(call string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call)
	r.pending--
	if r.pending == 0 {
		close(r.done)
	}
}

func (r *recordingIndexer) IndexPost(_ context.Context, post *domain.Post) error {
	r.record("index:" + post.ID)
	return nil
}

func (r *recordingIndexer) DeletePost(_ context.Context, id string) error {
	r.record("delete:" + id)
	return nil
}

func (r *recordingIndexer) wait(t *testing.T) []string {
	t.Helper()
	select {
	case <-r.done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for index jobs")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func TestDispatcher_ProcessesJobsInOrderPerPost(t *testing.T) {
	posts := stubPosts{posts: map[string]*domain.Post{"p1": {ID: "p1"}}}
	indexer := newRecordingIndexer(3)
	d := NewDispatcher(2, posts, indexer, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	d.Enqueue(ports.IndexJob{PostID: "p1", Op: ports.IndexUpsert})
	d.Enqueue(ports.IndexJob{PostID: "p1", Op: ports.IndexDelete})
	d.Enqueue(ports.IndexJob{PostID: "p1", Op: ports.IndexUpsert})

	got := indexer.wait(t)
	want := []string{"index:p1", "delete:p1", "index:p1"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("job %d: got %s, want %s (all: %v)", i, got[i], want[i], got)
		}
	}
}

func TestDispatcher_UpsertOfMissingPostDeletes(t *testing.T) {
	indexer := newRecordingIndexer(1)
	d := NewDispatcher(1, stubPosts{posts: map[string]*domain.Post{}}, indexer, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	d.Enqueue(ports.IndexJob{PostID: "gone", Op: ports.IndexUpsert})
	if got := indexer.wait(t); got[0] != "delete:gone" {
		t.Fatalf("expected delete, got %v", got)
	}
}

func TestDispatcher_ShardIndexIsStable(t *testing.T) {
	d := NewDispatcher(0, stubPosts{}, newRecordingIndexer(0), zerolog.Nop())
	if len(d.workers) != defaultWorkers {
		t.Fatalf("expected %d workers, got %d", defaultWorkers, len(d.workers))
	}
	first := d.shardIndex("post-42")
	for i := 0; i < 10; i++ {
		if d.shardIndex("post-42") != first {
			t.Fatal("shard index must be deterministic")
		}
	}
}

func TestDispatcher_EnqueueDropsWhenFull(t *testing.T) {
	d := NewDispatcher(1, stubPosts{}, newRecordingIndexer(0), zerolog.Nop())
	for i := 0; i < channelBuffer+5; i++ {
		d.Enqueue(ports.IndexJob{PostID: "p", Op: ports.IndexDelete})
	}
	if n := len(d.workers[0]); n != channelBuffer {
		t.Fatalf("expected a full buffer of %d, got %d", channelBuffer, n)
	}
}
