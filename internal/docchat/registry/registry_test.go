package registry

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errx "github.com/docchat-core/client/internal/core/error"
	"github.com/docchat-core/client/internal/docchat/model"
)

type fakeLister struct {
	mu    sync.Mutex
	docs  []model.Document
	err   error
	calls atomic.Int32
	gate  chan struct{}
}

func (f *fakeLister) ListDocuments(ctx context.Context) ([]model.Document, error) {
	f.calls.Add(1)
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return append([]model.Document(nil), f.docs...), nil
}

func (f *fakeLister) set(docs []model.Document, err error) {
	f.mu.Lock()
	f.docs, f.err = docs, err
	f.mu.Unlock()
}

func docs(ids ...int) []model.Document {
	out := make([]model.Document, 0, len(ids))
	for _, id := range ids {
		out = append(out, model.Document{ID: model.DocumentID(id), Filename: model.DocumentID(id).String() + ".pdf"})
	}
	return out
}

// assertInvariant checks that the selection is empty exactly when the registry
// is, and otherwise names a listed document.
func assertInvariant(t *testing.T, r *Registry) {
	t.Helper()
	id, ok := r.Selected()
	if r.Len() == 0 {
		assert.False(t, ok, "empty registry must have no selection")
		return
	}
	require.True(t, ok, "non-empty registry must have a selection")
	_, listed := r.Lookup(id)
	assert.True(t, listed, "selection %d must be listed", id)
}

func TestRefresh_AutoSelectsFirst(t *testing.T) {
	l := &fakeLister{docs: []model.Document{{ID: 1, Filename: "a.pdf"}, {ID: 2, Filename: "b.pdf"}}}
	r := New(l)

	require.NoError(t, r.Refresh(context.Background()))

	id, ok := r.Selected()
	require.True(t, ok)
	assert.Equal(t, model.DocumentID(1), id)
	assert.Equal(t, l.docs, r.Documents())
}

func TestRefresh_InvariantAcrossSequences(t *testing.T) {
	l := &fakeLister{}
	r := New(l)
	ctx := context.Background()

	steps := []struct {
		name   string
		docs   []model.Document
		sel    int
		wantID int
		wantOK bool
	}{
		{name: "empty", docs: nil, wantOK: false},
		{name: "first appears", docs: docs(3, 1), wantID: 3, wantOK: true},
		{name: "selection kept", docs: docs(1, 3, 4), sel: 4, wantID: 4, wantOK: true},
		{name: "selection vanishes", docs: docs(1, 3), wantID: 1, wantOK: true},
		{name: "reordered keeps selection", docs: docs(3, 1), sel: 1, wantID: 1, wantOK: true},
		{name: "all gone", docs: docs(), wantOK: false},
		{name: "back again", docs: docs(9), wantID: 9, wantOK: true},
	}
	for _, st := range steps {
		t.Run(st.name, func(t *testing.T) {
			l.set(st.docs, nil)
			require.NoError(t, r.Refresh(ctx))
			if st.sel != 0 {
				require.True(t, r.Select(model.DocumentID(st.sel)))
				l.set(st.docs, nil)
				require.NoError(t, r.Refresh(ctx))
			}
			assertInvariant(t, r)
			id, ok := r.Selected()
			assert.Equal(t, st.wantOK, ok)
			if st.wantOK {
				assert.Equal(t, model.DocumentID(st.wantID), id)
			}
		})
	}
}

func TestRefresh_FailureKeepsPreviousContents(t *testing.T) {
	l := &fakeLister{docs: docs(1, 2)}
	r := New(l)
	require.NoError(t, r.Refresh(context.Background()))
	require.True(t, r.Select(2))

	boom := errors.New("connection refused")
	l.set(nil, boom)
	err := r.Refresh(context.Background())

	require.Error(t, err)
	assert.Equal(t, errx.KindFetch, errx.KindOf(err))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, docs(1, 2), r.Documents())
	id, _ := r.Selected()
	assert.Equal(t, model.DocumentID(2), id)
}

func TestRefresh_ConcurrentCallsShareOneRequest(t *testing.T) {
	l := &fakeLister{docs: docs(1), gate: make(chan struct{})}
	r := New(l)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, r.Refresh(context.Background()))
		}()
	}
	require.Eventually(t, func() bool { return l.calls.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(10 * time.Millisecond)
	close(l.gate)
	wg.Wait()

	assert.LessOrEqual(t, l.calls.Load(), int32(5))
	assertInvariant(t, r)
}

func TestSelect_UnknownIDIsNoop(t *testing.T) {
	r := New(&fakeLister{})
	r.Replace(docs(1, 2))

	assert.False(t, r.Select(7))
	id, _ := r.Selected()
	assert.Equal(t, model.DocumentID(1), id)

	assert.True(t, r.Select(2))
	id, _ = r.Selected()
	assert.Equal(t, model.DocumentID(2), id)
}

func TestRemove_ReappliesInvariant(t *testing.T) {
	r := New(&fakeLister{})
	r.Replace(docs(1, 2))
	require.True(t, r.Select(2))

	r.Remove(2)
	id, ok := r.Selected()
	require.True(t, ok)
	assert.Equal(t, model.DocumentID(1), id)

	r.Remove(1)
	_, ok = r.Selected()
	assert.False(t, ok)
	assert.Zero(t, r.Len())

	r.Remove(42)
	assertInvariant(t, r)
}

func TestDocuments_ReturnsCopy(t *testing.T) {
	r := New(&fakeLister{})
	r.Replace(docs(1))
	got := r.Documents()
	got[0].Filename = "mutated"

	d, _ := r.Lookup(1)
	assert.Equal(t, "1.pdf", d.Filename)
}

func TestRefresh_DropsListFetchedBeforeLocalChange(t *testing.T) {
	l := &fakeLister{docs: docs(1, 2), gate: make(chan struct{})}
	r := New(l)

	done := make(chan error, 1)
	go func() { done <- r.Refresh(context.Background()) }()
	require.Eventually(t, func() bool { return l.calls.Load() == 1 }, time.Second, time.Millisecond)

	r.Replace(docs(3))
	close(l.gate)
	require.NoError(t, <-done)

	assert.Equal(t, docs(3), r.Documents())
	assertInvariant(t, r)
}

func TestRefresh_AfterRemoveDoesNotJoinInFlightCall(t *testing.T) {
	l := &fakeLister{docs: docs(1, 2), gate: make(chan struct{})}
	r := New(l)
	r.Replace(docs(1, 2))

	first := make(chan error, 1)
	go func() { first <- r.Refresh(context.Background()) }()
	require.Eventually(t, func() bool { return l.calls.Load() == 1 }, time.Second, time.Millisecond)

	r.Remove(1)
	l.set(docs(2), nil)

	second := make(chan error, 1)
	go func() { second <- r.Refresh(context.Background()) }()
	require.Eventually(t, func() bool { return l.calls.Load() == 2 }, time.Second, time.Millisecond)

	close(l.gate)
	require.NoError(t, <-first)
	require.NoError(t, <-second)

	assert.Equal(t, docs(2), r.Documents())
}
