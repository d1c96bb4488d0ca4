// Package registry tracks the documents known to the client and the current selection.
package registry

import (
	"context"
	"slices"
	"sync"

	"golang.org/x/sync/singleflight"

	errx "github.com/docchat-core/client/internal/core/error"
	"github.com/docchat-core/client/internal/docchat/model"
	logx "github.com/docchat-core/client/pkg/logger"
)

// Registry holds the document list as last reported by the remote service and
// keeps the selection invariant: the selection is either empty or refers to a
// listed document, and a non-empty registry always has a selection.
type Registry struct {
	lister model.DocumentLister
	group  singleflight.Group

	mu       sync.RWMutex
	docs     []model.Document
	selected model.DocumentID
	hasSel   bool
	// gen counts local changes. A list fetched before a change is dropped.
	gen uint64
}

func New(lister model.DocumentLister) *Registry {
	return &Registry{lister: lister}
}

// Refresh replaces the document set with the remote list, preserving its order.
// Concurrent calls share one remote request unless Invalidate ran in between.
// On failure the previous contents are kept and a fetch error is returned.
func (r *Registry) Refresh(ctx context.Context) error {
	_, err, shared := r.group.Do(refreshKey, func() (any, error) {
		r.mu.RLock()
		gen := r.gen
		r.mu.RUnlock()

		docs, err := r.lister.ListDocuments(ctx)
		if err != nil {
			return nil, err
		}
		r.replaceIf(gen, docs)
		return nil, nil
	})
	if err != nil {
		logx.Error().Err(err).Bool("shared", shared).Msg("document refresh failed")
		return errx.Fetch(err)
	}
	return nil
}

const refreshKey = "refresh"

// Invalidate marks the remote list as changed. A refresh already in flight keeps
// its request but discards the result, and the next Refresh issues a new one.
func (r *Registry) Invalidate() {
	r.mu.Lock()
	r.gen++
	r.mu.Unlock()
	r.group.Forget(refreshKey)
}

// Replace swaps in docs wholesale and re-applies the selection invariant.
func (r *Registry) Replace(docs []model.Document) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gen++
	r.replaceLocked(docs)
}

func (r *Registry) replaceIf(gen uint64, docs []model.Document) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if gen != r.gen {
		logx.Debug().Uint64("fetchedAt", gen).Uint64("current", r.gen).Msg("dropping stale document list")
		return
	}
	r.replaceLocked(docs)
}

func (r *Registry) replaceLocked(docs []model.Document) {
	r.docs = slices.Clone(docs)
	r.ensureSelectionLocked()
	logx.Debug().Int("documents", len(r.docs)).Int("selected", int(r.selected)).Bool("hasSelection", r.hasSel).Msg("registry replaced")
}

// Select makes id the current selection if it is listed and reports whether it was.
func (r *Registry) Select(id model.DocumentID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.indexLocked(id) < 0 {
		return false
	}
	r.selected, r.hasSel = id, true
	return true
}

// Remove drops id from the set, re-applies the selection invariant and
// invalidates any refresh in flight.
func (r *Registry) Remove(id model.DocumentID) {
	r.mu.Lock()
	r.gen++
	if i := r.indexLocked(id); i >= 0 {
		r.docs = slices.Delete(r.docs, i, i+1)
	}
	r.ensureSelectionLocked()
	r.mu.Unlock()
	r.group.Forget(refreshKey)
}

// Documents returns a copy of the current list.
func (r *Registry) Documents() []model.Document {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.docs)
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.docs)
}

// Selected returns the selected document id.
func (r *Registry) Selected() (model.DocumentID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.selected, r.hasSel
}

// Lookup returns the listed document with the given id.
func (r *Registry) Lookup(id model.DocumentID) (model.Document, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i := r.indexLocked(id); i >= 0 {
		return r.docs[i], true
	}
	return model.Document{}, false
}

func (r *Registry) ensureSelectionLocked() {
	if r.hasSel && r.indexLocked(r.selected) >= 0 {
		return
	}
	if len(r.docs) == 0 {
		r.selected, r.hasSel = 0, false
		return
	}
	r.selected, r.hasSel = r.docs[0].ID, true
}

func (r *Registry) indexLocked(id model.DocumentID) int {
	return slices.IndexFunc(r.docs, func(d model.Document) bool { return d.ID == id })
}
