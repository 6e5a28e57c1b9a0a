package publishing

import (
	models "pressroom/internal/domain/models/publishing"
)

// ReferenceStore holds one editing session's citations, partitioned into
// inline (cited by a span in the body) and background (bibliography only).
// A citation id lives in exactly one partition at a time; moving between
// partitions is a delete plus an add, never a field flip.
//
// All operations are total: unknown ids are silently ignored on edit and
// delete. That matches the observed behavior of the authoring surface and
// is a documented choice, not an accident (see DESIGN.md).
//
// Not safe for concurrent use: each session owns its own store and all
// mutations happen synchronously in response to discrete author actions.
type ReferenceStore struct {
	inline     models.ReferenceMap
	background models.ReferenceMap
}

// NewReferenceStore creates an empty store.
func NewReferenceStore() *ReferenceStore {
	return &ReferenceStore{
		inline:     make(models.ReferenceMap),
		background: make(models.ReferenceMap),
	}
}

// Add inserts the citation into the inline partition when toInline is set,
// otherwise into background. The caller guarantees id uniqueness; ids
// without a value are rejected as a no-op.
func (s *ReferenceStore) Add(c models.Citation, toInline bool) {
	if c.ID == "" {
		return
	}
	if toInline {
		s.inline[c.ID] = c
	} else {
		s.background[c.ID] = c
	}
}

// Edit replaces the citation's fields within whichever partition currently
// holds the id. The partition itself never changes on edit; an unknown id
// is a no-op.
func (s *ReferenceStore) Edit(id string, updated models.Citation) {
	updated.ID = id
	if _, ok := s.inline[id]; ok {
		s.inline[id] = updated
		return
	}
	if _, ok := s.background[id]; ok {
		s.background[id] = updated
	}
}

// Delete removes the id from both partitions unconditionally; at most one
// actually contains it.
func (s *ReferenceStore) Delete(id string) {
	delete(s.inline, id)
	delete(s.background, id)
}

// Get looks the id up across both partitions. The second return reports
// whether the citation is inline.
func (s *ReferenceStore) Get(id string) (models.Citation, bool, bool) {
	if c, ok := s.inline[id]; ok {
		return c, true, true
	}
	if c, ok := s.background[id]; ok {
		return c, false, true
	}
	return models.Citation{}, false, false
}

// Snapshot copies the current partitions into the persisted wire shape.
func (s *ReferenceStore) Snapshot() models.References {
	refs := models.NewReferences()
	for id, c := range s.inline {
		refs.Inline[id] = c
	}
	for id, c := range s.background {
		refs.Background[id] = c
	}
	return refs
}

// Rehydrate replaces the store's state from a loaded content record. Ids
// present in both incoming partitions keep only the inline copy, restoring
// the single-partition invariant on corrupted input.
func (s *ReferenceStore) Rehydrate(refs models.References) {
	s.inline = make(models.ReferenceMap, len(refs.Inline))
	s.background = make(models.ReferenceMap, len(refs.Background))
	for id, c := range refs.Inline {
		s.inline[id] = c
	}
	for id, c := range refs.Background {
		if _, dup := s.inline[id]; dup {
			continue
		}
		s.background[id] = c
	}
}
