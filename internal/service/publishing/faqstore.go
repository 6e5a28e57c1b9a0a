package publishing

import (
	models "pressroom/internal/domain/models/publishing"
)

// FAQStore is a reducer over an ordered FAQ list. List order is display
// order; the store never re-sorts. Unknown ids on update/delete are silent
// no-ops, mirroring the reference store.
//
// Not safe for concurrent use; each editing session owns its own store.
type FAQStore struct {
	faqs []models.FAQ
}

// NewFAQStore creates an empty store.
func NewFAQStore() *FAQStore {
	return &FAQStore{}
}

// Add appends the FAQ to the end of the list.
func (s *FAQStore) Add(faq models.FAQ) {
	s.faqs = append(s.faqs, faq)
}

// Update replaces the entry with a matching id in place, preserving its
// position.
func (s *FAQStore) Update(faq models.FAQ) {
	for i := range s.faqs {
		if s.faqs[i].ID == faq.ID {
			s.faqs[i] = faq
			return
		}
	}
}

// Delete removes the entry with the matching id.
func (s *FAQStore) Delete(id string) {
	for i := range s.faqs {
		if s.faqs[i].ID == id {
			s.faqs = append(s.faqs[:i], s.faqs[i+1:]...)
			return
		}
	}
}

// ReplaceAll swaps the entire list, used on hydration from persisted
// state.
func (s *FAQStore) ReplaceAll(faqs []models.FAQ) {
	s.faqs = make([]models.FAQ, len(faqs))
	copy(s.faqs, faqs)
}

// List returns a copy of the current list in order.
func (s *FAQStore) List() []models.FAQ {
	out := make([]models.FAQ, len(s.faqs))
	copy(out, s.faqs)
	return out
}
