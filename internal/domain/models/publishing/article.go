package publishing

import (
	"time"
)

// Article is the persisted content record for one published page, keyed by
// slug. Content holds the serialized markup; the reference partitions and
// FAQ list are stored alongside it as side-tables rather than being
// re-derived from the markup on load.
type Article struct {
	ID           string     `json:"id" db:"id"`
	Slug         string     `json:"slug" db:"slug"`
	Content      string     `json:"content" db:"content"` // HTML markup
	Refs         References `json:"refs" db:"refs"`
	FAQs         []FAQ      `json:"faqs" db:"faqs"`
	GeneratedTOC bool       `json:"generated_toc" db:"generated_toc"`
	WordCount    int        `json:"word_count" db:"word_count"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// TOCEntry is one synthesized table-of-contents row. Derived from the
// document's level-2 headings at save time, never persisted directly.
type TOCEntry struct {
	Anchor string `json:"anchor"`
	Text   string `json:"text"`
	Level  int    `json:"level"`
}
