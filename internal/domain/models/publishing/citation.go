package publishing

// ReferenceKind identifies the bibliographic category of a citation.
// The formatter assembles a different field list per kind.
type ReferenceKind string

const (
	ReferenceBook    ReferenceKind = "book"
	ReferenceArticle ReferenceKind = "article"
	ReferenceWebsite ReferenceKind = "website"
	ReferenceJournal ReferenceKind = "journal"
	ReferenceThesis  ReferenceKind = "thesis"
)

// FollowPolicy controls whether an outbound link is marked for crawler
// traversal. Nofollow links carry rel="nofollow" on render.
type FollowPolicy string

const (
	Dofollow FollowPolicy = "dofollow"
	Nofollow FollowPolicy = "nofollow"
)

// Citation is a single bibliographic record. The ID is stable across edits
// and unique within a document; only field values change on edit.
type Citation struct {
	ID        string        `json:"id"`
	Kind      ReferenceKind `json:"kind"`
	LinkText  string        `json:"link_text,omitempty"`
	FirstName string        `json:"first_name,omitempty"`
	LastName  string        `json:"last_name,omitempty"`
	Title     string        `json:"title"`
	Publisher string        `json:"publisher,omitempty"`
	Date      string        `json:"date,omitempty"` // ISO-ish: YYYY, YYYY-MM or YYYY-MM-DD
	URL       string        `json:"url,omitempty"`
	Journal   string        `json:"journal,omitempty"`
	Volume    string        `json:"volume,omitempty"`
	Issue     string        `json:"issue,omitempty"`
	Pages     string        `json:"pages,omitempty"`
	DOI       string        `json:"doi,omitempty"`
	Follow    FollowPolicy  `json:"follow,omitempty"`
}

// ReferenceMap maps citation id to citation record.
type ReferenceMap map[string]Citation

// References is the persisted wire shape of the reference store: two
// disjoint partitions keyed by citation id. A citation id never appears
// in both partitions at once.
type References struct {
	Inline     ReferenceMap `json:"inline"`
	Background ReferenceMap `json:"background"`
}

// NewReferences returns an empty, non-nil pair of partitions.
func NewReferences() References {
	return References{
		Inline:     make(ReferenceMap),
		Background: make(ReferenceMap),
	}
}
