package helpkb

import "context"

// Family is a retrieval record family. Each family has its own index.
type Family string

// Record families.
const (
	FamilyTopics    Family = "topics"
	FamilyKeywords  Family = "keywords"
	FamilyQuestions Family = "questions"
)

// Families lists every record family.
var Families = []Family{FamilyTopics, FamilyKeywords, FamilyQuestions}

// Record maps a short label to the chunk it was derived from.
type Record struct {
	Label    string `json:"label"`
	FilePath string `json:"filepath"`
}

// ID returns the record identifier: the hex SHA-256 digest of its filepath.
func (r Record) ID() string {
	return hashHex(r.FilePath)
}

// RecordBundle groups the records produced by evaluating one document.
type RecordBundle struct {
	Topics    []Record `json:"topics"`
	Keywords  []Record `json:"keywords"`
	Questions []Record `json:"questions"`
}

// Family returns the records of family f.
func (b *RecordBundle) Family(f Family) []Record {
	if b == nil {
		return nil
	}
	switch f {
	case FamilyTopics:
		return b.Topics
	case FamilyKeywords:
		return b.Keywords
	case FamilyQuestions:
		return b.Questions
	}
	return nil
}

// Len returns the number of records across all families.
func (b *RecordBundle) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Topics) + len(b.Keywords) + len(b.Questions)
}

// Metric is the distance function of an index.
type Metric string

// Supported metrics.
const (
	MetricCosine    Metric = "cosine"
	MetricEuclidean Metric = "euclidean"
)

// Match is one index query result.
type Match struct {
	ID       string  `json:"id"`
	FilePath string  `json:"filepath"`
	Label    string  `json:"label,omitempty"`
	Distance float64 `json:"distance"`
}

// IndexSnapshot is the persisted form of an index: parallel slices of
// record IDs, filepaths, labels and raw vectors.
type IndexSnapshot struct {
	IDs       []string    `json:"ids"`
	FilePaths []string    `json:"filepaths"`
	Labels    []string    `json:"labels,omitempty"`
	Vectors   [][]float32 `json:"vectors"`
}

// Validate returns an error if the parallel slices disagree in length.
func (s *IndexSnapshot) Validate() error {
	if len(s.IDs) != len(s.FilePaths) || len(s.IDs) != len(s.Vectors) {
		return Errorf(EINVALID, "index snapshot has %d ids, %d filepaths and %d vectors",
			len(s.IDs), len(s.FilePaths), len(s.Vectors))
	}
	if len(s.Labels) != 0 && len(s.Labels) != len(s.IDs) {
		return Errorf(EINVALID, "index snapshot has %d labels for %d ids", len(s.Labels), len(s.IDs))
	}
	return nil
}

// Index is a nearest-neighbor index over the embedded labels of one family.
// The searchable structure is a snapshot: Build must be called after
// additions and before queries.
type Index interface {
	// Add embeds label and appends it with its id and filepath.
	Add(ctx context.Context, id, filePath, label string) error

	// Contains reports whether any held record has id.
	Contains(id string) bool

	// Build fits the searchable structure over every held vector.
	// neighbors is the default result count for queries with k <= 0.
	// Returns EUNBUILT when there is nothing to index.
	Build(neighbors int, metric Metric) error

	// Query embeds text and returns up to k closest records.
	// Returns EUNBUILT if the index has not been built.
	Query(ctx context.Context, text string, k int) ([]Match, error)

	// Snapshot returns the raw records held by the index.
	Snapshot() *IndexSnapshot

	// Restore replaces the held records and invalidates any built structure.
	Restore(snapshot *IndexSnapshot) error

	// Len returns the number of held records.
	Len() int
}

// IndexStore persists index snapshots per family.
type IndexStore interface {
	// LoadIndex returns ENOTFOUND if the family was never saved.
	LoadIndex(ctx context.Context, f Family) (*IndexSnapshot, error)
	SaveIndex(ctx context.Context, f Family, snapshot *IndexSnapshot) error
}
