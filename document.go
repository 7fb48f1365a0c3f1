package helpkb

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// DocumentID returns the stable identifier of the page at url: the
// lowercase hex SHA-256 digest of the URL string.
func DocumentID(url string) string {
	return hashHex(url)
}

func hashHex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// Granularity is a chunk hierarchy level. H1 is the coarsest.
type Granularity string

// Chunk granularities.
const (
	H1 Granularity = "h1"
	H2 Granularity = "h2"
	H3 Granularity = "h3"
)

// Granularities lists every granularity from coarsest to finest.
var Granularities = []Granularity{H1, H2, H3}

// Variant is the processing stage of a chunk set.
type Variant string

// Chunk variants.
const (
	VariantRaw    Variant = "raw"
	VariantPretty Variant = "pretty"
)

// ChunkSet holds the chunk texts of a document by granularity.
type ChunkSet map[Granularity][]string

// Len returns the total number of chunks across all granularities.
func (s ChunkSet) Len() int {
	var n int
	for _, chunks := range s {
		n += len(chunks)
	}
	return n
}

// SyntheticChunk is an answer passage assembled from scored evidence
// chunks for one generated question.
type SyntheticChunk struct {
	Question string `json:"question"`
	Text     string `json:"text"`
}

// ChunkPath returns the filepath of a chunk, relative to the documents root.
func ChunkPath(id string, v Variant, g Granularity, i int) string {
	return fmt.Sprintf("%s/chunks/%s/%s/%d.txt", id, v, g, i)
}

// SyntheticPath returns the filepath of a synthetic chunk, relative to the
// documents root.
func SyntheticPath(id string, i int) string {
	return fmt.Sprintf("%s/chunks/synthetic/%d.json", id, i)
}

// ChunkRef is a parsed chunk filepath.
type ChunkRef struct {
	DocumentID  string
	Synthetic   bool
	Variant     Variant
	Granularity Granularity
	Index       int
}

// ParseChunkPath parses a filepath produced by ChunkPath or SyntheticPath.
func ParseChunkPath(p string) (ChunkRef, error) {
	parts := strings.Split(p, "/")
	switch {
	case len(parts) == 4 && parts[1] == "chunks" && parts[2] == "synthetic":
		i, err := parseIndex(parts[3], ".json")
		if err != nil {
			return ChunkRef{}, Errorf(EINVALID, "invalid chunk path %q", p)
		}
		return ChunkRef{DocumentID: parts[0], Synthetic: true, Index: i}, nil
	case len(parts) == 5 && parts[1] == "chunks":
		i, err := parseIndex(parts[4], ".txt")
		if err != nil {
			return ChunkRef{}, Errorf(EINVALID, "invalid chunk path %q", p)
		}
		return ChunkRef{
			DocumentID:  parts[0],
			Variant:     Variant(parts[2]),
			Granularity: Granularity(parts[3]),
			Index:       i,
		}, nil
	}
	return ChunkRef{}, Errorf(EINVALID, "invalid chunk path %q", p)
}

func parseIndex(name, ext string) (int, error) {
	if !strings.HasSuffix(name, ext) {
		return 0, fmt.Errorf("missing %s suffix", ext)
	}
	i, err := strconv.Atoi(strings.TrimSuffix(name, ext))
	if err != nil || i < 0 {
		return 0, fmt.Errorf("invalid index %q", name)
	}
	return i, nil
}

// ContentStore persists the artifacts of each document, keyed by document ID.
// Reads of artifacts that were never written return ENOTFOUND.
type ContentStore interface {
	// CreateDocument records status UNVISITED for id unless the document
	// already has a status.
	CreateDocument(ctx context.Context, id string) error

	// Status returns the persisted status of a document.
	Status(ctx context.Context, id string) (Status, error)
	SetStatus(ctx context.Context, id string, status Status) error

	Source(ctx context.Context, id string) (string, error)
	SetSource(ctx context.Context, id string, source string) error

	Trimmed(ctx context.Context, id string) (string, error)
	SetTrimmed(ctx context.Context, id string, trimmed string) error

	// Chunks returns every granularity of one chunk variant.
	Chunks(ctx context.Context, id string, v Variant) (ChunkSet, error)
	SetChunks(ctx context.Context, id string, v Variant, chunks ChunkSet) error

	SyntheticChunks(ctx context.Context, id string) ([]SyntheticChunk, error)
	SetSyntheticChunks(ctx context.Context, id string, chunks []SyntheticChunk) error

	// Records returns the retrieval records produced by evaluation.
	Records(ctx context.Context, id string) (*RecordBundle, error)
	SetRecords(ctx context.Context, id string, records *RecordBundle) error

	// DocumentIDs returns the IDs of every known document in sorted order.
	DocumentIDs(ctx context.Context) ([]string, error)
}

// ReadChunk loads the text a chunk filepath points at. Synthetic chunks
// resolve to their assembled text.
func ReadChunk(ctx context.Context, store ContentStore, path string) (string, error) {
	ref, err := ParseChunkPath(path)
	if err != nil {
		return "", err
	}
	if ref.Synthetic {
		chunks, err := store.SyntheticChunks(ctx, ref.DocumentID)
		if err != nil {
			return "", err
		}
		if ref.Index >= len(chunks) {
			return "", Errorf(ENOTFOUND, "chunk %q not found", path)
		}
		return chunks[ref.Index].Text, nil
	}
	set, err := store.Chunks(ctx, ref.DocumentID, ref.Variant)
	if err != nil {
		return "", err
	}
	chunks := set[ref.Granularity]
	if ref.Index >= len(chunks) {
		return "", Errorf(ENOTFOUND, "chunk %q not found", path)
	}
	return chunks[ref.Index], nil
}

// Advance moves a document from one status to the next, rejecting any
// transition that is not strictly forward.
func Advance(ctx context.Context, store ContentStore, id string, from, to Status) error {
	if !from.CanTransition(to) {
		return Errorf(EINTERNAL, "invalid status transition %s -> %s", from, to)
	}
	return store.SetStatus(ctx, id, to)
}
