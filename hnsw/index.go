// Package hnsw implements helpkb.Index on coder/hnsw. Queries rank every
// held vector exactly; large families may opt into an HNSW graph that
// proposes candidates for exact re-ranking.
package hnsw

import (
	"context"
	"math"
	"math/rand"
	"sort"
	"sync"

	"github.com/coder/hnsw"
	"github.com/fwojciec/helpkb"
)

// Graph parameters.
const (
	DefaultM        = 16
	DefaultEfSearch = 64

	// GraphSeed seeds level generation of approximate graphs.
	GraphSeed = 1
)

// Ensure Index implements helpkb.Index at compile time.
var _ helpkb.Index = (*Index)(nil)

// Index holds the embedded labels of one record family. Records are kept
// as raw vectors and Build prepares them for querying. Index is safe for
// concurrent use.
type Index struct {
	embedder helpkb.Embedder

	// ApproximateAbove, when positive, makes Build fit an HNSW graph once
	// the family holds more records than this. Queries then re-rank the
	// graph's candidates exactly instead of scanning every record, which
	// may miss true neighbors. Zero keeps every query exact.
	ApproximateAbove int

	mu      sync.RWMutex
	ids     []string
	paths   []string
	labels  []string
	vectors [][]float32
	held    map[string]bool

	built     bool
	prepared  [][]float32
	distance  hnsw.DistanceFunc
	graph     *hnsw.Graph[int]
	metric    helpkb.Metric
	neighbors int
}

// NewIndex returns an empty, unbuilt index that embeds labels and queries
// with embedder.
func NewIndex(embedder helpkb.Embedder) *Index {
	return &Index{embedder: embedder, held: make(map[string]bool)}
}

// Add embeds label and stores it. Every call appends a record, so a label
// generated twice is held twice.
func (x *Index) Add(ctx context.Context, id, filePath, label string) error {
	vec, err := x.embedder.Embed(ctx, label)
	if err != nil {
		return err
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	if err := x.checkDim(len(vec)); err != nil {
		return err
	}
	x.ids = append(x.ids, id)
	x.paths = append(x.paths, filePath)
	x.labels = append(x.labels, label)
	x.vectors = append(x.vectors, vec)
	x.held[id] = true
	return nil
}

// Contains reports whether a record with id is held.
func (x *Index) Contains(id string) bool {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.held[id]
}

// Build prepares every held vector for querying and, in approximate mode,
// fits a fresh graph over them. With no vectors the index is left unbuilt
// and EUNBUILT is returned.
func (x *Index) Build(neighbors int, metric helpkb.Metric) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	x.built, x.prepared, x.graph = false, nil, nil
	if len(x.vectors) == 0 {
		return helpkb.Errorf(helpkb.EUNBUILT, "cannot build an index with no records")
	}

	var distance hnsw.DistanceFunc
	switch metric {
	case helpkb.MetricCosine, "":
		metric = helpkb.MetricCosine
		distance = hnsw.CosineDistance
	case helpkb.MetricEuclidean:
		distance = hnsw.EuclideanDistance
	default:
		return helpkb.Errorf(helpkb.EINVALID, "unknown metric %q", metric)
	}

	prepared := make([][]float32, len(x.vectors))
	for i, v := range x.vectors {
		prepared[i] = prepare(v, metric)
	}

	if x.ApproximateAbove > 0 && len(prepared) > x.ApproximateAbove {
		g := hnsw.NewGraph[int]()
		g.Distance = distance
		g.Rng = rand.New(rand.NewSource(GraphSeed))
		g.M = DefaultM
		g.Ml = 1 / math.Log(float64(DefaultM))
		g.EfSearch = max(DefaultEfSearch, neighbors)
		nodes := make([]hnsw.Node[int], len(prepared))
		for i, v := range prepared {
			nodes[i] = hnsw.MakeNode(i, v)
		}
		g.Add(nodes...)
		x.graph = g
	}

	x.built = true
	x.prepared = prepared
	x.distance = distance
	x.metric = metric
	x.neighbors = max(neighbors, 1)
	return nil
}

// Query returns up to k records closest to text, nearest first. Records at
// equal distance keep the order they were added in. A k of zero or less
// uses the neighbor count given to Build. k is clamped to the number of
// indexed records.
func (x *Index) Query(ctx context.Context, text string, k int) ([]helpkb.Match, error) {
	x.mu.RLock()
	built := x.built
	x.mu.RUnlock()
	if !built {
		return nil, helpkb.Errorf(helpkb.EUNBUILT, "index is not built")
	}

	vec, err := x.embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	// Graph search adjusts EfSearch, so it runs under the write lock.
	x.mu.Lock()
	defer x.mu.Unlock()
	if !x.built {
		return nil, helpkb.Errorf(helpkb.EUNBUILT, "index is not built")
	}
	if dim := len(x.prepared[0]); len(vec) != dim {
		return nil, helpkb.Errorf(helpkb.EINVALID, "query vector has %d dimensions, index has %d", len(vec), dim)
	}

	if k <= 0 {
		k = x.neighbors
	}
	k = min(k, len(x.prepared))

	query := prepare(vec, x.metric)
	scored := make([]scoredRecord, 0, len(x.prepared))
	for _, i := range x.candidates(query, k) {
		d := x.distance(query, x.prepared[i])
		if d != d {
			// Zero vectors have no cosine distance.
			d = float32(math.Inf(1))
		}
		scored = append(scored, scoredRecord{pos: i, distance: d})
	}
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].distance != scored[j].distance {
			return scored[i].distance < scored[j].distance
		}
		return scored[i].pos < scored[j].pos
	})
	scored = scored[:min(k, len(scored))]

	matches := make([]helpkb.Match, 0, len(scored))
	for _, r := range scored {
		matches = append(matches, helpkb.Match{
			ID:       x.ids[r.pos],
			FilePath: x.paths[r.pos],
			Label:    x.labels[r.pos],
			Distance: float64(r.distance),
		})
	}
	return matches, nil
}

type scoredRecord struct {
	pos      int
	distance float32
}

// candidates returns the positions to rank for query: every record, or the
// graph's widened search result in approximate mode. Must be called with
// mu held.
func (x *Index) candidates(query []float32, k int) []int {
	if x.graph == nil {
		all := make([]int, len(x.prepared))
		for i := range all {
			all[i] = i
		}
		return all
	}
	ef := x.graph.EfSearch
	width := min(max(ef, 4*k), len(x.prepared))
	x.graph.EfSearch = max(ef, width)
	nodes := x.graph.Search(query, width)
	x.graph.EfSearch = ef

	out := make([]int, len(nodes))
	for i, n := range nodes {
		out[i] = n.Key
	}
	return out
}

// Snapshot returns a copy of the held records.
func (x *Index) Snapshot() *helpkb.IndexSnapshot {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return &helpkb.IndexSnapshot{
		IDs:       append([]string(nil), x.ids...),
		FilePaths: append([]string(nil), x.paths...),
		Labels:    append([]string(nil), x.labels...),
		Vectors:   append([][]float32(nil), x.vectors...),
	}
}

// Restore replaces the held records with snapshot and leaves the index
// unbuilt. Snapshots written without labels restore with empty labels.
func (x *Index) Restore(snapshot *helpkb.IndexSnapshot) error {
	if err := snapshot.Validate(); err != nil {
		return err
	}
	labels := snapshot.Labels
	if len(labels) == 0 {
		labels = make([]string, len(snapshot.IDs))
	}
	for i, v := range snapshot.Vectors {
		if len(v) != len(snapshot.Vectors[0]) {
			return helpkb.Errorf(helpkb.EINVALID, "snapshot vector %d has %d dimensions, expected %d", i, len(v), len(snapshot.Vectors[0]))
		}
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	x.ids = append([]string(nil), snapshot.IDs...)
	x.paths = append([]string(nil), snapshot.FilePaths...)
	x.labels = append([]string(nil), labels...)
	x.vectors = append([][]float32(nil), snapshot.Vectors...)
	x.held = make(map[string]bool, len(x.ids))
	for _, id := range x.ids {
		x.held[id] = true
	}
	x.built, x.prepared, x.graph = false, nil, nil
	return nil
}

// Len returns the number of held records.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.ids)
}

// checkDim must be called with mu held.
func (x *Index) checkDim(n int) error {
	if n == 0 {
		return helpkb.Errorf(helpkb.EINVALID, "empty embedding")
	}
	if len(x.vectors) > 0 && len(x.vectors[0]) != n {
		return helpkb.Errorf(helpkb.EINVALID, "embedding has %d dimensions, index has %d", n, len(x.vectors[0]))
	}
	return nil
}

// prepare copies v and, for cosine, scales it to unit length.
func prepare(v []float32, metric helpkb.Metric) []float32 {
	out := make([]float32, len(v))
	copy(out, v)
	if metric != helpkb.MetricCosine {
		return out
	}
	var sum float64
	for _, f := range out {
		sum += float64(f) * float64(f)
	}
	if sum == 0 {
		return out
	}
	inv := float32(1 / math.Sqrt(sum))
	for i := range out {
		out[i] *= inv
	}
	return out
}
