package fs

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/fwojciec/helpkb"
)

// Ensure ContentStore implements helpkb.ContentStore at compile time.
var _ helpkb.ContentStore = (*ContentStore)(nil)

// ContentStore keeps one directory per document under <project>/documents.
type ContentStore struct {
	root string
}

// NewContentStore returns a store rooted at the documents directory of the
// project in dir.
func NewContentStore(dir string) *ContentStore {
	return &ContentStore{root: filepath.Join(dir, "documents")}
}

func (s *ContentStore) docPath(id string, elem ...string) string {
	return filepath.Join(append([]string{s.root, id}, elem...)...)
}

func validID(id string) error {
	if id == "" || strings.ContainsAny(id, `/\.`) {
		return helpkb.Errorf(helpkb.EINVALID, "invalid document id %q", id)
	}
	return nil
}

func (s *ContentStore) CreateDocument(ctx context.Context, id string) error {
	if err := validID(id); err != nil {
		return err
	}
	_, err := os.Stat(s.docPath(id, "status.txt"))
	if err == nil {
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return s.SetStatus(ctx, id, helpkb.StatusUnvisited)
}

func (s *ContentStore) Status(ctx context.Context, id string) (helpkb.Status, error) {
	if err := validID(id); err != nil {
		return "", err
	}
	data, err := readFile(s.docPath(id, "status.txt"), "document "+id)
	if err != nil {
		return "", err
	}
	status := helpkb.Status(strings.TrimSpace(string(data)))
	if err := status.Validate(); err != nil {
		return "", err
	}
	return status, nil
}

func (s *ContentStore) SetStatus(ctx context.Context, id string, status helpkb.Status) error {
	if err := validID(id); err != nil {
		return err
	}
	if err := status.Validate(); err != nil {
		return err
	}
	return writeFile(s.docPath(id, "status.txt"), []byte(status))
}

func (s *ContentStore) Source(ctx context.Context, id string) (string, error) {
	return s.readText(id, "source.txt", "source")
}

func (s *ContentStore) SetSource(ctx context.Context, id string, source string) error {
	return s.writeText(id, "source.txt", source)
}

func (s *ContentStore) Trimmed(ctx context.Context, id string) (string, error) {
	return s.readText(id, "trimmed.txt", "trimmed text")
}

func (s *ContentStore) SetTrimmed(ctx context.Context, id string, trimmed string) error {
	return s.writeText(id, "trimmed.txt", trimmed)
}

func (s *ContentStore) readText(id, name, what string) (string, error) {
	if err := validID(id); err != nil {
		return "", err
	}
	data, err := readFile(s.docPath(id, name), what+" of document "+id)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (s *ContentStore) writeText(id, name, text string) error {
	if err := validID(id); err != nil {
		return err
	}
	return writeFile(s.docPath(id, name), []byte(text))
}

// Chunks reads every granularity directory of a variant. Files are
// ordered by their numeric name.
func (s *ContentStore) Chunks(ctx context.Context, id string, v helpkb.Variant) (helpkb.ChunkSet, error) {
	if err := validID(id); err != nil {
		return nil, err
	}
	dir := s.docPath(id, "chunks", string(v))
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		return nil, helpkb.Errorf(helpkb.ENOTFOUND, "%s chunks of document %s not found", v, id)
	}
	set := helpkb.ChunkSet{}
	for _, g := range helpkb.Granularities {
		files, err := indexedFiles(filepath.Join(dir, string(g)), ".txt")
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			data, err := os.ReadFile(f)
			if err != nil {
				return nil, err
			}
			set[g] = append(set[g], string(data))
		}
	}
	return set, nil
}

// SetChunks writes a variant into a staging directory and swaps it in,
// so a shorter chunk list never leaves stale files behind.
func (s *ContentStore) SetChunks(ctx context.Context, id string, v helpkb.Variant, chunks helpkb.ChunkSet) error {
	if err := validID(id); err != nil {
		return err
	}
	if v != helpkb.VariantRaw && v != helpkb.VariantPretty {
		return helpkb.Errorf(helpkb.EINVALID, "unknown chunk variant %q", v)
	}
	return s.replaceDir(s.docPath(id, "chunks", string(v)), func(tmp string) error {
		for _, g := range helpkb.Granularities {
			gdir := filepath.Join(tmp, string(g))
			if err := os.MkdirAll(gdir, 0755); err != nil {
				return err
			}
			for i, text := range chunks[g] {
				if err := os.WriteFile(filepath.Join(gdir, strconv.Itoa(i)+".txt"), []byte(text), 0644); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func (s *ContentStore) SyntheticChunks(ctx context.Context, id string) ([]helpkb.SyntheticChunk, error) {
	if err := validID(id); err != nil {
		return nil, err
	}
	dir := s.docPath(id, "chunks", "synthetic")
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		return nil, helpkb.Errorf(helpkb.ENOTFOUND, "synthetic chunks of document %s not found", id)
	}
	files, err := indexedFiles(dir, ".json")
	if err != nil {
		return nil, err
	}
	chunks := make([]helpkb.SyntheticChunk, len(files))
	for i, f := range files {
		if err := readJSON(f, "synthetic chunk "+filepath.Base(f), &chunks[i]); err != nil {
			return nil, err
		}
	}
	return chunks, nil
}

func (s *ContentStore) SetSyntheticChunks(ctx context.Context, id string, chunks []helpkb.SyntheticChunk) error {
	if err := validID(id); err != nil {
		return err
	}
	return s.replaceDir(s.docPath(id, "chunks", "synthetic"), func(tmp string) error {
		if err := os.MkdirAll(tmp, 0755); err != nil {
			return err
		}
		for i, c := range chunks {
			if err := writeJSON(filepath.Join(tmp, strconv.Itoa(i)+".json"), c); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *ContentStore) Records(ctx context.Context, id string) (*helpkb.RecordBundle, error) {
	if err := validID(id); err != nil {
		return nil, err
	}
	var b helpkb.RecordBundle
	if err := readJSON(s.docPath(id, "records.json"), "records of document "+id, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *ContentStore) SetRecords(ctx context.Context, id string, records *helpkb.RecordBundle) error {
	if err := validID(id); err != nil {
		return err
	}
	return writeJSON(s.docPath(id, "records.json"), records)
}

func (s *ContentStore) DocumentIDs(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	var ids []string
	for _, e := range entries {
		if e.IsDir() && validID(e.Name()) == nil {
			ids = append(ids, e.Name())
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// replaceDir fills a temporary sibling of dir with fill and then moves it
// into place, removing the previous contents.
func (s *ContentStore) replaceDir(dir string, fill func(tmp string) error) error {
	tmp := dir + ".tmp"
	if err := os.RemoveAll(tmp); err != nil {
		return err
	}
	if err := fill(tmp); err != nil {
		os.RemoveAll(tmp)
		return err
	}
	if err := os.RemoveAll(dir); err != nil {
		return err
	}
	return os.Rename(tmp, dir)
}

// indexedFiles lists files named <i><ext> in dir ordered by i.
// A missing directory yields no files.
func indexedFiles(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	type indexed struct {
		i    int
		path string
	}
	var files []indexed
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ext) {
			continue
		}
		i, err := strconv.Atoi(strings.TrimSuffix(name, ext))
		if err != nil {
			continue
		}
		files = append(files, indexed{i: i, path: filepath.Join(dir, name)})
	}
	sort.Slice(files, func(a, b int) bool { return files[a].i < files[b].i })
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.path
	}
	return out, nil
}
