package fs

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fwojciec/helpkb"
	"github.com/gofrs/flock"
	"gopkg.in/yaml.v3"
)

var _ helpkb.ProjectStore = (*ProjectStore)(nil)

// ProjectFile is the name of the settings file inside a project directory.
const ProjectFile = "project.yaml"

// ProjectStore keeps project settings in <project>/project.yaml.
type ProjectStore struct {
	dir string
}

// NewProjectStore returns a settings store for the project in dir.
func NewProjectStore(dir string) *ProjectStore {
	return &ProjectStore{dir: dir}
}

func (s *ProjectStore) CreateProject(ctx context.Context, p *helpkb.Project) error {
	if err := p.Validate(); err != nil {
		return err
	}
	data, err := yaml.Marshal(p)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return err
	}
	f, err := os.OpenFile(filepath.Join(s.dir, ProjectFile), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if errors.Is(err, fs.ErrExist) {
		return helpkb.Errorf(helpkb.ECONFLICT, "project %q already exists", p.Name)
	} else if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (s *ProjectStore) FindProject(ctx context.Context) (*helpkb.Project, error) {
	data, err := readFile(filepath.Join(s.dir, ProjectFile), "project "+filepath.Base(s.dir))
	if err != nil {
		return nil, err
	}
	var p helpkb.Project
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, helpkb.Errorf(helpkb.EINVALID, "invalid %s: %s", ProjectFile, err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Lock is an exclusive writer lock on a project directory.
type Lock struct {
	lock *flock.Flock
}

// AcquireLock takes the writer lock of the project in dir without waiting.
// Returns ECONFLICT if another process holds it.
func AcquireLock(dir string) (*Lock, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	l := flock.New(filepath.Join(dir, "project.lock"))
	ok, err := l.TryLock()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, helpkb.Errorf(helpkb.ECONFLICT, "project %q is being updated by another process", filepath.Base(dir))
	}
	return &Lock{lock: l}, nil
}

// Release frees the lock.
func (l *Lock) Release() error {
	return l.lock.Unlock()
}
