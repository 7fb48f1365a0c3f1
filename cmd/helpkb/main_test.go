package main_test

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/helpkb"
	main "github.com/fwojciec/helpkb/cmd/helpkb"
	"github.com/fwojciec/helpkb/fs"
	"github.com/fwojciec/helpkb/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var commands = []string{"build", "update", "process_all", "search", "answer", "docs", "show"}

func TestCLI_HelpShowsAllCommands(t *testing.T) {
	t.Parallel()

	cli := &main.CLI{}
	stdout := &bytes.Buffer{}
	parser, err := kong.New(cli,
		kong.Writers(stdout, &bytes.Buffer{}),
		kong.Exit(func(int) {}),
	)
	require.NoError(t, err)

	_, _ = parser.Parse([]string{"--help"})

	for _, cmd := range commands {
		assert.Contains(t, stdout.String(), cmd, "Help should mention %s command", cmd)
	}
}

func TestMain_Run(t *testing.T) {
	t.Parallel()

	t.Run("shows help", func(t *testing.T) {
		t.Parallel()

		stdout := &bytes.Buffer{}
		err := main.NewMain().Run(context.Background(), []string{"--help"}, stdout, &bytes.Buffer{})

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "Usage:")
		assert.Contains(t, stdout.String(), "--dir")
	})

	t.Run("requires a command", func(t *testing.T) {
		t.Parallel()

		err := main.NewMain().Run(context.Background(), nil, &bytes.Buffer{}, &bytes.Buffer{})

		assert.Equal(t, helpkb.EINVALID, helpkb.ErrorCode(err))
	})

	t.Run("rejects an unknown provider", func(t *testing.T) {
		t.Parallel()

		err := main.NewMain().Run(context.Background(),
			[]string{"--dir", t.TempDir(), "build", "help", "https://x.test/", "--provider", "openai"},
			&bytes.Buffer{}, &bytes.Buffer{})

		assert.Equal(t, helpkb.EINVALID, helpkb.ErrorCode(err))
	})

	t.Run("reports a missing project", func(t *testing.T) {
		t.Parallel()

		err := main.NewMain().Run(context.Background(),
			[]string{"--dir", t.TempDir(), "docs", "help"},
			&bytes.Buffer{}, &bytes.Buffer{})

		assert.Equal(t, helpkb.ENOTFOUND, helpkb.ErrorCode(err))
	})

	t.Run("lists documents of an existing project", func(t *testing.T) {
		t.Parallel()

		root := t.TempDir()
		newProject(t, root, "help")
		store := fs.NewContentStore(filepath.Join(root, "help"))
		id := helpkb.DocumentID("https://x.test/billing")
		require.NoError(t, store.CreateDocument(context.Background(), id))

		stdout := &bytes.Buffer{}
		err := staticMain().Run(context.Background(), []string{"--dir", root, "docs", "help"}, stdout, &bytes.Buffer{})

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "Documents for help (1 total)")
		assert.Contains(t, stdout.String(), id)
		assert.Contains(t, stdout.String(), "UNVISITED: 1")
	})

	t.Run("shows the trimmed text of a document", func(t *testing.T) {
		t.Parallel()

		root := t.TempDir()
		newProject(t, root, "help")
		store := fs.NewContentStore(filepath.Join(root, "help"))
		id := helpkb.DocumentID("https://x.test/billing")
		require.NoError(t, store.CreateDocument(context.Background(), id))
		require.NoError(t, store.SetTrimmed(context.Background(), id, "h1: Billing\n\nRefunds take 5 days."))

		stdout := &bytes.Buffer{}
		err := staticMain().Run(context.Background(), []string{"--dir", root, "show", "help", id}, stdout, &bytes.Buffer{})

		require.NoError(t, err)
		assert.Equal(t, "h1: Billing\n\nRefunds take 5 days.\n", stdout.String())
	})

	t.Run("fails search on a project that was never indexed", func(t *testing.T) {
		t.Parallel()

		root := t.TempDir()
		newProject(t, root, "help")

		err := staticMain().Run(context.Background(), []string{"--dir", root, "search", "help", "refunds"}, &bytes.Buffer{}, &bytes.Buffer{})

		assert.Equal(t, helpkb.EUNBUILT, helpkb.ErrorCode(err))
	})
}

func TestShowCmd_Markdown(t *testing.T) {
	t.Parallel()

	store := fs.NewContentStore(t.TempDir())
	id := helpkb.DocumentID("https://x.test/billing")
	require.NoError(t, store.CreateDocument(context.Background(), id))
	require.NoError(t, store.SetSource(context.Background(), id, "<h1>Billing</h1>"))

	var converted string
	m := main.NewMain()
	m.Opener = &stubOpener{ws: &main.Workspace{
		Project: staticProject("help"),
		Store:   store,
		Markdown: &mock.Converter{ConvertFn: func(html string) (string, error) {
			converted = html
			return "# Billing", nil
		}},
	}}

	stdout := &bytes.Buffer{}
	err := m.Run(context.Background(), []string{"show", "help", id, "--markdown"}, stdout, &bytes.Buffer{})

	require.NoError(t, err)
	assert.Equal(t, "<h1>Billing</h1>", converted)
	assert.Equal(t, "# Billing\n", stdout.String())
}

func TestDirOpener_Create(t *testing.T) {
	t.Parallel()

	t.Run("refuses to overwrite an existing project", func(t *testing.T) {
		t.Parallel()

		root := t.TempDir()
		p := newProject(t, root, "help")
		opener := &main.DirOpener{Root: root, Getenv: func(string) string { return "" }}

		_, err := opener.Create(context.Background(), p)

		assert.Equal(t, helpkb.ECONFLICT, helpkb.ErrorCode(err))
	})

	t.Run("rejects project names that are paths", func(t *testing.T) {
		t.Parallel()

		opener := &main.DirOpener{Root: t.TempDir()}
		p := staticProject("../escape")

		_, err := opener.Create(context.Background(), p)

		assert.Equal(t, helpkb.EINVALID, helpkb.ErrorCode(err))
	})
}

func TestDirOpener_Open(t *testing.T) {
	t.Parallel()

	t.Run("fails while another writer holds the project", func(t *testing.T) {
		t.Parallel()

		root := t.TempDir()
		newProject(t, root, "help")
		lock, err := fs.AcquireLock(filepath.Join(root, "help"))
		require.NoError(t, err)
		defer lock.Release()

		opener := &main.DirOpener{Root: root, Getenv: func(string) string { return "" }}
		_, err = opener.Open(context.Background(), "help", true)

		assert.Equal(t, helpkb.ECONFLICT, helpkb.ErrorCode(err))
	})

	t.Run("requires a Gemini API key", func(t *testing.T) {
		t.Parallel()

		root := t.TempDir()
		p := staticProject("help")
		p.Provider = "gemini"
		require.NoError(t, fs.NewProjectStore(filepath.Join(root, "help")).CreateProject(context.Background(), p))

		opener := &main.DirOpener{Root: root, Getenv: func(string) string { return "" }}
		_, err := opener.Open(context.Background(), "help", false)

		assert.Equal(t, helpkb.EINVALID, helpkb.ErrorCode(err))
		assert.Contains(t, helpkb.ErrorMessage(err), "GEMINI_API_KEY")
	})
}

// stubOpener hands out a prepared workspace.
type stubOpener struct {
	ws *main.Workspace
}

func (o *stubOpener) Create(ctx context.Context, p *helpkb.Project) (*main.Workspace, error) {
	return o.ws, nil
}

func (o *stubOpener) Open(ctx context.Context, name string, writable bool) (*main.Workspace, error) {
	return o.ws, nil
}

func staticProject(name string) *helpkb.Project {
	return &helpkb.Project{
		Name:       name,
		BaseURL:    "https://x.test/",
		Store:      "fs",
		Provider:   "static",
		Fetcher:    "http",
		PreExtract: "none",
		CreatedAt:  time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

// newProject writes the settings of a static-provider project.
func newProject(t *testing.T, root, name string) *helpkb.Project {
	t.Helper()
	p := staticProject(name)
	require.NoError(t, fs.NewProjectStore(filepath.Join(root, name)).CreateProject(context.Background(), p))
	return p
}

func staticMain() *main.Main {
	m := main.NewMain()
	m.Getenv = func(string) string { return "" }
	return m
}
