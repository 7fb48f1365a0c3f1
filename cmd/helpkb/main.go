package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/helpkb"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// A missing .env file is fine; the environment may already be set.
	_ = godotenv.Load()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", errorText(err))
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Getenv reads configuration from the environment.
	Getenv func(string) string

	// Opener, if set, replaces the directory-backed project wiring.
	Opener Opener
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{Getenv: os.Getenv}
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("helpkb"),
		kong.Description("Crawl a help center into a searchable knowledge base"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return helpkb.Errorf(helpkb.EINVALID, "no command specified. Run 'helpkb --help' to see available commands")
	}
	if args[0] == "help" || args[0] == "--help" || args[0] == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return helpkb.Errorf(helpkb.EINVALID, "%s", err)
	}

	level := slog.LevelInfo
	if cli.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})).
		With("run", uuid.NewString())

	opener := m.Opener
	if opener == nil {
		opener = &DirOpener{Root: cli.Dir, Getenv: m.Getenv, Logger: logger}
	}

	return kongCtx.Run(&Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
		Logger: logger,
		Opener: opener,
	})
}

// errorText returns the user-facing message of err. Internal errors keep
// their full chain.
func errorText(err error) string {
	if helpkb.ErrorCode(err) == helpkb.EINTERNAL {
		return err.Error()
	}
	return helpkb.ErrorMessage(err)
}
