package main

import (
	"context"
	"io"
	"log/slog"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
	Opener Opener
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Dir     string `help:"Directory holding projects" env:"HELPKB_DIR" default:"." type:"path"`
	Verbose bool   `short:"v" help:"Log debug output"`

	Build      BuildCmd      `cmd:"" help:"Create a project and crawl it from a base URL"`
	Update     UpdateCmd     `cmd:"" help:"Resume crawling and processing a project"`
	ProcessAll ProcessAllCmd `cmd:"" name:"process_all" help:"Requeue every unprocessed document and process it"`
	Search     SearchCmd     `cmd:"" help:"Show the records closest to a query"`
	Answer     AnswerCmd     `cmd:"" help:"Answer a question from the knowledge base"`
	Docs       DocsCmd       `cmd:"" help:"List documents and their status"`
	Show       ShowCmd       `cmd:"" help:"Print the trimmed text of a document"`
}

// BuildCmd is the "build" subcommand.
type BuildCmd struct {
	Project string `arg:"" help:"Project name"`
	BaseURL string `arg:"" name:"base-url" help:"URL crawling starts from; links outside it are ignored"`

	Blocklist      []string `short:"b" help:"URL prefix never crawled (repeatable)"`
	Include        []string `help:"Only crawl URLs matching regex (repeatable)"`
	Exclude        []string `help:"Skip URLs matching regex (repeatable)"`
	Store          string   `default:"fs" enum:"fs,sqlite" help:"Content store backend (fs, sqlite)"`
	Provider       string   `default:"gemini" enum:"gemini,ollama,static" help:"Model provider (gemini, ollama, static)"`
	ChatModel      string   `help:"Chat model name"`
	EmbeddingModel string   `help:"Embedding model name"`
	Fetcher        string   `default:"http" enum:"http,rod" help:"Page fetcher (http, rod)"`
	PreExtract     string   `default:"none" enum:"none,trafilatura,readability" help:"Main content extractor run before trimming"`
	RPS            float64  `name:"rps" default:"1" help:"Requests per second per host, 0 for no limit"`
	Sitemap        bool     `help:"Seed the crawl with the site's sitemap URLs"`
	Approximate    int      `name:"approximate-above" help:"Use approximate search for index families larger than this, 0 for always exact"`
}

// UpdateCmd is the "update" subcommand.
type UpdateCmd struct {
	Project string `arg:"" help:"Project name"`
}

// ProcessAllCmd is the "process_all" subcommand.
type ProcessAllCmd struct {
	Project string `arg:"" help:"Project name"`
}

// SearchCmd is the "search" subcommand.
type SearchCmd struct {
	Project string `arg:"" help:"Project name"`
	Query   string `arg:"" help:"Search query"`
}

// AnswerCmd is the "answer" subcommand.
type AnswerCmd struct {
	Project string `arg:"" help:"Project name"`
	Query   string `arg:"" help:"Question to answer"`
}

// DocsCmd is the "docs" subcommand.
type DocsCmd struct {
	Project string `arg:"" help:"Project name"`
}

// ShowCmd is the "show" subcommand.
type ShowCmd struct {
	Project  string `arg:"" help:"Project name"`
	ID       string `arg:"" help:"Document ID"`
	Markdown bool   `short:"m" help:"Print the downloaded page as markdown instead"`
}
