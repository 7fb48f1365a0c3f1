package main

import (
	"fmt"
	"io"
	"time"

	"github.com/fwojciec/helpkb"
	"github.com/schollz/progressbar/v3"
)

// Run executes the build command.
func (c *BuildCmd) Run(deps *Dependencies) error {
	p := &helpkb.Project{
		Name:              c.Project,
		BaseURL:           c.BaseURL,
		Blocklist:         c.Blocklist,
		Include:           c.Include,
		Exclude:           c.Exclude,
		Store:             c.Store,
		Provider:          c.Provider,
		ChatModel:         c.ChatModel,
		EmbeddingModel:    c.EmbeddingModel,
		Fetcher:           c.Fetcher,
		PreExtract:        c.PreExtract,
		RequestsPerSecond: c.RPS,
		ApproximateAbove:  c.Approximate,
		CreatedAt:         time.Now().UTC(),
	}

	ws, err := deps.Opener.Create(deps.Ctx, p)
	if err != nil {
		return err
	}
	defer ws.Close()

	if !c.Sitemap {
		ws.KB.Sitemaps = nil
	}
	ws.KB.Progress = newProgressBar(deps.Stderr)

	if err := ws.KB.Build(deps.Ctx, p.BaseURL); err != nil {
		return err
	}
	printSummary(deps.Stdout, ws)
	return nil
}

// Run executes the update command.
func (c *UpdateCmd) Run(deps *Dependencies) error {
	ws, err := deps.Opener.Open(deps.Ctx, c.Project, true)
	if err != nil {
		return err
	}
	defer ws.Close()

	ws.KB.Progress = newProgressBar(deps.Stderr)
	if err := ws.KB.Update(deps.Ctx); err != nil {
		return err
	}
	printSummary(deps.Stdout, ws)
	return nil
}

// Run executes the process_all command.
func (c *ProcessAllCmd) Run(deps *Dependencies) error {
	ws, err := deps.Opener.Open(deps.Ctx, c.Project, true)
	if err != nil {
		return err
	}
	defer ws.Close()

	ws.KB.Progress = newProgressBar(deps.Stderr)
	if err := ws.KB.ProcessAll(deps.Ctx); err != nil {
		return err
	}
	printSummary(deps.Stdout, ws)
	return nil
}

func printSummary(w io.Writer, ws *Workspace) {
	fmt.Fprintf(w, "%s: %d topics, %d keywords, %d questions indexed\n",
		ws.Project.Name,
		ws.KB.Indexes[helpkb.FamilyTopics].Len(),
		ws.KB.Indexes[helpkb.FamilyKeywords].Len(),
		ws.KB.Indexes[helpkb.FamilyQuestions].Len(),
	)
}

func newProgressBar(w io.Writer) *progressbar.ProgressBar {
	return progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("processing"),
		progressbar.OptionSetItsString("docs"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetRenderBlankState(true),
	)
}
