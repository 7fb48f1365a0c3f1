package main

import (
	"fmt"

	"github.com/fwojciec/helpkb"
)

// Run executes the docs command.
func (c *DocsCmd) Run(deps *Dependencies) error {
	ws, err := deps.Opener.Open(deps.Ctx, c.Project, false)
	if err != nil {
		return err
	}
	defer ws.Close()

	ids, err := ws.Store.DocumentIDs(deps.Ctx)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return helpkb.Errorf(helpkb.ENOTFOUND, "project %q has no documents. Run 'helpkb update %s' to crawl it.", c.Project, c.Project)
	}

	counts := map[helpkb.Status]int{}
	fmt.Fprintf(deps.Stdout, "Documents for %s (%d total):\n\n", c.Project, len(ids))
	for _, id := range ids {
		status, err := ws.Store.Status(deps.Ctx, id)
		if err != nil {
			return err
		}
		counts[status]++
		fmt.Fprintf(deps.Stdout, "  %-10s  %s\n", status, id)
	}
	fmt.Fprintln(deps.Stdout)
	for _, s := range []helpkb.Status{
		helpkb.StatusUnvisited, helpkb.StatusDownloaded, helpkb.StatusTrimmed,
		helpkb.StatusChunked, helpkb.StatusProcessed, helpkb.StatusError,
	} {
		if counts[s] > 0 {
			fmt.Fprintf(deps.Stdout, "%s: %d\n", s, counts[s])
		}
	}
	return nil
}

// Run executes the show command.
func (c *ShowCmd) Run(deps *Dependencies) error {
	ws, err := deps.Opener.Open(deps.Ctx, c.Project, false)
	if err != nil {
		return err
	}
	defer ws.Close()

	if c.Markdown {
		source, err := ws.Store.Source(deps.Ctx, c.ID)
		if err != nil {
			return err
		}
		md, err := ws.Markdown.Convert(source)
		if err != nil {
			return err
		}
		fmt.Fprintln(deps.Stdout, md)
		return nil
	}

	trimmed, err := ws.Store.Trimmed(deps.Ctx, c.ID)
	if err != nil {
		return err
	}
	fmt.Fprintln(deps.Stdout, trimmed)
	return nil
}
