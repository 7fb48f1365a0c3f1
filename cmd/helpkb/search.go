package main

import (
	"fmt"
	"io"

	"github.com/fwojciec/helpkb"
)

// Run executes the search command.
func (c *SearchCmd) Run(deps *Dependencies) error {
	ws, err := deps.Opener.Open(deps.Ctx, c.Project, false)
	if err != nil {
		return err
	}
	defer ws.Close()

	res, err := ws.KB.Search(deps.Ctx, c.Query)
	if err != nil {
		return err
	}
	printMatches(deps.Stdout, "topics", res.Topics)
	printMatches(deps.Stdout, "questions", res.Questions)
	printMatches(deps.Stdout, "keywords", res.Keywords)
	return nil
}

func printMatches(w io.Writer, family string, matches []helpkb.Match) {
	fmt.Fprintf(w, "%s:\n", family)
	if len(matches) == 0 {
		fmt.Fprintln(w, "  (none)")
	}
	for _, m := range matches {
		fmt.Fprintf(w, "  %.4f  %s\n          %s\n", m.Distance, m.Label, m.FilePath)
	}
}

// Run executes the answer command.
func (c *AnswerCmd) Run(deps *Dependencies) error {
	ws, err := deps.Opener.Open(deps.Ctx, c.Project, false)
	if err != nil {
		return err
	}
	defer ws.Close()

	answer, err := ws.KB.Answer(deps.Ctx, c.Query)
	if err != nil {
		return err
	}
	if answer == "" {
		fmt.Fprintln(deps.Stdout, "No answer found.")
		return nil
	}
	fmt.Fprintln(deps.Stdout, answer)
	return nil
}
