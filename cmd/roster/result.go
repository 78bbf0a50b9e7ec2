package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fwojciec/roster"
	"github.com/fwojciec/roster/fs"
)

// Run executes the list command.
func (c *ListCmd) Run(deps *Dependencies) error {
	filter := roster.ResultFilter{Limit: c.Limit}
	if c.Group != "" {
		filter.GroupName = &c.Group
	}

	results, err := deps.Results.FindResults(deps.Ctx, filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", roster.ErrorMessage(err))
		return err
	}

	if len(results) == 0 {
		fmt.Fprintln(deps.Stdout, "No results found. Use 'roster harvest' to create one.")
		return nil
	}

	for _, r := range results {
		stopped := ""
		if r.Stopped {
			stopped = "  (partial)"
		}
		fmt.Fprintf(deps.Stdout, "%s  %s  %d members  %s%s\n",
			r.ID, r.GroupName, r.TotalMembers, r.ExtractedAt.Format(time.RFC3339), stopped)
	}

	return nil
}

// Run executes the show command.
func (c *ShowCmd) Run(deps *Dependencies) error {
	result, err := deps.Results.FindResultByID(deps.Ctx, c.ID)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", roster.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Group:     %s\n", result.GroupName)
	fmt.Fprintf(deps.Stdout, "Source:    %s\n", result.SourceURL)
	fmt.Fprintf(deps.Stdout, "Extracted: %s\n", result.ExtractedAt.Format(time.RFC3339))
	fmt.Fprintf(deps.Stdout, "Members:   %d\n\n", result.TotalMembers)

	tw := tabwriter.NewWriter(deps.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tPHONE\tADMIN")
	for _, m := range result.Members {
		admin := ""
		if m.IsAdmin {
			admin = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", m.Name, m.Phone, admin)
	}
	return tw.Flush()
}

// Run executes the export command.
func (c *ExportCmd) Run(deps *Dependencies) error {
	format := c.Format
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(c.Path)), ".")
	}
	if format == "" {
		format = "json"
	}

	exporter, err := fs.ExporterFor(format)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", roster.ErrorMessage(err))
		return err
	}

	result, err := deps.Results.FindResultByID(deps.Ctx, c.ID)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", roster.ErrorMessage(err))
		return err
	}

	if err := fs.WriteFile(deps.Ctx, c.Path, result, exporter); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %v\n", err)
		return err
	}

	fmt.Fprintf(deps.Stdout, "Wrote %d members to %s\n", result.TotalMembers, c.Path)
	return nil
}

// Run executes the delete command.
func (c *DeleteCmd) Run(deps *Dependencies) error {
	if !c.Force {
		fmt.Fprintf(deps.Stderr, "error: use --force to confirm deletion\n")
		return roster.Errorf(roster.EINVALID, "use --force to confirm deletion")
	}

	if err := deps.Results.DeleteResult(deps.Ctx, c.ID); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", roster.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Deleted result %s\n", c.ID)
	return nil
}
