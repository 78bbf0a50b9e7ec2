package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/roster"
	"github.com/fwojciec/roster/harvest"
	"github.com/fwojciec/roster/prometheus"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx     context.Context
	Stdout  io.Writer
	Stderr  io.Writer
	Logger  *slog.Logger
	Config  FileConfig
	Results roster.ResultService

	// Set for the harvest command only.
	Service *harvest.Service
	Metrics *prometheus.Metrics
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Config  string `type:"path" help:"YAML configuration file"`
	Verbose bool   `short:"v" help:"Log debug output to stderr"`

	Harvest  HarvestCmd  `cmd:"" help:"Harvest the member list of a page"`
	Simulate SimulateCmd `cmd:"" help:"Harvest a simulated virtualized list"`
	List     ListCmd     `cmd:"" help:"List stored results"`
	Show     ShowCmd     `cmd:"" help:"Show the members of a stored result"`
	Export   ExportCmd   `cmd:"" help:"Write a stored result to a file"`
	Delete   DeleteCmd   `cmd:"" help:"Delete a stored result"`
}

// OutputFlags control what happens to a finished harvest.
type OutputFlags struct {
	Listen  string        `help:"Serve status, controls and metrics on this address (e.g. localhost:8080)"`
	Timeout time.Duration `help:"Stop the harvest after this long and keep the partial result"`
	Out     string        `short:"o" type:"path" help:"Also write the result to this file"`
	Format  string        `enum:"json,csv" default:"json" help:"Format for --out (json, csv)"`
	NoSave  bool          `help:"Do not store the result in the database"`
}

// HarvestCmd is the "harvest" subcommand.
type HarvestCmd struct {
	URL        string        `arg:"" help:"Page that shows the member list"`
	Open       string        `help:"Selector of a control to click before the list appears"`
	List       []string      `name:"list" help:"Selectors of the list root, tried in order (repeatable)"`
	Item       []string      `name:"item" help:"Selectors of list items, tried in order (repeatable)"`
	Group      []string      `name:"group" help:"Selectors of the group name header (repeatable)"`
	Attempts   int           `help:"Session attempts before giving up"`
	MaxItems   int           `help:"Stop after this many members"`
	Wait       time.Duration `help:"How long to wait for the list to appear"`
	Headful    bool          `help:"Show the browser window"`
	ProfileDir string        `type:"path" help:"Persistent browser profile directory"`
	Remote     string        `help:"Attach to a running browser at this DevTools address"`

	OutputFlags
}

// SimulateCmd is the "simulate" subcommand.
type SimulateCmd struct {
	Items      int `default:"250" help:"Number of members in the list"`
	Render     int `default:"20" help:"Number of rendered rows"`
	Duplicates int `help:"Repeat every Nth member with decorated text"`
	LazyLoad   int `help:"Load this many members each time the bottom is reached"`
	MaxItems   int `help:"Stop after this many members"`

	OutputFlags
}

// ListCmd is the "list" subcommand.
type ListCmd struct {
	Group string `help:"Only results for this group name"`
	Limit int    `default:"20" help:"Maximum number of results"`
}

// ShowCmd is the "show" subcommand.
type ShowCmd struct {
	ID string `arg:"" help:"Result ID"`
}

// ExportCmd is the "export" subcommand.
type ExportCmd struct {
	ID     string `arg:"" help:"Result ID"`
	Path   string `arg:"" type:"path" help:"Destination file"`
	Format string `help:"File format (json, csv); defaults to the file extension"`
}

// DeleteCmd is the "delete" subcommand.
type DeleteCmd struct {
	ID    string `arg:"" help:"Result ID"`
	Force bool   `help:"Confirm deletion"`
}
