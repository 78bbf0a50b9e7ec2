package main

import (
	"context"
	"fmt"
	"time"

	"github.com/fwojciec/roster"
	"github.com/fwojciec/roster/fs"
	"github.com/fwojciec/roster/harvest"
	rosterhttp "github.com/fwojciec/roster/http"
	"github.com/fwojciec/roster/prometheus"
	"github.com/fwojciec/roster/sim"
	"golang.org/x/sync/errgroup"
)

// Run executes the harvest command.
func (c *HarvestCmd) Run(deps *Dependencies) error {
	if deps.Service == nil {
		return roster.Errorf(roster.EINTERNAL, "harvest service not configured")
	}
	return runHarvest(deps, deps.Service, deps.Metrics, c.OutputFlags)
}

// Run executes the simulate command.
func (c *SimulateCmd) Run(deps *Dependencies) error {
	if c.Items < 0 {
		fmt.Fprintf(deps.Stderr, "error: --items must not be negative\n")
		return roster.Errorf(roster.EINVALID, "--items must not be negative")
	}

	items := sim.Generate(c.Items)
	if c.Duplicates > 0 {
		items = sim.WithDuplicates(items, c.Duplicates)
	}
	opts := []sim.Option{sim.WithRender(c.Render)}
	if c.LazyLoad > 0 {
		opts = append(opts, sim.WithLazyLoad(c.LazyLoad))
	}
	list := sim.New(items, opts...)

	cfg := deps.Config.Harvest
	if c.MaxItems > 0 {
		cfg.MaxItems = c.MaxItems
	}
	metrics := prometheus.NewMetrics()
	runner := &harvest.Runner{
		Locator:   list,
		Harvester: newHarvester(nil, metrics, deps.Logger, cfg),
		Namer:     list,
		Metrics:   metrics,
		Logger:    deps.Logger,
		SourceURL: "sim://list",
		Config:    cfg,
	}
	return runHarvest(deps, harvest.NewService(runner), metrics, c.OutputFlags)
}

// runHarvest runs svc to completion next to the optional control server,
// then stores and exports the result.
func runHarvest(deps *Dependencies, svc *harvest.Service, metrics *prometheus.Metrics, o OutputFlags) error {
	var exporter roster.Exporter
	if o.Out != "" {
		e, err := fs.ExporterFor(o.Format)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", roster.ErrorMessage(err))
			return err
		}
		exporter = e
	}

	ctx, cancel := context.WithCancel(deps.Ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	if o.Listen != "" {
		opts := []rosterhttp.Option{rosterhttp.WithLogger(deps.Logger)}
		if metrics != nil {
			opts = append(opts, rosterhttp.WithMetrics(metrics.Handler()))
		}
		srv := rosterhttp.NewServer(svc, opts...)
		g.Go(func() error {
			return srv.ListenAndServe(gctx, o.Listen)
		})
		fmt.Fprintf(deps.Stderr, "Control server on http://%s\n", o.Listen)
	}

	var result *roster.Result
	g.Go(func() error {
		// Ending the harvest ends the control server.
		defer cancel()
		if o.Timeout > 0 {
			t := time.AfterFunc(o.Timeout, svc.Stop)
			defer t.Stop()
		}
		r, err := svc.Start(gctx, printProgress(deps))
		result = r
		return err
	})

	err := g.Wait()
	fmt.Fprintln(deps.Stdout)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", roster.ErrorMessage(err))
		return err
	}

	if result.Empty() {
		fmt.Fprintln(deps.Stdout, "No members found")
		return nil
	}

	fmt.Fprintf(deps.Stdout, "Collected %d members", result.TotalMembers)
	if result.GroupName != "" {
		fmt.Fprintf(deps.Stdout, " from %q", result.GroupName)
	}
	fmt.Fprintln(deps.Stdout)
	if result.Stopped {
		fmt.Fprintln(deps.Stdout, "Harvest was stopped early; the result is partial")
	}

	if !o.NoSave {
		if err := deps.Results.CreateResult(deps.Ctx, result); err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", roster.ErrorMessage(err))
			return err
		}
		fmt.Fprintf(deps.Stdout, "Saved result %s\n", result.ID)
	}

	if exporter != nil {
		if err := fs.WriteFile(deps.Ctx, o.Out, result, exporter); err != nil {
			fmt.Fprintf(deps.Stderr, "error: %v\n", err)
			return err
		}
		fmt.Fprintf(deps.Stdout, "Wrote %s\n", o.Out)
	}

	return nil
}

// printProgress rewrites a single status line.
func printProgress(deps *Dependencies) roster.ProgressFunc {
	return func(p roster.Progress) {
		fmt.Fprintf(deps.Stdout, "\r[%d%%] %s %d", p.Percent, p.Status, p.Count)
	}
}
