package cmd

import (
	"bytes"
	"fmt"

	"github.com/achilleasa/lumen/renderer"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// Render a still frame.
func RenderFrame(ctx *cli.Context) error {
	if err := setupLogging(ctx); err != nil {
		return err
	}

	opts, err := rendererOptions(ctx)
	if err != nil {
		return err
	}

	backend, err := createBackend(ctx)
	if err != nil {
		return err
	}
	defer backend.Close()

	r, err := renderer.NewHeadless(backend, ctx.String("out"), opts)
	if err != nil {
		return err
	}
	defer r.Close()

	if err = r.Render(); err != nil {
		return err
	}

	// Display stats
	displayFrameStats(r.Stats())

	return nil
}

// Render an interactive view of the scene.
func RenderInteractive(ctx *cli.Context) error {
	if err := setupLogging(ctx); err != nil {
		return err
	}

	opts, err := rendererOptions(ctx)
	if err != nil {
		return err
	}

	backend, err := createBackend(ctx)
	if err != nil {
		return err
	}
	defer backend.Close()

	r, err := renderer.NewInteractive(backend, opts)
	if err != nil {
		return err
	}
	defer r.Close()

	err = r.Render()
	displayFrameStats(r.Stats())
	return err
}

func displayFrameStats(stats renderer.FrameStats) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Backend", "Frame", "Spheres", "Samples", "Skipped", "Dispatch", "Composite", "Avg frame time"})
	table.Append([]string{
		stats.Backend,
		fmt.Sprintf("%dx%d", stats.Last.FrameW, stats.Last.FrameH),
		fmt.Sprintf("%d", stats.Last.NumSpheres),
		fmt.Sprintf("%d", stats.Last.Sample),
		fmt.Sprintf("%d", stats.Skipped),
		stats.Last.DispatchTime.String(),
		stats.Last.CompositeTime.String(),
		stats.AvgFrameTime().String(),
	})
	table.SetFooter([]string{"", "", "", "", "", "", "TOTAL", stats.RenderTime.String()})

	table.Render()
	logger.Noticef("frame statistics\n%s", buf.String())
}
