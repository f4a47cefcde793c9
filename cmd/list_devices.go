package cmd

import (
	"bytes"
	"fmt"

	"github.com/achilleasa/lumen/tracer/opencl/device"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// List available opencl devices.
func ListDevices(ctx *cli.Context) error {
	if err := setupLogging(ctx); err != nil {
		return err
	}

	platforms, err := device.GetPlatformInfo()
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Platform", "Version", "Device", "Type", "Speed"})
	for _, platform := range platforms {
		if len(platform.Devices) == 0 {
			table.Append([]string{platform.Name, platform.Version, "-", "-", "-"})
			continue
		}
		for _, dev := range platform.Devices {
			table.Append([]string{
				platform.Name,
				platform.Version,
				dev.Name,
				dev.Type.String(),
				fmt.Sprintf("%d GFlops", dev.Speed),
			})
		}
	}
	table.SetFooter([]string{"", "", "", "PLATFORMS", fmt.Sprintf("%d", len(platforms))})

	table.Render()
	logger.Noticef("system provides %d opencl platform(s)\n%s", len(platforms), buf.String())
	return nil
}
