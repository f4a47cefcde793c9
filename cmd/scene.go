package cmd

import (
	"bytes"
	"fmt"
	"math/rand"

	"github.com/achilleasa/lumen/scene"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// Generate a scene and display its spheres.
func ShowScene(ctx *cli.Context) error {
	if err := setupLogging(ctx); err != nil {
		return err
	}

	opts, seed, err := sceneOptions(ctx)
	if err != nil {
		return err
	}

	spheres := scene.Generate(opts, rand.New(rand.NewSource(seed)))

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"#", "Position", "Radius", "Albedo", "Specular", "Kind"})
	for index, s := range spheres {
		kind := "dielectric"
		if s.IsMetal() {
			kind = "metal"
		}
		table.Append([]string{
			fmt.Sprintf("%d", index),
			fmt.Sprintf("(%3.2f, %3.2f, %3.2f)", s.Position[0], s.Position[1], s.Position[2]),
			fmt.Sprintf("%3.2f", s.Radius),
			fmt.Sprintf("(%1.2f, %1.2f, %1.2f)", s.Albedo[0], s.Albedo[1], s.Albedo[2]),
			fmt.Sprintf("(%1.2f, %1.2f, %1.2f)", s.Specular[0], s.Specular[1], s.Specular[2]),
			kind,
		})
	}
	table.SetFooter([]string{"", "", "", "", "ACCEPTED", fmt.Sprintf("%d / %d", len(spheres), opts.MaxSpheres)})

	table.Render()
	logger.Noticef("scene with seed %d\n%s", seed, buf.String())
	return nil
}
