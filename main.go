package main

import (
	"fmt"
	"os"

	"github.com/achilleasa/lumen/cmd"
	"github.com/achilleasa/lumen/tracer"
	"github.com/urfave/cli"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	defaults := tracer.DefaultOptions()
	sceneFlags := []cli.Flag{
		cli.IntFlag{
			Name:  "max-spheres",
			Value: int(defaults.Scene.MaxSpheres),
			Usage: "number of sphere placement attempts",
		},
		cli.Float64Flag{
			Name:  "radius-min",
			Value: float64(defaults.Scene.RadiusMin),
			Usage: "min sphere radius",
		},
		cli.Float64Flag{
			Name:  "radius-max",
			Value: float64(defaults.Scene.RadiusMax),
			Usage: "max sphere radius",
		},
		cli.Float64Flag{
			Name:  "placement-radius",
			Value: float64(defaults.Scene.PlacementRadius),
			Usage: "spheres are placed inside a disk with this radius",
		},
		cli.Int64Flag{
			Name:  "seed",
			Value: defaults.Seed,
			Usage: "seed for the scene generator",
		},
	}
	tracerFlags := []cli.Flag{
		cli.BoolTFlag{
			Name:  "antialias",
			Usage: "jitter primary rays inside each pixel",
		},
		cli.IntFlag{
			Name:  "bounces",
			Value: int(defaults.Bounces),
			Usage: fmt.Sprintf("number of ray bounces [%d, %d]", tracer.MinBounces, tracer.MaxBounces),
		},
		cli.StringFlag{
			Name:  "albedo",
			Value: "1,1,1",
			Usage: "albedo multiplier (r,g,b in [0, 1])",
		},
		cli.StringFlag{
			Name:  "specular",
			Value: "1,1,1",
			Usage: "specular multiplier (r,g,b in [0, 1])",
		},
	}
	renderFlags := []cli.Flag{
		cli.IntFlag{
			Name:  "width",
			Value: 512,
			Usage: "frame width",
		},
		cli.IntFlag{
			Name:  "height",
			Value: 512,
			Usage: "frame height",
		},
		cli.Float64Flag{
			Name:  "exposure",
			Value: 1.0,
			Usage: "camera exposure for tone-mapping",
		},
		cli.StringFlag{
			Name:  "skybox",
			Usage: "equirectangular skybox image (local file or http url)",
		},
		cli.StringFlag{
			Name:  "device, d",
			Usage: fmt.Sprintf("select opencl device whose name contains this value or %q for the software backend", "cpu"),
		},
		cli.IntFlag{
			Name:  "workers",
			Usage: "number of goroutines used by the cpu backend (0 = number of CPUs)",
		},
	}

	app := cli.NewApp()
	app.Name = "lumen"
	app.Usage = "progressive ray tracing of random sphere scenes"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
		cli.StringFlag{
			Name:  "log-level",
			Usage: "log level (debug, info, notice, warning, error)",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:   "list-devices",
			Usage:  "list available opencl devices",
			Action: cmd.ListDevices,
		},
		{
			Name:  "scene",
			Usage: "generate a random sphere scene and list its contents",
			Description: `
Generate a scene using the supplied options and display its spheres. The
generator makes max-spheres placement attempts and drops any sphere that
overlaps a previously placed one.`,
			Flags:  sceneFlags,
			Action: cmd.ShowScene,
		},
		{
			Name:  "render",
			Usage: "render scene",
			Subcommands: []cli.Command{
				{
					Name:  "frame",
					Usage: "render single frame",
					Description: `
Accumulate spp samples per pixel and write the tonemapped result to a png file.`,
					Flags: concatFlags(renderFlags, sceneFlags, tracerFlags, []cli.Flag{
						cli.IntFlag{
							Name:  "spp",
							Value: 16,
							Usage: "samples per pixel",
						},
						cli.StringFlag{
							Name:  "out, o",
							Value: "frame.png",
							Usage: "image filename for the rendered frame",
						},
					}),
					Action: cmd.RenderFrame,
				},
				{
					Name:  "interactive",
					Usage: "render interactive view of the scene",
					Description: `
Render the scene in a window, progressively refining the image while the view
is unchanged.

Controls:
  arrows/WASD      move camera (hold shift for double speed)
  page up/down     move camera up/down
  mouse drag       rotate camera
  I/J/K/L          rotate light
  R                reset accumulated samples
  N                generate a new scene
  Tab              toggle frame statistics in the window title
  Esc              quit`,
					Flags: concatFlags(renderFlags, sceneFlags, tracerFlags, []cli.Flag{
						cli.IntFlag{
							Name:  "spp",
							Value: 0,
							Usage: "stop accumulating after this many samples per pixel (0 = unlimited)",
						},
					}),
					Action: cmd.RenderInteractive,
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func concatFlags(flagSets ...[]cli.Flag) []cli.Flag {
	var out []cli.Flag
	for _, set := range flagSets {
		out = append(out, set...)
	}
	return out
}
