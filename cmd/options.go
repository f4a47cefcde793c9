package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/achilleasa/lumen/asset"
	"github.com/achilleasa/lumen/asset/texture"
	"github.com/achilleasa/lumen/renderer"
	"github.com/achilleasa/lumen/scene"
	"github.com/achilleasa/lumen/tracer"
	"github.com/achilleasa/lumen/tracer/cpu"
	"github.com/achilleasa/lumen/tracer/opencl"
	"github.com/achilleasa/lumen/types"
	"github.com/urfave/cli"
)

// The device name that selects the software backend.
const cpuDeviceName = "cpu"

var errInvalidColor = errors.New("cmd: invalid color; expected r,g,b")

// Build scene generator options and the generator seed from the scene flags.
func sceneOptions(ctx *cli.Context) (scene.GeneratorOptions, int64, error) {
	opts := scene.GeneratorOptions{
		MaxSpheres:      uint32(ctx.Int("max-spheres")),
		RadiusMin:       float32(ctx.Float64("radius-min")),
		RadiusMax:       float32(ctx.Float64("radius-max")),
		PlacementRadius: float32(ctx.Float64("placement-radius")),
	}
	return opts, ctx.Int64("seed"), opts.Validate()
}

// Build tracer options from the scene and tracer flags.
func tracerOptions(ctx *cli.Context) (tracer.Options, error) {
	var err error

	opts := tracer.DefaultOptions()
	if opts.Scene, opts.Seed, err = sceneOptions(ctx); err != nil {
		return opts, err
	}
	opts.Antialias = ctx.BoolT("antialias")
	opts.Bounces = uint32(ctx.Int("bounces"))

	if opts.AlbedoMultiplier, err = parseColor(ctx.String("albedo")); err != nil {
		return opts, fmt.Errorf("albedo: %w", err)
	}
	if opts.SpecularMultiplier, err = parseColor(ctx.String("specular")); err != nil {
		return opts, fmt.Errorf("specular: %w", err)
	}

	return opts, opts.Validate()
}

// Build renderer options from the render flags.
func rendererOptions(ctx *cli.Context) (renderer.Options, error) {
	tracerOpts, err := tracerOptions(ctx)
	if err != nil {
		return renderer.Options{}, err
	}

	opts := renderer.Options{
		FrameW:          uint32(ctx.Int("width")),
		FrameH:          uint32(ctx.Int("height")),
		SamplesPerPixel: uint32(ctx.Int("spp")),
		Exposure:        float32(ctx.Float64("exposure")),
		Tracer:          tracerOpts,
	}

	if skyboxPath := ctx.String("skybox"); skyboxPath != "" {
		res, err := asset.NewResource(skyboxPath)
		if err != nil {
			return opts, err
		}
		defer res.Close()

		if opts.Skybox, err = texture.New(res); err != nil {
			return opts, err
		}
		logger.Noticef("loaded %dx%d skybox from %s", opts.Skybox.Width, opts.Skybox.Height, res.Path())
	}

	return opts, opts.Validate()
}

// Create the backend selected by the device flag. An empty device name
// selects the fastest opencl device and falls back to the cpu backend if no
// opencl device is available.
func createBackend(ctx *cli.Context) (tracer.Backend, error) {
	name := ctx.String("device")
	if strings.EqualFold(name, cpuDeviceName) {
		return cpu.New(ctx.Int("workers")), nil
	}

	dev, err := opencl.SelectDevice(name)
	if err != nil {
		if name == "" {
			logger.Warningf("no opencl device available (%v); using cpu backend", err)
			return cpu.New(ctx.Int("workers")), nil
		}
		return nil, err
	}

	logger.Noticef("using opencl device %q", dev.Name)
	return opencl.New(dev)
}

// Parse a "r,g,b" color.
func parseColor(value string) (types.Vec3, error) {
	var out types.Vec3

	parts := strings.Split(value, ",")
	if len(parts) != 3 {
		return out, fmt.Errorf("%w: %q", errInvalidColor, value)
	}

	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 32)
		if err != nil {
			return out, fmt.Errorf("%w: %q", errInvalidColor, value)
		}
		out[i] = float32(v)
	}
	return out, nil
}
