package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kwv/colormesh/mesh"
)

// Version is set at build time via -ldflags
var Version = "dev"

// AppOptions holds everything parsed from the command line
type AppOptions struct {
	ConfigFile   string
	Layouts      []string
	Overrides    mesh.ParameterOverrides // Only flags given explicitly
	ListCount    int
	RenderFile   string
	RenderFormat string
	InitConfig   string
	MqttMode     bool
	HttpMode     bool
	HttpPort     int
	Verbose      bool
}

// Runner is the set of modes the CLI can dispatch to
type Runner interface {
	ApplyOptions(opts AppOptions)
	RunEstimate() error
	RunList() error
	RunRender() error
	RunInitConfig() error
	RunService() error
}

func main() {
	// .env is optional; it only supplies MQTT_* settings
	_ = godotenv.Load()

	fmt.Printf("colormesh version: %s\n", Version)
	if err := run(os.Args[1:], NewApp(os.Stdout), os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		log.Fatalf("Error: %v", err)
	}
}

// run parses args and dispatches to exactly one runner mode
func run(args []string, app Runner, stderr io.Writer) error {
	opts, err := parseOptions(args, stderr)
	if err != nil {
		return err
	}
	app.ApplyOptions(opts)

	switch {
	case opts.InitConfig != "":
		return app.RunInitConfig()
	case opts.ListCount > 0:
		return app.RunList()
	case opts.RenderFile != "":
		return app.RunRender()
	case opts.MqttMode || opts.HttpMode:
		return app.RunService()
	default:
		return app.RunEstimate()
	}
}

func parseOptions(args []string, stderr io.Writer) (AppOptions, error) {
	fs := flag.NewFlagSet("colormesh", flag.ContinueOnError)
	fs.SetOutput(stderr)

	defaults := mesh.DefaultParameters()
	var opts AppOptions
	var layouts string

	fs.StringVar(&opts.ConfigFile, "config", "", "Path to YAML experiment configuration")
	fs.StringVar(&layouts, "layout", "hexagon,rectangle", "Comma-separated presets when no config is given: hexagon, rectangle, grid")
	fs.IntVar(&opts.ListCount, "list", 0, "Print N distinct assignments for the first experiment and exit")
	fs.StringVar(&opts.RenderFile, "render", "", "Render the first experiment's layout with one sample assignment to this file")
	fs.StringVar(&opts.RenderFormat, "format", "svg", "Render format: svg, png (vector) or raster")
	fs.StringVar(&opts.InitConfig, "init-config", "", "Write a starter configuration file and exit")
	fs.BoolVar(&opts.MqttMode, "mqtt", false, "Publish run results to MQTT")
	fs.BoolVar(&opts.HttpMode, "http", false, "Serve results and layout previews over HTTP")
	fs.IntVar(&opts.HttpPort, "http-port", 8080, "HTTP server port")
	fs.BoolVar(&opts.Verbose, "verbose", false, "Log each trial's validity rate")

	colors := fs.Int("colors", defaults.Colors, "Number of colors")
	loc := fs.Int("loc", defaults.Loc, "Locations per assignment")
	minShare := fs.Float64("min-share", defaults.MinShare, "Minimum share of each used color")
	radius := fs.Float64("radius", defaults.MinRadius, "Minimum distance between same-colored locations")
	divisions := fs.Int("divisions", defaults.Divisions, "Interior points per segment")
	edgeLength := fs.Float64("edge-length", defaults.EdgeLength, "Segment length after scaling")
	samples := fs.Int("samples", defaults.SamplesPerTrial, "Distinct assignments per trial")
	trials := fs.Int("trials", defaults.Trials, "Number of trials")
	strategy := fs.String("strategy", defaults.Strategy, "Sampling strategy: full, subset or greedy")
	boundary := fs.String("boundary", defaults.Boundary, "Separation at exactly the radius: strict (allowed) or inclusive (rejected)")
	seed := fs.Int64("seed", 0, "Random seed (0 = time based)")
	workers := fs.Int("workers", 1, "Trials run in parallel")
	maxIter := fs.Int("max-iterations", 0, "Cap on sampling attempts per trial (0 = unlimited)")
	confidence := fs.Float64("confidence", 0.95, "Confidence level for the interval half-width")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	for _, l := range strings.Split(layouts, ",") {
		if l = strings.TrimSpace(l); l != "" {
			opts.Layouts = append(opts.Layouts, l)
		}
	}

	o := &opts.Overrides
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "colors":
			o.Colors = colors
		case "loc":
			o.Loc = loc
		case "min-share":
			o.MinShare = minShare
		case "radius":
			o.MinRadius = radius
		case "divisions":
			o.Divisions = divisions
		case "edge-length":
			o.EdgeLength = edgeLength
		case "samples":
			o.SamplesPerTrial = samples
		case "trials":
			o.Trials = trials
		case "strategy":
			o.Strategy = strategy
		case "boundary":
			o.Boundary = boundary
		case "seed":
			o.Seed = seed
		case "workers":
			o.Workers = workers
		case "max-iterations":
			o.MaxIterations = maxIter
		case "confidence":
			o.ConfidenceLevel = confidence
		}
	})

	switch opts.RenderFormat {
	case "svg", "png", "raster":
	default:
		return opts, fmt.Errorf("unknown render format %q (want svg, png or raster)", opts.RenderFormat)
	}

	return opts, nil
}
