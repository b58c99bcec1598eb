package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kwv/colormesh/mesh"
)

// App encapsulates the application state and dependencies
type App struct {
	Config       *mesh.Config
	Engine       *mesh.Engine
	StateTracker *mesh.StateTracker
	Publisher    *mesh.Publisher
	Out          io.Writer

	Opts AppOptions
}

// NewApp creates a new App writing reports to out
func NewApp(out io.Writer) *App {
	return &App{
		Engine:       mesh.NewEngine(),
		StateTracker: mesh.NewStateTracker(),
		Out:          out,
	}
}

// ApplyOptions applies CLI options to the App instance
func (a *App) ApplyOptions(opts AppOptions) {
	a.Opts = opts
	a.Engine.Verbose = opts.Verbose
}

// loadConfig resolves the experiment list from the config file or presets
func (a *App) loadConfig() (*mesh.Config, error) {
	if a.Config != nil {
		return a.Config, nil
	}

	var (
		config *mesh.Config
		err    error
	)
	if a.Opts.ConfigFile != "" {
		config, err = mesh.LoadConfig(a.Opts.ConfigFile)
	} else {
		layouts := a.Opts.Layouts
		if len(layouts) == 0 {
			layouts = []string{mesh.PresetHexagon}
		}
		config, err = mesh.PresetConfig(layouts, mesh.DefaultParameters())
	}
	if err != nil {
		return nil, err
	}

	a.Config = config
	return config, nil
}

// parametersFor applies explicit CLI flags over the configured parameters
func (a *App) parametersFor(config *mesh.Config, e *mesh.Experiment) mesh.Parameters {
	return a.Opts.Overrides.Apply(config.ParametersFor(e))
}

// RunEstimate runs every configured experiment and prints one line each
func (a *App) RunEstimate() error {
	config, err := a.loadConfig()
	if err != nil {
		return err
	}

	for i := range config.Experiments {
		e := &config.Experiments[i]
		params := a.parametersFor(config, e)

		locations, err := mesh.BuildLayout(e, params)
		if err != nil {
			return fmt.Errorf("%s: %w", e.Name, err)
		}

		rng := mesh.NewRand(params.Seed)
		result, err := a.Engine.Run(context.Background(), e.Name, locations, params, rng)
		if err != nil {
			return fmt.Errorf("%s: %w", e.Name, err)
		}

		fmt.Fprintln(a.Out, result.String())
		a.StateTracker.UpdateResult(result)

		snapshot, err := a.snapshot(e, params, locations, rng)
		if err != nil {
			log.Printf("Warning: no layout preview for %s: %v", e.Name, err)
		} else {
			a.StateTracker.UpdateLayout(snapshot)
		}

		if a.Publisher != nil {
			if err := a.Publisher.PublishResult(result); err != nil {
				log.Printf("Error publishing %s: %v", e.Name, err)
			}
		}
	}
	return nil
}

// snapshot draws one sample assignment for previews
func (a *App) snapshot(e *mesh.Experiment, params mesh.Parameters, locations []mesh.Point, rng *rand.Rand) (*mesh.LayoutSnapshot, error) {
	assignments, err := a.sample(params, locations, 1, mesh.NewRand(rng.Int63()))
	if err != nil {
		return nil, err
	}

	snapshot := &mesh.LayoutSnapshot{
		Label:     e.Name,
		Points:    locations,
		Sample:    assignments[0],
		Colors:    params.Colors,
		MinRadius: params.MinRadius,
	}
	if len(e.Points) == 0 {
		if raw, err := mesh.ExperimentSegments(e, params); err == nil && len(raw) > 0 {
			if scaled, err := mesh.ScaleSegments(raw, params.EdgeLength); err == nil {
				snapshot.Segments = scaled
			}
		}
	}
	return snapshot, nil
}

// sample draws n distinct assignments with the configured strategy
func (a *App) sample(params mesh.Parameters, locations []mesh.Point, n int, rng *rand.Rand) ([]mesh.Assignment, error) {
	if err := mesh.ValidateParameters(params, len(locations)); err != nil {
		return nil, err
	}
	strategy, err := mesh.StrategyByName(params.Strategy)
	if err != nil {
		return nil, err
	}
	boundary, err := mesh.ParseBoundary(params.Boundary)
	if err != nil {
		return nil, err
	}

	gen := &mesh.Generator{Strategy: strategy, MaxIterations: params.MaxIterations}
	return gen.Generate(rng, n, mesh.SampleRequest{
		Locations: locations,
		Colors:    params.Colors,
		Loc:       params.Loc,
		MinRadius: params.MinRadius,
		Boundary:  boundary,
	})
}

// firstExperiment returns the first configured experiment with its layout
func (a *App) firstExperiment() (*mesh.Experiment, mesh.Parameters, []mesh.Point, error) {
	config, err := a.loadConfig()
	if err != nil {
		return nil, mesh.Parameters{}, nil, err
	}
	e := &config.Experiments[0]
	params := a.parametersFor(config, e)
	locations, err := mesh.BuildLayout(e, params)
	if err != nil {
		return nil, params, nil, fmt.Errorf("%s: %w", e.Name, err)
	}
	return e, params, locations, nil
}

// RunList prints Opts.ListCount distinct assignments with color percentages
func (a *App) RunList() error {
	e, params, locations, err := a.firstExperiment()
	if err != nil {
		return err
	}

	assignments, err := a.sample(params, locations, a.Opts.ListCount, mesh.NewRand(params.Seed))
	if err != nil {
		return fmt.Errorf("%s: %w", e.Name, err)
	}

	fmt.Fprintf(a.Out, "%s: %d distinct %s assignments over %d locations\n",
		e.Name, len(assignments), params.Strategy, len(locations))
	for i, asg := range assignments {
		if err := mesh.WriteAssignment(a.Out, i+1, asg, locations, params.Colors, params.Loc); err != nil {
			return err
		}
	}
	return nil
}

// RunRender renders the first experiment's layout to Opts.RenderFile
func (a *App) RunRender() error {
	e, params, locations, err := a.firstExperiment()
	if err != nil {
		return err
	}

	snapshot, err := a.snapshot(e, params, locations, mesh.NewRand(params.Seed))
	if err != nil {
		return fmt.Errorf("%s: %w", e.Name, err)
	}

	if err := a.writeRender(snapshot, a.Opts.RenderFormat, a.Opts.RenderFile); err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "Rendered %s to %s (%s)\n", e.Name, a.Opts.RenderFile, a.Opts.RenderFormat)
	return nil
}

func (a *App) writeRender(snapshot *mesh.LayoutSnapshot, format, path string) error {
	var palette []string
	if a.Config != nil {
		palette = a.Config.Palette
	}

	if format == "raster" {
		r := mesh.NewRasterRenderer(snapshot)
		r.Palette = mesh.PaletteFromHex(palette)
		return r.SavePNG(path)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	r := mesh.NewVectorRenderer(snapshot)
	r.Palette = mesh.PaletteFromHex(palette)
	if format == "png" {
		return r.RenderToPNG(f)
	}
	return r.RenderToSVG(f)
}

// RunInitConfig writes a starter configuration covering all presets
func (a *App) RunInitConfig() error {
	config, err := mesh.PresetConfig(mesh.PresetNames(), mesh.DefaultParameters())
	if err != nil {
		return err
	}
	config.MQTT = mesh.MQTTConfig{Broker: "tcp://localhost:1883", PublishPrefix: "colormesh"}
	config.Palette = []string{"#0000FF", "#FF0000", "#00A000"}

	if err := mesh.SaveConfig(a.Opts.InitConfig, config); err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "Wrote %s\n", a.Opts.InitConfig)
	return nil
}

// RunService publishes results to MQTT and/or serves them over HTTP until
// interrupted.
func (a *App) RunService() error {
	config, err := a.loadConfig()
	if err != nil {
		return err
	}

	if a.Opts.MqttMode {
		client, mqttCfg, err := mesh.ConnectMQTT(config.MQTT, 10*time.Second)
		if err != nil {
			return fmt.Errorf("MQTT: %w", err)
		}
		if client != nil {
			defer client.Disconnect(250)
			a.Publisher = mesh.NewPublisher(client, mqttCfg.PublishPrefix)
			fmt.Fprintf(a.Out, "Publishing results to %s/results/{label}\n", mqttCfg.PublishPrefix)
		}
	}

	if !a.Opts.HttpMode {
		return a.RunEstimate()
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf("0.0.0.0:%d", a.Opts.HttpPort),
		Handler:           newHTTPServer(a.StateTracker, config),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Printf("[HTTP] Starting server on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[HTTP] Server error: %v", err)
		}
	}()

	if err := a.RunEstimate(); err != nil {
		log.Printf("Estimation failed: %v", err)
	}

	fmt.Fprintf(a.Out, "\nHTTP endpoints (port %d):\n", a.Opts.HttpPort)
	fmt.Fprintln(a.Out, "  GET /health                    - Health check")
	fmt.Fprintln(a.Out, "  GET /results                   - All run results")
	fmt.Fprintln(a.Out, "  GET /results/{label}           - One run result")
	fmt.Fprintln(a.Out, "  GET /layouts/{label}.svg       - Layout with a sample assignment")
	fmt.Fprintln(a.Out, "  GET /layouts/{label}.png       - Raster preview")
	fmt.Fprintln(a.Out, "  GET /layouts/{label}.geojson   - Layout as GeoJSON")
	fmt.Fprintln(a.Out, "\nPress Ctrl+C to stop")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	fmt.Fprintln(a.Out, "\nShutting down service...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
