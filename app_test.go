package main

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kwv/colormesh/mesh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `
defaults:
  colors: 2
  loc: 4
  minShare: 0
  minRadius: 0.5
  samplesPerTrial: 10
  trials: 3
  seed: 7
experiments:
  - name: Square
    points: [[0, 0], [1, 0], [1, 1], [0, 1]]
  - name: Hexagon
    preset: hexagon
    overrides:
      loc: 36
      colors: 3
      samplesPerTrial: 20
      trials: 2
  - name: Rows
    segments:
      - [[0, 0], [1, 0]]
      - [[0, 3], [1, 3]]
    overrides:
      divisions: 2
      edgeLength: 4
`

func writeTestConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testConfig), 0644))
	return path
}

func newTestApp(t *testing.T, opts AppOptions) (*App, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	app := NewApp(&out)
	app.ApplyOptions(opts)
	return app, &out
}

func TestApp_RunEstimate(t *testing.T) {
	app, out := newTestApp(t, AppOptions{ConfigFile: writeTestConfig(t)})
	require.NoError(t, app.RunEstimate())

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	// every assignment on four unit-spaced points passes a 0.5 radius
	assert.Equal(t, "Square: 100.00% ± 0.00% valid combinations", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "Hexagon: "), lines[1])
	assert.True(t, strings.HasSuffix(lines[2], "valid combinations"), lines[2])

	r, ok := app.StateTracker.GetResult("Hexagon")
	require.True(t, ok)
	assert.Equal(t, 36, r.Locations)
	assert.Len(t, r.TrialRates, 2)

	rows, ok := app.StateTracker.GetResult("Rows")
	require.True(t, ok)
	assert.Equal(t, 4, rows.Locations)

	layout, ok := app.StateTracker.GetLayout("Rows")
	require.True(t, ok)
	assert.Len(t, layout.Segments, 2)
	assert.Len(t, layout.Sample, 4)
}

func TestApp_RunEstimate_FlagOverrides(t *testing.T) {
	trials, samples := 1, 5
	opts := AppOptions{ConfigFile: writeTestConfig(t)}
	opts.Overrides.Trials = &trials
	opts.Overrides.SamplesPerTrial = &samples

	app, _ := newTestApp(t, opts)
	require.NoError(t, app.RunEstimate())

	r, ok := app.StateTracker.GetResult("Hexagon")
	require.True(t, ok)
	assert.Equal(t, 1, r.Trials, "CLI flags win over experiment overrides")
	assert.Equal(t, 5, r.SamplesPerTrial)
}

func TestApp_RunEstimate_TooManyLocations(t *testing.T) {
	loc := 5
	opts := AppOptions{ConfigFile: writeTestConfig(t)}
	opts.Overrides.Loc = &loc

	app, _ := newTestApp(t, opts)
	err := app.RunEstimate()
	require.ErrorIs(t, err, mesh.ErrTooManyLocations)
	assert.Contains(t, err.Error(), "Square")
}

func TestApp_RunEstimate_Presets(t *testing.T) {
	samples, trials := 20, 2
	opts := AppOptions{Layouts: []string{"grid"}}
	opts.Overrides.SamplesPerTrial = &samples
	opts.Overrides.Trials = &trials

	app, out := newTestApp(t, opts)
	require.NoError(t, app.RunEstimate())
	assert.Contains(t, out.String(), "Grid: ")
}

func TestApp_RunList(t *testing.T) {
	app, out := newTestApp(t, AppOptions{ConfigFile: writeTestConfig(t), ListCount: 3})
	require.NoError(t, app.RunList())

	text := out.String()
	assert.Contains(t, text, "Square: 3 distinct full assignments over 4 locations")
	assert.Contains(t, text, "Combination 1:")
	assert.Contains(t, text, "Combination 3:")
	assert.NotContains(t, text, "Combination 4:")
	assert.Contains(t, text, "Coordinate (1, 1): Color ")
	assert.Equal(t, 3, strings.Count(text, "Color percentages:"))
}

func TestApp_RunRender(t *testing.T) {
	dir := t.TempDir()

	for _, format := range []string{"svg", "png", "raster"} {
		t.Run(format, func(t *testing.T) {
			path := filepath.Join(dir, "layout."+format)
			app, out := newTestApp(t, AppOptions{Layouts: []string{"hexagon"}, RenderFile: path, RenderFormat: format})
			require.NoError(t, app.RunRender())
			assert.Contains(t, out.String(), "Rendered Hexagon to "+path)

			data, err := os.ReadFile(path)
			require.NoError(t, err)
			if format == "svg" {
				assert.Contains(t, string(data), "<svg")
				return
			}
			_, err = png.Decode(bytes.NewReader(data))
			assert.NoError(t, err)
		})
	}
}

func TestApp_RunInitConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "starter.yaml")
	app, out := newTestApp(t, AppOptions{InitConfig: path})
	require.NoError(t, app.RunInitConfig())
	assert.Contains(t, out.String(), "Wrote "+path)

	config, err := mesh.LoadConfig(path)
	require.NoError(t, err)
	require.Len(t, config.Experiments, len(mesh.PresetNames()))
	assert.Equal(t, "tcp://localhost:1883", config.MQTT.Broker)
	assert.Equal(t, mesh.DefaultParameters(), config.Defaults)
}

func TestApp_RunService_MQTTWithoutBroker(t *testing.T) {
	t.Setenv("MQTT_BROKER", "")

	app, out := newTestApp(t, AppOptions{ConfigFile: writeTestConfig(t), MqttMode: true})
	require.NoError(t, app.RunService())
	assert.Nil(t, app.Publisher)
	assert.Contains(t, out.String(), "Square: ")
}

func TestApp_RunEstimate_Publishes(t *testing.T) {
	client := mesh.NewMockClient()
	client.SetConnected(true)

	app, _ := newTestApp(t, AppOptions{ConfigFile: writeTestConfig(t)})
	app.Publisher = mesh.NewPublisher(client, "test")
	require.NoError(t, app.RunEstimate())

	topics := make(map[string]bool)
	for _, m := range client.GetPublishedMessages() {
		topics[m.Topic] = true
	}
	for _, want := range []string{"test/results/Square", "test/results/Hexagon", "test/results/Rows", "test/results"} {
		assert.True(t, topics[want], "expected publish to %s", want)
	}
}
