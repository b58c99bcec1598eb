package main

import (
	"encoding/json"
	"image/png"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/kwv/colormesh/mesh"
)

// newHTTPServer creates an HTTP server with all endpoints
func newHTTPServer(stateTracker *mesh.StateTracker, config *mesh.Config) http.Handler {
	mux := http.NewServeMux()

	var palette []string
	if config != nil {
		palette = config.Palette
	}

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		log.Printf("[HTTP] /health request from %s", r.RemoteAddr)
		w.Header().Set("Content-Type", "application/json")
		status := struct {
			Status     string    `json:"status"`
			Timestamp  time.Time `json:"timestamp"`
			HasResults bool      `json:"hasResults"`
		}{
			Status:     "ok",
			Timestamp:  time.Now(),
			HasResults: stateTracker.HasResults(),
		}
		if err := json.NewEncoder(w).Encode(status); err != nil {
			log.Printf("Error encoding health status: %v", err)
		}
	})

	mux.HandleFunc("GET /results", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, stateTracker.GetResults())
	})

	mux.HandleFunc("GET /results/{label}", func(w http.ResponseWriter, r *http.Request) {
		result, ok := stateTracker.GetResult(r.PathValue("label"))
		if !ok {
			http.Error(w, "No result for "+r.PathValue("label"), http.StatusNotFound)
			return
		}
		writeJSON(w, result)
	})

	mux.HandleFunc("GET /layouts/{file}", func(w http.ResponseWriter, r *http.Request) {
		file := r.PathValue("file")
		label, format, ok := splitLayoutFile(file)
		if !ok {
			http.Error(w, "Expected {label}.svg, {label}.png or {label}.geojson", http.StatusNotFound)
			return
		}

		layout, ok := stateTracker.GetLayout(label)
		if !ok {
			http.Error(w, "No layout for "+label, http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Cache-Control", "no-cache")
		switch format {
		case "svg":
			renderer := mesh.NewVectorRenderer(layout)
			renderer.Palette = mesh.PaletteFromHex(palette)
			w.Header().Set("Content-Type", "image/svg+xml")
			if err := renderer.RenderToSVG(w); err != nil {
				log.Printf("Error rendering %s: %v", file, err)
			}
		case "png":
			renderer := mesh.NewRasterRenderer(layout)
			renderer.Palette = mesh.PaletteFromHex(palette)
			w.Header().Set("Content-Type", "image/png")
			if err := png.Encode(w, renderer.Render()); err != nil {
				log.Printf("Error encoding %s: %v", file, err)
			}
		case "geojson":
			w.Header().Set("Content-Type", "application/geo+json")
			if err := json.NewEncoder(w).Encode(mesh.LayoutToFeatureCollection(layout)); err != nil {
				log.Printf("Error encoding %s: %v", file, err)
			}
		}
	})

	return mux
}

// splitLayoutFile splits "Hexagon.svg" into label and format
func splitLayoutFile(file string) (label, format string, ok bool) {
	idx := strings.LastIndex(file, ".")
	if idx <= 0 {
		return "", "", false
	}
	label, format = file[:idx], file[idx+1:]
	switch format {
	case "svg", "png", "geojson":
	default:
		return "", "", false
	}
	return label, format, true
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}
