package memory

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/windward-sim/windward/internal/chart"
)

// VoyageExport is the root JSON structure
type VoyageExport struct {
	EngineVersion string     `json:"engineVersion"`
	VoyageName    string     `json:"voyageName"`
	Tag           string     `json:"tag"`
	ChartName     string     `json:"chartName"`
	TickSeconds   float64    `json:"tickSeconds"`
	StartTime     string     `json:"startTime"`
	EndTick       uint64     `json:"endTick"`
	Boats         []BoatJSON `json:"boats"`
}

// BoatJSON represents one vessel and its full track
type BoatJSON struct {
	ID       uint16  `json:"id"`
	Name     string  `json:"name"`
	Class    string  `json:"class"`
	StartLat float64 `json:"startLat"`
	StartLon float64 `json:"startLon"`
	Track    [][]any `json:"track"`
	// TrackWKT is the whole track as a WKT LINESTRING, omitted for tracks
	// too short to form a line.
	TrackWKT string `json:"trackWkt,omitempty"`
}

// exportJSON writes the voyage data to a JSON file, optionally gzipped
func (b *Backend) exportJSON() error {
	export := b.buildExport()

	// Build filename
	voyageName := strings.ReplaceAll(b.voyage.Name, " ", "_")
	voyageName = strings.ReplaceAll(voyageName, ":", "_")
	timestamp := b.voyage.StartTime.Format("20060102_150405")

	var filename string
	if b.cfg.CompressOutput {
		filename = fmt.Sprintf("%s_%s.json.gz", voyageName, timestamp)
	} else {
		filename = fmt.Sprintf("%s_%s.json", voyageName, timestamp)
	}

	outputPath := filepath.Join(b.cfg.OutputDir, filename)

	// Ensure output directory exists
	if err := os.MkdirAll(b.cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	// Write file
	if b.cfg.CompressOutput {
		if err := b.writeGzipJSON(outputPath, export); err != nil {
			return err
		}
	} else {
		if err := b.writeJSON(outputPath, export); err != nil {
			return err
		}
	}

	b.lastExportPath = outputPath
	return nil
}

func (b *Backend) buildExport() VoyageExport {
	export := VoyageExport{
		EngineVersion: b.voyage.EngineVersion,
		VoyageName:    b.voyage.Name,
		Tag:           b.voyage.Tag,
		ChartName:     b.voyage.ChartName,
		TickSeconds:   b.voyage.TickSeconds,
		StartTime:     b.voyage.StartTime.Format("2006-01-02T15:04:05Z07:00"),
		Boats:         make([]BoatJSON, 0, len(b.boats)),
	}

	var maxTick uint64 = 0

	for _, record := range b.boats {
		boat := BoatJSON{
			ID:       record.Boat.ID,
			Name:     record.Boat.Name,
			Class:    record.Boat.Class,
			StartLat: record.Boat.StartLat,
			StartLon: record.Boat.StartLon,
			Track:    make([][]any, 0, len(record.Track)),
		}

		// Track row format:
		// [tick, [lon, lat], heading, speedMps, desiredCourse, distance, sailsDown, movingToSea, stopped]
		for _, tp := range record.Track {
			row := []any{
				tp.Tick,
				[]float64{tp.Position.Lon, tp.Position.Lat},
				tp.Heading,
				tp.SpeedMps,
				tp.DesiredCourse,
				tp.DistanceTravelled,
				boolToInt(tp.SailsDown),
				boolToInt(tp.MovingToSea),
				boolToInt(tp.Stopped),
			}
			boat.Track = append(boat.Track, row)
			if tp.Tick > maxTick {
				maxTick = tp.Tick
			}
		}

		if ls, err := chart.TrackLineString(record.Track); err == nil {
			boat.TrackWKT = ls.AsText()
		}

		export.Boats = append(export.Boats, boat)
	}

	export.EndTick = maxTick
	return export
}

func (b *Backend) writeJSON(path string, data VoyageExport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	return encoder.Encode(data)
}

func (b *Backend) writeGzipJSON(path string, data VoyageExport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	gzWriter := gzip.NewWriter(f)
	defer gzWriter.Close()

	encoder := json.NewEncoder(gzWriter)
	return encoder.Encode(data)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
