package batch

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Manifest describes one turntable run.
type Manifest struct {
	Model    string          `json:"model"`
	Bones    int             `json:"bones"`
	Selected int             `json:"selected,omitempty"`
	Size     int             `json:"size"`
	Frames   []ManifestEntry `json:"frames"`
}

// ManifestEntry represents one rendered frame.
type ManifestEntry struct {
	Frame int     `json:"frame"`
	Yaw   float64 `json:"yaw"`
	Pitch float64 `json:"pitch"`
	Image string  `json:"image"`
}

// WriteManifest writes the successful frames of results to path.
func WriteManifest(path string, m Manifest, results []Result) error {
	m.Frames = make([]ManifestEntry, 0, len(results))
	for _, r := range results {
		if !r.Success {
			continue
		}
		m.Frames = append(m.Frames, ManifestEntry{
			Frame: r.Frame,
			Yaw:   r.Yaw,
			Pitch: r.Pitch,
			Image: filepath.Base(r.Path),
		})
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("batch: encode manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("batch: write %s: %w", path, err)
	}
	return nil
}
