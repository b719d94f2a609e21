package broadcast

import (
	"fmt"
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

// Default on-air identity stings, synthesized once and cached.
const (
	DefaultJingleIntro = "This is Nigeria Diaspora Radio. The voice of Nigeria abroad."
	DefaultJingleOutro = "You're listening to NDR. Stay tuned for more."
)

// Grid is the hourly broadcast clock: which minute carries the full
// bulletin, which carries the headline update, and how many stories
// each format reads.
type Grid struct {
	JingleIntro      string `yaml:"jingle_intro"`
	JingleOutro      string `yaml:"jingle_outro"`
	FullMinute       int    `yaml:"full_minute"`
	HeadlineMinute   int    `yaml:"headline_minute"`
	MaxFullItems     int    `yaml:"max_full_items"`
	MaxHeadlineItems int    `yaml:"max_headline_items"`
}

// DefaultGrid mirrors the traditional radio clock: detailed news at the
// top of the hour, headlines at the bottom.
func DefaultGrid() Grid {
	return Grid{
		JingleIntro:      DefaultJingleIntro,
		JingleOutro:      DefaultJingleOutro,
		FullMinute:       0,
		HeadlineMinute:   30,
		MaxFullItems:     7,
		MaxHeadlineItems: 5,
	}
}

// LoadGrid reads a YAML grid file, falling back to the defaults for
// any field the file omits. An empty path returns the defaults.
func LoadGrid(path string) (Grid, error) {
	grid := DefaultGrid()
	if path == "" {
		return grid, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("⚠️ No grid file at %s, using the default clock", path)
			return grid, nil
		}
		return grid, fmt.Errorf("failed to read grid file: %w", err)
	}

	if err := yaml.Unmarshal(data, &grid); err != nil {
		return grid, fmt.Errorf("failed to parse grid file: %w", err)
	}

	if grid.FullMinute < 0 || grid.FullMinute > 59 || grid.HeadlineMinute < 0 || grid.HeadlineMinute > 59 {
		return grid, fmt.Errorf("grid minutes must be within 0-59")
	}
	if grid.MaxFullItems <= 0 {
		grid.MaxFullItems = 7
	}
	if grid.MaxHeadlineItems <= 0 {
		grid.MaxHeadlineItems = 5
	}
	log.Printf("✅ Loaded broadcast grid from %s", path)
	return grid, nil
}
