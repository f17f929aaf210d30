package target

import (
	"fmt"
	"image/color"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// fileTarget is one entry of a targets file.
//
//   - name: orange
//     prompt: [0, 115, 255]   # B, G, R
//     low: [8, 80, 80]        # optional, H, S, V
//     high: [20, 255, 255]
type fileTarget struct {
	Name   string    `yaml:"name"`
	Prompt []int     `yaml:"prompt"`
	Low    []float64 `yaml:"low"`
	High   []float64 `yaml:"high"`
}

// LoadFile reads a targets list from a YAML file.
func LoadFile(path string) ([]*Target, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open targets: %w", err)
	}
	defer f.Close()

	return Load(f)
}

// Load decodes a YAML targets list. Entries without low/high are left
// unbound so they can be calibrated interactively.
func Load(r io.Reader) ([]*Target, error) {
	var entries []fileTarget
	if err := yaml.NewDecoder(r).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode targets: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("targets file lists no targets")
	}

	seen := make(map[string]bool, len(entries))
	targets := make([]*Target, 0, len(entries))
	for i, e := range entries {
		if e.Name == "" {
			return nil, fmt.Errorf("target %d: missing name", i)
		}
		if seen[e.Name] {
			return nil, fmt.Errorf("target %q: duplicate name", e.Name)
		}
		seen[e.Name] = true

		t := &Target{Name: e.Name, Prompt: color.RGBA{R: 255, G: 255, B: 255}}
		if len(e.Prompt) != 0 {
			if len(e.Prompt) != 3 {
				return nil, fmt.Errorf("target %q: prompt needs 3 components, got %d", e.Name, len(e.Prompt))
			}
			for _, c := range e.Prompt {
				if c < 0 || c > 255 {
					return nil, fmt.Errorf("target %q: prompt component %d out of range", e.Name, c)
				}
			}
			t.Prompt = color.RGBA{B: uint8(e.Prompt[0]), G: uint8(e.Prompt[1]), R: uint8(e.Prompt[2])}
		}

		switch {
		case len(e.Low) == 0 && len(e.High) == 0:
		case len(e.Low) == 3 && len(e.High) == 3:
			t.Bind(Interval{
				Low:  HSV{H: e.Low[0], S: e.Low[1], V: e.Low[2]},
				High: HSV{H: e.High[0], S: e.High[1], V: e.High[2]},
			})
		default:
			return nil, fmt.Errorf("target %q: low and high need 3 components each", e.Name)
		}

		targets = append(targets, t)
	}

	return targets, nil
}
