package scene

import (
	"fmt"
	"image/color"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// RGB is a roster color in the encoder's channel order.
type RGB struct {
	R uint8 `yaml:"r"`
	G uint8 `yaml:"g"`
	B uint8 `yaml:"b"`
}

func (c RGB) color() color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 255}
}

// Character is one fixed roster entry: a drawable identity with a
// horizontal anchor and a body color.
type Character struct {
	Name  string `yaml:"name"`
	X     int    `yaml:"x"`
	Color RGB    `yaml:"color"`
}

// Roster is the static cast of drawable characters. Identity lookups
// are canonicalized to lowercase once here, so downstream comparisons
// work on canonical ids and never on raw script strings.
type Roster struct {
	chars []Character
	byID  map[string]int
}

// RosterFile is the on-disk YAML shape for a custom cast.
type RosterFile struct {
	Version    string      `yaml:"version"`
	Characters []Character `yaml:"characters"`
}

// NewRoster builds a roster from an ordered character list.
func NewRoster(chars []Character) *Roster {
	r := &Roster{
		chars: make([]Character, len(chars)),
		byID:  make(map[string]int, len(chars)),
	}
	copy(r.chars, chars)
	for i, c := range r.chars {
		r.byID[strings.ToLower(c.Name)] = i
	}
	return r
}

// DefaultRoster is the built-in two-character cast.
func DefaultRoster() *Roster {
	return NewRoster([]Character{
		{Name: "Steve", X: 400, Color: RGB{R: 0, G: 0, B: 255}},
		{Name: "Bob", X: 880, Color: RGB{R: 0, G: 255, B: 0}},
	})
}

// Canonical maps an arbitrarily cased name to its canonical id.
// The boolean reports whether the name belongs to the roster.
func (r *Roster) Canonical(name string) (string, bool) {
	id := strings.ToLower(strings.TrimSpace(name))
	_, ok := r.byID[id]
	return id, ok
}

// Characters returns the cast in drawing order.
func (r *Roster) Characters() []Character {
	return r.chars
}

// ReadRoster loads a cast definition from a YAML file.
func ReadRoster(path string) (*Roster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var rf RosterFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, err
	}
	if len(rf.Characters) == 0 {
		return nil, fmt.Errorf("в файле %s нет персонажей", path)
	}

	return NewRoster(rf.Characters), nil
}

// WriteRoster saves a cast definition to a YAML file.
func WriteRoster(r *Roster, path string) error {
	rf := RosterFile{Version: "1.0", Characters: r.chars}
	data, err := yaml.Marshal(&rf)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
