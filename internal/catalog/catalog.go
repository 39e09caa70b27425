// Package catalog loads the immutable data tables read once at startup:
// archetypes, disciplines, methods, virtues, vices, drives, namebanks,
// taboos, tone packs, sidecast arcs, vignettes, and recruitment
// templates. Each table lives in its own TOML file under the
// configured data directory, read once at startup into plain slices.
package catalog

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Archetype describes a scholar template.
type Archetype struct {
	Name        string         `toml:"name"`
	Disciplines []string       `toml:"disciplines"`
	Methods     []string       `toml:"methods"`
	Drives      []string       `toml:"drives"`
	Virtues     []string       `toml:"virtues"`
	Vices       []string       `toml:"vices"`
	StatBias    map[string]int `toml:"stat_bias"`
	Catchphrase string         `toml:"catchphrase"`
}

// TonePack is a named bundle of narrative seed phrases.
type TonePack struct {
	Name  string            `toml:"name"`
	Seeds map[string]string `toml:"seeds"` // press type -> seed phrase
}

// SidecastArc names the ordered phases of a sidecast scholar's narrative.
type SidecastArc struct {
	Name   string   `toml:"name"`
	Phases []string `toml:"phases"`
}

// Vignette is a stored flavor text keyed by tag, used by the
// sideways_vignette follow-up.
type Vignette struct {
	Tag  string `toml:"tag"`
	Body string `toml:"body"`
}

// RecruitmentTemplate is a flavor template for recruitment press bodies.
type RecruitmentTemplate struct {
	Tag  string `toml:"tag"`
	Body string `toml:"body"`
}

// Catalog is the full set of read-once data tables.
type Catalog struct {
	Archetypes   []Archetype
	Disciplines  []string
	Methods      []string
	Virtues      []string
	Vices        []string
	Drives       []string
	Taboos       []string
	Namebank     []string
	TonePacks    map[string]TonePack
	SidecastArcs []SidecastArc
	Vignettes    []Vignette
	Recruitment  []RecruitmentTemplate
}

type tableFile[T any] struct {
	Items []T `toml:"items"`
}

func loadTable[T any](dir, name string) ([]T, error) {
	path := filepath.Join(dir, name+".toml")
	if _, err := os.Stat(path); err != nil {
		return nil, nil
	}
	var tf tableFile[T]
	if _, err := toml.DecodeFile(path, &tf); err != nil {
		return nil, fmt.Errorf("loading catalog table %s: %w", name, err)
	}
	return tf.Items, nil
}

// Load reads every catalog table from dir. Each table is optional; a
// missing file yields an empty table rather than an error, so a minimal
// data directory (or test fixture) can populate only what it needs.
func Load(dir string) (*Catalog, error) {
	c := &Catalog{TonePacks: map[string]TonePack{}}

	archetypes, err := loadTable[Archetype](dir, "archetypes")
	if err != nil {
		return nil, err
	}
	c.Archetypes = archetypes

	stringTables := map[string]*[]string{
		"disciplines": &c.Disciplines,
		"methods":     &c.Methods,
		"virtues":     &c.Virtues,
		"vices":       &c.Vices,
		"drives":      &c.Drives,
		"taboos":      &c.Taboos,
		"namebank":    &c.Namebank,
	}
	for name, dest := range stringTables {
		type row struct {
			Value string `toml:"value"`
		}
		rows, err := loadTable[row](dir, name)
		if err != nil {
			return nil, err
		}
		for _, r := range rows {
			*dest = append(*dest, r.Value)
		}
	}

	tonePacks, err := loadTable[TonePack](dir, "tone_packs")
	if err != nil {
		return nil, err
	}
	for _, tp := range tonePacks {
		c.TonePacks[tp.Name] = tp
	}

	arcs, err := loadTable[SidecastArc](dir, "sidecast_arcs")
	if err != nil {
		return nil, err
	}
	c.SidecastArcs = arcs

	vignettes, err := loadTable[Vignette](dir, "vignettes")
	if err != nil {
		return nil, err
	}
	c.Vignettes = vignettes

	recruitment, err := loadTable[RecruitmentTemplate](dir, "recruitment_templates")
	if err != nil {
		return nil, err
	}
	c.Recruitment = recruitment

	return c, nil
}

// VignetteByTag returns the vignette with the given tag, if present.
func (c *Catalog) VignetteByTag(tag string) (Vignette, bool) {
	for _, v := range c.Vignettes {
		if v.Tag == tag {
			return v, true
		}
	}
	return Vignette{}, false
}

// ArcPhase returns the phase name at index i for the named sidecast arc,
// or "" if the arc or index does not exist.
func (c *Catalog) ArcPhase(arcName string, i int) string {
	for _, arc := range c.SidecastArcs {
		if arc.Name == arcName {
			if i >= 0 && i < len(arc.Phases) {
				return arc.Phases[i]
			}
			return ""
		}
	}
	return ""
}
