package catalog

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingTablesAreEmpty(t *testing.T) {
	dir := t.TempDir()
	c, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(c.Archetypes) != 0 || len(c.Disciplines) != 0 {
		t.Fatalf("expected empty catalog, got %+v", c)
	}
}

func TestLoadArchetypesAndTonePacks(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "archetypes.toml", `
[[items]]
name = "Iconoclast"
disciplines = ["astronomy"]
methods = ["field_survey"]
`)
	writeFile(t, dir, "tone_packs.toml", `
[[items]]
name = "gaslamp"
[items.seeds]
academic_bulletin = "By gaslight and ink,"
`)
	c, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(c.Archetypes) != 1 || c.Archetypes[0].Name != "Iconoclast" {
		t.Fatalf("unexpected archetypes: %+v", c.Archetypes)
	}
	pack, ok := c.TonePacks["gaslamp"]
	if !ok || pack.Seeds["academic_bulletin"] == "" {
		t.Fatalf("expected gaslamp tone pack with academic_bulletin seed, got %+v", pack)
	}
}

func TestVignetteByTag(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "vignettes.toml", `
[[items]]
tag = "storm"
body = "A storm broke over the archive."
`)
	c, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	v, ok := c.VignetteByTag("storm")
	if !ok || v.Body == "" {
		t.Fatalf("expected storm vignette, got %+v ok=%v", v, ok)
	}
	if _, ok := c.VignetteByTag("missing"); ok {
		t.Fatal("expected missing tag to be absent")
	}
}

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}
