package config

import (
	"strings"
	"testing"
)

func TestDefaultClasses(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	mogul := cfg.ClassDefaultsFor("Mogul")
	if mogul.Followers != 1000 || mogul.Authority != "E" {
		t.Fatalf("Mogul defaults = %+v", mogul)
	}
	unknown := cfg.ClassDefaultsFor("Janitor")
	if unknown.Followers != 100 || unknown.Authority != "F" {
		t.Fatalf("unknown class defaults = %+v", unknown)
	}
}

func TestFromYAML(t *testing.T) {
	cfg, err := FromYAML([]byte(`
game:
  title: Test Campaign
classes:
  Brawler:
    followers: 50
    authority: F
dms:
  - alice
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Game.Title != "Test Campaign" {
		t.Fatalf("title = %q", cfg.Game.Title)
	}
	brawler := cfg.ClassDefaultsFor("Brawler")
	if brawler.Followers != 50 {
		t.Fatalf("Brawler = %+v", brawler)
	}
	if !cfg.IsDM("alice") || cfg.IsDM("bob") {
		t.Fatalf("dm check failed: %v", cfg.DMs)
	}
}

func TestFromYAMLMissingClassesFallsBack(t *testing.T) {
	cfg, err := FromYAML([]byte("game:\n  title: Minimal\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(cfg.Classes) == 0 {
		t.Fatalf("expected default classes")
	}
}

func TestValidateRejectsBadClass(t *testing.T) {
	_, err := FromYAML([]byte(`
classes:
  Brawler:
    followers: 50
`))
	if err == nil || !strings.Contains(err.Error(), "authority") {
		t.Fatalf("err = %v, want authority complaint", err)
	}
}

func TestValidateRejectsEmptyDM(t *testing.T) {
	_, err := FromYAML([]byte("dms:\n  - \"\"\n"))
	if err == nil {
		t.Fatalf("expected error for empty dm username")
	}
}
