package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != 8080 {
		t.Errorf("Port = %d, expected 8080", cfg.Port)
	}
	if cfg.DataPack == "" || cfg.ModelPath == "" {
		t.Error("Expected default data pack and model paths")
	}
}

func TestLoadMissingFileIsFine(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("A missing config file should not be an error, got %v", err)
	}
	if cfg.Port != 8080 {
		t.Errorf("Port = %d, expected default", cfg.Port)
	}
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "port: 9000\ndata_pack: /srv/pack.db\ndiet_seed: 7\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != 9000 {
		t.Errorf("Port = %d, expected 9000", cfg.Port)
	}
	if cfg.DataPack != "/srv/pack.db" {
		t.Errorf("DataPack = %q", cfg.DataPack)
	}
	if cfg.DietSeed != 7 {
		t.Errorf("DietSeed = %d, expected 7", cfg.DietSeed)
	}
	if cfg.ModelPath != "data/model.gob" {
		t.Errorf("Unset keys keep defaults, got ModelPath = %q", cfg.ModelPath)
	}
}

func TestLoadBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("port: [not an int\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Expected error for malformed YAML")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("MEDASSIST_PORT", "7070")
	t.Setenv("MEDASSIST_MODEL_PATH", "/models/m.gob")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != 7070 {
		t.Errorf("Port = %d, expected env override 7070", cfg.Port)
	}
	if cfg.ModelPath != "/models/m.gob" {
		t.Errorf("ModelPath = %q, expected env override", cfg.ModelPath)
	}
}
