package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type sample struct {
	Name string `yaml:"name"`
	Port int    `yaml:"port"`
}

func (s *sample) Validate() error {
	if s.Port <= 0 {
		return errors.New("port must be positive")
	}
	return nil
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_ExpandsEnv(t *testing.T) {
	t.Setenv("CONFIG_TEST_NAME", "vault")
	var s sample
	if err := Load(writeFile(t, "name: ${CONFIG_TEST_NAME}\nport: 1\n"), &s); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Name != "vault" {
		t.Errorf("name = %q", s.Name)
	}
}

func TestLoad_UnknownField(t *testing.T) {
	var s sample
	if err := Load(writeFile(t, "nmae: x\nport: 1\n"), &s); err == nil {
		t.Fatal("unknown field should fail")
	}
}

func TestLoad_Validates(t *testing.T) {
	var s sample
	if err := Load(writeFile(t, "name: x\n"), &s); err == nil {
		t.Fatal("validation error expected")
	}
}

func TestLoad_EmptyFileKeepsDefaults(t *testing.T) {
	s := sample{Name: "default", Port: 8080}
	if err := Load(writeFile(t, ""), &s); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Name != "default" || s.Port != 8080 {
		t.Errorf("defaults lost: %+v", s)
	}
}

func TestLoadWithDefaults_Fallback(t *testing.T) {
	fallback := writeFile(t, "name: fallback\nport: 2\n")
	var s sample
	if err := LoadWithDefaults(filepath.Join(t.TempDir(), "missing.yaml"), fallback, &s); err != nil {
		t.Fatalf("LoadWithDefaults: %v", err)
	}
	if s.Name != "fallback" {
		t.Errorf("name = %q", s.Name)
	}
	if err := LoadWithDefaults(filepath.Join(t.TempDir(), "missing.yaml"), "", &s); err == nil {
		t.Error("missing file without fallback should fail")
	}
}
