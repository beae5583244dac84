package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SeedSpace: одно пространство из файла начального наполнения каталога.
type SeedSpace struct {
	Name       string `yaml:"name"`
	Location   string `yaml:"location"`
	UsageNotes string `yaml:"usage_notes"`
	ImageURL   string `yaml:"image_url"`
}

type seedFile struct {
	Spaces []SeedSpace `yaml:"spaces"`
}

// LoadSeed читает YAML вида:
//
//	spaces:
//	  - name: Room 101
//	    location: Main building
func LoadSeed(path string) ([]SeedSpace, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}

	var f seedFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}

	for i, s := range f.Spaces {
		if s.Name == "" {
			return nil, fmt.Errorf("seed file %s: space #%d has no name", path, i+1)
		}
	}
	return f.Spaces, nil
}
