// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"io"
	"os"

	"github.com/absmach/cuecast/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Seed is a YAML run sheet loaded at startup, before the operator's editor
// has pushed anything.
type Seed struct {
	Stacks        []CueStack       `yaml:"stacks"`
	SelectedStack int              `yaml:"selected_stack"`
	ActiveCue     int              `yaml:"active_cue"`
	SelectedCue   int              `yaml:"selected_cue"`
	Highlights    []HighlightColor `yaml:"highlights"`
}

// LoadSeed decodes a seed document. Unknown keys are rejected. An empty
// document yields an empty Seed.
func LoadSeed(r io.Reader) (Seed, error) {
	var seed Seed

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&seed); err != nil && err != io.EOF {
		return Seed{}, errors.Wrap(err, "failed to decode seed")
	}
	return seed, nil
}

// LoadSeedFile reads a seed document from path.
func LoadSeedFile(path string) (Seed, error) {
	f, err := os.Open(path)
	if err != nil {
		return Seed{}, errors.Wrap(err, "failed to open seed")
	}
	defer f.Close()

	return LoadSeed(f)
}

// Apply pushes the seed into the store through the regular write path.
func (s *Store) Apply(seed Seed) {
	s.UpdateCues(seed.Stacks, seed.SelectedStack, seed.ActiveCue, seed.SelectedCue)
	if len(seed.Highlights) > 0 {
		s.UpdateHighlightColors(seed.Highlights)
	}
}
