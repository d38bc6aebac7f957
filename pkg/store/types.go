// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// MinColumnWidth is the narrowest a column may be resized to.
const MinColumnWidth = 50.0

// Column is one field of a cue stack's schema.
type Column struct {
	ID    string  `json:"id" yaml:"id"`
	Name  string  `json:"name" yaml:"name"`
	Width float64 `json:"width" yaml:"width"`
}

// Cue is one row of a run sheet. Values are aligned to the stack's columns.
// Strike-through applies to the whole row.
type Cue struct {
	ID              string   `json:"id" yaml:"id"`
	Values          []string `json:"values" yaml:"values"`
	TimerValue      float64  `json:"timerValue" yaml:"timer"`
	IsStruckThrough bool     `json:"isStruckThrough" yaml:"struck"`
}

// CueStack is an ordered collection of cues sharing one column schema.
//
// Every cue holds exactly len(Columns) values. The editing helpers keep that
// true; stacks built by hand are normalized when pushed into a Store.
type CueStack struct {
	ID      string   `json:"id" yaml:"id"`
	Name    string   `json:"name" yaml:"name"`
	Columns []Column `json:"columns" yaml:"columns"`
	Cues    []Cue    `json:"cues" yaml:"cues"`
}

// AddColumn appends a column and gives every cue an empty value for it.
func (s *CueStack) AddColumn(name string, width float64) Column {
	col := Column{ID: uuid.NewString(), Name: name, Width: clampWidth(width)}
	s.Columns = append(s.Columns, col)
	for i := range s.Cues {
		s.Cues[i].Values = append(s.Cues[i].Values, "")
	}
	return col
}

// RemoveColumn drops the column with the given ID together with the matching
// value of every cue. It reports whether the column existed.
func (s *CueStack) RemoveColumn(id string) bool {
	idx := s.columnIndex(id)
	if idx < 0 {
		return false
	}
	s.Columns = append(s.Columns[:idx], s.Columns[idx+1:]...)
	for i := range s.Cues {
		if idx < len(s.Cues[i].Values) {
			vals := s.Cues[i].Values
			s.Cues[i].Values = append(vals[:idx], vals[idx+1:]...)
		}
	}
	s.normalize()
	return true
}

// ResizeColumn sets a column width, clamped to MinColumnWidth.
func (s *CueStack) ResizeColumn(id string, width float64) bool {
	idx := s.columnIndex(id)
	if idx < 0 {
		return false
	}
	s.Columns[idx].Width = clampWidth(width)
	return true
}

// AddCue appends a cue. Missing values are filled with "" and extra values
// are dropped.
func (s *CueStack) AddCue(values ...string) Cue {
	cue := Cue{ID: uuid.NewString(), Values: fit(values, len(s.Columns))}
	s.Cues = append(s.Cues, cue)
	return cue
}

func (s *CueStack) columnIndex(id string) int {
	for i, c := range s.Columns {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// normalize restores the value-alignment invariant, clamps widths and
// assigns IDs to entries that were pushed without one.
func (s *CueStack) normalize() {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	for i := range s.Columns {
		if s.Columns[i].ID == "" {
			s.Columns[i].ID = uuid.NewString()
		}
		s.Columns[i].Width = clampWidth(s.Columns[i].Width)
	}
	for i := range s.Cues {
		if s.Cues[i].ID == "" {
			s.Cues[i].ID = uuid.NewString()
		}
		s.Cues[i].Values = fit(s.Cues[i].Values, len(s.Columns))
	}
}

func (s CueStack) clone() CueStack {
	out := CueStack{
		ID:      s.ID,
		Name:    s.Name,
		Columns: append([]Column(nil), s.Columns...),
		Cues:    make([]Cue, len(s.Cues)),
	}
	for i, c := range s.Cues {
		c.Values = append([]string(nil), c.Values...)
		out.Cues[i] = c
	}
	return out
}

func cloneStacks(stacks []CueStack) []CueStack {
	out := make([]CueStack, len(stacks))
	for i, s := range stacks {
		out[i] = s.clone()
	}
	return out
}

// fit returns a copy of values with exactly n entries.
func fit(values []string, n int) []string {
	out := make([]string, n)
	copy(out, values)
	return out
}

func clampWidth(w float64) float64 {
	if w < MinColumnWidth {
		return MinColumnWidth
	}
	return w
}

// HighlightColor colors cues containing Keyword on the viewer.
type HighlightColor struct {
	Keyword string `json:"keyword" yaml:"keyword"`
	Color   string `json:"color" yaml:"color"`
}

// normalizeColor renders colors as "#RRGGBB".
func normalizeColor(c string) string {
	c = strings.ToUpper(strings.TrimSpace(c))
	if c == "" {
		return c
	}
	if !strings.HasPrefix(c, "#") {
		c = "#" + c
	}
	return c
}

// ClockState is the show clock. It is always written and read as a unit.
type ClockState struct {
	CurrentTime      time.Time
	CountdownTime    float64
	CountUpTime      float64
	CountdownRunning bool
	CountUpRunning   bool
}

// State is a point-in-time copy of everything the store holds.
type State struct {
	CueStacks             []CueStack
	SelectedCueStackIndex int
	ActiveCueIndex        int
	SelectedCueIndex      int
	HighlightColors       []HighlightColor
	Clock                 ClockState
}

func (s State) clone() State {
	s.CueStacks = cloneStacks(s.CueStacks)
	s.HighlightColors = append([]HighlightColor(nil), s.HighlightColors...)
	return s
}

// Selected returns the selected stack, if the selection is valid.
func (s State) Selected() (CueStack, bool) {
	if s.SelectedCueStackIndex < 0 || s.SelectedCueStackIndex >= len(s.CueStacks) {
		return CueStack{}, false
	}
	return s.CueStacks[s.SelectedCueStackIndex], true
}
