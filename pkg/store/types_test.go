// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertAligned(t *testing.T, s CueStack) {
	t.Helper()
	for i, c := range s.Cues {
		assert.Len(t, c.Values, len(s.Columns), "cue %d of %q", i, s.Name)
	}
}

func TestCueStack_Editing(t *testing.T) {
	var s CueStack
	s.Name = "Act 1"

	cue := s.AddCue("ignored")
	assert.Empty(t, cue.Values)
	assertAligned(t, s)

	num := s.AddColumn("Cue", 80)
	desc := s.AddColumn("Description", 10)
	assert.Equal(t, MinColumnWidth, desc.Width)
	assertAligned(t, s)

	s.AddCue("1", "House to half", "extra")
	s.AddCue("2")
	assertAligned(t, s)
	assert.Equal(t, []string{"1", "House to half"}, s.Cues[1].Values)
	assert.Equal(t, []string{"2", ""}, s.Cues[2].Values)

	require.True(t, s.ResizeColumn(num.ID, 20))
	assert.Equal(t, MinColumnWidth, s.Columns[0].Width)
	require.True(t, s.ResizeColumn(num.ID, 120))
	assert.Equal(t, 120.0, s.Columns[0].Width)
	assert.False(t, s.ResizeColumn("missing", 100))

	require.True(t, s.RemoveColumn(num.ID))
	assertAligned(t, s)
	assert.Equal(t, []string{"House to half"}, s.Cues[1].Values)
	assert.False(t, s.RemoveColumn(num.ID))

	require.True(t, s.RemoveColumn(desc.ID))
	assert.Empty(t, s.Columns)
	assertAligned(t, s)
}

func TestCueStack_Normalize(t *testing.T) {
	s := CueStack{
		Columns: []Column{{Name: "Cue", Width: 0}, {Name: "Notes", Width: 200}},
		Cues: []Cue{
			{Values: []string{"1"}},
			{Values: []string{"2", "Go", "too many"}},
			{},
		},
	}

	s.normalize()

	assert.NotEmpty(t, s.ID)
	assert.Equal(t, MinColumnWidth, s.Columns[0].Width)
	assert.Equal(t, 200.0, s.Columns[1].Width)
	for _, c := range s.Columns {
		assert.NotEmpty(t, c.ID)
	}
	for _, c := range s.Cues {
		assert.NotEmpty(t, c.ID)
	}
	assertAligned(t, s)
	assert.Equal(t, []string{"2", "Go"}, s.Cues[1].Values)
}

func TestCueStack_Clone(t *testing.T) {
	s := CueStack{
		Name:    "Act 1",
		Columns: []Column{{ID: "c1", Name: "Cue", Width: 80}},
		Cues:    []Cue{{ID: "q1", Values: []string{"1"}}},
	}

	c := s.clone()
	c.Columns[0].Name = "changed"
	c.Cues[0].Values[0] = "changed"

	assert.Equal(t, "Cue", s.Columns[0].Name)
	assert.Equal(t, "1", s.Cues[0].Values[0])
}

func TestNormalizeColor(t *testing.T) {
	tests := map[string]string{
		"#ffcc00":   "#FFCC00",
		"ffcc00":    "#FFCC00",
		" #Ab12Cd ": "#AB12CD",
		"":          "",
	}

	for in, want := range tests {
		assert.Equal(t, want, normalizeColor(in), "color %q", in)
	}
}

func TestState_Selected(t *testing.T) {
	st := State{CueStacks: []CueStack{{Name: "A"}, {Name: "B"}}}

	for _, idx := range []int{-1, 2} {
		st.SelectedCueStackIndex = idx
		_, ok := st.Selected()
		assert.False(t, ok, "index %d", idx)
	}

	st.SelectedCueStackIndex = 1
	s, ok := st.Selected()
	require.True(t, ok)
	assert.Equal(t, "B", s.Name)
}
