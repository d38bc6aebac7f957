// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"log/slog"
	"time"

	"github.com/bytedance/sonic"
)

// Layouts of the viewer's clock strings. Go layouts are locale-free, so these
// always render English names.
const (
	DateLayout = "Mon Jan 2, 2006"
	TimeLayout = "3:04:05"
	AMPMLayout = "PM"
)

// NoCueStackBody is served when there is nothing selected to show.
const NoCueStackBody = `{"error":"No cue stack available"}`

type columnView struct {
	Name  string  `json:"name"`
	Width float64 `json:"width"`
}

type cueView struct {
	Index           int      `json:"index"`
	Values          []string `json:"values"`
	TimerValue      float64  `json:"timerValue"`
	IsStruckThrough bool     `json:"isStruckThrough"`
	Struck          []bool   `json:"struck"`
}

type highlightView struct {
	Keyword string `json:"keyword"`
	Color   string `json:"color"`
}

type document struct {
	CueStackName     string          `json:"cueStackName"`
	Columns          []columnView    `json:"columns"`
	Cues             []cueView       `json:"cues"`
	ActiveCueIndex   int             `json:"activeCueIndex"`
	SelectedCueIndex int             `json:"selectedCueIndex"`
	LastUpdateTime   float64         `json:"lastUpdateTime"`
	CurrentDate      string          `json:"currentDate"`
	CurrentTime      string          `json:"currentTime"`
	CurrentAMPM      string          `json:"currentAMPM"`
	CountdownTime    float64         `json:"countdownTime"`
	CountUpTime      float64         `json:"countUpTime"`
	CountdownRunning bool            `json:"countdownRunning"`
	CountUpRunning   bool            `json:"countUpRunning"`
	HighlightColors  []highlightView `json:"highlightColors"`
}

// GenerateJSONResponse renders the selected stack and the show clock for
// viewers. It never fails: an unusable selection yields NoCueStackBody and an
// encoding fault yields an empty body.
func (s *Store) GenerateJSONResponse() []byte {
	doc, ok := s.document()
	if !ok {
		return []byte(NoCueStackBody)
	}

	body, err := sonic.Marshal(doc)
	if err != nil {
		s.logger.Error("failed to encode cue stack", slog.String("stack", doc.CueStackName), slog.Any("error", err))
		return []byte{}
	}
	return body
}

// document copies what the viewer needs under the read lock. Installed state
// is replaced, never mutated in place, so value slices may be shared.
func (s *Store) document() (document, bool) {
	now := s.clock.Now()

	s.mu.RLock()
	defer s.mu.RUnlock()

	stack, ok := s.state.Selected()
	if !ok {
		return document{}, false
	}

	doc := document{
		CueStackName:     stack.Name,
		Columns:          make([]columnView, len(stack.Columns)),
		Cues:             make([]cueView, len(stack.Cues)),
		ActiveCueIndex:   s.state.ActiveCueIndex,
		SelectedCueIndex: s.state.SelectedCueIndex,
		LastUpdateTime:   float64(now.Unix()) + float64(now.Nanosecond())/float64(time.Second),
		CountdownTime:    s.state.Clock.CountdownTime,
		CountUpTime:      s.state.Clock.CountUpTime,
		CountdownRunning: s.state.Clock.CountdownRunning,
		CountUpRunning:   s.state.Clock.CountUpRunning,
		HighlightColors:  make([]highlightView, len(s.state.HighlightColors)),
	}

	for i, c := range stack.Columns {
		doc.Columns[i] = columnView{Name: c.Name, Width: c.Width}
	}
	for i, c := range stack.Cues {
		struck := make([]bool, len(stack.Columns))
		for j := range struck {
			struck[j] = c.IsStruckThrough
		}
		doc.Cues[i] = cueView{
			Index:           i,
			Values:          c.Values,
			TimerValue:      c.TimerValue,
			IsStruckThrough: c.IsStruckThrough,
			Struck:          struck,
		}
	}
	for i, h := range s.state.HighlightColors {
		doc.HighlightColors[i] = highlightView{Keyword: h.Keyword, Color: h.Color}
	}

	clock := s.state.Clock.CurrentTime
	if clock.IsZero() {
		clock = now
	}
	clock = clock.In(s.loc)
	doc.CurrentDate = clock.Format(DateLayout)
	doc.CurrentTime = clock.Format(TimeLayout)
	doc.CurrentAMPM = clock.Format(AMPMLayout)

	return doc, true
}
