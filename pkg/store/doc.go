// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package store holds the cue stack state that remote viewers poll.
//
// # Overview
//
// The operator's editor owns the master run sheet and pushes copies of it
// into a Store. Viewers never write; they read the rendered JSON document.
//
//	┌────────┐  UpdateCues        ┌───────┐  GenerateJSONResponse  ┌────────┐
//	│ Editor │ ─────────────────→ │ Store │ ─────────────────────→ │ Viewer │
//	└────────┘  UpdateClockState  └───────┘                        └────────┘
//
// # Writes
//
// Every Update method copies its arguments and hands a closure to the writer
// goroutine, then returns. The writer applies closures one at a time under the
// write lock:
//
//   - UpdateCues sets stacks, selected stack, active cue and selected cue together.
//   - UpdateClockState sets the five clock fields together.
//   - UpdateHighlightColors replaces the highlight list.
//
// Readers see either all of a grouped write or none of it. There are no
// single-field setters, so related fields can only change together.
//
// Flush enqueues a barrier and waits for it, which is how tests and the seed
// loader observe their own writes.
//
// # Events
//
// Subscribers receive an event after each applied write. Applying UpdateCues
// also emits EventOfflineReady at most once per OfflineReadyInterval and
// EventClientsNotified at most once per ClientsNotifyInterval. The debounce
// timestamps belong to the writer goroutine.
//
// # Rendering
//
// GenerateJSONResponse copies what it needs under the read lock and encodes
// after releasing it:
//
//	{
//	  "cueStackName": "Act 1",
//	  "columns": [{"name": "Cue", "width": 80}],
//	  "cues": [{"index": 0, "values": ["House to half"], "timerValue": 0,
//	            "isStruckThrough": false, "struck": [false]}],
//	  "activeCueIndex": 0,
//	  "selectedCueIndex": 0,
//	  "lastUpdateTime": 1760000000.5,
//	  "currentDate": "Thu Oct 16, 2025",
//	  "currentTime": "7:30:00",
//	  "currentAMPM": "PM",
//	  "countdownTime": 300,
//	  "countUpTime": 0,
//	  "countdownRunning": true,
//	  "countUpRunning": false,
//	  "highlightColors": [{"keyword": "LX", "color": "#FFCC00"}]
//	}
//
// Without a valid selection the body is NoCueStackBody. If encoding fails the
// body is empty and the failure is logged.
package store
