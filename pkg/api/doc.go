// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package api routes viewer and operator requests.
//
//	GET|HEAD /, /index.html    embedded viewer
//	GET|HEAD /cues             rendered cue document
//	GET|HEAD /clients          open connections and viewer sessions
//	GET|HEAD /health           {"status":"ok"}
//	PUT      /api/cues         {"stacks":[...],"selectedStack":0,"activeCue":0,"selectedCue":0}
//	PUT      /api/highlights   [{"keyword":"LX","color":"#FFCC00"}]
//	PUT      /api/clock        {"currentTime":"2025-10-16T19:30:00Z","countdownTime":300,...}
//
// OPTIONS on any routed path answers 204 with Allow. Unknown paths get 404 and
// a routed path with the wrong method gets 405. Writes answer 204 once queued
// and 400 when the body does not decode. Authorization of writes happens
// before routing, in the connection handler.
package api
