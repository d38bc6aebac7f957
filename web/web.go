// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package web embeds the browser viewer served at "/".
package web

import _ "embed"

// Viewer is the single-page viewer. It polls /cues and renders the run sheet.
//
//go:embed viewer.html
var Viewer []byte
