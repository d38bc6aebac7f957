// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package classify labels polling clients from what a connection reveals about
// them: the user-agent string, the remote endpoint and the connection state.
//
// Every function is total. Inputs that match nothing map to Unknown (or
// UnknownDevice for DeviceName); there are no error cases.
//
// Classification is table driven. Each table is an ordered list of
// (predicate, label) pairs evaluated against the lower-cased input and the
// first match wins, so precedence is visible in one place:
//
//	Browser:        Edge > Chromium > Brave > Chrome > Firefox > Safari >
//	                Opera > Internet Explorer > Vivaldi > UC Browser > Samsung Browser
//	DeviceType:     iPad > Android Phone > iPhone > Mobile > Tablet >
//	                Windows/Mac/Linux/Unix > TV > Game Console
//	ConnectionType: ready → Active, waiting → Establishing, failed|cancelled → Dead
//
// SessionKey joins IP and user agent; it is how repeated short polling
// connections from one device are recognized as the same viewer.
package classify
