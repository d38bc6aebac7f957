// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package clients tracks who is watching.
//
// Viewers poll over short-lived keep-alive connections, so a single tablet
// shows up as a stream of connections. Tracker keeps the open connections
// and folds their requests into one ClientSession per session key
// (classify.SessionKey: IP plus user agent).
//
// Handler plugs the Tracker into the server's handler hooks:
//
//   - AuthRequest: per-session rate limit, errors.ErrRateLimited when exceeded
//   - AuthWrite:   credentials checked by a users.Authorizer, errors.ErrUnauthorized otherwise
//   - OnConnect:   register the connection
//   - OnRequest:   record the request against connection and session
//   - OnDisconnect: drop the connection, keep the session
package clients
