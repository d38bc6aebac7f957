// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package http implements the HTTP/1.x codec used by the cuecast server.
//
// # Overview
//
// The codec is deliberately small: viewers only ever poll a handful of
// endpoints, so the server decodes requests and encodes responses itself on
// top of a raw TCP connection instead of going through net/http.
//
// # Request Decoding
//
// ParseRequest splits the request text on CRLF:
//
//	GET /cues HTTP/1.1\r\n        request line, method in GET POST PUT DELETE OPTIONS HEAD
//	Host: booth-1\r\n             headers, key lower-cased, value may contain ": "
//	\r\n                          blank separator
//	...                           body, rejoined with CRLF
//
// ReadRequest frames one request off a buffered connection using the blank
// line and Content-Length, then hands the bytes to ParseRequest.
//
// # Response Encoding
//
// Every response carries the same fixed header block:
//
//	HTTP/1.1 200 OK
//	Content-Length: <body bytes>
//	Connection: keep-alive
//	Keep-Alive: timeout=120, max=1000
//	Access-Control-Allow-Origin: *
//	Cache-Control: no-cache, no-store, must-revalidate
//	Pragma: no-cache
//	Expires: 0
//
// followed by caller headers in insertion order, a blank line and the body
// bytes unmodified.
//
// # Request Flow
//
//	1. Parser reads and decodes one request
//	2. Parser calls handler.AuthRequest()
//	3. For POST/PUT/DELETE, parser calls handler.AuthWrite()
//	4. Router builds the response (a panic becomes an empty 500)
//	5. Parser writes the response (headers only for HEAD)
//	6. Parser calls handler.OnRequest()
//
// Undecodable requests are answered with 400, 405 or 413 and the connection
// is closed.
package http
