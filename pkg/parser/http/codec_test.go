// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package http

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	cerrors "github.com/absmach/cuecast/pkg/errors"
)

func TestParseRequest_SimpleGet(t *testing.T) {
	req, err := ParseRequest([]byte("GET /cues HTTP/1.1\r\nHost: x\r\n\r\n"))
	if err != nil {
		t.Fatalf("ParseRequest() error = %v", err)
	}

	if req.Method != "GET" {
		t.Errorf("Expected method GET, got %s", req.Method)
	}
	if req.Path != "/cues" {
		t.Errorf("Expected path /cues, got %s", req.Path)
	}
	if len(req.Headers) != 1 || req.Headers["host"] != "x" {
		t.Errorf("Expected headers {host: x}, got %v", req.Headers)
	}
	if req.Body != nil {
		t.Errorf("Expected no body, got %q", req.Body)
	}
}

func TestParseRequest_AllMethods(t *testing.T) {
	for _, method := range []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "HEAD"} {
		t.Run(method, func(t *testing.T) {
			req, err := ParseRequest([]byte(method + " / HTTP/1.0\r\n\r\n"))
			if err != nil {
				t.Fatalf("ParseRequest() error = %v", err)
			}
			if req.Method != method {
				t.Errorf("Expected method %s, got %s", method, req.Method)
			}
			if req.Version != "1.0" {
				t.Errorf("Expected version 1.0, got %s", req.Version)
			}
		})
	}
}

func TestParseRequest_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"empty", "", cerrors.ErrMalformedRequest},
		{"garbage", "hello world\r\n\r\n", cerrors.ErrMalformedRequest},
		{"missing version", "GET /cues\r\n\r\n", cerrors.ErrMalformedRequest},
		{"bad version", "GET /cues HTTP/11\r\n\r\n", cerrors.ErrMalformedRequest},
		{"lower-case method", "get /cues HTTP/1.1\r\n\r\n", cerrors.ErrUnsupportedMethod},
		{"patch", "PATCH /cues HTTP/1.1\r\n\r\n", cerrors.ErrUnsupportedMethod},
		{"bare LF", "GET /cues HTTP/1.1\nHost: x\n\n", cerrors.ErrMalformedRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRequest([]byte(tt.input))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestParseRequest_HeaderValueKeepsDelimiter(t *testing.T) {
	req, err := ParseRequest([]byte("GET / HTTP/1.1\r\nX-Note: a: b: c\r\nUser-Agent: Mozilla/5.0\r\n\r\n"))
	if err != nil {
		t.Fatalf("ParseRequest() error = %v", err)
	}

	if got := req.Headers["x-note"]; got != "a: b: c" {
		t.Errorf("Expected 'a: b: c', got %q", got)
	}
	if got := req.Header("USER-AGENT"); got != "Mozilla/5.0" {
		t.Errorf("Expected case-insensitive lookup, got %q", got)
	}
}

func TestParseRequest_SkipsLinesWithoutDelimiter(t *testing.T) {
	req, err := ParseRequest([]byte("GET / HTTP/1.1\r\nbroken\r\nHost: x\r\n\r\n"))
	if err != nil {
		t.Fatalf("ParseRequest() error = %v", err)
	}
	if len(req.Headers) != 1 {
		t.Errorf("Expected 1 header, got %v", req.Headers)
	}
}

func TestParseRequest_BodyRejoinedWithCRLF(t *testing.T) {
	req, err := ParseRequest([]byte("PUT /api/clock HTTP/1.1\r\nContent-Length: 10\r\n\r\nline1\r\nline2"))
	if err != nil {
		t.Fatalf("ParseRequest() error = %v", err)
	}
	if string(req.Body) != "line1\r\nline2" {
		t.Errorf("Expected body with CRLF, got %q", req.Body)
	}
}

func TestParseRequest_NoBlankLine(t *testing.T) {
	req, err := ParseRequest([]byte("GET /cues HTTP/1.1\r\nHost: x"))
	if err != nil {
		t.Fatalf("ParseRequest() error = %v", err)
	}
	if req.Body != nil {
		t.Errorf("Expected no body, got %q", req.Body)
	}
	if req.Headers["host"] != "x" {
		t.Errorf("Expected host header, got %v", req.Headers)
	}
}

func TestRequest_KeepAlive(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{"GET / HTTP/1.1\r\n\r\n", true},
		{"GET / HTTP/1.1\r\nConnection: close\r\n\r\n", false},
		{"GET / HTTP/1.0\r\n\r\n", false},
		{"GET / HTTP/1.0\r\nConnection: Keep-Alive\r\n\r\n", true},
	}

	for _, tt := range tests {
		req, err := ParseRequest([]byte(tt.raw))
		if err != nil {
			t.Fatalf("ParseRequest(%q) error = %v", tt.raw, err)
		}
		if got := req.KeepAlive(); got != tt.want {
			t.Errorf("KeepAlive(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestResponse_Bytes(t *testing.T) {
	resp := NewResponse(StatusOK, []byte("hello")).
		With("Content-Type", "text/plain").
		With("X-Trace", "abc")

	want := "HTTP/1.1 200 OK\r\n" +
		"Content-Length: 5\r\n" +
		"Connection: keep-alive\r\n" +
		"Keep-Alive: timeout=120, max=1000\r\n" +
		"Access-Control-Allow-Origin: *\r\n" +
		"Cache-Control: no-cache, no-store, must-revalidate\r\n" +
		"Pragma: no-cache\r\n" +
		"Expires: 0\r\n" +
		"Content-Type: text/plain\r\n" +
		"X-Trace: abc\r\n" +
		"\r\n" +
		"hello"

	if got := string(resp.Bytes()); got != want {
		t.Errorf("Bytes() mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestResponse_ContentLengthCountsBytes(t *testing.T) {
	resp := NewResponse(StatusOK, []byte("Überblick"))
	if !bytes.Contains(resp.Head(), []byte("Content-Length: 10\r\n")) {
		t.Errorf("Expected byte length in Content-Length, got %q", resp.Head())
	}
}

func TestStatus_Reason(t *testing.T) {
	tests := map[Status]string{
		StatusOK:                  "OK",
		StatusNotFound:            "Not Found",
		StatusMethodNotAllowed:    "Method Not Allowed",
		StatusInternalServerError: "Internal Server Error",
		Status(418):               "Unknown",
	}

	for status, want := range tests {
		if got := status.Reason(); got != want {
			t.Errorf("Status(%d).Reason() = %q, want %q", status, got, want)
		}
	}
}

func TestResponse_RoundTrip(t *testing.T) {
	bodies := [][]byte{
		nil,
		[]byte(`{"error":"No cue stack available"}`),
		[]byte("line1\r\n\r\nline2\r\n"),
		{0x00, 0xff, 0x0d, 0x0a},
	}
	statuses := []Status{StatusOK, StatusNotFound, StatusMethodNotAllowed, StatusInternalServerError}

	for _, status := range statuses {
		for _, body := range bodies {
			resp := NewResponse(status, body).With("X-Extra", "a: b")

			got, err := ParseResponse(resp.Bytes())
			if err != nil {
				t.Fatalf("ParseResponse() error = %v", err)
			}
			if got.Status != status {
				t.Errorf("Expected status %d, got %d", status, got.Status)
			}
			if !bytes.Equal(got.Body, body) {
				t.Errorf("Expected body %q, got %q", body, got.Body)
			}
			if got.Header("x-extra") != "a: b" {
				t.Errorf("Expected caller header to survive, got %q", got.Header("X-Extra"))
			}
		}
	}
}

func TestParseResponse_Malformed(t *testing.T) {
	for _, input := range []string{"", "HTTP/1.1 200 OK\r\n", "SIP/2.0 200 OK\r\n\r\n"} {
		if _, err := ParseResponse([]byte(input)); !errors.Is(err, cerrors.ErrMalformedRequest) {
			t.Errorf("ParseResponse(%q) expected malformed error, got %v", input, err)
		}
	}
}

func TestReadRequest_WithBody(t *testing.T) {
	raw := "PUT /api/clock HTTP/1.1\r\nContent-Length: 11\r\n\r\n{\"a\":\"b\"}\r\nGET /cues HTTP/1.1\r\n\r\n"
	r := bufio.NewReader(strings.NewReader(raw))

	req, err := ReadRequest(r, 0)
	if err != nil {
		t.Fatalf("ReadRequest() error = %v", err)
	}
	if req.Method != "PUT" || string(req.Body) != "{\"a\":\"b\"}\r\n" {
		t.Errorf("Unexpected first request: %s %q", req.Method, req.Body)
	}

	req, err = ReadRequest(r, 0)
	if err != nil {
		t.Fatalf("ReadRequest() second error = %v", err)
	}
	if req.Method != "GET" || req.Path != "/cues" {
		t.Errorf("Unexpected second request: %s %s", req.Method, req.Path)
	}

	if _, err := ReadRequest(r, 0); !errors.Is(err, io.EOF) {
		t.Errorf("Expected io.EOF after last request, got %v", err)
	}
}

func TestReadRequest_Truncated(t *testing.T) {
	tests := map[string]string{
		"head":   "GET /cues HTTP/1.1\r\nHost",
		"body":   "PUT /api/cues HTTP/1.1\r\nContent-Length: 50\r\n\r\nshort",
		"length": "PUT /api/cues HTTP/1.1\r\nContent-Length: -1\r\n\r\n",
	}

	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ReadRequest(bufio.NewReader(strings.NewReader(raw)), 0)
			if !errors.Is(err, cerrors.ErrMalformedRequest) {
				t.Errorf("Expected malformed request error, got %v", err)
			}
		})
	}
}

// endless serves 'A' forever and counts what was read.
type endless struct {
	read int
}

func (e *endless) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 'A'
	}
	e.read += len(p)
	return len(p), nil
}

func TestReadRequest_SizeLimit(t *testing.T) {
	tests := map[string]string{
		"body":        "PUT /api/cues HTTP/1.1\r\nContent-Length: 100\r\n\r\n" + strings.Repeat("x", 100),
		"long header": "GET /cues HTTP/1.1\r\nUser-Agent: " + strings.Repeat("x", 100) + "\r\n\r\n",
		"no newline":  strings.Repeat("A", 100),
	}

	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ReadRequest(bufio.NewReader(strings.NewReader(raw)), 64)
			if !errors.Is(err, cerrors.ErrSizeLimitExceeded) {
				t.Errorf("Expected size limit error, got %v", err)
			}
		})
	}
}

func TestReadRequest_SizeLimitStopsReading(t *testing.T) {
	src := &endless{}
	r := bufio.NewReaderSize(src, 4096)

	_, err := ReadRequest(r, 1024)
	if !errors.Is(err, cerrors.ErrSizeLimitExceeded) {
		t.Fatalf("Expected size limit error, got %v", err)
	}
	if src.read > 4096 {
		t.Errorf("Expected at most one buffer to be read, read %d bytes", src.read)
	}
}
