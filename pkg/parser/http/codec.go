// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package http

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	cerrors "github.com/absmach/cuecast/pkg/errors"
)

const crlf = "\r\n"

// Keep-Alive contract advertised on every response. The TCP server enforces it.
const (
	KeepAliveTimeoutSeconds = 120
	KeepAliveMax            = 1000
)

var (
	requestLine  = regexp.MustCompile(`^(GET|POST|PUT|DELETE|OPTIONS|HEAD) (\S+) HTTP/(\d\.\d)$`)
	anyMethod    = regexp.MustCompile(`^(\S+) (\S+) HTTP/(\d\.\d)$`)
	responseLine = regexp.MustCompile(`^HTTP/(\d\.\d) (\d{3}) ?(.*)$`)
)

// Request is a decoded HTTP request.
type Request struct {
	Method  string
	Path    string
	Version string

	// Headers maps lower-cased header names to values. A repeated header keeps its last value.
	Headers map[string]string

	// Body is nil when the request carried no body.
	Body []byte
}

// Header returns the value of the named header, case-insensitively.
func (r *Request) Header(key string) string {
	return r.Headers[strings.ToLower(key)]
}

// KeepAlive reports whether the client allows the connection to be reused.
func (r *Request) KeepAlive() bool {
	conn := strings.ToLower(r.Header("connection"))
	if r.Version == "1.0" {
		return strings.Contains(conn, "keep-alive")
	}
	return !strings.Contains(conn, "close")
}

// IsWrite reports whether the method changes server state.
func (r *Request) IsWrite() bool {
	switch r.Method {
	case MethodPost, MethodPut, MethodDelete:
		return true
	default:
		return false
	}
}

// Supported request methods.
const (
	MethodGet     = "GET"
	MethodPost    = "POST"
	MethodPut     = "PUT"
	MethodDelete  = "DELETE"
	MethodOptions = "OPTIONS"
	MethodHead    = "HEAD"
)

// ParseRequest decodes raw request bytes.
//
// The text is split on CRLF. The first line must be "<METHOD> <PATH> HTTP/x.x".
// Lines up to the first blank line are "key: value" headers; everything after
// the blank line, rejoined with CRLF, is the body.
func ParseRequest(data []byte) (*Request, error) {
	lines := strings.Split(string(data), crlf)

	m := requestLine.FindStringSubmatch(lines[0])
	if m == nil {
		if anyMethod.MatchString(lines[0]) {
			return nil, fmt.Errorf("%w: %q", cerrors.ErrUnsupportedMethod, strings.SplitN(lines[0], " ", 2)[0])
		}
		return nil, fmt.Errorf("%w: bad request line %q", cerrors.ErrMalformedRequest, lines[0])
	}

	req := &Request{
		Method:  m[1],
		Path:    m[2],
		Version: m[3],
		Headers: make(map[string]string),
	}

	i := 1
	for ; i < len(lines) && lines[i] != ""; i++ {
		parts := strings.Split(lines[i], ": ")
		if len(parts) < 2 {
			continue
		}
		req.Headers[strings.ToLower(parts[0])] = strings.Join(parts[1:], ": ")
	}

	if i+1 < len(lines) {
		if body := strings.Join(lines[i+1:], crlf); body != "" {
			req.Body = []byte(body)
		}
	}

	return req, nil
}

// Header is a single response header.
type Header struct {
	Key   string
	Value string
}

// Response is an HTTP response ready to be serialized.
type Response struct {
	Status  Status
	Headers []Header
	Body    []byte
}

// NewResponse creates a response with the given status and body.
func NewResponse(status Status, body []byte) *Response {
	return &Response{Status: status, Body: body}
}

// JSON creates a 200 response carrying a JSON body.
func JSON(body []byte) *Response {
	return NewResponse(StatusOK, body).With("Content-Type", "application/json; charset=utf-8")
}

// With appends a caller header and returns the response.
func (r *Response) With(key, value string) *Response {
	r.Headers = append(r.Headers, Header{Key: key, Value: value})
	return r
}

// Head serializes the status line and headers, including the terminating blank line.
func (r *Response) Head() []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "HTTP/1.1 %d %s\r\n", int(r.Status), r.Status.Reason())
	fmt.Fprintf(&b, "Content-Length: %d\r\n", len(r.Body))
	b.WriteString("Connection: keep-alive\r\n")
	fmt.Fprintf(&b, "Keep-Alive: timeout=%d, max=%d\r\n", KeepAliveTimeoutSeconds, KeepAliveMax)
	b.WriteString("Access-Control-Allow-Origin: *\r\n")
	b.WriteString("Cache-Control: no-cache, no-store, must-revalidate\r\n")
	b.WriteString("Pragma: no-cache\r\n")
	b.WriteString("Expires: 0\r\n")
	for _, h := range r.Headers {
		b.WriteString(h.Key)
		b.WriteString(": ")
		b.WriteString(h.Value)
		b.WriteString(crlf)
	}
	b.WriteString(crlf)
	return b.Bytes()
}

// Bytes serializes the full response. The body is appended unmodified.
func (r *Response) Bytes() []byte {
	head := r.Head()
	out := make([]byte, 0, len(head)+len(r.Body))
	out = append(out, head...)
	return append(out, r.Body...)
}

// WriteTo writes the serialized response to w.
func (r *Response) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(r.Bytes())
	return int64(n), err
}

// Header returns the first value of the named response header, case-insensitively.
func (r *Response) Header(key string) string {
	for _, h := range r.Headers {
		if strings.EqualFold(h.Key, key) {
			return h.Value
		}
	}
	return ""
}

// ParseResponse decodes serialized response bytes. The body is everything after
// the first blank line, byte for byte.
func ParseResponse(data []byte) (*Response, error) {
	sep := bytes.Index(data, []byte(crlf+crlf))
	if sep < 0 {
		return nil, fmt.Errorf("%w: missing header terminator", cerrors.ErrMalformedRequest)
	}

	lines := strings.Split(string(data[:sep]), crlf)
	m := responseLine.FindStringSubmatch(lines[0])
	if m == nil {
		return nil, fmt.Errorf("%w: bad status line %q", cerrors.ErrMalformedRequest, lines[0])
	}
	code, err := strconv.Atoi(m[2])
	if err != nil {
		return nil, fmt.Errorf("%w: bad status code %q", cerrors.ErrMalformedRequest, m[2])
	}

	resp := &Response{Status: Status(code)}
	for _, line := range lines[1:] {
		key, value, ok := strings.Cut(line, ": ")
		if !ok {
			continue
		}
		resp.Headers = append(resp.Headers, Header{Key: key, Value: value})
	}

	if body := data[sep+len(crlf+crlf):]; len(body) > 0 {
		resp.Body = append([]byte(nil), body...)
	}

	return resp, nil
}
