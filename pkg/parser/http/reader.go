// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package http

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	cerrors "github.com/absmach/cuecast/pkg/errors"
)

// DefaultMaxRequestSize bounds the head plus body of a single request.
const DefaultMaxRequestSize = 1 << 20

// ReadRequest reads one request from r: the head up to the first blank line,
// then as many body bytes as Content-Length declares. The collected bytes are
// decoded with ParseRequest.
//
// It returns io.EOF if the peer closed the connection before sending anything.
func ReadRequest(r *bufio.Reader, maxSize int) (*Request, error) {
	if maxSize <= 0 {
		maxSize = DefaultMaxRequestSize
	}

	var raw bytes.Buffer
	contentLength := 0

	first := true
	for {
		line, err := readLine(r, maxSize-raw.Len())
		if err != nil {
			if errors.Is(err, cerrors.ErrSizeLimitExceeded) {
				return nil, err
			}
			if errors.Is(err, io.EOF) {
				if first && line == "" {
					return nil, io.EOF
				}
				return nil, fmt.Errorf("%w: %w", cerrors.ErrMalformedRequest, io.ErrUnexpectedEOF)
			}
			return nil, err
		}

		// Tolerate stray blank lines between pipelined requests.
		if first && (line == crlf || line == "\n") {
			continue
		}
		first = false

		raw.WriteString(line)
		if line == crlf || line == "\n" {
			break
		}

		if key, value, ok := strings.Cut(strings.TrimRight(line, crlf), ":"); ok && strings.EqualFold(strings.TrimSpace(key), "content-length") {
			n, err := strconv.Atoi(strings.TrimSpace(value))
			if err != nil || n < 0 {
				return nil, fmt.Errorf("%w: bad content-length %q", cerrors.ErrMalformedRequest, value)
			}
			contentLength = n
		}
	}

	if contentLength > 0 {
		if raw.Len()+contentLength > maxSize {
			return nil, cerrors.ErrSizeLimitExceeded
		}
		body := make([]byte, contentLength)
		if _, err := io.ReadFull(r, body); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil, fmt.Errorf("%w: %w", cerrors.ErrMalformedRequest, io.ErrUnexpectedEOF)
			}
			return nil, err
		}
		raw.Write(body)
	}

	return ParseRequest(raw.Bytes())
}

// readLine reads up to and including the next '\n'. It fails with
// ErrSizeLimitExceeded as soon as the line grows past limit bytes.
func readLine(r *bufio.Reader, limit int) (string, error) {
	var line []byte
	for {
		chunk, err := r.ReadSlice('\n')
		if len(line)+len(chunk) > limit {
			return "", cerrors.ErrSizeLimitExceeded
		}
		line = append(line, chunk...)
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		return string(line), err
	}
}
