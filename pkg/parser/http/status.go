// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package http

// Status is an HTTP response status code.
type Status int

// Response statuses the server emits.
const (
	StatusOK                  Status = 200
	StatusNoContent           Status = 204
	StatusBadRequest          Status = 400
	StatusUnauthorized        Status = 401
	StatusNotFound            Status = 404
	StatusMethodNotAllowed    Status = 405
	StatusPayloadTooLarge     Status = 413
	StatusTooManyRequests     Status = 429
	StatusInternalServerError Status = 500
)

// Polling viewers match on these phrases, so they must not change.
var reasons = map[Status]string{
	StatusOK:                  "OK",
	StatusNoContent:           "No Content",
	StatusBadRequest:          "Bad Request",
	StatusUnauthorized:        "Unauthorized",
	StatusNotFound:            "Not Found",
	StatusMethodNotAllowed:    "Method Not Allowed",
	StatusPayloadTooLarge:     "Payload Too Large",
	StatusTooManyRequests:     "Too Many Requests",
	StatusInternalServerError: "Internal Server Error",
}

// Reason returns the fixed reason phrase for the status.
func (s Status) Reason() string {
	if r, ok := reasons[s]; ok {
		return r
	}
	return "Unknown"
}

// Code returns the numeric status code.
func (s Status) Code() int {
	return int(s)
}
