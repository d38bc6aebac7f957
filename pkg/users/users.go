// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package users decides who may push state through the write endpoints.
package users

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"

	"github.com/absmach/cuecast/pkg/errors"
)

// Authorizer checks whether a user may perform a write on a path.
type Authorizer interface {
	Authorize(ctx context.Context, username string, password []byte, path string) error
}

// Static authorizes a fixed set of operators. Every listed operator may write
// to every path. An empty Static rejects all writes.
type Static struct {
	passwords map[string][]byte
}

var _ Authorizer = (*Static)(nil)

// NewStatic builds a Static from username to password pairs.
func NewStatic(creds map[string]string) *Static {
	s := &Static{passwords: make(map[string][]byte, len(creds))}
	for name, pass := range creds {
		s.passwords[name] = []byte(pass)
	}
	return s
}

// Parse builds a Static from "name:password,name:password". Passwords may
// contain ':'; names may not.
func Parse(list string) (*Static, error) {
	creds := make(map[string]string)
	for _, pair := range strings.Split(list, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, pass, ok := strings.Cut(pair, ":")
		if !ok || name == "" || pass == "" {
			return nil, fmt.Errorf("invalid user entry %q: want name:password", pair)
		}
		creds[name] = pass
	}
	return NewStatic(creds), nil
}

// Len returns the number of configured operators.
func (s *Static) Len() int {
	return len(s.passwords)
}

// Authorize implements Authorizer.
func (s *Static) Authorize(ctx context.Context, username string, password []byte, path string) error {
	want, ok := s.passwords[username]
	if !ok || username == "" {
		return errors.ErrUnauthorized
	}
	if subtle.ConstantTimeCompare(want, password) != 1 {
		return errors.ErrUnauthorized
	}
	return nil
}
