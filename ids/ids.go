// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ids

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// ID schemes accepted by Parse
const (
	SchemeHex   = "hex"
	SchemeToken = "token"
	SchemeULID  = "ulid"
	SchemeUUID  = "uuid"
)

// Generator produces random record IDs.
type Generator interface {
	NewID() (string, error)
}

// Hex creates random hex IDs of Bytes random bytes (default 16)
type Hex struct {
	Bytes int
}

func (g Hex) NewID() (string, error) {
	n := g.Bytes
	if n <= 0 {
		n = 16
	}
	b := make([]byte, n)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate random ID: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// Token creates URL-safe base64 secrets, used for voting credentials.
// Default is 24 bytes = 192 bits of entropy.
type Token struct {
	Bytes int
}

func (g Token) NewID() (string, error) {
	n := g.Bytes
	if n <= 0 {
		n = 24
	}
	b := make([]byte, n)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	// URL-safe base64 without padding
	return strings.TrimRight(base64.URLEncoding.EncodeToString(b), "="), nil
}

// ULID creates lexicographically sortable IDs (26 chars).
// Now defaults to time.Now.
type ULID struct {
	Now func() time.Time
}

func (g ULID) NewID() (string, error) {
	now := time.Now().UTC()
	if g.Now != nil {
		now = g.Now()
	}
	id, err := ulid.New(ulid.Timestamp(now), rand.Reader)
	if err != nil {
		return "", fmt.Errorf("failed to generate ULID: %w", err)
	}
	return id.String(), nil
}

// UUID creates random (version 4) UUIDs.
type UUID struct{}

func (UUID) NewID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("failed to generate UUID: %w", err)
	}
	return id.String(), nil
}

// Parse returns the generator for a scheme name.
func Parse(scheme string) (Generator, error) {
	switch strings.ToLower(strings.TrimSpace(scheme)) {
	case SchemeHex:
		return Hex{}, nil
	case SchemeToken:
		return Token{}, nil
	case SchemeULID:
		return ULID{}, nil
	case SchemeUUID:
		return UUID{}, nil
	}
	return nil, fmt.Errorf("unknown ID scheme %q", scheme)
}
