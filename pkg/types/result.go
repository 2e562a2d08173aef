// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"encoding/json"
	"errors"
)

// DiscoverResult is the outcome of field discovery. It carries either the
// placeholders or an error message, never both.
type DiscoverResult struct {
	Success      bool
	Placeholders []string
	Error        string
	Kind         ErrorKind
}

// DiscoverOK returns a successful result. A nil slice is reported as empty.
func DiscoverOK(placeholders []string) DiscoverResult {
	if placeholders == nil {
		placeholders = []string{}
	}
	return DiscoverResult{Success: true, Placeholders: placeholders}
}

// DiscoverFailed returns a failed result carrying err's message verbatim.
func DiscoverFailed(err error) DiscoverResult {
	return DiscoverResult{Error: err.Error(), Kind: KindOf(err)}
}

func (r DiscoverResult) MarshalJSON() ([]byte, error) {
	if r.Success {
		return json.Marshal(struct {
			Success      bool     `json:"success"`
			Placeholders []string `json:"placeholders"`
		}{true, r.Placeholders})
	}
	return json.Marshal(failureJSON{Error: r.Error, Kind: r.Kind})
}

// Outcome distinguishes the three ways a generate run ends.
type Outcome string

const (
	OutcomeSaved     Outcome = "saved"
	OutcomeFailed    Outcome = "failed"
	OutcomeCancelled Outcome = "cancelled"
)

// GenerateResult is the outcome of document generation. A cancelled run is
// unsuccessful but is not an error: callers check Cancelled before treating
// the result as a failure, and never retry it.
type GenerateResult struct {
	Success bool
	Path    string
	Error   string
	Kind    ErrorKind
	Outcome Outcome
}

// GenerateOK returns a successful result for the written path.
func GenerateOK(path string) GenerateResult {
	return GenerateResult{Success: true, Path: path, Outcome: OutcomeSaved}
}

// GenerateFailed returns the result for err. ErrCancelled yields the
// cancelled outcome.
func GenerateFailed(err error) GenerateResult {
	if errors.Is(err, ErrCancelled) || IsKind(err, KindCancelled) {
		return GenerateResult{Error: CancelledMessage, Kind: KindCancelled, Outcome: OutcomeCancelled}
	}
	return GenerateResult{Error: err.Error(), Kind: KindOf(err), Outcome: OutcomeFailed}
}

// Cancelled reports whether the user declined to choose a destination.
func (r GenerateResult) Cancelled() bool {
	return r.Outcome == OutcomeCancelled
}

func (r GenerateResult) MarshalJSON() ([]byte, error) {
	if r.Success {
		return json.Marshal(struct {
			Success bool    `json:"success"`
			Path    string  `json:"path"`
			Outcome Outcome `json:"outcome"`
		}{true, r.Path, r.Outcome})
	}
	return json.Marshal(failureJSON{Error: r.Error, Kind: r.Kind, Outcome: r.Outcome})
}

type failureJSON struct {
	Success bool      `json:"success"`
	Error   string    `json:"error"`
	Kind    ErrorKind `json:"kind,omitempty"`
	Outcome Outcome   `json:"outcome,omitempty"`
}
