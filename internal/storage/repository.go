// Package storage persists the application state as a single JSON document
// under one key, the way a browser keeps it in local storage.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"fintrack/internal/core"
)

// DefaultKey is the record key used when none is configured.
const DefaultKey = "fin_tracker_data"

// ErrNotFound is returned by Load when no record has been saved yet.
var ErrNotFound = errors.New("state record not found")

// Repository stores the whole AppState document. Writes are last-write-wins.
type Repository interface {
	Load(ctx context.Context) (core.AppState, error)
	Save(ctx context.Context, state core.AppState) error
	Clear(ctx context.Context) error
	Close() error
}

func encodeState(state core.AppState) ([]byte, error) {
	if state.Transactions == nil {
		state.Transactions = []core.Transaction{}
	}
	b, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("encode state: %w", err)
	}
	return b, nil
}

// decodeState fills absent sections with defaults so that partially written
// documents still load.
func decodeState(data []byte) (core.AppState, error) {
	state := core.DefaultState()
	if err := json.Unmarshal(data, &state); err != nil {
		return core.AppState{}, fmt.Errorf("decode state: %w", err)
	}
	if state.Transactions == nil {
		state.Transactions = []core.Transaction{}
	}
	return state, nil
}
