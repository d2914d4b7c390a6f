// Package change defines the normalized model of a source-control change
// under review: the change record, the file action and content taxonomy, and
// the Change interface implemented by the Perforce and Git extractors.
package change

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when a requested changelist, client or file has
	// no record. It is an expected outcome, not a system failure.
	ErrNotFound = errors.New("not found")

	// ErrToolFailure is matched by errors from external tools that could not
	// be launched or exited non-zero.
	ErrToolFailure = errors.New("external tool failed")
)

// UploadItem is one file's before and after content. Absent sides are empty,
// never nil.
type UploadItem struct {
	Path string `json:"path"`
	Old  []byte `json:"old"`
	New  []byte `json:"new"`
}

// NewUploadItem returns an item with nil sides replaced by empty content.
func NewUploadItem(path string, old, new []byte) UploadItem {
	if old == nil {
		old = []byte{}
	}
	if new == nil {
		new = []byte{}
	}
	return UploadItem{Path: path, Old: old, New: new}
}

// Change is a change that can be turned into review input.
type Change interface {
	// ID is the change number or commit hash.
	ID() string
	Submitted() bool
	Description() string
	Author() string
	Record() *Record

	// UploadItems returns one item per file, in change order. Any failure
	// aborts the whole extraction.
	UploadItems(ctx context.Context) ([]UploadItem, error)

	// Patch returns a unified diff of every textual file in the change.
	// It may be empty.
	Patch(ctx context.Context) (string, error)
}
