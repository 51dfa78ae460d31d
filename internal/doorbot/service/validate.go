package service

import (
	"errors"
	"regexp"

	"github.com/tinkerhall/doorbot/internal/doorbot/store"
)

// RFID readers deliver tags as decimal digit strings. Anything else is
// rejected before storage is touched.
var tagPattern = regexp.MustCompile(`^[0-9]+$`)

// ValidTag reports whether a scanned tag is well formed.
func ValidTag(tag string) bool {
	return tagPattern.MatchString(tag)
}

const (
	defaultSearchLimit = 50
	maxSearchLimit     = 100
)

// clampPage normalises caller-supplied pagination. Negative offsets
// become zero, a missing limit gets the default and oversized limits
// are capped.
func clampPage(offset, limit int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}
	return offset, limit
}

// mapStoreErr translates storage sentinels into service sentinels.
// Anything else is a storage failure and passes through unchanged.
func mapStoreErr(err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, store.ErrAlreadyExists):
		return ErrConflict
	}
	return err
}
