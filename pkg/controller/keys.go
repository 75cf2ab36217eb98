package controller

import (
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/HarshaM0211/jira-software/pkg/apperror"
)

// KeyParser turns the :id path segment into an entity key.
type KeyParser[K comparable] func(raw string) (K, error)

// Int64Keys parses positive decimal keys.
func Int64Keys() KeyParser[int64] {
	return func(raw string) (int64, error) {
		id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil || id <= 0 {
			return 0, apperror.InvalidArgument("id")
		}
		return id, nil
	}
}

// StringKeys accepts any non-blank key.
func StringKeys() KeyParser[string] {
	return func(raw string) (string, error) {
		id := strings.TrimSpace(raw)
		if id == "" {
			return "", apperror.InvalidArgument("id")
		}
		return id, nil
	}
}

// UUIDKeys accepts UUIDs in any form uuid.Parse does and returns them in
// canonical form, matching repository.UUIDKeys.
func UUIDKeys() KeyParser[string] {
	return func(raw string) (string, error) {
		id, err := uuid.Parse(strings.TrimSpace(raw))
		if err != nil {
			return "", apperror.InvalidArgument("id")
		}
		return id.String(), nil
	}
}
