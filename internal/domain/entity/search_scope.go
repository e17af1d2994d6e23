package entity

import "fmt"

// SearchScope selects the single field a free-text search runs against.
type SearchScope string

const (
	ScopeIdol  SearchScope = "idol"
	ScopeGroup SearchScope = "group"
	ScopeAlbum SearchScope = "album"
)

func ParseSearchScope(s string) (SearchScope, error) {
	switch SearchScope(s) {
	case ScopeIdol, ScopeGroup, ScopeAlbum:
		return SearchScope(s), nil
	case "":
		return ScopeIdol, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidScope, s)
}

// Searchable items expose the value of a scope field; ok is false when it is missing.
type Searchable interface {
	SearchField(scope SearchScope) (value string, ok bool)
}
