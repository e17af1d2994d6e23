package service

import (
	"strings"

	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/domain/entity"
)

// Search keeps the items whose scope field contains term, ignoring case.
// An empty term returns items itself.
func Search[T entity.Searchable](items []T, scope entity.SearchScope, term string) []T {
	if term == "" {
		return items
	}
	needle := strings.ToLower(term)
	out := make([]T, 0, len(items))
	for _, item := range items {
		v, ok := item.SearchField(scope)
		if !ok {
			continue
		}
		if strings.Contains(strings.ToLower(v), needle) {
			out = append(out, item)
		}
	}
	return out
}
