package service

import (
	"github.com/dzikrimr/tugasmk/model"
)

// Aggregate merges per-page entity results into a single set. Within each
// category, duplicates are removed by exact string equality; first-seen order
// is preserved so downstream tie-breaks stay deterministic. Pages that are
// missing a category contribute nothing to it. Raw strings are passed through
// untouched; normalization is the field mapper's job.
func Aggregate(pages []model.EntitySet) model.EntitySet {
	merged := make(model.EntitySet, len(model.Categories))

	for _, category := range model.Categories {
		seen := make(map[string]struct{})
		values := []string{}
		for _, page := range pages {
			for _, raw := range page[category] {
				if _, ok := seen[raw]; ok {
					continue
				}
				seen[raw] = struct{}{}
				values = append(values, raw)
			}
		}
		merged[category] = values
	}

	return merged
}
