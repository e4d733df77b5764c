package catalog

// Merge reconciles the upstream catalogue with a previously enriched
// document. The upstream order and source fields win; enrichment already paid
// for (translations, directory paths) is carried over by record key so re-runs
// never redo finished work. Enriched records that no longer appear upstream
// are kept at the tail rather than dropped.
func Merge(upstream, enriched []Record) []Record {
	byKey := make(map[string]Record, len(enriched))
	for _, rec := range enriched {
		if key := rec.Key(); key != "" {
			byKey[key] = rec
		}
	}

	merged := make([]Record, 0, len(upstream))
	seen := make(map[string]bool, len(upstream))
	for _, rec := range upstream {
		key := rec.Key()
		if key != "" {
			seen[key] = true
			if prev, ok := byKey[key]; ok {
				rec = carryEnrichment(rec, prev)
			}
		}
		merged = append(merged, rec)
	}

	for _, rec := range enriched {
		key := rec.Key()
		if key == "" || !seen[key] {
			merged = append(merged, rec)
		}
	}

	return merged
}

// carryEnrichment copies derived fields from a previously enriched record
// onto its fresh upstream counterpart. Translations only carry when the
// source text they were made from is unchanged; a reworded upstream field
// invalidates its translation.
func carryEnrichment(fresh, prev Record) Record {
	if fresh.Title == prev.Title {
		fresh.TitleEN = prev.TitleEN
	}
	if fresh.Description == prev.Description {
		fresh.DescriptionEN = prev.DescriptionEN
	}
	if fresh.ImageAlt == prev.ImageAlt {
		fresh.ImageAltEN = prev.ImageAltEN
	}
	if equalCategories(fresh.Categories, prev.Categories) {
		fresh.CategoriesEN = prev.CategoriesEN
	}
	if fresh.ImageURL == prev.ImageURL && fresh.PublishedAt == prev.PublishedAt {
		fresh.DirectoryPath = prev.DirectoryPath
	}
	return fresh
}

func equalCategories(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
