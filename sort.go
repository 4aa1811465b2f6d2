package md2site

import "sort"

// SortByDate orders docs newest first. Documents published at the same
// instant are ordered by slug so the listing is stable across builds.
func SortByDate(docs []*Document) {
	sort.SliceStable(docs, func(i, j int) bool {
		a, b := docs[i], docs[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.After(b.Date)
		}
		return a.Slug < b.Slug
	})
}

// GroupBySection splits docs into sections in the order each section first
// appears. Document order within a section is kept.
func GroupBySection(docs []*Document) []Section {
	var sections []Section
	index := make(map[string]int)
	for _, doc := range docs {
		name := doc.Section
		if name == "" {
			name = DefaultSection
		}
		i, ok := index[name]
		if !ok {
			i = len(sections)
			index[name] = i
			sections = append(sections, Section{Name: name})
		}
		sections[i].Documents = append(sections[i].Documents, doc)
	}
	return sections
}
