package bookshelf

import "strings"

// NormalizedItem is the canonical shape the importer consumes, extracted from
// the inconsistent metadata the upstream service returns.
type NormalizedItem struct {
	Title     string   `json:"title"`
	Authors   []string `json:"authors"`
	Narrators []string `json:"narrators"`
	CoverURL  *string  `json:"cover_url"`
}

// Normalize extracts a canonical {title, authors, narrators, cover} tuple from
// a raw upstream item.
//
// Title prefers the nested media metadata over the item-level fields. Authors
// prefer the structured author list, then the delimited authorName string, and
// finally fall back to parsing the item's storage path, which by convention is
// "<author> - <rest>". Narrators only come from the delimited narratorName
// string; there is no path fallback for them.
func (c *Client) Normalize(item Item) NormalizedItem {
	meta := item.Media.Metadata

	title := meta.Title
	if title == "" {
		title = item.Title
	}
	if title == "" {
		title = item.Name
	}

	var authors []string
	for _, a := range item.Authors {
		if name := strings.TrimSpace(a.Name); name != "" {
			authors = append(authors, name)
		}
	}
	if len(authors) == 0 {
		authors = splitNameList(meta.AuthorName)
	}
	if len(authors) == 0 {
		if author, _, found := strings.Cut(item.RelPath, " - "); found {
			if author = strings.TrimSpace(author); author != "" {
				authors = append(authors, author)
			}
		}
	}

	return NormalizedItem{
		Title:     title,
		Authors:   authors,
		Narrators: splitNameList(meta.NarratorName),
		CoverURL:  c.CoverURL(item),
	}
}

// splitNameList splits a comma-delimited name string, trimming whitespace and
// dropping empty entries.
func splitNameList(s string) []string {
	if s == "" {
		return nil
	}
	var names []string
	for _, part := range strings.Split(s, ",") {
		if name := strings.TrimSpace(part); name != "" {
			names = append(names, name)
		}
	}
	return names
}
