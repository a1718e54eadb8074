package bookshelf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_PrefersStructuredMetadata(t *testing.T) {
	t.Parallel()

	c := New("http://abs.local", "token", ClientOptions{})
	item := Item{
		ID:    "li_1",
		Title: "Item Title",
		Name:  "Item Name",
		Authors: []ItemAuthor{
			{ID: "au_1", Name: "Frank Herbert"},
		},
		Media: ItemMedia{Metadata: ItemMetadata{
			Title:        "Dune",
			AuthorName:   "Should Not Be Used",
			NarratorName: "Pat Lee",
		}},
	}

	normalized := c.Normalize(item)

	assert.Equal(t, "Dune", normalized.Title)
	assert.Equal(t, []string{"Frank Herbert"}, normalized.Authors)
	assert.Equal(t, []string{"Pat Lee"}, normalized.Narrators)
	require.NotNil(t, normalized.CoverURL)
	assert.Equal(t, "http://abs.local/api/items/li_1/cover", *normalized.CoverURL)
}

func TestNormalize_TitleFallbackChain(t *testing.T) {
	t.Parallel()

	c := New("http://abs.local", "token", ClientOptions{})

	normalized := c.Normalize(Item{ID: "li_1", Title: "Item Title", Name: "Item Name"})
	assert.Equal(t, "Item Title", normalized.Title)

	normalized = c.Normalize(Item{ID: "li_1", Name: "Item Name"})
	assert.Equal(t, "Item Name", normalized.Title)

	normalized = c.Normalize(Item{ID: "li_1"})
	assert.Equal(t, "", normalized.Title)
}

func TestNormalize_SplitsDelimitedAuthorName(t *testing.T) {
	t.Parallel()

	c := New("http://abs.local", "token", ClientOptions{})
	item := Item{
		ID:    "li_1",
		Title: "Collaboration",
		Media: ItemMedia{Metadata: ItemMetadata{
			AuthorName: "Jane Doe, John Roe",
		}},
	}

	normalized := c.Normalize(item)

	assert.Equal(t, []string{"Jane Doe", "John Roe"}, normalized.Authors)
}

func TestNormalize_AuthorFromRelPath(t *testing.T) {
	t.Parallel()

	c := New("http://abs.local", "token", ClientOptions{})
	item := Item{
		ID:      "li_1",
		Title:   "Dune",
		RelPath: "Frank Herbert - Dune",
	}

	normalized := c.Normalize(item)

	assert.Equal(t, []string{"Frank Herbert"}, normalized.Authors)
}

func TestNormalize_NoAuthorSignal(t *testing.T) {
	t.Parallel()

	c := New("http://abs.local", "token", ClientOptions{})
	item := Item{
		ID:      "li_1",
		Title:   "Orphan",
		RelPath: "no-delimiter-here",
	}

	normalized := c.Normalize(item)

	assert.Empty(t, normalized.Authors)
}

func TestNormalize_NarratorListTrimsAndDropsEmpties(t *testing.T) {
	t.Parallel()

	c := New("http://abs.local", "token", ClientOptions{})
	item := Item{
		ID:    "li_1",
		Title: "Dune",
		Media: ItemMedia{Metadata: ItemMetadata{
			NarratorName: " Pat Lee , , Sam Fox ",
		}},
	}

	normalized := c.Normalize(item)

	assert.Equal(t, []string{"Pat Lee", "Sam Fox"}, normalized.Narrators)
}

func TestCoverURL_MissingID(t *testing.T) {
	t.Parallel()

	c := New("http://abs.local/", "token", ClientOptions{})

	assert.Nil(t, c.CoverURL(Item{}))
}
