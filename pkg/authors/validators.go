package authors

import "github.com/bookarr/bookarr/pkg/models"

// CreateAuthorPayload is the request body for creating an author.
type CreateAuthorPayload struct {
	Name          string  `json:"name" validate:"required,max=512"`
	OpenLibraryID *string `json:"ol_id"`
	ImageURL      *string `json:"image_url" validate:"omitempty,url"`
	Monitored     *bool   `json:"monitored"`
}

// SearchAuthorsQuery is the query string for the OpenLibrary author search.
type SearchAuthorsQuery struct {
	Query string `query:"q" json:"q" validate:"required,min=2"`
	Limit int    `query:"limit" json:"limit" default:"10" validate:"min=1,max=25"`
}

// AuthorResponse is an author plus its book count.
type AuthorResponse struct {
	*models.Author
	BookCount int `json:"book_count"`
}

func newAuthorResponse(author *models.Author) AuthorResponse {
	return AuthorResponse{
		Author:    author,
		BookCount: len(author.Books),
	}
}
