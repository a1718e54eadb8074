package books

import "github.com/bookarr/bookarr/pkg/models"

// ListAuthorBooksQuery is the query string for listing an author's books.
type ListAuthorBooksQuery struct {
	Refresh bool `query:"refresh" json:"refresh"`
	Limit   *int `query:"limit" json:"limit" validate:"omitempty,min=1,max=500"`
}

// BookResponse flattens narrator names and picks the display cover so the
// frontend doesn't have to.
type BookResponse struct {
	*models.Book
	Narrators []string `json:"narrators"`
	Cover     *string  `json:"cover"`
}

func newBookResponse(book *models.Book) BookResponse {
	narrators := make([]string, len(book.Narrators))
	for i, narrator := range book.Narrators {
		narrators[i] = narrator.Name
	}

	return BookResponse{
		Book:      book,
		Narrators: narrators,
		Cover:     book.ResolveCover(),
	}
}
