package search

import "github.com/bookscape/bookscape-server/internal/domain"

// document is the indexed shape of a book record. Only the fields worth
// searching or returning in hits are carried; the store remains the source of
// truth for full records.
type document struct {
	Title       string  `json:"title"`
	Author      string  `json:"author"`
	Description string  `json:"description"`
	Publisher   string  `json:"publisher"`
	Genre       string  `json:"genre"`
	Tags        string  `json:"tags"`
	Country     string  `json:"country"`
	Year        int     `json:"year"`
	Rating      float64 `json:"rating"`
}

func newDocument(rec *domain.BookRecord) *document {
	return &document{
		Title:       rec.Title,
		Author:      rec.Author,
		Description: rec.Description,
		Publisher:   rec.Publisher,
		Genre:       rec.Genre,
		Tags:        rec.Tags,
		Country:     rec.MostPopularCountry,
		Year:        rec.PublicationYear,
		Rating:      rec.RatingAverage,
	}
}
