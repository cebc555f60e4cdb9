// Package domain contains the core entities and derivation rules for the Bookscape dataset.
package domain

// BookRecord is one row of the book dataset. Records are immutable after load;
// every derived structure (aggregates, flow graph, highlight sets) is recomputed
// wholesale from a record slice rather than updated in place.
type BookRecord struct {
	ID                 int    `json:"id"`
	Title              string `json:"title"`
	Author             string `json:"author"`
	Genre              string `json:"genre,omitempty"`
	Language           string `json:"language,omitempty"`
	PublicationYear    int    `json:"publication_year"`
	Publisher          string `json:"publisher,omitempty"`
	Description        string `json:"description,omitempty"`
	PageCount          int    `json:"page_count"`
	Tags               string `json:"tags,omitempty"`
	RatingAverage      float64 `json:"rating_average"`
	MostPopularCountry string `json:"most_popular_country,omitempty"`
	BestsellerStatus   bool   `json:"bestseller_status"`
	Awards             string `json:"awards,omitempty"`
	AgeCategory        string `json:"age_category,omitempty"`
	AdaptedToMovie     bool   `json:"adapted_to_movie"`
	MovieReleaseYear   *int   `json:"movie_release_year,omitempty"`
	ISBN               string `json:"isbn,omitempty"`
}

// Valid reports whether the record passes the load-time positivity constraints.
// Invalid records are dropped by the loader and never reach aggregation.
func (r *BookRecord) Valid() bool {
	return r.PageCount > 0 && r.RatingAverage > 0 && r.PublicationYear > 0
}

// CountryAggregate summarizes the records whose most popular country matches.
// A group only exists when count >= 1, so AvgRating never divides by zero.
type CountryAggregate struct {
	Country   string  `json:"country"`
	Count     int     `json:"count"`
	AvgRating float64 `json:"avg_rating"`
}

// GenreAggregate summarizes the records of one genre.
type GenreAggregate struct {
	Genre        string  `json:"genre"`
	Count        int     `json:"count"`
	AvgRating    float64 `json:"avg_rating"`
	AvgPageCount float64 `json:"avg_page_count"`
}
