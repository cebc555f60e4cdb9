// Package main provides a tool to generate a sample books.csv dataset.
//
// The output is deterministic for a given seed, so tests and local
// development can rely on stable aggregates.
//
// Usage:
//
//	go run ./cmd/seed -out books.csv -count 500
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strconv"
)

var (
	out   = flag.String("out", "books.csv", "Output CSV path")
	count = flag.Int("count", 500, "Number of records to generate")
	seed  = flag.Int64("seed", 42, "RNG seed")
)

var header = []string{
	"id", "title", "author", "genre", "language", "publicationYear",
	"publisher", "description", "pageCount", "tags", "ratingAverage",
	"mostPopularCountry", "bestsellerStatus", "awards", "ageCategory",
	"adaptedToMovie", "movieReleaseYear", "isbn",
}

var genres = []string{
	"Fiction", "Fantasy", "Science Fiction", "Mystery", "Romance",
	"Thriller", "Horror", "Biography", "History", "Poetry",
	"Philosophy", "Travel", "Cooking",
}

var countries = []string{
	"USA", "UK", "France", "Germany", "Japan", "Brazil", "India",
	"Canada", "Australia", "Spain", "Italy", "South Korea",
}

var languages = []string{"English", "French", "German", "Japanese", "Spanish"}

var firstNames = []string{
	"Ada", "Jorge", "Mei", "Olga", "Samuel", "Ingrid", "Tomasz",
	"Yuki", "Clara", "Dmitri", "Amara", "Felix",
}

var lastNames = []string{
	"Okafor", "Lindqvist", "Tanaka", "Moreau", "Kowalski", "Silva",
	"Novak", "Ferrante", "Watts", "Ibrahim", "Chen", "Petrov",
}

var titleWords = []string{
	"Shadow", "River", "Garden", "Winter", "Crown", "Ember", "Atlas",
	"Echo", "Harbor", "Lantern", "Orchard", "Thread", "Compass", "Veil",
}

func main() {
	flag.Parse()

	rng := rand.New(rand.NewSource(*seed))

	f, err := os.Create(*out)
	if err != nil {
		log.Fatalf("Failed to create %s: %v", *out, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		log.Fatalf("Failed to write header: %v", err)
	}

	for i := 1; i <= *count; i++ {
		if err := w.Write(record(rng, i)); err != nil {
			log.Fatalf("Failed to write record %d: %v", i, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		log.Fatalf("Failed to flush: %v", err)
	}

	fmt.Printf("Wrote %d records to %s\n", *count, *out)
}

func record(rng *rand.Rand, id int) []string {
	genre := genres[rng.Intn(len(genres))]
	country := countries[rng.Intn(len(countries))]
	year := 1950 + rng.Intn(75)
	pages := 80 + rng.Intn(900)
	rating := 2.0 + rng.Float64()*3.0

	// A few malformed rows keep the loader's coercion and validity
	// filtering exercised by real input.
	pageField := strconv.Itoa(pages)
	ratingField := strconv.FormatFloat(rating, 'f', 2, 64)
	switch rng.Intn(40) {
	case 0:
		pageField = ""
	case 1:
		ratingField = "n/a"
	case 2:
		pageField = strconv.Itoa(pages) + ".0"
	}

	adapted := rng.Intn(5) == 0
	adaptedField := "FALSE"
	movieYear := ""
	if adapted {
		adaptedField = "TRUE"
		movieYear = strconv.Itoa(year + 2 + rng.Intn(20))
	}

	bestseller := "FALSE"
	if rating > 4.2 && rng.Intn(3) == 0 {
		bestseller = "TRUE"
	}

	author := firstNames[rng.Intn(len(firstNames))] + " " + lastNames[rng.Intn(len(lastNames))]
	title := "The " + titleWords[rng.Intn(len(titleWords))] + " of " + titleWords[rng.Intn(len(titleWords))]

	return []string{
		strconv.Itoa(id),
		title,
		author,
		genre,
		languages[rng.Intn(len(languages))],
		strconv.Itoa(year),
		"Sample House",
		"A " + genre + " novel set along the " + titleWords[rng.Intn(len(titleWords))] + ".",
		pageField,
		genre + ",sample",
		ratingField,
		country,
		bestseller,
		"",
		"Adult",
		adaptedField,
		movieYear,
		fmt.Sprintf("978-%09d", rng.Intn(1_000_000_000)),
	}
}
