package loader

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLoader(t *testing.T) *Loader {
	t.Helper()
	return New(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

const fullHeader = "id,title,author,genre,language,publicationYear,publisher,description,pageCount,tags,ratingAverage,mostPopularCountry,bestsellerStatus,awards,ageCategory,adaptedToMovie,movieReleaseYear,isbn"

func TestParse_FullRecord(t *testing.T) {
	l := newTestLoader(t)

	csv := fullHeader + "\n" +
		`7,Dune,Frank Herbert,Science Fiction,English,1965,Chilton,Desert epic,412,"classic,scifi",4.25,USA,TRUE,Hugo,Adult,TRUE,1984,978-0441172719`

	records := l.Parse(context.Background(), strings.NewReader(csv), "test")
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, 7, rec.ID)
	assert.Equal(t, "Dune", rec.Title)
	assert.Equal(t, "Frank Herbert", rec.Author)
	assert.Equal(t, "Science Fiction", rec.Genre)
	assert.Equal(t, 1965, rec.PublicationYear)
	assert.Equal(t, 412, rec.PageCount)
	assert.InDelta(t, 4.25, rec.RatingAverage, 1e-9)
	assert.Equal(t, "USA", rec.MostPopularCountry)
	assert.True(t, rec.BestsellerStatus)
	assert.True(t, rec.AdaptedToMovie)
	require.NotNil(t, rec.MovieReleaseYear)
	assert.Equal(t, 1984, *rec.MovieReleaseYear)
}

func TestParse_NumericCoercion(t *testing.T) {
	l := newTestLoader(t)

	// Integers exported as floats parse; junk coerces to zero and the
	// validity filter drops the row when a required numeric lands at zero.
	csv := "id,title,genre,publicationYear,pageCount,ratingAverage,movieReleaseYear\n" +
		"1,A,Fiction,1999,300.0,4.5,\n" +
		"2,B,Fiction,1999,banana,4.5,\n" +
		"3,C,Fiction,1999,250,junk,\n" +
		"4,D,Fiction,1999,250,4.0,soon\n"

	records := l.Parse(context.Background(), strings.NewReader(csv), "test")
	require.Len(t, records, 2)

	assert.Equal(t, 300, records[0].PageCount)
	assert.Equal(t, 4, records[1].ID)
	assert.Nil(t, records[1].MovieReleaseYear, "unparseable movie year stays nil")
}

func TestParse_BoolCaseInsensitive(t *testing.T) {
	l := newTestLoader(t)

	csv := "id,title,genre,publicationYear,pageCount,ratingAverage,adaptedToMovie,bestsellerStatus\n" +
		"1,A,Fiction,1999,100,4.0,true,TRUE\n" +
		"2,B,Fiction,1999,100,4.0,True,yes\n" +
		"3,C,Fiction,1999,100,4.0,FALSE,1\n"

	records := l.Parse(context.Background(), strings.NewReader(csv), "test")
	require.Len(t, records, 3)

	assert.True(t, records[0].AdaptedToMovie)
	assert.True(t, records[0].BestsellerStatus)
	assert.True(t, records[1].AdaptedToMovie)
	assert.False(t, records[1].BestsellerStatus, "only TRUE variants count as true")
	assert.False(t, records[2].AdaptedToMovie)
	assert.False(t, records[2].BestsellerStatus)
}

func TestParse_ValidityFilter(t *testing.T) {
	l := newTestLoader(t)

	csv := "id,title,genre,publicationYear,pageCount,ratingAverage\n" +
		"1,A,Fiction,1999,100,4.0\n" +
		"2,B,Fiction,1999,0,4.0\n" + // zero pages
		"3,C,Fiction,1999,100,0\n" + // zero rating
		"4,D,Fiction,0,100,4.0\n" + // zero year
		"5,E,Fiction,2001,280,3.3\n"

	records := l.Parse(context.Background(), strings.NewReader(csv), "test")
	require.Len(t, records, 2)
	assert.Equal(t, 1, records[0].ID)
	assert.Equal(t, 5, records[1].ID)
}

func TestParse_UnknownAndMissingColumns(t *testing.T) {
	l := newTestLoader(t)

	csv := "id,title,genre,publicationYear,pageCount,ratingAverage,mysteryColumn\n" +
		"1,A,Fiction,1999,100,4.0,whatever\n"

	records := l.Parse(context.Background(), strings.NewReader(csv), "test")
	require.Len(t, records, 1)
	assert.Empty(t, records[0].Author, "missing column leaves the zero value")
}

func TestParse_MalformedSourceReturnsEmpty(t *testing.T) {
	l := newTestLoader(t)

	// Unterminated quote makes the csv reader fail mid-stream.
	csv := "id,title,genre,publicationYear,pageCount,ratingAverage\n" +
		"1,\"broken,Fiction,1999,100,4.0\n" +
		"2,B,Fiction\"x,1999,100,4.0\n"

	records := l.Parse(context.Background(), strings.NewReader(csv), "test")
	assert.Empty(t, records)
}

func TestParse_CanceledContext(t *testing.T) {
	l := newTestLoader(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	csv := "id,title,genre,publicationYear,pageCount,ratingAverage\n1,A,Fiction,1999,100,4.0\n"
	records := l.Parse(ctx, strings.NewReader(csv), "test")
	assert.Empty(t, records)
}

func TestLoad_MissingFileReturnsEmpty(t *testing.T) {
	l := newTestLoader(t)
	records := l.Load(context.Background(), "/nonexistent/books.csv")
	assert.Empty(t, records)
}

func TestLoad_File(t *testing.T) {
	l := newTestLoader(t)

	path := filepath.Join(t.TempDir(), "books.csv")
	content := "id,title,genre,publicationYear,pageCount,ratingAverage\n1,A,Fiction,1999,100,4.0\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	records := l.Load(context.Background(), path)
	require.Len(t, records, 1)
	assert.Equal(t, "A", records[0].Title)
}
