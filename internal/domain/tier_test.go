package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTierFor_Boundaries(t *testing.T) {
	tests := []struct {
		name   string
		rating float64
		want   RatingTier
	}{
		{"perfect score", 5.0, TierAcclaimed},
		{"acclaimed lower bound", 4.5, TierAcclaimed},
		{"just below acclaimed", 4.49, TierHighlyRated},
		{"highly rated lower bound", 4.0, TierHighlyRated},
		{"just below highly rated", 3.99, TierWellRated},
		{"well rated lower bound", 3.5, TierWellRated},
		{"just below well rated", 3.49, TierAverage},
		{"low rating", 1.2, TierAverage},
		{"zero", 0, TierAverage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TierFor(tt.rating))
		})
	}
}

func TestRatingTier_Label(t *testing.T) {
	assert.Equal(t, "Acclaimed (4.5+)", TierAcclaimed.Label())
	assert.Equal(t, "Highly Rated (4.0+)", TierHighlyRated.Label())
	assert.Equal(t, "Well Rated (3.5+)", TierWellRated.Label())
	assert.Equal(t, "Average (< 3.5)", TierAverage.Label())
}

func TestBookRecord_Valid(t *testing.T) {
	valid := BookRecord{PageCount: 200, RatingAverage: 4.1, PublicationYear: 1999}
	assert.True(t, valid.Valid())

	tests := []struct {
		name   string
		mutate func(*BookRecord)
	}{
		{"zero page count", func(r *BookRecord) { r.PageCount = 0 }},
		{"zero rating", func(r *BookRecord) { r.RatingAverage = 0 }},
		{"zero year", func(r *BookRecord) { r.PublicationYear = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := valid
			tt.mutate(&rec)
			assert.False(t, rec.Valid())
		})
	}
}
