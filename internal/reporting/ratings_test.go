package reporting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAverageRatings(t *testing.T) {
	roster := []Driver{{ID: "d1", Name: "juan"}, {ID: "d2", Name: "maria"}}
	ratings := []RatingRecord{
		{DriverID: "d1", Rating: 5.0},
		{DriverID: "d1", Rating: 4},
		{DriverID: "d1", Rating: 4.0},
		{DriverID: "d2", Rating: 5.0},
		{DriverID: "d2", Rating: "five"},
		{DriverID: "ghost", Rating: 3.0},
		{DriverID: "", Rating: 1.0},
	}

	out := AverageRatings(ratings, roster)

	require.Len(t, out, 3)
	assert.Equal(t, DriverRating{DriverID: "d2", Name: "maria", Average: 5.0, Count: 1}, out[0])
	assert.Equal(t, DriverRating{DriverID: "d1", Name: "juan", Average: 4.33, Count: 3}, out[1])
	assert.Equal(t, DriverRating{DriverID: "ghost", Name: "ghost", Average: 3.0, Count: 1}, out[2])
}

func TestAverageRatings_Empty(t *testing.T) {
	out := AverageRatings(nil, nil)

	assert.NotNil(t, out)
	assert.Empty(t, out)
}
