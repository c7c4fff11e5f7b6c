package catalog

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/linesmerrill/car-spec-api/models"
)

func TestSimilarityScore(t *testing.T) {
	ref := &models.Car{Horsepower: intPtr(300), Year: 2020, DriveType: strPtr("AWD")}

	tests := []struct {
		name string
		cand *models.Car
		want *float64
	}{
		{"identical", &models.Car{Horsepower: intPtr(300), Year: 2020, DriveType: strPtr("AWD")}, floatPtr(100)},
		{"different drive", &models.Car{Horsepower: intPtr(300), Year: 2020, DriveType: strPtr("FWD")}, floatPtr(80)},
		{"year only", &models.Car{Year: 2005}, floatPtr(0)},
		{"nothing comparable", &models.Car{Horsepower: intPtr(0)}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, similarityScore(ref, tt.cand))
		})
	}
}

func TestSimilarityScore_FuelIgnoresCase(t *testing.T) {
	ref := &models.Car{FuelType: strPtr("Petrol")}
	assert.Equal(t, floatPtr(100), similarityScore(ref, &models.Car{FuelType: strPtr("petrol")}))
}

func TestSimilar(t *testing.T) {
	s, cars, _ := newTestService(t)
	ref := &models.Car{ID: 1, Horsepower: intPtr(300), Year: 2020, DriveType: strPtr("AWD")}

	cars.On("FindOne", mock.Anything, bson.M{"_id": int64(1)}).Return(ref, nil)
	cars.On("Find", mock.Anything, candidateFilter(ref, true), mock.Anything).Return([]models.Car{
		{ID: 2, Horsepower: intPtr(250), Year: 2018, DriveType: strPtr("AWD")},
		{ID: 3, Horsepower: intPtr(300), Year: 2020, DriveType: strPtr("AWD")},
	}, nil)

	res, err := s.Similar(ctx, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.ReferenceCarID)
	require.Len(t, res.SimilarCars, 2)
	assert.Equal(t, int64(3), res.SimilarCars[0].ID)
	assert.Equal(t, 100.0, *res.SimilarCars[0].SimilarityScore)
}

func TestSimilar_FallsBackToLooseQuery(t *testing.T) {
	s, cars, _ := newTestService(t)
	ref := &models.Car{ID: 1, Horsepower: intPtr(900), Year: 2023, DriveType: strPtr("RWD")}

	cars.On("FindOne", mock.Anything, bson.M{"_id": int64(1)}).Return(ref, nil)
	cars.On("Find", mock.Anything, candidateFilter(ref, true), mock.Anything).Return([]models.Car{}, nil).Once()
	cars.On("Find", mock.Anything, bson.M{"$and": []bson.M{
		{"_id": bson.M{"$ne": int64(1)}},
		{"drive_type": "RWD"},
	}}, mock.Anything).Return([]models.Car{
		{ID: 5, DriveType: strPtr("RWD")},
		{ID: 6},
	}, nil).Once()

	res, err := s.Similar(ctx, 1, 5)
	require.NoError(t, err)
	require.Len(t, res.SimilarCars, 2)
	assert.Equal(t, int64(5), res.SimilarCars[0].ID)
	assert.Nil(t, res.SimilarCars[1].SimilarityScore)
}

func TestSimilar_UnknownReference(t *testing.T) {
	s, cars, _ := newTestService(t)
	cars.On("FindOne", mock.Anything, bson.M{"_id": int64(42)}).Return(nil, mongo.ErrNoDocuments)

	_, err := s.Similar(ctx, 42, 5)
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "Car with ID 42 not found", nf.Message)
}

func TestSimilar_StoreError(t *testing.T) {
	s, cars, _ := newTestService(t)
	cars.On("FindOne", mock.Anything, mock.Anything).Return(nil, errors.New("mocked-error"))

	_, err := s.Similar(ctx, 42, 5)
	var nf *NotFoundError
	assert.False(t, errors.As(err, &nf))
	assert.ErrorContains(t, err, "mocked-error")
}

func TestCandidateFilter_WithoutAttributes(t *testing.T) {
	ref := &models.Car{ID: 9}
	assert.Equal(t, bson.M{"_id": bson.M{"$ne": int64(9)}}, candidateFilter(ref, true))
}
