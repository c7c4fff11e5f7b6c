package catalog

import (
	"context"
	"testing"

	"github.com/linesmerrill/car-spec-api/databases/mocks"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }
func strPtr(v string) *string     { return &v }

func newTestService(t *testing.T) (*Service, *mocks.CarDatabase, *mocks.CounterDatabase) {
	t.Helper()
	cars := &mocks.CarDatabase{}
	counters := &mocks.CounterDatabase{}
	t.Cleanup(func() {
		cars.AssertExpectations(t)
		counters.AssertExpectations(t)
	})
	return NewService(cars, counters), cars, counters
}

var ctx = context.Background()
