package databases

import (
	"math"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoPaginate struct {
	limit int64
	page  int64
}

// NewPaginatedOptions returns find options for a 1-indexed page of the given
// size, sorted by sort when it is non-empty.
func NewPaginatedOptions(perPage, page int, sort bson.D) *options.FindOptions {
	opts := newMongoPaginate(perPage, page).getPaginatedOpts()
	if len(sort) > 0 {
		opts.SetSort(sort)
	}
	return opts
}

func newMongoPaginate(limit, page int) *mongoPaginate {
	return &mongoPaginate{
		limit: int64(limit),
		page:  int64(page),
	}
}

func (mp *mongoPaginate) getPaginatedOpts() *options.FindOptions {
	l := mp.limit
	var skip int64
	if mp.page > 1 && l > 0 {
		skip = math.MaxInt64
		if mp.page-1 <= math.MaxInt64/l {
			skip = (mp.page - 1) * l
		}
	}
	fOpt := options.FindOptions{Limit: &l, Skip: &skip}

	return &fOpt
}
