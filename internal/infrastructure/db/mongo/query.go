package mongo

import (
	"context"
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"

	"github.com/vistoria/inspection-api/internal/core/query"
)

// scopeFilter starts a filter restricted to the scope's tenant. An empty
// tenant scope matches no document.
func scopeFilter(scope query.Scope) bson.M {
	switch {
	case scope.All:
		return bson.M{}
	case scope.CompanyID == "":
		return bson.M{"_id": bson.M{"$exists": false}}
	default:
		return bson.M{"company_id": scope.CompanyID}
	}
}

// byID returns the lookup filter for one document inside scope.
func byID(scope query.Scope, id string) bson.M {
	f := scopeFilter(scope)
	if _, blocked := f["_id"]; !blocked {
		f["_id"] = id
	}
	return f
}

// eq adds an equality match when value is set.
func eq(f bson.M, field, value string) {
	if value != "" {
		f[field] = value
	}
}

// search adds a case-insensitive substring match over fields. The term is
// quoted so user input never reaches the regex engine as a pattern.
func search(f bson.M, term string, fields []string) {
	if term == "" || len(fields) == 0 {
		return
	}
	pattern := regexp.QuoteMeta(term)
	or := make(bson.A, 0, len(fields))
	for _, field := range fields {
		or = append(or, bson.M{field: bson.M{"$regex": pattern, "$options": "i"}})
	}
	f["$or"] = or
}

// between adds an inclusive date range on field.
func between(f bson.M, field string, r query.DateRange) {
	if r.IsZero() {
		return
	}
	cond := bson.M{}
	if !r.From.IsZero() {
		cond["$gte"] = r.From.UTC()
	}
	if !r.To.IsZero() {
		cond["$lte"] = r.To.UTC()
	}
	f[field] = cond
}

// sortSpec orders by the requested field and breaks ties on _id so pages are
// stable. Ids are time ordered.
func sortSpec(p query.Params) bson.D {
	dir := -1
	if p.SortOrder == query.Asc {
		dir = 1
	}
	if p.SortBy == "" || p.SortBy == "_id" {
		return bson.D{{Key: "_id", Value: dir}}
	}
	return bson.D{{Key: p.SortBy, Value: dir}, {Key: "_id", Value: dir}}
}

func pageOptions(p query.Params) *options.FindOptions {
	return options.Find().
		SetSort(sortSpec(p)).
		SetSkip(int64(p.Offset())).
		SetLimit(int64(p.Limit))
}

// findPage runs the count and the page query concurrently.
func findPage[T any](ctx context.Context, col *mongo.Collection, filter bson.M, p query.Params) ([]*T, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var (
		items []*T
		total int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := col.CountDocuments(gctx, filter)
		if err != nil {
			return fmt.Errorf("count %s: %w", col.Name(), err)
		}
		total = n
		return nil
	})
	g.Go(func() error {
		cur, err := col.Find(gctx, filter, pageOptions(p))
		if err != nil {
			return fmt.Errorf("find %s: %w", col.Name(), err)
		}
		out := make([]*T, 0, p.Limit)
		if err := cur.All(gctx, &out); err != nil {
			return fmt.Errorf("decode %s: %w", col.Name(), err)
		}
		items = out
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// countBy groups documents of filter by field.
func countBy(ctx context.Context, col *mongo.Collection, filter bson.M, field string) (map[string]int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$group", Value: bson.M{"_id": "$" + field, "n": bson.M{"$sum": 1}}}},
	}
	cur, err := col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate %s: %w", col.Name(), err)
	}
	var rows []struct {
		Key string `bson:"_id"`
		N   int64  `bson:"n"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode %s counts: %w", col.Name(), err)
	}

	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.Key] = r.N
	}
	return out, nil
}

func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, defaultTimeout)
}
