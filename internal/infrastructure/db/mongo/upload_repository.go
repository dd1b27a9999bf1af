package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/vistoria/inspection-api/internal/core/domain"
	"github.com/vistoria/inspection-api/internal/core/ports"
	"github.com/vistoria/inspection-api/internal/core/query"
)

const collectionUploads = "uploads"

// UploadRepository stores upload metadata. File bytes live in GridFSStore.
type UploadRepository struct {
	col *mongo.Collection
}

func NewUploadRepository(db *mongo.Database) *UploadRepository {
	return &UploadRepository{col: db.Collection(collectionUploads)}
}

func (r *UploadRepository) Create(ctx context.Context, u *domain.Upload) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, u); err != nil {
		return fmt.Errorf("insert upload: %w", err)
	}
	return nil
}

func (r *UploadRepository) FindByID(ctx context.Context, scope query.Scope, id string) (*domain.Upload, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var u domain.Upload
	if err := r.col.FindOne(ctx, byID(scope, id)).Decode(&u); err != nil {
		if isNotFound(err) {
			return nil, domain.ErrUploadNotFound
		}
		return nil, fmt.Errorf("find upload: %w", err)
	}
	return &u, nil
}

func (r *UploadRepository) List(ctx context.Context, f ports.UploadFilter) ([]*domain.Upload, int64, error) {
	filter := scopeFilter(f.Scope)
	eq(filter, "upload_type", f.UploadType)
	eq(filter, "related_id", f.RelatedID)
	search(filter, f.Params.Search, ports.UploadSpec.SearchFields)
	return findPage[domain.Upload](ctx, r.col, filter, f.Params)
}

func (r *UploadRepository) Delete(ctx context.Context, scope query.Scope, id string) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, byID(scope, id))
	if err != nil {
		return fmt.Errorf("delete upload: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrUploadNotFound
	}
	return nil
}

// Totals returns the number of uploads in scope and their combined size.
func (r *UploadRepository) Totals(ctx context.Context, scope query.Scope) (int64, int64, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: scopeFilter(scope)}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"count": bson.M{"$sum": 1},
			"bytes": bson.M{"$sum": "$size"},
		}}},
	}
	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, 0, fmt.Errorf("aggregate uploads: %w", err)
	}
	var rows []struct {
		Count int64 `bson:"count"`
		Bytes int64 `bson:"bytes"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return 0, 0, fmt.Errorf("decode upload totals: %w", err)
	}
	if len(rows) == 0 {
		return 0, 0, nil
	}
	return rows[0].Count, rows[0].Bytes, nil
}
