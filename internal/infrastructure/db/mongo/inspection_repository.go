package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/errgroup"

	"github.com/vistoria/inspection-api/internal/core/domain"
	"github.com/vistoria/inspection-api/internal/core/ports"
	"github.com/vistoria/inspection-api/internal/core/query"
)

const collectionInspections = "inspections"

// InspectionRepository implements ports.InspectionRepository. Reads join the
// inspector and property names in one aggregation.
type InspectionRepository struct {
	col        *mongo.Collection
	properties *mongo.Collection
}

func NewInspectionRepository(db *mongo.Database) *InspectionRepository {
	return &InspectionRepository{
		col:        db.Collection(collectionInspections),
		properties: db.Collection(collectionProperties),
	}
}

// Create bumps the property's inspection count and inserts the inspection.
// The count is reverted when the insert fails, including when the partial
// unique index rejects a second pending inspection for the property.
func (r *InspectionRepository) Create(ctx context.Context, in *domain.Inspection) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	ok, err := adjustCount(ctx, r.properties, in.CompanyID, in.PropertyID, 1)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrPropertyNotFound
	}

	if _, err := r.col.InsertOne(ctx, in); err != nil {
		_, rerr := adjustCount(context.WithoutCancel(ctx), r.properties, in.CompanyID, in.PropertyID, -1)
		switch {
		case rerr != nil:
			return fmt.Errorf("insert inspection: %w (count revert: %v)", err, rerr)
		case duplicateOn(err, idxInspectionPending):
			return domain.ErrPendingInspection
		}
		return fmt.Errorf("insert inspection: %w", err)
	}
	return nil
}

// rowPipeline appends the name lookups to a match stage.
func rowPipeline(match bson.M, tail ...bson.D) mongo.Pipeline {
	p := mongo.Pipeline{
		{{Key: "$match", Value: match}},
	}
	p = append(p, tail...)
	p = append(p,
		bson.D{{Key: "$lookup", Value: bson.M{
			"from":         collectionUsers,
			"localField":   "inspector_id",
			"foreignField": "_id",
			"as":           "inspector",
		}}},
		bson.D{{Key: "$lookup", Value: bson.M{
			"from":         collectionProperties,
			"localField":   "property_id",
			"foreignField": "_id",
			"as":           "property",
		}}},
		bson.D{{Key: "$addFields", Value: bson.M{
			"inspector_name":   bson.M{"$first": "$inspector.name"},
			"property_name":    bson.M{"$first": "$property.name"},
			"property_address": bson.M{"$first": "$property.address"},
		}}},
		bson.D{{Key: "$project", Value: bson.M{"inspector": 0, "property": 0}}},
	)
	return p
}

func (r *InspectionRepository) FindByID(ctx context.Context, scope query.Scope, id string) (*domain.InspectionRow, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	cur, err := r.col.Aggregate(ctx, rowPipeline(byID(scope, id), bson.D{{Key: "$limit", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find inspection: %w", err)
	}
	var rows []*domain.InspectionRow
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode inspection: %w", err)
	}
	if len(rows) == 0 {
		return nil, domain.ErrInspectionNotFound
	}
	return rows[0], nil
}

func (r *InspectionRepository) List(ctx context.Context, f ports.InspectionFilter) ([]*domain.InspectionRow, int64, error) {
	filter := scopeFilter(f.Scope)
	eq(filter, "status", f.Status)
	eq(filter, "inspector_id", f.InspectorID)
	eq(filter, "property_id", f.PropertyID)
	eq(filter, "client_id", f.ClientID)
	eq(filter, "type", f.Type)
	between(filter, "scheduled_date", f.Scheduled)
	search(filter, f.Params.Search, ports.InspectionSpec.SearchFields)

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var (
		items []*domain.InspectionRow
		total int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := r.col.CountDocuments(gctx, filter)
		if err != nil {
			return fmt.Errorf("count inspections: %w", err)
		}
		total = n
		return nil
	})
	g.Go(func() error {
		pipeline := rowPipeline(filter,
			bson.D{{Key: "$sort", Value: sortSpec(f.Params)}},
			bson.D{{Key: "$skip", Value: int64(f.Params.Offset())}},
			bson.D{{Key: "$limit", Value: int64(f.Params.Limit)}},
		)
		cur, err := r.col.Aggregate(gctx, pipeline)
		if err != nil {
			return fmt.Errorf("list inspections: %w", err)
		}
		out := make([]*domain.InspectionRow, 0, f.Params.Limit)
		if err := cur.All(gctx, &out); err != nil {
			return fmt.Errorf("decode inspections: %w", err)
		}
		items = out
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *InspectionRepository) Update(ctx context.Context, in *domain.Inspection) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": in.ID, "company_id": in.CompanyID}, bson.M{"$set": bson.M{
		"inspector_id":   in.InspectorID,
		"type":           in.Type,
		"scheduled_date": in.ScheduledDate,
		"notes":          in.Notes,
		"updated_by":     in.UpdatedBy,
		"updated_at":     in.UpdatedAt,
	}})
	if err != nil {
		return fmt.Errorf("update inspection: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrInspectionNotFound
	}
	return nil
}

// Transition writes the new status only if the stored status is still from.
// A lost race surfaces as an invalid transition.
func (r *InspectionRepository) Transition(ctx context.Context, in *domain.Inspection, from domain.InspectionStatus) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	filter := bson.M{"_id": in.ID, "company_id": in.CompanyID, "status": from}
	res, err := r.col.UpdateOne(ctx, filter, bson.M{"$set": bson.M{
		"status":       in.Status,
		"started_at":   in.StartedAt,
		"completed_at": in.CompletedAt,
		"notes":        in.Notes,
		"updated_by":   in.UpdatedBy,
		"updated_at":   in.UpdatedAt,
	}})
	if err != nil {
		if duplicateOn(err, idxInspectionPending) {
			return domain.ErrPendingInspection
		}
		return fmt.Errorf("transition inspection: %w", err)
	}
	if res.MatchedCount == 1 {
		return nil
	}

	n, err := r.col.CountDocuments(ctx, bson.M{"_id": in.ID, "company_id": in.CompanyID})
	if err != nil {
		return fmt.Errorf("check inspection: %w", err)
	}
	if n == 0 {
		return domain.ErrInspectionNotFound
	}
	return domain.ErrInvalidTransition.WithMessage("A vistoria foi alterada por outra requisição")
}

func (r *InspectionRepository) Delete(ctx context.Context, scope query.Scope, id string) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var gone domain.Inspection
	if err := r.col.FindOneAndDelete(ctx, byID(scope, id)).Decode(&gone); err != nil {
		if isNotFound(err) {
			return domain.ErrInspectionNotFound
		}
		return fmt.Errorf("delete inspection: %w", err)
	}
	if _, err := adjustCount(ctx, r.properties, gone.CompanyID, gone.PropertyID, -1); err != nil {
		return err
	}
	return nil
}

func (r *InspectionRepository) CountByStatus(ctx context.Context, scope query.Scope) (map[domain.InspectionStatus]int64, error) {
	raw, err := countBy(ctx, r.col, scopeFilter(scope), "status")
	if err != nil {
		return nil, err
	}
	out := make(map[domain.InspectionStatus]int64, len(raw))
	for k, v := range raw {
		out[domain.InspectionStatus(k)] = v
	}
	return out, nil
}
