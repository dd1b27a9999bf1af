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

const collectionContests = "contests"

// ContestRepository implements ports.ContestRepository. A partial unique
// index keeps one unresolved contest per inspection.
type ContestRepository struct {
	col *mongo.Collection
}

func NewContestRepository(db *mongo.Database) *ContestRepository {
	return &ContestRepository{col: db.Collection(collectionContests)}
}

func (r *ContestRepository) Create(ctx context.Context, c *domain.Contest) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, c); err != nil {
		if duplicateOn(err, idxContestOpen) {
			return domain.ErrOpenContest
		}
		return fmt.Errorf("insert contest: %w", err)
	}
	return nil
}

func (r *ContestRepository) FindByID(ctx context.Context, scope query.Scope, id string) (*domain.Contest, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var c domain.Contest
	if err := r.col.FindOne(ctx, byID(scope, id)).Decode(&c); err != nil {
		if isNotFound(err) {
			return nil, domain.ErrContestNotFound
		}
		return nil, fmt.Errorf("find contest: %w", err)
	}
	return &c, nil
}

func (r *ContestRepository) List(ctx context.Context, f ports.ContestFilter) ([]*domain.Contest, int64, error) {
	filter := scopeFilter(f.Scope)
	eq(filter, "status", f.Status)
	eq(filter, "inspection_id", f.InspectionID)
	eq(filter, "client_id", f.ClientID)
	search(filter, f.Params.Search, ports.ContestSpec.SearchFields)
	return findPage[domain.Contest](ctx, r.col, filter, f.Params)
}

// Transition applies the resolution only if the stored status is still from.
func (r *ContestRepository) Transition(ctx context.Context, c *domain.Contest, from domain.ContestStatus) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	filter := bson.M{"_id": c.ID, "company_id": c.CompanyID, "status": from}
	res, err := r.col.UpdateOne(ctx, filter, bson.M{"$set": bson.M{
		"status":      c.Status,
		"response":    c.Response,
		"resolved_by": c.ResolvedBy,
		"resolved_at": c.ResolvedAt,
		"updated_by":  c.UpdatedBy,
		"updated_at":  c.UpdatedAt,
	}})
	if err != nil {
		return fmt.Errorf("transition contest: %w", err)
	}
	if res.MatchedCount == 1 {
		return nil
	}

	n, err := r.col.CountDocuments(ctx, bson.M{"_id": c.ID, "company_id": c.CompanyID})
	if err != nil {
		return fmt.Errorf("check contest: %w", err)
	}
	if n == 0 {
		return domain.ErrContestNotFound
	}
	return domain.ErrInvalidTransition.WithMessage("A contestação foi alterada por outra requisição")
}

func (r *ContestRepository) Delete(ctx context.Context, scope query.Scope, id string) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, byID(scope, id))
	if err != nil {
		return fmt.Errorf("delete contest: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrContestNotFound
	}
	return nil
}

func (r *ContestRepository) CountByStatus(ctx context.Context, scope query.Scope) (map[domain.ContestStatus]int64, error) {
	raw, err := countBy(ctx, r.col, scopeFilter(scope), "status")
	if err != nil {
		return nil, err
	}
	out := make(map[domain.ContestStatus]int64, len(raw))
	for k, v := range raw {
		out[domain.ContestStatus(k)] = v
	}
	return out, nil
}
