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

const collectionProperties = "properties"

// PropertyRepository implements ports.PropertyRepository. The
// inspection_count field is owned by InspectionRepository.
type PropertyRepository struct {
	col *mongo.Collection
}

func NewPropertyRepository(db *mongo.Database) *PropertyRepository {
	return &PropertyRepository{col: db.Collection(collectionProperties)}
}

func (r *PropertyRepository) Create(ctx context.Context, p *domain.Property) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, p); err != nil {
		return fmt.Errorf("insert property: %w", err)
	}
	return nil
}

func (r *PropertyRepository) FindByID(ctx context.Context, scope query.Scope, id string) (*domain.Property, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var p domain.Property
	if err := r.col.FindOne(ctx, byID(scope, id)).Decode(&p); err != nil {
		if isNotFound(err) {
			return nil, domain.ErrPropertyNotFound
		}
		return nil, fmt.Errorf("find property: %w", err)
	}
	return &p, nil
}

func (r *PropertyRepository) List(ctx context.Context, f ports.PropertyFilter) ([]*domain.Property, int64, error) {
	filter := scopeFilter(f.Scope)
	eq(filter, "status", f.Status)
	eq(filter, "property_type", f.PropertyType)
	eq(filter, "client_id", f.ClientID)
	eq(filter, "city", f.City)
	search(filter, f.Params.Search, ports.PropertySpec.SearchFields)
	return findPage[domain.Property](ctx, r.col, filter, f.Params)
}

func (r *PropertyRepository) Update(ctx context.Context, p *domain.Property) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": p.ID, "company_id": p.CompanyID}, bson.M{"$set": bson.M{
		"client_id":     p.ClientID,
		"name":          p.Name,
		"address":       p.Address,
		"city":          p.City,
		"state":         p.State,
		"zip_code":      p.ZipCode,
		"property_type": p.PropertyType,
		"status":        p.Status,
		"owner_name":    p.OwnerName,
		"notes":         p.Notes,
		"updated_by":    p.UpdatedBy,
		"updated_at":    p.UpdatedAt,
	}})
	if err != nil {
		return fmt.Errorf("update property: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrPropertyNotFound
	}
	return nil
}

// Delete removes the property only while no inspection references it. The
// count check and the delete are one atomic statement.
func (r *PropertyRepository) Delete(ctx context.Context, scope query.Scope, id string) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	filter := byID(scope, id)
	filter["inspection_count"] = bson.M{"$lte": 0}
	res, err := r.col.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("delete property: %w", err)
	}
	if res.DeletedCount == 1 {
		return nil
	}

	n, err := r.col.CountDocuments(ctx, byID(scope, id))
	if err != nil {
		return fmt.Errorf("check property: %w", err)
	}
	if n > 0 {
		return domain.ErrPropertyHasInspection
	}
	return domain.ErrPropertyNotFound
}

func (r *PropertyRepository) Count(ctx context.Context, scope query.Scope) (int64, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	return r.col.CountDocuments(ctx, scopeFilter(scope))
}

// adjustCount moves the inspection counter of a property. It reports false
// when the property does not exist in the company.
func adjustCount(ctx context.Context, col *mongo.Collection, companyID, propertyID string, delta int) (bool, error) {
	res, err := col.UpdateOne(ctx,
		bson.M{"_id": propertyID, "company_id": companyID},
		bson.M{"$inc": bson.M{"inspection_count": delta}},
	)
	if err != nil {
		return false, fmt.Errorf("adjust inspection count: %w", err)
	}
	return res.MatchedCount == 1, nil
}
