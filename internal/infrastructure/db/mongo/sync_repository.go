package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vistoria/inspection-api/internal/core/domain"
	"github.com/vistoria/inspection-api/internal/core/ports"
	"github.com/vistoria/inspection-api/internal/core/query"
)

const collectionSync = "sync_operations"

// SyncRepository is the durable sync queue. The unique index on
// (company_id, device_id, client_op_id) makes Create idempotent.
type SyncRepository struct {
	col *mongo.Collection
	now func() time.Time
}

func NewSyncRepository(db *mongo.Database) *SyncRepository {
	return &SyncRepository{
		col: db.Collection(collectionSync),
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Create inserts op. When the device already sent the same client op id the
// stored operation is returned with created false.
func (r *SyncRepository) Create(ctx context.Context, op *domain.SyncOperation) (*domain.SyncOperation, bool, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	_, err := r.col.InsertOne(ctx, op)
	if err == nil {
		return op, true, nil
	}
	if !duplicateOn(err, idxSyncClientOp) {
		return nil, false, fmt.Errorf("insert sync operation: %w", err)
	}

	var stored domain.SyncOperation
	filter := bson.M{"company_id": op.CompanyID, "device_id": op.DeviceID, "client_op_id": op.ClientOpID}
	if err := r.col.FindOne(ctx, filter).Decode(&stored); err != nil {
		return nil, false, fmt.Errorf("find duplicate sync operation: %w", err)
	}
	return &stored, false, nil
}

func (r *SyncRepository) FindByID(ctx context.Context, scope query.Scope, id string) (*domain.SyncOperation, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var op domain.SyncOperation
	if err := r.col.FindOne(ctx, byID(scope, id)).Decode(&op); err != nil {
		if isNotFound(err) {
			return nil, domain.ErrSyncNotFound
		}
		return nil, fmt.Errorf("find sync operation: %w", err)
	}
	return &op, nil
}

func (r *SyncRepository) List(ctx context.Context, f ports.SyncFilter) ([]*domain.SyncOperation, int64, error) {
	filter := scopeFilter(f.Scope)
	eq(filter, "status", f.Status)
	eq(filter, "device_id", f.DeviceID)
	eq(filter, "user_id", f.UserID)
	search(filter, f.Params.Search, ports.SyncSpec.SearchFields)
	return findPage[domain.SyncOperation](ctx, r.col, filter, f.Params)
}

// Claim moves a pending operation to processing and counts the attempt. It
// returns nil without error when the operation is not pending, so two workers
// never apply the same operation.
func (r *SyncRepository) Claim(ctx context.Context, id string) (*domain.SyncOperation, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	update := bson.M{
		"$set": bson.M{"status": domain.SyncProcessing, "updated_at": r.now()},
		"$inc": bson.M{"attempts": 1},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var op domain.SyncOperation
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id, "status": domain.SyncPending}, update, opts).Decode(&op)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("claim sync operation: %w", err)
	}
	return &op, nil
}

func (r *SyncRepository) Complete(ctx context.Context, id string) error {
	return r.finish(ctx, id, domain.SyncCompleted, "")
}

// Fail records reason. A final failure parks the operation; otherwise it goes
// back to pending for another attempt.
func (r *SyncRepository) Fail(ctx context.Context, id string, reason string, final bool) error {
	status := domain.SyncPending
	if final {
		status = domain.SyncFailed
	}
	return r.finish(ctx, id, status, reason)
}

func (r *SyncRepository) finish(ctx context.Context, id string, status domain.SyncStatus, reason string) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"status":     status,
		"last_error": reason,
		"updated_at": r.now(),
	}})
	if err != nil {
		return fmt.Errorf("update sync operation: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrSyncNotFound
	}
	return nil
}

// Unfinished returns pending and processing operations, oldest first.
func (r *SyncRepository) Unfinished(ctx context.Context, limit int) ([]*domain.SyncOperation, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	filter := bson.M{"status": bson.M{"$in": bson.A{domain.SyncPending, domain.SyncProcessing}}}
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}).SetLimit(int64(limit))

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find unfinished sync operations: %w", err)
	}
	var out []*domain.SyncOperation
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode sync operations: %w", err)
	}
	return out, nil
}
