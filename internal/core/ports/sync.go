package ports

import (
	"context"

	"github.com/vistoria/inspection-api/internal/core/domain"
	"github.com/vistoria/inspection-api/internal/core/query"
)

// SyncSpec is the list contract for sync operations.
var SyncSpec = query.Spec{
	SortFields:   []string{"created_at", "updated_at", "status"},
	DefaultSort:  "created_at",
	DefaultOrder: query.Desc,
	SearchFields: []string{"client_op_id", "entity_id"},
}

// SyncFilter carries the list parameters for sync operations.
type SyncFilter struct {
	Scope    query.Scope
	Params   query.Params
	Status   string
	DeviceID string
	UserID   string
}

// SyncRepository is the durable status table of offline operations.
type SyncRepository interface {
	// Create inserts op. When the (company, device, client op id) triple
	// already exists it returns the stored operation and created=false.
	Create(ctx context.Context, op *domain.SyncOperation) (stored *domain.SyncOperation, created bool, err error)
	FindByID(ctx context.Context, scope query.Scope, id string) (*domain.SyncOperation, error)
	List(ctx context.Context, filter SyncFilter) ([]*domain.SyncOperation, int64, error)
	// Claim moves a pending operation to processing and increments its
	// attempts. It returns (nil, nil) when the operation is not pending.
	Claim(ctx context.Context, id string) (*domain.SyncOperation, error)
	Complete(ctx context.Context, id string) error
	// Fail records the error; final=false puts the operation back to pending.
	Fail(ctx context.Context, id string, reason string, final bool) error
	// Unfinished lists operations left pending or processing, oldest first.
	Unfinished(ctx context.Context, limit int) ([]*domain.SyncOperation, error)
}

// SyncClaimer is a fast idempotency guard in front of the repository.
type SyncClaimer interface {
	// Claim reports true the first time a (company, device, op) triple is
	// seen within the guard TTL.
	Claim(ctx context.Context, companyID, deviceID, clientOpID string) (bool, error)
}

// SyncQueue hands operation ids to the background workers.
type SyncQueue interface {
	Enqueue(op *domain.SyncOperation)
}

// SyncOpInput is one operation captured offline.
type SyncOpInput struct {
	ClientOpID string
	Entity     domain.SyncEntity
	EntityID   string
	Action     domain.SyncAction
	Payload    map[string]any
}

// SubmitSyncInput is a batch of offline operations from one device.
type SubmitSyncInput struct {
	DeviceID   string
	Operations []SyncOpInput
}

// SyncSubmitResult reports what happened to one submitted operation.
type SyncSubmitResult struct {
	Operation *domain.SyncOperation
	Duplicate bool
}

// SyncService accepts offline operations and replays them in the background.
type SyncService interface {
	Submit(ctx context.Context, p domain.Principal, in SubmitSyncInput) ([]SyncSubmitResult, error)
	List(ctx context.Context, p domain.Principal, filter SyncFilter) (*query.Page[*domain.SyncOperation], error)
	Get(ctx context.Context, p domain.Principal, id string) (*domain.SyncOperation, error)
	// Process runs one queued operation. A non-nil error means it should be
	// retried later.
	Process(ctx context.Context, id string) error
	// Recover re-enqueues operations left unfinished by a previous run.
	Recover(ctx context.Context) (int, error)
}
