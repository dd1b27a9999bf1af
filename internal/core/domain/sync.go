package domain

// SyncStatus is the processing state of an offline operation.
type SyncStatus string

const (
	SyncPending    SyncStatus = "pending"
	SyncProcessing SyncStatus = "processing"
	SyncCompleted  SyncStatus = "completed"
	SyncFailed     SyncStatus = "failed"
)

// SyncEntity names the resource an offline operation targets.
type SyncEntity string

const (
	SyncEntityInspection SyncEntity = "inspection"
	SyncEntityProperty   SyncEntity = "property"
)

// SyncAction is what an offline operation does to its entity.
type SyncAction string

const (
	SyncActionUpdate     SyncAction = "update"
	SyncActionTransition SyncAction = "transition"
)

// SyncOperation is a change captured by a device while offline and replayed
// by the sync worker. The (company, device, client op id) triple is unique.
type SyncOperation struct {
	ID         string         `bson:"_id"`
	CompanyID  string         `bson:"company_id"`
	UserID     string         `bson:"user_id"`
	UserRole   Role           `bson:"user_role"`
	DeviceID   string         `bson:"device_id"`
	ClientOpID string         `bson:"client_op_id"`
	Entity     SyncEntity     `bson:"entity"`
	EntityID   string         `bson:"entity_id"`
	Action     SyncAction     `bson:"action"`
	Payload    map[string]any `bson:"payload"`
	Status     SyncStatus     `bson:"status"`
	Attempts   int            `bson:"attempts"`
	LastError  string         `bson:"last_error,omitempty"`
	Audit      `bson:",inline"`
}

// Principal rebuilds the identity that submitted the operation.
func (o *SyncOperation) Principal() Principal {
	return Principal{Type: PrincipalUser, ID: o.UserID, Role: o.UserRole, CompanyID: o.CompanyID}
}
