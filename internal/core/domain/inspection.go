package domain

import "time"

// InspectionStatus represents the lifecycle state of an inspection.
type InspectionStatus string

const (
	InspectionPending    InspectionStatus = "pending"
	InspectionInProgress InspectionStatus = "in_progress"
	InspectionCompleted  InspectionStatus = "completed"
	InspectionApproved   InspectionStatus = "approved"
	InspectionCancelled  InspectionStatus = "cancelled"
)

// inspectionTransitions defines the allowed state machine transitions.
var inspectionTransitions = map[InspectionStatus][]InspectionStatus{
	InspectionPending:    {InspectionInProgress, InspectionCancelled},
	InspectionInProgress: {InspectionCompleted, InspectionCancelled},
	InspectionCompleted:  {InspectionApproved, InspectionInProgress},
}

// CanTransitionTo reports whether a transition from s to next is valid.
func (s InspectionStatus) CanTransitionTo(next InspectionStatus) bool {
	for _, allowed := range inspectionTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsReview reports whether moving from s to next is a supervisory decision
// (approving, cancelling, reopening) rather than field work.
func (s InspectionStatus) IsReview(next InspectionStatus) bool {
	switch next {
	case InspectionApproved, InspectionCancelled:
		return true
	case InspectionInProgress:
		return s == InspectionCompleted
	}
	return false
}

// InspectionType describes why an inspection is performed.
type InspectionType string

const (
	InspectionEntry       InspectionType = "entry"
	InspectionExit        InspectionType = "exit"
	InspectionPeriodic    InspectionType = "periodic"
	InspectionMaintenance InspectionType = "maintenance"
)

// Inspection is a scheduled visit to a property.
// ClientID is copied from the property at creation so the client portal can
// list inspections without a join.
type Inspection struct {
	ID            string           `bson:"_id"`
	CompanyID     string           `bson:"company_id"`
	PropertyID    string           `bson:"property_id"`
	ClientID      string           `bson:"client_id,omitempty"`
	InspectorID   string           `bson:"inspector_id,omitempty"`
	Type          InspectionType   `bson:"type"`
	Status        InspectionStatus `bson:"status"`
	ScheduledDate time.Time        `bson:"scheduled_date"`
	StartedAt     *time.Time       `bson:"started_at,omitempty"`
	CompletedAt   *time.Time       `bson:"completed_at,omitempty"`
	Notes         string           `bson:"notes,omitempty"`
	Audit         `bson:",inline"`
}

// InspectionRow is an inspection joined with its inspector and property.
type InspectionRow struct {
	Inspection      `bson:",inline"`
	InspectorName   string `bson:"inspector_name,omitempty"`
	PropertyName    string `bson:"property_name,omitempty"`
	PropertyAddress string `bson:"property_address,omitempty"`
}
