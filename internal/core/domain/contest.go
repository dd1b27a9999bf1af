package domain

import "time"

// ContestStatus is the lifecycle state of a contest.
type ContestStatus string

const (
	ContestOpen        ContestStatus = "open"
	ContestUnderReview ContestStatus = "under_review"
	ContestAccepted    ContestStatus = "accepted"
	ContestRejected    ContestStatus = "rejected"
)

var contestTransitions = map[ContestStatus][]ContestStatus{
	ContestOpen:        {ContestUnderReview, ContestAccepted, ContestRejected},
	ContestUnderReview: {ContestAccepted, ContestRejected},
}

// CanTransitionTo reports whether a transition from s to next is valid.
func (s ContestStatus) CanTransitionTo(next ContestStatus) bool {
	for _, allowed := range contestTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Final reports whether no further transitions are possible.
func (s ContestStatus) Final() bool {
	return s == ContestAccepted || s == ContestRejected
}

// Contest is a client's dispute of a completed inspection.
type Contest struct {
	ID           string        `bson:"_id"`
	CompanyID    string        `bson:"company_id"`
	InspectionID string        `bson:"inspection_id"`
	ClientID     string        `bson:"client_id"`
	Reason       string        `bson:"reason"`
	Description  string        `bson:"description,omitempty"`
	Status       ContestStatus `bson:"status"`
	Response     string        `bson:"response,omitempty"`
	ResolvedBy   string        `bson:"resolved_by,omitempty"`
	ResolvedAt   *time.Time    `bson:"resolved_at,omitempty"`
	Audit        `bson:",inline"`
}
