package domain

import "time"

// Audit holds the bookkeeping fields shared by every tenant-owned record.
type Audit struct {
	CreatedBy string    `bson:"created_by,omitempty"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedBy string    `bson:"updated_by,omitempty"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// Stamp sets the creation and update fields.
func (a *Audit) Stamp(by string, at time.Time) {
	a.CreatedBy, a.CreatedAt = by, at
	a.UpdatedBy, a.UpdatedAt = by, at
}

// CompanyStatus is the lifecycle state of a tenant.
type CompanyStatus string

const (
	CompanyActive    CompanyStatus = "active"
	CompanySuspended CompanyStatus = "suspended"
)

// Company is a tenant. Every other resource row carries its id.
type Company struct {
	ID       string        `bson:"_id"`
	Name     string        `bson:"name"`
	Document string        `bson:"document,omitempty"`
	Email    string        `bson:"email,omitempty"`
	Phone    string        `bson:"phone,omitempty"`
	Address  string        `bson:"address,omitempty"`
	Status   CompanyStatus `bson:"status"`
	Audit    `bson:",inline"`
}

func (c *Company) Active() bool { return c.Status == CompanyActive }
