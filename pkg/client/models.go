package client

import "time"

// FieldError is one invalid input field reported by the API.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

type Property struct {
	ID           string    `json:"id"`
	CompanyID    string    `json:"company_id"`
	ClientID     string    `json:"client_id,omitempty"`
	Name         string    `json:"name"`
	Address      string    `json:"address"`
	City         string    `json:"city"`
	State        string    `json:"state,omitempty"`
	ZipCode      string    `json:"zip_code,omitempty"`
	PropertyType string    `json:"property_type"`
	Status       string    `json:"status"`
	OwnerName    string    `json:"owner_name,omitempty"`
	Notes        string    `json:"notes,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type PropertyPage struct {
	Properties []Property `json:"properties"`
	Pagination Pagination `json:"pagination"`
}

// Ref is the embedded summary of a related row.
type Ref struct {
	ID      string `json:"id"`
	Name    string `json:"name,omitempty"`
	Address string `json:"address,omitempty"`
}

type Inspection struct {
	ID            string     `json:"id"`
	CompanyID     string     `json:"company_id"`
	Property      Ref        `json:"property"`
	ClientID      string     `json:"client_id,omitempty"`
	Inspector     *Ref       `json:"inspector"`
	Type          string     `json:"type"`
	Status        string     `json:"status"`
	ScheduledDate time.Time  `json:"scheduled_date"`
	StartedAt     *time.Time `json:"started_at,omitempty"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	Notes         string     `json:"notes,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

type InspectionPage struct {
	Inspections []Inspection `json:"inspections"`
	Pagination  Pagination   `json:"pagination"`
}

// SyncOperation is one change captured while the device was offline.
type SyncOperation struct {
	ClientOpID string         `json:"client_op_id"`
	Entity     string         `json:"entity"`
	EntityID   string         `json:"entity_id"`
	Action     string         `json:"action"`
	Payload    map[string]any `json:"payload"`
}

// SyncReceipt acknowledges one pushed operation.
type SyncReceipt struct {
	ID         string `json:"id"`
	ClientOpID string `json:"client_op_id"`
	Status     string `json:"status"`
	Duplicate  bool   `json:"duplicate"`
}

// SyncState is the server-side progress of a pushed operation.
type SyncState struct {
	ID         string    `json:"id"`
	DeviceID   string    `json:"device_id"`
	ClientOpID string    `json:"client_op_id"`
	Entity     string    `json:"entity"`
	EntityID   string    `json:"entity_id"`
	Action     string    `json:"action"`
	Status     string    `json:"status"`
	Attempts   int       `json:"attempts"`
	LastError  string    `json:"last_error,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
