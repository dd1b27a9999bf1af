package handler

import "time"

// --- Properties ---

type listPropertiesRequest struct {
	listQuery
	Status       string `query:"status"        validate:"omitempty,oneof=active inactive"`
	PropertyType string `query:"property_type" validate:"omitempty,oneof=residential commercial industrial land"`
	ClientID     string `query:"client_id"     validate:"omitempty,uuid"`
	City         string `query:"city"          validate:"omitempty,max=100"`
}

type createPropertyRequest struct {
	CompanyID    string `json:"company_id"    validate:"omitempty,uuid"`
	ClientID     string `json:"client_id"     validate:"omitempty,uuid"`
	Name         string `json:"name"          validate:"required,min=2,max=200"`
	Address      string `json:"address"       validate:"required,min=5,max=300"`
	City         string `json:"city"          validate:"required,max=100"`
	State        string `json:"state"         validate:"omitempty,max=50"`
	ZipCode      string `json:"zip_code"      validate:"omitempty,max=20"`
	PropertyType string `json:"property_type" validate:"required,oneof=residential commercial industrial land"`
	OwnerName    string `json:"owner_name"    validate:"omitempty,max=200"`
	Notes        string `json:"notes"         validate:"omitempty,max=2000"`
}

type updatePropertyRequest struct {
	ClientID     *string `json:"client_id"     validate:"omitempty,uuid"`
	Name         *string `json:"name"          validate:"omitempty,min=2,max=200"`
	Address      *string `json:"address"       validate:"omitempty,min=5,max=300"`
	City         *string `json:"city"          validate:"omitempty,max=100"`
	State        *string `json:"state"         validate:"omitempty,max=50"`
	ZipCode      *string `json:"zip_code"      validate:"omitempty,max=20"`
	PropertyType *string `json:"property_type" validate:"omitempty,oneof=residential commercial industrial land"`
	Status       *string `json:"status"        validate:"omitempty,oneof=active inactive"`
	OwnerName    *string `json:"owner_name"    validate:"omitempty,max=200"`
	Notes        *string `json:"notes"         validate:"omitempty,max=2000"`
}

type propertyResponse struct {
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

// --- Inspections ---

type listInspectionsRequest struct {
	listQuery
	Status      string `query:"status"       validate:"omitempty,oneof=pending in_progress completed approved cancelled"`
	InspectorID string `query:"inspector_id" validate:"omitempty,uuid"`
	PropertyID  string `query:"property_id"  validate:"omitempty,uuid"`
	Type        string `query:"type"         validate:"omitempty,oneof=entry exit periodic maintenance"`
	FromDate    string `query:"from_date"    validate:"omitempty,datetime=2006-01-02"`
	ToDate      string `query:"to_date"      validate:"omitempty,datetime=2006-01-02"`
}

type createInspectionRequest struct {
	PropertyID    string    `json:"property_id"    validate:"required,uuid"`
	InspectorID   string    `json:"inspector_id"   validate:"omitempty,uuid"`
	Type          string    `json:"type"           validate:"required,oneof=entry exit periodic maintenance"`
	ScheduledDate time.Time `json:"scheduled_date" validate:"required"`
	Notes         string    `json:"notes"          validate:"omitempty,max=5000"`
}

type updateInspectionRequest struct {
	InspectorID   *string    `json:"inspector_id"   validate:"omitempty,uuid"`
	Type          *string    `json:"type"           validate:"omitempty,oneof=entry exit periodic maintenance"`
	ScheduledDate *time.Time `json:"scheduled_date"`
	Notes         *string    `json:"notes"          validate:"omitempty,max=5000"`
}

type inspectionStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=in_progress completed approved cancelled"`
	Notes  string `json:"notes"  validate:"omitempty,max=5000"`
}

type refResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name,omitempty"`
	Address string `json:"address,omitempty"`
}

type inspectionResponse struct {
	ID            string       `json:"id"`
	CompanyID     string       `json:"company_id"`
	Property      refResponse  `json:"property"`
	ClientID      string       `json:"client_id,omitempty"`
	Inspector     *refResponse `json:"inspector"`
	Type          string       `json:"type"`
	Status        string       `json:"status"`
	ScheduledDate time.Time    `json:"scheduled_date"`
	StartedAt     *time.Time   `json:"started_at,omitempty"`
	CompletedAt   *time.Time   `json:"completed_at,omitempty"`
	Notes         string       `json:"notes,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// --- Contests ---

type listContestsRequest struct {
	listQuery
	Status       string `query:"status"        validate:"omitempty,oneof=open under_review accepted rejected"`
	InspectionID string `query:"inspection_id" validate:"omitempty,uuid"`
}

type createContestRequest struct {
	InspectionID string `json:"inspection_id" validate:"required,uuid"`
	Reason       string `json:"reason"        validate:"required,min=5,max=500"`
	Description  string `json:"description"   validate:"omitempty,max=5000"`
}

type resolveContestRequest struct {
	Status   string `json:"status"   validate:"required,oneof=under_review accepted rejected"`
	Response string `json:"response" validate:"omitempty,max=5000"`
}

type contestResponse struct {
	ID           string     `json:"id"`
	CompanyID    string     `json:"company_id"`
	InspectionID string     `json:"inspection_id"`
	ClientID     string     `json:"client_id"`
	Reason       string     `json:"reason"`
	Description  string     `json:"description,omitempty"`
	Status       string     `json:"status"`
	Response     string     `json:"response,omitempty"`
	ResolvedBy   string     `json:"resolved_by,omitempty"`
	ResolvedAt   *time.Time `json:"resolved_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
