package handler

import "time"

// --- Companies ---

type listCompaniesRequest struct {
	listQuery
	Status string `query:"status" validate:"omitempty,oneof=active suspended"`
}

type updateCompanyRequest struct {
	Name    *string `json:"name"    validate:"omitempty,min=2,max=200"`
	Email   *string `json:"email"   validate:"omitempty,email"`
	Phone   *string `json:"phone"   validate:"omitempty,max=30"`
	Address *string `json:"address" validate:"omitempty,max=300"`
}

type companyStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active suspended"`
}

type companyResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Document  string    `json:"document,omitempty"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// --- Users ---

type listUsersRequest struct {
	listQuery
	Role   string `query:"role"   validate:"omitempty,oneof=super_admin admin manager inspector viewer"`
	Status string `query:"status" validate:"omitempty,oneof=active inactive"`
}

type createUserRequest struct {
	Name      string `json:"name"       validate:"required,min=2,max=200"`
	Email     string `json:"email"      validate:"required,email"`
	Password  string `json:"password"   validate:"required,min=6,max=128"`
	Phone     string `json:"phone"      validate:"omitempty,max=30"`
	Role      string `json:"role"       validate:"required,oneof=admin manager inspector viewer"`
	CompanyID string `json:"company_id" validate:"omitempty,uuid"`
}

type updateUserRequest struct {
	Name     *string `json:"name"     validate:"omitempty,min=2,max=200"`
	Phone    *string `json:"phone"    validate:"omitempty,max=30"`
	Password *string `json:"password" validate:"omitempty,min=6,max=128"`
	Role     *string `json:"role"     validate:"omitempty,oneof=admin manager inspector viewer"`
	Status   *string `json:"status"   validate:"omitempty,oneof=active inactive"`
}

type userResponse struct {
	ID          string     `json:"id"`
	CompanyID   string     `json:"company_id,omitempty"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone,omitempty"`
	Role        string     `json:"role"`
	Status      string     `json:"status"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// --- Dashboard ---

type dashboardResponse struct {
	Properties         int64            `json:"properties"`
	Inspections        int64            `json:"inspections"`
	InspectionsByState map[string]int64 `json:"inspections_by_status"`
	OpenContests       int64            `json:"open_contests"`
	ContestsByState    map[string]int64 `json:"contests_by_status"`
	ActiveUsers        int64            `json:"active_users"`
	Uploads            int64            `json:"uploads"`
	UploadBytes        int64            `json:"upload_bytes"`
}
