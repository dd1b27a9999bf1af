package handler

import "time"

// --- Users ---

type registerRequest struct {
	CompanyName     string `json:"company_name"     validate:"required,min=2,max=200"`
	CompanyDocument string `json:"company_document" validate:"omitempty,max=30"`
	Name            string `json:"name"             validate:"required,min=2,max=200"`
	Email           string `json:"email"            validate:"required,email"`
	Password        string `json:"password"         validate:"required,min=6,max=128"`
	Phone           string `json:"phone"            validate:"omitempty,max=30"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expires_at"`
	User      userResponse     `json:"user"`
	Company   *companyResponse `json:"company,omitempty"`
}

// --- Clients ---

type clientRegisterRequest struct {
	Name     string `json:"name"     validate:"required,min=2,max=200"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=128"`
	Phone    string `json:"phone"    validate:"omitempty,max=30"`
	Document string `json:"document" validate:"omitempty,max=30"`
}

type clientResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Document  string    `json:"document,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type clientSessionResponse struct {
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expires_at"`
	Client    clientResponse `json:"client"`
}
