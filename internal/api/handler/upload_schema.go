package handler

import "time"

// --- Uploads ---

type createUploadRequest struct {
	UploadType  string `form:"upload_type" validate:"required,oneof=inspection property contest document avatar"`
	RelatedID   string `form:"related_id"  validate:"omitempty,uuid"`
	Description string `form:"description" validate:"omitempty,max=500"`
}

type listUploadsRequest struct {
	listQuery
	UploadType string `query:"upload_type" validate:"omitempty,oneof=inspection property contest document avatar"`
	RelatedID  string `query:"related_id"  validate:"omitempty,uuid"`
}

type uploadResponse struct {
	ID          string    `json:"id"`
	UploadType  string    `json:"upload_type"`
	RelatedID   string    `json:"related_id,omitempty"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	Description string    `json:"description,omitempty"`
	DownloadURL string    `json:"download_url"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// --- Sync ---

type syncOperationRequest struct {
	ClientOpID string         `json:"client_op_id" validate:"required,max=100"`
	Entity     string         `json:"entity"       validate:"required,oneof=inspection property"`
	EntityID   string         `json:"entity_id"    validate:"required,uuid"`
	Action     string         `json:"action"       validate:"required,oneof=update transition"`
	Payload    map[string]any `json:"payload"      validate:"required"`
}

type submitSyncRequest struct {
	DeviceID   string                 `json:"device_id"  validate:"required,max=100"`
	Operations []syncOperationRequest `json:"operations" validate:"required,min=1,max=100,dive"`
}

type listSyncRequest struct {
	listQuery
	Status   string `query:"status"    validate:"omitempty,oneof=pending processing completed failed"`
	DeviceID string `query:"device_id" validate:"omitempty,max=100"`
}

type syncOperationResponse struct {
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

type syncSubmitItem struct {
	ID         string `json:"id"`
	ClientOpID string `json:"client_op_id"`
	Status     string `json:"status"`
	Duplicate  bool   `json:"duplicate"`
}
