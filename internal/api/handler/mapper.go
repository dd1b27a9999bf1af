package handler

import (
	"github.com/vistoria/inspection-api/internal/core/domain"
	"github.com/vistoria/inspection-api/internal/core/ports"
)

// --- Domain → Response ---

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:          u.ID,
		CompanyID:   u.CompanyID,
		Name:        u.Name,
		Email:       u.Email,
		Phone:       u.Phone,
		Role:        string(u.Role),
		Status:      string(u.Status),
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

func toCompanyResponse(c *domain.Company) companyResponse {
	return companyResponse{
		ID:        c.ID,
		Name:      c.Name,
		Document:  c.Document,
		Email:     c.Email,
		Phone:     c.Phone,
		Address:   c.Address,
		Status:    string(c.Status),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func toAuthResponse(r *ports.AuthResult) authResponse {
	out := authResponse{Token: r.Token, ExpiresAt: r.ExpiresAt, User: toUserResponse(r.User)}
	if r.Company != nil {
		c := toCompanyResponse(r.Company)
		out.Company = &c
	}
	return out
}

func toClientResponse(c *domain.Client) clientResponse {
	return clientResponse{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		Document:  c.Document,
		CreatedAt: c.CreatedAt,
	}
}

func toPropertyResponse(p *domain.Property) propertyResponse {
	return propertyResponse{
		ID:           p.ID,
		CompanyID:    p.CompanyID,
		ClientID:     p.ClientID,
		Name:         p.Name,
		Address:      p.Address,
		City:         p.City,
		State:        p.State,
		ZipCode:      p.ZipCode,
		PropertyType: string(p.PropertyType),
		Status:       string(p.Status),
		OwnerName:    p.OwnerName,
		Notes:        p.Notes,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

// toInspectionResponse nests the joined names under property and inspector.
func toInspectionResponse(r *domain.InspectionRow) inspectionResponse {
	out := inspectionResponse{
		ID:            r.ID,
		CompanyID:     r.CompanyID,
		Property:      refResponse{ID: r.PropertyID, Name: r.PropertyName, Address: r.PropertyAddress},
		ClientID:      r.ClientID,
		Type:          string(r.Type),
		Status:        string(r.Status),
		ScheduledDate: r.ScheduledDate,
		StartedAt:     r.StartedAt,
		CompletedAt:   r.CompletedAt,
		Notes:         r.Notes,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
	if r.InspectorID != "" {
		out.Inspector = &refResponse{ID: r.InspectorID, Name: r.InspectorName}
	}
	return out
}

func toUploadResponse(u *domain.Upload) uploadResponse {
	return uploadResponse{
		ID:          u.ID,
		UploadType:  string(u.UploadType),
		RelatedID:   u.RelatedID,
		FileName:    u.FileName,
		ContentType: u.ContentType,
		Size:        u.Size,
		Description: u.Description,
		DownloadURL: "/v1/uploads/" + u.ID + "/download",
		CreatedBy:   u.CreatedBy,
		CreatedAt:   u.CreatedAt,
	}
}

func toContestResponse(c *domain.Contest) contestResponse {
	return contestResponse{
		ID:           c.ID,
		CompanyID:    c.CompanyID,
		InspectionID: c.InspectionID,
		ClientID:     c.ClientID,
		Reason:       c.Reason,
		Description:  c.Description,
		Status:       string(c.Status),
		Response:     c.Response,
		ResolvedBy:   c.ResolvedBy,
		ResolvedAt:   c.ResolvedAt,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

func toSyncOperationResponse(op *domain.SyncOperation) syncOperationResponse {
	return syncOperationResponse{
		ID:         op.ID,
		DeviceID:   op.DeviceID,
		ClientOpID: op.ClientOpID,
		Entity:     string(op.Entity),
		EntityID:   op.EntityID,
		Action:     string(op.Action),
		Status:     string(op.Status),
		Attempts:   op.Attempts,
		LastError:  op.LastError,
		CreatedAt:  op.CreatedAt,
		UpdatedAt:  op.UpdatedAt,
	}
}

func toDashboardResponse(s *ports.DashboardStats) dashboardResponse {
	out := dashboardResponse{
		Properties:         s.Properties,
		Inspections:        s.Inspections,
		InspectionsByState: make(map[string]int64, len(s.InspectionsByState)),
		OpenContests:       s.OpenContests,
		ContestsByState:    make(map[string]int64, len(s.ContestsByState)),
		ActiveUsers:        s.ActiveUsers,
		Uploads:            s.Uploads,
		UploadBytes:        s.UploadBytes,
	}
	for k, v := range s.InspectionsByState {
		out.InspectionsByState[string(k)] = v
	}
	for k, v := range s.ContestsByState {
		out.ContestsByState[string(k)] = v
	}
	return out
}

// --- Request → Service input ---

func toUpdatePropertyInput(req updatePropertyRequest) ports.UpdatePropertyInput {
	in := ports.UpdatePropertyInput{
		ClientID:  req.ClientID,
		Name:      req.Name,
		Address:   req.Address,
		City:      req.City,
		State:     req.State,
		ZipCode:   req.ZipCode,
		OwnerName: req.OwnerName,
		Notes:     req.Notes,
	}
	if req.PropertyType != nil {
		t := domain.PropertyType(*req.PropertyType)
		in.PropertyType = &t
	}
	if req.Status != nil {
		s := domain.PropertyStatus(*req.Status)
		in.Status = &s
	}
	return in
}

func toUpdateUserInput(req updateUserRequest) ports.UpdateUserInput {
	in := ports.UpdateUserInput{Name: req.Name, Phone: req.Phone, Password: req.Password}
	if req.Role != nil {
		r := domain.Role(*req.Role)
		in.Role = &r
	}
	if req.Status != nil {
		s := domain.UserStatus(*req.Status)
		in.Status = &s
	}
	return in
}

func toUpdateInspectionInput(req updateInspectionRequest) ports.UpdateInspectionInput {
	in := ports.UpdateInspectionInput{
		InspectorID:   req.InspectorID,
		ScheduledDate: req.ScheduledDate,
		Notes:         req.Notes,
	}
	if req.Type != nil {
		t := domain.InspectionType(*req.Type)
		in.Type = &t
	}
	return in
}

func toSubmitSyncInput(req submitSyncRequest) ports.SubmitSyncInput {
	ops := make([]ports.SyncOpInput, len(req.Operations))
	for i, op := range req.Operations {
		ops[i] = ports.SyncOpInput{
			ClientOpID: op.ClientOpID,
			Entity:     domain.SyncEntity(op.Entity),
			EntityID:   op.EntityID,
			Action:     domain.SyncAction(op.Action),
			Payload:    op.Payload,
		}
	}
	return ports.SubmitSyncInput{DeviceID: req.DeviceID, Operations: ops}
}
