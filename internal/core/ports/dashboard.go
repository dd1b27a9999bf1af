package ports

import (
	"context"

	"github.com/vistoria/inspection-api/internal/core/domain"
)

// DashboardStats is the aggregate shown on the portal home page.
type DashboardStats struct {
	Properties         int64
	Inspections        int64
	InspectionsByState map[domain.InspectionStatus]int64
	OpenContests       int64
	ContestsByState    map[domain.ContestStatus]int64
	ActiveUsers        int64
	Uploads            int64
	UploadBytes        int64
}

// DashboardService computes tenant statistics.
type DashboardService interface {
	Stats(ctx context.Context, p domain.Principal) (*DashboardStats, error)
}
