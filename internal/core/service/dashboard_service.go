package service

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/vistoria/inspection-api/internal/core/domain"
	"github.com/vistoria/inspection-api/internal/core/policy"
	"github.com/vistoria/inspection-api/internal/core/ports"
)

type DashboardService struct {
	properties  ports.PropertyRepository
	inspections ports.InspectionRepository
	contests    ports.ContestRepository
	users       ports.UserRepository
	uploads     ports.UploadRepository
	logger      zerolog.Logger
}

func NewDashboardService(
	properties ports.PropertyRepository,
	inspections ports.InspectionRepository,
	contests ports.ContestRepository,
	users ports.UserRepository,
	uploads ports.UploadRepository,
	logger zerolog.Logger,
) *DashboardService {
	return &DashboardService{
		properties:  properties,
		inspections: inspections,
		contests:    contests,
		users:       users,
		uploads:     uploads,
		logger:      logger,
	}
}

// Stats runs the tenant counts concurrently. Any failing count fails the
// whole request.
func (s *DashboardService) Stats(ctx context.Context, p domain.Principal) (*ports.DashboardStats, error) {
	if err := policy.Authorize(p, policy.Resource{Kind: policy.KindDashboard, CompanyID: p.CompanyID}, policy.ActionRead).Err(); err != nil {
		return nil, err
	}
	scope := policy.Scope(p)

	var (
		stats       ports.DashboardStats
		inspections map[domain.InspectionStatus]int64
		contests    map[domain.ContestStatus]int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats.Properties, err = s.properties.Count(gctx, scope)
		return err
	})
	g.Go(func() (err error) {
		inspections, err = s.inspections.CountByStatus(gctx, scope)
		return err
	})
	g.Go(func() (err error) {
		contests, err = s.contests.CountByStatus(gctx, scope)
		return err
	})
	g.Go(func() (err error) {
		stats.ActiveUsers, err = s.users.CountActive(gctx, scope)
		return err
	})
	g.Go(func() (err error) {
		stats.Uploads, stats.UploadBytes, err = s.uploads.Totals(gctx, scope)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error().Err(err).Str("company_id", p.CompanyID).Msg("failed to compute dashboard stats")
		return nil, err
	}

	stats.InspectionsByState = make(map[domain.InspectionStatus]int64, len(inspections))
	for st, n := range inspections {
		stats.InspectionsByState[st] = n
		stats.Inspections += n
	}
	stats.ContestsByState = make(map[domain.ContestStatus]int64, len(contests))
	for st, n := range contests {
		stats.ContestsByState[st] = n
	}
	stats.OpenContests = contests[domain.ContestOpen] + contests[domain.ContestUnderReview]

	return &stats, nil
}
