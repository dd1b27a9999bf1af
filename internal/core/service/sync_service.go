package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/vistoria/inspection-api/internal/core/domain"
	"github.com/vistoria/inspection-api/internal/core/policy"
	"github.com/vistoria/inspection-api/internal/core/ports"
	"github.com/vistoria/inspection-api/internal/core/query"
	"github.com/vistoria/inspection-api/internal/pkg/metrics"
)

const recoverBatch = 1000

type SyncService struct {
	repo        ports.SyncRepository
	claimer     ports.SyncClaimer
	queue       ports.SyncQueue
	inspections ports.InspectionService
	properties  ports.PropertyService
	maxAttempts int
	logger      zerolog.Logger
	now         func() time.Time

	mu sync.Mutex
	// unsaved holds outcomes of applied operations whose status write failed.
	unsaved map[string]outcome
}

// outcome is the status to record for an operation that has been applied.
type outcome struct {
	completed bool
	reason    string
	final     bool
}

func NewSyncService(
	repo ports.SyncRepository,
	claimer ports.SyncClaimer,
	inspections ports.InspectionService,
	properties ports.PropertyService,
	maxAttempts int,
	logger zerolog.Logger,
) *SyncService {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	return &SyncService{
		repo:        repo,
		claimer:     claimer,
		inspections: inspections,
		properties:  properties,
		maxAttempts: maxAttempts,
		logger:      logger,
		now:         utcNow,
		unsaved:     make(map[string]outcome),
	}
}

// SetQueue attaches the dispatcher. The queue needs the service as its
// handler, so it is wired after construction.
func (s *SyncService) SetQueue(q ports.SyncQueue) { s.queue = q }

// Submit records a batch of offline operations and queues the new ones.
// Operations the device already sent are reported as duplicates and are not
// replayed again.
func (s *SyncService) Submit(ctx context.Context, p domain.Principal, in ports.SubmitSyncInput) ([]ports.SyncSubmitResult, error) {
	if err := policy.Authorize(p, policy.Resource{Kind: policy.KindSync, CompanyID: p.CompanyID}, policy.ActionCreate).Err(); err != nil {
		return nil, err
	}
	if p.CompanyID == "" {
		return nil, domain.ErrForbidden.WithMessage("Sincronização exige uma empresa")
	}
	for i, op := range in.Operations {
		if !supported(op.Entity, op.Action) {
			return nil, domain.ErrSyncUnsupported.WithFields(domain.FieldError{
				Field:   fmt.Sprintf("operations[%d]", i),
				Message: string(op.Entity) + "/" + string(op.Action),
			})
		}
	}

	results := make([]ports.SyncSubmitResult, 0, len(in.Operations))
	for _, op := range in.Operations {
		res, err := s.submitOne(ctx, p, in.DeviceID, op)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}

func (s *SyncService) submitOne(ctx context.Context, p domain.Principal, deviceID string, in ports.SyncOpInput) (ports.SyncSubmitResult, error) {
	fresh := true
	if s.claimer != nil {
		ok, err := s.claimer.Claim(ctx, p.CompanyID, deviceID, in.ClientOpID)
		if err != nil {
			// the unique index still guards against duplicates
			s.logger.Warn().Err(err).Str("client_op_id", in.ClientOpID).Msg("sync claim unavailable")
		} else {
			fresh = ok
		}
	}

	op := &domain.SyncOperation{
		ID:         newID(),
		CompanyID:  p.CompanyID,
		UserID:     p.ID,
		UserRole:   p.Role,
		DeviceID:   deviceID,
		ClientOpID: in.ClientOpID,
		Entity:     in.Entity,
		EntityID:   in.EntityID,
		Action:     in.Action,
		Payload:    in.Payload,
		Status:     domain.SyncPending,
	}
	op.Stamp(p.ID, s.now())

	stored, created, err := s.repo.Create(ctx, op)
	if err != nil {
		return ports.SyncSubmitResult{}, err
	}
	if !created {
		metrics.SyncDuplicatesTotal.Inc()
		s.logger.Debug().Str("client_op_id", in.ClientOpID).Str("device_id", deviceID).Bool("claimed", fresh).Msg("duplicate sync operation skipped")
		return ports.SyncSubmitResult{Operation: stored, Duplicate: true}, nil
	}

	if s.queue != nil {
		s.queue.Enqueue(stored)
	}
	return ports.SyncSubmitResult{Operation: stored}, nil
}

func supported(e domain.SyncEntity, a domain.SyncAction) bool {
	switch e {
	case domain.SyncEntityInspection:
		return a == domain.SyncActionUpdate || a == domain.SyncActionTransition
	case domain.SyncEntityProperty:
		return a == domain.SyncActionUpdate
	}
	return false
}

// List returns sync operations. Field users only see their own.
func (s *SyncService) List(ctx context.Context, p domain.Principal, filter ports.SyncFilter) (*query.Page[*domain.SyncOperation], error) {
	res := policy.Resource{Kind: policy.KindSync, CompanyID: p.CompanyID}
	if !policy.Authorize(p, res, policy.ActionRead).Allowed {
		res.OwnerID = p.ID
		if err := policy.Authorize(p, res, policy.ActionRead).Err(); err != nil {
			return nil, err
		}
		filter.UserID = p.ID
	}
	filter.Scope = policy.Scope(p)

	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return query.NewPage(items, total, filter.Params), nil
}

func (s *SyncService) Get(ctx context.Context, p domain.Principal, id string) (*domain.SyncOperation, error) {
	op, err := s.repo.FindByID(ctx, policy.Scope(p), id)
	if err != nil {
		return nil, err
	}
	res := policy.Resource{Kind: policy.KindSync, CompanyID: op.CompanyID, OwnerID: op.UserID}
	if err := policy.Authorize(p, res, policy.ActionRead).Err(); err != nil {
		return nil, err
	}
	return op, nil
}

// Process replays one operation as the user that submitted it. Business
// errors fail the operation for good; other errors are retried until the
// attempt budget runs out.
func (s *SyncService) Process(ctx context.Context, id string) error {
	if o, ok := s.unsavedOutcome(id); ok {
		if err := s.save(ctx, id, o); err != nil {
			return err
		}
		s.logger.Info().Str("sync_id", id).Bool("completed", o.completed).Msg("sync operation status recorded")
		if !o.completed && !o.final {
			// back to pending; ask the dispatcher for another attempt
			return fmt.Errorf("sync operation %s: %s", id, o.reason)
		}
		return nil
	}

	op, err := s.repo.Claim(ctx, id)
	if err != nil {
		return err
	}
	if op == nil {
		return nil
	}

	start := time.Now()
	applyErr := s.apply(ctx, op)
	log := s.logger.With().Str("sync_id", op.ID).Str("entity", string(op.Entity)).Str("entity_id", op.EntityID).Int("attempt", op.Attempts).Logger()

	if applyErr == nil {
		metrics.SyncProcessingDuration.WithLabelValues("completed").Observe(time.Since(start).Seconds())
		if err := s.save(ctx, op.ID, outcome{completed: true}); err != nil {
			log.Warn().Err(err).Msg("sync operation applied but status write failed")
			return err
		}
		metrics.SyncOperationsProcessedTotal.WithLabelValues(string(op.Entity), "completed").Inc()
		log.Info().Msg("sync operation applied")
		return nil
	}

	metrics.SyncProcessingDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
	final := domain.KindOf(applyErr) != domain.KindInternal || op.Attempts >= s.maxAttempts
	if err := s.save(ctx, op.ID, outcome{reason: applyErr.Error(), final: final}); err != nil {
		log.Warn().Err(err).Msg("sync operation status write failed")
		return err
	}

	if final {
		metrics.SyncOperationsProcessedTotal.WithLabelValues(string(op.Entity), "failed").Inc()
		log.Warn().Err(applyErr).Msg("sync operation failed")
		return nil
	}
	metrics.SyncOperationsProcessedTotal.WithLabelValues(string(op.Entity), "retried").Inc()
	log.Warn().Err(applyErr).Msg("sync operation will be retried")
	return applyErr
}

// save records o for id. A failed write is remembered so the next attempt
// retries only the write; the operation itself is never applied twice.
func (s *SyncService) save(ctx context.Context, id string, o outcome) error {
	var err error
	if o.completed {
		err = s.repo.Complete(ctx, id)
	} else {
		err = s.repo.Fail(ctx, id, o.reason, o.final)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.unsaved[id] = o
		return err
	}
	delete(s.unsaved, id)
	return nil
}

func (s *SyncService) unsavedOutcome(id string) (outcome, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.unsaved[id]
	return o, ok
}

func (s *SyncService) apply(ctx context.Context, op *domain.SyncOperation) error {
	p := op.Principal()
	pl := payload(op.Payload)

	switch {
	case op.Entity == domain.SyncEntityInspection && op.Action == domain.SyncActionTransition:
		status, _ := pl.str("status")
		notes, _ := pl.str("notes")
		_, err := s.inspections.Transition(ctx, p, op.EntityID, domain.InspectionStatus(status), notes)
		return err

	case op.Entity == domain.SyncEntityInspection && op.Action == domain.SyncActionUpdate:
		in := ports.UpdateInspectionInput{Notes: pl.strPtr("notes"), InspectorID: pl.strPtr("inspector_id")}
		if v := pl.strPtr("type"); v != nil {
			t := domain.InspectionType(*v)
			in.Type = &t
		}
		if v := pl.strPtr("scheduled_date"); v != nil {
			ts, err := time.Parse(time.RFC3339, *v)
			if err != nil {
				return domain.ErrInvalidInput.WithFields(domain.FieldError{Field: "scheduled_date", Message: "data inválida"})
			}
			in.ScheduledDate = &ts
		}
		_, err := s.inspections.Update(ctx, p, op.EntityID, in)
		return err

	case op.Entity == domain.SyncEntityProperty && op.Action == domain.SyncActionUpdate:
		in := ports.UpdatePropertyInput{
			Name:      pl.strPtr("name"),
			Address:   pl.strPtr("address"),
			City:      pl.strPtr("city"),
			State:     pl.strPtr("state"),
			ZipCode:   pl.strPtr("zip_code"),
			OwnerName: pl.strPtr("owner_name"),
			Notes:     pl.strPtr("notes"),
		}
		_, err := s.properties.Update(ctx, p, op.EntityID, in)
		return err
	}
	return domain.ErrSyncUnsupported
}

// Recover puts operations interrupted by a restart back on the queue.
func (s *SyncService) Recover(ctx context.Context) (int, error) {
	ops, err := s.repo.Unfinished(ctx, recoverBatch)
	if err != nil {
		return 0, err
	}
	for _, op := range ops {
		if op.Status == domain.SyncProcessing {
			if err := s.repo.Fail(ctx, op.ID, "interrupted", false); err != nil {
				return 0, err
			}
		}
		if s.queue != nil {
			s.queue.Enqueue(op)
		}
	}
	if len(ops) > 0 {
		s.logger.Info().Int("count", len(ops)).Msg("recovered unfinished sync operations")
	}
	return len(ops), nil
}

// payload reads loosely typed JSON fields sent by devices.
type payload map[string]any

func (p payload) str(key string) (string, bool) {
	v, ok := p[key]
	if !ok || v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func (p payload) strPtr(key string) *string {
	if s, ok := p.str(key); ok {
		return &s
	}
	return nil
}
