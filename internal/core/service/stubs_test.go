package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/vistoria/inspection-api/internal/core/domain"
	"github.com/vistoria/inspection-api/internal/core/ports"
	"github.com/vistoria/inspection-api/internal/core/query"
)

var nopLogger = zerolog.Nop()

var (
	superAdmin = domain.Principal{Type: domain.PrincipalUser, ID: "root", Role: domain.RoleSuperAdmin}
	adminA     = domain.Principal{Type: domain.PrincipalUser, ID: "admin-a", Role: domain.RoleAdmin, CompanyID: "company-a"}
	managerA   = domain.Principal{Type: domain.PrincipalUser, ID: "manager-a", Role: domain.RoleManager, CompanyID: "company-a"}
	inspectorA = domain.Principal{Type: domain.PrincipalUser, ID: "inspector-a", Role: domain.RoleInspector, CompanyID: "company-a"}
	viewerA    = domain.Principal{Type: domain.PrincipalUser, ID: "viewer-a", Role: domain.RoleViewer, CompanyID: "company-a"}
	adminB     = domain.Principal{Type: domain.PrincipalUser, ID: "admin-b", Role: domain.RoleAdmin, CompanyID: "company-b"}
	clientX    = domain.Principal{Type: domain.PrincipalClient, ID: "client-x"}
	clientY    = domain.Principal{Type: domain.PrincipalClient, ID: "client-y"}
)

func fixedNow() time.Time { return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC) }

func clone[T any](v *T) *T {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// ── users ────────────────────────────────────────────────────────────────────

type stubUserRepo struct {
	users     map[string]*domain.User
	createErr error
	touched   []string
}

func newStubUserRepo(users ...*domain.User) *stubUserRepo {
	r := &stubUserRepo{users: make(map[string]*domain.User)}
	for _, u := range users {
		r.users[u.ID] = clone(u)
	}
	return r
}

func (r *stubUserRepo) Create(_ context.Context, u *domain.User) error {
	if r.createErr != nil {
		return r.createErr
	}
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return domain.ErrEmailTaken
		}
	}
	r.users[u.ID] = clone(u)
	return nil
}

func (r *stubUserRepo) FindByID(_ context.Context, scope query.Scope, id string) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok || !scope.Matches(u.CompanyID) {
		return nil, domain.ErrUserNotFound
	}
	return clone(u), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return clone(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) List(_ context.Context, f ports.UserFilter) ([]*domain.User, int64, error) {
	var out []*domain.User
	for _, u := range r.users {
		if f.Scope.Matches(u.CompanyID) {
			out = append(out, clone(u))
		}
	}
	return out, int64(len(out)), nil
}

func (r *stubUserRepo) Update(_ context.Context, u *domain.User) error {
	if _, ok := r.users[u.ID]; !ok {
		return domain.ErrUserNotFound
	}
	r.users[u.ID] = clone(u)
	return nil
}

func (r *stubUserRepo) Delete(_ context.Context, scope query.Scope, id string) error {
	u, ok := r.users[id]
	if !ok || !scope.Matches(u.CompanyID) {
		return domain.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *stubUserRepo) TouchLogin(_ context.Context, id string, _ time.Time) error {
	r.touched = append(r.touched, id)
	return nil
}

func (r *stubUserRepo) CountActive(_ context.Context, scope query.Scope) (int64, error) {
	var n int64
	for _, u := range r.users {
		if scope.Matches(u.CompanyID) && u.Status == domain.UserActive {
			n++
		}
	}
	return n, nil
}

// ── companies ────────────────────────────────────────────────────────────────

type stubCompanyRepo struct {
	companies map[string]*domain.Company
	deleted   []string
}

func newStubCompanyRepo(cs ...*domain.Company) *stubCompanyRepo {
	r := &stubCompanyRepo{companies: make(map[string]*domain.Company)}
	for _, c := range cs {
		r.companies[c.ID] = clone(c)
	}
	return r
}

func (r *stubCompanyRepo) Create(_ context.Context, c *domain.Company) error {
	r.companies[c.ID] = clone(c)
	return nil
}

func (r *stubCompanyRepo) FindByID(_ context.Context, id string) (*domain.Company, error) {
	c, ok := r.companies[id]
	if !ok {
		return nil, domain.ErrCompanyNotFound
	}
	return clone(c), nil
}

func (r *stubCompanyRepo) List(_ context.Context, _ ports.CompanyFilter) ([]*domain.Company, int64, error) {
	var out []*domain.Company
	for _, c := range r.companies {
		out = append(out, clone(c))
	}
	return out, int64(len(out)), nil
}

func (r *stubCompanyRepo) Update(_ context.Context, c *domain.Company) error {
	r.companies[c.ID] = clone(c)
	return nil
}

func (r *stubCompanyRepo) Delete(_ context.Context, id string) error {
	delete(r.companies, id)
	r.deleted = append(r.deleted, id)
	return nil
}

// ── clients and sessions ─────────────────────────────────────────────────────

type stubClientRepo struct {
	clients map[string]*domain.Client
}

func newStubClientRepo() *stubClientRepo {
	return &stubClientRepo{clients: make(map[string]*domain.Client)}
}

func (r *stubClientRepo) Create(_ context.Context, c *domain.Client) error {
	for _, existing := range r.clients {
		if existing.Email == c.Email {
			return domain.ErrEmailTaken
		}
	}
	r.clients[c.ID] = clone(c)
	return nil
}

func (r *stubClientRepo) FindByID(_ context.Context, id string) (*domain.Client, error) {
	c, ok := r.clients[id]
	if !ok {
		return nil, domain.ErrClientNotFound
	}
	return clone(c), nil
}

func (r *stubClientRepo) FindByEmail(_ context.Context, email string) (*domain.Client, error) {
	for _, c := range r.clients {
		if c.Email == email {
			return clone(c), nil
		}
	}
	return nil, domain.ErrClientNotFound
}

type stubSessionStore struct {
	mu       sync.Mutex
	sessions map[string]*domain.Session
	touches  int
}

func newStubSessionStore() *stubSessionStore {
	return &stubSessionStore{sessions: make(map[string]*domain.Session)}
}

func (s *stubSessionStore) Create(_ context.Context, sess *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.Token] = clone(sess)
	return nil
}

func (s *stubSessionStore) Get(_ context.Context, token string) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[token]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return clone(sess), nil
}

func (s *stubSessionStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}

func (s *stubSessionStore) Touch(_ context.Context, token string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[token]; ok {
		sess.LastActivityAt = at
		s.touches++
	}
	return nil
}

// ── properties ───────────────────────────────────────────────────────────────

type stubPropertyRepo struct {
	props map[string]*domain.Property
}

func newStubPropertyRepo(ps ...*domain.Property) *stubPropertyRepo {
	r := &stubPropertyRepo{props: make(map[string]*domain.Property)}
	for _, p := range ps {
		r.props[p.ID] = clone(p)
	}
	return r
}

func (r *stubPropertyRepo) Create(_ context.Context, p *domain.Property) error {
	r.props[p.ID] = clone(p)
	return nil
}

func (r *stubPropertyRepo) FindByID(_ context.Context, scope query.Scope, id string) (*domain.Property, error) {
	p, ok := r.props[id]
	if !ok || !scope.Matches(p.CompanyID) {
		return nil, domain.ErrPropertyNotFound
	}
	return clone(p), nil
}

func (r *stubPropertyRepo) List(_ context.Context, f ports.PropertyFilter) ([]*domain.Property, int64, error) {
	var out []*domain.Property
	for _, p := range r.props {
		if f.Scope.Matches(p.CompanyID) {
			out = append(out, clone(p))
		}
	}
	return out, int64(len(out)), nil
}

func (r *stubPropertyRepo) Update(_ context.Context, p *domain.Property) error {
	if _, ok := r.props[p.ID]; !ok {
		return domain.ErrPropertyNotFound
	}
	r.props[p.ID] = clone(p)
	return nil
}

func (r *stubPropertyRepo) Delete(_ context.Context, scope query.Scope, id string) error {
	p, ok := r.props[id]
	if !ok || !scope.Matches(p.CompanyID) {
		return domain.ErrPropertyNotFound
	}
	if p.InspectionCount > 0 {
		return domain.ErrPropertyHasInspection
	}
	delete(r.props, id)
	return nil
}

func (r *stubPropertyRepo) Count(_ context.Context, scope query.Scope) (int64, error) {
	var n int64
	for _, p := range r.props {
		if scope.Matches(p.CompanyID) {
			n++
		}
	}
	return n, nil
}

// ── inspections ──────────────────────────────────────────────────────────────

type stubInspectionRepo struct {
	items      map[string]*domain.Inspection
	properties *stubPropertyRepo
	lastFilter ports.InspectionFilter
	updateErr  error
}

func newStubInspectionRepo(props *stubPropertyRepo, ins ...*domain.Inspection) *stubInspectionRepo {
	r := &stubInspectionRepo{items: make(map[string]*domain.Inspection), properties: props}
	for _, i := range ins {
		r.items[i.ID] = clone(i)
	}
	return r
}

func (r *stubInspectionRepo) Create(_ context.Context, in *domain.Inspection) error {
	prop, ok := r.properties.props[in.PropertyID]
	if !ok {
		return domain.ErrPropertyNotFound
	}
	for _, existing := range r.items {
		if existing.PropertyID == in.PropertyID && existing.Status == domain.InspectionPending {
			return domain.ErrPendingInspection
		}
	}
	r.items[in.ID] = clone(in)
	prop.InspectionCount++
	return nil
}

func (r *stubInspectionRepo) row(in *domain.Inspection) *domain.InspectionRow {
	row := &domain.InspectionRow{Inspection: *in}
	if p, ok := r.properties.props[in.PropertyID]; ok {
		row.PropertyName, row.PropertyAddress = p.Name, p.Address
	}
	return row
}

func (r *stubInspectionRepo) FindByID(_ context.Context, scope query.Scope, id string) (*domain.InspectionRow, error) {
	in, ok := r.items[id]
	if !ok || !scope.Matches(in.CompanyID) {
		return nil, domain.ErrInspectionNotFound
	}
	return r.row(in), nil
}

func (r *stubInspectionRepo) List(_ context.Context, f ports.InspectionFilter) ([]*domain.InspectionRow, int64, error) {
	r.lastFilter = f
	var out []*domain.InspectionRow
	for _, in := range r.items {
		if !f.Scope.Matches(in.CompanyID) {
			continue
		}
		if f.InspectorID != "" && in.InspectorID != f.InspectorID {
			continue
		}
		if f.ClientID != "" && in.ClientID != f.ClientID {
			continue
		}
		out = append(out, r.row(in))
	}
	return out, int64(len(out)), nil
}

func (r *stubInspectionRepo) Update(_ context.Context, in *domain.Inspection) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	if _, ok := r.items[in.ID]; !ok {
		return domain.ErrInspectionNotFound
	}
	r.items[in.ID] = clone(in)
	return nil
}

func (r *stubInspectionRepo) Transition(_ context.Context, in *domain.Inspection, from domain.InspectionStatus) error {
	stored, ok := r.items[in.ID]
	if !ok {
		return domain.ErrInspectionNotFound
	}
	if stored.Status != from {
		return domain.ErrInvalidTransition
	}
	r.items[in.ID] = clone(in)
	return nil
}

func (r *stubInspectionRepo) Delete(_ context.Context, scope query.Scope, id string) error {
	in, ok := r.items[id]
	if !ok || !scope.Matches(in.CompanyID) {
		return domain.ErrInspectionNotFound
	}
	delete(r.items, id)
	if p, ok := r.properties.props[in.PropertyID]; ok {
		p.InspectionCount--
	}
	return nil
}

func (r *stubInspectionRepo) CountByStatus(_ context.Context, scope query.Scope) (map[domain.InspectionStatus]int64, error) {
	out := make(map[domain.InspectionStatus]int64)
	for _, in := range r.items {
		if scope.Matches(in.CompanyID) {
			out[in.Status]++
		}
	}
	return out, nil
}

// ── uploads ──────────────────────────────────────────────────────────────────

type stubUploadRepo struct {
	items     map[string]*domain.Upload
	createErr error
}

func newStubUploadRepo() *stubUploadRepo {
	return &stubUploadRepo{items: make(map[string]*domain.Upload)}
}

func (r *stubUploadRepo) Create(_ context.Context, u *domain.Upload) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.items[u.ID] = clone(u)
	return nil
}

func (r *stubUploadRepo) FindByID(_ context.Context, scope query.Scope, id string) (*domain.Upload, error) {
	u, ok := r.items[id]
	if !ok || !scope.Matches(u.CompanyID) {
		return nil, domain.ErrUploadNotFound
	}
	return clone(u), nil
}

func (r *stubUploadRepo) List(_ context.Context, f ports.UploadFilter) ([]*domain.Upload, int64, error) {
	var out []*domain.Upload
	for _, u := range r.items {
		if f.Scope.Matches(u.CompanyID) {
			out = append(out, clone(u))
		}
	}
	return out, int64(len(out)), nil
}

func (r *stubUploadRepo) Delete(_ context.Context, scope query.Scope, id string) error {
	u, ok := r.items[id]
	if !ok || !scope.Matches(u.CompanyID) {
		return domain.ErrUploadNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *stubUploadRepo) Totals(_ context.Context, scope query.Scope) (int64, int64, error) {
	var n, size int64
	for _, u := range r.items {
		if scope.Matches(u.CompanyID) {
			n++
			size += u.Size
		}
	}
	return n, size, nil
}

type stubObjectStore struct {
	objects     map[string][]byte
	deleteFails int
	deleteCalls int
}

func newStubObjectStore() *stubObjectStore {
	return &stubObjectStore{objects: make(map[string][]byte)}
}

func (s *stubObjectStore) Put(_ context.Context, key, _, _ string, r io.Reader) (int64, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}
	s.objects[key] = data
	return int64(len(data)), nil
}

func (s *stubObjectStore) Open(_ context.Context, key string) (io.ReadCloser, error) {
	data, ok := s.objects[key]
	if !ok {
		return nil, domain.ErrUploadNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *stubObjectStore) Delete(_ context.Context, key string) error {
	s.deleteCalls++
	if s.deleteFails > 0 {
		s.deleteFails--
		return errors.New("object store unavailable")
	}
	delete(s.objects, key)
	return nil
}

func bytesFile(name string, data []byte) ports.FileInput {
	return ports.FileInput{
		FileName: name,
		Size:     int64(len(data)),
		Open:     func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(data)), nil },
	}
}

// ── contests ─────────────────────────────────────────────────────────────────

type stubContestRepo struct {
	items map[string]*domain.Contest
}

func newStubContestRepo(cs ...*domain.Contest) *stubContestRepo {
	r := &stubContestRepo{items: make(map[string]*domain.Contest)}
	for _, c := range cs {
		r.items[c.ID] = clone(c)
	}
	return r
}

func (r *stubContestRepo) Create(_ context.Context, c *domain.Contest) error {
	for _, existing := range r.items {
		if existing.InspectionID == c.InspectionID && !existing.Status.Final() {
			return domain.ErrOpenContest
		}
	}
	r.items[c.ID] = clone(c)
	return nil
}

func (r *stubContestRepo) FindByID(_ context.Context, scope query.Scope, id string) (*domain.Contest, error) {
	c, ok := r.items[id]
	if !ok || !scope.Matches(c.CompanyID) {
		return nil, domain.ErrContestNotFound
	}
	return clone(c), nil
}

func (r *stubContestRepo) List(_ context.Context, f ports.ContestFilter) ([]*domain.Contest, int64, error) {
	var out []*domain.Contest
	for _, c := range r.items {
		if !f.Scope.Matches(c.CompanyID) {
			continue
		}
		if f.ClientID != "" && c.ClientID != f.ClientID {
			continue
		}
		out = append(out, clone(c))
	}
	return out, int64(len(out)), nil
}

func (r *stubContestRepo) Transition(_ context.Context, c *domain.Contest, from domain.ContestStatus) error {
	stored, ok := r.items[c.ID]
	if !ok {
		return domain.ErrContestNotFound
	}
	if stored.Status != from {
		return domain.ErrInvalidTransition
	}
	r.items[c.ID] = clone(c)
	return nil
}

func (r *stubContestRepo) Delete(_ context.Context, scope query.Scope, id string) error {
	c, ok := r.items[id]
	if !ok || !scope.Matches(c.CompanyID) {
		return domain.ErrContestNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *stubContestRepo) CountByStatus(_ context.Context, scope query.Scope) (map[domain.ContestStatus]int64, error) {
	out := make(map[domain.ContestStatus]int64)
	for _, c := range r.items {
		if scope.Matches(c.CompanyID) {
			out[c.Status]++
		}
	}
	return out, nil
}

// ── sync ─────────────────────────────────────────────────────────────────────

type stubSyncRepo struct {
	items map[string]*domain.SyncOperation
	// statusWriteErrs makes that many Complete/Fail calls fail.
	statusWriteErrs int
}

func newStubSyncRepo() *stubSyncRepo {
	return &stubSyncRepo{items: make(map[string]*domain.SyncOperation)}
}

func (r *stubSyncRepo) Create(_ context.Context, op *domain.SyncOperation) (*domain.SyncOperation, bool, error) {
	for _, existing := range r.items {
		if existing.CompanyID == op.CompanyID && existing.DeviceID == op.DeviceID && existing.ClientOpID == op.ClientOpID {
			return clone(existing), false, nil
		}
	}
	r.items[op.ID] = clone(op)
	return clone(op), true, nil
}

func (r *stubSyncRepo) FindByID(_ context.Context, scope query.Scope, id string) (*domain.SyncOperation, error) {
	op, ok := r.items[id]
	if !ok || !scope.Matches(op.CompanyID) {
		return nil, domain.ErrSyncNotFound
	}
	return clone(op), nil
}

func (r *stubSyncRepo) List(_ context.Context, f ports.SyncFilter) ([]*domain.SyncOperation, int64, error) {
	var out []*domain.SyncOperation
	for _, op := range r.items {
		if !f.Scope.Matches(op.CompanyID) {
			continue
		}
		if f.UserID != "" && op.UserID != f.UserID {
			continue
		}
		out = append(out, clone(op))
	}
	return out, int64(len(out)), nil
}

func (r *stubSyncRepo) Claim(_ context.Context, id string) (*domain.SyncOperation, error) {
	op, ok := r.items[id]
	if !ok || op.Status != domain.SyncPending {
		return nil, nil
	}
	op.Status = domain.SyncProcessing
	op.Attempts++
	return clone(op), nil
}

func (r *stubSyncRepo) statusWriteErr() error {
	if r.statusWriteErrs > 0 {
		r.statusWriteErrs--
		return errors.New("mongo write timeout")
	}
	return nil
}

func (r *stubSyncRepo) Complete(_ context.Context, id string) error {
	if err := r.statusWriteErr(); err != nil {
		return err
	}
	r.items[id].Status = domain.SyncCompleted
	return nil
}

func (r *stubSyncRepo) Fail(_ context.Context, id, reason string, final bool) error {
	if err := r.statusWriteErr(); err != nil {
		return err
	}
	op := r.items[id]
	op.LastError = reason
	op.Status = domain.SyncPending
	if final {
		op.Status = domain.SyncFailed
	}
	return nil
}

func (r *stubSyncRepo) Unfinished(_ context.Context, _ int) ([]*domain.SyncOperation, error) {
	var out []*domain.SyncOperation
	for _, op := range r.items {
		if op.Status == domain.SyncPending || op.Status == domain.SyncProcessing {
			out = append(out, clone(op))
		}
	}
	return out, nil
}

type stubClaimer struct {
	seen map[string]bool
	err  error
}

func (c *stubClaimer) Claim(_ context.Context, companyID, deviceID, clientOpID string) (bool, error) {
	if c.err != nil {
		return false, c.err
	}
	if c.seen == nil {
		c.seen = make(map[string]bool)
	}
	key := companyID + "|" + deviceID + "|" + clientOpID
	if c.seen[key] {
		return false, nil
	}
	c.seen[key] = true
	return true, nil
}

type stubQueue struct {
	ops []*domain.SyncOperation
}

func (q *stubQueue) Enqueue(op *domain.SyncOperation) { q.ops = append(q.ops, op) }
