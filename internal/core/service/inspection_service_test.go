package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vistoria/inspection-api/internal/core/domain"
	"github.com/vistoria/inspection-api/internal/core/ports"
)

type inspectionFixture struct {
	svc   *InspectionService
	repo  *stubInspectionRepo
	props *stubPropertyRepo
}

func newInspectionFixture(ins ...*domain.Inspection) inspectionFixture {
	props := seedProperties()
	repo := newStubInspectionRepo(props, ins...)
	svc := NewInspectionService(repo, props, seedUsers(), nopLogger)
	svc.now = fixedNow
	return inspectionFixture{svc: svc, repo: repo, props: props}
}

func inspection(id string, status domain.InspectionStatus) *domain.Inspection {
	return &domain.Inspection{
		ID:          id,
		CompanyID:   "company-a",
		PropertyID:  "prop-a1",
		ClientID:    clientX.ID,
		InspectorID: inspectorA.ID,
		Type:        domain.InspectionEntry,
		Status:      status,
	}
}

func TestInspectionService_Create(t *testing.T) {
	f := newInspectionFixture()
	ctx := context.Background()

	row, err := f.svc.Create(ctx, managerA, ports.CreateInspectionInput{
		PropertyID:    "prop-a1",
		InspectorID:   inspectorA.ID,
		Type:          domain.InspectionEntry,
		ScheduledDate: time.Date(2026, 4, 1, 9, 0, 0, 0, time.FixedZone("BRT", -3*3600)),
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if row.Status != domain.InspectionPending {
		t.Fatalf("expected pending, got %s", row.Status)
	}
	if row.ClientID != clientX.ID {
		t.Fatalf("expected client copied from property, got %q", row.ClientID)
	}
	if row.ScheduledDate.Location() != time.UTC {
		t.Fatalf("expected scheduled date stored in UTC")
	}
	if row.PropertyName != "Casa Azul" {
		t.Fatalf("expected joined property name, got %q", row.PropertyName)
	}
	if f.props.props["prop-a1"].InspectionCount != 1 {
		t.Fatalf("expected inspection count to be bumped")
	}

	_, err = f.svc.Create(ctx, managerA, ports.CreateInspectionInput{PropertyID: "prop-a1", Type: domain.InspectionExit})
	if !errors.Is(err, domain.ErrPendingInspection) {
		t.Fatalf("expected ErrPendingInspection, got %v", err)
	}
}

func TestInspectionService_Create_Rejections(t *testing.T) {
	f := newInspectionFixture()
	ctx := context.Background()

	cases := []struct {
		name string
		p    domain.Principal
		in   ports.CreateInspectionInput
		want error
	}{
		{"other tenant property", managerA, ports.CreateInspectionInput{PropertyID: "prop-b1"}, domain.ErrPropertyNotFound},
		{"inspector cannot schedule", inspectorA, ports.CreateInspectionInput{PropertyID: "prop-a1"}, domain.ErrForbidden},
		{"viewer as inspector", managerA, ports.CreateInspectionInput{PropertyID: "prop-a1", InspectorID: viewerA.ID}, domain.ErrInspectorInvalid},
		{"foreign inspector", managerA, ports.CreateInspectionInput{PropertyID: "prop-a1", InspectorID: adminB.ID}, domain.ErrInspectorInvalid},
	}
	for _, tc := range cases {
		if _, err := f.svc.Create(ctx, tc.p, tc.in); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
}

func TestInspectionService_List_InspectorSeesOwn(t *testing.T) {
	other := inspection("ins-2", domain.InspectionPending)
	other.InspectorID = "someone-else"
	other.PropertyID = "prop-a2"
	f := newInspectionFixture(inspection("ins-1", domain.InspectionPending), other)

	page, err := f.svc.List(context.Background(), inspectorA, ports.InspectionFilter{})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if page.Total != 1 || page.Items[0].ID != "ins-1" {
		t.Fatalf("expected only assigned inspection, got %+v", page.Items)
	}
	if f.repo.lastFilter.Scope.CompanyID != "company-a" {
		t.Fatalf("expected tenant scope, got %+v", f.repo.lastFilter.Scope)
	}

	all, _ := f.svc.List(context.Background(), managerA, ports.InspectionFilter{})
	if all.Total != 2 {
		t.Fatalf("expected manager to see 2, got %d", all.Total)
	}
}

func TestInspectionService_Get_InspectorSeesOwn(t *testing.T) {
	other := inspection("ins-2", domain.InspectionPending)
	other.InspectorID = "someone-else"
	other.PropertyID = "prop-a2"
	f := newInspectionFixture(inspection("ins-1", domain.InspectionPending), other)
	ctx := context.Background()

	if _, err := f.svc.Get(ctx, inspectorA, "ins-1"); err != nil {
		t.Fatalf("Get of assigned inspection returned error: %v", err)
	}
	if _, err := f.svc.Get(ctx, inspectorA, "ins-2"); !errors.Is(err, domain.ErrInspectionNotFound) {
		t.Fatalf("expected ErrInspectionNotFound for unassigned inspection, got %v", err)
	}
	if _, err := f.svc.Get(ctx, managerA, "ins-2"); err != nil {
		t.Fatalf("manager Get returned error: %v", err)
	}
}

func TestInspectionService_Transition(t *testing.T) {
	f := newInspectionFixture(inspection("ins-1", domain.InspectionPending))
	ctx := context.Background()

	row, err := f.svc.Transition(ctx, inspectorA, "ins-1", domain.InspectionInProgress, "")
	if err != nil {
		t.Fatalf("start returned error: %v", err)
	}
	if row.StartedAt == nil || !row.StartedAt.Equal(fixedNow()) {
		t.Fatalf("expected started_at to be set")
	}

	if _, err := f.svc.Transition(ctx, inspectorA, "ins-1", domain.InspectionApproved, ""); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected inspector approval to be forbidden, got %v", err)
	}

	row, err = f.svc.Transition(ctx, inspectorA, "ins-1", domain.InspectionCompleted, "tudo ok")
	if err != nil {
		t.Fatalf("complete returned error: %v", err)
	}
	if row.CompletedAt == nil || row.Notes != "tudo ok" {
		t.Fatalf("expected completion fields, got %+v", row.Inspection)
	}

	if _, err := f.svc.Transition(ctx, managerA, "ins-1", domain.InspectionApproved, ""); err != nil {
		t.Fatalf("approve returned error: %v", err)
	}
	if _, err := f.svc.Transition(ctx, managerA, "ins-1", domain.InspectionInProgress, ""); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected approved to be terminal, got %v", err)
	}
}

func TestInspectionService_Transition_UnassignedInspector(t *testing.T) {
	ins := inspection("ins-1", domain.InspectionPending)
	ins.InspectorID = "someone-else"
	f := newInspectionFixture(ins)

	if _, err := f.svc.Transition(context.Background(), inspectorA, "ins-1", domain.InspectionInProgress, ""); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestInspectionService_Update_InspectorNotesOnly(t *testing.T) {
	f := newInspectionFixture(inspection("ins-1", domain.InspectionInProgress))
	ctx := context.Background()
	notes := "janela quebrada"
	when := fixedNow().Add(48 * time.Hour)

	row, err := f.svc.Update(ctx, inspectorA, "ins-1", ports.UpdateInspectionInput{Notes: &notes})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if row.Notes != notes {
		t.Fatalf("notes not updated")
	}
	if _, err := f.svc.Update(ctx, inspectorA, "ins-1", ports.UpdateInspectionInput{ScheduledDate: &when}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected rescheduling by inspector to be forbidden, got %v", err)
	}
}

func TestInspectionService_ClientAccess(t *testing.T) {
	ins := inspection("ins-1", domain.InspectionCompleted)
	foreign := inspection("ins-2", domain.InspectionCompleted)
	foreign.ClientID = clientY.ID
	foreign.PropertyID = "prop-a2"
	f := newInspectionFixture(ins, foreign)
	ctx := context.Background()

	if _, err := f.svc.Get(ctx, clientX, "ins-1"); err != nil {
		t.Fatalf("client Get returned error: %v", err)
	}
	if _, err := f.svc.Get(ctx, clientX, "ins-2"); !errors.Is(err, domain.ErrInspectionNotFound) {
		t.Fatalf("expected foreign inspection to be NotFound, got %v", err)
	}

	page, err := f.svc.ListForClient(ctx, clientX, ports.InspectionFilter{})
	if err != nil {
		t.Fatalf("ListForClient returned error: %v", err)
	}
	if page.Total != 1 || page.Items[0].ID != "ins-1" {
		t.Fatalf("expected only the client's inspection, got %+v", page.Items)
	}
	if _, err := f.svc.ListForClient(ctx, adminA, ports.InspectionFilter{}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected users to be rejected, got %v", err)
	}
}

func TestInspectionService_Delete_ReleasesProperty(t *testing.T) {
	f := newInspectionFixture()
	ctx := context.Background()
	row, _ := f.svc.Create(ctx, managerA, ports.CreateInspectionInput{PropertyID: "prop-a1", Type: domain.InspectionEntry})

	if err := f.svc.Delete(ctx, managerA, row.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected manager delete to be forbidden, got %v", err)
	}
	if err := f.svc.Delete(ctx, adminA, row.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if f.props.props["prop-a1"].InspectionCount != 0 {
		t.Fatalf("expected inspection count to drop back")
	}
}
