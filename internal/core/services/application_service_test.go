package services

import (
	"context"
	"testing"

	"medirelay/internal/adapters/persistence/models"
	"medirelay/internal/adapters/persistence/repositories"
	"medirelay/internal/core/domain"
	"medirelay/internal/pkg/pagination"
)

func TestAcceptRejectsOtherPendingApplications(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	employer := env.register(t, "clinic@example.com", domain.RoleEmployer)
	mission := env.createMission(t, employer.ID, "Garde week-end")

	doctors := make([]*models.UserResponse, 3)
	apps := make([]*models.ApplicationResponse, 3)
	for i, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		doctors[i] = env.register(t, email, domain.RoleReplacement)
		apps[i] = env.apply(t, doctors[i].ID, mission.ID)
	}

	accepted, err := env.applications.Respond(ctx, employer.ID, apps[1].ID, "accepted")
	if err != nil {
		t.Fatalf("Respond() error = %v", err)
	}
	if accepted.Status != "accepted" {
		t.Errorf("accepted status = %q, want accepted", accepted.Status)
	}
	if accepted.RespondedAt == nil {
		t.Error("accepted application has no responded_at")
	}

	for _, i := range []int{0, 2} {
		var app models.Application
		if err := env.db.First(&app, apps[i].ID).Error; err != nil {
			t.Fatalf("load application: %v", err)
		}
		if app.Status != "rejected" {
			t.Errorf("sibling %d status = %q, want rejected", i, app.Status)
		}
	}

	var m models.Mission
	if err := env.db.First(&m, mission.ID).Error; err != nil {
		t.Fatalf("load mission: %v", err)
	}
	if m.Status != "in_progress" {
		t.Errorf("mission status = %q, want in_progress", m.Status)
	}

	for i, doctor := range doctors {
		want := "application_rejected"
		if i == 1 {
			want = "application_accepted"
		}
		var count int64
		env.db.Model(&models.Notification{}).Where("user_id = ? AND type = ?", doctor.ID, want).Count(&count)
		if count != 1 {
			t.Errorf("doctor %d: %d %s notifications, want 1", i, count, want)
		}
	}

	// A late applicant finds the mission closed
	late := env.register(t, "late@example.com", domain.RoleReplacement)
	_, err = env.applications.Apply(ctx, late.ID, &ApplyInput{MissionID: mission.ID})
	assertKind(t, err, domain.ErrMissionNotOpen)

	// Rejected siblings can no longer be accepted
	_, err = env.applications.Respond(ctx, employer.ID, apps[0].ID, "accepted")
	assertKind(t, err, domain.ErrInvalidTransition)
}

func TestApplyTwiceConflictsUntilWithdrawn(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	employer := env.register(t, "clinic@example.com", domain.RoleEmployer)
	doctor := env.register(t, "doc@example.com", domain.RoleReplacement)
	mission := env.createMission(t, employer.ID, "Consultations")

	first := env.apply(t, doctor.ID, mission.ID)

	_, err := env.applications.Apply(ctx, doctor.ID, &ApplyInput{MissionID: mission.ID})
	assertKind(t, err, domain.ErrDuplicateEntry)

	withdrawn, err := env.applications.Withdraw(ctx, doctor.ID, first.ID)
	if err != nil {
		t.Fatalf("Withdraw() error = %v", err)
	}
	if withdrawn.Status != "withdrawn" {
		t.Errorf("status = %q, want withdrawn", withdrawn.Status)
	}

	rate := 95.0
	reopened, err := env.applications.Apply(ctx, doctor.ID, &ApplyInput{MissionID: mission.ID, CoverLetter: "Again", ProposedRate: &rate})
	if err != nil {
		t.Fatalf("re-Apply() error = %v", err)
	}
	if reopened.ID != first.ID {
		t.Errorf("reopened id = %d, want %d", reopened.ID, first.ID)
	}
	if reopened.Status != "pending" || reopened.CoverLetter != "Again" {
		t.Errorf("reopened = %+v", reopened)
	}

	var count int64
	env.db.Model(&models.Application{}).Where("mission_id = ?", mission.ID).Count(&count)
	if count != 1 {
		t.Errorf("application rows = %d, want 1", count)
	}
}

func TestRespondChecksOwnerBeforeStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.register(t, "owner@example.com", domain.RoleEmployer)
	other := env.register(t, "other@example.com", domain.RoleEmployer)
	doctor := env.register(t, "doc@example.com", domain.RoleReplacement)
	mission := env.createMission(t, owner.ID, "Urgences")
	app := env.apply(t, doctor.ID, mission.ID)

	tests := []struct {
		name   string
		userID uint
		status string
		want   error
	}{
		{"other employer", other.ID, "accepted", domain.ErrForbidden},
		{"other employer bogus status", other.ID, "bogus", domain.ErrForbidden},
		{"applicant", doctor.ID, "accepted", domain.ErrForbidden},
		{"owner bogus status", owner.ID, "bogus", domain.ErrInvalidStatus},
		{"owner empty status", owner.ID, "", domain.ErrInvalidStatus},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.applications.Respond(ctx, tt.userID, app.ID, tt.status)
			assertKind(t, err, tt.want)
		})
	}

	var stored models.Application
	env.db.First(&stored, app.ID)
	if stored.Status != "pending" {
		t.Errorf("status = %q, want pending", stored.Status)
	}

	_, err := env.applications.Respond(ctx, owner.ID, 9999, "accepted")
	assertKind(t, err, domain.ErrNotFound)
}

func TestRejectLeavesMissionOpen(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	employer := env.register(t, "clinic@example.com", domain.RoleEmployer)
	doctor := env.register(t, "doc@example.com", domain.RoleReplacement)
	mission := env.createMission(t, employer.ID, "Nuit")
	app := env.apply(t, doctor.ID, mission.ID)

	rejected, err := env.applications.Respond(ctx, employer.ID, app.ID, "rejected")
	if err != nil {
		t.Fatalf("Respond() error = %v", err)
	}
	if rejected.Status != "rejected" {
		t.Errorf("status = %q, want rejected", rejected.Status)
	}

	got, err := env.missions.Get(ctx, mission.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Status != "open" {
		t.Errorf("mission status = %q, want open", got.Status)
	}

	_, err = env.applications.Withdraw(ctx, doctor.ID, app.ID)
	assertKind(t, err, domain.ErrInvalidTransition)
}

func TestListApplicationsByRole(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	employer := env.register(t, "clinic@example.com", domain.RoleEmployer)
	rival := env.register(t, "rival@example.com", domain.RoleEmployer)
	doctor := env.register(t, "doc@example.com", domain.RoleReplacement)
	env.apply(t, doctor.ID, env.createMission(t, employer.ID, "A").ID)
	env.apply(t, doctor.ID, env.createMission(t, rival.ID, "B").ID)

	params := pagination.New(1, 20)

	_, total, err := env.applications.List(ctx, doctor.ID, "replacement", repositories.ApplicationFilter{}, params)
	if err != nil || total != 2 {
		t.Errorf("doctor list total = %d, err = %v; want 2", total, err)
	}
	_, total, err = env.applications.List(ctx, employer.ID, "employer", repositories.ApplicationFilter{}, params)
	if err != nil || total != 1 {
		t.Errorf("employer list total = %d, err = %v; want 1", total, err)
	}
	_, _, err = env.applications.ListForMission(ctx, rival.ID, "employer", 1, "", params)
	assertKind(t, err, domain.ErrForbidden)
}

func TestApplicationStatusSummary(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	employer := env.register(t, "clinic@example.com", domain.RoleEmployer)
	rival := env.register(t, "rival@example.com", domain.RoleEmployer)
	admin := env.createAdmin(t, "admin@example.com")
	mission := env.createMission(t, employer.ID, "Garde")

	var apps []uint
	for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		doctor := env.register(t, email, domain.RoleReplacement)
		app := env.apply(t, doctor.ID, mission.ID)
		apps = append(apps, app.ID)
		if email == "c@example.com" {
			if _, err := env.applications.Withdraw(ctx, doctor.ID, app.ID); err != nil {
				t.Fatalf("Withdraw() error = %v", err)
			}
		}
	}
	if _, err := env.applications.Respond(ctx, employer.ID, apps[0], "accepted"); err != nil {
		t.Fatalf("Respond() error = %v", err)
	}

	summary, err := env.applications.StatusSummary(ctx, employer.ID, "employer", mission.ID)
	if err != nil {
		t.Fatalf("StatusSummary() error = %v", err)
	}
	want := map[string]int64{"pending": 0, "accepted": 1, "rejected": 1, "withdrawn": 1}
	for status, n := range want {
		if summary.ByStatus[status] != n {
			t.Errorf("%s = %d, want %d", status, summary.ByStatus[status], n)
		}
	}
	if summary.Total != 3 {
		t.Errorf("total = %d, want 3", summary.Total)
	}

	if _, err := env.applications.StatusSummary(ctx, admin.ID, "admin", mission.ID); err != nil {
		t.Errorf("admin StatusSummary() error = %v", err)
	}
	_, err = env.applications.StatusSummary(ctx, rival.ID, "employer", mission.ID)
	assertKind(t, err, domain.ErrForbidden)
	_, err = env.applications.StatusSummary(ctx, employer.ID, "employer", 9999)
	assertKind(t, err, domain.ErrNotFound)
}
