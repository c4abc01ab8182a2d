package services

import (
	"bytes"
	"context"
	"testing"

	"medirelay/internal/adapters/persistence/models"
	"medirelay/internal/adapters/persistence/repositories"
	"medirelay/internal/core/domain"
	"medirelay/internal/pkg/pagination"

	"github.com/xuri/excelize/v2"
)

func TestSetProfileStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.createAdmin(t, "admin@example.com")
	doctor := env.register(t, "doc@example.com", domain.RoleReplacement)

	if doctor.ProfileStatus != "pending" {
		t.Fatalf("initial profile status = %q, want pending", doctor.ProfileStatus)
	}

	_, err := env.admin.SetProfileStatus(ctx, admin.ID, doctor.ID, "bogus", "")
	assertKind(t, err, domain.ErrInvalidStatus)

	var profile models.ReplacementProfile
	env.db.Where("user_id = ?", doctor.ID).First(&profile)
	if profile.ProfileStatus != "pending" {
		t.Errorf("profile status after bogus = %q, want pending", profile.ProfileStatus)
	}

	rejected, err := env.admin.SetProfileStatus(ctx, admin.ID, doctor.ID, "rejected", "RPPS manquant")
	if err != nil {
		t.Fatalf("SetProfileStatus(rejected) error = %v", err)
	}
	if rejected.ProfileStatus != "rejected" {
		t.Errorf("status = %q, want rejected", rejected.ProfileStatus)
	}
	if rejected.ReplacementProfile.StatusReason != "RPPS manquant" {
		t.Errorf("reason = %q", rejected.ReplacementProfile.StatusReason)
	}

	approved, err := env.admin.SetProfileStatus(ctx, admin.ID, doctor.ID, "approved", "")
	if err != nil {
		t.Fatalf("SetProfileStatus(approved) error = %v", err)
	}
	if approved.ProfileStatus != "approved" {
		t.Errorf("status = %q, want approved", approved.ProfileStatus)
	}

	var notes []models.Notification
	env.db.Where("user_id = ?", doctor.ID).Order("id").Find(&notes)
	if len(notes) != 2 || notes[0].Type != "profile_rejected" || notes[1].Type != "profile_approved" {
		t.Errorf("notifications = %+v", notes)
	}

	// Admins have no professional profile
	_, err = env.admin.SetProfileStatus(ctx, admin.ID, admin.ID, "approved", "")
	assertKind(t, err, domain.ErrInvalidInput)

	_, err = env.admin.SetProfileStatus(ctx, admin.ID, 9999, "approved", "")
	assertKind(t, err, domain.ErrNotFound)
}

func TestEmployerProfileStatus(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createAdmin(t, "admin@example.com")
	employer := env.register(t, "clinic@example.com", domain.RoleEmployer)

	got, err := env.admin.SetProfileStatus(context.Background(), admin.ID, employer.ID, "approved", "")
	if err != nil {
		t.Fatalf("SetProfileStatus() error = %v", err)
	}
	if got.ProfileStatus != "approved" || got.EmployerProfile == nil {
		t.Errorf("employer = %+v", got)
	}
}

func TestSetActive(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.createAdmin(t, "admin@example.com")
	doctor := env.register(t, "doc@example.com", domain.RoleReplacement)

	_, err := env.admin.SetActive(ctx, admin.ID, admin.ID, false)
	assertKind(t, err, domain.ErrInvalidInput)

	got, err := env.admin.SetActive(ctx, admin.ID, doctor.ID, false)
	if err != nil {
		t.Fatalf("SetActive() error = %v", err)
	}
	if got.IsActive {
		t.Error("user still active")
	}

	_, err = env.auth.Login(ctx, &LoginInput{Email: "doc@example.com", Password: "password123"})
	assertKind(t, err, domain.ErrUserInactive)

	inactive := false
	_, total, err := env.admin.ListUsers(ctx, repositories.UserFilter{IsActive: &inactive}, pagination.New(1, 20))
	if err != nil || total != 1 {
		t.Errorf("inactive users = %d, err = %v; want 1", total, err)
	}
}

func TestListUsersFilters(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.createAdmin(t, "admin@example.com")
	env.register(t, "alice@example.com", domain.RoleReplacement)
	env.register(t, "bob@example.com", domain.RoleReplacement)
	env.register(t, "clinic@example.com", domain.RoleEmployer)

	params := pagination.New(1, 20)
	tests := []struct {
		name   string
		filter repositories.UserFilter
		want   int64
	}{
		{"all", repositories.UserFilter{}, 4},
		{"replacements", repositories.UserFilter{Role: "replacement"}, 2},
		{"pending profiles", repositories.UserFilter{ProfileStatus: "pending"}, 3},
		{"search", repositories.UserFilter{Query: "ALICE"}, 1},
		{"role and search", repositories.UserFilter{Role: "employer", Query: "alice"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, total, err := env.admin.ListUsers(ctx, tt.filter, params)
			if err != nil {
				t.Fatalf("ListUsers() error = %v", err)
			}
			if total != tt.want {
				t.Errorf("total = %d, want %d", total, tt.want)
			}
		})
	}
}

func TestExportUsers(t *testing.T) {
	env := newTestEnv(t)
	env.createAdmin(t, "admin@example.com")
	env.register(t, "doc@example.com", domain.RoleReplacement)

	data, err := env.admin.ExportUsers(context.Background())
	if err != nil {
		t.Fatalf("ExportUsers() error = %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Users")
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want header + 2 users", len(rows))
	}
	if rows[0][1] != "Email" {
		t.Errorf("header = %v", rows[0])
	}
}

func TestAdminStats(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	employer := env.register(t, "clinic@example.com", domain.RoleEmployer)
	doctor := env.register(t, "doc@example.com", domain.RoleReplacement)
	mission := env.createMission(t, employer.ID, "Garde")
	env.createMission(t, employer.ID, "Consultation")
	app := env.apply(t, doctor.ID, mission.ID)
	if _, err := env.applications.Respond(ctx, employer.ID, app.ID, "accepted"); err != nil {
		t.Fatalf("Respond() error = %v", err)
	}

	stats, err := env.dashboard.GetAdminStats(ctx)
	if err != nil {
		t.Fatalf("GetAdminStats() error = %v", err)
	}
	if stats.TotalUsers != 2 || stats.TotalMissions != 2 {
		t.Errorf("totals = %d users, %d missions", stats.TotalUsers, stats.TotalMissions)
	}
	if stats.MissionsByStatus["open"] != 1 || stats.MissionsByStatus["in_progress"] != 1 {
		t.Errorf("missions by status = %v", stats.MissionsByStatus)
	}
	if stats.ApplicationsByStatus["accepted"] != 1 {
		t.Errorf("applications by status = %v", stats.ApplicationsByStatus)
	}
	if stats.ReplacementStatus["pending"] != 1 || stats.EmployerStatus["pending"] != 1 {
		t.Errorf("profiles = %v / %v", stats.ReplacementStatus, stats.EmployerStatus)
	}
}
