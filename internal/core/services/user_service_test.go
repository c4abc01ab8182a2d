package services

import (
	"context"
	"testing"
	"time"

	"medirelay/internal/adapters/persistence/repositories"
	"medirelay/internal/core/domain"
	"medirelay/internal/pkg/pagination"
)

func strPtr(s string) *string { return &s }

func TestUpdateReplacementProfile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	doctor := env.register(t, "doc@example.com", domain.RoleReplacement)

	years := 12
	rate := 85.0
	updated, err := env.users.UpdateProfile(ctx, doctor.ID, &UpdateProfileInput{
		Name:            strPtr("Dr Martin"),
		Location:        strPtr(" Marseille "),
		ExperienceYears: &years,
		Languages:       []string{"fr", " en ", ""},
		HourlyRate:      &rate,
	})
	if err != nil {
		t.Fatalf("UpdateProfile() error = %v", err)
	}
	if updated.Name != "Dr Martin" {
		t.Errorf("name = %q", updated.Name)
	}
	p := updated.ReplacementProfile
	if p.Location != "Marseille" || p.ExperienceYears != 12 || p.Specialty != "Cardiologie" {
		t.Errorf("profile = %+v", p)
	}
	if len(p.Languages) != 2 || p.Languages[1] != "en" {
		t.Errorf("languages = %v", p.Languages)
	}
	// profile status is not user editable
	if updated.ProfileStatus != "pending" {
		t.Errorf("profile status = %q, want pending", updated.ProfileStatus)
	}

	_, err = env.users.UpdateProfile(ctx, doctor.ID, &UpdateProfileInput{Name: strPtr("  ")})
	assertKind(t, err, domain.ErrInvalidInput)

	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, -1)
	_, err = env.users.UpdateProfile(ctx, doctor.ID, &UpdateProfileInput{AvailableFrom: &from, AvailableTo: &to})
	assertKind(t, err, domain.ErrInvalidInput)
}

func TestUpdateEmployerProfile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	employer := env.register(t, "clinic@example.com", domain.RoleEmployer)

	_, err := env.users.UpdateProfile(ctx, employer.ID, &UpdateProfileInput{Siret: strPtr("123")})
	assertKind(t, err, domain.ErrInvalidInput)

	updated, err := env.users.UpdateProfile(ctx, employer.ID, &UpdateProfileInput{
		Siret: strPtr("123 456 789 00012"),
		City:  strPtr("Lyon"),
	})
	if err != nil {
		t.Fatalf("UpdateProfile() error = %v", err)
	}
	if updated.EmployerProfile.City != "Lyon" {
		t.Errorf("employer profile = %+v", updated.EmployerProfile)
	}
}

func TestSearchReplacementsOnlyApproved(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.createAdmin(t, "admin@example.com")
	approved := env.register(t, "approved@example.com", domain.RoleReplacement)
	env.register(t, "pending@example.com", domain.RoleReplacement)

	if _, err := env.admin.SetProfileStatus(ctx, admin.ID, approved.ID, "approved", ""); err != nil {
		t.Fatalf("SetProfileStatus() error = %v", err)
	}

	items, total, err := env.users.SearchReplacements(ctx, repositories.ReplacementSearch{Specialty: "cardiologie", Location: "lyon"}, pagination.New(1, 20))
	if err != nil {
		t.Fatalf("SearchReplacements() error = %v", err)
	}
	if total != 1 || items[0].ID != approved.ID {
		t.Errorf("got %d results: %+v", total, items)
	}

	_, total, _ = env.users.SearchReplacements(ctx, repositories.ReplacementSearch{Location: "paris"}, pagination.New(1, 20))
	if total != 0 {
		t.Errorf("paris results = %d, want 0", total)
	}

	_, err = env.users.PublicProfile(ctx, admin.ID)
	assertKind(t, err, domain.ErrNotFound)
}

func TestExperiences(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	doctor := env.register(t, "doc@example.com", domain.RoleReplacement)
	other := env.register(t, "other@example.com", domain.RoleReplacement)

	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2022, 6, 30, 0, 0, 0, 0, time.UTC)

	_, err := env.users.CreateExperience(ctx, doctor.ID, &ExperienceInput{Title: strPtr("Interne")})
	assertKind(t, err, domain.ErrInvalidInput)

	exp, err := env.users.CreateExperience(ctx, doctor.ID, &ExperienceInput{
		Title:         strPtr("Interne"),
		Establishment: strPtr("CHU Lyon"),
		Location:      strPtr("Lyon"),
		StartDate:     &start,
		EndDate:       &end,
	})
	if err != nil {
		t.Fatalf("CreateExperience() error = %v", err)
	}

	// PATCH keeps absent fields
	patched, err := env.users.PatchExperience(ctx, doctor.ID, exp.ID, &ExperienceInput{Title: strPtr("Chef de clinique")})
	if err != nil {
		t.Fatalf("PatchExperience() error = %v", err)
	}
	if patched.Title != "Chef de clinique" || patched.Location != "Lyon" || patched.EndDate == nil {
		t.Errorf("patched = %+v", patched)
	}

	// PUT clears absent optional fields
	replaced, err := env.users.ReplaceExperience(ctx, doctor.ID, exp.ID, &ExperienceInput{
		Title:         strPtr("Assistant"),
		Establishment: strPtr("CHU Lyon"),
		StartDate:     &start,
	})
	if err != nil {
		t.Fatalf("ReplaceExperience() error = %v", err)
	}
	if replaced.Location != "" || replaced.EndDate != nil {
		t.Errorf("replaced = %+v", replaced)
	}

	before := start.AddDate(-1, 0, 0)
	_, err = env.users.PatchExperience(ctx, doctor.ID, exp.ID, &ExperienceInput{EndDate: &before})
	assertKind(t, err, domain.ErrInvalidInput)

	assertKind(t, env.users.DeleteExperience(ctx, other.ID, exp.ID), domain.ErrForbidden)
	if err := env.users.DeleteExperience(ctx, doctor.ID, exp.ID); err != nil {
		t.Fatalf("DeleteExperience() error = %v", err)
	}
	items, _ := env.users.ListExperiences(ctx, doctor.ID)
	if len(items) != 0 {
		t.Errorf("experiences = %d, want 0", len(items))
	}
}

func TestDiplomas(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	doctor := env.register(t, "doc@example.com", domain.RoleReplacement)
	other := env.register(t, "other@example.com", domain.RoleReplacement)

	_, err := env.users.CreateDiploma(ctx, doctor.ID, &DiplomaInput{Title: "DES", Institution: "Lyon 1", Year: 1850})
	assertKind(t, err, domain.ErrInvalidInput)

	d, err := env.users.CreateDiploma(ctx, doctor.ID, &DiplomaInput{Title: "DES Cardiologie", Institution: "Lyon 1", Year: 2019})
	if err != nil {
		t.Fatalf("CreateDiploma() error = %v", err)
	}

	view, err := env.users.GetProfile(ctx, doctor.ID)
	if err != nil {
		t.Fatalf("GetProfile() error = %v", err)
	}
	if len(view.Diplomas) != 1 || view.Documents == nil {
		t.Errorf("view = %+v", view)
	}

	assertKind(t, env.users.DeleteDiploma(ctx, other.ID, d.ID), domain.ErrForbidden)
	if err := env.users.DeleteDiploma(ctx, doctor.ID, d.ID); err != nil {
		t.Fatalf("DeleteDiploma() error = %v", err)
	}
	assertKind(t, env.users.DeleteDiploma(ctx, doctor.ID, d.ID), domain.ErrNotFound)
}
