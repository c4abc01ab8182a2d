package services

import (
	"context"
	"testing"

	"medirelay/internal/adapters/persistence/models"
	"medirelay/internal/adapters/persistence/repositories"
	"medirelay/internal/core/domain"
	"medirelay/internal/pkg/pagination"
)

func TestProposalAcceptStartsMission(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	employer := env.register(t, "clinic@example.com", domain.RoleEmployer)
	doctor := env.register(t, "doc@example.com", domain.RoleReplacement)
	applicant := env.register(t, "applicant@example.com", domain.RoleReplacement)
	mission := env.createMission(t, employer.ID, "Cabinet")
	app := env.apply(t, applicant.ID, mission.ID)

	rate := 700.0
	proposal, err := env.proposals.Create(ctx, employer.ID, &ProposalInput{
		MissionID:     mission.ID,
		ReplacementID: doctor.ID,
		Message:       "Disponible en août ?",
		ProposedRate:  &rate,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if proposal.Status != "pending" {
		t.Errorf("status = %q, want pending", proposal.Status)
	}

	_, err = env.proposals.Create(ctx, employer.ID, &ProposalInput{MissionID: mission.ID, ReplacementID: doctor.ID})
	assertKind(t, err, domain.ErrDuplicateEntry)

	// Only the recipient may answer, whatever the payload
	_, err = env.proposals.Respond(ctx, applicant.ID, proposal.ID, "bogus")
	assertKind(t, err, domain.ErrForbidden)
	_, err = env.proposals.Respond(ctx, doctor.ID, proposal.ID, "bogus")
	assertKind(t, err, domain.ErrInvalidStatus)

	accepted, err := env.proposals.Respond(ctx, doctor.ID, proposal.ID, "accepted")
	if err != nil {
		t.Fatalf("Respond() error = %v", err)
	}
	if accepted.Status != "accepted" || accepted.RespondedAt == nil {
		t.Errorf("accepted = %+v", accepted)
	}

	got, _ := env.missions.Get(ctx, mission.ID)
	if got.Status != "in_progress" {
		t.Errorf("mission status = %q, want in_progress", got.Status)
	}

	// No cascade on applications
	var stored models.Application
	env.db.First(&stored, app.ID)
	if stored.Status != "pending" {
		t.Errorf("application status = %q, want pending", stored.Status)
	}

	var notes int64
	env.db.Model(&models.Notification{}).Where("user_id = ? AND type = ?", employer.ID, "proposal_accepted").Count(&notes)
	if notes != 1 {
		t.Errorf("employer proposal_accepted notifications = %d, want 1", notes)
	}

	_, err = env.proposals.Respond(ctx, doctor.ID, proposal.ID, "rejected")
	assertKind(t, err, domain.ErrInvalidTransition)
}

func TestCreateProposalValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	employer := env.register(t, "clinic@example.com", domain.RoleEmployer)
	rival := env.register(t, "rival@example.com", domain.RoleEmployer)
	doctor := env.register(t, "doc@example.com", domain.RoleReplacement)
	mission := env.createMission(t, employer.ID, "Cabinet")

	inactive := env.register(t, "gone@example.com", domain.RoleReplacement)
	env.db.Model(&models.User{}).Where("id = ?", inactive.ID).Update("is_active", false)

	tests := []struct {
		name       string
		employerID uint
		input      ProposalInput
		want       error
	}{
		{"missing mission", employer.ID, ProposalInput{ReplacementID: doctor.ID}, domain.ErrInvalidInput},
		{"unknown mission", employer.ID, ProposalInput{MissionID: 9999, ReplacementID: doctor.ID}, domain.ErrNotFound},
		{"not owner", rival.ID, ProposalInput{MissionID: mission.ID, ReplacementID: doctor.ID}, domain.ErrForbidden},
		{"unknown doctor", employer.ID, ProposalInput{MissionID: mission.ID, ReplacementID: 9999}, domain.ErrNotFound},
		{"inactive doctor", employer.ID, ProposalInput{MissionID: mission.ID, ReplacementID: inactive.ID}, domain.ErrNotFound},
		{"target is employer", employer.ID, ProposalInput{MissionID: mission.ID, ReplacementID: rival.ID}, domain.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := tt.input
			_, err := env.proposals.Create(ctx, tt.employerID, &input)
			assertKind(t, err, tt.want)
		})
	}

	items, total, err := env.proposals.List(ctx, doctor.ID, "replacement", repositories.ProposalFilter{}, pagination.New(1, 20))
	if err != nil || total != 0 || len(items) != 0 {
		t.Errorf("List() = %d items, total %d, err %v", len(items), total, err)
	}
}
