package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"medirelay/internal/adapters/persistence/models"
	"medirelay/internal/adapters/persistence/repositories"
	"medirelay/internal/core/domain"
	"medirelay/internal/pkg/pagination"

	"gorm.io/gorm"
)

// ProposalService runs the employer -> doctor direct offer workflow
type ProposalService struct {
	db        *gorm.DB
	proposals *repositories.ProposalRepository
	missions  *repositories.MissionRepository
	userRepo  repositories.UserRepository
	notifier  Notifier
}

// NewProposalService creates a new proposal service
func NewProposalService(
	db *gorm.DB,
	proposals *repositories.ProposalRepository,
	missions *repositories.MissionRepository,
	userRepo repositories.UserRepository,
	notifier Notifier,
) *ProposalService {
	return &ProposalService{
		db:        db,
		proposals: proposals,
		missions:  missions,
		userRepo:  userRepo,
		notifier:  notifier,
	}
}

// ProposalInput carries an employer's offer
type ProposalInput struct {
	MissionID     uint
	ReplacementID uint
	Message       string
	ProposedRate  *float64
}

// Create sends a proposal for an open mission owned by employerID
func (s *ProposalService) Create(ctx context.Context, employerID uint, input *ProposalInput) (*models.ProposalResponse, error) {
	if input.MissionID == 0 {
		return nil, invalid("Mission ID is required")
	}
	if input.ReplacementID == 0 {
		return nil, invalid("Replacement ID is required")
	}
	if input.ProposedRate != nil && *input.ProposedRate < 0 {
		return nil, invalid("Proposed rate cannot be negative")
	}

	mission, err := s.missions.GetByID(ctx, input.MissionID)
	if err != nil {
		return nil, notFoundOr(err, "Mission not found")
	}
	if mission.EmployerID != employerID {
		return nil, forbidden("You are not the owner of this mission")
	}
	if mission.Status != string(domain.MissionOpen) {
		return nil, domain.NewError(domain.ErrMissionNotOpen, "Mission is not open")
	}

	doctor, err := s.userRepo.GetByID(ctx, input.ReplacementID)
	if err != nil {
		return nil, notFoundOr(err, "Doctor not found")
	}
	if !doctor.IsActive {
		return nil, domain.NewError(domain.ErrNotFound, "Doctor not found")
	}
	if doctor.Role != string(domain.RoleReplacement) {
		return nil, invalid("Proposals can only be sent to replacement doctors")
	}

	proposal := &models.Proposal{
		MissionID:     mission.ID,
		EmployerID:    employerID,
		ReplacementID: doctor.ID,
		Message:       strings.TrimSpace(input.Message),
		ProposedRate:  input.ProposedRate,
		Status:        string(domain.ProposalPending),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.proposals.WithTx(tx).Create(ctx, proposal); err != nil {
			return duplicateOr(err, "A proposal for this mission was already sent to this doctor")
		}
		return s.notifier.NotifyTx(ctx, tx, NewNotification(
			doctor.ID,
			domain.NotifyProposalReceived,
			"New mission proposal",
			fmt.Sprintf("You received a proposal for \"%s\".", mission.Title),
			proposal.ID,
		))
	})
	if err != nil {
		return nil, err
	}

	log.Printf("📨 Proposal %d: employer %d -> doctor %d (mission %d)", proposal.ID, employerID, doctor.ID, mission.ID)
	return s.get(ctx, proposal.ID)
}

// Respond lets the target doctor accept or reject a pending proposal.
// Acceptance moves the mission to in_progress in the same transaction;
// sibling proposals and applications are left untouched.
func (s *ProposalService) Respond(ctx context.Context, replacementID, id uint, status string) (*models.ProposalResponse, error) {
	proposal, err := s.proposals.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Proposal not found")
	}
	if proposal.ReplacementID != replacementID {
		return nil, forbidden("Only the recipient can respond to this proposal")
	}

	target := domain.ProposalStatus(status)
	if target != domain.ProposalAccepted && target != domain.ProposalRejected {
		return nil, domain.NewError(domain.ErrInvalidStatus, "Status must be accepted or rejected")
	}
	if proposal.Status != string(domain.ProposalPending) {
		return nil, domain.NewError(domain.ErrInvalidTransition, "Only pending proposals can be answered")
	}

	var title string
	if proposal.Mission != nil {
		title = proposal.Mission.Title
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		n, err := s.proposals.WithTx(tx).TransitionStatus(ctx, proposal.ID,
			string(domain.ProposalPending), string(target), time.Now())
		if err != nil {
			return err
		}
		if n == 0 {
			return domain.NewError(domain.ErrInvalidTransition, "Proposal is no longer pending")
		}

		notifyType := domain.NotifyProposalRejected
		message := fmt.Sprintf("Your proposal for \"%s\" was declined.", title)

		if target == domain.ProposalAccepted {
			n, err := s.missions.WithTx(tx).TransitionStatus(ctx, proposal.MissionID,
				[]string{string(domain.MissionOpen), string(domain.MissionInProgress)},
				string(domain.MissionInProgress))
			if err != nil {
				return err
			}
			if n == 0 {
				return domain.NewError(domain.ErrMissionNotOpen, "Mission is no longer available")
			}
			notifyType = domain.NotifyProposalAccepted
			message = fmt.Sprintf("Your proposal for \"%s\" was accepted.", title)
		}

		return s.notifier.NotifyTx(ctx, tx, NewNotification(
			proposal.EmployerID,
			notifyType,
			"Proposal answered",
			message,
			proposal.ID,
		))
	})
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Proposal %d %s by doctor %d", id, target, replacementID)
	return s.get(ctx, id)
}

// List lists received (doctor) or sent (employer) proposals; admins see all
func (s *ProposalService) List(ctx context.Context, userID uint, role string, filter repositories.ProposalFilter, params *pagination.Params) ([]*models.ProposalResponse, int64, error) {
	if filter.Status != "" && !domain.ProposalStatus(filter.Status).Valid() {
		return nil, 0, domain.NewError(domain.ErrInvalidStatus, "Invalid proposal status")
	}

	switch domain.Role(role) {
	case domain.RoleReplacement:
		filter.ReplacementID = userID
	case domain.RoleEmployer:
		filter.EmployerID = userID
	case domain.RoleAdmin:
	default:
		return nil, 0, forbidden("Unknown role")
	}

	proposals, total, err := s.proposals.List(ctx, filter, params)
	if err != nil {
		return nil, 0, err
	}
	items := make([]*models.ProposalResponse, len(proposals))
	for i, p := range proposals {
		items[i] = p.ToResponse()
	}
	return items, total, nil
}

func (s *ProposalService) get(ctx context.Context, id uint) (*models.ProposalResponse, error) {
	p, err := s.proposals.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Proposal not found")
	}
	return p.ToResponse(), nil
}
