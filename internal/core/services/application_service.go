package services

import (
	"context"
	"errors"
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

// ApplicationService runs the doctor -> mission application workflow
type ApplicationService struct {
	db       *gorm.DB
	apps     *repositories.ApplicationRepository
	missions *repositories.MissionRepository
	notifier Notifier
}

// NewApplicationService creates a new application service
func NewApplicationService(
	db *gorm.DB,
	apps *repositories.ApplicationRepository,
	missions *repositories.MissionRepository,
	notifier Notifier,
) *ApplicationService {
	return &ApplicationService{
		db:       db,
		apps:     apps,
		missions: missions,
		notifier: notifier,
	}
}

// ApplyInput carries a doctor's application
// ApplicationSummary is the per-status application count of one mission
type ApplicationSummary struct {
	MissionID uint             `json:"mission_id"`
	ByStatus  map[string]int64 `json:"by_status"`
	Total     int64            `json:"total"`
}

type ApplyInput struct {
	MissionID    uint
	CoverLetter  string
	ProposedRate *float64
}

// Apply creates a pending application, or reopens a withdrawn one.
// At most one non-withdrawn application exists per (mission, doctor).
func (s *ApplicationService) Apply(ctx context.Context, replacementID uint, input *ApplyInput) (*models.ApplicationResponse, error) {
	if input.MissionID == 0 {
		return nil, invalid("Mission ID is required")
	}
	if input.ProposedRate != nil && *input.ProposedRate < 0 {
		return nil, invalid("Proposed rate cannot be negative")
	}
	coverLetter := strings.TrimSpace(input.CoverLetter)

	mission, err := s.missions.GetByID(ctx, input.MissionID)
	if err != nil {
		return nil, notFoundOr(err, "Mission not found")
	}
	if mission.Status != string(domain.MissionOpen) {
		return nil, domain.NewError(domain.ErrMissionNotOpen, "Mission is not open for applications")
	}

	conflict := domain.NewError(domain.ErrDuplicateEntry, "You have already applied to this mission")
	var appID uint

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		apps := s.apps.WithTx(tx)

		existing, err := apps.FindByMissionAndReplacement(ctx, mission.ID, replacementID)
		switch {
		case err == nil:
			if existing.Status != string(domain.ApplicationWithdrawn) {
				return conflict
			}
			n, err := apps.Reopen(ctx, existing.ID, coverLetter, input.ProposedRate)
			if err != nil {
				return err
			}
			if n == 0 {
				return conflict
			}
			appID = existing.ID
		case errors.Is(err, gorm.ErrRecordNotFound):
			app := &models.Application{
				MissionID:     mission.ID,
				ReplacementID: replacementID,
				CoverLetter:   coverLetter,
				ProposedRate:  input.ProposedRate,
				Status:        string(domain.ApplicationPending),
			}
			if err := apps.Create(ctx, app); err != nil {
				return duplicateOr(err, conflict.Message)
			}
			appID = app.ID
		default:
			return err
		}

		return s.notifier.NotifyTx(ctx, tx, NewNotification(
			mission.EmployerID,
			domain.NotifyApplicationReceived,
			"New application",
			fmt.Sprintf("A doctor applied to your mission \"%s\".", mission.Title),
			appID,
		))
	})
	if err != nil {
		return nil, err
	}

	log.Printf("📨 Application %d: doctor %d applied to mission %d", appID, replacementID, mission.ID)
	return s.get(ctx, appID)
}

// Respond lets the owning employer accept or reject a pending application.
// Anyone other than the owning employer is refused before the payload is looked at.
func (s *ApplicationService) Respond(ctx context.Context, employerID, id uint, status string) (*models.ApplicationResponse, error) {
	app, err := s.apps.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Application not found")
	}
	if app.Mission == nil || app.Mission.EmployerID != employerID {
		return nil, forbidden("Only the mission owner can respond to this application")
	}

	target := domain.ApplicationStatus(status)
	if target != domain.ApplicationAccepted && target != domain.ApplicationRejected {
		return nil, domain.NewError(domain.ErrInvalidStatus, "Status must be accepted or rejected")
	}
	if app.Status != string(domain.ApplicationPending) {
		return nil, domain.NewError(domain.ErrInvalidTransition, "Only pending applications can be answered")
	}

	if target == domain.ApplicationAccepted {
		err = s.accept(ctx, app)
	} else {
		err = s.reject(ctx, app)
	}
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Application %d %s by employer %d", id, target, employerID)
	return s.get(ctx, id)
}

// accept runs the acceptance cascade in one transaction: the application is
// accepted, the mission moves open -> in_progress, every other pending
// application of the mission is rejected and all applicants are notified.
func (s *ApplicationService) accept(ctx context.Context, app *models.Application) error {
	now := time.Now()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		apps := s.apps.WithTx(tx)

		n, err := apps.TransitionStatus(ctx, app.ID, string(domain.ApplicationPending), string(domain.ApplicationAccepted), now)
		if err != nil {
			return err
		}
		if n == 0 {
			return domain.NewError(domain.ErrInvalidTransition, "Application is no longer pending")
		}

		n, err = s.missions.WithTx(tx).TransitionStatus(ctx, app.MissionID,
			[]string{string(domain.MissionOpen)}, string(domain.MissionInProgress))
		if err != nil {
			return err
		}
		if n == 0 {
			return domain.NewError(domain.ErrMissionNotOpen, "Mission is no longer open")
		}

		siblings, err := apps.RejectPendingSiblings(ctx, app.MissionID, app.ID, now)
		if err != nil {
			return err
		}

		notes := []*models.Notification{NewNotification(
			app.ReplacementID,
			domain.NotifyApplicationAccepted,
			"Application accepted",
			fmt.Sprintf("Your application to \"%s\" was accepted.", app.Mission.Title),
			app.ID,
		)}
		for _, sib := range siblings {
			notes = append(notes, NewNotification(
				sib.ReplacementID,
				domain.NotifyApplicationRejected,
				"Application not selected",
				fmt.Sprintf("The mission \"%s\" has been filled by another doctor.", app.Mission.Title),
				sib.ID,
			))
		}
		return s.notifier.NotifyTx(ctx, tx, notes...)
	})
}

func (s *ApplicationService) reject(ctx context.Context, app *models.Application) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		n, err := s.apps.WithTx(tx).TransitionStatus(ctx, app.ID,
			string(domain.ApplicationPending), string(domain.ApplicationRejected), time.Now())
		if err != nil {
			return err
		}
		if n == 0 {
			return domain.NewError(domain.ErrInvalidTransition, "Application is no longer pending")
		}

		return s.notifier.NotifyTx(ctx, tx, NewNotification(
			app.ReplacementID,
			domain.NotifyApplicationRejected,
			"Application rejected",
			fmt.Sprintf("Your application to \"%s\" was rejected.", app.Mission.Title),
			app.ID,
		))
	})
}

// Withdraw lets the applicant withdraw a pending application
func (s *ApplicationService) Withdraw(ctx context.Context, replacementID, id uint) (*models.ApplicationResponse, error) {
	app, err := s.apps.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Application not found")
	}
	if app.ReplacementID != replacementID {
		return nil, forbidden("Only the applicant can withdraw this application")
	}
	if app.Status != string(domain.ApplicationPending) {
		return nil, domain.NewError(domain.ErrInvalidTransition, "Only pending applications can be withdrawn")
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		n, err := s.apps.WithTx(tx).TransitionStatus(ctx, app.ID,
			string(domain.ApplicationPending), string(domain.ApplicationWithdrawn), time.Now())
		if err != nil {
			return err
		}
		if n == 0 {
			return domain.NewError(domain.ErrInvalidTransition, "Application is no longer pending")
		}

		var title string
		var employerID uint
		if app.Mission != nil {
			title, employerID = app.Mission.Title, app.Mission.EmployerID
		}
		return s.notifier.NotifyTx(ctx, tx, NewNotification(
			employerID,
			domain.NotifyApplicationWithdrawn,
			"Application withdrawn",
			fmt.Sprintf("A doctor withdrew an application to \"%s\".", title),
			app.ID,
		))
	})
	if err != nil {
		return nil, err
	}

	log.Printf("↩️ Application %d withdrawn by doctor %d", id, replacementID)
	return s.get(ctx, id)
}

// List lists the caller's applications: doctors see their own, employers
// see those to their missions, admins see all.
func (s *ApplicationService) List(ctx context.Context, userID uint, role string, filter repositories.ApplicationFilter, params *pagination.Params) ([]*models.ApplicationResponse, int64, error) {
	if filter.Status != "" && !domain.ApplicationStatus(filter.Status).Valid() {
		return nil, 0, domain.NewError(domain.ErrInvalidStatus, "Invalid application status")
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

	return s.list(ctx, filter, params)
}

// ListForMission lists the applications of one mission for its owner
func (s *ApplicationService) ListForMission(ctx context.Context, userID uint, role string, missionID uint, status string, params *pagination.Params) ([]*models.ApplicationResponse, int64, error) {
	if err := s.canReview(ctx, userID, role, missionID); err != nil {
		return nil, 0, err
	}
	if status != "" && !domain.ApplicationStatus(status).Valid() {
		return nil, 0, domain.NewError(domain.ErrInvalidStatus, "Invalid application status")
	}

	return s.list(ctx, repositories.ApplicationFilter{MissionID: missionID, Status: status}, params)
}

// StatusSummary counts a mission's applications per status; every status is present
func (s *ApplicationService) StatusSummary(ctx context.Context, userID uint, role string, missionID uint) (*ApplicationSummary, error) {
	if err := s.canReview(ctx, userID, role, missionID); err != nil {
		return nil, err
	}

	counts, err := s.apps.CountByStatus(ctx, missionID)
	if err != nil {
		return nil, err
	}

	summary := &ApplicationSummary{MissionID: missionID, ByStatus: make(map[string]int64)}
	for _, st := range []domain.ApplicationStatus{
		domain.ApplicationPending, domain.ApplicationAccepted, domain.ApplicationRejected, domain.ApplicationWithdrawn,
	} {
		summary.ByStatus[string(st)] = counts[string(st)]
		summary.Total += counts[string(st)]
	}
	return summary, nil
}

// canReview allows the mission owner and admins: 404 when missing, 403 otherwise
func (s *ApplicationService) canReview(ctx context.Context, userID uint, role string, missionID uint) error {
	mission, err := s.missions.GetByID(ctx, missionID)
	if err != nil {
		return notFoundOr(err, "Mission not found")
	}
	if mission.EmployerID != userID && role != string(domain.RoleAdmin) {
		return forbidden("You are not the owner of this mission")
	}
	return nil
}

func (s *ApplicationService) list(ctx context.Context, filter repositories.ApplicationFilter, params *pagination.Params) ([]*models.ApplicationResponse, int64, error) {
	apps, total, err := s.apps.List(ctx, filter, params)
	if err != nil {
		return nil, 0, err
	}
	items := make([]*models.ApplicationResponse, len(apps))
	for i, a := range apps {
		items[i] = a.ToResponse()
	}
	return items, total, nil
}

func (s *ApplicationService) get(ctx context.Context, id uint) (*models.ApplicationResponse, error) {
	app, err := s.apps.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Application not found")
	}
	return app.ToResponse(), nil
}
