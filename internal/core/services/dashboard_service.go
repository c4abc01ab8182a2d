package services

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// DashboardService computes admin aggregates
type DashboardService struct {
	db *gorm.DB
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{db: db}
}

// AdminStats represents the admin dashboard counters
type AdminStats struct {
	TotalUsers        int64            `json:"total_users"`
	UsersByRole       map[string]int64 `json:"users_by_role"`
	ActiveUsers       int64            `json:"active_users"`
	ReplacementStatus map[string]int64 `json:"replacement_profiles_by_status"`
	EmployerStatus    map[string]int64 `json:"employer_profiles_by_status"`

	TotalMissions        int64            `json:"total_missions"`
	MissionsByStatus     map[string]int64 `json:"missions_by_status"`
	UrgentOpenMissions   int64            `json:"urgent_open_missions"`
	MissionsThisMonth    int64            `json:"missions_this_month"`
	ApplicationsByStatus map[string]int64 `json:"applications_by_status"`
	ProposalsByStatus    map[string]int64 `json:"proposals_by_status"`
	DocumentsByStatus    map[string]int64 `json:"documents_by_status"`
	PendingDocuments     int64            `json:"pending_documents"`
}

// GetAdminStats returns admin dashboard counters
func (s *DashboardService) GetAdminStats(ctx context.Context) (*AdminStats, error) {
	data := &AdminStats{}
	db := s.db.WithContext(ctx)
	var err error

	// Users
	if data.UsersByRole, err = s.countBy(db, "users", "role"); err != nil {
		return nil, err
	}
	data.TotalUsers = sum(data.UsersByRole)
	if err = db.Table("users").Where("is_active = ?", true).Count(&data.ActiveUsers).Error; err != nil {
		return nil, err
	}

	// Profiles
	if data.ReplacementStatus, err = s.countBy(db, "replacement_profiles", "profile_status"); err != nil {
		return nil, err
	}
	if data.EmployerStatus, err = s.countBy(db, "employer_profiles", "profile_status"); err != nil {
		return nil, err
	}

	// Missions
	if data.MissionsByStatus, err = s.countBy(db, "missions", "status"); err != nil {
		return nil, err
	}
	data.TotalMissions = sum(data.MissionsByStatus)
	if err = db.Table("missions").Where("status = ? AND is_urgent = ?", "open", true).Count(&data.UrgentOpenMissions).Error; err != nil {
		return nil, err
	}

	now := time.Now()
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	if err = db.Table("missions").Where("created_at >= ?", startOfMonth).Count(&data.MissionsThisMonth).Error; err != nil {
		return nil, err
	}

	// Workflow
	if data.ApplicationsByStatus, err = s.countBy(db, "applications", "status"); err != nil {
		return nil, err
	}
	if data.ProposalsByStatus, err = s.countBy(db, "proposals", "status"); err != nil {
		return nil, err
	}

	// Documents
	if data.DocumentsByStatus, err = s.countBy(db, "documents", "verification_status"); err != nil {
		return nil, err
	}
	data.PendingDocuments = data.DocumentsByStatus["pending"]

	return data, nil
}

// countBy groups table rows by column
func (s *DashboardService) countBy(db *gorm.DB, table, column string) (map[string]int64, error) {
	var rows []struct {
		Label string
		Total int64
	}
	err := db.Table(table).
		Select(column + " AS label, COUNT(*) AS total").
		Group(column).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Label] = r.Total
	}
	return counts, nil
}

func sum(counts map[string]int64) int64 {
	var total int64
	for _, v := range counts {
		total += v
	}
	return total
}
