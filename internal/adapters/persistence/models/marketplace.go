package models

import "time"

// ============================================================
// Missions
// ============================================================

// Mission represents missions table
type Mission struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	EmployerID        uint       `gorm:"not null;index" json:"employer_id"`
	Title             string     `gorm:"size:200;not null" json:"title"`
	Description       string     `gorm:"type:text;not null" json:"description"`
	SpecialtyRequired string     `gorm:"size:120;not null;index" json:"specialty_required"`
	Location          string     `gorm:"size:150;not null" json:"location"`
	StartDate         *time.Time `gorm:"index" json:"start_date"`
	EndDate           *time.Time `json:"end_date"`
	Rate              *float64   `gorm:"index" json:"rate"`
	RateUnit          string     `gorm:"size:20" json:"rate_unit"`
	Status            string     `gorm:"size:20;not null;default:'open';index" json:"status"`
	IsUrgent          bool       `gorm:"default:false;index" json:"is_urgent"`
	MissionType       string     `gorm:"size:50" json:"mission_type"`
	CreatedAt         time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt         time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	// Relations
	Employer *User `gorm:"foreignKey:EmployerID" json:"-"`
}

func (Mission) TableName() string {
	return "missions"
}

// MissionResponse DTO
type MissionResponse struct {
	ID                uint       `json:"id"`
	EmployerID        uint       `json:"employer_id"`
	EmployerName      string     `json:"employer_name,omitempty"`
	OrganizationName  string     `json:"organization_name,omitempty"`
	Title             string     `json:"title"`
	Description       string     `json:"description"`
	SpecialtyRequired string     `json:"specialty_required"`
	Location          string     `json:"location"`
	StartDate         *time.Time `json:"start_date"`
	EndDate           *time.Time `json:"end_date"`
	Rate              *float64   `json:"rate"`
	RateUnit          string     `json:"rate_unit"`
	Status            string     `json:"status"`
	IsUrgent          bool       `json:"is_urgent"`
	MissionType       string     `json:"mission_type"`
	ApplicationCount  *int64     `json:"application_count,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

func (m *Mission) ToResponse() *MissionResponse {
	resp := &MissionResponse{
		ID:                m.ID,
		EmployerID:        m.EmployerID,
		Title:             m.Title,
		Description:       m.Description,
		SpecialtyRequired: m.SpecialtyRequired,
		Location:          m.Location,
		StartDate:         m.StartDate,
		EndDate:           m.EndDate,
		Rate:              m.Rate,
		RateUnit:          m.RateUnit,
		Status:            m.Status,
		IsUrgent:          m.IsUrgent,
		MissionType:       m.MissionType,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}

	if m.Employer != nil {
		resp.EmployerName = m.Employer.Name
		if m.Employer.EmployerProfile != nil {
			resp.OrganizationName = m.Employer.EmployerProfile.OrganizationName
		}
	}

	return resp
}

// ============================================================
// Applications (doctor -> mission)
// ============================================================

// Application represents applications table.
// (mission_id, replacement_id) is unique; a withdrawn row is reopened on re-apply.
type Application struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	MissionID     uint       `gorm:"not null;uniqueIndex:idx_application_mission_replacement;index" json:"mission_id"`
	ReplacementID uint       `gorm:"not null;uniqueIndex:idx_application_mission_replacement;index" json:"replacement_id"`
	CoverLetter   string     `gorm:"type:text" json:"cover_letter"`
	ProposedRate  *float64   `json:"proposed_rate"`
	Status        string     `gorm:"size:20;not null;default:'pending';index" json:"status"`
	AppliedAt     time.Time  `gorm:"autoCreateTime" json:"applied_at"`
	RespondedAt   *time.Time `json:"responded_at"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	// Relations
	Mission     *Mission `gorm:"foreignKey:MissionID" json:"-"`
	Replacement *User    `gorm:"foreignKey:ReplacementID" json:"-"`
}

func (Application) TableName() string {
	return "applications"
}

// ApplicationResponse DTO
type ApplicationResponse struct {
	ID              uint                `json:"id"`
	MissionID       uint                `json:"mission_id"`
	MissionTitle    string              `json:"mission_title,omitempty"`
	MissionStatus   string              `json:"mission_status,omitempty"`
	ReplacementID   uint                `json:"replacement_id"`
	ReplacementName string              `json:"replacement_name,omitempty"`
	Replacement     *PublicUserResponse `json:"replacement,omitempty"`
	CoverLetter     string              `json:"cover_letter"`
	ProposedRate    *float64            `json:"proposed_rate"`
	Status          string              `json:"status"`
	AppliedAt       time.Time           `json:"applied_at"`
	RespondedAt     *time.Time          `json:"responded_at"`
}

func (a *Application) ToResponse() *ApplicationResponse {
	resp := &ApplicationResponse{
		ID:            a.ID,
		MissionID:     a.MissionID,
		ReplacementID: a.ReplacementID,
		CoverLetter:   a.CoverLetter,
		ProposedRate:  a.ProposedRate,
		Status:        a.Status,
		AppliedAt:     a.AppliedAt,
		RespondedAt:   a.RespondedAt,
	}
	if a.Mission != nil {
		resp.MissionTitle = a.Mission.Title
		resp.MissionStatus = a.Mission.Status
	}
	if a.Replacement != nil {
		resp.ReplacementName = a.Replacement.Name
		resp.Replacement = a.Replacement.ToPublicResponse()
	}
	return resp
}

// ============================================================
// Proposals (employer -> doctor)
// ============================================================

// Proposal represents proposals table
type Proposal struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	MissionID     uint       `gorm:"not null;uniqueIndex:idx_proposal_mission_replacement_employer;index" json:"mission_id"`
	EmployerID    uint       `gorm:"not null;uniqueIndex:idx_proposal_mission_replacement_employer;index" json:"employer_id"`
	ReplacementID uint       `gorm:"not null;uniqueIndex:idx_proposal_mission_replacement_employer;index" json:"replacement_id"`
	Message       string     `gorm:"type:text" json:"message"`
	ProposedRate  *float64   `json:"proposed_rate"`
	Status        string     `gorm:"size:20;not null;default:'pending';index" json:"status"`
	SentAt        time.Time  `gorm:"autoCreateTime" json:"sent_at"`
	RespondedAt   *time.Time `json:"responded_at"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	// Relations
	Mission     *Mission `gorm:"foreignKey:MissionID" json:"-"`
	Employer    *User    `gorm:"foreignKey:EmployerID" json:"-"`
	Replacement *User    `gorm:"foreignKey:ReplacementID" json:"-"`
}

func (Proposal) TableName() string {
	return "proposals"
}

// ProposalResponse DTO
type ProposalResponse struct {
	ID               uint       `json:"id"`
	MissionID        uint       `json:"mission_id"`
	MissionTitle     string     `json:"mission_title,omitempty"`
	EmployerID       uint       `json:"employer_id"`
	EmployerName     string     `json:"employer_name,omitempty"`
	OrganizationName string     `json:"organization_name,omitempty"`
	ReplacementID    uint       `json:"replacement_id"`
	ReplacementName  string     `json:"replacement_name,omitempty"`
	Message          string     `json:"message"`
	ProposedRate     *float64   `json:"proposed_rate"`
	Status           string     `json:"status"`
	SentAt           time.Time  `json:"sent_at"`
	RespondedAt      *time.Time `json:"responded_at"`
}

func (p *Proposal) ToResponse() *ProposalResponse {
	resp := &ProposalResponse{
		ID:            p.ID,
		MissionID:     p.MissionID,
		EmployerID:    p.EmployerID,
		ReplacementID: p.ReplacementID,
		Message:       p.Message,
		ProposedRate:  p.ProposedRate,
		Status:        p.Status,
		SentAt:        p.SentAt,
		RespondedAt:   p.RespondedAt,
	}
	if p.Mission != nil {
		resp.MissionTitle = p.Mission.Title
	}
	if p.Employer != nil {
		resp.EmployerName = p.Employer.Name
		if p.Employer.EmployerProfile != nil {
			resp.OrganizationName = p.Employer.EmployerProfile.OrganizationName
		}
	}
	if p.Replacement != nil {
		resp.ReplacementName = p.Replacement.Name
	}
	return resp
}
