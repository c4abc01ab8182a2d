package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"medirelay/internal/adapters/persistence/models"
	"medirelay/internal/adapters/persistence/repositories"
	"medirelay/internal/adapters/storage"
	"medirelay/internal/config"
	"medirelay/internal/core/domain"
	"medirelay/internal/pkg/password"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testMaxBytes = 1024 * 1024

// testEnv wires every service against one in-memory database
type testEnv struct {
	db    *gorm.DB
	store *storage.Local
	cfg   *config.Config

	auth          *AuthService
	users         *UserService
	missions      *MissionService
	applications  *ApplicationService
	proposals     *ProposalService
	documents     *DocumentService
	notifications *NotificationService
	admin         *AdminService
	dashboard     *DashboardService
	cron          *CronService
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	password.UseMinCost()

	// unique in-memory database per test
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := setupTestDB(t)

	store, err := storage.NewLocal(t.TempDir(), "/uploads")
	if err != nil {
		t.Fatalf("storage: %v", err)
	}

	cfg := &config.Config{
		AppMode:           "dev",
		JWT:               config.JWTConfig{Secret: "test-secret-test-secret-test-secret", ExpiryDays: 7},
		ResetTokenMinutes: 60,
	}

	userRepo := repositories.NewUserRepository(db)
	profileRepo := repositories.NewProfileRepository(db)
	missionRepo := repositories.NewMissionRepository(db)
	documentRepo := repositories.NewDocumentRepository(db)
	resetRepo := repositories.NewPasswordResetRepository(db)
	notifications := NewNotificationService(repositories.NewNotificationRepository(db))
	documents := NewDocumentService(db, documentRepo, store, notifications, testMaxBytes)

	return &testEnv{
		db:            db,
		store:         store,
		cfg:           cfg,
		auth:          NewAuthService(db, userRepo, profileRepo, resetRepo, cfg),
		users:         NewUserService(db, userRepo, profileRepo, repositories.NewCVRepository(db), documentRepo, store),
		missions:      NewMissionService(db, missionRepo),
		applications:  NewApplicationService(db, repositories.NewApplicationRepository(db), missionRepo, notifications),
		proposals:     NewProposalService(db, repositories.NewProposalRepository(db), missionRepo, userRepo, notifications),
		documents:     documents,
		notifications: notifications,
		admin:         NewAdminService(db, userRepo, profileRepo, documentRepo, store, notifications),
		dashboard:     NewDashboardService(db),
		cron:          NewCronService(resetRepo, documents),
	}
}

func (e *testEnv) register(t *testing.T, email string, role domain.Role) *models.UserResponse {
	t.Helper()
	res, err := e.auth.Register(context.Background(), &RegisterInput{
		Email:            email,
		Password:         "password123",
		Role:             string(role),
		Name:             strings.Split(email, "@")[0],
		Specialty:        "Cardiologie",
		Location:         "Lyon",
		OrganizationName: "Clinique " + email,
	})
	if err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
	return res.User
}

func (e *testEnv) createAdmin(t *testing.T, email string) *models.User {
	t.Helper()
	hash, err := password.Hash("password123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	admin := &models.User{Email: email, Password: hash, Role: string(domain.RoleAdmin), Name: "Admin", IsActive: true}
	if err := e.db.Create(admin).Error; err != nil {
		t.Fatalf("create admin: %v", err)
	}
	return admin
}

func (e *testEnv) createMission(t *testing.T, employerID uint, title string) *models.MissionResponse {
	t.Helper()
	rate := 80.0
	m, err := e.missions.Create(context.Background(), employerID, &MissionInput{
		Title:             title,
		Description:       "Remplacement " + title,
		SpecialtyRequired: "Cardiologie",
		Location:          "Lyon",
		Rate:              &rate,
		RateUnit:          "hour",
	})
	if err != nil {
		t.Fatalf("create mission: %v", err)
	}
	return m
}

func (e *testEnv) apply(t *testing.T, doctorID, missionID uint) *models.ApplicationResponse {
	t.Helper()
	app, err := e.applications.Apply(context.Background(), doctorID, &ApplyInput{MissionID: missionID, CoverLetter: "Disponible"})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	return app
}

func assertKind(t *testing.T, err, kind error) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v, got nil", kind)
	}
	if !errors.Is(err, kind) {
		t.Fatalf("expected %v, got %v", kind, err)
	}
}
