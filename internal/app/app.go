package app

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/moneypot/moneypot/internal/ai"
	"github.com/moneypot/moneypot/internal/config"
	"github.com/moneypot/moneypot/internal/db"
	"github.com/moneypot/moneypot/internal/repository"
	"github.com/moneypot/moneypot/internal/service"
)

type App struct {
	Cfg              *config.Config
	DB               *sqlx.DB
	UserService      *service.UserService
	PotService       *service.PotService
	GoalService      *service.GoalService
	ExpenseService   *service.ExpenseService
	ImpactService    *service.ImpactService
	InsightService   *service.InsightService
	AnalyticsService *service.AnalyticsService
	CoachService     *service.CoachService
}

func New(cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %v", err)
	}

	// Run database migrations
	err = db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %v", err)
	}

	// Repositories
	userRepository := repository.NewUserRepository(database)
	potRepository := repository.NewPotRepository(database)
	goalRepository := repository.NewGoalRepository(database)
	milestoneRepository := repository.NewMilestoneRepository(database)
	expenseRepository := repository.NewExpenseRepository(database)
	chatRepository := repository.NewChatRepository(database)

	// AI client for the coach
	aiClient := ai.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel, cfg.OpenAITimeout)

	// Services
	userService := service.NewUserService(userRepository, potRepository)
	potService := service.NewPotService(database, potRepository)
	goalService := service.NewGoalService(database, goalRepository, milestoneRepository, potRepository)
	expenseService := service.NewExpenseService(database, expenseRepository, potRepository)
	impactService := service.NewImpactService(potRepository, goalRepository)
	insightService := service.NewInsightService(userRepository, potRepository, goalRepository, expenseRepository)
	analyticsService := service.NewAnalyticsService(userRepository, potRepository, goalRepository, expenseRepository)
	coachService := service.NewCoachService(chatRepository, userRepository, potRepository, goalRepository, expenseRepository, aiClient)

	return &App{
		Cfg:              cfg,
		DB:               database,
		UserService:      userService,
		PotService:       potService,
		GoalService:      goalService,
		ExpenseService:   expenseService,
		ImpactService:    impactService,
		InsightService:   insightService,
		AnalyticsService: analyticsService,
		CoachService:     coachService,
	}, nil
}

func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
