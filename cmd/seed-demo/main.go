package main

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/prepstack/prepstack-backend/internal/config"
	"github.com/prepstack/prepstack-backend/internal/database"
	"github.com/prepstack/prepstack-backend/internal/logger"
	"github.com/prepstack/prepstack-backend/internal/model"
	"github.com/prepstack/prepstack-backend/internal/repository"
)

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	userRepo := repository.NewUserRepository(pool)
	testRepo := repository.NewTestRepository(pool)

	fmt.Println("=== Seeding Demo Data ===")

	hash, err := bcrypt.GenerateFromPassword([]byte("demo-password"), cfg.BcryptCost)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to hash password")
	}

	student := &model.User{
		Name:         "Demo Student",
		Email:        "student@demo.prepstack.io",
		PasswordHash: string(hash),
		Role:         model.RoleStudent,
	}
	if err := userRepo.Create(ctx, student); err != nil {
		log.Fatal().Err(err).Msg("Failed to create demo student")
	}
	fmt.Printf("Created demo student with ID: %d\n", student.ID)

	admin := &model.User{
		Name:         "Demo Admin",
		Email:        "admin@demo.prepstack.io",
		PasswordHash: string(hash),
		Role:         model.RoleAdmin,
	}
	if err := userRepo.Create(ctx, admin); err != nil {
		log.Fatal().Err(err).Msg("Failed to create demo admin")
	}
	fmt.Printf("Created demo admin with ID: %d\n", admin.ID)

	req := model.CreateTestRequest{
		Title:           "General Aptitude Sample Test",
		Description:     "A free two-section sample covering quantitative and verbal basics.",
		DurationMinutes: 30,
		Price:           0,
		Sections: []model.SectionInput{
			{
				Title: "Quantitative Aptitude",
				Questions: []model.QuestionInput{
					{
						Text:          "What is 15% of 200?",
						Options:       []string{"20", "25", "30", "35"},
						CorrectAnswer: 2,
						Marks:         2,
						Explanation:   "15% of 200 = 0.15 * 200 = 30.",
					},
					{
						Text:          "A train travels 120 km in 2 hours. What is its average speed?",
						Options:       []string{"50 km/h", "60 km/h", "70 km/h", "80 km/h"},
						CorrectAnswer: 1,
						Marks:         2,
						Explanation:   "120 km / 2 h = 60 km/h.",
					},
					{
						Text:          "If x + 7 = 12, what is x?",
						Options:       []string{"3", "4", "5", "6"},
						CorrectAnswer: 2,
						Marks:         1,
					},
				},
			},
			{
				Title: "Verbal Ability",
				Questions: []model.QuestionInput{
					{
						Text:          "Choose the synonym of 'abundant'.",
						Options:       []string{"scarce", "plentiful", "minor", "fragile"},
						CorrectAnswer: 1,
						Marks:         1,
					},
					{
						Text:          "Choose the antonym of 'candid'.",
						Options:       []string{"frank", "honest", "evasive", "direct"},
						CorrectAnswer: 2,
						Marks:         1,
					},
				},
			},
		},
	}
	if err := req.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Demo test definition invalid")
	}

	test := req.ToTest(admin.ID)
	if err := testRepo.Create(ctx, test); err != nil {
		log.Fatal().Err(err).Msg("Failed to create demo test")
	}
	fmt.Printf("Created demo test %q with ID: %s\n", test.Title, test.ID)

	fmt.Println("Seeding complete")
}
