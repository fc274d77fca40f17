package main

import (
	"context"
	"log"
	"log/slog"

	"connect-service/internal/config"
	"connect-service/internal/database"
	"connect-service/internal/models"
	"connect-service/internal/repositories/postgres"
	"connect-service/internal/services"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	slog.Info("Starting database seeding...")

	db, err := database.NewPostgresConnection(cfg.Database.URI())
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	userRepo := postgres.NewUserRepository(db)
	connRepo := postgres.NewConnectionRepository(db)

	slog.Info("Creating demo users...")

	demoUsers := []models.User{
		{Username: "valentina", Email: "valentina@connect.fashion", FullName: "Valentina Rossi", ProfessionalType: models.ProfessionalTypeModel, Location: "Milan", Skills: []string{"runway", "editorial"}, VerificationTier: models.VerificationTierProfessional},
		{Username: "hugo", Email: "hugo@connect.fashion", FullName: "Hugo Laurent", ProfessionalType: models.ProfessionalTypePhotographer, Location: "Paris", Skills: []string{"editorial", "studio lighting"}, VerificationTier: models.VerificationTierVerified},
		{Username: "amara", Email: "amara@connect.fashion", FullName: "Amara Diallo", ProfessionalType: models.ProfessionalTypeDesigner, Location: "Milan", Skills: []string{"couture", "pattern making"}, VerificationTier: models.VerificationTierVerified},
		{Username: "sofia", Email: "sofia@connect.fashion", FullName: "Sofia Marin", ProfessionalType: models.ProfessionalTypeStylist, Location: "Milan", Skills: []string{"editorial", "wardrobe"}, VerificationTier: models.VerificationTierBasic},
		{Username: "kenji", Email: "kenji@connect.fashion", FullName: "Kenji Watanabe", ProfessionalType: models.ProfessionalTypeMakeupArtist, Location: "Tokyo", Skills: []string{"editorial", "sfx"}, VerificationTier: models.VerificationTierVerified},
	}

	created := make(map[string]uint, len(demoUsers))
	for i := range demoUsers {
		user := &demoUsers[i]
		hashed, _ := bcrypt.GenerateFromPassword([]byte("123456"), bcrypt.DefaultCost)
		user.Password = string(hashed)
		if err := userRepo.Create(user); err != nil {
			slog.Warn("User might already exist", "username", user.Username, "error", err)
			existing, lookupErr := userRepo.FindByEmail(user.Email)
			if lookupErr != nil {
				continue
			}
			created[user.Username] = existing.ID
			continue
		}
		slog.Info("Created user", "username", user.Username, "id", user.ID)
		created[user.Username] = user.ID
	}

	slog.Info("Creating demo connections...")

	connectionService := services.NewConnectionService(connRepo, userRepo, nil)
	strengthService := services.NewStrengthService(connRepo, userRepo, cfg.Policy)
	ctx := context.Background()

	pairs := [][2]string{
		{"valentina", "hugo"},
		{"valentina", "amara"},
		{"hugo", "amara"},
		{"amara", "sofia"},
		{"hugo", "kenji"},
	}
	for _, pair := range pairs {
		initiator, recipient := created[pair[0]], created[pair[1]]
		if initiator == 0 || recipient == 0 {
			continue
		}
		conn, err := connectionService.CreateRequest(ctx, initiator, recipient, "Great meeting you at fashion week!")
		if err != nil {
			slog.Warn("Connection might already exist", "pair", pair, "error", err)
			continue
		}
		if _, err := connectionService.Accept(ctx, conn.ID, recipient); err != nil {
			slog.Warn("Failed to accept seeded connection", "pair", pair, "error", err)
			continue
		}
		if _, err := strengthService.RecordInteraction(ctx, conn.ID, initiator, models.InteractionMessage); err != nil {
			slog.Warn("Failed to record seeded interaction", "pair", pair, "error", err)
		}
		slog.Info("Created connection", "pair", pair, "id", conn.ID)
	}

	slog.Info("Database seeding completed successfully!")
}
