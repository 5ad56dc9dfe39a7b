// Command seed inserts sample rescue teams from a YAML file. It does nothing
// when the collection already holds teams, unless -force is given.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"go.uber.org/zap"

	"reliefnet-backend-go/configs"
	"reliefnet-backend-go/internal/config"
	"reliefnet-backend-go/internal/core"
	"reliefnet-backend-go/internal/db"
	"reliefnet-backend-go/internal/firebase"
	"reliefnet-backend-go/pkg/messagequeue"
)

func main() {
	file := flag.String("file", "", "seed file (default $PATH_SEED or "+configs.DefaultSeedPath+")")
	force := flag.Bool("force", false, "insert even when rescue teams already exist")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to initialize Zap logger: %v", err)
	}
	defer logger.Sync()

	appConfig, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load application configuration", zap.Error(err))
	}
	seed, err := configs.LoadSeed(configs.SeedPath(*file))
	if err != nil {
		logger.Fatal("Failed to load seed data", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	clients, err := firebase.NewClients(ctx, appConfig)
	if err != nil {
		logger.Fatal("Failed to initialize Firebase", zap.Error(err))
	}
	defer clients.Close()

	repos := db.NewFirestoreRepositories(clients.Firestore)
	teams := core.NewRescueTeamService(repos, nil, core.NewAuditService(repos.Audit), messagequeue.NoopPublisher{}, logger)

	inserted, err := run(ctx, repos.RescueTeams, teams, seed.RescueTeams, *force, logger)
	if err != nil {
		logger.Fatal("Seeding failed", zap.Int("inserted", inserted), zap.Error(err))
	}
	logger.Info("Seeding finished", zap.Int("inserted", inserted))
}

// teamCounter is the part of the rescue team repository seeding needs.
type teamCounter interface {
	Count(ctx context.Context) (int, error)
}

func run(ctx context.Context, counter teamCounter, svc core.RescueTeamService, teams []configs.SeedTeam, force bool, logger *zap.Logger) (int, error) {
	existing, err := counter.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count rescue teams: %w", err)
	}
	if existing > 0 && !force {
		logger.Info("Rescue teams already present, skipping", zap.Int("existing", existing))
		return 0, nil
	}

	inserted := 0
	for _, team := range teams {
		view, err := svc.CreateTeam(ctx, team.Request())
		if err != nil {
			return inserted, fmt.Errorf("seed team %q: %w", team.Name, err)
		}
		logger.Debug("Seeded rescue team", zap.String("team_id", view.ID), zap.String("name", view.Name))
		inserted++
	}
	return inserted, nil
}
