package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"reliefnet-backend-go/configs"
	"reliefnet-backend-go/internal/core"
	"reliefnet-backend-go/internal/db"
	"reliefnet-backend-go/pkg/messagequeue"
)

func sampleTeams() []configs.SeedTeam {
	return []configs.SeedTeam{
		{Name: "Medics", NGOName: "Red Cross", Specialization: "medical", MemberCount: 6, ContactPerson: "Ravi", ContactPhone: "555", ContactEmail: "medics@example.org"},
		{Name: "Divers", NGOName: "Blue Water", Specialization: "water_rescue", MemberCount: 4, ContactPerson: "Ana", ContactPhone: "556", ContactEmail: "divers@example.org"},
	}
}

func newTeamService(t *testing.T, repos db.Repositories) core.RescueTeamService {
	return core.NewRescueTeamService(repos, nil, core.NewAuditService(repos.Audit), messagequeue.NoopPublisher{}, zaptest.NewLogger(t))
}

func TestRunSeedsEmptyCollection(t *testing.T) {
	repos := db.NewMemoryRepositories()
	ctx := context.Background()

	n, err := run(ctx, repos.RescueTeams, newTeamService(t, repos), sampleTeams(), false, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = run(ctx, repos.RescueTeams, newTeamService(t, repos), sampleTeams(), false, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	count, err := repos.RescueTeams.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestRunForce(t *testing.T) {
	repos := db.NewMemoryRepositories()
	ctx := context.Background()
	_, err := run(ctx, repos.RescueTeams, newTeamService(t, repos), sampleTeams(), false, zaptest.NewLogger(t))
	require.NoError(t, err)

	n, err := run(ctx, repos.RescueTeams, newTeamService(t, repos), sampleTeams()[:1], true, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRunStopsOnInvalidTeam(t *testing.T) {
	repos := db.NewMemoryRepositories()
	teams := sampleTeams()
	teams[1].Specialization = "juggling"

	n, err := run(context.Background(), repos.RescueTeams, newTeamService(t, repos), teams, false, zaptest.NewLogger(t))
	require.Error(t, err)
	assert.Equal(t, 1, n)
	assert.ErrorIs(t, err, core.ErrValidation)
}
