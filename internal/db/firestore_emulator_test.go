package db

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reliefnet-backend-go/internal/models"
	"reliefnet-backend-go/internal/query"
)

// newEmulatorRepositories connects to the Firestore emulator named by
// FIRESTORE_EMULATOR_HOST. Each test gets its own project ID, which the
// emulator keeps as a separate database.
func newEmulatorRepositories(t *testing.T) Repositories {
	t.Helper()
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := firestore.NewClient(ctx, fmt.Sprintf("reliefnet-test-%d", time.Now().UnixNano()))
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return NewFirestoreRepositories(client)
}

func TestFirestoreCreateLinkedAppendsOnce(t *testing.T) {
	repos := newEmulatorRepositories(t)
	ctx := context.Background()
	d := seedDisaster(t, repos, "Flood", time.Now())

	ids := make([]string, 3)
	for i := range ids {
		id, err := repos.Contributions.CreateLinked(ctx, &models.Contribution{DisasterID: d.ID, UserID: "u1", Title: "Water"})
		require.NoError(t, err)
		ids[i] = id
	}

	got, err := repos.Disasters.GetByID(ctx, d.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, ids, got.Contributions)

	c, err := repos.Contributions.GetByID(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, d.ID, c.DisasterID)
}

func TestFirestoreCreateLinkedMissingDisasterWritesNothing(t *testing.T) {
	repos := newEmulatorRepositories(t)
	ctx := context.Background()

	for _, id := range []string{"AAAAAAAAAAAAAAAAAAAA", "not/a/doc"} {
		_, err := repos.Contributions.CreateLinked(ctx, &models.Contribution{DisasterID: id})
		assert.True(t, errors.Is(err, ErrNotFound), id)
	}
	all, err := repos.Contributions.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestFirestoreDeleteLinkedUnlinks(t *testing.T) {
	repos := newEmulatorRepositories(t)
	ctx := context.Background()
	d := seedDisaster(t, repos, "Flood", time.Now())
	keep, err := repos.Contributions.CreateLinked(ctx, &models.Contribution{DisasterID: d.ID, Title: "Keep"})
	require.NoError(t, err)
	drop, err := repos.Contributions.CreateLinked(ctx, &models.Contribution{DisasterID: d.ID, Title: "Drop"})
	require.NoError(t, err)

	require.NoError(t, repos.Contributions.DeleteLinked(ctx, drop))

	got, err := repos.Disasters.GetByID(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{keep}, got.Contributions)
	_, err = repos.Contributions.GetByID(ctx, drop)
	assert.True(t, errors.Is(err, ErrNotFound))

	err = repos.Contributions.DeleteLinked(ctx, drop)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestFirestoreAssignConflict(t *testing.T) {
	repos := newEmulatorRepositories(t)
	ctx := context.Background()
	team := &models.RescueTeam{Name: "Medics", Specialization: models.SpecializationMedical, MemberCount: 4}
	_, err := repos.RescueTeams.Create(ctx, team)
	require.NoError(t, err)

	got, err := repos.RescueTeams.Assign(ctx, team.ID, "D1")
	require.NoError(t, err)
	assert.Equal(t, []string{"D1"}, got.AssignedDisasters)

	_, err = repos.RescueTeams.Assign(ctx, team.ID, "D1")
	assert.True(t, errors.Is(err, ErrAlreadyExists))

	_, err = repos.RescueTeams.Assign(ctx, team.ID, "D2")
	require.NoError(t, err)
	n, err := repos.RescueTeams.UnassignEverywhere(ctx, "D1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, removed, err := repos.RescueTeams.Unassign(ctx, team.ID, "D1")
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Equal(t, []string{"D2"}, got.AssignedDisasters)
}

func TestFirestoreListPaging(t *testing.T) {
	repos := newEmulatorRepositories(t)
	ctx := context.Background()
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 15; i++ {
		seedDisaster(t, repos, fmt.Sprintf("Flood %02d", i), base.Add(time.Duration(i)*time.Hour))
	}

	var f query.Filter
	f.Eq("type", string(models.DisasterFlood))
	items, total, err := repos.Disasters.List(ctx, f, query.Page{Number: 2, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 15, total)
	require.Len(t, items, 5)
	assert.Equal(t, "Flood 04", items[0].Title)
	assert.Equal(t, "Flood 00", items[4].Title)

	items, total, err = repos.Disasters.List(ctx, query.Filter{}, query.ParsePage("9223372036854775807", "2"))
	require.NoError(t, err)
	assert.Equal(t, 15, total)
	assert.Empty(t, items)
}
