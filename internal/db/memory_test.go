package db

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reliefnet-backend-go/internal/models"
	"reliefnet-backend-go/internal/query"
)

func seedDisaster(t *testing.T, repos Repositories, title string, start time.Time) *models.Disaster {
	t.Helper()
	d := &models.Disaster{
		Title:     title,
		Type:      models.DisasterFlood,
		Severity:  models.SeverityHigh,
		Status:    models.DisasterActive,
		StartDate: start,
	}
	_, err := repos.Disasters.Create(context.Background(), d)
	require.NoError(t, err)
	return d
}

func TestMemoryIDsAreWellFormed(t *testing.T) {
	repos := NewMemoryRepositories()
	d := seedDisaster(t, repos, "Flood", time.Now())
	assert.True(t, models.ValidID(d.ID))
}

func TestMemoryUserEmailUnique(t *testing.T) {
	repos := NewMemoryRepositories()
	ctx := context.Background()

	_, err := repos.Users.Create(ctx, &models.User{Name: "A", Email: "a@example.com"})
	require.NoError(t, err)
	_, err = repos.Users.Create(ctx, &models.User{Name: "B", Email: "A@Example.com"})
	assert.True(t, errors.Is(err, ErrAlreadyExists))

	u, err := repos.Users.GetByEmail(ctx, "A@EXAMPLE.COM")
	require.NoError(t, err)
	assert.Equal(t, "A", u.Name)
}

func TestMemoryCreateLinkedAppendsOnce(t *testing.T) {
	repos := NewMemoryRepositories()
	ctx := context.Background()
	d := seedDisaster(t, repos, "Flood", time.Now())

	c := &models.Contribution{DisasterID: d.ID, UserID: "u1", Title: "Water"}
	id, err := repos.Contributions.CreateLinked(ctx, c)
	require.NoError(t, err)

	got, err := repos.Disasters.GetByID(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{id}, got.Contributions)

	require.NoError(t, repos.Disasters.LinkContribution(ctx, d.ID, id))
	got, err = repos.Disasters.GetByID(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{id}, got.Contributions)
}

func TestMemoryCreateLinkedMissingDisasterWritesNothing(t *testing.T) {
	repos := NewMemoryRepositories()
	ctx := context.Background()

	_, err := repos.Contributions.CreateLinked(ctx, &models.Contribution{DisasterID: "AAAAAAAAAAAAAAAAAAAA"})
	assert.True(t, errors.Is(err, ErrNotFound))

	all, err := repos.Contributions.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestMemoryDeleteLinkedUnlinks(t *testing.T) {
	repos := NewMemoryRepositories()
	ctx := context.Background()
	d := seedDisaster(t, repos, "Flood", time.Now())
	id, err := repos.Contributions.CreateLinked(ctx, &models.Contribution{DisasterID: d.ID})
	require.NoError(t, err)

	require.NoError(t, repos.Contributions.DeleteLinked(ctx, id))

	got, err := repos.Disasters.GetByID(ctx, d.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Contributions)
	_, err = repos.Contributions.GetByID(ctx, id)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestMemoryUpdateKeepsBackReferences(t *testing.T) {
	repos := NewMemoryRepositories()
	ctx := context.Background()
	d := seedDisaster(t, repos, "Flood", time.Now())
	id, err := repos.Contributions.CreateLinked(ctx, &models.Contribution{DisasterID: d.ID})
	require.NoError(t, err)

	// d is stale: it does not know about the contribution.
	d.Title = "Renamed"
	require.NoError(t, repos.Disasters.Update(ctx, d))

	got, err := repos.Disasters.GetByID(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)
	assert.Equal(t, []string{id}, got.Contributions)
}

func TestMemoryAssignIsSetLike(t *testing.T) {
	repos := NewMemoryRepositories()
	ctx := context.Background()
	team := &models.RescueTeam{Name: "Medics", Specialization: models.SpecializationMedical, MemberCount: 4}
	_, err := repos.RescueTeams.Create(ctx, team)
	require.NoError(t, err)

	_, err = repos.RescueTeams.Assign(ctx, team.ID, "D1")
	require.NoError(t, err)
	_, err = repos.RescueTeams.Assign(ctx, team.ID, "D1")
	assert.True(t, errors.Is(err, ErrAlreadyExists))

	got, err := repos.RescueTeams.GetByID(ctx, team.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"D1"}, got.AssignedDisasters)

	_, removed, err := repos.RescueTeams.Unassign(ctx, team.ID, "D2")
	require.NoError(t, err)
	assert.False(t, removed)

	updated, removed, err := repos.RescueTeams.Unassign(ctx, team.ID, "D1")
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Empty(t, updated.AssignedDisasters)
}

func TestMemoryConcurrentAssignOneWins(t *testing.T) {
	repos := NewMemoryRepositories()
	ctx := context.Background()
	team := &models.RescueTeam{Name: "Divers"}
	_, err := repos.RescueTeams.Create(ctx, team)
	require.NoError(t, err)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repos.RescueTeams.Assign(ctx, team.ID, "D1"); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, successes)
}

func TestMemoryListAvailableOrdering(t *testing.T) {
	repos := NewMemoryRepositories()
	ctx := context.Background()
	teams := []*models.RescueTeam{
		{Name: "small-expert", Availability: models.Available, Experience: models.ExperienceExpert, MemberCount: 3, Specialization: models.SpecializationMedical},
		{Name: "big-expert", Availability: models.Available, Experience: models.ExperienceExpert, MemberCount: 9, Specialization: models.SpecializationMedical},
		{Name: "beginner", Availability: models.Available, Experience: models.ExperienceBeginner, MemberCount: 20, Specialization: models.SpecializationMedical},
		{Name: "busy", Availability: models.Busy, Experience: models.ExperienceExpert, MemberCount: 50, Specialization: models.SpecializationMedical},
		{Name: "logistics", Availability: models.Available, Experience: models.ExperienceExpert, MemberCount: 50, Specialization: models.SpecializationLogistics},
	}
	for _, team := range teams {
		_, err := repos.RescueTeams.Create(ctx, team)
		require.NoError(t, err)
	}

	got, err := repos.RescueTeams.ListAvailable(ctx, string(models.SpecializationMedical))
	require.NoError(t, err)
	names := make([]string, 0, len(got))
	for _, team := range got {
		names = append(names, team.Name)
	}
	assert.Equal(t, []string{"big-expert", "small-expert", "beginner"}, names)
}

func TestMemoryListOrderAndPaging(t *testing.T) {
	repos := NewMemoryRepositories()
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 15; i++ {
		seedDisaster(t, repos, "d", base.Add(time.Duration(i)*time.Hour))
	}

	items, total, err := repos.Disasters.List(ctx, query.Filter{}, query.Page{Number: 2, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 15, total)
	require.Len(t, items, 5)
	assert.True(t, items[0].StartDate.After(items[4].StartDate))
	assert.Equal(t, base.Add(4*time.Hour), items[0].StartDate)
}

func TestMemoryCascadeHelpers(t *testing.T) {
	repos := NewMemoryRepositories()
	ctx := context.Background()
	d := seedDisaster(t, repos, "Quake", time.Now())
	other := seedDisaster(t, repos, "Fire", time.Now())
	_, err := repos.Contributions.CreateLinked(ctx, &models.Contribution{DisasterID: d.ID})
	require.NoError(t, err)
	_, err = repos.Contributions.CreateLinked(ctx, &models.Contribution{DisasterID: other.ID})
	require.NoError(t, err)
	team := &models.RescueTeam{Name: "T"}
	_, err = repos.RescueTeams.Create(ctx, team)
	require.NoError(t, err)
	_, err = repos.RescueTeams.Assign(ctx, team.ID, d.ID)
	require.NoError(t, err)

	n, err := repos.Contributions.DeleteByDisaster(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = repos.RescueTeams.UnassignEverywhere(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	left, err := repos.Contributions.All(ctx)
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, other.ID, left[0].DisasterID)
}

func TestMemoryRemoveFile(t *testing.T) {
	repos := NewMemoryRepositories()
	ctx := context.Background()
	d := &models.Disaster{Title: "x", Files: []models.FileMeta{{ID: "f1"}, {ID: "f2"}}}
	_, err := repos.Disasters.Create(ctx, d)
	require.NoError(t, err)

	f, err := repos.Disasters.RemoveFile(ctx, d.ID, "f1")
	require.NoError(t, err)
	assert.Equal(t, "f1", f.ID)

	_, err = repos.Disasters.RemoveFile(ctx, d.ID, "f1")
	assert.True(t, errors.Is(err, ErrNotFound))

	got, err := repos.Disasters.GetByID(ctx, d.ID)
	require.NoError(t, err)
	require.Len(t, got.Files, 1)
	assert.Equal(t, "f2", got.Files[0].ID)
}
