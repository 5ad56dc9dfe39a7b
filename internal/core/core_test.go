package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"reliefnet-backend-go/internal/db"
	"reliefnet-backend-go/internal/models"
	"reliefnet-backend-go/pkg/cache"
)

const missingID = "AAAAAAAAAAAAAAAAAAAA"

type recordingPublisher struct {
	mu     sync.Mutex
	events []models.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event models.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type mapCache struct {
	mu   sync.Mutex
	data map[string]string
	gets int
}

func newMapCache() *mapCache { return &mapCache{data: map[string]string{}} }

func (c *mapCache) Get(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	v, ok := c.data[key]
	if !ok {
		return "", cache.ErrMiss
	}
	return v, nil
}

func (c *mapCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value.(string)
	return nil
}

func (c *mapCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *mapCache) Close() error { return nil }

func (c *mapCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	return ok
}

type fakeTokens struct{}

func (fakeTokens) NewToken(userID string, role models.Role) (string, error) {
	return "token-" + userID + "-" + string(role), nil
}

type fixture struct {
	repos  db.Repositories
	events *recordingPublisher
	audit  AuditService
	logger *zap.Logger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repos := db.NewMemoryRepositories()
	return &fixture{
		repos:  repos,
		events: &recordingPublisher{},
		audit:  NewAuditService(repos.Audit),
		logger: zaptest.NewLogger(t),
	}
}

func (f *fixture) disaster(t *testing.T, title string) *models.Disaster {
	t.Helper()
	d := &models.Disaster{
		Title:     title,
		Type:      models.DisasterFlood,
		Severity:  models.SeverityHigh,
		Status:    models.DisasterActive,
		StartDate: time.Now().UTC(),
	}
	_, err := f.repos.Disasters.Create(context.Background(), d)
	require.NoError(t, err)
	return d
}

func (f *fixture) user(t *testing.T, name, email string) *models.User {
	t.Helper()
	u := &models.User{Name: name, Email: email, Role: models.RoleUser}
	_, err := f.repos.Users.Create(context.Background(), u)
	require.NoError(t, err)
	return u
}

func (f *fixture) team(t *testing.T, name string) *models.RescueTeam {
	t.Helper()
	team := &models.RescueTeam{
		Name:           name,
		NGOName:        "Red Cross",
		Specialization: models.SpecializationMedical,
		MemberCount:    5,
		ContactEmail:   "team@example.org",
		Availability:   models.Available,
		Experience:     models.ExperienceExpert,
	}
	_, err := f.repos.RescueTeams.Create(context.Background(), team)
	require.NoError(t, err)
	return team
}

func requireKind(t *testing.T, err, kind error, msg string) {
	t.Helper()
	require.Error(t, err)
	require.True(t, errors.Is(err, kind), "expected %v, got %v", kind, err)
	if msg != "" {
		require.Equal(t, msg, Message(err))
	}
}
