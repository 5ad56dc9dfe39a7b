package db

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"reliefnet-backend-go/internal/models"
	"reliefnet-backend-go/internal/query"
)

// memState is a process-local store with the same observable behaviour as
// the Firestore repositories. It backs the service and handler tests.
// One mutex guards every collection so linked writes are atomic.
type memState struct {
	mu            sync.RWMutex
	seq           int64
	order         map[string]int64
	users         map[string]*models.User
	emails        map[string]string
	disasters     map[string]*models.Disaster
	contributions map[string]*models.Contribution
	teams         map[string]*models.RescueTeam
	audit         []models.AuditLog
}

// NewMemoryRepositories returns repositories sharing one in-memory state.
func NewMemoryRepositories() Repositories {
	s := &memState{
		order:         make(map[string]int64),
		users:         make(map[string]*models.User),
		emails:        make(map[string]string),
		disasters:     make(map[string]*models.Disaster),
		contributions: make(map[string]*models.Contribution),
		teams:         make(map[string]*models.RescueTeam),
	}
	return Repositories{
		Users:         &memUsers{s},
		Disasters:     &memDisasters{s},
		Contributions: &memContributions{s},
		RescueTeams:   &memTeams{s},
		Audit:         &memAudit{s},
	}
}

// stamp assigns an ID and insertion order. Callers hold mu.
func (s *memState) stamp() (string, time.Time) {
	s.seq++
	id := newID()
	s.order[id] = s.seq
	return id, time.Now().UTC()
}

// newerFirst orders by the time key descending, then by insertion descending.
func (s *memState) newerFirst(ti, tj time.Time, idi, idj string) bool {
	if !ti.Equal(tj) {
		return ti.After(tj)
	}
	return s.order[idi] > s.order[idj]
}

func window[T any](items []*T, f query.Filter, p query.Page, lookup func(*T) func(string) string) ([]*T, int) {
	matched := make([]*T, 0, len(items))
	for _, item := range items {
		if f.Match(lookup(item)) {
			matched = append(matched, item)
		}
	}
	start, end := p.Window(len(matched))
	return matched[start:end], len(matched)
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}

func cloneLocation(l *models.Location) *models.Location {
	if l == nil {
		return nil
	}
	c := *l
	if l.Coordinates != nil {
		c.Coordinates = append([]float64(nil), l.Coordinates...)
	}
	return &c
}

func cloneUser(u *models.User) *models.User {
	c := *u
	c.Addresses = append([]models.Address(nil), u.Addresses...)
	return &c
}

func cloneDisaster(d *models.Disaster) *models.Disaster {
	c := *d
	c.Location = cloneLocation(d.Location)
	if d.EndDate != nil {
		end := *d.EndDate
		c.EndDate = &end
	}
	c.AffectedAreas = append([]models.AffectedArea(nil), d.AffectedAreas...)
	c.Media = append([]models.MediaItem(nil), d.Media...)
	c.Files = append([]models.FileMeta(nil), d.Files...)
	c.CommonNeeds = append([]models.Need(nil), d.CommonNeeds...)
	c.Contributions = cloneStrings(d.Contributions)
	c.Normalize()
	return &c
}

func cloneContribution(in *models.Contribution) *models.Contribution {
	c := *in
	c.Location = cloneLocation(in.Location)
	if in.ContactInfo != nil {
		ci := *in.ContactInfo
		c.ContactInfo = &ci
	}
	return &c
}

func cloneTeam(t *models.RescueTeam) *models.RescueTeam {
	c := *t
	c.Location = cloneLocation(t.Location)
	c.Equipment = append([]models.Equipment(nil), t.Equipment...)
	c.TrainingCertifications = cloneStrings(t.TrainingCertifications)
	c.AssignedDisasters = cloneStrings(t.AssignedDisasters)
	c.Normalize()
	return &c
}

func without(list []string, id string) ([]string, bool) {
	kept := make([]string, 0, len(list))
	found := false
	for _, v := range list {
		if v == id {
			found = true
			continue
		}
		kept = append(kept, v)
	}
	return kept, found
}

// users

type memUsers struct{ s *memState }

func (r *memUsers) Create(_ context.Context, user *models.User) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := emailKey(user.Email)
	if _, taken := r.s.emails[key]; taken {
		return "", fmt.Errorf("failed to create user: email '%s': %w", user.Email, ErrAlreadyExists)
	}
	id, now := r.s.stamp()
	user.ID = id
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = now
	}
	r.s.emails[key] = id
	r.s.users[id] = cloneUser(user)
	return id, nil
}

func (r *memUsers) GetByID(_ context.Context, userID string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[userID]
	if !ok {
		return nil, fmt.Errorf("user with ID '%s' not found: %w", userID, ErrNotFound)
	}
	return cloneUser(u), nil
}

func (r *memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	id, ok := r.s.emails[emailKey(email)]
	if !ok {
		return nil, fmt.Errorf("user with email '%s' not found: %w", email, ErrNotFound)
	}
	return cloneUser(r.s.users[id]), nil
}

func (r *memUsers) GetMany(_ context.Context, userIDs []string) (map[string]*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make(map[string]*models.User, len(userIDs))
	for _, id := range userIDs {
		if u, ok := r.s.users[id]; ok {
			out[id] = cloneUser(u)
		}
	}
	return out, nil
}

// disasters

type memDisasters struct{ s *memState }

func (r *memDisasters) Create(_ context.Context, d *models.Disaster) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	id, now := r.s.stamp()
	d.ID = id
	d.Normalize()
	if d.CreatedAt.IsZero() {
		d.CreatedAt = now
	}
	if d.UpdatedAt.IsZero() {
		d.UpdatedAt = now
	}
	r.s.disasters[id] = cloneDisaster(d)
	return id, nil
}

func (r *memDisasters) GetByID(_ context.Context, disasterID string) (*models.Disaster, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	d, ok := r.s.disasters[disasterID]
	if !ok {
		return nil, fmt.Errorf("disaster with ID '%s' not found: %w", disasterID, ErrNotFound)
	}
	return cloneDisaster(d), nil
}

func (r *memDisasters) GetMany(_ context.Context, disasterIDs []string) (map[string]*models.Disaster, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make(map[string]*models.Disaster, len(disasterIDs))
	for _, id := range disasterIDs {
		if d, ok := r.s.disasters[id]; ok {
			out[id] = cloneDisaster(d)
		}
	}
	return out, nil
}

func (r *memDisasters) sorted() []*models.Disaster {
	all := make([]*models.Disaster, 0, len(r.s.disasters))
	for _, d := range r.s.disasters {
		all = append(all, cloneDisaster(d))
	}
	sort.Slice(all, func(i, j int) bool {
		return r.s.newerFirst(all[i].StartDate, all[j].StartDate, all[i].ID, all[j].ID)
	})
	return all
}

func (r *memDisasters) List(_ context.Context, filter query.Filter, page query.Page) ([]*models.Disaster, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	items, total := window(r.sorted(), filter, page, disasterFields)
	return items, total, nil
}

func (r *memDisasters) All(_ context.Context) ([]*models.Disaster, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.sorted(), nil
}

func (r *memDisasters) DistinctTypes(_ context.Context) ([]models.DisasterType, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	seen := make(map[models.DisasterType]bool)
	types := []models.DisasterType{}
	for _, d := range r.s.disasters {
		if d.Type == "" || seen[d.Type] {
			continue
		}
		seen[d.Type] = true
		types = append(types, d.Type)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types, nil
}

func (r *memDisasters) Update(_ context.Context, d *models.Disaster) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.disasters[d.ID]
	if !ok {
		return fmt.Errorf("disaster with ID '%s' not found: %w", d.ID, ErrNotFound)
	}
	next := cloneDisaster(d)
	next.Contributions = cloneStrings(cur.Contributions)
	next.Files = append([]models.FileMeta(nil), cur.Files...)
	next.CreatedBy = cur.CreatedBy
	next.CreatedAt = cur.CreatedAt
	next.UpdatedAt = time.Now().UTC()
	next.Normalize()
	r.s.disasters[d.ID] = next
	return nil
}

func (r *memDisasters) RemoveFile(_ context.Context, disasterID, fileID string) (models.FileMeta, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.disasters[disasterID]
	if !ok {
		return models.FileMeta{}, fmt.Errorf("disaster with ID '%s' not found: %w", disasterID, ErrNotFound)
	}
	for i, f := range d.Files {
		if f.ID == fileID {
			d.Files = append(d.Files[:i:i], d.Files[i+1:]...)
			d.UpdatedAt = time.Now().UTC()
			return f, nil
		}
	}
	return models.FileMeta{}, fmt.Errorf("file '%s' on disaster '%s': %w", fileID, disasterID, ErrNotFound)
}

func (r *memDisasters) LinkContribution(_ context.Context, disasterID, contributionID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.disasters[disasterID]
	if !ok {
		return fmt.Errorf("disaster with ID '%s' not found: %w", disasterID, ErrNotFound)
	}
	if !d.HasContribution(contributionID) {
		d.Contributions = append(d.Contributions, contributionID)
		d.UpdatedAt = time.Now().UTC()
	}
	return nil
}

func (r *memDisasters) Delete(_ context.Context, disasterID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.disasters[disasterID]; !ok {
		return fmt.Errorf("disaster with ID '%s' not found for deletion: %w", disasterID, ErrNotFound)
	}
	delete(r.s.disasters, disasterID)
	return nil
}

// contributions

type memContributions struct{ s *memState }

func (r *memContributions) CreateLinked(_ context.Context, c *models.Contribution) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.disasters[c.DisasterID]
	if !ok {
		return "", fmt.Errorf("failed to create linked contribution: disaster with ID '%s' not found: %w", c.DisasterID, ErrNotFound)
	}
	id, now := r.s.stamp()
	c.ID = id
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = now
	}
	r.s.contributions[id] = cloneContribution(c)
	d.Contributions = append(d.Contributions, id)
	d.UpdatedAt = now
	return id, nil
}

func (r *memContributions) GetByID(_ context.Context, contributionID string) (*models.Contribution, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.contributions[contributionID]
	if !ok {
		return nil, fmt.Errorf("contribution with ID '%s' not found: %w", contributionID, ErrNotFound)
	}
	return cloneContribution(c), nil
}

func (r *memContributions) sorted() []*models.Contribution {
	all := make([]*models.Contribution, 0, len(r.s.contributions))
	for _, c := range r.s.contributions {
		all = append(all, cloneContribution(c))
	}
	sort.Slice(all, func(i, j int) bool {
		return r.s.newerFirst(all[i].CreatedAt, all[j].CreatedAt, all[i].ID, all[j].ID)
	})
	return all
}

func (r *memContributions) List(_ context.Context, filter query.Filter, page query.Page) ([]*models.Contribution, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	items, total := window(r.sorted(), filter, page, contributionFields)
	return items, total, nil
}

func (r *memContributions) All(_ context.Context) ([]*models.Contribution, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.sorted(), nil
}

func (r *memContributions) Update(_ context.Context, c *models.Contribution) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.contributions[c.ID]
	if !ok {
		return fmt.Errorf("contribution with ID '%s' not found: %w", c.ID, ErrNotFound)
	}
	next := cloneContribution(c)
	next.UserID = cur.UserID
	next.DisasterID = cur.DisasterID
	next.CreatedAt = cur.CreatedAt
	next.UpdatedAt = time.Now().UTC()
	r.s.contributions[c.ID] = next
	return nil
}

func (r *memContributions) DeleteLinked(_ context.Context, contributionID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.contributions[contributionID]
	if !ok {
		return fmt.Errorf("failed to delete contribution: contribution with ID '%s' not found: %w", contributionID, ErrNotFound)
	}
	delete(r.s.contributions, contributionID)
	if d, ok := r.s.disasters[c.DisasterID]; ok {
		d.Contributions, _ = without(d.Contributions, contributionID)
		d.UpdatedAt = time.Now().UTC()
	}
	return nil
}

func (r *memContributions) DeleteByDisaster(_ context.Context, disasterID string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := 0
	for id, c := range r.s.contributions {
		if c.DisasterID == disasterID {
			delete(r.s.contributions, id)
			n++
		}
	}
	return n, nil
}

// rescue teams

type memTeams struct{ s *memState }

func (r *memTeams) Create(_ context.Context, t *models.RescueTeam) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	id, now := r.s.stamp()
	t.ID = id
	t.Normalize()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = now
	}
	r.s.teams[id] = cloneTeam(t)
	return id, nil
}

func (r *memTeams) GetByID(_ context.Context, teamID string) (*models.RescueTeam, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t, ok := r.s.teams[teamID]
	if !ok {
		return nil, fmt.Errorf("rescue team with ID '%s' not found: %w", teamID, ErrNotFound)
	}
	return cloneTeam(t), nil
}

func (r *memTeams) sorted() []*models.RescueTeam {
	all := make([]*models.RescueTeam, 0, len(r.s.teams))
	for _, t := range r.s.teams {
		all = append(all, cloneTeam(t))
	}
	sort.Slice(all, func(i, j int) bool {
		return r.s.newerFirst(all[i].CreatedAt, all[j].CreatedAt, all[i].ID, all[j].ID)
	})
	return all
}

func (r *memTeams) List(_ context.Context, filter query.Filter, page query.Page) ([]*models.RescueTeam, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	items, total := window(r.sorted(), filter, page, rescueTeamFields)
	return items, total, nil
}

func (r *memTeams) ListAvailable(_ context.Context, specialization string) ([]*models.RescueTeam, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []*models.RescueTeam{}
	for _, t := range r.sorted() {
		if t.Availability != models.Available {
			continue
		}
		if specialization != "" && string(t.Specialization) != specialization {
			continue
		}
		out = append(out, t)
	}
	SortByReadiness(out)
	return out, nil
}

func (r *memTeams) All(_ context.Context) ([]*models.RescueTeam, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.sorted(), nil
}

func (r *memTeams) Count(_ context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.teams), nil
}

func (r *memTeams) Update(_ context.Context, t *models.RescueTeam) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.teams[t.ID]
	if !ok {
		return fmt.Errorf("rescue team with ID '%s' not found: %w", t.ID, ErrNotFound)
	}
	next := cloneTeam(t)
	next.AssignedDisasters = cloneStrings(cur.AssignedDisasters)
	next.CreatedAt = cur.CreatedAt
	next.UpdatedAt = time.Now().UTC()
	next.Normalize()
	r.s.teams[t.ID] = next
	return nil
}

func (r *memTeams) Delete(_ context.Context, teamID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.teams[teamID]; !ok {
		return fmt.Errorf("rescue team with ID '%s' not found for deletion: %w", teamID, ErrNotFound)
	}
	delete(r.s.teams, teamID)
	return nil
}

func (r *memTeams) Assign(_ context.Context, teamID, disasterID string) (*models.RescueTeam, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.teams[teamID]
	if !ok {
		return nil, fmt.Errorf("rescue team with ID '%s' not found: %w", teamID, ErrNotFound)
	}
	if t.IsAssigned(disasterID) {
		return nil, fmt.Errorf("disaster '%s' on rescue team '%s': %w", disasterID, teamID, ErrAlreadyExists)
	}
	t.AssignedDisasters = append(t.AssignedDisasters, disasterID)
	t.UpdatedAt = time.Now().UTC()
	return cloneTeam(t), nil
}

func (r *memTeams) Unassign(_ context.Context, teamID, disasterID string) (*models.RescueTeam, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.teams[teamID]
	if !ok {
		return nil, false, fmt.Errorf("rescue team with ID '%s' not found: %w", teamID, ErrNotFound)
	}
	var removed bool
	t.AssignedDisasters, removed = without(t.AssignedDisasters, disasterID)
	if removed {
		t.UpdatedAt = time.Now().UTC()
	}
	return cloneTeam(t), removed, nil
}

func (r *memTeams) UnassignEverywhere(_ context.Context, disasterID string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := 0
	for _, t := range r.s.teams {
		var removed bool
		t.AssignedDisasters, removed = without(t.AssignedDisasters, disasterID)
		if removed {
			t.UpdatedAt = time.Now().UTC()
			n++
		}
	}
	return n, nil
}

// audit

type memAudit struct{ s *memState }

func (r *memAudit) Create(_ context.Context, logEntry models.AuditLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if logEntry.Timestamp.IsZero() {
		logEntry.Timestamp = time.Now().UTC()
	}
	logEntry.ID, _ = r.s.stamp()
	r.s.audit = append(r.s.audit, logEntry)
	return nil
}

// AuditEntries returns a copy of the recorded audit log when repo is the
// in-memory implementation.
func AuditEntries(repo AuditRepository) []models.AuditLog {
	m, ok := repo.(*memAudit)
	if !ok {
		return nil
	}
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	return append([]models.AuditLog(nil), m.s.audit...)
}
