package db

import (
	"context"
	"errors"

	"reliefnet-backend-go/internal/models"
	"reliefnet-backend-go/internal/query"
)

var (
	// ErrNotFound is returned when a document does not exist or its ID is malformed.
	ErrNotFound = errors.New("document not found")
	// ErrAlreadyExists is returned when a unique key or set member is already present.
	ErrAlreadyExists = errors.New("document already exists")
)

// UserRepository defines the interface for user data storage operations.
type UserRepository interface {
	// Create stores the user and reserves its email. ErrAlreadyExists if the
	// email is taken.
	Create(ctx context.Context, user *models.User) (string, error)
	GetByID(ctx context.Context, userID string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// GetMany resolves the given IDs; missing IDs are absent from the map.
	GetMany(ctx context.Context, userIDs []string) (map[string]*models.User, error)
}

// DisasterRepository defines the interface for disaster data storage operations.
// Update never touches the contributions list or the files list; those change
// only through the dedicated methods.
type DisasterRepository interface {
	Create(ctx context.Context, disaster *models.Disaster) (string, error)
	GetByID(ctx context.Context, disasterID string) (*models.Disaster, error)
	GetMany(ctx context.Context, disasterIDs []string) (map[string]*models.Disaster, error)
	// List returns one page ordered by startDate descending, plus the total
	// number of matching documents.
	List(ctx context.Context, filter query.Filter, page query.Page) ([]*models.Disaster, int, error)
	All(ctx context.Context) ([]*models.Disaster, error)
	DistinctTypes(ctx context.Context) ([]models.DisasterType, error)
	Update(ctx context.Context, disaster *models.Disaster) error
	// RemoveFile drops one attachment record and returns it.
	RemoveFile(ctx context.Context, disasterID, fileID string) (models.FileMeta, error)
	// LinkContribution atomically adds contributionID to the contributions set.
	LinkContribution(ctx context.Context, disasterID, contributionID string) error
	Delete(ctx context.Context, disasterID string) error
}

// ContributionRepository defines the interface for contribution storage.
type ContributionRepository interface {
	// CreateLinked creates the contribution and appends its ID to the target
	// disaster in one transaction. ErrNotFound if the disaster is missing.
	CreateLinked(ctx context.Context, contribution *models.Contribution) (string, error)
	GetByID(ctx context.Context, contributionID string) (*models.Contribution, error)
	// List returns one page ordered by createdAt descending, plus the total.
	List(ctx context.Context, filter query.Filter, page query.Page) ([]*models.Contribution, int, error)
	All(ctx context.Context) ([]*models.Contribution, error)
	Update(ctx context.Context, contribution *models.Contribution) error
	// DeleteLinked deletes the contribution and removes its ID from its
	// disaster in one transaction.
	DeleteLinked(ctx context.Context, contributionID string) error
	// DeleteByDisaster removes every contribution targeting disasterID.
	DeleteByDisaster(ctx context.Context, disasterID string) (int, error)
}

// RescueTeamRepository defines the interface for rescue team storage.
type RescueTeamRepository interface {
	Create(ctx context.Context, team *models.RescueTeam) (string, error)
	GetByID(ctx context.Context, teamID string) (*models.RescueTeam, error)
	// List returns one page ordered by createdAt descending, plus the total.
	List(ctx context.Context, filter query.Filter, page query.Page) ([]*models.RescueTeam, int, error)
	// ListAvailable returns available teams, optionally of one
	// specialization, ordered by experience then member count, both descending.
	ListAvailable(ctx context.Context, specialization string) ([]*models.RescueTeam, error)
	All(ctx context.Context) ([]*models.RescueTeam, error)
	Count(ctx context.Context) (int, error)
	Update(ctx context.Context, team *models.RescueTeam) error
	Delete(ctx context.Context, teamID string) error
	// Assign adds disasterID to the team's set. ErrAlreadyExists if present.
	Assign(ctx context.Context, teamID, disasterID string) (*models.RescueTeam, error)
	// Unassign removes disasterID from the team's set; removed is false when
	// it was not there.
	Unassign(ctx context.Context, teamID, disasterID string) (team *models.RescueTeam, removed bool, err error)
	// UnassignEverywhere removes disasterID from every team that lists it.
	UnassignEverywhere(ctx context.Context, disasterID string) (int, error)
}

// AuditRepository defines the interface for audit log data storage operations.
type AuditRepository interface {
	Create(ctx context.Context, logEntry models.AuditLog) error
}

// Repositories bundles one implementation of every repository.
type Repositories struct {
	Users         UserRepository
	Disasters     DisasterRepository
	Contributions ContributionRepository
	RescueTeams   RescueTeamRepository
	Audit         AuditRepository
}
