package core

import (
	"context"
	"io"

	"reliefnet-backend-go/internal/models"
	"reliefnet-backend-go/internal/query"
)

// Actor is the authenticated caller, if any. The zero value is anonymous.
type Actor struct {
	ID   string
	Role models.Role
}

func (a Actor) Authenticated() bool { return a.ID != "" }

func (a Actor) IsAdmin() bool { return a.Role == models.RoleAdmin }

// AuthResult is returned by registration and login.
type AuthResult struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// UserService handles accounts and credentials.
type UserService interface {
	Register(ctx context.Context, req models.RegisterRequest) (*AuthResult, error)
	// RegisterAdmin creates an admin account when key matches the configured
	// bootstrap key.
	RegisterAdmin(ctx context.Context, key string, req models.RegisterRequest) (*AuthResult, error)
	Login(ctx context.Context, req models.LoginRequest) (*AuthResult, error)
	Profile(ctx context.Context, actor Actor) (*models.User, error)
}

// Upload is one file received with a disaster report.
type Upload struct {
	OriginalName string
	ContentType  string
	Size         int64
	Open         func() (io.ReadCloser, error)
}

// DisasterService manages disaster records and their attachments.
type DisasterService interface {
	CreateDisaster(ctx context.Context, actor Actor, req models.CreateDisasterRequest, uploads []Upload) (*models.Disaster, error)
	ListDisasters(ctx context.Context, filter query.Filter, page query.Page) ([]*models.Disaster, query.Pagination, error)
	DisasterTypes(ctx context.Context) ([]models.DisasterType, error)
	GetDisaster(ctx context.Context, disasterID string) (*models.Disaster, error)
	UpdateDisaster(ctx context.Context, disasterID string, req models.UpdateDisasterRequest) (*models.Disaster, error)
	// DeleteDisaster removes the disaster, its files, its contributions and
	// every team's reference to it.
	DeleteDisaster(ctx context.Context, actor Actor, disasterID string) error
	OpenFile(ctx context.Context, disasterID, fileID string) (models.FileMeta, io.ReadCloser, error)
	DeleteFile(ctx context.Context, disasterID, fileID string) error
}

// ContributionCreated is the payload returned when a contribution is linked.
type ContributionCreated struct {
	Contribution  *models.Contribution `json:"contribution"`
	DisasterID    string               `json:"disasterId"`
	DisasterTitle string               `json:"disasterTitle"`
}

// ContributionService manages contributions and their link to disasters.
type ContributionService interface {
	CreateContribution(ctx context.Context, actor Actor, req models.CreateContributionRequest) (*ContributionCreated, error)
	ListContributions(ctx context.Context, filter query.Filter, page query.Page) ([]models.ContributionView, query.Pagination, error)
	GetContribution(ctx context.Context, contributionID string) (*models.ContributionView, error)
	// UpdateContribution decodes payload into an UpdateContributionRequest
	// only after ownership is established.
	UpdateContribution(ctx context.Context, actor Actor, contributionID string, payload []byte) (*models.ContributionView, error)
	DeleteContribution(ctx context.Context, actor Actor, contributionID string) error
}

// RescueTeamService manages teams and their disaster assignments.
type RescueTeamService interface {
	CreateTeam(ctx context.Context, req models.CreateRescueTeamRequest) (*models.RescueTeamView, error)
	ListTeams(ctx context.Context, filter query.Filter, page query.Page) ([]models.RescueTeamView, query.Pagination, error)
	AvailableTeams(ctx context.Context, disasterID, specialization string) ([]models.RescueTeamView, error)
	GetTeam(ctx context.Context, teamID string) (*models.RescueTeamView, error)
	UpdateTeam(ctx context.Context, teamID string, req models.UpdateRescueTeamRequest) (*models.RescueTeamView, error)
	DeleteTeam(ctx context.Context, teamID string) error
	Assign(ctx context.Context, actor Actor, req models.AssignmentRequest) (*models.RescueTeamView, error)
	Unassign(ctx context.Context, actor Actor, req models.AssignmentRequest) (*models.RescueTeamView, error)
}

// ReconcileReport summarises one repair pass.
type ReconcileReport struct {
	Scanned         int      `json:"scanned"`
	Relinked        []string `json:"relinked"`
	Orphaned        []string `json:"orphaned"`
	Pruned          int      `json:"pruned"`
	TeamRefsRemoved int      `json:"teamRefsRemoved"`
}

// ReconcileService repairs back-references between collections.
type ReconcileService interface {
	Run(ctx context.Context, actor Actor, prune bool) (*ReconcileReport, error)
}

// AuditService defines the interface for audit logging operations.
type AuditService interface {
	CreateAuditLog(ctx context.Context, logEntry models.AuditLog) error
}

// EventPublisher delivers domain events to the events queue.
type EventPublisher interface {
	Publish(ctx context.Context, event models.Event) error
}
