package core

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"go.uber.org/zap"

	"reliefnet-backend-go/internal/db"
	"reliefnet-backend-go/internal/models"
	"reliefnet-backend-go/internal/query"
	"reliefnet-backend-go/pkg/metrics"
)

const (
	assignOp   = "assign"
	unassignOp = "unassign"
)

type rescueTeamService struct {
	repos   db.Repositories
	metrics *metrics.Metrics
	effects sideEffects
	logger  *zap.Logger
}

// NewRescueTeamService creates a new RescueTeamService. m may be nil.
func NewRescueTeamService(repos db.Repositories, m *metrics.Metrics, as AuditService, events EventPublisher, logger *zap.Logger) RescueTeamService {
	return &rescueTeamService{
		repos:   repos,
		metrics: m,
		effects: sideEffects{audit: as, events: events, logger: logger},
		logger:  logger,
	}
}

func (s *rescueTeamService) CreateTeam(ctx context.Context, req models.CreateRescueTeamRequest) (*models.RescueTeamView, error) {
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.NGOName) == "" || req.Specialization == "" ||
		req.MemberCount == 0 || strings.TrimSpace(req.ContactPerson) == "" ||
		strings.TrimSpace(req.ContactPhone) == "" || strings.TrimSpace(req.ContactEmail) == "" {
		return nil, validationf("Missing required fields")
	}

	t := &models.RescueTeam{
		Name:                   strings.TrimSpace(req.Name),
		NGOName:                strings.TrimSpace(req.NGOName),
		Specialization:         req.Specialization,
		MemberCount:            int(req.MemberCount),
		ContactPerson:          strings.TrimSpace(req.ContactPerson),
		ContactPhone:           strings.TrimSpace(req.ContactPhone),
		ContactEmail:           strings.ToLower(strings.TrimSpace(req.ContactEmail)),
		Location:               req.Location,
		Equipment:              req.Equipment,
		Availability:           req.Availability,
		TrainingCertifications: req.TrainingCertifications,
		Experience:             req.Experience,
	}
	if t.Location == nil {
		t.Location = &models.Location{Type: "Point", Coordinates: []float64{0, 0}}
	}
	if t.Availability == "" {
		t.Availability = models.Available
	}
	if t.Experience == "" {
		t.Experience = models.ExperienceIntermediate
	}
	if err := validateTeam(t); err != nil {
		return nil, err
	}

	if _, err := s.repos.RescueTeams.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to create rescue team: %w", err)
	}
	s.logger.Info("Rescue team created", zap.String("team_id", t.ID), zap.String("specialization", string(t.Specialization)))
	return s.view(ctx, t)
}

func (s *rescueTeamService) ListTeams(ctx context.Context, filter query.Filter, page query.Page) ([]models.RescueTeamView, query.Pagination, error) {
	items, total, err := s.repos.RescueTeams.List(ctx, filter, page)
	if err != nil {
		return nil, query.Pagination{}, err
	}
	views, err := s.views(ctx, items)
	if err != nil {
		return nil, query.Pagination{}, err
	}
	return views, query.NewPagination(page, total), nil
}

// AvailableTeams requires disasterID but does not look the disaster up.
func (s *rescueTeamService) AvailableTeams(ctx context.Context, disasterID, specialization string) ([]models.RescueTeamView, error) {
	if strings.TrimSpace(disasterID) == "" {
		return nil, validationf("Missing disasterId parameter")
	}
	items, err := s.repos.RescueTeams.ListAvailable(ctx, specialization)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, items)
}

func (s *rescueTeamService) GetTeam(ctx context.Context, teamID string) (*models.RescueTeamView, error) {
	t, err := s.repos.RescueTeams.GetByID(ctx, teamID)
	if err != nil {
		return nil, translate(err, "Rescue team not found")
	}
	return s.view(ctx, t)
}

func (s *rescueTeamService) UpdateTeam(ctx context.Context, teamID string, req models.UpdateRescueTeamRequest) (*models.RescueTeamView, error) {
	t, err := s.repos.RescueTeams.GetByID(ctx, teamID)
	if err != nil {
		return nil, translate(err, "Rescue team not found")
	}

	setText := func(dst *string, src *string, field string) error {
		if src == nil {
			return nil
		}
		v := strings.TrimSpace(*src)
		if v == "" {
			return validationf("%s must not be empty", field)
		}
		*dst = v
		return nil
	}
	for _, f := range []struct {
		dst   *string
		src   *string
		field string
	}{
		{&t.Name, req.Name, "name"},
		{&t.NGOName, req.NGOName, "ngoName"},
		{&t.ContactPerson, req.ContactPerson, "contactPerson"},
		{&t.ContactPhone, req.ContactPhone, "contactPhone"},
		{&t.ContactEmail, req.ContactEmail, "contactEmail"},
	} {
		if err := setText(f.dst, f.src, f.field); err != nil {
			return nil, err
		}
	}
	if req.Specialization != nil {
		t.Specialization = *req.Specialization
	}
	if req.MemberCount != nil {
		t.MemberCount = int(*req.MemberCount)
	}
	if req.Location != nil {
		t.Location = req.Location
	}
	if req.Equipment != nil {
		t.Equipment = *req.Equipment
	}
	if req.Availability != nil {
		t.Availability = *req.Availability
	}
	if req.TrainingCertifications != nil {
		t.TrainingCertifications = *req.TrainingCertifications
	}
	if req.Experience != nil {
		t.Experience = *req.Experience
	}
	if err := validateTeam(t); err != nil {
		return nil, err
	}

	if err := s.repos.RescueTeams.Update(ctx, t); err != nil {
		return nil, translate(err, "Rescue team not found")
	}
	return s.GetTeam(ctx, teamID)
}

func (s *rescueTeamService) DeleteTeam(ctx context.Context, teamID string) error {
	if err := s.repos.RescueTeams.Delete(ctx, teamID); err != nil {
		return translate(err, "Rescue team not found")
	}
	s.logger.Info("Rescue team deleted", zap.String("team_id", teamID))
	return nil
}

func (s *rescueTeamService) Assign(ctx context.Context, actor Actor, req models.AssignmentRequest) (*models.RescueTeamView, error) {
	teamID, disasterID := strings.TrimSpace(req.TeamID), strings.TrimSpace(req.DisasterID)
	if teamID == "" || disasterID == "" {
		return nil, validationf("Missing teamId or disasterId")
	}
	if _, err := s.repos.RescueTeams.GetByID(ctx, teamID); err != nil {
		return nil, translate(err, "Rescue team not found")
	}
	if _, err := s.repos.Disasters.GetByID(ctx, disasterID); err != nil {
		return nil, translate(err, "Disaster not found")
	}

	t, err := s.repos.RescueTeams.Assign(ctx, teamID, disasterID)
	if err != nil {
		if errors.Is(err, db.ErrAlreadyExists) {
			return nil, fmt.Errorf("%w: Rescue team already assigned to this disaster", ErrConflict)
		}
		return nil, translate(err, "Rescue team not found")
	}
	s.metrics.TeamAssignment(assignOp)
	s.logger.Info("Rescue team assigned", zap.String("team_id", teamID), zap.String("disaster_id", disasterID))
	s.effects.record(ctx, models.AuditLog{
		UserID:     actor.ID,
		Action:     models.AuditTeamAssign,
		TargetType: "RESCUE_TEAM",
		TargetID:   teamID,
		Details:    map[string]interface{}{"disasterId": disasterID},
	})
	s.effects.publish(ctx, models.Event{Type: models.EventRescueTeamAssigned, TeamID: teamID, DisasterID: disasterID, ActorID: actor.ID})
	return s.view(ctx, t)
}

// Unassign succeeds whether or not the team was assigned.
func (s *rescueTeamService) Unassign(ctx context.Context, actor Actor, req models.AssignmentRequest) (*models.RescueTeamView, error) {
	teamID, disasterID := strings.TrimSpace(req.TeamID), strings.TrimSpace(req.DisasterID)
	if teamID == "" || disasterID == "" {
		return nil, validationf("Missing teamId or disasterId")
	}

	t, removed, err := s.repos.RescueTeams.Unassign(ctx, teamID, disasterID)
	if err != nil {
		return nil, translate(err, "Rescue team not found")
	}
	if removed {
		s.metrics.TeamAssignment(unassignOp)
		s.logger.Info("Rescue team unassigned", zap.String("team_id", teamID), zap.String("disaster_id", disasterID))
		s.effects.record(ctx, models.AuditLog{
			UserID:     actor.ID,
			Action:     models.AuditTeamUnassign,
			TargetType: "RESCUE_TEAM",
			TargetID:   teamID,
			Details:    map[string]interface{}{"disasterId": disasterID},
		})
		s.effects.publish(ctx, models.Event{Type: models.EventRescueTeamUnassigned, TeamID: teamID, DisasterID: disasterID, ActorID: actor.ID})
	}
	return s.view(ctx, t)
}

func (s *rescueTeamService) view(ctx context.Context, t *models.RescueTeam) (*models.RescueTeamView, error) {
	views, err := s.views(ctx, []*models.RescueTeam{t})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// views attaches summaries for assigned disasters that still exist.
func (s *rescueTeamService) views(ctx context.Context, teams []*models.RescueTeam) ([]models.RescueTeamView, error) {
	var ids []string
	for _, t := range teams {
		ids = append(ids, t.AssignedDisasters...)
	}
	disasters, err := s.repos.Disasters.GetMany(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve assigned disasters: %w", err)
	}
	views := make([]models.RescueTeamView, 0, len(teams))
	for _, t := range teams {
		t.Normalize()
		details := make([]models.DisasterSummary, 0, len(t.AssignedDisasters))
		for _, id := range t.AssignedDisasters {
			if d, ok := disasters[id]; ok {
				details = append(details, *d.Summary())
			}
		}
		views = append(views, models.RescueTeamView{RescueTeam: t, AssignedDisasterDetails: details})
	}
	return views, nil
}

func validateTeam(t *models.RescueTeam) error {
	if !t.Specialization.Valid() {
		return validationf("Invalid specialization: %s", t.Specialization)
	}
	if t.MemberCount < 1 {
		return validationf("memberCount must be at least 1")
	}
	if !t.Availability.Valid() {
		return validationf("Invalid availability: %s", t.Availability)
	}
	if !t.Experience.Valid() {
		return validationf("Invalid experience: %s", t.Experience)
	}
	if _, err := mail.ParseAddress(t.ContactEmail); err != nil {
		return validationf("Invalid contactEmail")
	}
	if t.Location != nil {
		if err := validateLocation(t.Location); err != nil {
			return err
		}
	}
	for _, e := range t.Equipment {
		if strings.TrimSpace(e.Name) == "" {
			return validationf("Equipment name is required")
		}
		if e.Quantity < 0 {
			return validationf("Equipment quantity must not be negative")
		}
	}
	return nil
}
