package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"reliefnet-backend-go/internal/db"
	"reliefnet-backend-go/internal/models"
	"reliefnet-backend-go/internal/query"
	"reliefnet-backend-go/pkg/metrics"
)

type contributionService struct {
	repos   db.Repositories
	metrics *metrics.Metrics
	effects sideEffects
	logger  *zap.Logger
}

// NewContributionService creates a new ContributionService. m may be nil.
func NewContributionService(repos db.Repositories, m *metrics.Metrics, as AuditService, events EventPublisher, logger *zap.Logger) ContributionService {
	return &contributionService{
		repos:   repos,
		metrics: m,
		effects: sideEffects{audit: as, events: events, logger: logger},
		logger:  logger,
	}
}

func (s *contributionService) CreateContribution(ctx context.Context, actor Actor, req models.CreateContributionRequest) (*ContributionCreated, error) {
	disasterID := strings.TrimSpace(req.DisasterID)
	if disasterID == "" || strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Description) == "" || req.ContributionType == "" {
		return nil, validationf("Missing required fields: disasterId, title, description, contributionType")
	}
	if !req.ContributionType.Valid() {
		return nil, validationf("Invalid contribution type: %s", req.ContributionType)
	}
	if req.Amount < 0 {
		return nil, validationf("amount must not be negative")
	}
	if req.Location != nil {
		if err := validateLocation(req.Location); err != nil {
			return nil, err
		}
	}
	d, err := s.repos.Disasters.GetByID(ctx, disasterID)
	if err != nil {
		return nil, translate(err, "Disaster not found")
	}
	if !actor.Authenticated() {
		return nil, fmt.Errorf("%w: User not authenticated", ErrUnauthenticated)
	}

	c := &models.Contribution{
		UserID:           actor.ID,
		DisasterID:       disasterID,
		Title:            strings.TrimSpace(req.Title),
		Description:      req.Description,
		ContributionType: req.ContributionType,
		Amount:           float64(req.Amount),
		Status:           models.ContributionPending,
		Location:         req.Location,
		ContactInfo:      req.ContactInfo,
		IsAnonymous:      bool(req.IsAnonymous),
	}
	if _, err := s.repos.Contributions.CreateLinked(ctx, c); err != nil {
		return nil, translate(err, "Disaster not found")
	}
	s.metrics.ContributionLinked()

	s.logger.Info("Contribution linked",
		zap.String("contribution_id", c.ID),
		zap.String("disaster_id", disasterID),
		zap.String("user_id", actor.ID))
	s.effects.record(ctx, models.AuditLog{
		UserID:     actor.ID,
		Action:     models.AuditContributionCreate,
		TargetType: "CONTRIBUTION",
		TargetID:   c.ID,
		Details:    map[string]interface{}{"disasterId": disasterID, "contributionType": string(c.ContributionType)},
	})
	s.effects.publish(ctx, models.Event{
		Type:           models.EventContributionCreated,
		DisasterID:     disasterID,
		ContributionID: c.ID,
		ActorID:        actor.ID,
	})
	return &ContributionCreated{Contribution: c, DisasterID: disasterID, DisasterTitle: d.Title}, nil
}

func (s *contributionService) ListContributions(ctx context.Context, filter query.Filter, page query.Page) ([]models.ContributionView, query.Pagination, error) {
	items, total, err := s.repos.Contributions.List(ctx, filter, page)
	if err != nil {
		return nil, query.Pagination{}, err
	}
	views, err := s.views(ctx, items)
	if err != nil {
		return nil, query.Pagination{}, err
	}
	return views, query.NewPagination(page, total), nil
}

func (s *contributionService) GetContribution(ctx context.Context, contributionID string) (*models.ContributionView, error) {
	c, err := s.repos.Contributions.GetByID(ctx, contributionID)
	if err != nil {
		return nil, translate(err, "Contribution not found")
	}
	views, err := s.views(ctx, []*models.Contribution{c})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// views resolves owners and disasters with one batched read each.
func (s *contributionService) views(ctx context.Context, items []*models.Contribution) ([]models.ContributionView, error) {
	userIDs := make([]string, 0, len(items))
	disasterIDs := make([]string, 0, len(items))
	for _, c := range items {
		if !c.IsAnonymous && c.UserID != "" {
			userIDs = append(userIDs, c.UserID)
		}
		if c.DisasterID != "" {
			disasterIDs = append(disasterIDs, c.DisasterID)
		}
	}
	users, err := s.repos.Users.GetMany(ctx, userIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve contribution owners: %w", err)
	}
	disasters, err := s.repos.Disasters.GetMany(ctx, disasterIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve contribution disasters: %w", err)
	}

	views := make([]models.ContributionView, 0, len(items))
	for _, c := range items {
		v := models.ContributionView{Contribution: c}
		if !c.IsAnonymous {
			if u, ok := users[c.UserID]; ok {
				v.User = u.Summary()
			}
		}
		if d, ok := disasters[c.DisasterID]; ok {
			v.Disaster = d.Summary()
		}
		views = append(views, v)
	}
	return views, nil
}

func (s *contributionService) owned(ctx context.Context, actor Actor, contributionID, verb string) (*models.Contribution, error) {
	if !actor.Authenticated() {
		return nil, fmt.Errorf("%w: User not authenticated", ErrUnauthenticated)
	}
	c, err := s.repos.Contributions.GetByID(ctx, contributionID)
	if err != nil {
		return nil, translate(err, "Contribution not found")
	}
	if c.UserID != actor.ID {
		return nil, fmt.Errorf("%w: Not authorized to %s this contribution", ErrForbidden, verb)
	}
	return c, nil
}

func (s *contributionService) UpdateContribution(ctx context.Context, actor Actor, contributionID string, payload []byte) (*models.ContributionView, error) {
	c, err := s.owned(ctx, actor, contributionID, "update")
	if err != nil {
		return nil, err
	}
	var req models.UpdateContributionRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		s.logger.Debug("Rejected contribution update payload", zap.String("contribution_id", contributionID), zap.Error(err))
		return nil, validationf("Invalid request payload")
	}

	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			return nil, validationf("Title must not be empty")
		}
		c.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		if strings.TrimSpace(*req.Description) == "" {
			return nil, validationf("Description must not be empty")
		}
		c.Description = *req.Description
	}
	if req.ContributionType != nil {
		if !req.ContributionType.Valid() {
			return nil, validationf("Invalid contribution type: %s", *req.ContributionType)
		}
		c.ContributionType = *req.ContributionType
	}
	if req.Amount != nil {
		if *req.Amount < 0 {
			return nil, validationf("amount must not be negative")
		}
		c.Amount = float64(*req.Amount)
	}
	if req.Status != nil {
		if !req.Status.Valid() {
			return nil, validationf("Invalid status: %s", *req.Status)
		}
		c.Status = *req.Status
	}
	if req.Location != nil {
		if err := validateLocation(req.Location); err != nil {
			return nil, err
		}
		c.Location = req.Location
	}
	if req.ContactInfo != nil {
		c.ContactInfo = req.ContactInfo
	}
	if req.IsAnonymous != nil {
		c.IsAnonymous = bool(*req.IsAnonymous)
	}

	if err := s.repos.Contributions.Update(ctx, c); err != nil {
		return nil, translate(err, "Contribution not found")
	}
	return s.GetContribution(ctx, contributionID)
}

func (s *contributionService) DeleteContribution(ctx context.Context, actor Actor, contributionID string) error {
	c, err := s.owned(ctx, actor, contributionID, "delete")
	if err != nil {
		return err
	}
	if err := s.repos.Contributions.DeleteLinked(ctx, contributionID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("%w: Contribution not found", ErrNotFound)
		}
		return err
	}
	s.logger.Info("Contribution deleted", zap.String("contribution_id", contributionID), zap.String("disaster_id", c.DisasterID))
	s.effects.record(ctx, models.AuditLog{
		UserID:     actor.ID,
		Action:     models.AuditContributionDelete,
		TargetType: "CONTRIBUTION",
		TargetID:   contributionID,
		Details:    map[string]interface{}{"disasterId": c.DisasterID},
	})
	return nil
}
