package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"reliefnet-backend-go/internal/db"
	"reliefnet-backend-go/internal/models"
	"reliefnet-backend-go/internal/query"
	"reliefnet-backend-go/pkg/cache"
	"reliefnet-backend-go/pkg/filestore"
)

const disasterTypesCacheKey = "reliefnet:disasters:types"

type disasterService struct {
	repos    db.Repositories
	files    filestore.Store
	cache    cache.Cache
	cacheTTL time.Duration
	effects  sideEffects
	logger   *zap.Logger
}

// NewDisasterService creates a new DisasterService. c may be cache.Noop{}.
func NewDisasterService(
	repos db.Repositories,
	files filestore.Store,
	c cache.Cache,
	cacheTTL time.Duration,
	as AuditService,
	events EventPublisher,
	logger *zap.Logger,
) DisasterService {
	if c == nil {
		c = cache.Noop{}
	}
	return &disasterService{
		repos:    repos,
		files:    files,
		cache:    c,
		cacheTTL: cacheTTL,
		effects:  sideEffects{audit: as, events: events, logger: logger},
		logger:   logger,
	}
}

func (s *disasterService) CreateDisaster(ctx context.Context, actor Actor, req models.CreateDisasterRequest, uploads []Upload) (*models.Disaster, error) {
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Description) == "" || req.Type == "" || req.Severity == "" {
		return nil, validationf("Missing required fields: title, description, type, severity")
	}

	now := time.Now().UTC()
	d := &models.Disaster{
		Title:          strings.TrimSpace(req.Title),
		Description:    req.Description,
		Type:           req.Type,
		Severity:       req.Severity,
		Location:       req.Location,
		StartDate:      now,
		Status:         req.Status,
		AffectedAreas:  req.AffectedAreas,
		Casualties:     int(req.Casualties),
		DamageEstimate: float64(req.DamageEstimate),
		Media:          req.Media,
		CommonNeeds:    req.CommonNeeds,
		CreatedBy:      actor.ID,
	}
	if req.StartDate != nil && !req.StartDate.IsZero() {
		d.StartDate = req.StartDate.UTC()
	}
	if req.EndDate != nil && !req.EndDate.IsZero() {
		end := req.EndDate.UTC()
		d.EndDate = &end
	}
	if d.Status == "" {
		d.Status = models.DisasterActive
	}
	if err := validateDisaster(d); err != nil {
		return nil, err
	}

	saved, err := s.storeUploads(ctx, uploads)
	if err != nil {
		return nil, err
	}
	d.Files = saved

	if _, err := s.repos.Disasters.Create(ctx, d); err != nil {
		s.removeFiles(ctx, saved)
		return nil, fmt.Errorf("failed to create disaster: %w", err)
	}
	s.invalidateTypes(ctx)
	s.logger.Info("Disaster created", zap.String("disaster_id", d.ID), zap.Int("files", len(saved)))
	return s.decorate(d), nil
}

// storeUploads saves every upload or none of them.
func (s *disasterService) storeUploads(ctx context.Context, uploads []Upload) ([]models.FileMeta, error) {
	if len(uploads) == 0 {
		return []models.FileMeta{}, nil
	}
	if s.files == nil {
		return nil, validationf("File uploads are not enabled")
	}
	saved := make([]models.FileMeta, 0, len(uploads))
	for _, up := range uploads {
		meta, err := s.storeUpload(ctx, up)
		if err != nil {
			s.removeFiles(ctx, saved)
			return nil, err
		}
		saved = append(saved, meta)
	}
	return saved, nil
}

func (s *disasterService) storeUpload(ctx context.Context, up Upload) (models.FileMeta, error) {
	rc, err := up.Open()
	if err != nil {
		return models.FileMeta{}, fmt.Errorf("failed to read upload %q: %w", up.OriginalName, err)
	}
	defer rc.Close()

	stored, err := s.files.Save(ctx, up.OriginalName, up.ContentType, rc)
	if err != nil {
		return models.FileMeta{}, fmt.Errorf("failed to store upload %q: %w", up.OriginalName, err)
	}
	return models.FileMeta{
		ID:           uuid.NewString(),
		Filename:     stored.Filename,
		OriginalName: up.OriginalName,
		Mimetype:     up.ContentType,
		Size:         stored.Size,
		Path:         stored.Path,
		UploadedAt:   time.Now().UTC(),
	}, nil
}

func (s *disasterService) removeFiles(ctx context.Context, files []models.FileMeta) {
	if s.files == nil {
		return
	}
	for _, f := range files {
		if err := s.files.Delete(ctx, f.Path); err != nil && !errors.Is(err, filestore.ErrNotExist) {
			s.logger.Warn("Failed to delete stored file", zap.String("path", f.Path), zap.Error(err))
		}
	}
}

func (s *disasterService) ListDisasters(ctx context.Context, filter query.Filter, page query.Page) ([]*models.Disaster, query.Pagination, error) {
	items, total, err := s.repos.Disasters.List(ctx, filter, page)
	if err != nil {
		return nil, query.Pagination{}, err
	}
	for _, d := range items {
		s.decorate(d)
	}
	return items, query.NewPagination(page, total), nil
}

// DisasterTypes is read through the cache. Cache failures fall back to the
// store.
func (s *disasterService) DisasterTypes(ctx context.Context) ([]models.DisasterType, error) {
	if raw, err := s.cache.Get(ctx, disasterTypesCacheKey); err == nil {
		var types []models.DisasterType
		if jsonErr := json.Unmarshal([]byte(raw), &types); jsonErr == nil {
			return types, nil
		}
		s.logger.Warn("Discarding malformed cached disaster types")
	} else if !errors.Is(err, cache.ErrMiss) {
		s.logger.Warn("Disaster types cache read failed", zap.Error(err))
	}

	types, err := s.repos.Disasters.DistinctTypes(ctx)
	if err != nil {
		return nil, err
	}
	if encoded, err := json.Marshal(types); err == nil {
		if err := s.cache.Set(ctx, disasterTypesCacheKey, string(encoded), s.cacheTTL); err != nil {
			s.logger.Warn("Disaster types cache write failed", zap.Error(err))
		}
	}
	return types, nil
}

func (s *disasterService) invalidateTypes(ctx context.Context) {
	if err := s.cache.Delete(ctx, disasterTypesCacheKey); err != nil {
		s.logger.Warn("Disaster types cache invalidation failed", zap.Error(err))
	}
}

func (s *disasterService) GetDisaster(ctx context.Context, disasterID string) (*models.Disaster, error) {
	d, err := s.repos.Disasters.GetByID(ctx, disasterID)
	if err != nil {
		return nil, translate(err, "Disaster not found")
	}
	return s.decorate(d), nil
}

func (s *disasterService) UpdateDisaster(ctx context.Context, disasterID string, req models.UpdateDisasterRequest) (*models.Disaster, error) {
	d, err := s.repos.Disasters.GetByID(ctx, disasterID)
	if err != nil {
		return nil, translate(err, "Disaster not found")
	}

	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			return nil, validationf("Title must not be empty")
		}
		d.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		if strings.TrimSpace(*req.Description) == "" {
			return nil, validationf("Description must not be empty")
		}
		d.Description = *req.Description
	}
	if req.Type != nil {
		d.Type = *req.Type
	}
	if req.Severity != nil {
		d.Severity = *req.Severity
	}
	if req.Location != nil {
		d.Location = req.Location
	}
	if req.StartDate != nil && !req.StartDate.IsZero() {
		d.StartDate = req.StartDate.UTC()
	}
	if req.EndDate != nil {
		if req.EndDate.IsZero() {
			d.EndDate = nil
		} else {
			end := req.EndDate.UTC()
			d.EndDate = &end
		}
	}
	if req.Status != nil {
		d.Status = *req.Status
	}
	if req.AffectedAreas != nil {
		d.AffectedAreas = *req.AffectedAreas
	}
	if req.Casualties != nil {
		d.Casualties = int(*req.Casualties)
	}
	if req.DamageEstimate != nil {
		d.DamageEstimate = float64(*req.DamageEstimate)
	}
	if req.Media != nil {
		d.Media = *req.Media
	}
	if req.CommonNeeds != nil {
		d.CommonNeeds = *req.CommonNeeds
	}
	if err := validateDisaster(d); err != nil {
		return nil, err
	}

	if err := s.repos.Disasters.Update(ctx, d); err != nil {
		return nil, translate(err, "Disaster not found")
	}
	s.invalidateTypes(ctx)

	// Reread so concurrent links made during the update are reflected.
	updated, err := s.repos.Disasters.GetByID(ctx, disasterID)
	if err != nil {
		return nil, translate(err, "Disaster not found")
	}
	return s.decorate(updated), nil
}

// DeleteDisaster deletes the disaster first so no new contribution can be
// linked to it, then removes what pointed at it.
func (s *disasterService) DeleteDisaster(ctx context.Context, actor Actor, disasterID string) error {
	d, err := s.repos.Disasters.GetByID(ctx, disasterID)
	if err != nil {
		return translate(err, "Disaster not found")
	}
	if err := s.repos.Disasters.Delete(ctx, disasterID); err != nil {
		return translate(err, "Disaster not found")
	}
	s.removeFiles(ctx, d.Files)
	s.invalidateTypes(ctx)

	removed, err := s.repos.Contributions.DeleteByDisaster(ctx, disasterID)
	if err != nil {
		return fmt.Errorf("disaster deleted but its contributions were not: %w", err)
	}
	unassigned, err := s.repos.RescueTeams.UnassignEverywhere(ctx, disasterID)
	if err != nil {
		return fmt.Errorf("disaster deleted but team assignments were not cleared: %w", err)
	}

	s.logger.Info("Disaster deleted",
		zap.String("disaster_id", disasterID),
		zap.Int("contributions_removed", removed),
		zap.Int("teams_unassigned", unassigned))
	s.effects.record(ctx, models.AuditLog{
		UserID:     actor.ID,
		Action:     models.AuditDisasterDelete,
		TargetType: "DISASTER",
		TargetID:   disasterID,
		Details: map[string]interface{}{
			"title":                d.Title,
			"contributionsRemoved": removed,
			"teamsUnassigned":      unassigned,
			"filesRemoved":         len(d.Files),
		},
	})
	s.effects.publish(ctx, models.Event{Type: models.EventDisasterDeleted, DisasterID: disasterID, ActorID: actor.ID})
	return nil
}

func (s *disasterService) OpenFile(ctx context.Context, disasterID, fileID string) (models.FileMeta, io.ReadCloser, error) {
	d, err := s.repos.Disasters.GetByID(ctx, disasterID)
	if err != nil {
		return models.FileMeta{}, nil, translate(err, "Disaster not found")
	}
	f, ok := d.File(fileID)
	if !ok {
		return models.FileMeta{}, nil, fmt.Errorf("%w: File not found", ErrNotFound)
	}
	if s.files == nil {
		return models.FileMeta{}, nil, fmt.Errorf("%w: File not found on server", ErrNotFound)
	}
	rc, err := s.files.Open(ctx, f.Path)
	if err != nil {
		if errors.Is(err, filestore.ErrNotExist) {
			return models.FileMeta{}, nil, fmt.Errorf("%w: File not found on server", ErrNotFound)
		}
		return models.FileMeta{}, nil, err
	}
	return f, rc, nil
}

func (s *disasterService) DeleteFile(ctx context.Context, disasterID, fileID string) error {
	removed, err := s.repos.Disasters.RemoveFile(ctx, disasterID, fileID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) && validDisaster(ctx, s.repos.Disasters, disasterID) {
			return fmt.Errorf("%w: File not found", ErrNotFound)
		}
		return translate(err, "Disaster not found")
	}
	s.removeFiles(ctx, []models.FileMeta{removed})
	return nil
}

func validDisaster(ctx context.Context, repo db.DisasterRepository, disasterID string) bool {
	_, err := repo.GetByID(ctx, disasterID)
	return err == nil
}

// decorate fills computed fields on output.
func (s *disasterService) decorate(d *models.Disaster) *models.Disaster {
	d.Normalize()
	if s.files == nil {
		return d
	}
	for i := range d.Files {
		d.Files[i].URL = s.files.URL(d.Files[i].Path)
	}
	return d
}

func validateDisaster(d *models.Disaster) error {
	if !d.Type.Valid() {
		return validationf("Invalid disaster type: %s", d.Type)
	}
	if !d.Severity.Valid() {
		return validationf("Invalid severity: %s", d.Severity)
	}
	if !d.Status.Valid() {
		return validationf("Invalid status: %s", d.Status)
	}
	if d.EndDate != nil && d.EndDate.Before(d.StartDate) {
		return validationf("endDate must not be before startDate")
	}
	if d.Casualties < 0 {
		return validationf("casualties must not be negative")
	}
	if d.DamageEstimate < 0 {
		return validationf("damageEstimate must not be negative")
	}
	if d.Location != nil {
		if err := validateLocation(d.Location); err != nil {
			return err
		}
	}
	for _, area := range d.AffectedAreas {
		if strings.TrimSpace(area.Name) == "" {
			return validationf("Affected area name is required")
		}
		if !area.DamageLevel.Valid() {
			return validationf("Invalid damage level: %s", area.DamageLevel)
		}
		if area.Population < 0 {
			return validationf("Affected area population must not be negative")
		}
	}
	for _, m := range d.Media {
		switch m.Type {
		case "image", "video", "document":
		default:
			return validationf("Invalid media type: %s", m.Type)
		}
	}
	for _, n := range d.CommonNeeds {
		if !n.Valid() {
			return validationf("Invalid need: %s", n)
		}
	}
	return nil
}

// validateLocation accepts an empty coordinate list or a [lng, lat] pair.
func validateLocation(l *models.Location) error {
	switch len(l.Coordinates) {
	case 0:
		return nil
	case 2:
		lng, lat := l.Coordinates[0], l.Coordinates[1]
		if lng < -180 || lng > 180 || lat < -90 || lat > 90 {
			return validationf("Coordinates out of range")
		}
		return nil
	}
	return validationf("Coordinates must be [longitude, latitude]")
}
