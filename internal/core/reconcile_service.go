package core

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"reliefnet-backend-go/internal/db"
	"reliefnet-backend-go/internal/models"
)

type reconcileService struct {
	repos   db.Repositories
	effects sideEffects
	logger  *zap.Logger
}

// NewReconcileService creates a new ReconcileService.
func NewReconcileService(repos db.Repositories, as AuditService, logger *zap.Logger) ReconcileService {
	return &reconcileService{
		repos:   repos,
		effects: sideEffects{audit: as, logger: logger},
		logger:  logger,
	}
}

// Run relinks contributions missing from their disaster, reports (and with
// prune deletes) contributions whose disaster is gone, and strips team
// assignments that point at missing disasters.
//
// Contributions are read before disasters, so the disaster of every
// snapshotted contribution was committed before the disaster read began.
// Anything absent from the disaster snapshot is still re-read by ID before a
// contribution is reported or pruned, or a team reference removed.
func (s *reconcileService) Run(ctx context.Context, actor Actor, prune bool) (*ReconcileReport, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: Admin privileges required", ErrForbidden)
	}

	contributions, err := s.repos.Contributions.All(ctx)
	if err != nil {
		return nil, err
	}

	disasters, err := s.repos.Disasters.All(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*models.Disaster, len(disasters))
	for _, d := range disasters {
		byID[d.ID] = d
	}

	report := &ReconcileReport{Scanned: len(contributions), Relinked: []string{}, Orphaned: []string{}}
	for _, c := range contributions {
		d, ok := byID[c.DisasterID]
		if !ok {
			d, err = s.repos.Disasters.GetByID(ctx, c.DisasterID)
			switch {
			case err == nil:
				byID[d.ID] = d
			case errors.Is(err, db.ErrNotFound):
				if err := s.orphan(ctx, report, c.ID, prune); err != nil {
					return report, err
				}
				continue
			default:
				return report, fmt.Errorf("failed to check disaster of contribution '%s': %w", c.ID, err)
			}
		}
		if d.HasContribution(c.ID) {
			continue
		}
		// Deleted since the snapshot; relinking would leave a dangling ID.
		if _, err := s.repos.Contributions.GetByID(ctx, c.ID); err != nil {
			if errors.Is(err, db.ErrNotFound) {
				continue
			}
			return report, fmt.Errorf("failed to check contribution '%s': %w", c.ID, err)
		}
		if err := s.repos.Disasters.LinkContribution(ctx, d.ID, c.ID); err != nil {
			if errors.Is(err, db.ErrNotFound) {
				continue
			}
			return report, fmt.Errorf("failed to relink contribution '%s': %w", c.ID, err)
		}
		report.Relinked = append(report.Relinked, c.ID)
	}

	teams, err := s.repos.RescueTeams.All(ctx)
	if err != nil {
		return report, err
	}
	for _, t := range teams {
		for _, disasterID := range t.AssignedDisasters {
			if _, ok := byID[disasterID]; ok {
				continue
			}
			if _, err := s.repos.Disasters.GetByID(ctx, disasterID); !errors.Is(err, db.ErrNotFound) {
				if err != nil {
					return report, fmt.Errorf("failed to check disaster '%s': %w", disasterID, err)
				}
				continue
			}
			_, removed, err := s.repos.RescueTeams.Unassign(ctx, t.ID, disasterID)
			if err != nil {
				return report, fmt.Errorf("failed to clear assignment of team '%s': %w", t.ID, err)
			}
			if removed {
				report.TeamRefsRemoved++
			}
		}
	}

	s.logger.Info("Reconciliation finished",
		zap.Int("scanned", report.Scanned),
		zap.Int("relinked", len(report.Relinked)),
		zap.Int("orphaned", len(report.Orphaned)),
		zap.Int("pruned", report.Pruned),
		zap.Int("team_refs_removed", report.TeamRefsRemoved))
	s.effects.record(ctx, models.AuditLog{
		UserID: actor.ID,
		Action: models.AuditReconcile,
		Details: map[string]interface{}{
			"relinked":        len(report.Relinked),
			"orphaned":        len(report.Orphaned),
			"pruned":          report.Pruned,
			"teamRefsRemoved": report.TeamRefsRemoved,
		},
	})
	return report, nil
}

// orphan reports a contribution whose disaster is gone and, when pruning,
// deletes it. A contribution already deleted by its owner is not counted.
func (s *reconcileService) orphan(ctx context.Context, report *ReconcileReport, contributionID string, prune bool) error {
	report.Orphaned = append(report.Orphaned, contributionID)
	if !prune {
		return nil
	}
	if err := s.repos.Contributions.DeleteLinked(ctx, contributionID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to prune contribution '%s': %w", contributionID, err)
	}
	report.Pruned++
	return nil
}
