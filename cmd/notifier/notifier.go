package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"reliefnet-backend-go/internal/db"
	"reliefnet-backend-go/internal/models"
	"reliefnet-backend-go/pkg/mailer"
	"reliefnet-backend-go/pkg/messagequeue"
)

type notifier struct {
	teams     db.RescueTeamRepository
	disasters db.DisasterRepository
	mail      mailer.Sender
	logger    *zap.Logger
}

// handle returns an error for undecodable messages and failed sends; the
// consumer rejects those into the events queue's ".dead" queue. Events of
// other types, and assignments whose team or disaster has since been
// deleted, are acknowledged and dropped.
func (n *notifier) handle(ctx context.Context, body []byte) error {
	event, err := messagequeue.DecodeEvent(body)
	if err != nil {
		return err
	}
	if event.Type != models.EventRescueTeamAssigned {
		return nil
	}

	team, err := n.teams.GetByID(ctx, event.TeamID)
	if errors.Is(err, db.ErrNotFound) {
		n.logger.Info("Skipping assignment for deleted team", zap.String("team_id", event.TeamID))
		return nil
	}
	if err != nil {
		return err
	}
	disaster, err := n.disasters.GetByID(ctx, event.DisasterID)
	if errors.Is(err, db.ErrNotFound) {
		n.logger.Info("Skipping assignment to deleted disaster", zap.String("disaster_id", event.DisasterID))
		return nil
	}
	if err != nil {
		return err
	}
	if team.ContactEmail == "" {
		n.logger.Warn("Rescue team has no contact email", zap.String("team_id", team.ID))
		return nil
	}

	if err := n.mail.Send(assignmentMessage(team, disaster)); err != nil {
		return err
	}
	n.logger.Info("Assignment notice sent",
		zap.String("team_id", team.ID),
		zap.String("disaster_id", disaster.ID))
	return nil
}

func assignmentMessage(team *models.RescueTeam, d *models.Disaster) mailer.Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n", team.ContactPerson)
	fmt.Fprintf(&b, "%s (%s) has been assigned to the following disaster:\n\n", team.Name, team.NGOName)
	fmt.Fprintf(&b, "  %s\n", d.Title)
	fmt.Fprintf(&b, "  Type: %s, severity: %s, status: %s\n", d.Type, d.Severity, d.Status)
	if d.Location != nil {
		if place := locationLine(d.Location); place != "" {
			fmt.Fprintf(&b, "  Location: %s\n", place)
		}
	}
	b.WriteString("\nPlease coordinate with the relief desk before deploying.\n")
	return mailer.Message{
		To:      team.ContactEmail,
		Subject: fmt.Sprintf("Assignment: %s", d.Title),
		Body:    b.String(),
	}
}

func locationLine(l *models.Location) string {
	parts := make([]string, 0, 4)
	for _, p := range []string{l.Address, l.City, l.State, l.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}
