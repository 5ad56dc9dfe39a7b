package models

import "time"

// Domain event types published to the events queue.
const (
	EventContributionCreated  = "contribution.created"
	EventRescueTeamAssigned   = "rescue_team.assigned"
	EventRescueTeamUnassigned = "rescue_team.unassigned"
	EventDisasterDeleted      = "disaster.deleted"
)

// Event is the JSON body of every message on the events queue.
type Event struct {
	Type           string    `json:"type"`
	OccurredAt     time.Time `json:"occurredAt"`
	DisasterID     string    `json:"disasterId,omitempty"`
	ContributionID string    `json:"contributionId,omitempty"`
	TeamID         string    `json:"teamId,omitempty"`
	ActorID        string    `json:"actorId,omitempty"`
}
