package models

import "time"

// Audit actions recorded by the services.
const (
	AuditContributionCreate = "CONTRIBUTION_CREATE"
	AuditContributionDelete = "CONTRIBUTION_DELETE"
	AuditTeamAssign         = "TEAM_ASSIGN"
	AuditTeamUnassign       = "TEAM_UNASSIGN"
	AuditDisasterDelete     = "DISASTER_DELETE"
	AuditReconcile          = "RECONCILE"
)

// AuditLog represents an audit trail event.
type AuditLog struct {
	ID         string                 `json:"id" firestore:"-"`
	Timestamp  time.Time              `json:"timestamp" firestore:"timestamp,serverTimestamp"`
	UserID     string                 `json:"userId,omitempty" firestore:"userId,omitempty"` // actor, empty for public routes
	Action     string                 `json:"action" firestore:"action"`
	TargetType string                 `json:"targetType,omitempty" firestore:"targetType,omitempty"` // DISASTER, CONTRIBUTION, RESCUE_TEAM
	TargetID   string                 `json:"targetId,omitempty" firestore:"targetId,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty" firestore:"details,omitempty"`
}
