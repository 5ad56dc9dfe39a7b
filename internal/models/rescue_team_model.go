package models

import "time"

type Specialization string

const (
	SpecializationMedical        Specialization = "medical"
	SpecializationSearchRescue   Specialization = "search_rescue"
	SpecializationLogistics      Specialization = "logistics"
	SpecializationCommunication  Specialization = "communication"
	SpecializationHeavyMachinery Specialization = "heavy_machinery"
	SpecializationWaterRescue    Specialization = "water_rescue"
	SpecializationOther          Specialization = "other"
)

func (s Specialization) Valid() bool {
	switch s {
	case SpecializationMedical, SpecializationSearchRescue, SpecializationLogistics, SpecializationCommunication,
		SpecializationHeavyMachinery, SpecializationWaterRescue, SpecializationOther:
		return true
	}
	return false
}

type Availability string

const (
	Available   Availability = "available"
	Busy        Availability = "busy"
	Unavailable Availability = "unavailable"
)

func (a Availability) Valid() bool {
	switch a {
	case Available, Busy, Unavailable:
		return true
	}
	return false
}

type Experience string

const (
	ExperienceBeginner     Experience = "beginner"
	ExperienceIntermediate Experience = "intermediate"
	ExperienceExpert       Experience = "expert"
)

func (e Experience) Valid() bool {
	return e.Rank() > 0
}

// Rank orders experience tiers; unknown values rank 0.
func (e Experience) Rank() int {
	switch e {
	case ExperienceBeginner:
		return 1
	case ExperienceIntermediate:
		return 2
	case ExperienceExpert:
		return 3
	}
	return 0
}

type Equipment struct {
	Name        string `json:"name" firestore:"name"`
	Quantity    int    `json:"quantity" firestore:"quantity"`
	Description string `json:"description,omitempty" firestore:"description,omitempty"`
}

// RescueTeam is an NGO responder unit. AssignedDisasters is a set of disaster
// IDs; Disaster carries no reference back.
type RescueTeam struct {
	ID                     string         `json:"id" firestore:"-"`
	Name                   string         `json:"name" firestore:"name"`
	NGOName                string         `json:"ngoName" firestore:"ngoName"`
	Specialization         Specialization `json:"specialization" firestore:"specialization"`
	MemberCount            int            `json:"memberCount" firestore:"memberCount"`
	ContactPerson          string         `json:"contactPerson" firestore:"contactPerson"`
	ContactPhone           string         `json:"contactPhone" firestore:"contactPhone"`
	ContactEmail           string         `json:"contactEmail" firestore:"contactEmail"`
	Location               *Location      `json:"location,omitempty" firestore:"location,omitempty"`
	Equipment              []Equipment    `json:"equipment" firestore:"equipment"`
	Availability           Availability   `json:"availability" firestore:"availability"`
	TrainingCertifications []string       `json:"trainingCertifications" firestore:"trainingCertifications"`
	Experience             Experience     `json:"experience" firestore:"experience"`
	AssignedDisasters      []string       `json:"assignedDisasters" firestore:"assignedDisasters"`
	CreatedAt              time.Time      `json:"createdAt" firestore:"createdAt,serverTimestamp"`
	UpdatedAt              time.Time      `json:"updatedAt" firestore:"updatedAt,serverTimestamp"`
}

func (t *RescueTeam) Normalize() {
	if t.Equipment == nil {
		t.Equipment = []Equipment{}
	}
	if t.TrainingCertifications == nil {
		t.TrainingCertifications = []string{}
	}
	if t.AssignedDisasters == nil {
		t.AssignedDisasters = []string{}
	}
}

// IsAssigned reports whether the team is assigned to disasterID.
func (t *RescueTeam) IsAssigned(disasterID string) bool {
	for _, id := range t.AssignedDisasters {
		if id == disasterID {
			return true
		}
	}
	return false
}

// RescueTeamView adds short disaster snapshots for the assigned IDs that
// still resolve.
type RescueTeamView struct {
	*RescueTeam
	AssignedDisasterDetails []DisasterSummary `json:"assignedDisasterDetails"`
}
