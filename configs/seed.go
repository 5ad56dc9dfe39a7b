// Package configs loads the YAML seed data shipped with the service.
package configs

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"reliefnet-backend-go/internal/models"
)

// DefaultSeedPath is used when neither -file nor PATH_SEED is set.
const DefaultSeedPath = "configs/rescue_teams.yaml"

type Seed struct {
	RescueTeams []SeedTeam `yaml:"rescue_teams"`
}

type SeedEquipment struct {
	Name        string `yaml:"name"`
	Quantity    int    `yaml:"quantity"`
	Description string `yaml:"description"`
}

// SeedTeam is one rescue team as written in the seed file.
type SeedTeam struct {
	Name           string          `yaml:"name"`
	NGOName        string          `yaml:"ngo_name"`
	Specialization string          `yaml:"specialization"`
	MemberCount    int             `yaml:"member_count"`
	ContactPerson  string          `yaml:"contact_person"`
	ContactPhone   string          `yaml:"contact_phone"`
	ContactEmail   string          `yaml:"contact_email"`
	City           string          `yaml:"city"`
	State          string          `yaml:"state"`
	Country        string          `yaml:"country"`
	Coordinates    []float64       `yaml:"coordinates"`
	Equipment      []SeedEquipment `yaml:"equipment"`
	Availability   string          `yaml:"availability"`
	Experience     string          `yaml:"experience"`
	Certifications []string        `yaml:"certifications"`
}

// SeedPath resolves the seed file: the flag value, then PATH_SEED, then
// DefaultSeedPath.
func SeedPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if p := os.Getenv("PATH_SEED"); p != "" {
		return p
	}
	return DefaultSeedPath
}

func LoadSeed(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file %s: %w", path, err)
	}
	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	return &seed, nil
}

// Request converts the entry into the payload the rescue team service
// validates, so seeded teams obey the same rules as API-created ones.
func (t SeedTeam) Request() models.CreateRescueTeamRequest {
	req := models.CreateRescueTeamRequest{
		Name:                   t.Name,
		NGOName:                t.NGOName,
		Specialization:         models.Specialization(t.Specialization),
		MemberCount:            models.FlexInt(t.MemberCount),
		ContactPerson:          t.ContactPerson,
		ContactPhone:           t.ContactPhone,
		ContactEmail:           t.ContactEmail,
		Availability:           models.Availability(t.Availability),
		Experience:             models.Experience(t.Experience),
		TrainingCertifications: t.Certifications,
	}
	if t.City != "" || t.State != "" || t.Country != "" || len(t.Coordinates) > 0 {
		req.Location = &models.Location{
			Type:        "Point",
			Coordinates: t.Coordinates,
			City:        t.City,
			State:       t.State,
			Country:     t.Country,
		}
	}
	for _, e := range t.Equipment {
		req.Equipment = append(req.Equipment, models.Equipment{Name: e.Name, Quantity: e.Quantity, Description: e.Description})
	}
	return req
}
