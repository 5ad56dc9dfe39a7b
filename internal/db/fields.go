package db

import (
	"crypto/rand"
	"math/big"

	"reliefnet-backend-go/internal/models"
)

const idAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// newID produces a 20 character ID in the same shape Firestore generates.
func newID() string {
	b := make([]byte, 20)
	max := big.NewInt(int64(len(idAlphabet)))
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic(err)
		}
		b[i] = idAlphabet[n.Int64()]
	}
	return string(b)
}

func validDocID(id string) bool {
	return models.ValidID(id)
}

// Field lookups used to evaluate query.Filter in process. Names are the
// stored field names.

func disasterFields(d *models.Disaster) func(string) string {
	return func(field string) string {
		switch field {
		case "type":
			return string(d.Type)
		case "severity":
			return string(d.Severity)
		case "status":
			return string(d.Status)
		case "title":
			return d.Title
		case "createdBy":
			return d.CreatedBy
		}
		return ""
	}
}

func contributionFields(c *models.Contribution) func(string) string {
	return func(field string) string {
		switch field {
		case "disasterId":
			return c.DisasterID
		case "userId":
			return c.UserID
		case "status":
			return string(c.Status)
		case "contributionType":
			return string(c.ContributionType)
		case "title":
			return c.Title
		}
		return ""
	}
}

func rescueTeamFields(t *models.RescueTeam) func(string) string {
	return func(field string) string {
		switch field {
		case "specialization":
			return string(t.Specialization)
		case "availability":
			return string(t.Availability)
		case "ngoName":
			return t.NGOName
		case "name":
			return t.Name
		case "experience":
			return string(t.Experience)
		}
		return ""
	}
}

func setDisasterID(d *models.Disaster, id string)         { d.ID = id }
func setContributionID(c *models.Contribution, id string) { c.ID = id }
func setRescueTeamID(t *models.RescueTeam, id string)     { t.ID = id }
func setUserID(u *models.User, id string)                 { u.ID = id }
