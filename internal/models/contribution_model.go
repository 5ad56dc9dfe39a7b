package models

import (
	"encoding/json"
	"time"
)

type ContributionType string

const (
	ContributionFinancial   ContributionType = "financial"
	ContributionMaterial    ContributionType = "material"
	ContributionVolunteer   ContributionType = "volunteer"
	ContributionInformation ContributionType = "information"
	ContributionOther       ContributionType = "other"
)

func (t ContributionType) Valid() bool {
	switch t {
	case ContributionFinancial, ContributionMaterial, ContributionVolunteer, ContributionInformation, ContributionOther:
		return true
	}
	return false
}

type ContributionStatus string

const (
	ContributionPending   ContributionStatus = "pending"
	ContributionApproved  ContributionStatus = "approved"
	ContributionRejected  ContributionStatus = "rejected"
	ContributionCompleted ContributionStatus = "completed"
)

func (s ContributionStatus) Valid() bool {
	switch s {
	case ContributionPending, ContributionApproved, ContributionRejected, ContributionCompleted:
		return true
	}
	return false
}

// ContactInfo is how the contributor can be reached.
type ContactInfo struct {
	Phone   string `json:"phone,omitempty" firestore:"phone,omitempty"`
	Email   string `json:"email,omitempty" firestore:"email,omitempty"`
	Address string `json:"address,omitempty" firestore:"address,omitempty"`
}

// UnmarshalJSON accepts an object or a JSON-encoded string holding one.
func (c *ContactInfo) UnmarshalJSON(data []byte) error {
	type plain ContactInfo
	raw, text, err := unwrapEncoded(data)
	if err != nil {
		return err
	}
	if raw == nil {
		*c = ContactInfo{Address: text}
		return nil
	}
	var p plain
	if err := json.Unmarshal(raw, &p); err != nil {
		return err
	}
	*c = ContactInfo(p)
	return nil
}

// Contribution is a relief action submitted by a user against one disaster.
// Its ID must appear exactly once in the target disaster's Contributions.
type Contribution struct {
	ID               string             `json:"id" firestore:"-"`
	UserID           string             `json:"userId" firestore:"userId"`         // owner
	DisasterID       string             `json:"disasterId" firestore:"disasterId"` // target
	Title            string             `json:"title" firestore:"title"`
	Description      string             `json:"description" firestore:"description"`
	ContributionType ContributionType   `json:"contributionType" firestore:"contributionType"`
	Amount           float64            `json:"amount" firestore:"amount"`
	Status           ContributionStatus `json:"status" firestore:"status"`
	Location         *Location          `json:"location,omitempty" firestore:"location,omitempty"`
	ContactInfo      *ContactInfo       `json:"contactInfo,omitempty" firestore:"contactInfo,omitempty"`
	IsAnonymous      bool               `json:"isAnonymous" firestore:"isAnonymous"`
	CreatedAt        time.Time          `json:"createdAt" firestore:"createdAt,serverTimestamp"`
	UpdatedAt        time.Time          `json:"updatedAt" firestore:"updatedAt,serverTimestamp"`
}

// ContributionView is a contribution with owner and disaster snapshots.
// User is left empty for anonymous contributions.
type ContributionView struct {
	*Contribution
	User     *UserSummary     `json:"user,omitempty"`
	Disaster *DisasterSummary `json:"disaster,omitempty"`
}
