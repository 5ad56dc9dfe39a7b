package models

// RegisterRequest is the body of POST /api/user/register. Address fields are
// flat and become the user's first address record.
type RegisterRequest struct {
	Name     string     `json:"name"`
	Email    string     `json:"email"`
	Password string     `json:"password"`
	Mobile   FlexString `json:"mobile,omitempty"`
	Country  string     `json:"country,omitempty"`
	State    string     `json:"state,omitempty"`
	City     string     `json:"city,omitempty"`
	Landmark string     `json:"landmark,omitempty"`
	Pincode  FlexString `json:"pincode,omitempty"`
	HouseNo  string     `json:"house_no,omitempty"`
	Address  string     `json:"address,omitempty"`
}

// LoginRequest is the body of POST /api/user/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CreateDisasterRequest is shared by the JSON report endpoint and the
// multipart admin endpoint.
type CreateDisasterRequest struct {
	Title          string                 `json:"title"`
	Description    string                 `json:"description"`
	Type           DisasterType           `json:"type"`
	Severity       Severity               `json:"severity"`
	Location       *Location              `json:"location,omitempty"`
	StartDate      *FlexTime              `json:"startDate,omitempty"`
	EndDate        *FlexTime              `json:"endDate,omitempty"`
	Status         DisasterStatus         `json:"status,omitempty"`
	AffectedAreas  JSONList[AffectedArea] `json:"affectedAreas,omitempty"`
	Casualties     FlexInt                `json:"casualties,omitempty"`
	DamageEstimate FlexFloat              `json:"damageEstimate,omitempty"`
	Media          JSONList[MediaItem]    `json:"media,omitempty"`
	CommonNeeds    JSONList[Need]         `json:"commonNeeds,omitempty"`
}

// UpdateDisasterRequest carries a partial update. Nil fields are left as is.
// The contributions list and files are not updatable here.
type UpdateDisasterRequest struct {
	Title          *string                 `json:"title,omitempty"`
	Description    *string                 `json:"description,omitempty"`
	Type           *DisasterType           `json:"type,omitempty"`
	Severity       *Severity               `json:"severity,omitempty"`
	Location       *Location               `json:"location,omitempty"`
	StartDate      *FlexTime               `json:"startDate,omitempty"`
	EndDate        *FlexTime               `json:"endDate,omitempty"`
	Status         *DisasterStatus         `json:"status,omitempty"`
	AffectedAreas  *JSONList[AffectedArea] `json:"affectedAreas,omitempty"`
	Casualties     *FlexInt                `json:"casualties,omitempty"`
	DamageEstimate *FlexFloat              `json:"damageEstimate,omitempty"`
	Media          *JSONList[MediaItem]    `json:"media,omitempty"`
	CommonNeeds    *JSONList[Need]         `json:"commonNeeds,omitempty"`
}

// CreateContributionRequest is the body of POST /api/contribution.
type CreateContributionRequest struct {
	DisasterID       string           `json:"disasterId"`
	Title            string           `json:"title"`
	Description      string           `json:"description"`
	ContributionType ContributionType `json:"contributionType"`
	Amount           FlexFloat        `json:"amount,omitempty"`
	Location         *Location        `json:"location,omitempty"`
	ContactInfo      *ContactInfo     `json:"contactInfo,omitempty"`
	IsAnonymous      FlexBool         `json:"isAnonymous,omitempty"`
}

// UpdateContributionRequest carries a partial update. Owner and target
// disaster are immutable.
type UpdateContributionRequest struct {
	Title            *string             `json:"title,omitempty"`
	Description      *string             `json:"description,omitempty"`
	ContributionType *ContributionType   `json:"contributionType,omitempty"`
	Amount           *FlexFloat          `json:"amount,omitempty"`
	Status           *ContributionStatus `json:"status,omitempty"`
	Location         *Location           `json:"location,omitempty"`
	ContactInfo      *ContactInfo        `json:"contactInfo,omitempty"`
	IsAnonymous      *FlexBool           `json:"isAnonymous,omitempty"`
}

// CreateRescueTeamRequest is the body of POST /api/rescue-team.
type CreateRescueTeamRequest struct {
	Name                   string              `json:"name"`
	NGOName                string              `json:"ngoName"`
	Specialization         Specialization      `json:"specialization"`
	MemberCount            FlexInt             `json:"memberCount"`
	ContactPerson          string              `json:"contactPerson"`
	ContactPhone           string              `json:"contactPhone"`
	ContactEmail           string              `json:"contactEmail"`
	Location               *Location           `json:"location,omitempty"`
	Equipment              JSONList[Equipment] `json:"equipment,omitempty"`
	Availability           Availability        `json:"availability,omitempty"`
	TrainingCertifications JSONList[string]    `json:"trainingCertifications,omitempty"`
	Experience             Experience          `json:"experience,omitempty"`
}

// UpdateRescueTeamRequest carries a partial update. Assignments change only
// through assign and unassign.
type UpdateRescueTeamRequest struct {
	Name                   *string              `json:"name,omitempty"`
	NGOName                *string              `json:"ngoName,omitempty"`
	Specialization         *Specialization      `json:"specialization,omitempty"`
	MemberCount            *FlexInt             `json:"memberCount,omitempty"`
	ContactPerson          *string              `json:"contactPerson,omitempty"`
	ContactPhone           *string              `json:"contactPhone,omitempty"`
	ContactEmail           *string              `json:"contactEmail,omitempty"`
	Location               *Location            `json:"location,omitempty"`
	Equipment              *JSONList[Equipment] `json:"equipment,omitempty"`
	Availability           *Availability        `json:"availability,omitempty"`
	TrainingCertifications *JSONList[string]    `json:"trainingCertifications,omitempty"`
	Experience             *Experience          `json:"experience,omitempty"`
}

// AssignmentRequest is the body of the assign and unassign endpoints.
type AssignmentRequest struct {
	TeamID     string `json:"teamId"`
	DisasterID string `json:"disasterId"`
}
