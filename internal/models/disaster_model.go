package models

import "time"

type DisasterType string

const (
	DisasterEarthquake       DisasterType = "earthquake"
	DisasterFlood            DisasterType = "flood"
	DisasterHurricane        DisasterType = "hurricane"
	DisasterTornado          DisasterType = "tornado"
	DisasterWildfire         DisasterType = "wildfire"
	DisasterTsunami          DisasterType = "tsunami"
	DisasterVolcanicEruption DisasterType = "volcanic_eruption"
	DisasterDrought          DisasterType = "drought"
	DisasterLandslide        DisasterType = "landslide"
	DisasterOther            DisasterType = "other"
)

func (t DisasterType) Valid() bool {
	switch t {
	case DisasterEarthquake, DisasterFlood, DisasterHurricane, DisasterTornado, DisasterWildfire,
		DisasterTsunami, DisasterVolcanicEruption, DisasterDrought, DisasterLandslide, DisasterOther:
		return true
	}
	return false
}

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

type DisasterStatus string

const (
	DisasterActive     DisasterStatus = "active"
	DisasterResolved   DisasterStatus = "resolved"
	DisasterMonitoring DisasterStatus = "monitoring"
)

func (s DisasterStatus) Valid() bool {
	switch s {
	case DisasterActive, DisasterResolved, DisasterMonitoring:
		return true
	}
	return false
}

type DamageLevel string

const (
	DamageMinimal     DamageLevel = "minimal"
	DamageModerate    DamageLevel = "moderate"
	DamageSevere      DamageLevel = "severe"
	DamageDevastating DamageLevel = "devastating"
)

func (d DamageLevel) Valid() bool {
	switch d {
	case "", DamageMinimal, DamageModerate, DamageSevere, DamageDevastating:
		return true
	}
	return false
}

// Need is a tag describing what a disaster area is short of.
type Need string

const (
	NeedFood           Need = "food"
	NeedWater          Need = "water"
	NeedShelter        Need = "shelter"
	NeedMedical        Need = "medical"
	NeedClothing       Need = "clothing"
	NeedTransportation Need = "transportation"
	NeedCommunication  Need = "communication"
	NeedOther          Need = "other"
)

func (n Need) Valid() bool {
	switch n {
	case NeedFood, NeedWater, NeedShelter, NeedMedical, NeedClothing, NeedTransportation, NeedCommunication, NeedOther:
		return true
	}
	return false
}

// AffectedArea describes one region hit by a disaster.
type AffectedArea struct {
	Name        string      `json:"name" firestore:"name"`
	Coordinates []float64   `json:"coordinates,omitempty" firestore:"coordinates,omitempty"`
	Population  int         `json:"population" firestore:"population"`
	DamageLevel DamageLevel `json:"damageLevel,omitempty" firestore:"damageLevel,omitempty"`
}

// MediaItem links externally hosted media.
type MediaItem struct {
	URL         string `json:"url" firestore:"url"`
	Type        string `json:"type" firestore:"type"` // image, video or document
	Description string `json:"description,omitempty" firestore:"description,omitempty"`
}

// FileMeta records one uploaded attachment. Path is the storage path handed
// back by the file store; URL is derived on read and never persisted.
type FileMeta struct {
	ID           string    `json:"id" firestore:"id"`
	Filename     string    `json:"filename" firestore:"filename"`
	OriginalName string    `json:"originalName" firestore:"originalName"`
	Mimetype     string    `json:"mimetype" firestore:"mimetype"`
	Size         int64     `json:"size" firestore:"size"`
	Path         string    `json:"path" firestore:"path"`
	UploadedAt   time.Time `json:"uploadedAt" firestore:"uploadedAt"`
	URL          string    `json:"url,omitempty" firestore:"-"`
}

// Disaster is the central aggregate. Contributions holds the IDs of every
// contribution linked to it and is only mutated through atomic array
// operations in the repository.
type Disaster struct {
	ID             string         `json:"id" firestore:"-"`
	Title          string         `json:"title" firestore:"title"`
	Description    string         `json:"description" firestore:"description"`
	Type           DisasterType   `json:"type" firestore:"type"`
	Severity       Severity       `json:"severity" firestore:"severity"`
	Location       *Location      `json:"location,omitempty" firestore:"location,omitempty"`
	StartDate      time.Time      `json:"startDate" firestore:"startDate"`
	EndDate        *time.Time     `json:"endDate,omitempty" firestore:"endDate,omitempty"`
	Status         DisasterStatus `json:"status" firestore:"status"`
	AffectedAreas  []AffectedArea `json:"affectedAreas" firestore:"affectedAreas"`
	Casualties     int            `json:"casualties" firestore:"casualties"`
	DamageEstimate float64        `json:"damageEstimate" firestore:"damageEstimate"`
	Media          []MediaItem    `json:"media" firestore:"media"`
	Files          []FileMeta     `json:"files" firestore:"files"`
	CommonNeeds    []Need         `json:"commonNeeds" firestore:"commonNeeds"`
	CreatedBy      string         `json:"createdBy,omitempty" firestore:"createdBy,omitempty"`
	Contributions  []string       `json:"contributions" firestore:"contributions"`
	CreatedAt      time.Time      `json:"createdAt" firestore:"createdAt,serverTimestamp"`
	UpdatedAt      time.Time      `json:"updatedAt" firestore:"updatedAt,serverTimestamp"`
}

// Normalize replaces nil slices with empty ones so they encode as [].
func (d *Disaster) Normalize() {
	if d.AffectedAreas == nil {
		d.AffectedAreas = []AffectedArea{}
	}
	if d.Media == nil {
		d.Media = []MediaItem{}
	}
	if d.Files == nil {
		d.Files = []FileMeta{}
	}
	if d.CommonNeeds == nil {
		d.CommonNeeds = []Need{}
	}
	if d.Contributions == nil {
		d.Contributions = []string{}
	}
}

// HasContribution reports whether id is linked to the disaster.
func (d *Disaster) HasContribution(id string) bool {
	for _, c := range d.Contributions {
		if c == id {
			return true
		}
	}
	return false
}

// File returns the attachment with the given ID.
func (d *Disaster) File(fileID string) (FileMeta, bool) {
	for _, f := range d.Files {
		if f.ID == fileID {
			return f, true
		}
	}
	return FileMeta{}, false
}

// Summary is the short form embedded in contribution and team reads.
func (d *Disaster) Summary() *DisasterSummary {
	if d == nil {
		return nil
	}
	return &DisasterSummary{ID: d.ID, Title: d.Title, Type: d.Type, Severity: d.Severity, Location: d.Location}
}

// DisasterSummary is a denormalised snapshot of a disaster.
type DisasterSummary struct {
	ID       string       `json:"id"`
	Title    string       `json:"title"`
	Type     DisasterType `json:"type,omitempty"`
	Severity Severity     `json:"severity,omitempty"`
	Location *Location    `json:"location,omitempty"`
}
