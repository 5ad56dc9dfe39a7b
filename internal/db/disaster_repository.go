package db

import (
	"context"
	"fmt"
	"sort"

	"cloud.google.com/go/firestore"

	"reliefnet-backend-go/internal/models"
	"reliefnet-backend-go/internal/query"
)

// firestoreDisasterRepository implements the DisasterRepository interface using Firestore.
type firestoreDisasterRepository struct {
	client *firestore.Client
}

// NewFirestoreDisasterRepository creates a new instance of firestoreDisasterRepository.
func NewFirestoreDisasterRepository(client *firestore.Client) DisasterRepository {
	return &firestoreDisasterRepository{client: client}
}

func (r *firestoreDisasterRepository) doc(id string) *firestore.DocumentRef {
	return r.client.Collection(disastersCollection).Doc(id)
}

// Create adds a new disaster document with an auto-generated ID.
// CreatedAt and UpdatedAt are filled by serverTimestamp when zero.
func (r *firestoreDisasterRepository) Create(ctx context.Context, disaster *models.Disaster) (string, error) {
	docRef := r.client.Collection(disastersCollection).NewDoc()
	disaster.Normalize()
	if _, err := docRef.Create(ctx, disaster); err != nil {
		return "", fmt.Errorf("failed to create disaster: %w", err)
	}
	disaster.ID = docRef.ID
	return docRef.ID, nil
}

// GetByID retrieves a disaster document. Malformed IDs report ErrNotFound.
func (r *firestoreDisasterRepository) GetByID(ctx context.Context, disasterID string) (*models.Disaster, error) {
	if !validDocID(disasterID) {
		return nil, fmt.Errorf("disaster with ID '%s' not found: %w", disasterID, ErrNotFound)
	}
	docSnap, err := r.doc(disasterID).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("disaster with ID '%s' not found: %w", disasterID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get disaster with ID '%s': %w", disasterID, err)
	}
	var disaster models.Disaster
	if err := docSnap.DataTo(&disaster); err != nil {
		return nil, fmt.Errorf("failed to decode disaster data for ID '%s': %w", disasterID, err)
	}
	disaster.ID = docSnap.Ref.ID
	disaster.Normalize()
	return &disaster, nil
}

func (r *firestoreDisasterRepository) GetMany(ctx context.Context, disasterIDs []string) (map[string]*models.Disaster, error) {
	return getMany(ctx, r.client, disastersCollection, disasterIDs, setDisasterID)
}

// List needs a composite index of each equality field with startDate
// descending. Firestore merges them for multi-field filters; the set is in
// firestore.indexes.json at the repository root.
func (r *firestoreDisasterRepository) List(ctx context.Context, filter query.Filter, page query.Page) ([]*models.Disaster, int, error) {
	items, total, err := listPage(ctx, r.client.Collection(disastersCollection).Query, filter, page, "startDate", setDisasterID, disasterFields)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list disasters: %w", err)
	}
	for _, d := range items {
		d.Normalize()
	}
	return items, total, nil
}

func (r *firestoreDisasterRepository) All(ctx context.Context) ([]*models.Disaster, error) {
	items, err := decodeAll(r.client.Collection(disastersCollection).Documents(ctx), setDisasterID)
	if err != nil {
		return nil, fmt.Errorf("failed to read disasters: %w", err)
	}
	return items, nil
}

// DistinctTypes projects only the type field of every disaster.
func (r *firestoreDisasterRepository) DistinctTypes(ctx context.Context) ([]models.DisasterType, error) {
	iter := r.client.Collection(disastersCollection).Select("type").Documents(ctx)
	docs, err := iter.GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read disaster types: %w", err)
	}
	seen := make(map[models.DisasterType]bool)
	types := []models.DisasterType{}
	for _, doc := range docs {
		raw, err := doc.DataAt("type")
		if err != nil {
			continue
		}
		t, ok := raw.(string)
		if !ok || seen[models.DisasterType(t)] {
			continue
		}
		seen[models.DisasterType(t)] = true
		types = append(types, models.DisasterType(t))
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types, nil
}

// Update writes the editable fields only. Contributions and files are left to
// their atomic operations so a concurrent link is never overwritten.
func (r *firestoreDisasterRepository) Update(ctx context.Context, d *models.Disaster) error {
	if !validDocID(d.ID) {
		return fmt.Errorf("disaster with ID '%s' not found: %w", d.ID, ErrNotFound)
	}
	d.Normalize()
	updates := []firestore.Update{
		{Path: "title", Value: d.Title},
		{Path: "description", Value: d.Description},
		{Path: "type", Value: d.Type},
		{Path: "severity", Value: d.Severity},
		{Path: "location", Value: d.Location},
		{Path: "startDate", Value: d.StartDate},
		{Path: "endDate", Value: d.EndDate},
		{Path: "status", Value: d.Status},
		{Path: "affectedAreas", Value: d.AffectedAreas},
		{Path: "casualties", Value: d.Casualties},
		{Path: "damageEstimate", Value: d.DamageEstimate},
		{Path: "media", Value: d.Media},
		{Path: "commonNeeds", Value: d.CommonNeeds},
		{Path: "updatedAt", Value: firestore.ServerTimestamp},
	}
	if _, err := r.doc(d.ID).Update(ctx, updates); err != nil {
		if isNotFound(err) {
			return fmt.Errorf("disaster with ID '%s' not found: %w", d.ID, ErrNotFound)
		}
		return fmt.Errorf("failed to update disaster with ID '%s': %w", d.ID, err)
	}
	return nil
}

// RemoveFile reads and rewrites the files list inside a transaction.
func (r *firestoreDisasterRepository) RemoveFile(ctx context.Context, disasterID, fileID string) (models.FileMeta, error) {
	if !validDocID(disasterID) {
		return models.FileMeta{}, fmt.Errorf("disaster with ID '%s' not found: %w", disasterID, ErrNotFound)
	}
	ref := r.doc(disasterID)
	var removed models.FileMeta
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			if isNotFound(err) {
				return fmt.Errorf("disaster with ID '%s' not found: %w", disasterID, ErrNotFound)
			}
			return err
		}
		var d models.Disaster
		if err := snap.DataTo(&d); err != nil {
			return err
		}
		kept := make([]models.FileMeta, 0, len(d.Files))
		found := false
		for _, f := range d.Files {
			if f.ID == fileID {
				removed = f
				found = true
				continue
			}
			kept = append(kept, f)
		}
		if !found {
			return fmt.Errorf("file '%s' on disaster '%s': %w", fileID, disasterID, ErrNotFound)
		}
		return tx.Update(ref, []firestore.Update{
			{Path: "files", Value: kept},
			{Path: "updatedAt", Value: firestore.ServerTimestamp},
		})
	})
	if err != nil {
		return models.FileMeta{}, err
	}
	return removed, nil
}

// LinkContribution appends with ArrayUnion; repeated calls are no-ops.
func (r *firestoreDisasterRepository) LinkContribution(ctx context.Context, disasterID, contributionID string) error {
	if !validDocID(disasterID) {
		return fmt.Errorf("disaster with ID '%s' not found: %w", disasterID, ErrNotFound)
	}
	_, err := r.doc(disasterID).Update(ctx, []firestore.Update{
		{Path: "contributions", Value: firestore.ArrayUnion(contributionID)},
		{Path: "updatedAt", Value: firestore.ServerTimestamp},
	})
	if err != nil {
		if isNotFound(err) {
			return fmt.Errorf("disaster with ID '%s' not found: %w", disasterID, ErrNotFound)
		}
		return fmt.Errorf("failed to link contribution '%s' to disaster '%s': %w", contributionID, disasterID, err)
	}
	return nil
}

// Delete removes the disaster document. Dependent records are cleaned up by
// the service.
func (r *firestoreDisasterRepository) Delete(ctx context.Context, disasterID string) error {
	if !validDocID(disasterID) {
		return fmt.Errorf("disaster with ID '%s' not found: %w", disasterID, ErrNotFound)
	}
	if _, err := r.doc(disasterID).Delete(ctx, firestore.Exists); err != nil {
		if isNotFound(err) {
			return fmt.Errorf("disaster with ID '%s' not found for deletion: %w", disasterID, ErrNotFound)
		}
		return fmt.Errorf("failed to delete disaster with ID '%s': %w", disasterID, err)
	}
	return nil
}
