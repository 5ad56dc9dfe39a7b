package db

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"

	"reliefnet-backend-go/internal/models"
	"reliefnet-backend-go/internal/query"
)

// firestoreContributionRepository implements ContributionRepository using Firestore.
type firestoreContributionRepository struct {
	client *firestore.Client
}

// NewFirestoreContributionRepository creates a new instance of firestoreContributionRepository.
func NewFirestoreContributionRepository(client *firestore.Client) ContributionRepository {
	return &firestoreContributionRepository{client: client}
}

func (r *firestoreContributionRepository) doc(id string) *firestore.DocumentRef {
	return r.client.Collection(contributionsCollection).Doc(id)
}

// CreateLinked creates the contribution and adds its ID to the disaster's
// contributions array in a single transaction. Either both writes land or
// neither does. Firestore transactions require every read before any write,
// so the disaster is read first.
func (r *firestoreContributionRepository) CreateLinked(ctx context.Context, c *models.Contribution) (string, error) {
	if !validDocID(c.DisasterID) {
		return "", fmt.Errorf("disaster with ID '%s' not found: %w", c.DisasterID, ErrNotFound)
	}
	contribRef := r.client.Collection(contributionsCollection).NewDoc()
	disasterRef := r.client.Collection(disastersCollection).Doc(c.DisasterID)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(disasterRef); err != nil {
			if isNotFound(err) {
				return fmt.Errorf("disaster with ID '%s' not found: %w", c.DisasterID, ErrNotFound)
			}
			return err
		}
		if err := tx.Create(contribRef, c); err != nil {
			return err
		}
		return tx.Update(disasterRef, []firestore.Update{
			{Path: "contributions", Value: firestore.ArrayUnion(contribRef.ID)},
			{Path: "updatedAt", Value: firestore.ServerTimestamp},
		})
	})
	if err != nil {
		return "", fmt.Errorf("failed to create linked contribution: %w", err)
	}
	c.ID = contribRef.ID
	return contribRef.ID, nil
}

// GetByID retrieves a contribution document. Malformed IDs report ErrNotFound.
func (r *firestoreContributionRepository) GetByID(ctx context.Context, contributionID string) (*models.Contribution, error) {
	if !validDocID(contributionID) {
		return nil, fmt.Errorf("contribution with ID '%s' not found: %w", contributionID, ErrNotFound)
	}
	docSnap, err := r.doc(contributionID).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("contribution with ID '%s' not found: %w", contributionID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get contribution with ID '%s': %w", contributionID, err)
	}
	var c models.Contribution
	if err := docSnap.DataTo(&c); err != nil {
		return nil, fmt.Errorf("failed to decode contribution data for ID '%s': %w", contributionID, err)
	}
	c.ID = docSnap.Ref.ID
	return &c, nil
}

func (r *firestoreContributionRepository) List(ctx context.Context, filter query.Filter, page query.Page) ([]*models.Contribution, int, error) {
	items, total, err := listPage(ctx, r.client.Collection(contributionsCollection).Query, filter, page, "createdAt", setContributionID, contributionFields)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list contributions: %w", err)
	}
	return items, total, nil
}

func (r *firestoreContributionRepository) All(ctx context.Context) ([]*models.Contribution, error) {
	items, err := decodeAll(r.client.Collection(contributionsCollection).Documents(ctx), setContributionID)
	if err != nil {
		return nil, fmt.Errorf("failed to read contributions: %w", err)
	}
	return items, nil
}

// Update writes the editable fields. Owner and disaster are never rewritten.
func (r *firestoreContributionRepository) Update(ctx context.Context, c *models.Contribution) error {
	if !validDocID(c.ID) {
		return fmt.Errorf("contribution with ID '%s' not found: %w", c.ID, ErrNotFound)
	}
	updates := []firestore.Update{
		{Path: "title", Value: c.Title},
		{Path: "description", Value: c.Description},
		{Path: "contributionType", Value: c.ContributionType},
		{Path: "amount", Value: c.Amount},
		{Path: "status", Value: c.Status},
		{Path: "location", Value: c.Location},
		{Path: "contactInfo", Value: c.ContactInfo},
		{Path: "isAnonymous", Value: c.IsAnonymous},
		{Path: "updatedAt", Value: firestore.ServerTimestamp},
	}
	if _, err := r.doc(c.ID).Update(ctx, updates); err != nil {
		if isNotFound(err) {
			return fmt.Errorf("contribution with ID '%s' not found: %w", c.ID, ErrNotFound)
		}
		return fmt.Errorf("failed to update contribution with ID '%s': %w", c.ID, err)
	}
	return nil
}

// DeleteLinked deletes the contribution and pulls its ID from the disaster
// when the disaster still exists.
func (r *firestoreContributionRepository) DeleteLinked(ctx context.Context, contributionID string) error {
	if !validDocID(contributionID) {
		return fmt.Errorf("contribution with ID '%s' not found: %w", contributionID, ErrNotFound)
	}
	contribRef := r.doc(contributionID)
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(contribRef)
		if err != nil {
			if isNotFound(err) {
				return fmt.Errorf("contribution with ID '%s' not found: %w", contributionID, ErrNotFound)
			}
			return err
		}
		var c models.Contribution
		if err := snap.DataTo(&c); err != nil {
			return err
		}
		var disasterRef *firestore.DocumentRef
		if validDocID(c.DisasterID) {
			ref := r.client.Collection(disastersCollection).Doc(c.DisasterID)
			if _, err := tx.Get(ref); err == nil {
				disasterRef = ref
			} else if !isNotFound(err) {
				return err
			}
		}
		if err := tx.Delete(contribRef); err != nil {
			return err
		}
		if disasterRef == nil {
			return nil
		}
		return tx.Update(disasterRef, []firestore.Update{
			{Path: "contributions", Value: firestore.ArrayRemove(contributionID)},
			{Path: "updatedAt", Value: firestore.ServerTimestamp},
		})
	})
	if err != nil {
		return fmt.Errorf("failed to delete contribution: %w", err)
	}
	return nil
}

// DeleteByDisaster deletes every contribution pointing at disasterID with a
// BulkWriter.
func (r *firestoreContributionRepository) DeleteByDisaster(ctx context.Context, disasterID string) (int, error) {
	docs, err := r.client.Collection(contributionsCollection).Where("disasterId", "==", disasterID).Documents(ctx).GetAll()
	if err != nil {
		return 0, fmt.Errorf("failed to query contributions of disaster '%s': %w", disasterID, err)
	}
	if len(docs) == 0 {
		return 0, nil
	}
	bw := r.client.BulkWriter(ctx)
	jobs := make([]*firestore.BulkWriterJob, 0, len(docs))
	for _, doc := range docs {
		job, err := bw.Delete(doc.Ref)
		if err != nil {
			bw.End()
			return 0, fmt.Errorf("failed to enqueue delete of contribution '%s': %w", doc.Ref.ID, err)
		}
		jobs = append(jobs, job)
	}
	bw.End()
	deleted := 0
	for _, job := range jobs {
		if _, err := job.Results(); err != nil {
			return deleted, fmt.Errorf("failed to delete contribution: %w", err)
		}
		deleted++
	}
	return deleted, nil
}
