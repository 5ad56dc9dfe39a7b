package db

import (
	"context"
	"fmt"
	"sort"

	"cloud.google.com/go/firestore"

	"reliefnet-backend-go/internal/models"
	"reliefnet-backend-go/internal/query"
)

// firestoreRescueTeamRepository implements RescueTeamRepository using Firestore.
type firestoreRescueTeamRepository struct {
	client *firestore.Client
}

// NewFirestoreRescueTeamRepository creates a new instance of firestoreRescueTeamRepository.
func NewFirestoreRescueTeamRepository(client *firestore.Client) RescueTeamRepository {
	return &firestoreRescueTeamRepository{client: client}
}

func (r *firestoreRescueTeamRepository) doc(id string) *firestore.DocumentRef {
	return r.client.Collection(rescueTeamsCollection).Doc(id)
}

func (r *firestoreRescueTeamRepository) Create(ctx context.Context, team *models.RescueTeam) (string, error) {
	docRef := r.client.Collection(rescueTeamsCollection).NewDoc()
	team.Normalize()
	if _, err := docRef.Create(ctx, team); err != nil {
		return "", fmt.Errorf("failed to create rescue team: %w", err)
	}
	team.ID = docRef.ID
	return docRef.ID, nil
}

func (r *firestoreRescueTeamRepository) GetByID(ctx context.Context, teamID string) (*models.RescueTeam, error) {
	if !validDocID(teamID) {
		return nil, fmt.Errorf("rescue team with ID '%s' not found: %w", teamID, ErrNotFound)
	}
	docSnap, err := r.doc(teamID).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("rescue team with ID '%s' not found: %w", teamID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get rescue team with ID '%s': %w", teamID, err)
	}
	return decodeTeam(docSnap)
}

func decodeTeam(snap *firestore.DocumentSnapshot) (*models.RescueTeam, error) {
	var team models.RescueTeam
	if err := snap.DataTo(&team); err != nil {
		return nil, fmt.Errorf("failed to decode rescue team data for ID '%s': %w", snap.Ref.ID, err)
	}
	team.ID = snap.Ref.ID
	team.Normalize()
	return &team, nil
}

func (r *firestoreRescueTeamRepository) List(ctx context.Context, filter query.Filter, page query.Page) ([]*models.RescueTeam, int, error) {
	items, total, err := listPage(ctx, r.client.Collection(rescueTeamsCollection).Query, filter, page, "createdAt", setRescueTeamID, rescueTeamFields)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list rescue teams: %w", err)
	}
	for _, t := range items {
		t.Normalize()
	}
	return items, total, nil
}

// ListAvailable sorts in process because experience is ranked, not lexical.
func (r *firestoreRescueTeamRepository) ListAvailable(ctx context.Context, specialization string) ([]*models.RescueTeam, error) {
	q := r.client.Collection(rescueTeamsCollection).Where("availability", "==", string(models.Available))
	if specialization != "" {
		q = q.Where("specialization", "==", specialization)
	}
	teams, err := decodeAll(q.Documents(ctx), setRescueTeamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list available rescue teams: %w", err)
	}
	SortByReadiness(teams)
	return teams, nil
}

// SortByReadiness orders teams by experience tier, then member count, both
// descending.
func SortByReadiness(teams []*models.RescueTeam) {
	sort.SliceStable(teams, func(i, j int) bool {
		ri, rj := teams[i].Experience.Rank(), teams[j].Experience.Rank()
		if ri != rj {
			return ri > rj
		}
		return teams[i].MemberCount > teams[j].MemberCount
	})
	for _, t := range teams {
		t.Normalize()
	}
}

func (r *firestoreRescueTeamRepository) All(ctx context.Context) ([]*models.RescueTeam, error) {
	teams, err := decodeAll(r.client.Collection(rescueTeamsCollection).Documents(ctx), setRescueTeamID)
	if err != nil {
		return nil, fmt.Errorf("failed to read rescue teams: %w", err)
	}
	return teams, nil
}

func (r *firestoreRescueTeamRepository) Count(ctx context.Context) (int, error) {
	return countQuery(ctx, r.client.Collection(rescueTeamsCollection).Query)
}

// Update writes every field except assignedDisasters.
func (r *firestoreRescueTeamRepository) Update(ctx context.Context, t *models.RescueTeam) error {
	if !validDocID(t.ID) {
		return fmt.Errorf("rescue team with ID '%s' not found: %w", t.ID, ErrNotFound)
	}
	t.Normalize()
	updates := []firestore.Update{
		{Path: "name", Value: t.Name},
		{Path: "ngoName", Value: t.NGOName},
		{Path: "specialization", Value: t.Specialization},
		{Path: "memberCount", Value: t.MemberCount},
		{Path: "contactPerson", Value: t.ContactPerson},
		{Path: "contactPhone", Value: t.ContactPhone},
		{Path: "contactEmail", Value: t.ContactEmail},
		{Path: "location", Value: t.Location},
		{Path: "equipment", Value: t.Equipment},
		{Path: "availability", Value: t.Availability},
		{Path: "trainingCertifications", Value: t.TrainingCertifications},
		{Path: "experience", Value: t.Experience},
		{Path: "updatedAt", Value: firestore.ServerTimestamp},
	}
	if _, err := r.doc(t.ID).Update(ctx, updates); err != nil {
		if isNotFound(err) {
			return fmt.Errorf("rescue team with ID '%s' not found: %w", t.ID, ErrNotFound)
		}
		return fmt.Errorf("failed to update rescue team with ID '%s': %w", t.ID, err)
	}
	return nil
}

func (r *firestoreRescueTeamRepository) Delete(ctx context.Context, teamID string) error {
	if !validDocID(teamID) {
		return fmt.Errorf("rescue team with ID '%s' not found: %w", teamID, ErrNotFound)
	}
	if _, err := r.doc(teamID).Delete(ctx, firestore.Exists); err != nil {
		if isNotFound(err) {
			return fmt.Errorf("rescue team with ID '%s' not found for deletion: %w", teamID, ErrNotFound)
		}
		return fmt.Errorf("failed to delete rescue team with ID '%s': %w", teamID, err)
	}
	return nil
}

// Assign checks membership and appends inside one transaction, so of two
// concurrent assigns of the same pair exactly one succeeds.
func (r *firestoreRescueTeamRepository) Assign(ctx context.Context, teamID, disasterID string) (*models.RescueTeam, error) {
	if !validDocID(teamID) {
		return nil, fmt.Errorf("rescue team with ID '%s' not found: %w", teamID, ErrNotFound)
	}
	ref := r.doc(teamID)
	var team *models.RescueTeam
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			if isNotFound(err) {
				return fmt.Errorf("rescue team with ID '%s' not found: %w", teamID, ErrNotFound)
			}
			return err
		}
		t, err := decodeTeam(snap)
		if err != nil {
			return err
		}
		if t.IsAssigned(disasterID) {
			return fmt.Errorf("disaster '%s' on rescue team '%s': %w", disasterID, teamID, ErrAlreadyExists)
		}
		t.AssignedDisasters = append(t.AssignedDisasters, disasterID)
		team = t
		return tx.Update(ref, []firestore.Update{
			{Path: "assignedDisasters", Value: firestore.ArrayUnion(disasterID)},
			{Path: "updatedAt", Value: firestore.ServerTimestamp},
		})
	})
	if err != nil {
		return nil, err
	}
	return team, nil
}

func (r *firestoreRescueTeamRepository) Unassign(ctx context.Context, teamID, disasterID string) (*models.RescueTeam, bool, error) {
	if !validDocID(teamID) {
		return nil, false, fmt.Errorf("rescue team with ID '%s' not found: %w", teamID, ErrNotFound)
	}
	ref := r.doc(teamID)
	var (
		team    *models.RescueTeam
		removed bool
	)
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			if isNotFound(err) {
				return fmt.Errorf("rescue team with ID '%s' not found: %w", teamID, ErrNotFound)
			}
			return err
		}
		t, err := decodeTeam(snap)
		if err != nil {
			return err
		}
		team, removed = t, false
		if !t.IsAssigned(disasterID) {
			return nil
		}
		kept := make([]string, 0, len(t.AssignedDisasters))
		for _, id := range t.AssignedDisasters {
			if id != disasterID {
				kept = append(kept, id)
			}
		}
		t.AssignedDisasters = kept
		removed = true
		return tx.Update(ref, []firestore.Update{
			{Path: "assignedDisasters", Value: firestore.ArrayRemove(disasterID)},
			{Path: "updatedAt", Value: firestore.ServerTimestamp},
		})
	})
	if err != nil {
		return nil, false, err
	}
	return team, removed, nil
}

// UnassignEverywhere finds teams with array-contains and pulls disasterID
// from each with a BulkWriter.
func (r *firestoreRescueTeamRepository) UnassignEverywhere(ctx context.Context, disasterID string) (int, error) {
	docs, err := r.client.Collection(rescueTeamsCollection).Where("assignedDisasters", "array-contains", disasterID).Documents(ctx).GetAll()
	if err != nil {
		return 0, fmt.Errorf("failed to query teams assigned to disaster '%s': %w", disasterID, err)
	}
	if len(docs) == 0 {
		return 0, nil
	}
	bw := r.client.BulkWriter(ctx)
	jobs := make([]*firestore.BulkWriterJob, 0, len(docs))
	for _, doc := range docs {
		job, err := bw.Update(doc.Ref, []firestore.Update{
			{Path: "assignedDisasters", Value: firestore.ArrayRemove(disasterID)},
			{Path: "updatedAt", Value: firestore.ServerTimestamp},
		})
		if err != nil {
			bw.End()
			return 0, fmt.Errorf("failed to enqueue unassign for team '%s': %w", doc.Ref.ID, err)
		}
		jobs = append(jobs, job)
	}
	bw.End()
	updated := 0
	for _, job := range jobs {
		if _, err := job.Results(); err != nil {
			return updated, fmt.Errorf("failed to unassign team: %w", err)
		}
		updated++
	}
	return updated, nil
}
