package db

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"cloud.google.com/go/firestore"

	"reliefnet-backend-go/internal/models"
)

// firestoreUserRepository implements the UserRepository interface using Firestore.
type firestoreUserRepository struct {
	client *firestore.Client
}

// NewFirestoreUserRepository creates a new instance of firestoreUserRepository.
func NewFirestoreUserRepository(client *firestore.Client) UserRepository {
	return &firestoreUserRepository{client: client}
}

// emailKey derives the userEmails document ID. Emails may contain characters
// that are not legal in document IDs, so the key is a digest.
func emailKey(email string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(email))))
	return hex.EncodeToString(sum[:])
}

// Create reserves the email in userEmails and writes the user in the same
// transaction, so two registrations racing on one address cannot both win.
func (r *firestoreUserRepository) Create(ctx context.Context, user *models.User) (string, error) {
	docRef := r.client.Collection(usersCollection).NewDoc()
	emailRef := r.client.Collection(userEmailsCollection).Doc(emailKey(user.Email))

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(emailRef); err == nil {
			return fmt.Errorf("email '%s': %w", user.Email, ErrAlreadyExists)
		} else if !isNotFound(err) {
			return err
		}
		if err := tx.Create(emailRef, map[string]interface{}{"userId": docRef.ID}); err != nil {
			return err
		}
		return tx.Create(docRef, user)
	})
	if err != nil {
		return "", fmt.Errorf("failed to create user: %w", err)
	}
	user.ID = docRef.ID
	return docRef.ID, nil
}

// GetByID retrieves a user document by its ID.
func (r *firestoreUserRepository) GetByID(ctx context.Context, userID string) (*models.User, error) {
	if !validDocID(userID) {
		return nil, fmt.Errorf("user with ID '%s' not found: %w", userID, ErrNotFound)
	}
	docSnap, err := r.client.Collection(usersCollection).Doc(userID).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("user with ID '%s' not found: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user with ID '%s': %w", userID, err)
	}
	var user models.User
	if err := docSnap.DataTo(&user); err != nil {
		return nil, fmt.Errorf("failed to decode user data for ID '%s': %w", userID, err)
	}
	user.ID = docSnap.Ref.ID
	return &user, nil
}

// GetByEmail looks a user up by lower-cased email.
func (r *firestoreUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	q := r.client.Collection(usersCollection).Where("email", "==", strings.ToLower(strings.TrimSpace(email))).Limit(1)
	users, err := decodeAll(q.Documents(ctx), setUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to query user by email: %w", err)
	}
	if len(users) == 0 {
		return nil, fmt.Errorf("user with email '%s' not found: %w", email, ErrNotFound)
	}
	return users[0], nil
}

func (r *firestoreUserRepository) GetMany(ctx context.Context, userIDs []string) (map[string]*models.User, error) {
	return getMany(ctx, r.client, usersCollection, userIDs, setUserID)
}
