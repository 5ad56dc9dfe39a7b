package firebase

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"

	"reliefnet-backend-go/internal/config"
)

// Clients groups the Google Cloud clients the server needs.
type Clients struct {
	App       *firebase.App
	Firestore *firestore.Client
}

// ClientOptions picks credentials: a key file, then base64 service account
// JSON, then Application Default Credentials.
func ClientOptions(cfg *config.Config) ([]option.ClientOption, error) {
	switch {
	case cfg.GoogleApplicationCredentials != "":
		return []option.ClientOption{option.WithCredentialsFile(cfg.GoogleApplicationCredentials)}, nil
	case cfg.FirebaseServiceAccountJSONBase64 != "":
		jsonKey, err := base64.StdEncoding.DecodeString(cfg.FirebaseServiceAccountJSONBase64)
		if err != nil {
			return nil, errors.New("FIREBASE_SERVICE_ACCOUNT_JSON_BASE64 is not a valid base64 string")
		}
		return []option.ClientOption{option.WithCredentialsJSON(jsonKey)}, nil
	}
	return nil, nil
}

// NewClients initializes the Firebase app and its Firestore client.
func NewClients(ctx context.Context, cfg *config.Config) (*Clients, error) {
	opts, err := ClientOptions(cfg)
	if err != nil {
		return nil, err
	}

	conf := &firebase.Config{ProjectID: cfg.FirebaseProjectID}
	if cfg.GCSBucket != "" {
		conf.StorageBucket = cfg.GCSBucket
	}
	app, err := firebase.NewApp(ctx, conf, opts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing Firebase app: %w", err)
	}

	fs, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("error initializing Firestore client: %w", err)
	}
	return &Clients{App: app, Firestore: fs}, nil
}

// Close releases the Firestore client.
func (c *Clients) Close() error {
	if c == nil || c.Firestore == nil {
		return nil
	}
	return c.Firestore.Close()
}
