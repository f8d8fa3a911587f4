package firebase

import (
	"context"
	"fmt"
	"os"

	"cloud.google.com/go/firestore"
	fbapp "firebase.google.com/go/v4"
	"google.golang.org/api/option"

	"traveleon/pkg/config"
	"traveleon/pkg/logger"
)

// Clients bundles the Google clients shared by the server and the CLI.
type Clients struct {
	Credentials option.ClientOption
	App         *fbapp.App
	Firestore   *firestore.Client
	Auth        *FirebaseAuthClient
}

// CredentialsOption prefers inline service account JSON and falls back to a
// key file. With neither set, Application Default Credentials are used.
func CredentialsOption(cfg *config.Config) (option.ClientOption, error) {
	if cfg.ServiceAccountJSON != "" {
		logger.Info("Using Firebase service account from environment variable")
		return option.WithCredentialsJSON([]byte(cfg.ServiceAccountJSON)), nil
	}

	if cfg.ServiceAccountPath != "" {
		if _, err := os.Stat(cfg.ServiceAccountPath); err != nil {
			return nil, fmt.Errorf("service account file %s: %w", cfg.ServiceAccountPath, err)
		}
		logger.Info("Using Firebase service account from file: %s", cfg.ServiceAccountPath)
		return option.WithCredentialsFile(cfg.ServiceAccountPath), nil
	}

	return nil, nil
}

func NewClients(ctx context.Context, cfg *config.Config) (*Clients, error) {
	cred, err := CredentialsOption(cfg)
	if err != nil {
		return nil, err
	}
	var opts []option.ClientOption
	if cred != nil {
		opts = append(opts, cred)
	}

	app, err := fbapp.NewApp(ctx, &fbapp.Config{ProjectID: cfg.FirebaseProject}, opts...)
	if err != nil {
		return nil, fmt.Errorf("initialize firebase: %w", err)
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("initialize firebase auth: %w", err)
	}

	firestoreClient, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("create firestore client: %w", err)
	}

	return &Clients{
		Credentials: cred,
		App:         app,
		Firestore:   firestoreClient,
		Auth:        NewFirebaseAuthClient(authClient),
	}, nil
}

// ClientOptions returns the credential options for other Google clients.
func (c *Clients) ClientOptions() []option.ClientOption {
	if c.Credentials == nil {
		return nil
	}
	return []option.ClientOption{c.Credentials}
}

func (c *Clients) Close() error {
	return c.Firestore.Close()
}
