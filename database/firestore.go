package database

import (
	"context"
	"errors"

	"cloud.google.com/go/firestore"
	"github.com/sirupsen/logrus"
)

// ConnectFirestore uses Application Default Credentials.
func ConnectFirestore(ctx context.Context, projectID string, log logrus.FieldLogger) (*firestore.Client, error) {
	if projectID == "" {
		return nil, errors.New("FIRESTORE_PROJECT_ID is required for the firestore driver")
	}
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, err
	}
	log.WithField("project", projectID).Info("connected to Firestore")
	return client, nil
}
