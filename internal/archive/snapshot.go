// Package archive retains conversation snapshots in Cloud Storage so a
// recorded transaction can always be traced back to the exchange that
// produced it.
package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"

	"github.com/ntarasov/finchat/internal/domain"
)

const uploadTimeout = 2 * time.Minute

// Snapshot is the archived record of one confirmed exchange.
type Snapshot struct {
	UserID         string              `json:"user_id"`
	Turns          domain.Transcript   `json:"turns"`
	AssistantReply string              `json:"assistant_reply"`
	Transaction    *domain.Transaction `json:"transaction"`
	CreatedAt      time.Time           `json:"created_at"`
}

// Archiver stores snapshots and returns a URI where each one landed.
// The interface enables mocking in handler tests.
type Archiver interface {
	UploadSnapshot(ctx context.Context, snap *Snapshot) (string, error)
}

// GCSArchiver writes snapshots as JSON objects into a bucket. It
// assumes Application Default Credentials are configured.
type GCSArchiver struct {
	bucket string
}

// NewGCSArchiver creates an archiver for the given bucket.
func NewGCSArchiver(bucket string) *GCSArchiver {
	return &GCSArchiver{bucket: bucket}
}

// UploadSnapshot marshals the snapshot and uploads it, returning the
// gs:// URI of the stored object.
func (a *GCSArchiver) UploadSnapshot(ctx context.Context, snap *Snapshot) (string, error) {
	if snap.CreatedAt.IsZero() {
		snap.CreatedAt = time.Now().UTC()
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("UploadSnapshot: marshaling snapshot: %w", err)
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return "", fmt.Errorf("UploadSnapshot: create storage client: %w", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	objectName := snapshotObjectName(snap.UserID, snap.CreatedAt)
	w := client.Bucket(a.bucket).Object(objectName).NewWriter(ctx)
	w.ContentType = "application/json"

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("UploadSnapshot: writing object: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("UploadSnapshot: finalize upload: %w", err)
	}

	return fmt.Sprintf("gs://%s/%s", a.bucket, objectName), nil
}

// FetchSnapshot downloads and decodes a snapshot from its gs:// URI.
func FetchSnapshot(ctx context.Context, gcsURI string) (*Snapshot, error) {
	bucket, object, err := splitGCSURI(gcsURI)
	if err != nil {
		return nil, fmt.Errorf("FetchSnapshot: %w", err)
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("FetchSnapshot: create storage client: %w", err)
	}
	defer client.Close()

	rc, err := client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("FetchSnapshot: reading object %s/%s: %w", bucket, object, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("FetchSnapshot: reading bytes: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("FetchSnapshot: decoding snapshot: %w", err)
	}

	return &snap, nil
}

// snapshotObjectName keys objects by user and day so a bucket lifecycle
// rule can expire them per prefix.
func snapshotObjectName(userID string, at time.Time) string {
	if userID == "" {
		userID = "anonymous"
	}
	return fmt.Sprintf("conversations/%s/%s/%s.json", userID, at.Format("2006-01-02"), uuid.New().String())
}

func splitGCSURI(uri string) (bucket, object string, err error) {
	if !strings.HasPrefix(uri, "gs://") {
		return "", "", fmt.Errorf("invalid GCS URI: %s", uri)
	}
	trimmed := strings.TrimPrefix(uri, "gs://")
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid GCS URI (no object path): %s", uri)
	}
	return parts[0], parts[1], nil
}
