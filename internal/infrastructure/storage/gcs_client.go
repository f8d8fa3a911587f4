package storage

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

const publicBaseURL = "https://storage.googleapis.com/"

// CloudStorageClient resolves avatar references stored on buyer profiles.
// Profiles may hold a full URL, a gs:// URI, or an object path in the
// default bucket. Objects under private/ get short-lived signed URLs.
type CloudStorageClient struct {
	client     *storage.Client
	bucketName string
	signedTTL  time.Duration
}

func NewCloudStorageClient(ctx context.Context, bucketName string, opts ...option.ClientOption) (*CloudStorageClient, error) {
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %v", err)
	}

	return &CloudStorageClient{
		client:     client,
		bucketName: bucketName,
		signedTTL:  15 * time.Minute,
	}, nil
}

func (c *CloudStorageClient) AvatarURL(ctx context.Context, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", nil
	}
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref, nil
	}

	bucket, object, err := c.splitRef(ref)
	if err != nil {
		return "", err
	}

	if !strings.HasPrefix(object, "private/") {
		return publicBaseURL + bucket + "/" + object, nil
	}

	if c.client == nil {
		return "", fmt.Errorf("cannot sign %s: storage client not configured", ref)
	}
	url, err := c.client.Bucket(bucket).SignedURL(object, &storage.SignedURLOptions{
		Method:  http.MethodGet,
		Expires: time.Now().Add(c.signedTTL),
	})
	if err != nil {
		return "", fmt.Errorf("failed to sign avatar URL: %v", err)
	}
	return url, nil
}

func (c *CloudStorageClient) splitRef(ref string) (string, string, error) {
	if strings.HasPrefix(ref, "gs://") {
		parts := strings.SplitN(strings.TrimPrefix(ref, "gs://"), "/", 2)
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return "", "", fmt.Errorf("invalid storage URI %q", ref)
		}
		return parts[0], parts[1], nil
	}
	if c.bucketName == "" {
		return "", "", fmt.Errorf("no bucket configured for avatar %q", ref)
	}
	return c.bucketName, strings.TrimPrefix(ref, "/"), nil
}

func (c *CloudStorageClient) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}
