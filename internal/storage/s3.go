package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/mfenderov/llmsref/pkg/models"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Config holds S3/MinIO client configuration.
type Config struct {
	Endpoint        string // "localhost:9000" for MinIO
	Bucket          string // "llmsref"
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
}

// Client mirrors generated artifacts to an S3 bucket.
type Client struct {
	minioClient *minio.Client
	bucket      string
}

// New creates a new S3/MinIO client.
func New(config Config) (*Client, error) {
	if config.Endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}
	if config.Bucket == "" {
		return nil, fmt.Errorf("bucket is required")
	}

	minioClient, err := minio.New(config.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(config.AccessKeyID, config.SecretAccessKey, ""),
		Secure: config.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return &Client{
		minioClient: minioClient,
		bucket:      config.Bucket,
	}, nil
}

// EnsureBucket creates the bucket if it doesn't exist.
func (c *Client) EnsureBucket(ctx context.Context) error {
	exists, err := c.minioClient.BucketExists(ctx, c.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}
	if exists {
		return nil
	}

	err = c.minioClient.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{})
	if err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// Manifest describes a mirrored artifact. It is stored next to the
// artifact so consumers can read the entries without parsing the text.
type Manifest struct {
	Source    string         `json:"source"`
	Generated time.Time      `json:"generated"`
	Artifact  string         `json:"artifact"`
	Entries   []models.Entry `json:"entries"`
}

// ManifestKey returns the object name of the manifest for an artifact key:
// "llms.txt" becomes "llms.json".
func ManifestKey(key string) string {
	return strings.TrimSuffix(key, path.Ext(key)) + ".json"
}

// PutArtifact uploads the rendered artifact.
func (c *Client) PutArtifact(ctx context.Context, key, content string) error {
	reader := strings.NewReader(content)

	_, err := c.minioClient.PutObject(ctx, c.bucket, key, reader, int64(len(content)), minio.PutObjectOptions{
		ContentType: "text/plain; charset=utf-8",
	})
	if err != nil {
		return fmt.Errorf("failed to put artifact: %w", err)
	}
	return nil
}

// PutManifest writes the manifest JSON next to the artifact.
func (c *Client) PutManifest(ctx context.Context, manifest Manifest) error {
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	reader := bytes.NewReader(data)
	_, err = c.minioClient.PutObject(ctx, c.bucket, ManifestKey(manifest.Artifact), reader, int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("failed to put manifest: %w", err)
	}
	return nil
}

// Mirror uploads the artifact and then its manifest.
func (c *Client) Mirror(ctx context.Context, key, content string, manifest Manifest) error {
	if err := c.PutArtifact(ctx, key, content); err != nil {
		return err
	}
	manifest.Artifact = key
	return c.PutManifest(ctx, manifest)
}
