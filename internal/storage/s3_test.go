package storage

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"testing"
	"time"

	"github.com/mfenderov/llmsref/pkg/models"
	"github.com/minio/minio-go/v7"
)

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name:    "empty endpoint",
			config:  Config{Endpoint: "", Bucket: "test"},
			wantErr: true,
		},
		{
			name:    "empty bucket",
			config:  Config{Endpoint: "localhost:9000", Bucket: ""},
			wantErr: true,
		},
		{
			name: "valid config",
			config: Config{
				Endpoint:        "localhost:9000",
				Bucket:          "test",
				AccessKeyID:     "minioadmin",
				SecretAccessKey: "minioadmin",
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.config)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestManifestKey(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"llms.txt", "llms.json"},
		{"site/docs/llms.txt", "site/docs/llms.json"},
		{"reference", "reference.json"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := ManifestKey(tt.key); got != tt.want {
				t.Errorf("ManifestKey(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

// TestIntegration_Mirror tests actual S3 operations against MinIO.
// Skip if MinIO is not running.
func TestIntegration_Mirror(t *testing.T) {
	endpoint := os.Getenv("MINIO_ENDPOINT")
	if endpoint == "" {
		endpoint = "localhost:9000"
	}

	client, err := New(Config{
		Endpoint:        endpoint,
		Bucket:          "llmsref-test",
		AccessKeyID:     "minioadmin",
		SecretAccessKey: "minioadmin",
		UseSSL:          false,
	})
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Try to ensure bucket - skip if MinIO is not available
	if err := client.EnsureBucket(ctx); err != nil {
		t.Skipf("MinIO not available, skipping integration test: %v", err)
	}

	key := "test/llms.txt"
	content := "# Docs\n# Entries: 1\n"
	manifest := Manifest{
		Source:    "https://docs.example.com",
		Generated: time.Date(2026, 1, 2, 3, 4, 0, 0, time.UTC),
		Entries:   []models.Entry{{ID: "abc", Title: "Intro", Path: "docs/intro.md", URL: "https://docs.example.com", Summary: "Intro."}},
	}

	if err := client.Mirror(ctx, key, content, manifest); err != nil {
		t.Fatalf("Mirror() error = %v", err)
	}

	t.Run("artifact", func(t *testing.T) {
		got := readObject(t, ctx, client, key)
		if string(got) != content {
			t.Errorf("artifact = %q, want %q", got, content)
		}
	})

	t.Run("manifest", func(t *testing.T) {
		var got Manifest
		if err := json.Unmarshal(readObject(t, ctx, client, ManifestKey(key)), &got); err != nil {
			t.Fatalf("failed to decode manifest: %v", err)
		}
		if got.Artifact != key {
			t.Errorf("Artifact = %q, want %q", got.Artifact, key)
		}
		if len(got.Entries) != 1 || got.Entries[0].Path != "docs/intro.md" {
			t.Errorf("Entries = %+v", got.Entries)
		}
	})
}

func readObject(t *testing.T, ctx context.Context, client *Client, key string) []byte {
	t.Helper()
	object, err := client.minioClient.GetObject(ctx, client.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		t.Fatalf("GetObject(%s) error = %v", key, err)
	}
	defer object.Close()

	data, err := io.ReadAll(object)
	if err != nil {
		t.Fatalf("failed to read %s: %v", key, err)
	}
	return data
}
