package supabase

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/google/uuid"
	storage "github.com/supabase-community/storage-go"
)

type StorageClient struct {
	client  *storage.Client
	bucket  string
	baseURL string
}

func NewStorageClient(supabaseURL, serviceRoleKey, bucket string) (*StorageClient, error) {
	// Ensure URL doesn't have trailing slash
	baseURL := supabaseURL
	if len(baseURL) > 0 && baseURL[len(baseURL)-1] == '/' {
		baseURL = baseURL[:len(baseURL)-1]
	}
	client := storage.NewClient(baseURL+"/storage/v1", serviceRoleKey, nil)

	return &StorageClient{
		client:  client,
		bucket:  bucket,
		baseURL: baseURL,
	}, nil
}

// UploadManifestDocument stores a blob under manifests/{number}/ and returns
// the public URL. A random suffix keeps re-submissions from clobbering an
// earlier artifact with the same filename.
func (s *StorageClient) UploadManifestDocument(manifestNumber, filename, contentType string, data []byte) (string, error) {
	storagePath := fmt.Sprintf("manifests/%s/%s_%s", manifestNumber, uuid.New().String()[:8], filename)

	upsert := true
	_, err := s.client.UploadFile(s.bucket, storagePath, bytes.NewReader(data), storage.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file: %w", err)
	}

	return s.GetPublicURL(storagePath), nil
}

func (s *StorageClient) GetPublicURL(storagePath string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s",
		s.baseURL, s.bucket, storagePath)
}

// DeleteManifestDocument removes a stored artifact addressed by the public
// URL carried on the manifest row.
func (s *StorageClient) DeleteManifestDocument(publicURL string) error {
	storagePath, ok := s.pathFromPublicURL(publicURL)
	if !ok {
		return fmt.Errorf("not a managed storage URL: %s", publicURL)
	}

	_, err := s.client.RemoveFile(s.bucket, []string{storagePath})
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// pathFromPublicURL inverts GetPublicURL.
func (s *StorageClient) pathFromPublicURL(publicURL string) (string, bool) {
	prefix := fmt.Sprintf("%s/storage/v1/object/public/%s/", s.baseURL, s.bucket)
	if !strings.HasPrefix(publicURL, prefix) {
		return "", false
	}
	return strings.TrimPrefix(publicURL, prefix), true
}
