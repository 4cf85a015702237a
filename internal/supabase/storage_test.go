package supabase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublicURLRoundTrip(t *testing.T) {
	client, err := NewStorageClient("https://project.supabase.co/", "key", "manifest-documents")
	require.NoError(t, err)

	storagePath := "manifests/MAN25122025 001/abcd1234_foto.jpg"
	url := client.GetPublicURL(storagePath)
	assert.Equal(t, "https://project.supabase.co/storage/v1/object/public/manifest-documents/"+storagePath, url)

	path, ok := client.pathFromPublicURL(url)
	assert.True(t, ok)
	assert.Equal(t, storagePath, path)
}

func TestPathFromForeignURL(t *testing.T) {
	client, err := NewStorageClient("https://project.supabase.co", "key", "manifest-documents")
	require.NoError(t, err)

	_, ok := client.pathFromPublicURL("https://elsewhere.example/file.png")
	assert.False(t, ok)

	// Same host, different bucket
	_, ok = client.pathFromPublicURL("https://project.supabase.co/storage/v1/object/public/other-bucket/file.png")
	assert.False(t, ok)
}
