package dbmongo

import (
	"context"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yatube/internal/common"
	"yatube/internal/config"
	"yatube/internal/media"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	if os.Getenv("MONGO_INTEGRATION") == "" {
		t.Skip("set MONGO_INTEGRATION=1 with a running MongoDB to run GridFS tests")
	}
	return &config.Config{
		MongoDB: config.MongoDBConfig{
			Host:     getEnvOrDefault("MONGO_HOST", "localhost"),
			Port:     getEnvOrDefault("MONGO_PORT", "27017"),
			Username: os.Getenv("MONGO_USERNAME"),
			Password: os.Getenv("MONGO_PASSWORD"),
			Database: getEnvOrDefault("MONGO_DATABASE", "yatube_test"),
			Bucket:   "post_images_test",
		},
	}
}

func TestMongoConnection_Integration(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()

	client, err := Connect(ctx, cfg)
	require.NoError(t, err)
	defer client.Close(ctx)

	assert.NoError(t, client.PingContext(ctx))
	assert.NotNil(t, client.GridFS)
	assert.NotNil(t, client.Database)
}

func TestMediaStorage_RoundTrip(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()

	client, err := Connect(ctx, cfg)
	require.NoError(t, err)
	defer client.Close(ctx)

	storage := NewMediaStorage(client)
	file, err := storage.UploadFile(ctx, "cat.jpg", "image/jpeg", "7", strings.NewReader("jpeg bytes"))
	require.NoError(t, err)
	assert.Equal(t, common.MediaFileTypeImage, file.FileType)

	rc, info, err := storage.DownloadFile(ctx, file.ID)
	require.NoError(t, err)
	body, _ := io.ReadAll(rc)
	rc.Close()
	assert.Equal(t, "jpeg bytes", string(body))
	assert.Equal(t, "image/jpeg", info.ContentType)
	assert.Equal(t, "7", info.UploadedBy)

	require.NoError(t, storage.DeleteFile(ctx, file.ID))
	_, _, err = storage.DownloadFile(ctx, file.ID)
	assert.ErrorIs(t, err, media.ErrFileNotFound)
}

func TestMediaStorage_InvalidID(t *testing.T) {
	storage := &MediaStorage{}
	_, _, err := storage.DownloadFile(context.Background(), "not-an-object-id")
	assert.ErrorIs(t, err, media.ErrFileNotFound)
	assert.ErrorIs(t, storage.DeleteFile(context.Background(), "zzz"), media.ErrFileNotFound)
}

func getEnvOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
