package dbmongo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"

	"yatube/internal/common"
	"yatube/internal/media"
)

// MediaStorage is the GridFS implementation of media.Store.
type MediaStorage struct {
	gridFS *gridfs.Bucket
	client *MongoClient
}

var _ media.Store = (*MediaStorage)(nil)

func NewMediaStorage(mongoClient *MongoClient) *MediaStorage {
	return &MediaStorage{
		gridFS: mongoClient.GridFS,
		client: mongoClient,
	}
}

// PingContext reports whether the backing MongoDB is reachable.
func (ms *MediaStorage) PingContext(ctx context.Context) error {
	return ms.client.PingContext(ctx)
}

func (ms *MediaStorage) UploadFile(ctx context.Context, filename, mimeType, uploaderID string, content io.Reader) (*media.File, error) {
	fileType := common.DetectFileType(mimeType)
	uploadedAt := time.Now()

	metadata := bson.M{
		"file_type":   fileType.String(),
		"mime_type":   mimeType,
		"uploaded_by": uploaderID,
		"uploaded_at": uploadedAt,
	}

	opts := options.GridFSUpload().SetMetadata(metadata)
	stream, err := ms.gridFS.OpenUploadStream(filename, opts)
	if err != nil {
		return nil, fmt.Errorf("upload failed: %w", err)
	}
	defer stream.Close()

	size, err := io.Copy(stream, content)
	if err != nil {
		_ = stream.Abort()
		return nil, fmt.Errorf("file copy failed: %w", err)
	}

	return &media.File{
		ID:          stream.FileID.(primitive.ObjectID).Hex(),
		Filename:    filename,
		ContentType: mimeType,
		Size:        size,
		FileType:    fileType,
		UploadedBy:  uploaderID,
		UploadedAt:  uploadedAt,
	}, nil
}

func (ms *MediaStorage) DownloadFile(ctx context.Context, fileID string) (io.ReadCloser, *media.File, error) {
	objectID, err := primitive.ObjectIDFromHex(fileID)
	if err != nil {
		return nil, nil, media.ErrFileNotFound
	}

	stream, err := ms.gridFS.OpenDownloadStream(objectID)
	if err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, nil, media.ErrFileNotFound
		}
		return nil, nil, fmt.Errorf("download failed: %w", err)
	}

	fileInfo := stream.GetFile()
	var metadata bson.M
	if fileInfo.Metadata != nil {
		_ = bson.Unmarshal(fileInfo.Metadata, &metadata)
	}

	return stream, &media.File{
		ID:          fileID,
		Filename:    fileInfo.Name,
		ContentType: getStringFromMap(metadata, "mime_type"),
		Size:        fileInfo.Length,
		FileType:    common.MediaFileType(getStringFromMap(metadata, "file_type")),
		UploadedBy:  getStringFromMap(metadata, "uploaded_by"),
		UploadedAt:  fileInfo.UploadDate,
	}, nil
}

func (ms *MediaStorage) DeleteFile(ctx context.Context, fileID string) error {
	objectID, err := primitive.ObjectIDFromHex(fileID)
	if err != nil {
		return media.ErrFileNotFound
	}
	if err := ms.gridFS.Delete(objectID); err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return media.ErrFileNotFound
		}
		return err
	}
	return nil
}

func getStringFromMap(m bson.M, key string) string {
	if m == nil {
		return ""
	}
	if val, ok := m[key]; ok {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}
