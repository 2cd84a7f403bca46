package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"yatube/internal/common"
)

var ErrFileNotFound = errors.New("media file not found")

// File describes a stored upload.
type File struct {
	ID          string               `json:"id"`
	Filename    string               `json:"filename"`
	ContentType string               `json:"content_type"`
	FileType    common.MediaFileType `json:"file_type"`
	Size        int64                `json:"size"`
	UploadedBy  string               `json:"uploaded_by"`
	UploadedAt  time.Time            `json:"uploaded_at"`
}

// Store keeps post images. Implementations: DiskStorage and dbmongo.MediaStorage (GridFS).
type Store interface {
	UploadFile(ctx context.Context, filename, mimeType, uploaderID string, content io.Reader) (*File, error)
	DownloadFile(ctx context.Context, fileID string) (io.ReadCloser, *File, error)
	DeleteFile(ctx context.Context, fileID string) error
}

var diskIDRegex = regexp.MustCompile(`^[0-9a-f-]{36}(\.[a-z0-9]{1,8})?$`)

// DiskStorage keeps uploads as plain files under Root, named by a random id.
type DiskStorage struct {
	Root string
}

func NewDiskStorage(root string) (*DiskStorage, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create media root: %w", err)
	}
	return &DiskStorage{Root: root}, nil
}

func (ds *DiskStorage) UploadFile(ctx context.Context, filename, mimeType, uploaderID string, content io.Reader) (*File, error) {
	ext := common.ImageExtension(mimeType)
	if ext == "" {
		ext = strings.ToLower(filepath.Ext(filename))
	}
	if len(ext) > 9 {
		ext = ""
	}
	id := uuid.NewString() + ext

	f, err := os.Create(filepath.Join(ds.Root, id))
	if err != nil {
		return nil, fmt.Errorf("upload failed: %w", err)
	}
	defer f.Close()

	size, err := io.Copy(f, content)
	if err != nil {
		os.Remove(f.Name())
		return nil, fmt.Errorf("file copy failed: %w", err)
	}

	return &File{
		ID:          id,
		Filename:    filename,
		ContentType: mimeType,
		FileType:    common.DetectFileType(mimeType),
		Size:        size,
		UploadedBy:  uploaderID,
		UploadedAt:  time.Now(),
	}, nil
}

func (ds *DiskStorage) DownloadFile(ctx context.Context, fileID string) (io.ReadCloser, *File, error) {
	if !diskIDRegex.MatchString(fileID) {
		return nil, nil, ErrFileNotFound
	}
	f, err := os.Open(filepath.Join(ds.Root, fileID))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, ErrFileNotFound
		}
		return nil, nil, fmt.Errorf("download failed: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("stat failed: %w", err)
	}

	contentType := mime.TypeByExtension(filepath.Ext(fileID))
	return f, &File{
		ID:          fileID,
		Filename:    fileID,
		ContentType: contentType,
		FileType:    common.DetectFileType(contentType),
		Size:        info.Size(),
		UploadedAt:  info.ModTime(),
	}, nil
}

func (ds *DiskStorage) DeleteFile(ctx context.Context, fileID string) error {
	if !diskIDRegex.MatchString(fileID) {
		return ErrFileNotFound
	}
	err := os.Remove(filepath.Join(ds.Root, fileID))
	if errors.Is(err, os.ErrNotExist) {
		return ErrFileNotFound
	}
	return err
}
