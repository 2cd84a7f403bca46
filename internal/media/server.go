package media

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gorilla/mux"
)

// HTTPServer streams stored post images at /media/{fileId}.
type HTTPServer struct {
	storage Store
	log     *slog.Logger
}

func NewHTTPServer(storage Store, log *slog.Logger) *HTTPServer {
	return &HTTPServer{storage: storage, log: log}
}

// Register mounts the media routes on router.
func (s *HTTPServer) Register(router *mux.Router) {
	router.HandleFunc("/media/{fileId}", s.serveFile).Methods(http.MethodGet, http.MethodHead)
}

func (s *HTTPServer) serveFile(w http.ResponseWriter, r *http.Request) {
	fileID := mux.Vars(r)["fileId"]

	fileReader, mediaFile, err := s.storage.DownloadFile(r.Context(), fileID)
	if err != nil {
		if !errors.Is(err, ErrFileNotFound) {
			s.log.Warn("media download failed", "file_id", fileID, "error", err)
		}
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}
	defer fileReader.Close()

	contentType := mediaFile.ContentType
	if contentType == "" {
		contentType = getContentType(mediaFile.Filename)
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", fmt.Sprintf("%d", mediaFile.Size))
	w.Header().Set("Cache-Control", "public, max-age=86400")

	if r.Method == http.MethodHead {
		return
	}
	if _, err := io.Copy(w, fileReader); err != nil {
		s.log.Warn("error streaming file", "file_id", fileID, "error", err)
	}
}

func getContentType(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}
