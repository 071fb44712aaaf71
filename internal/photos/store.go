// Package photos handles the on-disk storage of uploaded book photos:
// image validation, UUID-named files, and thumbnail generation.
package photos

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

const (
	photoJpegQuality     = 90
	thumbnailJpegQuality = 80
	thumbnailSuffix      = "_thumb"
	fileExtension        = ".jpg"
)

// ErrNotAnImage is returned when uploaded content cannot be decoded as an image.
var ErrNotAnImage = errors.New("uploaded file is not a valid image")

// Store saves book photos and their thumbnails under a base directory.
type Store struct {
	baseDir       string
	thumbnailSize int
}

// NewStore creates a photo store rooted at baseDir.
func NewStore(baseDir string, thumbnailSize int) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("create photos dir: %w", err)
	}
	if thumbnailSize <= 0 {
		thumbnailSize = 400
	}
	return &Store{baseDir: baseDir, thumbnailSize: thumbnailSize}, nil
}

// SaveResult holds the stored file paths for an uploaded photo.
type SaveResult struct {
	PhotoPath     string
	ThumbnailPath string
}

// Save decodes the uploaded content, rejects non-images, and writes the photo
// plus a thumbnail as JPEG files named by a fresh UUID. Returns the stored
// paths.
func (s *Store) Save(r io.Reader) (*SaveResult, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, ErrNotAnImage
	}

	id, err := uuid.NewRandom()
	if err != nil {
		return nil, fmt.Errorf("generate photo id: %w", err)
	}

	photoPath := filepath.Join(s.baseDir, id.String()+fileExtension)
	thumbPath := filepath.Join(s.baseDir, id.String()+thumbnailSuffix+fileExtension)

	if err := imaging.Save(img, photoPath, imaging.JPEGQuality(photoJpegQuality)); err != nil {
		return nil, fmt.Errorf("save photo: %w", err)
	}

	thumb := imaging.Fit(img, s.thumbnailSize, s.thumbnailSize, imaging.Lanczos)
	if err := imaging.Save(thumb, thumbPath, imaging.JPEGQuality(thumbnailJpegQuality)); err != nil {
		// The full-size photo is already on disk; a missing thumbnail is
		// recoverable, so keep the upload.
		log.Printf("photos: failed to save thumbnail for %s: %v", photoPath, err)
		thumbPath = ""
	}

	return &SaveResult{PhotoPath: photoPath, ThumbnailPath: thumbPath}, nil
}

// RemoveFiles deletes the given files, logging failures instead of returning
// them. Row deletion has already happened by the time this runs; a leftover
// file is not worth failing the request over.
func RemoveFiles(paths []string) {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			log.Printf("photos: failed to remove file %s: %v", p, err)
		}
	}
}

// BaseDir returns the storage directory.
func (s *Store) BaseDir() string {
	return s.baseDir
}
