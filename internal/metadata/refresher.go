package metadata

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/bookboss/bookboss/internal/entities"
)

// BookCatalog defines the database operations the refresher needs.
type BookCatalog interface {
	GetByID(id uint) (*entities.Book, error)
	ListWithISBN() ([]entities.Book, error)
	UpdateMetadata(id uint, fields map[string]any) error
}

// CoverFetcher downloads a cover image and returns its local path.
type CoverFetcher interface {
	Fetch(coverURL string) (string, error)
}

// ProgressReporter records the state of a bulk refresh so it can be polled.
type ProgressReporter interface {
	StartRefresh(totalItems int) error
	UpdateProgress(processed, downloaded, skipped, failed int, currentItem string) error
	CompleteRefresh(succeeded bool, errorMsg string) error
	IsRefreshRunning() (bool, error)
}

// ErrRefreshRunning is returned when a bulk refresh is requested while another
// one is still in progress.
var ErrRefreshRunning = errors.New("metadata refresh is already in progress")

// RefreshResult contains the summary of a bulk refresh operation.
type RefreshResult struct {
	Processed  int      `json:"processed"`
	Downloaded int      `json:"downloaded"`
	Skipped    int      `json:"skipped"`
	Failed     int      `json:"failed"`
	Errors     []string `json:"errors,omitempty"`
}

// BookRefreshResult contains the result of refreshing a single book.
type BookRefreshResult struct {
	Book          *entities.Book `json:"book"`
	FieldsUpdated []string       `json:"fields_updated"`
	Source        string         `json:"source"`
}

// Refresher pulls book metadata from external providers and applies it to the
// catalog, downloading covers along the way.
type Refresher struct {
	providers        []Provider
	catalog          BookCatalog
	covers           CoverFetcher
	progressReporter ProgressReporter
}

// NewRefresher creates a refresher that tries each provider in order until one
// returns a match.
func NewRefresher(providers []Provider, catalog BookCatalog, covers CoverFetcher) *Refresher {
	return &Refresher{
		providers: providers,
		catalog:   catalog,
		covers:    covers,
	}
}

// SetProgressReporter sets the progress reporter for bulk operations (optional).
func (r *Refresher) SetProgressReporter(reporter ProgressReporter) {
	r.progressReporter = reporter
}

// lookup tries each provider in order and returns the first match.
func (r *Refresher) lookup(ctx context.Context, isbn string) (*BookMetadata, string, error) {
	var lastErr error
	for _, p := range r.providers {
		meta, err := p.LookupISBN(ctx, isbn)
		if err == nil && meta != nil {
			return meta, p.Name(), nil
		}
		lastErr = err
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if ctx.Err() != nil {
			return nil, "", ctx.Err()
		}
	}
	if lastErr == nil {
		lastErr = ErrNotFound
	}
	return nil, "", lastErr
}

// RefreshBook fetches metadata for a single book by its ISBN and overwrites
// the book's descriptive fields with the provider data.
func (r *Refresher) RefreshBook(ctx context.Context, bookID uint) (*BookRefreshResult, error) {
	book, err := r.catalog.GetByID(bookID)
	if err != nil {
		return nil, fmt.Errorf("get book: %w", err)
	}

	if NormalizeISBN(book.ISBN) == "" {
		return nil, fmt.Errorf("book %d has no usable ISBN", bookID)
	}

	meta, source, err := r.lookup(ctx, book.ISBN)
	if err != nil {
		return nil, fmt.Errorf("metadata lookup failed: %w", err)
	}

	updates, fieldsUpdated := r.buildUpdates(meta)

	if meta.CoverURL != "" && r.covers != nil {
		localPath, err := r.covers.Fetch(meta.CoverURL)
		if err != nil {
			// A missing cover does not fail the refresh; the metadata
			// fields are still worth saving.
			log.Printf("metadata: cover download failed for book %d: %v", bookID, err)
		} else if localPath != "" {
			updates["cover_image_path"] = localPath
			fieldsUpdated = append(fieldsUpdated, "cover_image_path")
		}
	}

	if len(fieldsUpdated) > 0 {
		if err := r.catalog.UpdateMetadata(bookID, updates); err != nil {
			return nil, fmt.Errorf("update book metadata: %w", err)
		}
		book, err = r.catalog.GetByID(bookID)
		if err != nil {
			return nil, fmt.Errorf("refresh book: %w", err)
		}
	}

	return &BookRefreshResult{
		Book:          book,
		FieldsUpdated: fieldsUpdated,
		Source:        source,
	}, nil
}

// RefreshAll refreshes metadata for every book that has an ISBN. Only one bulk
// refresh may run at a time; progress is reported through the configured
// reporter so clients can poll it.
func (r *Refresher) RefreshAll(ctx context.Context) (*RefreshResult, error) {
	if r.progressReporter != nil {
		running, err := r.progressReporter.IsRefreshRunning()
		if err != nil {
			return nil, fmt.Errorf("check refresh status: %w", err)
		}
		if running {
			return nil, ErrRefreshRunning
		}
	}

	books, err := r.catalog.ListWithISBN()
	if err != nil {
		return nil, fmt.Errorf("list books with ISBN: %w", err)
	}

	result := &RefreshResult{}

	if r.progressReporter != nil {
		if err := r.progressReporter.StartRefresh(len(books)); err != nil {
			return nil, fmt.Errorf("start refresh progress: %w", err)
		}
	}

	for _, book := range books {
		select {
		case <-ctx.Done():
			result.Errors = append(result.Errors, "operation cancelled")
			if r.progressReporter != nil {
				_ = r.progressReporter.CompleteRefresh(false, "operation cancelled")
			}
			return result, ctx.Err()
		default:
		}

		if r.progressReporter != nil {
			_ = r.progressReporter.UpdateProgress(
				result.Processed,
				result.Downloaded,
				result.Skipped,
				result.Failed,
				book.Title,
			)
		}

		result.Processed++

		refreshResult, err := r.RefreshBook(ctx, book.ID)
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", book.Title, err))
			continue
		}

		if contains(refreshResult.FieldsUpdated, "cover_image_path") {
			result.Downloaded++
		} else if len(refreshResult.FieldsUpdated) == 0 {
			result.Skipped++
		}
	}

	if r.progressReporter != nil {
		_ = r.progressReporter.UpdateProgress(
			result.Processed,
			result.Downloaded,
			result.Skipped,
			result.Failed,
			"",
		)
		_ = r.progressReporter.CompleteRefresh(true, "")
	}

	return result, nil
}

// buildUpdates converts provider metadata into a column update map. Provider
// data overwrites existing fields; empty provider values leave them alone.
func (r *Refresher) buildUpdates(meta *BookMetadata) (map[string]any, []string) {
	updates := map[string]any{}
	var fields []string

	setString := func(column, value string) {
		if value != "" {
			updates[column] = value
			fields = append(fields, column)
		}
	}

	setString("title", meta.Title)
	setString("author", meta.Author)
	setString("publisher", meta.Publisher)
	setString("publication_date", meta.PublicationDate)
	setString("description", meta.Description)
	setString("cover_url", meta.CoverURL)

	if meta.PageCount > 0 {
		updates["page_count"] = meta.PageCount
		fields = append(fields, "page_count")
	}
	if len(meta.Categories) > 0 {
		updates["categories"] = entities.StringList(meta.Categories)
		fields = append(fields, "categories")
	}

	return updates, fields
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
