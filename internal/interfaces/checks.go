// Package interfaces holds compile-time interface implementation checks,
// catching missing methods before runtime.
package interfaces

import (
	"github.com/bookboss/bookboss/internal/auth"
	"github.com/bookboss/bookboss/internal/covers"
	"github.com/bookboss/bookboss/internal/database/books"
	"github.com/bookboss/bookboss/internal/database/refresh"
	"github.com/bookboss/bookboss/internal/database/settings"
	"github.com/bookboss/bookboss/internal/metadata"
	"github.com/bookboss/bookboss/internal/settingsstore"
)

// Metadata refresh wiring
var _ metadata.BookCatalog = (*books.Repository)(nil)
var _ metadata.CoverFetcher = (*covers.Cache)(nil)
var _ metadata.ProgressReporter = (*refresh.Repository)(nil)
var _ metadata.Provider = (*metadata.OpenLibraryClient)(nil)
var _ metadata.Provider = (*metadata.GoogleBooksClient)(nil)

// Settings wiring
var _ settingsstore.SettingsRepository = (*settings.Repository)(nil)
var _ auth.RegistrationPolicy = (*settingsstore.SettingsStore)(nil)
