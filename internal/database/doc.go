// Package database provides the core database layer for the catalog.
//
// # Architecture
//
// The database layer follows the repository pattern with clear separation:
//
//   - database.go: connection management and migrations
//   - books/: book catalog operations (CRUD, bulk operations, shelf annotation)
//   - shelves/: shelf and shelf-membership operations
//   - loans/: loan tracking with denormalized book mirroring
//   - progress/: per-user reading progress upserts
//   - photos/: book photo records
//   - settings/: global key/value settings
//   - refresh/: metadata refresh progress tracking
//
// Each repository owns its entity and is constructed from a *gorm.DB.
package database
