// Package auth provides local user authentication for the API.
//
// Two credential types are supported: session cookies (scs with a SQLite
// store) for browser clients, and bearer API tokens for programmatic access.
// Tokens are stored as SHA-256 hashes; the plaintext is shown once on issue.
//
// The first registered user becomes the admin. Login attempts are rate
// limited per IP+username, and accounts lock after repeated failures.
package auth
