// Package cli provides the interactive e-library command-line client.
//
// It wires configuration, credential storage, the authenticated API client,
// the session controller and an interactive REPL. Startup resolves the
// session before any command runs; list screens can be watched live through
// polling views.
//
// Key features:
//   - Student and admin login, registration, logout
//   - Browse, download and upload books, notes and past-year papers
//   - Discussion board
//   - Admin moderation of students, content and messages
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
