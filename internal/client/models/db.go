// Package models defines the client-side view of e-library API entities.
// Field names follow the server's JSON; ids are opaque server-assigned keys.
package models
