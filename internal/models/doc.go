// Package models defines the core domain models for homebase.
//
// # Models
//
//   - User: a registered account; owns every other row
//   - Task: a to-do entry with a label and description
//   - Expense: a labelled price with fixed-point precision
//   - ShortURL: an original URL reachable through a six letter code
//
// # Ownership
//
// Task, Expense and ShortURL rows carry the owning user's ID in CreatedBy.
// Listing, updating and deleting are always scoped to that owner, and rows
// are removed together with their owner.
//
// # Timestamps
//
// CreatedAt and UpdatedAt are assigned by the server: both on insert, and
// UpdatedAt again on every update. Clients never supply them.
package models
