// Package entity defines the record capability set used by the repository,
// the audit record and table metadata models, and the zero-value-skip patch
// helpers record types use to implement Merge.
package entity
