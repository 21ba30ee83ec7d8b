// Package filter turns search parameters into typed predicates and compiles
// them into bun select queries.
package filter
