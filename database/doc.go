// Package database provides connection management, configuration types,
// logging, health checks, SQL error classification, the model registry and
// table bootstrap, built on top of Bun.
package database
