// Package kv provides the on-device key-value storage used to persist small
// JSON blobs such as the saved row-templates.
//
// Three backends are available: Memory for tests and throwaway sessions, File
// for one-file-per-key storage under a data directory (with change
// notifications), and SQLite for a single database file.
package kv
