// Package templates persists named row-templates: reusable ordered lists of
// van identifiers that seed the daily report table.
//
// The whole collection lives as one JSON array under a single well-known key
// of a kv.Storage. Saving is an upsert by name that moves the template to the
// end of the list, and every mutation rewrites the full blob. A missing or
// unreadable blob is treated as an empty collection.
package templates
