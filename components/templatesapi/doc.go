// Package templatesapi exposes the template store over a small JSON net/http
// surface.
//
// Routes, relative to the mount path (default /api):
//
//	GET    /templates         list saved templates
//	POST   /templates         save or replace a template
//	GET    /templates/{name}  fetch one template
//	DELETE /templates/{name}  remove one template
//	GET    /openapi.json      the embedded OpenAPI document
//
// Request bodies are validated against the Template schema of the embedded
// OpenAPI document before they reach the store.
package templatesapi
