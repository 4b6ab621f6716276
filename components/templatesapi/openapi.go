package templatesapi

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed data/openapi.yaml
var openAPISource []byte

const (
	collectionPath = "/templates"
	documentPath   = "/openapi.json"
)

var (
	documentOnce sync.Once
	document     *openapi3.T
	documentErr  error
)

// Document returns the embedded OpenAPI document, loaded and validated once.
func Document() (*openapi3.T, error) {
	documentOnce.Do(func() {
		loader := openapi3.NewLoader()
		doc, err := loader.LoadFromData(openAPISource)
		if err != nil {
			documentErr = fmt.Errorf("templatesapi: load openapi document: %w", err)
			return
		}
		if err := doc.Validate(context.Background()); err != nil {
			documentErr = fmt.Errorf("templatesapi: validate openapi document: %w", err)
			return
		}
		document = doc
	})
	return document, documentErr
}

// templateSchema is the request body schema of the save operation.
func templateSchema(doc *openapi3.T) (*openapi3.Schema, error) {
	if doc == nil || doc.Paths == nil {
		return nil, errors.New("templatesapi: openapi document has no paths")
	}
	item := doc.Paths.Value(collectionPath)
	if item == nil || item.Post == nil || item.Post.RequestBody == nil || item.Post.RequestBody.Value == nil {
		return nil, errors.New("templatesapi: openapi document has no save operation")
	}
	media := item.Post.RequestBody.Value.Content.Get("application/json")
	if media == nil || media.Schema == nil || media.Schema.Value == nil {
		return nil, errors.New("templatesapi: save operation has no json schema")
	}
	return media.Schema.Value, nil
}

// validateBody checks decoded JSON against schema and flattens the first
// failure into a short message.
func validateBody(schema *openapi3.Schema, body any) error {
	err := schema.VisitJSON(body)
	if err == nil {
		return nil
	}
	var schemaErr *openapi3.SchemaError
	if errors.As(err, &schemaErr) {
		reason := schemaErr.Reason
		if pointer := schemaErr.JSONPointer(); len(pointer) > 0 {
			reason = strings.Join(pointer, ".") + ": " + reason
		}
		return errors.New(reason)
	}
	return err
}
