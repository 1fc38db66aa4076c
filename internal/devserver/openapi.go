package devserver

import (
	"context"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
)

// ValidateOpenAPISpec loads the contract the development gateway claims to
// implement and fails fast if the document itself is broken. Catching a bad
// spec at startup beats serving docs that do not parse.
func ValidateOpenAPISpec(ctx context.Context, path string) (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	loader.Context = ctx

	doc, err := loader.LoadFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("load OpenAPI spec %s: %w", path, err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("validate OpenAPI spec %s: %w", path, err)
	}
	return doc, nil
}
