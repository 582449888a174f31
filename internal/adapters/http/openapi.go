package http

import (
	_ "embed"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed openapi.yaml
var openapiYAML []byte

// rawOpenAPISpec returns the embedded spec bytes for serving.
func rawOpenAPISpec() []byte {
	return openapiYAML
}

// OpenAPISpec parses and validates the embedded API description.
func OpenAPISpec() (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(openapiYAML)
	if err != nil {
		return nil, fmt.Errorf("failed to parse openapi spec: %w", err)
	}
	if err := doc.Validate(loader.Context); err != nil {
		return nil, fmt.Errorf("openapi spec invalid: %w", err)
	}
	return doc, nil
}
