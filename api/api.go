// Package api embeds the OpenAPI description of the wikicard HTTP API.
package api

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed openapi.yaml
var rawSpec []byte

var (
	once    sync.Once
	swagger *openapi3.T
	loadErr error
)

// Spec returns the raw YAML document.
func Spec() []byte {
	return rawSpec
}

// GetSwagger returns the parsed and validated document. It is parsed once.
func GetSwagger() (*openapi3.T, error) {
	once.Do(func() {
		loader := openapi3.NewLoader()
		doc, err := loader.LoadFromData(rawSpec)
		if err != nil {
			loadErr = fmt.Errorf("failed to load openapi spec: %w", err)
			return
		}
		if err := doc.Validate(loader.Context); err != nil {
			loadErr = fmt.Errorf("invalid openapi spec: %w", err)
			return
		}
		swagger = doc
	})
	return swagger, loadErr
}
