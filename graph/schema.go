// graph/schema.go
package graph

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
)

//go:embed schema.graphql
var schemaSDL string

var (
	schemaOnce sync.Once
	schema     *ast.Schema
	schemaErr  error
)

// Schema returns the parsed client-side schema mirror.
func Schema() (*ast.Schema, error) {
	schemaOnce.Do(func() {
		s, err := gqlparser.LoadSchema(&ast.Source{Name: "schema.graphql", Input: schemaSDL})
		if err != nil {
			schemaErr = fmt.Errorf("invalid schema mirror: %w", err)
			return
		}
		schema = s
	})
	return schema, schemaErr
}

// Parse validates the operation document against s and returns its single
// operation definition.
func (op Operation) Parse(s *ast.Schema) (*ast.OperationDefinition, error) {
	doc, errs := gqlparser.LoadQuery(s, op.Document)
	if len(errs) > 0 {
		return nil, fmt.Errorf("operation %s: %w", op.Name, errs)
	}
	if len(doc.Operations) != 1 {
		return nil, fmt.Errorf("operation %s: expected one operation, found %d", op.Name, len(doc.Operations))
	}
	def := doc.Operations[0]
	if def.Name != op.Name {
		return nil, fmt.Errorf("operation %s: document declares %q", op.Name, def.Name)
	}
	return def, nil
}

// ValidateAll checks every operation the console sends.
func ValidateAll() error {
	s, err := Schema()
	if err != nil {
		return err
	}
	for _, op := range Operations() {
		if _, err := op.Parse(s); err != nil {
			return err
		}
	}
	return nil
}
