// Package query projects decoded response bodies with JMESPath expressions.
package query

import (
	"fmt"

	"github.com/artpar/curl2json/internal/tree"
	"github.com/jmespath/go-jmespath"
)

// Apply evaluates expression against v. Objects in the result have their
// keys sorted, since JMESPath works on unordered maps.
func Apply(v tree.Value, expression string) (tree.Value, error) {
	jp, err := jmespath.Compile(expression)
	if err != nil {
		return nil, fmt.Errorf("invalid JMESPath expression '%s': %w", expression, err)
	}

	result, err := jp.Search(tree.ToAny(v))
	if err != nil {
		return nil, fmt.Errorf("JMESPath search failed: %w", err)
	}

	return tree.FromAny(result), nil
}

// Validate reports whether expression compiles.
func Validate(expression string) error {
	if _, err := jmespath.Compile(expression); err != nil {
		return fmt.Errorf("invalid JMESPath expression '%s': %w", expression, err)
	}
	return nil
}
