// Package yaml reads DTCG token files written as YAML
package yaml

import (
	"fmt"

	"bennypowers.dev/dtsc/internal/parser/common"
	"bennypowers.dev/dtsc/internal/tokens"
	"gopkg.in/yaml.v3"
)

type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func decode(data []byte) (map[string]any, error) {
	var root map[string]any
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if root == nil {
		return map[string]any{}, nil
	}
	return normalize(root).(map[string]any), nil
}

// Parse extracts the tokens of YAML data
func (p *Parser) Parse(data []byte, prefix, filePath string) ([]*tokens.Token, error) {
	return common.ParseTokens(data, decode, prefix, filePath)
}

func (p *Parser) ParseFile(filename, prefix string) ([]*tokens.Token, error) {
	return common.ParseTokenFile(filename, decode, prefix)
}

// normalize converts mappings with non-string keys, such as a scale keyed
// 100: 200: 300:, into string-keyed maps
func normalize(v any) any {
	switch m := v.(type) {
	case map[string]any:
		for k, child := range m {
			m[k] = normalize(child)
		}
		return m
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, child := range m {
			out[fmt.Sprint(k)] = normalize(child)
		}
		return out
	case []any:
		for i, child := range m {
			m[i] = normalize(child)
		}
		return m
	}
	return v
}
