// Package json reads DTCG token files written as JSON, with comments and
// trailing commas allowed.
package json

import (
	"encoding/json"
	"fmt"

	"bennypowers.dev/dtsc/internal/parser/common"
	"bennypowers.dev/dtsc/internal/tokens"
	"github.com/tidwall/jsonc"
)

type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func decode(data []byte) (map[string]any, error) {
	var root map[string]any
	if err := json.Unmarshal(jsonc.ToJSON(data), &root); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	return root, nil
}

// Parse extracts the tokens of JSON or JSONC data
func (p *Parser) Parse(data []byte, prefix, filePath string) ([]*tokens.Token, error) {
	return common.ParseTokens(data, decode, prefix, filePath)
}

func (p *Parser) ParseFile(filename, prefix string) ([]*tokens.Token, error) {
	return common.ParseTokenFile(filename, decode, prefix)
}
