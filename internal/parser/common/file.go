package common

import (
	"fmt"
	"os"

	"bennypowers.dev/dtsc/internal/tokens"
)

// DecodeFunc turns the bytes of a token file into its top-level group
type DecodeFunc func(data []byte) (map[string]any, error)

// ParseTokens decodes data and extracts its tokens, recording filePath on
// each one
func ParseTokens(data []byte, decode DecodeFunc, prefix, filePath string) ([]*tokens.Token, error) {
	root, err := decode(data)
	if err != nil {
		return nil, err
	}
	return ExtractTokens(root, prefix, filePath)
}

// ParseTokenFile reads filename and parses it with decode
func ParseTokenFile(filename string, decode DecodeFunc, prefix string) ([]*tokens.Token, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	list, err := ParseTokens(data, decode, prefix, filename)
	if err != nil {
		return nil, fmt.Errorf("failed to parse file %s: %w", filename, err)
	}
	return list, nil
}
