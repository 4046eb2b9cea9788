// Package common holds the DTCG walking and value conversion shared by the
// JSON and YAML token parsers.
package common

import (
	"fmt"
	"slices"
	"strings"

	"bennypowers.dev/dtsc/internal/color"
	"bennypowers.dev/dtsc/internal/tokens"
)

// ExtractTokens walks decoded DTCG data and returns its tokens in path order.
// $type is inherited from enclosing groups. Keys beginning with '$' are
// metadata, except $root, which names the group's own token.
func ExtractTokens(data map[string]any, prefix, filePath string) ([]*tokens.Token, error) {
	var result []*tokens.Token
	if err := extract(data, nil, "", prefix, filePath, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func extract(data map[string]any, path []string, inheritedType, prefix, filePath string, result *[]*tokens.Token) error {
	if t, ok := data["$type"].(string); ok {
		inheritedType = t
	}

	keys := make([]string, 0, len(data))
	for key := range data {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	for _, key := range keys {
		if strings.HasPrefix(key, "$") && key != RootKeyword {
			continue
		}
		node, ok := data[key].(map[string]any)
		if !ok {
			continue
		}

		tokenPath := slices.Clone(path)
		if key != RootKeyword {
			tokenPath = append(tokenPath, key)
		}

		value, isToken := node["$value"]
		if !isToken {
			if err := extract(node, tokenPath, inheritedType, prefix, filePath, result); err != nil {
				return err
			}
			continue
		}

		tok, err := createToken(tokenPath, value, node, inheritedType, prefix, filePath)
		if err != nil {
			return err
		}
		*result = append(*result, tok)
	}
	return nil
}

func createToken(path []string, value any, node map[string]any, inheritedType, prefix, filePath string) (*tokens.Token, error) {
	if len(path) == 0 {
		return nil, fmt.Errorf("%s: %s token must be inside a group", filePath, RootKeyword)
	}

	tok := &tokens.Token{
		Name:     strings.Join(path, "-"),
		Path:     path,
		Type:     inheritedType,
		FilePath: filePath,
		Prefix:   prefix,
	}
	if t, ok := node["$type"].(string); ok {
		tok.Type = t
	}
	if desc, ok := node["$description"].(string); ok {
		tok.Description = desc
	}

	// $deprecated can be bool or string with message
	if deprecated, ok := node["$deprecated"].(bool); ok {
		tok.Deprecated = deprecated
	} else if msg, ok := node["$deprecated"].(string); ok {
		tok.Deprecated = true
		tok.DeprecationMessage = msg
	}

	text, err := ValueText(value, tok.Type)
	if err != nil {
		return nil, fmt.Errorf("token %s: %w", strings.Join(path, "."), err)
	}
	tok.Value = text
	return tok, nil
}

// ValueText converts a decoded $value into stylesheet text. References
// such as "{color.base}" are kept for alias resolution.
func ValueText(value any, tokenType string) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case bool:
		return fmt.Sprintf("%t", v), nil
	case float64, int, int64, uint64:
		n, _ := toFloat(v)
		return color.FormatNumber(n), nil
	case []any:
		return listText(v, tokenType)
	case map[string]any:
		return objectText(v, tokenType)
	case nil:
		return "", fmt.Errorf("$value is null")
	}
	return "", fmt.Errorf("unsupported $value of type %T", value)
}

func listText(items []any, tokenType string) (string, error) {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		text, err := ValueText(item, "")
		if err != nil {
			return "", err
		}
		parts = append(parts, text)
	}
	if tokenType == "cubicBezier" {
		return "cubic-bezier(" + strings.Join(parts, ", ") + ")", nil
	}
	// font stacks, multiple shadows
	return strings.Join(parts, ", "), nil
}

func objectText(obj map[string]any, tokenType string) (string, error) {
	// JSON Pointer alias: {"$ref": "#/color/base"}
	if ref, ok := obj["$ref"].(string); ok {
		path := strings.TrimPrefix(ref, "#/")
		return "{" + strings.ReplaceAll(path, "/", ".") + "}", nil
	}

	if _, ok := obj["colorSpace"]; ok {
		c, err := color.ParseStructured(obj)
		if err != nil {
			return "", err
		}
		return c.CSS(), nil
	}

	if unit, ok := obj["unit"].(string); ok {
		n, err := ValueText(obj["value"], "")
		if err != nil {
			return "", err
		}
		return n + unit, nil
	}

	if tokenType == "shadow" {
		return shadowText(obj)
	}
	if tokenType == "border" {
		return joinFields(obj, "width", "style", "color")
	}

	return "", fmt.Errorf("unsupported composite value for type %q", tokenType)
}

func shadowText(obj map[string]any) (string, error) {
	text, err := joinFields(obj, "offsetX", "offsetY", "blur", "spread", "color")
	if err != nil {
		return "", err
	}
	if inset, _ := obj["inset"].(bool); inset {
		text = "inset " + text
	}
	return text, nil
}

// joinFields renders the named fields that are present, space separated
func joinFields(obj map[string]any, fields ...string) (string, error) {
	var parts []string
	for _, field := range fields {
		v, ok := obj[field]
		if !ok {
			continue
		}
		text, err := ValueText(v, "")
		if err != nil {
			return "", fmt.Errorf("%s: %w", field, err)
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, " "), nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}
