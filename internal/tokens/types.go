// Package tokens holds design tokens loaded from DTCG files. Resolved tokens
// seed the variable table a stylesheet is compiled against.
package tokens

import "strings"

// Token represents a design token following the DTCG format
// See: https://www.designtokens.org/tr/drafts/format/
type Token struct {
	// Name is the hyphenated token path, e.g. "color-primary"
	Name string

	// Path is the group path to this token, e.g. ["color", "primary"]
	Path []string

	// Value is the token's CSS text before alias resolution. It may be or
	// contain curly brace references such as "{color.base}".
	Value string

	// Type is the token's $type, inherited from enclosing groups
	Type string

	// Description is the optional $description
	Description string

	// Deprecated is set by $deprecated; DeprecationMessage carries its text
	Deprecated         bool
	DeprecationMessage string

	// FilePath is the file this token was loaded from
	FilePath string

	// Prefix is prepended to the stylesheet variable name
	Prefix string

	// ResolvedValue is Value with every reference replaced. Valid once
	// IsResolved is set.
	ResolvedValue string
	IsResolved    bool
}

// VariableName returns the stylesheet variable this token binds, without '$'
// e.g., "color-primary" or "ds-color-primary"
func (t *Token) VariableName() string {
	name := strings.ReplaceAll(t.Name, ".", "-")
	if t.Prefix != "" {
		return strings.ReplaceAll(t.Prefix, ".", "-") + "-" + name
	}
	return name
}

// Reference returns the curly brace form other tokens use to alias this one
func (t *Token) Reference() string {
	return "{" + strings.Join(t.Path, ".") + "}"
}

// IsAlias reports whether the value refers to other tokens
func (t *Token) IsAlias() bool {
	return strings.Contains(t.Value, "{")
}
