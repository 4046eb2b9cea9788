package resolver

import (
	"strings"

	"bennypowers.dev/dtsc/internal/parser/common"
	"bennypowers.dev/dtsc/internal/stylesheet"
	"bennypowers.dev/dtsc/internal/tokens"
)

// ResolveAliases resolves all alias references in the token list
// Updates ResolvedValue and IsResolved fields on each token, recomputing
// any earlier resolution
func ResolveAliases(tokenList []*tokens.Token) error {
	for _, tok := range tokenList {
		tok.IsResolved = false
		tok.ResolvedValue = ""
	}

	// referenced tokens first; a loop is reported with its full path
	sortedNames, err := NewAliasGraph(tokenList).Order()
	if err != nil {
		return err
	}

	tokenByName := make(map[string]*tokens.Token, len(tokenList))
	for _, tok := range tokenList {
		tokenByName[tok.Name] = tok
	}

	for _, name := range sortedNames {
		tok := tokenByName[name]
		if tok == nil {
			// referenced but never defined; reported by its dependents
			continue
		}
		if err := resolveToken(tok, tokenByName); err != nil {
			return err
		}
	}

	return nil
}

// resolveToken resolves a single token's value. Its dependencies are
// already resolved.
func resolveToken(tok *tokens.Token, tokenByName map[string]*tokens.Token) error {
	if !tok.IsAlias() {
		tok.ResolvedValue = tok.Value
		tok.IsResolved = true
		return nil
	}

	var missing error
	resolved := common.CurlyBraceReferenceRegexp.ReplaceAllStringFunc(tok.Value, func(ref string) string {
		path := ref[1 : len(ref)-1]
		target := tokenByName[referenceName(path)]
		if target == nil || !target.IsResolved {
			if missing == nil {
				missing = stylesheet.NewUndefinedVariableError(referenceName(path), stylesheet.Location{File: tok.FilePath})
			}
			return ref
		}
		return target.ResolvedValue
	})
	if missing != nil {
		return missing
	}

	tok.ResolvedValue = resolved
	tok.IsResolved = true
	return nil
}

// TableFromTokens resolves aliases and binds each token under its variable
// name, so {color.primary} with prefix "ds" becomes $ds-color-primary
func TableFromTokens(tokenList []*tokens.Token) (Table, error) {
	if err := ResolveAliases(tokenList); err != nil {
		return Table{}, err
	}
	vars := make(map[string]string, len(tokenList))
	for _, tok := range tokenList {
		vars[tok.VariableName()] = strings.TrimSpace(tok.ResolvedValue)
	}
	return NewTable(vars), nil
}
