package build

import (
	"fmt"

	"bennypowers.dev/dtsc/internal/log"
	"bennypowers.dev/dtsc/internal/parser"
	"bennypowers.dev/dtsc/internal/resolver"
	"bennypowers.dev/dtsc/internal/tokens"
)

// LoadTokens reads token files into manager, replacing whatever each file
// contributed before
func LoadTokens(manager *tokens.Manager, files []string, prefix string) error {
	for _, file := range files {
		list, err := parser.ParseTokenFile(file, prefix)
		if err != nil {
			return fmt.Errorf("loading tokens: %w", err)
		}
		manager.ReplaceSourceFile(file, list)
		log.Debug("loaded %d tokens from %s", len(list), file)
	}
	return nil
}

// Variables builds the table that seeds every compilation: resolved tokens
// from manager, with configured variables layered over them
func Variables(manager *tokens.Manager, vars map[string]string) (resolver.Table, error) {
	table, err := resolver.TableFromTokens(manager.GetAll())
	if err != nil {
		return resolver.Table{}, err
	}
	return table.Merge(resolver.NewTable(vars)), nil
}
