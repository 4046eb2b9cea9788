package resolver_test

import (
	"testing"

	"bennypowers.dev/dtsc/internal/resolver"
	"bennypowers.dev/dtsc/internal/stylesheet"
	"bennypowers.dev/dtsc/internal/tokens"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func byName(list []*tokens.Token) map[string]*tokens.Token {
	m := make(map[string]*tokens.Token, len(list))
	for _, tok := range list {
		m[tok.Name] = tok
	}
	return m
}

func TestResolveAliases(t *testing.T) {
	t.Run("chained aliases", func(t *testing.T) {
		tokenList := []*tokens.Token{
			{Name: "color-accent", Value: "{color.primary}"},
			{Name: "color-primary", Value: "{color.brand}"},
			{Name: "color-brand", Value: "{color.red}"},
			{Name: "color-red", Value: "#FF0000"},
		}

		require.NoError(t, resolver.ResolveAliases(tokenList))

		for _, tok := range tokenList {
			assert.True(t, tok.IsResolved, tok.Name)
			assert.Equal(t, "#FF0000", tok.ResolvedValue, tok.Name)
		}
	})

	t.Run("embedded references", func(t *testing.T) {
		tokenList := []*tokens.Token{
			{Name: "border-width", Value: "1px"},
			{Name: "color-line", Value: "#ccc"},
			{Name: "border-default", Value: "{border.width} solid {color.line}"},
		}

		require.NoError(t, resolver.ResolveAliases(tokenList))
		assert.Equal(t, "1px solid #ccc", byName(tokenList)["border-default"].ResolvedValue)
	})

	t.Run("dangling reference", func(t *testing.T) {
		tokenList := []*tokens.Token{
			{Name: "color-primary", Value: "{color.missing}", FilePath: "tokens.json"},
		}

		err := resolver.ResolveAliases(tokenList)
		require.Error(t, err)
		assert.ErrorIs(t, err, stylesheet.ErrUndefinedVariable)
		assert.Contains(t, err.Error(), "tokens.json")
		assert.Contains(t, err.Error(), "$color-missing")
	})

	t.Run("detect circular references", func(t *testing.T) {
		tokenList := []*tokens.Token{
			{Name: "a", Value: "{b}"},
			{Name: "b", Value: "{a}"},
		}

		err := resolver.ResolveAliases(tokenList)
		assert.ErrorIs(t, err, stylesheet.ErrCircularReference)
	})

	t.Run("re-resolution picks up changed values", func(t *testing.T) {
		base := &tokens.Token{Name: "base", Value: "red"}
		alias := &tokens.Token{Name: "alias", Value: "{base}"}
		list := []*tokens.Token{base, alias}

		require.NoError(t, resolver.ResolveAliases(list))
		assert.Equal(t, "red", alias.ResolvedValue)

		base.Value = "blue"
		require.NoError(t, resolver.ResolveAliases(list))
		assert.Equal(t, "blue", alias.ResolvedValue)
	})
}

func TestTableFromTokens(t *testing.T) {
	tokenList := []*tokens.Token{
		{Name: "color-base", Value: "#1abc9c", Prefix: "ds"},
		{Name: "color-primary", Value: "{color.base}", Prefix: "ds"},
	}

	table, err := resolver.TableFromTokens(tokenList)
	require.NoError(t, err)

	assert.Equal(t, 2, table.Len())
	v, ok := table.Lookup("$ds-color-primary")
	assert.True(t, ok)
	assert.Equal(t, "#1abc9c", v)
	assert.Equal(t, []string{"ds-color-base", "ds-color-primary"}, table.Names())
}
