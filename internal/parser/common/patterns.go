package common

import "regexp"

// CurlyBraceReferenceRegexp matches curly brace token references: {token.reference.path}
var CurlyBraceReferenceRegexp = regexp.MustCompile(`\{([^{}]+)\}`)

// RootKeyword names a token that carries its enclosing group's own value:
// color.primary.$root binds the same variable as color.primary would
const RootKeyword = "$root"
