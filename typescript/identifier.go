package typescript

import (
	"strings"
	"unicode"
)

// TypeScript reserved words from Appendix B.
var reservedWords = map[string]bool{
	"break":      true,
	"case":       true,
	"catch":      true,
	"class":      true,
	"const":      true,
	"continue":   true,
	"debugger":   true,
	"default":    true,
	"delete":     true,
	"do":         true,
	"else":       true,
	"enum":       true,
	"export":     true,
	"extends":    true,
	"false":      true,
	"finally":    true,
	"for":        true,
	"function":   true,
	"if":         true,
	"implements": true,
	"import":     true,
	"in":         true,
	"instanceof": true,
	"interface":  true,
	"let":        true,
	"new":        true,
	"null":       true,
	"package":    true,
	"private":    true,
	"protected":  true,
	"public":     true,
	"return":     true,
	"static":     true,
	"super":      true,
	"switch":     true,
	"this":       true,
	"throw":      true,
	"true":       true,
	"try":        true,
	"type":       true,
	"typeof":     true,
	"var":        true,
	"void":       true,
	"while":      true,
	"with":       true,
	"yield":      true,
}

func isIdentRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '$'
}

// IsIdentifier reports whether name can be used as a TypeScript binding name
// without quoting or escaping.
func IsIdentifier(name string) bool {
	return !needsQuoting(name)
}

// needsQuoting returns true if a property name must be quoted.
func needsQuoting(name string) bool {
	if name == "" {
		return true
	}
	if unicode.IsDigit(rune(name[0])) {
		return true
	}
	for _, r := range name {
		if !isIdentRune(r) {
			return true
		}
	}
	return reservedWords[name]
}

// sanitizeIdentifier makes an identifier valid for TypeScript.
func sanitizeIdentifier(name string) string {
	if name == "" {
		return "_"
	}

	var result strings.Builder
	if unicode.IsDigit(rune(name[0])) {
		result.WriteRune('_')
	}
	for _, r := range name {
		if isIdentRune(r) {
			result.WriteRune(r)
		} else {
			result.WriteRune('_')
		}
	}

	sanitized := result.String()
	if reservedWords[sanitized] {
		return sanitized + "_"
	}
	return sanitized
}

// toPascalCase splits s on every rune that cannot appear in an identifier
// and upper-cases the first letter of each word. The rest of each word is
// kept as written: user-id -> UserId, orderID -> OrderID.
func toPascalCase(s string) string {
	var b strings.Builder
	upper := true
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			upper = true
			continue
		}
		if upper {
			r = unicode.ToUpper(r)
			upper = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// quoteString renders s as a single-quoted TypeScript string literal.
func quoteString(s string) string {
	var b strings.Builder
	b.WriteByte('\'')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '\'':
			b.WriteString(`\'`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('\'')
	return b.String()
}

// propertyAccess renders obj.name, or obj['name'] when name is not a valid
// identifier. Reserved words are valid property names after a dot.
func propertyAccess(obj, name string) string {
	if name != "" && !unicode.IsDigit(rune(name[0])) && strings.IndexFunc(name, func(r rune) bool { return !isIdentRune(r) }) < 0 {
		return obj + "." + name
	}
	return obj + "[" + quoteString(name) + "]"
}

var templateEscaper = strings.NewReplacer("\\", "\\\\", "`", "\\`", "${", "\\${")

// escapeTemplate escapes literal text placed inside a template literal.
func escapeTemplate(s string) string {
	return templateEscaper.Replace(s)
}
