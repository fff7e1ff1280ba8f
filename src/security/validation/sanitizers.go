// backend/src/security/validation/sanitizers.go
package validation

import (
	"html"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
)

var (
	// Definition of strict sanitization policy
	strictHTMLPolicy *bluemonday.Policy
)

func init() {
	// Initialize strict policy once at startup
	strictHTMLPolicy = bluemonday.StrictPolicy() // Removes all HTML tags
}

// SanitizeText removes all HTML tags and attributes from an input string and
// trims surrounding whitespace. Entities escaped by the policy are decoded
// again, since values are stored and served as plain text.
func SanitizeText(s string) string {
	return strings.TrimSpace(html.UnescapeString(strictHTMLPolicy.Sanitize(StripUnprintable(s))))
}

func isFormulaTrigger(c byte) bool {
	return c == '=' || c == '+' || c == '-' || c == '@' || c == '\t' || c == '\r'
}

// SanitizeForFormulaInjection prepends a single quote if the string starts with a formula character.
// This prevents CSV Injection (Formula Injection) in Excel/Sheets.
// A value that already looks escaped gets one more quote, so UnescapeFormulaPrefix
// always gives back the original.
func SanitizeForFormulaInjection(s string) string {
	trimmed := strings.TrimSpace(s)
	if len(trimmed) == 0 {
		return s
	}
	if isFormulaTrigger(trimmed[0]) || hasFormulaEscape(s) {
		// Prepend a single quote (') which forces the cell to be treated as text
		return "'" + s
	}
	return s
}

// UnescapeFormulaPrefix reverses SanitizeForFormulaInjection so that a file
// exported by this service imports back to the same values.
func UnescapeFormulaPrefix(s string) string {
	if hasFormulaEscape(s) {
		return s[1:]
	}
	return s
}

// hasFormulaEscape reports whether s is a quote followed by either a formula
// character or another escaped value.
func hasFormulaEscape(s string) bool {
	if !strings.HasPrefix(s, "'") {
		return false
	}
	rest := s[1:]
	trimmed := strings.TrimSpace(rest)
	if len(trimmed) > 0 && isFormulaTrigger(trimmed[0]) {
		return true
	}
	return hasFormulaEscape(rest)
}

// StripUnprintable removes non-printable characters, allowing common whitespace
// like space, tab, newline, and carriage return.
func StripUnprintable(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) || r == '\t' || r == '\n' || r == '\r' {
			return r
		}
		return -1 // Drop the rune
	}, s)
}
