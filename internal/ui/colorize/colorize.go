package colorize

import (
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// getYAMLLexer returns a lexer for the YAML report snippets, with
// fallbacks.
func getYAMLLexer() chroma.Lexer {
	candidates := []string{"yaml", "YAML"}
	for _, name := range candidates {
		if lexer := lexers.Get(name); lexer != nil {
			return lexer
		}
	}
	return nil
}

// getRelocStyle returns the relocation-listing style with fallbacks.
func getRelocStyle() *chroma.Style {
	candidates := []string{"reloc-dark", "dracula", "monokai"}
	for _, name := range candidates {
		if style := styles.Get(name); style != nil {
			return style
		}
	}
	return styles.Fallback
}

// getTerminalFormatter returns an appropriate terminal formatter.
func getTerminalFormatter() chroma.Formatter {
	candidates := []string{"terminal16m", "terminal256"}
	for _, name := range candidates {
		if formatter := formatters.Get(name); formatter != nil {
			return formatter
		}
	}
	return formatters.Fallback
}

// IsDisabled returns true if colors are disabled via environment.
func IsDisabled() bool {
	return os.Getenv("DSDELINK_NO_COLOR") != "" || os.Getenv("NO_COLOR") != ""
}

// YAML colorizes a rendered config/symbols/relocs.yaml snippet, used
// by the `inspect` TUI's detail pane.
func YAML(doc string) string {
	if IsDisabled() {
		return doc
	}

	lexer := getYAMLLexer()
	if lexer == nil {
		return doc
	}

	style := getRelocStyle()
	formatter := getTerminalFormatter()

	iterator, err := lexer.Tokenise(nil, doc)
	if err != nil {
		return doc
	}

	var buf strings.Builder
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return doc
	}

	return strings.TrimSuffix(buf.String(), "\n")
}

// Address formats an address in yellow.
func Address(addr uint32) string {
	if IsDisabled() {
		return fmt.Sprintf("0x%08x", addr)
	}
	return fmt.Sprintf("\033[38;2;255;200;0m0x%08x\033[0m", addr)
}

// Tag formats a hashtag in light pink.
func Tag(tag string) string {
	if IsDisabled() {
		return tag
	}
	return fmt.Sprintf("\033[38;2;255;180;200m%s\033[0m", tag)
}

// Destination formats a relocation destination (main/ovN/itcm/dtcm/any/
// none) in light blue.
func Destination(dest string) string {
	if IsDisabled() {
		return dest
	}
	return fmt.Sprintf("\033[38;2;135;206;235m%s\033[0m", dest)
}

// SymbolName formats a symbol or function name in yellow.
func SymbolName(name string) string {
	if IsDisabled() {
		return name
	}
	return fmt.Sprintf("\033[38;2;255;200;0m%s\033[0m", name)
}

// Detail formats detail text in light gray.
func Detail(detail string) string {
	if IsDisabled() {
		return detail
	}
	return fmt.Sprintf("\033[38;2;180;180;180m%s\033[0m", detail)
}

// Border formats border characters in dark gray.
func Border(s string) string {
	if IsDisabled() {
		return s
	}
	return fmt.Sprintf("\033[38;2;80;80;80m%s\033[0m", s)
}

// Header formats header text in blue.
func Header(s string) string {
	if IsDisabled() {
		return s
	}
	return fmt.Sprintf("\033[38;2;86;156;214m%s\033[0m", s)
}

// Error formats a diagnostic message (dangling call, ambiguous
// relocation, ...) in pink.
func Error(s string) string {
	if IsDisabled() {
		return s
	}
	return fmt.Sprintf("\033[38;2;255;128;192m%s\033[0m", s)
}
