// Package colorize provides syntax highlighting for the YAML report
// snippets and plain-field coloring the inspector and CLI print to a
// terminal.
package colorize

import (
	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/styles"
)

func init() {
	_ = RelocDark
}

// RelocDark is a custom style tuned for reading relocation listings:
// addresses and destinations need to pop against a dark background the
// way a disassembler's does.
var RelocDark = styles.Register(chroma.MustNewStyle("reloc-dark", chroma.StyleEntries{
	chroma.Text:           "#FFFFFF",
	chroma.Background:     "bg:#000000",
	chroma.Comment:        "#FF8000",
	chroma.CommentPreproc: "#FF8000",

	chroma.Keyword:       "#87CEEB", // YAML keys in light blue
	chroma.KeywordPseudo: "#87CEEB",
	chroma.Name:          "#FFC800", // Mapping keys in yellow
	chroma.NameTag:       "#FFC800",

	chroma.LiteralNumber:        "#FF80C0",
	chroma.LiteralNumberHex:     "#FF80C0",
	chroma.LiteralNumberInteger: "#FF80C0",

	chroma.String: "#00FF00",

	chroma.Operator:    "#FFFFFF",
	chroma.Punctuation: "#FFFFFF",
}))
