package units

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// MeasurementLexer splits "12.5 mil", "0.3mm" or "4 in^2" into a number
// and an optional unit token.
var MeasurementLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `\s+`},

	// Numbers: 12, -3.5, .25, 1e-3
	{Name: "Number", Pattern: `[-+]?(\d+(\.\d*)?|\.\d+)([eE][-+]?\d+)?`},

	// Units, inch/foot marks, with an optional squared suffix: 2, ^2 or **2
	{Name: "Unit", Pattern: `([a-zA-Zµμ]+|"|')((\^|\*\*)?2)?`},
})
