// Package expr parses TeX math source into an expression tree.
//
// The tree is a closed set of immutable node values (Symbol, Text, Group,
// Scripts, Fraction, Radical, Matrix, Accent, Delimited, SizedDelim, Space,
// Style and Phantom). Every atom carries its TeX class, fixed at parse time,
// which the layout engine uses for inter-atom spacing.
//
// Letters and digits are mapped to Unicode Mathematical Alphanumeric
// Symbols while parsing, so that x becomes U+1D465 and \mathbb{R} becomes
// U+211D:
//
//	n, err := expr.Parse(`\sum_{i=1}^{n} i = \frac{n(n+1)}{2}`)
//	if err != nil {
//	    var pe *expr.ParseError
//	    if errors.As(err, &pe) {
//	        log.Printf("offset %d: %s", pe.Pos, pe.Msg)
//	    }
//	}
package expr
