package layout

import "github.com/gogpu/math2img/expr"

const (
	thin   = 3
	medium = 4
	thick  = 5
)

// spacingTable holds the gap between adjacent atoms in mu, indexed by
// the left and right class. Pairs that cannot occur after Bin
// reclassification are zero.
var spacingTable = [8][8]int8{
	//           Ord   Op    Bin     Rel    Open    Close Punct Inner
	expr.Ord:   {0, thin, medium, thick, 0, 0, 0, thin},
	expr.Op:    {thin, thin, 0, thick, 0, 0, 0, thin},
	expr.Bin:   {medium, medium, 0, 0, medium, 0, 0, medium},
	expr.Rel:   {thick, thick, 0, 0, thick, 0, 0, thick},
	expr.Open:  {0, 0, 0, 0, 0, 0, 0, 0},
	expr.Close: {0, thin, medium, thick, 0, 0, 0, thin},
	expr.Punct: {thin, thin, 0, thin, thin, thin, thin, thin},
	expr.Inner: {thin, thin, medium, thick, thin, 0, thin, thin},
}

// Spacing returns the gap in mu (1/18 em of the current size) that is
// inserted between an atom of class left and one of class right.
func Spacing(left, right expr.Class) int {
	if int(left) >= len(spacingTable) || int(right) >= len(spacingTable) {
		return 0
	}
	return int(spacingTable[left][right])
}
