package glrtree

import "fmt"

// Length is a combined byte offset and row/column position, the unit every
// subtree's padding/size/lookahead is measured in (spec C1).
type Length struct {
	Bytes uint32
	Point Point
}

// LengthZero is the zero length.
var LengthZero = Length{}

// LengthUndefined is the sentinel used where no length has been computed
// yet: zero bytes, but a nonzero column so it is distinguishable from zero.
var LengthUndefined = Length{Bytes: 0, Point: Point{Row: 0, Column: 1}}

// LengthMax saturates both the byte and point components.
var LengthMax = Length{Bytes: ^uint32(0), Point: PointMax}

func (l Length) IsUndefined() bool {
	return l.Bytes == 0 && l.Point.Column != 0
}

func (a Length) Add(b Length) Length {
	return Length{Bytes: a.Bytes + b.Bytes, Point: a.Point.Add(b.Point)}
}

func (a Length) Sub(b Length) Length {
	return Length{Bytes: a.Bytes - b.Bytes, Point: a.Point.Sub(b.Point)}
}

func LengthMin(a, b Length) Length {
	if a.Bytes < b.Bytes {
		return a
	}
	return b
}

func LengthMax2(a, b Length) Length {
	if a.Bytes > b.Bytes {
		return a
	}
	return b
}

func (l Length) String() string {
	return fmt.Sprintf("%d@%s", l.Bytes, l.Point)
}

// subClamped returns max(0, a-b) measured in bytes (and correspondingly
// clamped points), used by edit propagation where coordinate subtraction
// could otherwise underflow when clamping an edit to a child's local span.
func subClamped(a, b Length) Length {
	if a.Bytes <= b.Bytes {
		return LengthZero
	}
	return a.Sub(b)
}

func lengthLess(a, b Length) bool { return a.Bytes < b.Bytes }

