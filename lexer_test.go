package glrtree

import "testing"

// TestGetColumnCountsCodePoints exercises a multibyte line: GetColumn must
// report the number of code points consumed since the last newline, not
// the byte width Advance accumulates into pos.Point.Column (spec §4.2
// get_column).
func TestGetColumnCountsCodePoints(t *testing.T) {
	// "aébc": a (1 byte), é (2 bytes), b (1 byte), c (1 byte).
	src := []byte("a\xc3\xa9bc\nxyz")
	lexer := NewLexer(NewBytesInput(src, EncodingUTF8), nil)

	if got, want := lexer.GetColumn(), uint32(0); got != want {
		t.Fatalf("GetColumn at line start = %d, want %d", got, want)
	}

	// Advance past 'a', 'é', 'b': three code points, four bytes.
	lexer.Advance(false)
	lexer.Advance(false)
	lexer.Advance(false)
	if got, want := lexer.GetColumn(), uint32(3); got != want {
		t.Fatalf("GetColumn after 3 code points = %d, want %d (byte column would be 4)", got, want)
	}
	if got, want := lexer.pos.Point.Column, uint32(4); got != want {
		t.Fatalf("pos.Point.Column = %d, want %d (byte-accumulated column, unchanged)", got, want)
	}

	// Advance past 'c' and the newline, landing at the start of "xyz".
	lexer.Advance(false)
	lexer.Advance(false)
	if got, want := lexer.GetColumn(), uint32(0); got != want {
		t.Fatalf("GetColumn at start of new line = %d, want %d", got, want)
	}

	lexer.Advance(false)
	lexer.Advance(false)
	if got, want := lexer.GetColumn(), uint32(2); got != want {
		t.Fatalf("GetColumn after 2 code points on new line = %d, want %d", got, want)
	}
}
