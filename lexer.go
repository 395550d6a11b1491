package glrtree

import "unicode/utf8"

// chunkReadSize is how much of the Input is pulled into the lexer's
// working buffer on each refill (spec §4.2 "chunked input view").
const chunkReadSize = 1024

// Token is the result of a successful lex: the recognized span plus the
// padding (skipped trivia) and lookahead consumed before it.
type Token struct {
	Symbol         Symbol
	Text           string
	Padding        Length
	Size           Length
	LookaheadBytes uint32
	Keyword        bool
	externalState  []byte
}

// Lexer drives the cursor over an Input during both internal and external
// scanning (spec §4.2). Position tracking uses absolute Lengths directly;
// Padding/Size for the eventual token are derived from the difference
// between tokenStart/tokenEnd and the lex's starting position.
type Lexer struct {
	input    Input
	encoding Encoding

	chunk     []byte
	chunkBase uint32

	lexStart   Length // absolute position when Lex began (before any skip)
	tokenStart Length // absolute position once skip-advances stop
	pos        Length // current absolute lookahead cursor
	tokenEnd   Length
	hasEnd     bool

	ranges     []Range
	rangeIndex int

	lookahead      rune
	lookaheadWidth int
	atEOF          bool

	resultSymbol Symbol
	hasResult    bool
	isKeyword    bool
}

// NewLexer creates a lexer positioned at the start of input, honoring the
// given included ranges (nil means "the whole document").
func NewLexer(input Input, ranges []Range) *Lexer {
	if len(ranges) == 0 {
		ranges = defaultRanges()
	}
	l := &Lexer{input: input, encoding: input.Encoding(), ranges: ranges}
	l.seek(Length{Bytes: ranges[0].StartByte, Point: ranges[0].StartPoint})
	return l
}

func (l *Lexer) seek(at Length) {
	l.pos = at
	l.refill()
	l.decodeLookahead()
}

func (l *Lexer) refill() {
	if l.chunk != nil && l.pos.Bytes >= l.chunkBase && l.pos.Bytes < l.chunkBase+uint32(len(l.chunk)) {
		return
	}
	l.chunk = l.input.Read(l.pos.Bytes, l.pos.Point)
	l.chunkBase = l.pos.Bytes
}

func (l *Lexer) currentChunk() []byte {
	if l.chunk == nil {
		return nil
	}
	off := int(l.pos.Bytes) - int(l.chunkBase)
	if off < 0 || off >= len(l.chunk) {
		return nil
	}
	return l.chunk[off:]
}

func (l *Lexer) decodeLookahead() {
	c := l.currentChunk()
	if len(c) == 0 {
		l.lookahead, l.lookaheadWidth, l.atEOF = 0, 0, true
		return
	}
	r, w := decodeRune(c, l.encoding)
	if r == utf8.RuneError && w <= 1 {
		l.lookahead, l.lookaheadWidth, l.atEOF = 0, 0, true
		return
	}
	l.lookahead, l.lookaheadWidth, l.atEOF = r, w, false
}

// Lookahead returns the code point under the cursor, or 0 at EOF.
func (l *Lexer) Lookahead() rune { return l.lookahead }

// EOF reports whether the cursor has reached the end of the last
// included range.
func (l *Lexer) EOF() bool { return l.atEOF }

// IsAtIncludedRangeStart reports whether the cursor sits exactly at the
// start of an included range (spec §4.2, used by external scanners that
// need to special-case embedded-language boundaries).
func (l *Lexer) IsAtIncludedRangeStart() bool {
	r := l.ranges[l.rangeIndex]
	return l.pos.Bytes == r.StartByte
}

// Advance consumes the current lookahead code point. If skip is true the
// consumed span becomes padding (trivia before the token proper);
// otherwise it becomes part of the token's content once MarkEnd is called
// (spec §4.2 step 2/3).
func (l *Lexer) Advance(skip bool) {
	if l.atEOF {
		return
	}
	width := l.lookaheadWidth
	r := l.lookahead

	step := Length{Bytes: uint32(width)}
	if r == '\n' {
		step.Point = Point{Row: 1, Column: 0}
	} else {
		step.Point = Point{Row: 0, Column: uint32(width)}
	}
	l.pos = l.pos.Add(step)

	// Crossing into the next included range skips the gap entirely.
	r2 := l.ranges[l.rangeIndex]
	if l.pos.Bytes >= r2.EndByte && l.rangeIndex+1 < len(l.ranges) {
		l.rangeIndex++
		next := l.ranges[l.rangeIndex]
		l.pos = Length{Bytes: next.StartByte, Point: next.StartPoint}
	}

	if skip {
		l.tokenStart = l.pos
	}

	l.refill()
	l.decodeLookahead()
}

// MarkEnd records the current cursor position as the end of the token
// being recognized; scanners may continue advancing past it purely to
// peek lookahead (spec §4.2 step 5, contributes to lookahead_bytes).
func (l *Lexer) MarkEnd() {
	l.tokenEnd = l.pos
	l.hasEnd = true
}

// GetColumn returns the number of code points since the start of the
// current line (spec §4.2 "get_column counts code points", not the bytes
// Point.Column accumulates). pos.Point.Column is itself a byte offset
// within the line (Advance adds one rune's encoded width per step, reset
// at each '\n'), so it doubles as the line's start byte offset below;
// what's re-decoded from there to pos is genuine code points.
func (l *Lexer) GetColumn() uint32 {
	lineStartByte := l.pos.Bytes - l.pos.Point.Column
	var count uint32
	for offset := lineStartByte; offset < l.pos.Bytes; {
		chunk := l.input.Read(offset, Point{Row: l.pos.Point.Row, Column: offset - lineStartByte})
		if len(chunk) == 0 {
			break
		}
		_, width := decodeRune(chunk, l.encoding)
		if width <= 0 {
			break
		}
		if remaining := l.pos.Bytes - offset; uint32(width) > remaining {
			width = int(remaining)
		}
		offset += uint32(width)
		count++
	}
	return count
}

// SetResultSymbol records the symbol a scanner recognized. If MarkEnd was
// never called, the token ends at the lexer's current position.
func (l *Lexer) SetResultSymbol(sym Symbol) {
	l.resultSymbol = sym
	l.hasResult = true
}

// startToken resets bookkeeping before a fresh lex attempt; skip-advances
// issued up to the first non-skip Advance become this token's padding.
func (l *Lexer) startToken() {
	l.lexStart = l.pos
	l.tokenStart = l.pos
	l.hasEnd = false
	l.hasResult = false
	l.isKeyword = false
}

// token finalizes the current scan into a Token, if SetResultSymbol was
// ever called.
func (l *Lexer) token() (Token, bool) {
	if !l.hasResult {
		return Token{}, false
	}
	end := l.pos
	if l.hasEnd {
		end = l.tokenEnd
	}
	padding := l.tokenStart.Sub(l.lexStart)
	size := subClamped(end, l.tokenStart)
	lookaheadBytes := uint32(0)
	if l.pos.Bytes > end.Bytes {
		lookaheadBytes = l.pos.Bytes - end.Bytes
	}
	return Token{
		Symbol:         l.resultSymbol,
		Text:           l.textBetween(l.tokenStart.Bytes, end.Bytes),
		Padding:        padding,
		Size:           size,
		LookaheadBytes: lookaheadBytes,
		Keyword:        l.isKeyword,
	}, true
}

// fullBufferInput is implemented by Input sources that expose their
// entire backing buffer contiguously, letting the lexer slice out a
// token's text directly instead of joining chunks.
type fullBufferInput interface {
	fullBuffer() (data []byte, base uint32)
}

func (l *Lexer) textBetween(startByte, endByte uint32) string {
	fb, ok := l.input.(fullBufferInput)
	if !ok || endByte < startByte {
		return ""
	}
	data, base := fb.fullBuffer()
	if startByte < base || int(endByte-base) > len(data) {
		return ""
	}
	return string(data[startByte-base : endByte-base])
}

// ExternalLexer is the facade handed to ExternalScanner implementations
// (spec §6 "external scanner VM"); it is the same cursor as Lexer; the
// distinct type exists so a scanner's API surface doesn't expose the
// internal-lexing-only methods (startToken, the LexFn bridge, etc).
type ExternalLexer struct {
	*Lexer
}

// offsetInput serves src as though it began at an arbitrary absolute byte
// offset, rather than 0 (bytesInput always starts at 0).
type offsetInput struct {
	base uint32
	data []byte
}

func (o *offsetInput) Read(byteOffset uint32, _ Point) []byte {
	if byteOffset < o.base {
		return nil
	}
	rel := byteOffset - o.base
	if int(rel) >= len(o.data) {
		return nil
	}
	return o.data[rel:]
}

func (o *offsetInput) Encoding() Encoding { return EncodingUTF8 }

func (o *offsetInput) fullBuffer() ([]byte, uint32) { return o.data, o.base }

// newExternalLexer builds a standalone external lexer over an in-memory
// byte slice that begins at absolute offset startByte, used directly by
// external scanners under unit test and by Lex when bridging to
// ExternalScanner.Scan.
func newExternalLexer(src []byte, startByte, startRow, startCol uint32) *ExternalLexer {
	l := &Lexer{
		input:    &offsetInput{base: startByte, data: src},
		encoding: EncodingUTF8,
		ranges:   defaultRanges(),
	}
	at := Length{Bytes: startByte, Point: Point{Row: startRow, Column: startCol}}
	l.seek(at)
	l.startToken()
	return &ExternalLexer{Lexer: l}
}
