package printer

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// ESC/POS command constants
const (
	ESC = 0x1B
	GS  = 0x1D
	LF  = 0x0A
)

// Fixed one-shot payloads.
var (
	// CutCommand is GS V 0 (full cut).
	CutCommand = []byte{GS, 'V', 0x00}
	// DrawerCommand is ESC p 0 50 150 (pulse pin 2, 100ms on, 300ms off).
	DrawerCommand = []byte{ESC, 'p', 0x00, 0x32, 0x96}
)

// CodePage selects the character table used for text bytes.
type CodePage string

const (
	// CodePageUTF8 sends text unchanged. Only printers with UTF-8 firmware handle it.
	CodePageUTF8 CodePage = "utf8"
	// CodePage858 is PC858 (Latin-1 with Euro sign), table 19 on Epson TM printers.
	CodePage858 CodePage = "cp858"
)

// Document builds an ESC/POS byte stream for thermal printers.
type Document struct {
	buf     bytes.Buffer
	width   int // print width in characters (32 for 58mm, 48 for 80mm)
	encoder *encoding.Encoder
}

// NewDocument creates a new ESC/POS document with the given character width.
// Common widths: 32 for 58mm paper, 48 for 80mm paper.
func NewDocument(charWidth int, cp CodePage) *Document {
	if charWidth <= 0 {
		charWidth = 48
	}
	d := &Document{width: charWidth}
	d.Init()
	d.SetCodePage(cp)
	return d
}

// Width returns the configured character width.
func (d *Document) Width() int {
	return d.width
}

// Init sends the ESC @ (initialize printer) command.
func (d *Document) Init() *Document {
	d.buf.Write([]byte{ESC, '@'})
	return d
}

// SetCodePage selects a character table (ESC t n) and encodes later text with it.
func (d *Document) SetCodePage(cp CodePage) *Document {
	switch cp {
	case CodePage858:
		d.buf.Write([]byte{ESC, 't', 19})
		d.encoder = encoding.ReplaceUnsupported(charmap.CodePage858.NewEncoder())
	default:
		d.encoder = nil
	}
	return d
}

// FeedLines sends n line feeds.
func (d *Document) FeedLines(n int) *Document {
	for i := 0; i < n; i++ {
		d.buf.WriteByte(LF)
	}
	return d
}

// Text writes a line of text followed by a line feed.
func (d *Document) Text(s string) *Document {
	d.buf.WriteString(d.encode(s))
	d.buf.WriteByte(LF)
	return d
}

// TextF writes a formatted line of text followed by a line feed.
func (d *Document) TextF(format string, args ...interface{}) *Document {
	return d.Text(fmt.Sprintf(format, args...))
}

// Lines writes pre-formatted lines.
func (d *Document) Lines(lines []string) *Document {
	for _, l := range lines {
		d.Text(l)
	}
	return d
}

// Separator prints a full-width separator line.
func (d *Document) Separator(char byte) *Document {
	return d.Text(strings.Repeat(string(char), d.width))
}

// Cut sends the paper cut command (full cut).
func (d *Document) Cut() *Document {
	d.buf.Write(CutCommand)
	return d
}

// OpenDrawer sends the cash drawer kick pulse.
func (d *Document) OpenDrawer() *Document {
	d.buf.Write(DrawerCommand)
	return d
}

// Bytes returns the accumulated ESC/POS byte stream.
func (d *Document) Bytes() []byte {
	return d.buf.Bytes()
}

func (d *Document) encode(s string) string {
	if d.encoder == nil {
		return s
	}
	out, err := d.encoder.String(s)
	if err != nil {
		return s
	}
	return out
}
