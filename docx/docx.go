// Package docx builds Word documents for finished contract sessions. The
// whole document tree is assembled in memory and serialized as an OOXML
// package in one pass, so a failure can never leave a partial file behind.
package docx

// Alignment maps to the w:jc paragraph property.
type Alignment string

const (
	AlignLeft    Alignment = "left"
	AlignCenter  Alignment = "center"
	AlignRight   Alignment = "right"
	AlignJustify Alignment = "both"
)

// Run is one styled span of text.
type Run struct {
	Text string
	Bold bool
	// Size is the font size in points; 0 keeps the document default.
	Size int
}

// Image is embeddable picture data with its display size in EMU.
type Image struct {
	Data      []byte
	WidthEMU  int64
	HeightEMU int64
}

// Paragraph holds an optional inline image followed by text runs.
type Paragraph struct {
	Align Alignment
	Image *Image
	Runs  []Run
	// SpacingAfter is extra space below the paragraph, in twips.
	SpacingAfter int
}

// Header is the running header of the content section: the emblem above
// the organization name lines.
type Header struct {
	Emblem *Image
	Lines  []string
}

// Document is the full tree: a bordered cover section followed by the
// content section carrying the running header.
type Document struct {
	Cover  []Paragraph
	Body   []Paragraph
	Header Header
}

func text(align Alignment, runs ...Run) Paragraph {
	return Paragraph{Align: align, Runs: runs}
}

func line(align Alignment, s string) Paragraph {
	return text(align, Run{Text: s})
}

func boldLine(align Alignment, s string, size int) Paragraph {
	return text(align, Run{Text: s, Bold: true, Size: size})
}

func blank() Paragraph {
	return Paragraph{}
}
