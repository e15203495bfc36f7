package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
)

// A4 page and margin sizes in twips.
const (
	pageWidth  = 11906
	pageHeight = 16838
	pageMargin = 1440
)

const (
	relNSDoc    = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	relTypeDoc  = relNSDoc + "/officeDocument"
	relTypeHdr  = relNSDoc + "/header"
	relTypeImg  = relNSDoc + "/image"
	contentDoc  = "application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"
	contentHdr  = "application/vnd.openxmlformats-officedocument.wordprocessingml.header+xml"
	contentRels = "application/vnd.openxmlformats-package.relationships+xml"
)

const wordNamespaces = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main" ` +
	`xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" ` +
	`xmlns:wp="http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing"`

// Bytes serializes the document as a complete OOXML package. Everything is
// written into one in-memory buffer; nothing reaches the caller on error.
func (d *Document) Bytes() ([]byte, error) {
	ser := &serializer{doc: d}
	return ser.build()
}

// serializer tracks relationship and drawing IDs while the parts are
// written.
type serializer struct {
	doc *Document

	// media assigned to the main document part, in order
	docImages []*Image
	docPrSeq  int
}

func (s *serializer) build() ([]byte, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}

	docXML := s.documentXML()
	hdrXML := s.headerXML()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	parts := []struct {
		name string
		data []byte
	}{
		{"[Content_Types].xml", s.contentTypesXML()},
		{"_rels/.rels", s.packageRelsXML()},
		{"word/document.xml", docXML},
		{"word/_rels/document.xml.rels", s.documentRelsXML()},
		{"word/header1.xml", hdrXML},
		{"word/_rels/header1.xml.rels", s.headerRelsXML()},
	}
	for i, img := range s.docImages {
		parts = append(parts, struct {
			name string
			data []byte
		}{fmt.Sprintf("word/media/image%d.png", i+1), img.Data})
	}
	if s.doc.Header.Emblem != nil {
		parts = append(parts, struct {
			name string
			data []byte
		}{"word/media/header_emblem.png", s.doc.Header.Emblem.Data})
	}

	for _, p := range parts {
		fw, err := zw.Create(p.name)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", p.name, err)
		}
		if _, err := fw.Write(p.data); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", p.name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize package: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *serializer) validate() error {
	check := func(img *Image, where string) error {
		if img == nil {
			return nil
		}
		if len(img.Data) == 0 || img.WidthEMU <= 0 || img.HeightEMU <= 0 {
			return fmt.Errorf("gambar pada %s tidak valid", where)
		}
		return nil
	}
	for _, p := range s.doc.Cover {
		if err := check(p.Image, "sampul"); err != nil {
			return err
		}
	}
	for _, p := range s.doc.Body {
		if err := check(p.Image, "isi"); err != nil {
			return err
		}
	}
	return check(s.doc.Header.Emblem, "kop")
}

func (s *serializer) contentTypesXML() []byte {
	var b strings.Builder
	b.WriteString(xml.Header)
	b.WriteString(`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">`)
	b.WriteString(`<Default Extension="rels" ContentType="` + contentRels + `"/>`)
	b.WriteString(`<Default Extension="xml" ContentType="application/xml"/>`)
	b.WriteString(`<Default Extension="png" ContentType="image/png"/>`)
	b.WriteString(`<Override PartName="/word/document.xml" ContentType="` + contentDoc + `"/>`)
	b.WriteString(`<Override PartName="/word/header1.xml" ContentType="` + contentHdr + `"/>`)
	b.WriteString(`</Types>`)
	return []byte(b.String())
}

func (s *serializer) packageRelsXML() []byte {
	var b strings.Builder
	b.WriteString(xml.Header)
	b.WriteString(`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)
	b.WriteString(`<Relationship Id="rId1" Type="` + relTypeDoc + `" Target="word/document.xml"/>`)
	b.WriteString(`</Relationships>`)
	return []byte(b.String())
}

func (s *serializer) documentRelsXML() []byte {
	var b strings.Builder
	b.WriteString(xml.Header)
	b.WriteString(`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)
	b.WriteString(`<Relationship Id="rIdHdr1" Type="` + relTypeHdr + `" Target="header1.xml"/>`)
	for i := range s.docImages {
		fmt.Fprintf(&b, `<Relationship Id="rIdImg%d" Type="%s" Target="media/image%d.png"/>`, i+1, relTypeImg, i+1)
	}
	b.WriteString(`</Relationships>`)
	return []byte(b.String())
}

func (s *serializer) headerRelsXML() []byte {
	var b strings.Builder
	b.WriteString(xml.Header)
	b.WriteString(`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)
	if s.doc.Header.Emblem != nil {
		b.WriteString(`<Relationship Id="rIdHdrImg" Type="` + relTypeImg + `" Target="media/header_emblem.png"/>`)
	}
	b.WriteString(`</Relationships>`)
	return []byte(b.String())
}

func (s *serializer) documentXML() []byte {
	var b strings.Builder
	b.WriteString(xml.Header)
	b.WriteString(`<w:document ` + wordNamespaces + `><w:body>`)

	for _, p := range s.doc.Cover {
		s.writeParagraph(&b, p)
	}

	// Close the cover section: its properties ride on a trailing empty
	// paragraph, giving the cover a bordered page and no running header.
	b.WriteString(`<w:p><w:pPr><w:sectPr>`)
	s.writePageGeometry(&b)
	b.WriteString(`<w:pgBorders w:offsetFrom="page">`)
	for _, side := range []string{"top", "left", "bottom", "right"} {
		fmt.Fprintf(&b, `<w:%s w:val="double" w:sz="18" w:space="24" w:color="000000"/>`, side)
	}
	b.WriteString(`</w:pgBorders>`)
	b.WriteString(`</w:sectPr></w:pPr></w:p>`)

	for _, p := range s.doc.Body {
		s.writeParagraph(&b, p)
	}

	// Content section with the running header.
	b.WriteString(`<w:sectPr><w:headerReference w:type="default" r:id="rIdHdr1"/>`)
	s.writePageGeometry(&b)
	b.WriteString(`</w:sectPr>`)

	b.WriteString(`</w:body></w:document>`)
	return []byte(b.String())
}

func (s *serializer) writePageGeometry(b *strings.Builder) {
	fmt.Fprintf(b, `<w:pgSz w:w="%d" w:h="%d"/>`, pageWidth, pageHeight)
	fmt.Fprintf(b, `<w:pgMar w:top="%d" w:right="%d" w:bottom="%d" w:left="%d" w:header="720" w:footer="720"/>`,
		pageMargin, pageMargin, pageMargin, pageMargin)
}

func (s *serializer) headerXML() []byte {
	var b strings.Builder
	b.WriteString(xml.Header)
	b.WriteString(`<w:hdr ` + wordNamespaces + `>`)

	if emblem := s.doc.Header.Emblem; emblem != nil {
		b.WriteString(`<w:p><w:pPr><w:jc w:val="center"/></w:pPr>`)
		s.docPrSeq++
		writeDrawingRun(&b, "rIdHdrImg", emblem, s.docPrSeq)
		b.WriteString(`</w:p>`)
	}
	for _, ln := range s.doc.Header.Lines {
		b.WriteString(`<w:p><w:pPr><w:jc w:val="center"/></w:pPr>`)
		writeRun(&b, Run{Text: ln, Bold: true})
		b.WriteString(`</w:p>`)
	}

	b.WriteString(`</w:hdr>`)
	return []byte(b.String())
}

func (s *serializer) writeParagraph(b *strings.Builder, p Paragraph) {
	b.WriteString(`<w:p>`)
	if p.Align != "" || p.SpacingAfter > 0 {
		b.WriteString(`<w:pPr>`)
		if p.Align != "" {
			fmt.Fprintf(b, `<w:jc w:val="%s"/>`, p.Align)
		}
		if p.SpacingAfter > 0 {
			fmt.Fprintf(b, `<w:spacing w:after="%d"/>`, p.SpacingAfter)
		}
		b.WriteString(`</w:pPr>`)
	}
	if p.Image != nil {
		relID := s.registerImage(p.Image)
		s.docPrSeq++
		writeDrawingRun(b, relID, p.Image, s.docPrSeq)
	}
	for _, r := range p.Runs {
		writeRun(b, r)
	}
	b.WriteString(`</w:p>`)
}

// registerImage assigns a relationship for an image in the main document
// part, reusing the entry when the same image appears twice.
func (s *serializer) registerImage(img *Image) string {
	for i, existing := range s.docImages {
		if existing == img {
			return fmt.Sprintf("rIdImg%d", i+1)
		}
	}
	s.docImages = append(s.docImages, img)
	return fmt.Sprintf("rIdImg%d", len(s.docImages))
}

func writeRun(b *strings.Builder, r Run) {
	b.WriteString(`<w:r>`)
	if r.Bold || r.Size > 0 {
		b.WriteString(`<w:rPr>`)
		if r.Bold {
			b.WriteString(`<w:b/>`)
		}
		if r.Size > 0 {
			// w:sz is in half-points.
			fmt.Fprintf(b, `<w:sz w:val="%d"/><w:szCs w:val="%d"/>`, r.Size*2, r.Size*2)
		}
		b.WriteString(`</w:rPr>`)
	}
	b.WriteString(`<w:t xml:space="preserve">`)
	b.WriteString(escapeXML(r.Text))
	b.WriteString(`</w:t></w:r>`)
}

func writeDrawingRun(b *strings.Builder, relID string, img *Image, id int) {
	name := fmt.Sprintf("Gambar %d", id)
	fmt.Fprintf(b, `<w:r><w:drawing><wp:inline distT="0" distB="0" distL="0" distR="0">`+
		`<wp:extent cx="%d" cy="%d"/>`+
		`<wp:docPr id="%d" name="%s"/>`+
		`<a:graphic xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main">`+
		`<a:graphicData uri="http://schemas.openxmlformats.org/drawingml/2006/picture">`+
		`<pic:pic xmlns:pic="http://schemas.openxmlformats.org/drawingml/2006/picture">`+
		`<pic:nvPicPr><pic:cNvPr id="%d" name="%s"/><pic:cNvPicPr/></pic:nvPicPr>`+
		`<pic:blipFill><a:blip r:embed="%s"/><a:stretch><a:fillRect/></a:stretch></pic:blipFill>`+
		`<pic:spPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="%d" cy="%d"/></a:xfrm>`+
		`<a:prstGeom prst="rect"><a:avLst/></a:prstGeom></pic:spPr>`+
		`</pic:pic></a:graphicData></a:graphic></wp:inline></w:drawing></w:r>`,
		img.WidthEMU, img.HeightEMU, id, name, id, name, relID, img.WidthEMU, img.HeightEMU)
}

// escapeXML escapes free text for insertion into the XML parts. User text
// is inserted verbatim otherwise.
func escapeXML(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
