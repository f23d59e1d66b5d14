package slidexml

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"sort"
	"strings"
)

// ProvisionalColor marks auto-generated text so it stands out from hand-set
// template text during review.
const ProvisionalColor = "4472C4"

// SetCellText writes up to two lines of text into a table cell, one
// paragraph per line. Paragraphs that already carry styled runs keep their
// styling via cyclic reuse (see BuildStyledRuns); bare paragraphs get plain
// runs. A missing second paragraph is created.
func (s *Slide) SetCellText(t *Table, row, col int, text string, provisional bool) error {
	if row < 0 || row >= len(t.Rows) || col < 0 || col >= len(t.Rows[row].Cells) {
		return fmt.Errorf("cell (%d,%d) out of table bounds", row, col)
	}
	cell := t.Rows[row].Cells[col]
	if cell.body == nil {
		return fmt.Errorf("cell (%d,%d) has no text body", row, col)
	}

	parts := strings.SplitN(text, "\n", 2)
	line1 := parts[0]
	line2 := ""
	if len(parts) > 1 {
		line2 = parts[1]
	}

	return s.writeLines(cell.body, []string{line1, line2}, provisional)
}

// writeLines rewrites the body's first len(lines) paragraphs in place and
// appends plain paragraphs for lines beyond the existing count.
func (s *Slide) writeLines(body *textBody, lines []string, provisional bool) error {
	var appended bytes.Buffer

	for i, line := range lines {
		if i < len(body.paragraphs) {
			para := body.paragraphs[i]
			s.replace(para.start, para.end, s.rebuildParagraph(para, line, provisional))
			continue
		}
		appended.WriteString("<a:p><a:r><a:t>")
		xmlEscape(&appended, line)
		appended.WriteString("</a:t></a:r></a:p>")
	}

	if appended.Len() > 0 {
		at, err := closeTagStart(s.data, body.end)
		if err != nil {
			return err
		}
		s.insert(at, appended.Bytes())
	}
	return nil
}

// rebuildParagraph regenerates a paragraph around new text. The paragraph
// properties block is carried over verbatim; runs are regenerated from the
// captured styles.
func (s *Slide) rebuildParagraph(para *paragraph, text string, provisional bool) []byte {
	var buf bytes.Buffer
	buf.WriteString("<a:p>")
	if para.hasPPr {
		buf.Write(s.data[para.pPrStart:para.pPrEnd])
	}

	if len(para.runs) == 0 {
		buf.WriteString("<a:r><a:t>")
		xmlEscape(&buf, text)
		buf.WriteString("</a:t></a:r>")
	} else {
		styles := make([]RunStyle, len(para.runs))
		for i, r := range para.runs {
			styles[i] = r.style
		}
		buf.WriteString(BuildStyledRuns(styles, text, provisional))
	}

	buf.WriteString("</a:p>")
	return buf.Bytes()
}

// BuildStyledRuns splits text into words and emits one run per word, giving
// word i the style at position i modulo the style count. This reapplies a
// template paragraph's run styling proportionally to replacement text of a
// different length. Runs without an explicit color get the provisional
// accent color when provisional is set.
func BuildStyledRuns(styles []RunStyle, text string, provisional bool) string {
	words := strings.Fields(text)
	if len(words) == 0 || len(styles) == 0 {
		var buf bytes.Buffer
		buf.WriteString("<a:r><a:t>")
		xmlEscape(&buf, text)
		buf.WriteString("</a:t></a:r>")
		return buf.String()
	}

	var buf bytes.Buffer
	for i, word := range words {
		style := styles[i%len(styles)]
		if style.Color == "" && provisional {
			style.Color = ProvisionalColor
		}

		buf.WriteString("<a:r>")
		writeRunProps(&buf, style)
		buf.WriteString("<a:t>")
		if i == len(words)-1 {
			xmlEscape(&buf, word)
		} else {
			xmlEscape(&buf, word+" ")
		}
		buf.WriteString("</a:t></a:r>")
	}
	return buf.String()
}

func writeRunProps(buf *bytes.Buffer, style RunStyle) {
	if style.isZero() {
		return
	}

	buf.WriteString("<a:rPr")
	writeAttr(buf, "sz", style.Size)
	writeAttr(buf, "b", style.Bold)
	writeAttr(buf, "i", style.Italic)
	writeAttr(buf, "u", style.Underline)

	if style.Color == "" && style.Typeface == "" {
		buf.WriteString("/>")
		return
	}
	buf.WriteString(">")
	if style.Color != "" {
		buf.WriteString(`<a:solidFill><a:srgbClr val="`)
		xmlEscape(buf, style.Color)
		buf.WriteString(`"/></a:solidFill>`)
	}
	if style.Typeface != "" {
		buf.WriteString(`<a:latin typeface="`)
		xmlEscape(buf, style.Typeface)
		buf.WriteString(`"/>`)
	}
	buf.WriteString("</a:rPr>")
}

func writeAttr(buf *bytes.Buffer, name, value string) {
	if value == "" {
		return
	}
	buf.WriteString(" ")
	buf.WriteString(name)
	buf.WriteString(`="`)
	xmlEscape(buf, value)
	buf.WriteString(`"`)
}

// SetShapeText replaces the entire text frame of the shape at index with a
// single plain paragraph.
func (s *Slide) SetShapeText(index int, text string) error {
	sh, err := s.shapeAt(index)
	if err != nil {
		return err
	}
	if sh.body == nil {
		return fmt.Errorf("shape %d has no text body", index)
	}

	var buf bytes.Buffer
	buf.WriteString("<a:p><a:r><a:t>")
	xmlEscape(&buf, text)
	buf.WriteString("</a:t></a:r></a:p>")

	paras := sh.body.paragraphs
	if len(paras) == 0 {
		at, err := closeTagStart(s.data, sh.body.end)
		if err != nil {
			return err
		}
		s.insert(at, buf.Bytes())
		return nil
	}
	s.replace(paras[0].start, paras[len(paras)-1].end, buf.Bytes())
	return nil
}

// SetShapeParagraphText rewrites one paragraph of a shape's text frame,
// inheriting its existing run styles.
func (s *Slide) SetShapeParagraphText(index, paraIndex int, text string, provisional bool) error {
	sh, err := s.shapeAt(index)
	if err != nil {
		return err
	}
	if sh.body == nil {
		return fmt.Errorf("shape %d has no text body", index)
	}
	if paraIndex < 0 || paraIndex >= len(sh.body.paragraphs) {
		return fmt.Errorf("shape %d has no paragraph %d", index, paraIndex)
	}

	para := sh.body.paragraphs[paraIndex]
	s.replace(para.start, para.end, s.rebuildParagraph(para, text, provisional))
	return nil
}

// RemovePictures deletes every top-level picture shape and returns how many
// were removed. Relationship entries and media parts stay behind; orphaned
// rels are harmless and match what the template's own editor leaves around.
func (s *Slide) RemovePictures() int {
	n := 0
	kept := s.shapes[:0]
	for _, sh := range s.shapes {
		if sh.Kind == KindPicture {
			s.replace(sh.start, sh.end, nil)
			n++
			continue
		}
		kept = append(kept, sh)
	}
	s.shapes = kept
	return n
}

// InsertPicture appends a picture shape referencing an image relationship,
// positioned and sized in EMU.
func (s *Slide) InsertPicture(relID string, x, y, cx, cy int64) error {
	at, err := closeTagStart(s.data, s.spTreeEnd)
	if err != nil {
		return err
	}

	s.maxShapeID++
	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<p:pic><p:nvPicPr><p:cNvPr id="%d" name="Picture %d"/><p:cNvPicPr/><p:nvPr/></p:nvPicPr>`,
		s.maxShapeID, s.maxShapeID)
	buf.WriteString(`<p:blipFill><a:blip r:embed="`)
	xmlEscape(&buf, relID)
	buf.WriteString(`"/><a:stretch><a:fillRect/></a:stretch></p:blipFill>`)
	fmt.Fprintf(&buf, `<p:spPr><a:xfrm><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/></a:xfrm>`, x, y, cx, cy)
	buf.WriteString(`<a:prstGeom prst="rect"><a:avLst/></a:prstGeom></p:spPr></p:pic>`)

	s.insert(at, buf.Bytes())
	return nil
}

func (s *Slide) shapeAt(index int) (*Shape, error) {
	if index < 0 || index >= len(s.shapes) {
		return nil, fmt.Errorf("shape index %d out of range (%d shapes)", index, len(s.shapes))
	}
	return s.shapes[index], nil
}

func (s *Slide) replace(start, end int64, repl []byte) {
	s.edits = append(s.edits, edit{start: start, end: end, repl: repl})
}

func (s *Slide) insert(at int64, repl []byte) {
	s.edits = append(s.edits, edit{start: at, end: at, repl: append([]byte(nil), repl...)})
}

// Bytes applies all pending edits against the original slide bytes. Edits
// must not overlap; insertions at the same offset keep their issue order.
func (s *Slide) Bytes() ([]byte, error) {
	edits := make([]edit, len(s.edits))
	copy(edits, s.edits)

	order := make([]int, len(edits))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ea, eb := edits[order[a]], edits[order[b]]
		if ea.start != eb.start {
			return ea.start > eb.start
		}
		return order[a] > order[b]
	})

	for i := 1; i < len(order); i++ {
		hi, lo := edits[order[i-1]], edits[order[i]]
		if lo.end > hi.start {
			return nil, fmt.Errorf("conflicting edits at byte %d", hi.start)
		}
	}

	out := append([]byte(nil), s.data...)
	for _, idx := range order {
		e := edits[idx]
		tail := append([]byte(nil), out[e.end:]...)
		out = append(out[:e.start], e.repl...)
		out = append(out, tail...)
	}
	return out, nil
}

// closeTagStart finds the byte offset of an element's closing tag given the
// offset just past it. Using the raw bytes avoids depending on namespace
// prefixes, which the XML decoder does not preserve.
func closeTagStart(data []byte, elementEnd int64) (int64, error) {
	idx := bytes.LastIndex(data[:elementEnd], []byte("</"))
	if idx < 0 {
		return 0, fmt.Errorf("malformed element ending at byte %d", elementEnd)
	}
	return int64(idx), nil
}

func xmlEscape(buf *bytes.Buffer, s string) {
	_ = xml.EscapeText(buf, []byte(s))
}
