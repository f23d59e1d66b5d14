// Package slidexml parses presentation slide XML just far enough to edit it:
// it records byte ranges for shapes, table cells, and paragraphs during a
// single streaming pass, then rewrites the slide by splicing replacements
// into the original bytes. Everything outside the touched ranges stays
// byte-identical, so the template's layout and theme survive untouched.
package slidexml

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
)

type ShapeKind int

const (
	KindShape ShapeKind = iota
	KindGraphicFrame
	KindPicture
	KindOther
)

// Shape is a direct child of the slide's shape tree, in document order.
type Shape struct {
	Kind ShapeKind
	// RelID is the image relationship id for picture shapes.
	RelID string

	start, end int64
	offX, offY int64
	body       *textBody
	table      *Table
}

// HasTextBody reports whether the shape carries a text frame.
func (sh *Shape) HasTextBody() bool { return sh != nil && sh.body != nil }

// Table is a table hosted by a graphic frame shape. Offsets and extents are
// in EMU, as stored in the slide.
type Table struct {
	OffX, OffY int64
	ColWidths  []int64
	Rows       []*TableRow
}

type TableRow struct {
	Height int64
	Cells  []*TableCell
}

type TableCell struct {
	body *textBody
}

// Text returns the cell's text with paragraphs joined by newlines.
func (c *TableCell) Text() string {
	if c == nil || c.body == nil {
		return ""
	}
	var buf bytes.Buffer
	for i, p := range c.body.paragraphs {
		if i > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString(p.text())
	}
	return buf.String()
}

type textBody struct {
	start, end int64
	paragraphs []*paragraph
}

type paragraph struct {
	start, end int64
	pPrStart   int64
	pPrEnd     int64
	hasPPr     bool
	runs       []*run
}

func (p *paragraph) text() string {
	var buf bytes.Buffer
	for _, r := range p.runs {
		buf.WriteString(r.text)
	}
	return buf.String()
}

type run struct {
	style RunStyle
	text  string
}

// RunStyle captures the formatting of a text run as raw attribute values,
// empty meaning unset. It round-trips size, weight, italics, underline,
// typeface, and solid color.
type RunStyle struct {
	Size      string // sz, hundredths of a point
	Bold      string // b
	Italic    string // i
	Underline string // u
	Typeface  string
	Color     string // srgbClr val
}

func (s RunStyle) isZero() bool {
	return s == RunStyle{}
}

// Slide holds a parsed slide and the pending edits against it.
type Slide struct {
	data       []byte
	shapes     []*Shape
	spTreeEnd  int64
	maxShapeID int
	edits      []edit
}

type edit struct {
	start, end int64
	repl       []byte
}

func Parse(data []byte) (*Slide, error) {
	s := &Slide{data: data}

	type frame struct {
		name  string
		start int64
	}

	dec := xml.NewDecoder(bytes.NewReader(data))
	var stack []frame

	var (
		curShape *Shape
		curTable *Table
		curRow   *TableRow
		curCell  *TableCell
		curBody  *textBody
		curPara  *paragraph
		curRun   *run
		inTable  bool
		inRPr    bool
		inText   bool
	)

	for {
		prev := dec.InputOffset()
		token, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse slide xml: %w", err)
		}

		switch tok := token.(type) {
		case xml.StartElement:
			parent := ""
			if len(stack) > 0 {
				parent = stack[len(stack)-1].name
			}
			local := tok.Name.Local
			stack = append(stack, frame{local, prev})

			switch local {
			case "sp", "graphicFrame", "pic", "grpSp", "cxnSp":
				if parent == "spTree" {
					curShape = &Shape{Kind: kindFor(local), start: prev}
				}
			case "cNvPr":
				if id, err := strconv.Atoi(attr(tok, "id")); err == nil && id > s.maxShapeID {
					s.maxShapeID = id
				}
			case "off":
				if curShape != nil && curShape.Kind == KindGraphicFrame && !inTable {
					curShape.offX = emuAttr(tok, "x")
					curShape.offY = emuAttr(tok, "y")
				}
			case "tbl":
				if curShape != nil && curShape.Kind == KindGraphicFrame && !inTable {
					curTable = &Table{}
					inTable = true
				}
			case "gridCol":
				if inTable && curTable != nil {
					curTable.ColWidths = append(curTable.ColWidths, emuAttr(tok, "w"))
				}
			case "tr":
				if inTable && curTable != nil {
					curRow = &TableRow{Height: emuAttr(tok, "h")}
				}
			case "tc":
				if curRow != nil && curCell == nil {
					curCell = &TableCell{}
				}
			case "txBody":
				if curShape == nil {
					break
				}
				body := &textBody{start: prev}
				if curCell != nil {
					curCell.body = body
				} else {
					curShape.body = body
				}
				curBody = body
			case "p":
				if curBody != nil && curPara == nil {
					curPara = &paragraph{start: prev}
				}
			case "pPr":
				if curPara != nil && !curPara.hasPPr {
					curPara.hasPPr = true
					curPara.pPrStart = prev
				}
			case "r":
				if curPara != nil && curRun == nil {
					curRun = &run{}
				}
			case "rPr":
				if curRun != nil {
					inRPr = true
					curRun.style.Size = attr(tok, "sz")
					curRun.style.Bold = attr(tok, "b")
					curRun.style.Italic = attr(tok, "i")
					curRun.style.Underline = attr(tok, "u")
				}
			case "srgbClr":
				if inRPr && parent == "solidFill" && curRun != nil {
					curRun.style.Color = attr(tok, "val")
				}
			case "latin":
				if inRPr && curRun != nil {
					curRun.style.Typeface = attr(tok, "typeface")
				}
			case "t":
				if curRun != nil && parent == "r" {
					inText = true
				}
			case "blip":
				if curShape != nil && curShape.Kind == KindPicture && curShape.RelID == "" {
					curShape.RelID = attr(tok, "embed")
				}
			}

		case xml.EndElement:
			if len(stack) == 0 {
				return nil, fmt.Errorf("parse slide xml: unbalanced element %q", tok.Name.Local)
			}
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			end := dec.InputOffset()

			switch top.name {
			case "sp", "graphicFrame", "pic", "grpSp", "cxnSp":
				if curShape != nil && top.start == curShape.start {
					curShape.end = end
					s.shapes = append(s.shapes, curShape)
					curShape = nil
				}
			case "spTree":
				s.spTreeEnd = end
			case "tbl":
				if inTable && curTable != nil {
					curTable.OffX = curShape.offX
					curTable.OffY = curShape.offY
					curShape.table = curTable
					curTable = nil
					inTable = false
				}
			case "tr":
				if curRow != nil && curTable != nil {
					curTable.Rows = append(curTable.Rows, curRow)
					curRow = nil
				}
			case "tc":
				if curCell != nil && curRow != nil {
					curRow.Cells = append(curRow.Cells, curCell)
					curCell = nil
				}
			case "txBody":
				if curBody != nil {
					curBody.end = end
					curBody = nil
				}
			case "p":
				if curPara != nil && curBody != nil {
					curPara.end = end
					curBody.paragraphs = append(curBody.paragraphs, curPara)
					curPara = nil
				}
			case "pPr":
				if curPara != nil && curPara.hasPPr && curPara.pPrEnd == 0 {
					curPara.pPrEnd = end
				}
			case "r":
				if curRun != nil && curPara != nil {
					curPara.runs = append(curPara.runs, curRun)
					curRun = nil
				}
			case "rPr":
				inRPr = false
			case "t":
				inText = false
			}

		case xml.CharData:
			if inText && curRun != nil {
				curRun.text += string(tok)
			}
		}
	}

	if s.spTreeEnd == 0 {
		return nil, fmt.Errorf("parse slide xml: shape tree not found")
	}
	return s, nil
}

func kindFor(local string) ShapeKind {
	switch local {
	case "sp":
		return KindShape
	case "graphicFrame":
		return KindGraphicFrame
	case "pic":
		return KindPicture
	default:
		return KindOther
	}
}

func attr(tok xml.StartElement, local string) string {
	for _, a := range tok.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

func emuAttr(tok xml.StartElement, local string) int64 {
	n, err := strconv.ParseInt(attr(tok, local), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// Shapes returns the slide's top-level shapes in document order.
func (s *Slide) Shapes() []*Shape { return s.shapes }

// FirstTable returns the first table on the slide, or nil.
func (s *Slide) FirstTable() *Table {
	for _, sh := range s.shapes {
		if sh.table != nil {
			return sh.table
		}
	}
	return nil
}

// FirstTextShape returns the index of the first shape with a text frame,
// or -1 when none exists.
func (s *Slide) FirstTextShape() int {
	for i, sh := range s.shapes {
		if sh.Kind == KindShape && sh.HasTextBody() {
			return i
		}
	}
	return -1
}

// CellRect computes the bounding box of a table cell in EMU by summing the
// preceding row heights and column widths against the table anchor, then
// shrinks it to the given scale, centered.
func (t *Table) CellRect(row, col int, scale float64) (x, y, cx, cy int64, err error) {
	if row < 0 || row >= len(t.Rows) || col < 0 || col >= len(t.ColWidths) {
		return 0, 0, 0, 0, fmt.Errorf("cell (%d,%d) out of table bounds", row, col)
	}

	x = t.OffX
	for c := 0; c < col; c++ {
		x += t.ColWidths[c]
	}
	y = t.OffY
	for r := 0; r < row; r++ {
		y += t.Rows[r].Height
	}

	w := t.ColWidths[col]
	h := t.Rows[row].Height
	cx = int64(float64(w) * scale)
	cy = int64(float64(h) * scale)
	x += (w - cx) / 2
	y += (h - cy) / 2
	return x, y, cx, cy, nil
}
