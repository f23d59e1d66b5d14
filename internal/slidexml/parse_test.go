package slidexml

import (
	"testing"

	"github.com/giangph58/Automated-ACB/internal/testutil/deckassert"
)

func parseFixture(t *testing.T) *Slide {
	t.Helper()
	slide, err := Parse([]byte(deckassert.SlideXML(10)))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return slide
}

func TestParseShapes(t *testing.T) {
	slide := parseFixture(t)

	shapes := slide.Shapes()
	if len(shapes) != 4 {
		t.Fatalf("got %d shapes, want 4", len(shapes))
	}

	wantKinds := []ShapeKind{KindShape, KindGraphicFrame, KindShape, KindPicture}
	for i, want := range wantKinds {
		if shapes[i].Kind != want {
			t.Fatalf("shape %d kind=%v want %v", i, shapes[i].Kind, want)
		}
	}

	if idx := slide.FirstTextShape(); idx != 0 {
		t.Fatalf("FirstTextShape=%d want 0", idx)
	}
	if shapes[3].RelID != "rId2" {
		t.Fatalf("picture RelID=%q want rId2", shapes[3].RelID)
	}
}

func TestParseTable(t *testing.T) {
	slide := parseFixture(t)

	table := slide.FirstTable()
	if table == nil {
		t.Fatal("FirstTable returned nil")
	}
	if len(table.Rows) != 10 {
		t.Fatalf("got %d rows, want 10", len(table.Rows))
	}
	if len(table.ColWidths) != 3 {
		t.Fatalf("got %d columns, want 3", len(table.ColWidths))
	}
	if table.OffX != 457200 || table.OffY != 1600200 {
		t.Fatalf("table anchor (%d,%d) want (457200,1600200)", table.OffX, table.OffY)
	}
	if table.ColWidths[1] != 1371600 {
		t.Fatalf("col 1 width=%d want 1371600", table.ColWidths[1])
	}
	if table.Rows[0].Height != 452596 {
		t.Fatalf("row 0 height=%d want 452596", table.Rows[0].Height)
	}
	if len(table.Rows[0].Cells) != 3 {
		t.Fatalf("row 0 has %d cells, want 3", len(table.Rows[0].Cells))
	}
}

func TestParseCellText(t *testing.T) {
	slide := parseFixture(t)
	table := slide.FirstTable()

	if got := table.Rows[0].Cells[0].Text(); got != "Ngày\nThời tiết" {
		t.Fatalf("cell text %q", got)
	}
	if got := table.Rows[0].Cells[2].Text(); got != "35°C\n26°C" {
		t.Fatalf("cell text %q", got)
	}
}

func TestParseRunStyles(t *testing.T) {
	slide := parseFixture(t)
	table := slide.FirstTable()

	runs := table.Rows[0].Cells[0].body.paragraphs[0].runs
	if len(runs) != 1 {
		t.Fatalf("got %d runs, want 1", len(runs))
	}
	style := runs[0].style
	if style.Size != "1400" || style.Color != "000000" || style.Typeface != "Times New Roman" {
		t.Fatalf("unexpected style %+v", style)
	}

	// Temperature runs carry no fill.
	tempStyle := table.Rows[0].Cells[2].body.paragraphs[0].runs[0].style
	if tempStyle.Color != "" || tempStyle.Bold != "1" {
		t.Fatalf("unexpected temperature style %+v", tempStyle)
	}
}

func TestCellRect(t *testing.T) {
	slide := parseFixture(t)
	table := slide.FirstTable()

	x, y, cx, cy, err := table.CellRect(1, 1, 1.0)
	if err != nil {
		t.Fatalf("CellRect: %v", err)
	}
	if x != 457200+4114800 {
		t.Fatalf("x=%d", x)
	}
	if y != 1600200+452596 {
		t.Fatalf("y=%d", y)
	}
	if cx != 1371600 || cy != 452596 {
		t.Fatalf("extent (%d,%d)", cx, cy)
	}

	// Half scale shrinks the box around its center.
	x2, y2, cx2, cy2, err := table.CellRect(1, 1, 0.5)
	if err != nil {
		t.Fatalf("CellRect: %v", err)
	}
	if cx2 != 685800 || cy2 != 226298 {
		t.Fatalf("scaled extent (%d,%d)", cx2, cy2)
	}
	if x2 != x+(1371600-685800)/2 || y2 != y+(452596-226298)/2 {
		t.Fatalf("scaled origin (%d,%d)", x2, y2)
	}
}

func TestCellRectOutOfBounds(t *testing.T) {
	slide := parseFixture(t)
	table := slide.FirstTable()

	if _, _, _, _, err := table.CellRect(10, 0, 1.0); err == nil {
		t.Fatal("expected error for row out of range")
	}
	if _, _, _, _, err := table.CellRect(0, 3, 1.0); err == nil {
		t.Fatal("expected error for column out of range")
	}
}

func TestParseRejectsNonSlide(t *testing.T) {
	if _, err := Parse([]byte(`<doc><body/></doc>`)); err == nil {
		t.Fatal("expected error for xml without a shape tree")
	}
}
