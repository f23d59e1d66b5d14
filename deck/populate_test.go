package deck

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/giangph58/Automated-ACB/internal/testutil/deckassert"
)

func testForecast(t *testing.T, iconDir string) Forecast {
	t.Helper()
	f := Forecast{
		District: "Huyện Cần Giờ",
		Period:   "Từ ngày 30/6 - 9/7 năm 2025",
	}
	for i := 0; i < TableRows; i++ {
		f.Rows[i] = RowContent{
			DateWeather: fmt.Sprintf("Ngày %02d/07/2025 (Thứ %d)\nNgày nắng, không mưa", i+1, i%7+2),
			TempRange:   "35°C\n26°C",
		}
	}
	if iconDir != "" {
		f.Rows[0].IconPath = filepath.Join(iconDir, "hs_hc_nr_nt.png")
		f.Rows[3].IconPath = filepath.Join(iconDir, "hs_hc_hr_nt.png")
	}
	return f
}

func openFixture(t *testing.T, rows int) *Document {
	t.Helper()
	data, err := deckassert.TemplateBytes(rows)
	if err != nil {
		t.Fatalf("build template: %v", err)
	}
	doc, err := OpenBytes(data)
	if err != nil {
		t.Fatalf("OpenBytes: %v", err)
	}
	return doc
}

func TestPopulateForecast(t *testing.T) {
	iconDir := t.TempDir()
	deckassert.WriteIcons(t, iconDir, "hs_hc_nr_nt.png", "hs_hc_hr_nt.png")

	doc := openFixture(t, 10)
	if err := doc.PopulateForecast(testForecast(t, iconDir)); err != nil {
		t.Fatalf("PopulateForecast: %v", err)
	}

	out := filepath.Join(t.TempDir(), "out.pptx")
	if err := doc.SaveFile(out); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}

	deckassert.AssertEntryContains(t, out, "ppt/slides/slide1.xml",
		"Huyện Cần Giờ",
		"Từ ngày 30/6 - 9/7 năm 2025",
		"Ngày 01/07/2025",
		"Ngày 10/07/2025",
	)

	// The decorative template picture is gone, the icons are in.
	slideXML := string(deckassert.ReadEntry(t, out, "ppt/slides/slide1.xml"))
	if strings.Contains(slideXML, `name="Decor"`) {
		t.Fatal("template picture not stripped")
	}
	if !strings.Contains(slideXML, "acbIcon") {
		t.Fatal("no inserted icon reference in slide")
	}

	entries := deckassert.ListEntries(t, out)
	found := 0
	for _, name := range entries {
		if strings.HasPrefix(name, "ppt/media/acbIcon") {
			found++
		}
	}
	if found != 2 {
		t.Fatalf("got %d icon media parts, want 2", found)
	}

	// Each icon got its own relationship on the slide.
	deckassert.AssertEntryContains(t, out, "ppt/slides/_rels/slide1.xml.rels",
		"../media/acbIcon1.png",
		"../media/acbIcon2.png",
	)
	deckassert.AssertEntryContains(t, out, "[Content_Types].xml", `Extension="png"`)

	if alerts := doc.Alerts(); len(alerts) != 0 {
		t.Fatalf("unexpected alerts: %v", alerts)
	}
}

func TestPopulateForecastNoIcons(t *testing.T) {
	doc := openFixture(t, 10)
	if err := doc.PopulateForecast(testForecast(t, "")); err != nil {
		t.Fatalf("PopulateForecast: %v", err)
	}

	out := filepath.Join(t.TempDir(), "out.pptx")
	if err := doc.SaveFile(out); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}

	for _, name := range deckassert.ListEntries(t, out) {
		if strings.HasPrefix(name, "ppt/media/acbIcon") {
			t.Fatalf("unexpected icon media part %s", name)
		}
	}
}

func TestPopulateForecastNoTable(t *testing.T) {
	slide := deckassert.SlideXML(10)
	start := strings.Index(slide, "<p:graphicFrame>")
	end := strings.Index(slide, "</p:graphicFrame>") + len("</p:graphicFrame>")
	slide = slide[:start] + slide[end:]

	data, err := deckassert.TemplateWithSlide(slide)
	if err != nil {
		t.Fatalf("build template: %v", err)
	}
	doc, err := OpenBytes(data)
	if err != nil {
		t.Fatalf("OpenBytes: %v", err)
	}

	err = doc.PopulateForecast(testForecast(t, ""))
	if !errors.Is(err, ErrNoTable) {
		t.Fatalf("want ErrNoTable, got %v", err)
	}
}

func TestPopulateForecastTableTooSmall(t *testing.T) {
	doc := openFixture(t, 5)

	err := doc.PopulateForecast(testForecast(t, ""))
	if !errors.Is(err, ErrTableTooSmall) {
		t.Fatalf("want ErrTableTooSmall, got %v", err)
	}
}

func TestPopulateForecastDistrictShapeAlert(t *testing.T) {
	// Demote both text shapes to connector shapes: the district lookup
	// finds nothing, but the period paragraph at shape index 2 still
	// exists, so the deck is produced with an alert.
	slide := deckassert.SlideXML(10)
	slide = strings.ReplaceAll(slide, "<p:sp>", "<p:cxnSp>")
	slide = strings.ReplaceAll(slide, "</p:sp>", "</p:cxnSp>")

	data, err := deckassert.TemplateWithSlide(slide)
	if err != nil {
		t.Fatalf("build template: %v", err)
	}
	doc, err := OpenBytes(data)
	if err != nil {
		t.Fatalf("OpenBytes: %v", err)
	}

	if err := doc.PopulateForecast(testForecast(t, "")); err != nil {
		t.Fatalf("PopulateForecast: %v", err)
	}

	alerts := doc.Alerts()
	if len(alerts) != 1 || alerts[0].Code != "DISTRICT_SHAPE_NOT_FOUND" {
		t.Fatalf("alerts=%v", alerts)
	}
}

func TestPopulateForecastUnsupportedIconType(t *testing.T) {
	iconDir := t.TempDir()
	deckassert.WriteIcons(t, iconDir, "bad.svg")

	doc := openFixture(t, 10)
	f := testForecast(t, "")
	f.Rows[0].IconPath = filepath.Join(iconDir, "bad.svg")

	if err := doc.PopulateForecast(f); err == nil {
		t.Fatal("expected error for unsupported image type")
	}
}

func TestPopulateForecastMissingIconFile(t *testing.T) {
	doc := openFixture(t, 10)
	f := testForecast(t, "")
	f.Rows[0].IconPath = filepath.Join(t.TempDir(), "absent.png")

	if err := doc.PopulateForecast(f); err == nil {
		t.Fatal("expected error for missing icon file")
	}
}
