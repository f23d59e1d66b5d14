package deck

import (
	"bytes"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/giangph58/Automated-ACB/internal/rels"
	"github.com/giangph58/Automated-ACB/internal/slidexml"
)

// TableRows is the fixed number of forecast rows every deck carries.
const TableRows = 10

const (
	colDateWeather = 0
	colIcon        = 1
	colTemperature = 2
)

// RowContent is one forecast day as it appears in the deck table.
type RowContent struct {
	// DateWeather is the two-line date + weather description cell text.
	DateWeather string
	// TempRange is the two-line high/low temperature cell text.
	TempRange string
	// IconPath points at the weather icon image for this row; empty means
	// no icon matched.
	IconPath string
}

// Forecast is everything PopulateForecast writes into a template copy.
type Forecast struct {
	Rows     [TableRows]RowContent
	District string
	Period   string
}

// PopulateForecast runs the full population pipeline: table text, picture
// strip, icon insertion, district header, period header. The slide part is
// only rewritten if every step succeeds.
func (d *Document) PopulateForecast(f Forecast) error {
	slidePath, err := d.firstSlide()
	if err != nil {
		return err
	}
	slideXML, err := d.pkg.ReadPart(slidePath)
	if err != nil {
		return fmt.Errorf("deck: read slide: %w", err)
	}
	slide, err := slidexml.Parse(slideXML)
	if err != nil {
		return fmt.Errorf("deck: %w", err)
	}

	table := slide.FirstTable()
	if table == nil {
		return ErrNoTable
	}
	if len(table.Rows) < TableRows || len(table.ColWidths) < 3 {
		return fmt.Errorf("%w: %d rows, %d columns", ErrTableTooSmall, len(table.Rows), len(table.ColWidths))
	}

	for i, row := range f.Rows {
		if err := slide.SetCellText(table, i, colDateWeather, row.DateWeather, false); err != nil {
			return fmt.Errorf("deck: row %d: %w", i, err)
		}
		if err := slide.SetCellText(table, i, colTemperature, row.TempRange, true); err != nil {
			return fmt.Errorf("deck: row %d: %w", i, err)
		}
	}

	if n := slide.RemovePictures(); n > 0 {
		d.logger.Debug("stripped template pictures", "count", n)
	}

	for i, row := range f.Rows {
		if row.IconPath == "" {
			continue
		}
		if err := d.insertIcon(slide, table, i, row.IconPath); err != nil {
			return fmt.Errorf("deck: row %d icon: %w", i, err)
		}
	}

	if idx := slide.FirstTextShape(); idx < 0 {
		d.addAlert("DISTRICT_SHAPE_NOT_FOUND", "no text shape for district name; deck saved without it")
	} else if err := slide.SetShapeText(idx, f.District); err != nil {
		return fmt.Errorf("deck: district: %w", err)
	}

	if err := slide.SetShapeParagraphText(2, 0, f.Period, false); err != nil {
		return fmt.Errorf("deck: period: %w", err)
	}

	out, err := slide.Bytes()
	if err != nil {
		return fmt.Errorf("deck: %w", err)
	}
	d.pkg.WritePart(slidePath, out)
	return nil
}

// insertIcon adds the image as a media part, registers an image
// relationship on the slide, and places the picture in a centered
// sub-rectangle of the icon column cell.
func (d *Document) insertIcon(slide *slidexml.Slide, table *slidexml.Table, row int, iconPath string) error {
	img, err := os.ReadFile(iconPath)
	if err != nil {
		return err
	}

	ext := strings.ToLower(strings.TrimPrefix(path.Ext(iconPath), "."))
	if ext == "" {
		ext = "png"
	}
	if err := d.ensureImageContentType(ext); err != nil {
		return err
	}

	mediaPath := d.nextMediaName(ext)
	d.pkg.WritePart(mediaPath, img)

	relID, err := d.addImageRel("../media/" + path.Base(mediaPath))
	if err != nil {
		return err
	}

	x, y, cx, cy, err := table.CellRect(row, colIcon, d.iconScale)
	if err != nil {
		return err
	}
	return slide.InsertPicture(relID, x, y, cx, cy)
}

func (d *Document) nextMediaName(ext string) string {
	for i := 1; ; i++ {
		name := fmt.Sprintf("ppt/media/acbIcon%d.%s", i, ext)
		if !d.pkg.HasPart(name) {
			return name
		}
	}
}

func (d *Document) addImageRel(target string) (string, error) {
	data, err := d.pkg.ReadPart(d.relsPath)
	if err != nil {
		return "", fmt.Errorf("read slide rels: %w", err)
	}
	parsed, err := rels.Parse(bytes.NewReader(data))
	if err != nil {
		return "", err
	}

	id := parsed.NextID()
	out, err := rels.Append(data, rels.Relationship{ID: id, Type: rels.TypeImage, Target: target})
	if err != nil {
		return "", err
	}
	d.pkg.WritePart(d.relsPath, out)
	return id, nil
}

var imageContentTypes = map[string]string{
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
	"bmp":  "image/bmp",
}

// ensureImageContentType adds a Default content-type mapping for the image
// extension if the template does not already declare one.
func (d *Document) ensureImageContentType(ext string) error {
	ctype, ok := imageContentTypes[ext]
	if !ok {
		return fmt.Errorf("unsupported icon image type %q", ext)
	}

	const part = "[Content_Types].xml"
	data, err := d.pkg.ReadPart(part)
	if err != nil {
		return fmt.Errorf("read content types: %w", err)
	}
	if bytes.Contains(data, []byte(`Extension="`+ext+`"`)) {
		return nil
	}

	idx := bytes.LastIndex(data, []byte("</Types>"))
	if idx < 0 {
		return fmt.Errorf("content types part has no closing tag")
	}
	entry := fmt.Sprintf(`<Default Extension=%q ContentType=%q/>`, ext, ctype)
	out := make([]byte, 0, len(data)+len(entry))
	out = append(out, data[:idx]...)
	out = append(out, entry...)
	out = append(out, data[idx:]...)
	d.pkg.WritePart(part, out)
	return nil
}
