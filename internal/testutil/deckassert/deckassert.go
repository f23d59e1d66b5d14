// Package deckassert builds small but structurally complete presentation
// fixtures for tests and provides assertions over saved decks.
package deckassert

import (
	"archive/zip"
	"bytes"
	"encoding/base64"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

const contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/><Default Extension="xml" ContentType="application/xml"/><Override PartName="/ppt/presentation.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.presentation.main+xml"/><Override PartName="/ppt/slides/slide1.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slide+xml"/></Types>`

const rootRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="ppt/presentation.xml"/></Relationships>`

const presentationXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:presentation xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"><p:sldIdLst><p:sldId id="256" r:id="rId1"/></p:sldIdLst></p:presentation>`

const presentationRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide" Target="slides/slide1.xml"/></Relationships>`

const slideRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId2" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/image" Target="../media/decor.png"/></Relationships>`

// tinyPNG is a valid 1x1 transparent PNG.
const tinyPNGBase64 = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="

// TinyPNG returns a minimal valid PNG image.
func TinyPNG() []byte {
	data, err := base64.StdEncoding.DecodeString(tinyPNGBase64)
	if err != nil {
		panic(err)
	}
	return data
}

// SlideXML renders the fixture slide: a district title shape, a rows x 3
// forecast table, a period label shape, and one decorative picture that the
// populate pipeline is expected to strip.
func SlideXML(rows int) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n")
	b.WriteString(`<p:sld xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"><p:cSld><p:spTree><p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr><p:grpSpPr/>`)

	// District title.
	b.WriteString(`<p:sp><p:nvSpPr><p:cNvPr id="2" name="DistrictTitle"/><p:cNvSpPr/><p:nvPr/></p:nvSpPr><p:spPr/><p:txBody><a:bodyPr/><a:lstStyle/><a:p><a:pPr algn="ctr"/><a:r><a:rPr lang="vi-VN" sz="3200" b="1"><a:solidFill><a:srgbClr val="C00000"/></a:solidFill><a:latin typeface="Times New Roman"/></a:rPr><a:t>TÊN HUYỆN</a:t></a:r></a:p></p:txBody></p:sp>`)

	// Forecast table.
	b.WriteString(`<p:graphicFrame><p:nvGraphicFramePr><p:cNvPr id="3" name="ForecastTable"/><p:cNvGraphicFramePr/><p:nvPr/></p:nvGraphicFramePr><p:xfrm><a:off x="457200" y="1600200"/><a:ext cx="8229600" cy="4525960"/></p:xfrm><a:graphic><a:graphicData uri="http://schemas.openxmlformats.org/drawingml/2006/table"><a:tbl><a:tblPr/><a:tblGrid><a:gridCol w="4114800"/><a:gridCol w="1371600"/><a:gridCol w="2743200"/></a:tblGrid>`)
	for i := 0; i < rows; i++ {
		b.WriteString(`<a:tr h="452596">`)
		// Date and weather description, two paragraphs.
		b.WriteString(`<a:tc><a:txBody><a:bodyPr/><a:p><a:pPr algn="l"/><a:r><a:rPr lang="vi-VN" sz="1400"><a:solidFill><a:srgbClr val="000000"/></a:solidFill><a:latin typeface="Times New Roman"/></a:rPr><a:t>Ngày</a:t></a:r></a:p><a:p><a:r><a:rPr lang="vi-VN" sz="1200" i="1"><a:solidFill><a:srgbClr val="404040"/></a:solidFill></a:rPr><a:t>Thời tiết</a:t></a:r></a:p></a:txBody><a:tcPr/></a:tc>`)
		// Icon column, kept empty in the template.
		b.WriteString(`<a:tc><a:txBody><a:bodyPr/><a:p><a:endParaRPr lang="vi-VN"/></a:p></a:txBody><a:tcPr/></a:tc>`)
		// Temperature column; runs deliberately carry no color so the
		// provisional fill applies.
		b.WriteString(`<a:tc><a:txBody><a:bodyPr/><a:p><a:pPr algn="ctr"/><a:r><a:rPr lang="vi-VN" sz="1400" b="1"/><a:t>35°C</a:t></a:r></a:p><a:p><a:r><a:rPr lang="vi-VN" sz="1400"/><a:t>26°C</a:t></a:r></a:p></a:txBody><a:tcPr/></a:tc>`)
		b.WriteString(`</a:tr>`)
	}
	b.WriteString(`</a:tbl></a:graphicData></a:graphic></p:graphicFrame>`)

	// Period label.
	b.WriteString(`<p:sp><p:nvSpPr><p:cNvPr id="4" name="PeriodLabel"/><p:cNvSpPr/><p:nvPr/></p:nvSpPr><p:spPr/><p:txBody><a:bodyPr/><a:lstStyle/><a:p><a:pPr algn="ctr"/><a:r><a:rPr lang="vi-VN" sz="2000" i="1"><a:solidFill><a:srgbClr val="1F4E79"/></a:solidFill></a:rPr><a:t>Từ ngày</a:t></a:r></a:p></p:txBody></p:sp>`)

	// Decorative picture.
	b.WriteString(`<p:pic><p:nvPicPr><p:cNvPr id="5" name="Decor"/><p:cNvPicPr/><p:nvPr/></p:nvPicPr><p:blipFill><a:blip r:embed="rId2"/><a:stretch><a:fillRect/></a:stretch></p:blipFill><p:spPr><a:xfrm><a:off x="7772400" y="274638"/><a:ext cx="914400" cy="914400"/></a:xfrm><a:prstGeom prst="rect"><a:avLst/></a:prstGeom></p:spPr></p:pic>`)

	b.WriteString(`</p:spTree></p:cSld></p:sld>`)
	return b.String()
}

// TemplateBytes assembles the fixture presentation as zip bytes. The
// content types part declares no png mapping on purpose so the populate
// pipeline has to add one.
func TemplateBytes(rows int) ([]byte, error) {
	return TemplateWithSlide(SlideXML(rows))
}

// TemplateWithSlide assembles the fixture presentation around a
// caller-supplied slide part.
func TemplateWithSlide(slideXML string) ([]byte, error) {
	parts := []struct {
		name string
		data []byte
	}{
		{"[Content_Types].xml", []byte(contentTypesXML)},
		{"_rels/.rels", []byte(rootRelsXML)},
		{"ppt/presentation.xml", []byte(presentationXML)},
		{"ppt/_rels/presentation.xml.rels", []byte(presentationRelsXML)},
		{"ppt/slides/slide1.xml", []byte(slideXML)},
		{"ppt/slides/_rels/slide1.xml.rels", []byte(slideRelsXML)},
		{"ppt/media/decor.png", TinyPNG()},
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, part := range parts {
		w, err := zw.Create(part.name)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(part.data); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteTemplate writes the fixture template into dir and returns its path.
func WriteTemplate(t *testing.T, dir string, rows int) string {
	t.Helper()
	data, err := TemplateBytes(rows)
	if err != nil {
		t.Fatalf("build template: %v", err)
	}
	path := filepath.Join(dir, "template.pptx")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write template: %v", err)
	}
	return path
}

// WriteIcons writes a tiny PNG for each name into dir.
func WriteIcons(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), TinyPNG(), 0o644); err != nil {
			t.Fatalf("write icon %s: %v", name, err)
		}
	}
}

// ListEntries returns the sorted entry names of a saved deck.
func ListEntries(t *testing.T, deckPath string) []string {
	t.Helper()
	reader := openZip(t, deckPath)
	names := make([]string, 0, len(reader.File))
	for _, part := range reader.File {
		names = append(names, part.Name)
	}
	sort.Strings(names)
	return names
}

// ReadEntry returns the bytes of one entry of a saved deck.
func ReadEntry(t *testing.T, deckPath, entryName string) []byte {
	t.Helper()
	reader := openZip(t, deckPath)
	for _, part := range reader.File {
		if part.Name != entryName {
			continue
		}
		rc, err := part.Open()
		if err != nil {
			t.Fatalf("open entry %q: %v", entryName, err)
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			t.Fatalf("read entry %q: %v", entryName, err)
		}
		return data
	}
	t.Fatalf("entry %q not found in %s", entryName, deckPath)
	return nil
}

// AssertEntryContains fails unless the entry holds every wanted substring.
func AssertEntryContains(t *testing.T, deckPath, entryName string, wants ...string) {
	t.Helper()
	data := ReadEntry(t, deckPath, entryName)
	for _, want := range wants {
		if !bytes.Contains(data, []byte(want)) {
			t.Fatalf("entry %q missing %q", entryName, want)
		}
	}
}

func openZip(t *testing.T, path string) *zip.Reader {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("open zip %s: %v", path, err)
	}
	return reader
}
