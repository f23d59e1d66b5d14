package ooxmlpkg

import (
	"archive/zip"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func fixtureZip(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	parts := map[string]string{
		"[Content_Types].xml":   "<Types/>",
		"ppt/presentation.xml":  "<presentation/>",
		"ppt/slides/slide1.xml": "<slide/>",
	}
	for _, name := range []string{"[Content_Types].xml", "ppt/presentation.xml", "ppt/slides/slide1.xml"} {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(parts[name])); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestOpenBytesAndReadPart(t *testing.T) {
	pkg, err := OpenBytes(fixtureZip(t))
	if err != nil {
		t.Fatalf("OpenBytes: %v", err)
	}

	data, err := pkg.ReadPart("ppt/slides/slide1.xml")
	if err != nil {
		t.Fatalf("ReadPart: %v", err)
	}
	if string(data) != "<slide/>" {
		t.Fatalf("part content %q", data)
	}

	if !pkg.HasPart("ppt/presentation.xml") {
		t.Fatal("HasPart missed an archive part")
	}
	if pkg.HasPart("ppt/missing.xml") {
		t.Fatal("HasPart claimed a missing part")
	}

	_, err = pkg.ReadPart("ppt/missing.xml")
	if !errors.Is(err, ErrPartNotFound) {
		t.Fatalf("want ErrPartNotFound, got %v", err)
	}
}

func TestOpenBytesRejectsGarbage(t *testing.T) {
	_, err := OpenBytes([]byte("not a zip"))
	if !errors.Is(err, ErrOpenFailed) {
		t.Fatalf("want ErrOpenFailed, got %v", err)
	}
}

func TestWritePartOverlay(t *testing.T) {
	pkg, err := OpenBytes(fixtureZip(t))
	if err != nil {
		t.Fatalf("OpenBytes: %v", err)
	}

	buf := []byte("<slide>edited</slide>")
	pkg.WritePart("ppt/slides/slide1.xml", buf)
	buf[1] = 'X' // caller's buffer must not alias the stored copy

	data, err := pkg.ReadPart("ppt/slides/slide1.xml")
	if err != nil {
		t.Fatalf("ReadPart: %v", err)
	}
	if string(data) != "<slide>edited</slide>" {
		t.Fatalf("overlay content %q", data)
	}

	pkg.WritePart("ppt/media/new.png", []byte{1, 2, 3})
	if !pkg.HasPart("ppt/media/new.png") {
		t.Fatal("added part not visible")
	}
}

func TestListParts(t *testing.T) {
	pkg, err := OpenBytes(fixtureZip(t))
	if err != nil {
		t.Fatalf("OpenBytes: %v", err)
	}
	pkg.WritePart("ppt/media/b.png", nil)
	pkg.WritePart("ppt/media/a.png", nil)

	want := []string{
		"[Content_Types].xml",
		"ppt/presentation.xml",
		"ppt/slides/slide1.xml",
		"ppt/media/a.png",
		"ppt/media/b.png",
	}
	if got := pkg.ListParts(); !reflect.DeepEqual(got, want) {
		t.Fatalf("ListParts=%v want %v", got, want)
	}
}

func TestSaveFileRoundTrip(t *testing.T) {
	pkg, err := OpenBytes(fixtureZip(t))
	if err != nil {
		t.Fatalf("OpenBytes: %v", err)
	}
	pkg.WritePart("ppt/slides/slide1.xml", []byte("<slide>edited</slide>"))
	pkg.WritePart("ppt/media/icon1.png", []byte{0x89, 0x50})

	out := filepath.Join(t.TempDir(), "out.pptx")
	if err := pkg.SaveFile(out); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}

	reopened, err := OpenFile(out)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	data, err := reopened.ReadPart("ppt/slides/slide1.xml")
	if err != nil {
		t.Fatalf("ReadPart: %v", err)
	}
	if string(data) != "<slide>edited</slide>" {
		t.Fatalf("saved content %q", data)
	}
	untouched, err := reopened.ReadPart("ppt/presentation.xml")
	if err != nil {
		t.Fatalf("ReadPart: %v", err)
	}
	if string(untouched) != "<presentation/>" {
		t.Fatalf("untouched content %q", untouched)
	}
	if !reopened.HasPart("ppt/media/icon1.png") {
		t.Fatal("added media part missing after save")
	}
}

func TestSaveFileOverwritesExisting(t *testing.T) {
	pkg, err := OpenBytes(fixtureZip(t))
	if err != nil {
		t.Fatalf("OpenBytes: %v", err)
	}

	out := filepath.Join(t.TempDir(), "out.pptx")
	if err := os.WriteFile(out, []byte("stale"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}
	if err := pkg.SaveFile(out); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}

	if _, err := OpenFile(out); err != nil {
		t.Fatalf("reopen after overwrite: %v", err)
	}

	// No temp files left behind.
	entries, err := os.ReadDir(filepath.Dir(out))
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("stray files in output dir: %d entries", len(entries))
	}
}

func TestOpenFileMissing(t *testing.T) {
	_, err := OpenFile(filepath.Join(t.TempDir(), "nope.pptx"))
	if !errors.Is(err, ErrOpenFailed) {
		t.Fatalf("want ErrOpenFailed, got %v", err)
	}
}
