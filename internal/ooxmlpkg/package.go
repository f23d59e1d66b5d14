// Package ooxmlpkg reads and rewrites OOXML packages (pptx, xlsx) as zip
// archives with an in-memory overlay of modified parts.
package ooxmlpkg

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
)

type Package struct {
	reader  *zip.Reader
	index   map[string]*zip.File
	overlay map[string][]byte
}

func OpenFile(path string) (*Package, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrOpenFailed, path, err)
	}
	return OpenBytes(data)
}

func OpenBytes(data []byte) (*Package, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOpenFailed, err)
	}

	index := make(map[string]*zip.File, len(reader.File))
	for _, part := range reader.File {
		index[part.Name] = part
	}

	return &Package{
		reader:  reader,
		index:   index,
		overlay: make(map[string][]byte),
	}, nil
}

// HasPart reports whether the named part exists in the archive or overlay.
func (p *Package) HasPart(name string) bool {
	if p == nil {
		return false
	}
	if _, ok := p.overlay[name]; ok {
		return true
	}
	_, ok := p.index[name]
	return ok
}

// ListParts returns archive part names in original order, with overlay-only
// additions appended in sorted order.
func (p *Package) ListParts() []string {
	if p == nil || p.reader == nil {
		return nil
	}

	names := make([]string, 0, len(p.reader.File)+len(p.overlay))
	seen := make(map[string]struct{}, len(p.reader.File))
	for _, part := range p.reader.File {
		names = append(names, part.Name)
		seen[part.Name] = struct{}{}
	}

	extras := make([]string, 0, len(p.overlay))
	for name := range p.overlay {
		if _, ok := seen[name]; !ok {
			extras = append(extras, name)
		}
	}
	sort.Strings(extras)
	return append(names, extras...)
}

func (p *Package) ReadPart(name string) ([]byte, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: package not initialized", ErrOpenFailed)
	}

	if data, ok := p.overlay[name]; ok {
		return append([]byte(nil), data...), nil
	}

	part, ok := p.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPartNotFound, name)
	}

	rc, err := part.Open()
	if err != nil {
		return nil, fmt.Errorf("read part %q: %w", name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read part %q: %w", name, err)
	}
	return data, nil
}

// WritePart replaces or adds a part. The data is copied, so callers may
// reuse their buffer. New parts (icon media included) are stored deflated
// on save.
func (p *Package) WritePart(name string, data []byte) {
	if p == nil {
		return
	}
	if p.overlay == nil {
		p.overlay = make(map[string][]byte)
	}
	p.overlay[name] = append([]byte(nil), data...)
}

// SaveFile writes the package to path atomically: every part is re-encoded
// into a temp file which then replaces the destination.
func (p *Package) SaveFile(path string) error {
	if p == nil || p.reader == nil {
		return fmt.Errorf("%w: package not initialized", ErrSaveFailed)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrSaveFailed, path, err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if err := p.writeZip(tmp); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: %s: %v", ErrSaveFailed, path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrSaveFailed, path, err)
	}

	if err := replaceFile(tmpName, path); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrSaveFailed, path, err)
	}
	committed = true
	return nil
}

func (p *Package) writeZip(w io.Writer) error {
	zw := zip.NewWriter(w)
	written := make(map[string]struct{}, len(p.reader.File)+len(p.overlay))

	for _, part := range p.reader.File {
		name := part.Name
		written[name] = struct{}{}

		if part.FileInfo().IsDir() {
			if err := writeEntry(zw, name, nil, true); err != nil {
				_ = zw.Close()
				return fmt.Errorf("write part %q: %v", name, err)
			}
			continue
		}

		data, ok := p.overlay[name]
		if !ok {
			var err error
			data, err = p.ReadPart(name)
			if err != nil {
				_ = zw.Close()
				return err
			}
		}
		if err := writeEntry(zw, name, data, false); err != nil {
			_ = zw.Close()
			return fmt.Errorf("write part %q: %v", name, err)
		}
	}

	extras := make([]string, 0, len(p.overlay))
	for name := range p.overlay {
		if _, ok := written[name]; !ok {
			extras = append(extras, name)
		}
	}
	sort.Strings(extras)
	for _, name := range extras {
		if err := writeEntry(zw, name, p.overlay[name], false); err != nil {
			_ = zw.Close()
			return fmt.Errorf("write part %q: %v", name, err)
		}
	}

	return zw.Close()
}

func writeEntry(zw *zip.Writer, name string, data []byte, dir bool) error {
	header := &zip.FileHeader{Name: name, Method: zip.Deflate}
	if dir {
		header.Method = zip.Store
	}
	entry, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	_, err = entry.Write(data)
	return err
}

func replaceFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	} else {
		if _, statErr := os.Stat(dst); statErr == nil {
			if removeErr := os.Remove(dst); removeErr != nil {
				return removeErr
			}
			return os.Rename(src, dst)
		}
		return err
	}
}
