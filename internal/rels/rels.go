// Package rels parses and amends OPC relationship parts (.rels).
package rels

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

const TypeImage = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"
const TypeSlide = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide"

type Relationship struct {
	ID         string
	Type       string
	Target     string
	TargetMode string
}

type Rels struct {
	ByID map[string]Relationship
}

func Parse(r io.Reader) (*Rels, error) {
	decoder := xml.NewDecoder(r)
	out := &Rels{ByID: map[string]Relationship{}}

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse rels: %w", err)
		}

		start, ok := token.(xml.StartElement)
		if !ok || start.Name.Local != "Relationship" {
			continue
		}

		rel := Relationship{}
		for _, attr := range start.Attr {
			switch strings.ToLower(attr.Name.Local) {
			case "id":
				rel.ID = attr.Value
			case "type":
				rel.Type = attr.Value
			case "target":
				rel.Target = attr.Value
			case "targetmode":
				rel.TargetMode = attr.Value
			}
		}

		if rel.ID != "" {
			out.ByID[rel.ID] = rel
		}
	}

	return out, nil
}

func (r *Rels) Resolve(id string) (Relationship, bool) {
	if r == nil || r.ByID == nil {
		return Relationship{}, false
	}
	rel, ok := r.ByID[id]
	return rel, ok
}

// OfType returns all relationships with the given type, sorted by the
// numeric suffix of their IDs so callers get a deterministic order.
func (r *Rels) OfType(relType string) []Relationship {
	if r == nil {
		return nil
	}
	var out []Relationship
	for _, rel := range r.ByID {
		if rel.Type == relType {
			out = append(out, rel)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return relIDNum(out[i].ID) < relIDNum(out[j].ID)
	})
	return out
}

// NextID returns the first unused rId above every existing one.
func (r *Rels) NextID() string {
	max := 0
	if r != nil {
		for id := range r.ByID {
			if n := relIDNum(id); n > max {
				max = n
			}
		}
	}
	return "rId" + strconv.Itoa(max+1)
}

func relIDNum(id string) int {
	n, err := strconv.Atoi(strings.TrimPrefix(id, "rId"))
	if err != nil {
		return 0
	}
	return n
}

// Append splices a new Relationship element into raw .rels bytes, right
// before the closing Relationships tag, keeping the rest of the part
// byte-identical.
func Append(data []byte, rel Relationship) ([]byte, error) {
	idx := bytes.LastIndex(data, []byte("</Relationships>"))
	if idx < 0 {
		return nil, fmt.Errorf("append rels: closing tag not found")
	}

	var entry bytes.Buffer
	entry.WriteString(`<Relationship Id="`)
	xml.EscapeText(&entry, []byte(rel.ID))
	entry.WriteString(`" Type="`)
	xml.EscapeText(&entry, []byte(rel.Type))
	entry.WriteString(`" Target="`)
	xml.EscapeText(&entry, []byte(rel.Target))
	entry.WriteString(`"`)
	if rel.TargetMode != "" {
		entry.WriteString(` TargetMode="`)
		xml.EscapeText(&entry, []byte(rel.TargetMode))
		entry.WriteString(`"`)
	}
	entry.WriteString(`/>`)

	out := make([]byte, 0, len(data)+entry.Len())
	out = append(out, data[:idx]...)
	out = append(out, entry.Bytes()...)
	out = append(out, data[idx:]...)
	return out, nil
}
