// Package xmlpolicy reads descriptors from Identity Experience Framework policy files.
package xmlpolicy

import (
	"bufio"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/reglet-dev/b2cdeploy/internal/domain/entities"
)

const (
	rootElement       = "TrustFrameworkPolicy"
	basePolicyElement = "BasePolicy"
	policyIDName      = "PolicyId"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ErrNotAPolicy is returned when the document root is not a TrustFrameworkPolicy.
var ErrNotAPolicy = errors.New("document is not a TrustFrameworkPolicy")

// Extractor pulls the PolicyId attribute and the BasePolicy/PolicyId text out
// of a policy document. Element names are matched on their local part so the
// default policy namespace does not matter.
type Extractor struct{}

// NewExtractor creates a new descriptor extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract reads just enough of r to describe the document. A missing
// BasePolicy yields an empty ParentID.
func (e *Extractor) Extract(sourceFile string, r io.Reader) (entities.PolicyDocument, error) {
	doc := entities.PolicyDocument{SourceFile: sourceFile}

	br := bufio.NewReader(r)
	if prefix, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(prefix, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	dec := xml.NewDecoder(br)

	var (
		depth     int
		sawRoot   bool
		inBase    bool
		inBaseID  bool
		baseIDBuf strings.Builder
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return doc, fmt.Errorf("invalid XML: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			switch {
			case depth == 1:
				if t.Name.Local != rootElement {
					return doc, fmt.Errorf("%w: root element is %s", ErrNotAPolicy, t.Name.Local)
				}
				sawRoot = true
				doc.ID = strings.TrimSpace(attr(t, policyIDName))
			case depth == 2 && t.Name.Local == basePolicyElement:
				inBase = true
			case depth == 3 && inBase && t.Name.Local == policyIDName:
				inBaseID = true
			}

		case xml.CharData:
			if inBaseID {
				baseIDBuf.Write(t)
			}

		case xml.EndElement:
			switch {
			case depth == 3 && inBaseID:
				inBaseID = false
			case depth == 2 && inBase:
				doc.ParentID = strings.TrimSpace(baseIDBuf.String())
				return doc, nil
			}
			depth--
		}
	}

	if !sawRoot {
		return doc, fmt.Errorf("%w: empty document", ErrNotAPolicy)
	}

	return doc, nil
}

func attr(el xml.StartElement, name string) string {
	for _, a := range el.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}
