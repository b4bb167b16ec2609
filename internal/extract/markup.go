// Package extract turns a program watch page into a normalized StreamRecord.
//
// The page carries its metadata as JSON in the data-props attribute of a
// script element. LocateEmbeddedNode finds that element, DecodePayload parses
// the attribute and Normalizer maps the tree onto domain.StreamRecord.
package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"nicodb/internal/domain"
)

const (
	embeddedNodeSelector = "script[data-props]"
	embeddedDataAttr     = "data-props"
)

// LocateEmbeddedNode parses html permissively and returns the first script
// element carrying a data-props attribute, in document order
func LocateEmbeddedNode(html string) (*goquery.Selection, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}

	node := doc.Find(embeddedNodeSelector).First()
	if node.Length() == 0 {
		return nil, domain.ErrEmbeddedDataNotFound
	}
	return node, nil
}
