package extract

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/goccy/go-json"

	"nicodb/internal/domain"
)

// Payload is a node of the decoded data-props tree. Accessors report absent
// or mistyped fields as domain errors carrying the dotted path of the field.
type Payload struct {
	path  string
	value interface{}
}

// DecodePayload reads the data-props attribute of node and parses it as JSON.
// Entities in the attribute are already decoded by the HTML parser.
func DecodePayload(node *goquery.Selection) (*Payload, error) {
	raw, _ := node.Attr(embeddedDataAttr)
	return ParsePayload(raw)
}

// ParsePayload parses raw JSON text into a Payload tree. Numbers decode as float64.
func ParsePayload(raw string) (*Payload, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, domain.ErrEmptyPayload
	}

	var value interface{}
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			return nil, &domain.InvalidJSONError{Offset: syntaxErr.Offset, Err: err}
		}
		return nil, &domain.InvalidJSONError{Err: err}
	}

	return &Payload{value: value}, nil
}

func (p *Payload) childPath(key string) string {
	if p.path == "" {
		return key
	}
	return p.path + "." + key
}

func (p *Payload) object() (map[string]interface{}, error) {
	obj, ok := p.value.(map[string]interface{})
	if !ok {
		path := p.path
		if path == "" {
			path = "$"
		}
		return nil, &domain.InvalidFieldError{Field: path, Value: p.value, Reason: "not an object"}
	}
	return obj, nil
}

// Has reports whether key is present on this object node. A JSON null counts as absent.
func (p *Payload) Has(key string) bool {
	obj, ok := p.value.(map[string]interface{})
	if !ok {
		return false
	}
	v, ok := obj[key]
	return ok && v != nil
}

// Get returns the child node under key
func (p *Payload) Get(key string) (*Payload, error) {
	obj, err := p.object()
	if err != nil {
		return nil, err
	}

	v, ok := obj[key]
	if !ok || v == nil {
		return nil, &domain.MissingFieldError{Field: p.childPath(key)}
	}
	return &Payload{path: p.childPath(key), value: v}, nil
}

// Require checks that every key is present, in order, and reports the first absent one
func (p *Payload) Require(keys ...string) error {
	for _, key := range keys {
		if _, err := p.Get(key); err != nil {
			return err
		}
	}
	return nil
}

// Text returns the string under key
func (p *Payload) Text(key string) (string, error) {
	child, err := p.Get(key)
	if err != nil {
		return "", err
	}

	s, ok := child.value.(string)
	if !ok {
		return "", &domain.InvalidFieldError{Field: child.path, Value: child.value, Reason: "not a string"}
	}
	return s, nil
}

// Int64 returns the integral JSON number under key
func (p *Payload) Int64(key string) (int64, error) {
	child, err := p.Get(key)
	if err != nil {
		return 0, err
	}

	f, ok := child.value.(float64)
	if !ok {
		return 0, &domain.InvalidFieldError{Field: child.path, Value: child.value, Reason: "not a number"}
	}
	n, ok := integral(f)
	if !ok {
		return 0, &domain.InvalidFieldError{Field: child.path, Value: child.value, Reason: "not an integer"}
	}
	return n, nil
}

// ID returns the numeric identifier under key. The value may be a JSON number
// or a string of digits; prefix is removed from strings before parsing.
func (p *Payload) ID(key, prefix string) (int64, error) {
	child, err := p.Get(key)
	if err != nil {
		return 0, err
	}

	switch v := child.value.(type) {
	case float64:
		if n, ok := integral(v); ok {
			return n, nil
		}
	case string:
		if n, err := strconv.ParseInt(strings.TrimPrefix(v, prefix), 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, &domain.InvalidFieldError{Field: child.path, Value: child.value, Reason: "not a numeric id"}
}

func integral(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}
