package parser

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bgricker/cite-runner/internal/citeerr"
	"github.com/bgricker/cite-runner/internal/result"
)

const (
	rootElement      = "testng-results"
	suiteElement     = "suite"
	methodElement    = "test-method"
	exceptionElement = "exception"
	op               = "parse result"
)

// metadata elements never describe a test unit.
var metadata = map[string]bool{
	"groups":          true,
	"reporter-output": true,
	"params":          true,
	"attributes":      true,
}

// Parser converts TeamEngine result documents into result trees.
type Parser struct {
	// SkipAsFailure turns every skipped test into a failed one.
	SkipAsFailure bool
}

// NewParser constructs a Parser with the given skip policy.
func NewParser(skipAsFailure bool) *Parser {
	return &Parser{SkipAsFailure: skipAsFailure}
}

// Parse reads a raw result document held in memory.
func (p *Parser) Parse(raw []byte) (result.TestSuiteResult, error) {
	return p.Decode(bytes.NewReader(raw))
}

// ParseFile reads a result document from disk.
func (p *Parser) ParseFile(path string) (result.TestSuiteResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return result.TestSuiteResult{}, fmt.Errorf("open result %q: %w", path, err)
	}
	defer f.Close()

	res, err := p.Decode(f)
	if err != nil {
		return result.TestSuiteResult{}, fmt.Errorf("result %q: %w", path, err)
	}
	return res, nil
}

// Decode reads a result document from r. Nothing is returned unless the whole
// document is well formed.
func (p *Parser) Decode(r io.Reader) (result.TestSuiteResult, error) {
	d := &decoder{dec: xml.NewDecoder(r), skipAsFailure: p.SkipAsFailure}

	if err := d.root(); err != nil {
		return result.TestSuiteResult{}, err
	}

	suites, err := d.suites()
	if err != nil {
		return result.TestSuiteResult{}, err
	}
	if len(suites) != 1 {
		return result.TestSuiteResult{}, citeerr.Newf(citeerr.KindMalformedResult, op,
			"expected exactly one <%s> element, found %d", suiteElement, len(suites))
	}
	if err := d.end(); err != nil {
		return result.TestSuiteResult{}, err
	}

	return result.New(suites[0]), nil
}

type decoder struct {
	dec           *xml.Decoder
	skipAsFailure bool
}

func (d *decoder) token() (xml.Token, error) {
	tok, err := d.dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, citeerr.New(citeerr.KindMalformedResult, op, "unexpected end of document")
		}
		return nil, citeerr.Wrap(citeerr.KindMalformedResult, op, err)
	}
	return tok, nil
}

func (d *decoder) skip() error {
	if err := d.dec.Skip(); err != nil {
		return citeerr.Wrap(citeerr.KindMalformedResult, op, err)
	}
	return nil
}

// root advances past the document element.
func (d *decoder) root() error {
	for {
		tok, err := d.dec.Token()
		if errors.Is(err, io.EOF) {
			return citeerr.Newf(citeerr.KindMalformedResult, op, "missing root element <%s>", rootElement)
		}
		if err != nil {
			return citeerr.Wrap(citeerr.KindMalformedResult, op, err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if start.Name.Local != rootElement {
			return citeerr.Newf(citeerr.KindMalformedResult, op,
				"missing root element <%s>, found <%s>", rootElement, start.Name.Local)
		}
		return nil
	}
}

// end reads the rest of the input. Only whitespace, comments and processing
// instructions may follow the document element.
func (d *decoder) end() error {
	for {
		tok, err := d.dec.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return citeerr.Wrap(citeerr.KindMalformedResult, op, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			return citeerr.Newf(citeerr.KindMalformedResult, op,
				"unexpected <%s> after the <%s> element", t.Name.Local, rootElement)
		case xml.CharData:
			if len(bytes.TrimSpace(t)) > 0 {
				return citeerr.Newf(citeerr.KindMalformedResult, op,
					"unexpected text after the <%s> element", rootElement)
			}
		}
	}
}

// suites collects the suite nodes under the document element.
func (d *decoder) suites() ([]result.Node, error) {
	var suites []result.Node
	for {
		tok, err := d.token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local != suiteElement {
				if err := d.skip(); err != nil {
					return nil, err
				}
				continue
			}
			node, keep, err := d.element(t)
			if err != nil {
				return nil, err
			}
			if !keep {
				// a suite with no test units still counts, as UNKNOWN
				node = result.Group(nodeName(t), nil)
			}
			suites = append(suites, node)
		case xml.EndElement:
			return suites, nil
		}
	}
}

// element builds the node for start. The boolean is false when the element is
// not a test unit and must be left out of the tree: configuration methods, and
// groups that held nothing but configuration methods.
//
// A test-method, or any element carrying a status attribute, is a leaf unless
// it holds test units of its own. Then its status attribute is ignored and
// the status is rolled up from the children like any other group. The suite
// element is always a group.
func (d *decoder) element(start xml.StartElement) (result.Node, bool, error) {
	leafCandidate := start.Name.Local != suiteElement && isLeaf(start)

	children := []result.Node{}
	dropped := 0
	var message, exceptionClass string
	for {
		tok, err := d.token()
		if err != nil {
			return result.Node{}, false, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch {
			case metadata[t.Name.Local]:
				if err := d.skip(); err != nil {
					return result.Node{}, false, err
				}
			case t.Name.Local == exceptionElement:
				if !leafCandidate {
					if err := d.skip(); err != nil {
						return result.Node{}, false, err
					}
					continue
				}
				exceptionClass = attr(t, "class")
				if message, err = d.exceptionMessage(); err != nil {
					return result.Node{}, false, err
				}
			default:
				child, keep, err := d.element(t)
				if err != nil {
					return result.Node{}, false, err
				}
				switch {
				case !keep:
					dropped++
				case leafCandidate && isEmptyGroup(child):
					// holds no test unit, so it cannot turn a leaf into a group
				default:
					children = append(children, child)
				}
			}
		case xml.EndElement:
			if leafCandidate && len(children) == 0 {
				return d.leaf(start, message, exceptionClass)
			}
			keep := len(children) > 0 || dropped == 0
			return result.Group(nodeName(start), children), keep, nil
		}
	}
}

// leaf finishes a test unit once its element has been read.
func (d *decoder) leaf(start xml.StartElement, message, exceptionClass string) (result.Node, bool, error) {
	name := nodeName(start)
	if strings.EqualFold(attr(start, "is-config"), "true") {
		return result.Node{}, false, nil
	}

	raw, ok := lookupAttr(start, "status")
	if !ok {
		return result.Node{}, false, citeerr.Newf(citeerr.KindMalformedResult, op,
			"<%s name=%q> is missing the status attribute", start.Name.Local, name)
	}
	status, err := d.status(raw, start, name)
	if err != nil {
		return result.Node{}, false, err
	}
	if message == "" {
		message = exceptionClass
	}
	return result.Leaf(name, status, message), true, nil
}

// exceptionMessage reads an <exception> body and returns its <message> text.
func (d *decoder) exceptionMessage() (string, error) {
	var message string
	for {
		tok, err := d.token()
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local != "message" {
				if err := d.skip(); err != nil {
					return "", err
				}
				continue
			}
			var text struct {
				Body string `xml:",chardata"`
			}
			if err := d.dec.DecodeElement(&text, &t); err != nil {
				return "", citeerr.Wrap(citeerr.KindMalformedResult, op, err)
			}
			message = strings.TrimSpace(text.Body)
		case xml.EndElement:
			return message, nil
		}
	}
}

func (d *decoder) status(raw string, start xml.StartElement, name string) (result.Status, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "PASS", "PASSED", "SUCCESS":
		return result.StatusPassed, nil
	case "FAIL", "FAILED", "FAILURE":
		return result.StatusFailed, nil
	case "SKIP", "SKIPPED":
		if d.skipAsFailure {
			return result.StatusFailed, nil
		}
		return result.StatusSkipped, nil
	default:
		return result.StatusUnknown, citeerr.Newf(citeerr.KindMalformedResult, op,
			"<%s name=%q> has unrecognized status %q", start.Name.Local, name, raw)
	}
}

func isLeaf(start xml.StartElement) bool {
	if start.Name.Local == methodElement {
		return true
	}
	_, ok := lookupAttr(start, "status")
	return ok
}

func isEmptyGroup(n result.Node) bool {
	return !n.IsLeaf() && len(n.Children) == 0
}

func nodeName(start xml.StartElement) string {
	if name := strings.TrimSpace(attr(start, "name")); name != "" {
		return name
	}
	return start.Name.Local
}

func attr(start xml.StartElement, name string) string {
	v, _ := lookupAttr(start, name)
	return v
}

func lookupAttr(start xml.StartElement, name string) (string, bool) {
	for _, a := range start.Attr {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}
