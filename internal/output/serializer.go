package output

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/bgricker/cite-runner/internal/citeerr"
	"github.com/bgricker/cite-runner/internal/result"
)

// Format names an output representation of a suite result.
type Format string

const (
	// FormatJSON renders machine readable output.
	FormatJSON Format = "json"
	// FormatYAML renders machine readable output as YAML.
	FormatYAML Format = "yaml"
	// FormatMarkdown renders a templated human readable report.
	FormatMarkdown Format = "markdown"
	// FormatPretty renders a terminal table.
	FormatPretty Format = "pretty"
	// FormatRaw passes the engine document through untouched. It is handled
	// before parsing and is never accepted by Serialize.
	FormatRaw Format = "raw"
)

// ParseFormat validates a user supplied format name.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case FormatJSON, FormatYAML, FormatMarkdown, FormatPretty, FormatRaw:
		return f, nil
	default:
		return "", citeerr.Newf(citeerr.KindUnsupportedFormat, "output", "format %q", s)
	}
}

// Structured reports whether f is a lossless data encoding.
func (f Format) Structured() bool {
	return f == FormatJSON || f == FormatYAML
}

// Document is the structured encoding of a suite result.
type Document struct {
	Passed  bool           `json:"passed" yaml:"passed"`
	Summary result.Summary `json:"summary" yaml:"summary"`
	Suite   result.Node    `json:"suite" yaml:"suite"`
}

// NewDocument captures res for encoding.
func NewDocument(res result.TestSuiteResult) Document {
	return Document{Passed: res.Passed(), Summary: res.Summary, Suite: res.Suite}
}

// Options configure a Serializer.
type Options struct {
	// MarkdownTemplate is the path of a text/template file replacing the
	// built-in markdown report.
	MarkdownTemplate string
}

// Serializer renders suite results. It holds no state besides the parsed
// templates and is safe for concurrent use.
type Serializer struct {
	markdown *template.Template
}

// NewSerializer prepares templates according to opts.
func NewSerializer(opts Options) (*Serializer, error) {
	tmpl, err := loadMarkdownTemplate(opts.MarkdownTemplate)
	if err != nil {
		return nil, err
	}
	return &Serializer{markdown: tmpl}, nil
}

// Serialize renders res in the requested format.
func (s *Serializer) Serialize(res result.TestSuiteResult, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return encodeJSON(NewDocument(res))
	case FormatYAML:
		return encodeYAML(NewDocument(res))
	case FormatMarkdown:
		return s.renderMarkdown(res)
	case FormatPretty:
		return renderPretty(res), nil
	default:
		return nil, citeerr.Newf(citeerr.KindUnsupportedFormat, "serialize", "format %q", string(format))
	}
}

// SerializeAll renders several results as a single output. With more than one
// result, JSON becomes an array of documents and YAML a multi-document stream.
// The human-readable formats are rendered one after the other.
func (s *Serializer) SerializeAll(results []result.TestSuiteResult, format Format) ([]byte, error) {
	if len(results) == 1 {
		return s.Serialize(results[0], format)
	}

	switch format {
	case FormatJSON, FormatYAML:
		docs := make([]Document, 0, len(results))
		for _, res := range results {
			docs = append(docs, NewDocument(res))
		}
		if format == FormatJSON {
			return encodeJSON(docs)
		}
		return encodeYAML(docs...)
	case FormatMarkdown, FormatPretty:
		var buf bytes.Buffer
		for i, res := range results {
			data, err := s.Serialize(res, format)
			if err != nil {
				return nil, err
			}
			if i > 0 {
				buf.WriteByte('\n')
			}
			buf.Write(data)
			if len(data) > 0 && data[len(data)-1] != '\n' {
				buf.WriteByte('\n')
			}
		}
		return buf.Bytes(), nil
	default:
		return nil, citeerr.Newf(citeerr.KindUnsupportedFormat, "serialize", "format %q", string(format))
	}
}

// Decode reads a structured rendering back into a suite result.
func Decode(data []byte, format Format) (result.TestSuiteResult, error) {
	var (
		doc Document
		err error
	)
	switch format {
	case FormatJSON:
		doc, err = decodeJSON(data)
	case FormatYAML:
		doc, err = decodeYAML(data)
	default:
		return result.TestSuiteResult{}, citeerr.Newf(citeerr.KindUnsupportedFormat, "decode", "format %q", string(format))
	}
	if err != nil {
		return result.TestSuiteResult{}, citeerr.Wrap(citeerr.KindMalformedResult, "decode", err)
	}

	res := result.TestSuiteResult{Suite: doc.Suite, Summary: doc.Summary}
	if res.Passed() != doc.Passed {
		return result.TestSuiteResult{}, citeerr.Newf(citeerr.KindMalformedResult, "decode",
			"passed=%t disagrees with suite status %s", doc.Passed, doc.Suite.Status)
	}
	return res, nil
}

// row is one node of the tree in render order.
type row struct {
	Depth int
	Last  bool
	Node  result.Node
}

// flatten lists the tree depth first, preserving child order.
func flatten(root result.Node) []row {
	var rows []row
	var walk func(n result.Node, depth int, last bool)
	walk = func(n result.Node, depth int, last bool) {
		rows = append(rows, row{Depth: depth, Last: last, Node: n})
		for i, child := range n.Children {
			walk(child, depth+1, i == len(n.Children)-1)
		}
	}
	walk(root, 0, true)
	return rows
}

func statusGlyph(status result.Status) string {
	switch status {
	case result.StatusPassed:
		return "✓"
	case result.StatusFailed:
		return "✗"
	case result.StatusSkipped:
		return "-"
	default:
		return "?"
	}
}

// oneline collapses runs of whitespace, including newlines, to single spaces.
func oneline(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func indent(depth int) string {
	return strings.Repeat("  ", depth)
}

func summaryLine(s result.Summary) string {
	return fmt.Sprintf("%d passed, %d failed, %d skipped", s.Passed, s.Failed, s.Skipped)
}
