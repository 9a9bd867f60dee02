package output

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"github.com/bgricker/cite-runner/internal/result"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

const markdownTemplate = "report.md.tmpl"

// markdownContext is the data handed to the markdown template.
type markdownContext struct {
	Passed  bool
	Summary result.Summary
	Suite   result.Node
	Rows    []row
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"glyph":   statusGlyph,
		"indent":  indent,
		"oneline": oneline,
		"summary": summaryLine,
	}
}

func loadMarkdownTemplate(path string) (*template.Template, error) {
	if path == "" {
		return template.New(markdownTemplate).Funcs(templateFuncs()).ParseFS(templateFS, "templates/"+markdownTemplate)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read markdown template %q: %w", path, err)
	}
	tmpl, err := template.New(filepath.Base(path)).Funcs(templateFuncs()).Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("parse markdown template %q: %w", path, err)
	}
	return tmpl, nil
}

func (s *Serializer) renderMarkdown(res result.TestSuiteResult) ([]byte, error) {
	ctx := markdownContext{
		Passed:  res.Passed(),
		Summary: res.Summary,
		Suite:   res.Suite,
		Rows:    flatten(res.Suite),
	}
	var buf bytes.Buffer
	if err := s.markdown.Execute(&buf, ctx); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}
	return buf.Bytes(), nil
}
