package toadhopper

import (
	_ "embed"
	"encoding/xml"
	"errors"
	"fmt"
	"strings"
	"text/template"
)

//go:embed notice.xml.tmpl
var noticeTemplate string

// ErrTemplate is returned when a notice can't be rendered.
var ErrTemplate = errors.New("failed to render notice")

var noticeTmpl = template.Must(template.New("notice").Funcs(template.FuncMap{
	"xml":    escapeXML,
	"nested": isNested,
}).Parse(noticeTemplate))

// BuildDocument renders a notice as a Hoptoad v2 XML document.
func BuildDocument(notice *Notice) (string, error) {
	var buf strings.Builder
	if err := noticeTmpl.Execute(&buf, notice); err != nil {
		return "", fmt.Errorf("%w: %w", ErrTemplate, err)
	}
	return buf.String(), nil
}

func escapeXML(v any) string {
	var buf strings.Builder
	// strings.Builder never fails a write.
	_ = xml.EscapeText(&buf, []byte(fmt.Sprint(v)))
	return buf.String()
}

func isNested(v any) bool {
	switch v.(type) {
	case map[string]any, []any:
		return true
	}
	return false
}
