package output

import (
	"bytes"
	_ "embed"
	"html/template"
	"strings"
)

// HTMLFormatter produces a standalone HTML report.
type HTMLFormatter struct{}

func (HTMLFormatter) Name() string { return "html" }

//go:embed templates/report.html.tmpl
var htmlTemplateSource string

var htmlTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"curr":   FormatCurrency,
	"pct":    FormatPercentage,
	"bounds": FormatBenefitRange,
	"docs":   documentSummary,
	"join":   strings.Join,
}).Parse(htmlTemplateSource))

func (HTMLFormatter) Format(report *Report) ([]byte, error) {
	var buf bytes.Buffer
	if err := htmlTemplate.Execute(&buf, report); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
