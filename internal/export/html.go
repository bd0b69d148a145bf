package export

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/sadopc/timebill/internal/report"
)

var htmlReport = template.Must(template.New("report").Parse(`<html>
<body>
<h2>{{ .Heading }}</h2>
{{- if .Doc.Project }}
<h3>Project: {{ .Doc.Project }}</h3>
{{- end }}
<p><strong>{{ .Doc.Subtitle }}</strong></p>
{{- if .Doc.IsEmpty }}
<p>{{ .Doc.Empty }}</p>
{{- else }}
<table border="1" cellpadding="5" cellspacing="0" style="border-collapse: collapse; width: 100%;">
<tr style="background-color: #f2f2f2;">
{{- range .Doc.Columns }}
<th>{{ . }}</th>
{{- end }}
</tr>
{{- range .Doc.Rows }}
<tr>
{{- range . }}
<td>{{ . }}</td>
{{- end }}
</tr>
{{- end }}
</table>
<br>
<p><strong>{{ .Doc.TotalTime }}</strong></p>
{{- if .Doc.TotalAmount }}
<p><strong>{{ .Doc.TotalAmount }}</strong></p>
{{- end }}
{{- end }}
</body>
</html>
`))

// ToHTML renders doc as an email body. The project name goes in its own
// heading, so the main heading is always the bare report title.
func ToHTML(doc *report.Document) (string, error) {
	var buf bytes.Buffer
	data := struct {
		Heading string
		Doc     *report.Document
	}{Heading: report.Title, Doc: doc}
	if err := htmlReport.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render html: %w", err)
	}
	return buf.String(), nil
}
