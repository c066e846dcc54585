package report

import (
	"html/template"
	"io"
	"strings"
)

// imageSrc marks server-generated image sources as safe for URL attribute
// context. html/template rewrites data URIs in src attributes to
// "#ZgotmplZ"; the QR payload and the stored logo are both produced on
// this side of the trust boundary, never taken from request input.
// Values that are neither data URIs nor http(s) URLs render empty.
func imageSrc(v interface{}) template.URL {
	var s string
	switch src := v.(type) {
	case string:
		s = src
	case *string:
		if src != nil {
			s = *src
		}
	}
	if strings.HasPrefix(s, "data:image/") ||
		strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") {
		return template.URL(s)
	}
	return ""
}

const reportBody = `{{define "body"}}
{{- range .Pages}}
<section class="page">
  {{- if .Header}}
  <header>
    {{- if $.Lab.Logo}}<img class="logo" src="{{imageSrc $.Lab.Logo}}" alt="">{{end}}
    <h1>{{$.Lab.Name}}</h1>
    <p class="lab-contact">{{$.Lab.Address}}{{if $.Lab.Phone}} | {{$.Lab.Phone}}{{end}}{{if $.Lab.Email}} | {{$.Lab.Email}}{{end}}</p>
    {{- if $.QRCode}}<img class="qr" src="{{imageSrc $.QRCode}}" alt="{{$.Sample.AccessionNumber}}">{{end}}
    <table class="meta">
      <tr>
        <td><strong>Patient:</strong> {{$.Patient.Name}}</td>
        <td><strong>Age:</strong> {{$.Patient.Age}}</td>
        <td><strong>Gender:</strong> {{$.Patient.Gender}}</td>
      </tr>
      <tr>
        <td><strong>Accession:</strong> {{$.Sample.AccessionNumber}}</td>
        <td><strong>Sample:</strong> {{$.Sample.SampleType}}</td>
        <td><strong>Collected:</strong> {{$.Sample.CollectionDate}} {{$.Sample.CollectionTime}}</td>
      </tr>
      {{- if $.Patient.Doctor}}
      <tr><td colspan="3"><strong>Referred by:</strong> {{$.Patient.Doctor}}</td></tr>
      {{- end}}
    </table>
  </header>
  {{- end}}
  {{- range .Tests}}
  <div class="test">
    <h2>{{.Name}}{{if .Code}} ({{.Code}}){{end}}</h2>
    <table class="results">
      <thead>
        <tr><th>Parameter</th><th>Value</th><th>Unit</th><th>Normal Range</th></tr>
      </thead>
      <tbody>
        {{- range .Rows}}
        <tr><td>{{.Parameter}}</td><td>{{.Value}}</td><td>{{.Unit}}</td><td>{{.NormalRange}}</td></tr>
        {{- end}}
      </tbody>
    </table>
    {{- if .Notes}}<p class="notes">{{.Notes}}</p>{{end}}
  </div>
  {{- end}}
  <footer>
    <span>{{.Footer.Line}}</span>
    <span>Page {{.Footer.Page}} of {{.Footer.Pages}}</span>
  </footer>
</section>
{{- end}}
{{end}}`

const previewHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Report {{.Sample.AccessionNumber}}</title>
<style>
body { font-family: sans-serif; margin: 0; background: #eee; }
.page { background: #fff; max-width: 760px; margin: 16px auto; padding: 32px; }
table.results { width: 100%; border-collapse: collapse; }
table.results th, table.results td { border: 1px solid #ccc; padding: 4px 8px; text-align: left; }
footer { display: flex; justify-content: space-between; margin-top: 24px; font-size: 12px; color: #555; }
img.qr { float: right; }
</style>
</head>
<body>
{{template "body" .}}
</body>
</html>`

const printHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Report {{.Sample.AccessionNumber}}</title>
<style>
body { font-family: sans-serif; margin: 0; }
.page { page-break-after: always; padding: 24px; }
.page:last-child { page-break-after: auto; }
table.results { width: 100%; border-collapse: collapse; }
table.results th, table.results td { border: 1px solid #000; padding: 4px 8px; text-align: left; }
footer { display: flex; justify-content: space-between; margin-top: 24px; font-size: 11px; }
img.qr { float: right; }
@media print { .page { margin: 0; } }
</style>
</head>
<body onload="window.print()">
{{template "body" .}}
</body>
</html>`

var tmplFuncs = template.FuncMap{"imageSrc": imageSrc}

var (
	previewTmpl = template.Must(template.Must(template.New("preview").Funcs(tmplFuncs).Parse(reportBody)).Parse(previewHTML))
	printTmpl   = template.Must(template.Must(template.New("print").Funcs(tmplFuncs).Parse(reportBody)).Parse(printHTML))
)

// RenderPreview writes the on-screen HTML view of the document.
func RenderPreview(w io.Writer, doc *Document) error {
	return previewTmpl.Execute(w, doc)
}

// RenderPrint writes the print-ready HTML with per-page break rules. The
// PDF export is this output handed to the browser's print pipeline.
func RenderPrint(w io.Writer, doc *Document) error {
	return printTmpl.Execute(w, doc)
}
