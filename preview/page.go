package preview

import (
	"bytes"
	"html"
)

// CodePage wraps user token code in a page that shows it sandboxed in an
// iframe, the way a marketplace would.
func CodePage(code string) []byte {
	var buf bytes.Buffer

	buf.WriteString(`<!doctype html><html><head><meta charset="utf-8"><title>preview</title></head>`)
	buf.WriteString(`<body style="margin:0;background:#111">`)
	buf.WriteString(`<iframe sandbox="allow-scripts" style="border:0;width:100vw;height:100vh" srcdoc="`)
	buf.WriteString(html.EscapeString(code))
	buf.WriteString(`"></iframe></body></html>`)

	return buf.Bytes()
}
