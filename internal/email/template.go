package email

import (
	"bytes"
	"fmt"
	"html/template"
)

var messageTemplate = template.Must(template.New("newsletter").Parse(`<!DOCTYPE html>
<html lang="ko">
<head>
<meta charset="UTF-8">
<title>{{.Subject}}</title>
<style>
body { font-family: -apple-system, BlinkMacSystemFont, 'Apple SD Gothic Neo', 'Malgun Gothic', sans-serif; max-width: 700px; margin: 0 auto; padding: 20px; color: #333; }
h1 { color: #1a1a2e; border-bottom: 2px solid #e94560; padding-bottom: 10px; }
h3 { color: #0f3460; margin-top: 24px; }
li { margin-bottom: 10px; }
small { color: #555; }
.footer { margin-top: 32px; padding-top: 12px; border-top: 1px solid #ddd; color: #888; font-size: 0.85em; }
</style>
</head>
<body>
<h1>{{.Subject}}</h1>
{{.Body}}
<div class="footer">{{.Footer}}</div>
</body>
</html>
`))

// DefaultFooter is appended to every rendered message.
const DefaultFooter = "본 메일은 뉴스레터 구독자에게 발송되었습니다. 수신을 원하지 않으시면 관리자에게 문의해 주세요."

// RenderMessage wraps rendered draft HTML in a full email document.
// draftHTML is inserted as-is; subject and footer are escaped.
func RenderMessage(subject, draftHTML, footer string) (string, error) {
	if footer == "" {
		footer = DefaultFooter
	}

	var buf bytes.Buffer
	err := messageTemplate.Execute(&buf, struct {
		Subject string
		Body    template.HTML
		Footer  string
	}{
		Subject: subject,
		Body:    template.HTML(draftHTML),
		Footer:  footer,
	})
	if err != nil {
		return "", fmt.Errorf("rendering email: %w", err)
	}
	return buf.String(), nil
}
