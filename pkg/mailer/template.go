package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	texttemplate "text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/Payphone-Digital/midas/internal/model"
)

const ReceiptSubject = "Thank you eating with Midas!"

// Message is a rendered email ready for a Sender.
type Message struct {
	From     string
	To       string
	Subject  string
	HTMLBody string
	TextBody string
}

var receiptHTML = template.Must(template.New("receipt.html").Funcs(sprig.HtmlFuncMap()).Parse(
	`<h1>Here's your invoice</h1>
<ul>{{ range .Lines }}<li>{{ .Name }}: (x{{ .Quantity }}) {{ .Total }}</li>{{ end }}</ul>
<p>You ordered a total of {{ .OrderCount }}</p>
<p>Your total was {{ upper .Currency }} {{ .Total }}</p>
`))

var receiptText = texttemplate.Must(texttemplate.New("receipt.txt").Funcs(sprig.TxtFuncMap()).Parse(
	`Here's your invoice
{{ range .Lines }}- {{ .Name }}: (x{{ .Quantity }}) {{ .Total }}
{{ end }}You ordered a total of {{ .OrderCount }}
Your total was {{ upper .Currency }} {{ .Total }}
`))

// RenderReceipt builds the invoice email for a settled cart.
func RenderReceipt(from string, receipt model.Receipt) (Message, error) {
	var html, text bytes.Buffer
	if err := receiptHTML.Execute(&html, receipt); err != nil {
		return Message{}, fmt.Errorf("render receipt html: %w", err)
	}
	if err := receiptText.Execute(&text, receipt); err != nil {
		return Message{}, fmt.Errorf("render receipt text: %w", err)
	}

	return Message{
		From:     from,
		To:       receipt.Email,
		Subject:  ReceiptSubject,
		HTMLBody: html.String(),
		TextBody: strings.TrimSpace(text.String()),
	}, nil
}
