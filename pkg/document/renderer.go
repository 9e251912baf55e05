package document

import (
	"bytes"
	"fmt"
	"html/template"

	"billdesk/internal/model"
)

// Renderer defaults, applied when the tenant has no stored settings.
const (
	DefaultPrimaryColor = "#1d4ed8"
	DefaultFontFamily   = "Helvetica, Arial, sans-serif"
	DefaultFooterNote   = "This is a computer generated invoice."
)

type Settings struct {
	PrimaryColor string
	FontFamily   string
	LogoURL      string
	FooterNote   string
}

func SettingsFrom(s *model.InvoiceSettings) Settings {
	out := Settings{}
	if s != nil {
		out.PrimaryColor = s.PrimaryColor
		out.FontFamily = s.FontFamily
		out.LogoURL = s.LogoURL
		out.FooterNote = s.FooterNote
	}
	if out.PrimaryColor == "" {
		out.PrimaryColor = DefaultPrimaryColor
	}
	if out.FontFamily == "" {
		out.FontFamily = DefaultFontFamily
	}
	if out.FooterNote == "" {
		out.FooterNote = DefaultFooterNote
	}
	return out
}

type itemRow struct {
	Description string
	Quantity    string
	UnitPrice   string
	Amount      string
}

type documentData struct {
	Settings Settings

	BusinessName  string
	BusinessGSTIN string
	BusinessAddr  string
	BusinessPhone string

	CustomerName  string
	CustomerGSTIN string
	CustomerAddr  string

	Number    string
	IssueDate string
	DueDate   string
	Status    string

	Items         []itemRow
	Subtotal      string
	GSTPercentage string
	GSTAmount     string
	Total         string
}

// Render maps an invoice plus style settings to a printable HTML
// document. Pure and deterministic: no state, no clock, no I/O.
func Render(inv model.Invoice, cust model.Customer, biz model.User, settings Settings) (string, error) {
	data := documentData{
		Settings:      settings,
		BusinessName:  biz.BusinessName,
		BusinessGSTIN: biz.GSTIN,
		BusinessAddr:  biz.Address,
		BusinessPhone: biz.PhoneNumber,
		CustomerName:  cust.Name,
		CustomerGSTIN: cust.GSTIN,
		CustomerAddr:  cust.BillingAddress,
		Number:        inv.Number,
		IssueDate:     inv.IssueDate.Format("02 Jan 2006"),
		DueDate:       inv.DueDate.Format("02 Jan 2006"),
		Status:        inv.Status,
		Subtotal:      money(inv.Subtotal),
		GSTPercentage: fmt.Sprintf("%g", inv.GSTPercentage),
		GSTAmount:     money(inv.GSTAmount),
		Total:         money(inv.Total),
	}

	for _, item := range inv.Items {
		data.Items = append(data.Items, itemRow{
			Description: item.Description,
			Quantity:    fmt.Sprintf("%g", item.Quantity),
			UnitPrice:   money(item.UnitPrice),
			Amount:      money(item.Amount),
		})
	}

	var buf bytes.Buffer
	if err := invoiceTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("could not render invoice document: %w", err)
	}
	return buf.String(), nil
}

// money fixes two decimal places for every currency field.
func money(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

var invoiceTemplate = template.Must(template.New("invoice").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Invoice {{.Number}}</title>
<style>
  body { font-family: {{.Settings.FontFamily}}; color: #1f2933; margin: 40px; }
  h1 { color: {{.Settings.PrimaryColor}}; margin-bottom: 0; }
  .meta { color: #52606d; margin-top: 4px; }
  .parties { display: flex; justify-content: space-between; margin: 32px 0; }
  table { width: 100%; border-collapse: collapse; }
  th { text-align: left; color: #fff; background: {{.Settings.PrimaryColor}}; padding: 8px; }
  td { padding: 8px; border-bottom: 1px solid #e4e7eb; }
  .num { text-align: right; }
  .totals { margin-top: 16px; width: 40%; margin-left: auto; }
  .totals td { border: none; }
  .grand { font-weight: bold; color: {{.Settings.PrimaryColor}}; }
  .footer { margin-top: 48px; color: #7b8794; font-size: 12px; }
</style>
</head>
<body>
  {{if .Settings.LogoURL}}<img src="{{.Settings.LogoURL}}" alt="logo" style="max-height:64px">{{end}}
  <h1>TAX INVOICE</h1>
  <p class="meta">Invoice {{.Number}} &middot; Issued {{.IssueDate}} &middot; Due {{.DueDate}}</p>

  <div class="parties">
    <div>
      <strong>{{.BusinessName}}</strong><br>
      {{if .BusinessGSTIN}}GSTIN: {{.BusinessGSTIN}}<br>{{end}}
      {{.BusinessAddr}}<br>
      {{.BusinessPhone}}
    </div>
    <div>
      <strong>Bill To</strong><br>
      {{.CustomerName}}<br>
      {{if .CustomerGSTIN}}GSTIN: {{.CustomerGSTIN}}<br>{{end}}
      {{.CustomerAddr}}
    </div>
  </div>

  <table>
    <tr><th>Description</th><th class="num">Qty</th><th class="num">Rate</th><th class="num">Amount</th></tr>
    {{range .Items}}
    <tr><td>{{.Description}}</td><td class="num">{{.Quantity}}</td><td class="num">{{.UnitPrice}}</td><td class="num">{{.Amount}}</td></tr>
    {{end}}
  </table>

  <table class="totals">
    <tr><td>Subtotal</td><td class="num">{{.Subtotal}}</td></tr>
    <tr><td>GST ({{.GSTPercentage}}%)</td><td class="num">{{.GSTAmount}}</td></tr>
    <tr class="grand"><td>Total</td><td class="num">{{.Total}}</td></tr>
  </table>

  <p class="footer">{{.Settings.FooterNote}}</p>
</body>
</html>
`))
