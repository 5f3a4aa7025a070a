package notify

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/shopspring/decimal"
)

type Kind string

const (
	KindOrderPlaced     Kind = "order_placed"
	KindPaymentReceived Kind = "payment_received"
	KindBalanceReminder Kind = "balance_reminder"
	KindLoginAlert      Kind = "login_alert"
)

// Data feeds the message templates. Unused fields are ignored.
type Data struct {
	Name    string
	Phone   string
	Email   string
	Total   decimal.Decimal
	Paid    decimal.Decimal
	Amount  decimal.Decimal
	Balance decimal.Decimal
}

var funcs = template.FuncMap{
	"lkr": func(d decimal.Decimal) string { return d.StringFixed(2) },
}

var templates = map[Kind]*template.Template{
	KindOrderPlaced: template.Must(template.New("order_placed").Funcs(funcs).Parse(
		"Dear Sir/Madam,\nYour Order has been placed successfully.Total Amount is LKR {{lkr .Total}}.\n" +
			"Paid Amount is LKR {{lkr .Paid}}.\nThanks for shopping with DP Communication.")),
	KindPaymentReceived: template.Must(template.New("payment_received").Funcs(funcs).Parse(
		"We have Received Your Payment LKR {{lkr .Amount}}. Your Due balance is LKR {{lkr .Balance}}. " +
			"Thanks for shopping with DP Communication.")),
	KindBalanceReminder: template.Must(template.New("balance_reminder").Funcs(funcs).Parse(
		"Dear {{if .Name}}{{.Name}}{{else}}Sir/Madam{{end}},\nYou have outstanding payments of LKR {{lkr .Balance}}.\n" +
			"Thanks for shopping with DP Communication.")),
	KindLoginAlert: template.Must(template.New("login_alert").Funcs(funcs).Parse(
		"Dear Admin,\nWe have Detected Login from {{.Email}}.\nThis is a verification message.")),
}

func Render(kind Kind, d Data) (string, error) {
	tpl, ok := templates[kind]
	if !ok {
		return "", fmt.Errorf("unknown message kind %q", kind)
	}
	var sb strings.Builder
	if err := tpl.Execute(&sb, d); err != nil {
		return "", fmt.Errorf("render %s: %w", kind, err)
	}
	return sb.String(), nil
}
