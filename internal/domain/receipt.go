package domain

import (
	"fmt"
	"io"
	"text/tabwriter"
)

const shopName = "DP Communication"

// WriteReceipt renders an invoice as a plain-text receipt for printing.
func WriteReceipt(w io.Writer, v InvoiceView) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)

	fmt.Fprintf(tw, "%s\tINVOICE %s\t\n", shopName, v.ID)
	fmt.Fprintf(tw, "%s\t%s\t\n", v.CustomerName, v.CustomerPhone)
	fmt.Fprintf(tw, "Date\t%s\t\n\n", v.Date.Format("2006-01-02"))

	fmt.Fprintln(tw, "Item\tQty\tPrice\tTotal\t")
	for _, l := range v.Items {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t\n", l.ItemName, l.Quantity, l.Price.StringFixed(2), l.Total.StringFixed(2))
	}
	fmt.Fprintln(tw)
	fmt.Fprintf(tw, "Total\t\t\tLKR %s\t\n", v.TotalAmount.StringFixed(2))
	fmt.Fprintf(tw, "Paid\t\t\tLKR %s\t\n", v.PaidAmount.StringFixed(2))
	fmt.Fprintf(tw, "Balance\t\t\tLKR %s\t\n", v.BalanceAmount.StringFixed(2))

	return tw.Flush()
}
