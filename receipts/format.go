package receipts

import (
	"fmt"
	"strings"

	"github.com/localmart/localmart-backend-go/fees"
	"github.com/localmart/localmart-backend-go/models"
)

const rule = "--------------------------------"

// Format renders the receipt as the text block sent in chat.
func Format(r Receipt) string {
	var b strings.Builder
	title := "RECEIPT"
	if r.Kind == models.KindRefund {
		title = "REFUND RECEIPT"
	}
	money := func(v float64) string { return fees.FormatMoney(v, r.Currency) }

	fmt.Fprintf(&b, "%s\n%s\n", title, rule)
	fmt.Fprintf(&b, "%s\n", r.Store.Name)
	fmt.Fprintf(&b, "Phone: %s\n", orDefault(r.Store.Phone, NotSpecified))
	fmt.Fprintf(&b, "Address: %s\n", orDefault(r.Store.Address, NotSpecified))
	fmt.Fprintf(&b, "%s\n", rule)
	fmt.Fprintf(&b, "Receipt #: %s\n", r.Number)
	fmt.Fprintf(&b, "Transaction: %s\n", r.TransactionID)
	if r.OrderID != "" && r.OrderID != r.TransactionID {
		fmt.Fprintf(&b, "Order: %s\n", r.OrderID)
	}
	date := NotSpecified
	if !r.TransactionDate.IsZero() {
		date = r.TransactionDate.Format("02 Jan 2006 15:04")
	}
	fmt.Fprintf(&b, "Date: %s\n", date)
	fmt.Fprintf(&b, "Customer: %s\n", r.CustomerName)
	fmt.Fprintf(&b, "%s\n", rule)

	if len(r.Items) == 0 {
		b.WriteString("Items: Not specified\n")
	}
	for _, it := range r.Items {
		fmt.Fprintf(&b, "%d x %s  %s\n", it.Quantity, it.Name, money(it.Price*float64(it.Quantity)))
	}
	fmt.Fprintf(&b, "%s\n", rule)
	fmt.Fprintf(&b, "Subtotal: %s\n", money(r.Subtotal))
	if r.DeliveryFee > 0 {
		fmt.Fprintf(&b, "Delivery fee: %s\n", money(r.DeliveryFee))
	}
	if r.ServiceFee > 0 {
		fmt.Fprintf(&b, "Service fee: %s\n", money(r.ServiceFee))
	}
	label := "Total"
	if r.Kind == models.KindRefund {
		label = "Refunded"
	}
	fmt.Fprintf(&b, "%s: %s\n", label, money(r.Total))
	fmt.Fprintf(&b, "%s\n", rule)
	fmt.Fprintf(&b, "Payment method: %s\n", r.PaymentMethod)
	fmt.Fprintf(&b, "Delivery method: %s\n", r.DeliveryMethod)
	if r.Reason != "" {
		fmt.Fprintf(&b, "Reason: %s\n", r.Reason)
	}
	b.WriteString("Thank you for shopping local!")
	return b.String()
}
