package fees

import (
	"fmt"
	"strings"
)

var symbols = map[string]string{
	"GBP": "£",
	"USD": "$",
	"EUR": "€",
	"NGN": "₦",
	"GHS": "GH₵",
	"ZAR": "R",
	"KES": "KSh",
}

// FormatMoney renders amount with the currency symbol when one is known, else with the code.
func FormatMoney(amount float64, currency string) string {
	currency = strings.ToUpper(currency)
	if sym, ok := symbols[currency]; ok {
		return fmt.Sprintf("%s%.2f", sym, amount)
	}
	if currency == "" {
		return fmt.Sprintf("%.2f", amount)
	}
	return fmt.Sprintf("%s %.2f", currency, amount)
}
