// Package payments picks a payment provider per country and talks to the payment backends:
// the Stripe Connect endpoints, the payment Cloud Functions and the Paystack stub.
package payments

import "strings"

type Provider string

const (
	ProviderStripeConnect Provider = "stripe_connect"
	ProviderPaystack      Provider = "paystack"
	// ProviderStripeLimited lets customers pay by card while payouts to sellers are manual.
	ProviderStripeLimited Provider = "stripe_limited"
	ProviderUnsupported   Provider = "unsupported"
)

var stripeConnectCountries = set(
	"US", "CA", "GB", "IE", "AU", "NZ", "JP", "SG", "HK",
	"AT", "BE", "BG", "HR", "CY", "CZ", "DK", "EE", "FI", "FR", "DE", "GR", "HU", "IT",
	"LV", "LT", "LU", "MT", "NL", "PL", "PT", "RO", "SK", "SI", "ES", "SE",
	"NO", "CH", "LI", "GI", "MX", "BR", "MY", "TH", "AE",
)

var paystackCountries = set("NG", "GH", "ZA", "KE", "CI")

var unsupportedCountries = set("CU", "IR", "KP", "SY")

func set(codes ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		m[c] = struct{}{}
	}
	return m
}

// NormalizeCountry upper-cases a two-letter code and returns "" for anything else.
func NormalizeCountry(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 2 {
		return ""
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return ""
		}
	}
	return code
}

// SelectProvider decides how sellers in country get paid.
func SelectProvider(country string) Provider {
	code := NormalizeCountry(country)
	if code == "" {
		return ProviderUnsupported
	}
	if _, ok := unsupportedCountries[code]; ok {
		return ProviderUnsupported
	}
	if _, ok := paystackCountries[code]; ok {
		return ProviderPaystack
	}
	if _, ok := stripeConnectCountries[code]; ok {
		return ProviderStripeConnect
	}
	return ProviderStripeLimited
}

type ProviderInfo struct {
	Country          string   `json:"country"`
	Provider         Provider `json:"provider"`
	AcceptsPayments  bool     `json:"acceptsPayments"`
	AutomaticPayouts bool     `json:"automaticPayouts"`
	Source           string   `json:"source,omitempty"`
}

func Describe(country string) ProviderInfo {
	p := SelectProvider(country)
	return ProviderInfo{
		Country:          NormalizeCountry(country),
		Provider:         p,
		AcceptsPayments:  p != ProviderUnsupported,
		AutomaticPayouts: p == ProviderStripeConnect || p == ProviderPaystack,
	}
}
