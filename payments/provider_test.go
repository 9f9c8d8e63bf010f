package payments

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectProvider(t *testing.T) {
	tests := map[string]Provider{
		"GB":  ProviderStripeConnect,
		"us":  ProviderStripeConnect,
		" de": ProviderStripeConnect,
		"NG":  ProviderPaystack,
		"gh":  ProviderPaystack,
		"ZA":  ProviderPaystack,
		"IN":  ProviderStripeLimited,
		"EG":  ProviderStripeLimited,
		"KP":  ProviderUnsupported,
		"":    ProviderUnsupported,
		"GBR": ProviderUnsupported,
		"1A":  ProviderUnsupported,
	}
	for country, want := range tests {
		assert.Equal(t, want, SelectProvider(country), "country %q", country)
	}
}

func TestDescribe(t *testing.T) {
	info := Describe("in")
	assert.Equal(t, "IN", info.Country)
	assert.True(t, info.AcceptsPayments)
	assert.False(t, info.AutomaticPayouts)

	assert.False(t, Describe("IR").AcceptsPayments)
	assert.True(t, Describe("KE").AutomaticPayouts)
}
