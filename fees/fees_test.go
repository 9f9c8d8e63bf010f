package fees

import (
	"testing"

	"github.com/localmart/localmart-backend-go/models"
	"github.com/stretchr/testify/assert"
)

func TestDeliveryFeeFor(t *testing.T) {
	s := Settings{DeliveryFee: 3.5, FreeDeliveryThreshold: 30}

	tests := []struct {
		name         string
		subtotal     float64
		deliveryType string
		want         float64
	}{
		{"below threshold", 29.99, models.DeliveryTypeDelivery, 3.5},
		{"at threshold", 30, models.DeliveryTypeDelivery, 0},
		{"above threshold", 45, models.DeliveryTypeDelivery, 0},
		{"collection", 10, models.DeliveryTypeCollection, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeliveryFeeFor(s, tt.subtotal, tt.deliveryType))
		})
	}

	noThreshold := Settings{DeliveryFee: 2}
	assert.Equal(t, 2.0, DeliveryFeeFor(noThreshold, 1000, models.DeliveryTypeDelivery))
}

func TestServiceFeeFor(t *testing.T) {
	pct := Settings{ServiceFeeType: ServiceFeePercentage, ServiceFeeRate: 10, ServiceFeeMax: 4}
	assert.Equal(t, 2.0, ServiceFeeFor(pct, 20))
	assert.Equal(t, 4.0, ServiceFeeFor(pct, 100))

	uncapped := Settings{ServiceFeeType: ServiceFeePercentage, ServiceFeeRate: 10}
	assert.Equal(t, 10.0, ServiceFeeFor(uncapped, 100))

	fixed := Settings{ServiceFeeType: ServiceFeeFixed, ServiceFeeAmount: 0.99}
	assert.Equal(t, 0.99, ServiceFeeFor(fixed, 100))

	assert.Zero(t, ServiceFeeFor(Settings{}, 100))
}

func TestParseSettings(t *testing.T) {
	s := ParseSettings(map[string]any{
		"deliveryFee":           "2.50",
		"freeDeliveryThreshold": int64(25),
		"serviceFeeType":        "Percentage",
		"serviceFeeRate":        5,
		"serviceFeeMax":         3.0,
	})
	assert.Equal(t, Settings{
		DeliveryFee:           2.5,
		FreeDeliveryThreshold: 25,
		ServiceFeeType:        ServiceFeePercentage,
		ServiceFeeRate:        5,
		ServiceFeeMax:         3,
	}, s)

	inferred := ParseSettings(map[string]any{"serviceFeeAmount": 1})
	assert.Equal(t, ServiceFeeFixed, inferred.ServiceFeeType)

	assert.Equal(t, ServiceFeeNone, ParseSettings(nil).ServiceFeeType)
}

func TestCompute_RoundsToCents(t *testing.T) {
	s := Settings{DeliveryFee: 1.999, ServiceFeeType: ServiceFeePercentage, ServiceFeeRate: 3.3}
	b := Compute(s, 10.01, models.DeliveryTypeDelivery)

	assert.Equal(t, 10.01, b.Subtotal)
	assert.Equal(t, 2.0, b.DeliveryFee)
	assert.Equal(t, 0.33, b.ServiceFee)
	assert.Equal(t, 12.34, b.Total)
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "£12.50", FormatMoney(12.5, "gbp"))
	assert.Equal(t, "₦1500.00", FormatMoney(1500, "NGN"))
	assert.Equal(t, "JPY 300.00", FormatMoney(300, "JPY"))
	assert.Equal(t, "3.00", FormatMoney(3, ""))
}
