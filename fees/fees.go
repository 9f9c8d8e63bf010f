// Package fees computes delivery and service fees from a store's feeSettings.
package fees

import (
	"math"
	"strings"

	"github.com/localmart/localmart-backend-go/docstore"
	"github.com/localmart/localmart-backend-go/models"
)

type ServiceFeeType string

const (
	ServiceFeeNone       ServiceFeeType = "none"
	ServiceFeePercentage ServiceFeeType = "percentage"
	ServiceFeeFixed      ServiceFeeType = "fixed"
)

type Settings struct {
	DeliveryFee           float64        `json:"deliveryFee"`
	FreeDeliveryThreshold float64        `json:"freeDeliveryThreshold"`
	ServiceFeeType        ServiceFeeType `json:"serviceFeeType"`
	ServiceFeeRate        float64        `json:"serviceFeeRate"` // percent, e.g. 2.5
	ServiceFeeAmount      float64        `json:"serviceFeeAmount"`
	ServiceFeeMax         float64        `json:"serviceFeeMax"`
}

type Breakdown struct {
	Subtotal    float64 `json:"subtotal"`
	DeliveryFee float64 `json:"deliveryFee"`
	ServiceFee  float64 `json:"serviceFee"`
	Total       float64 `json:"total"`
}

// ParseSettings reads a feeSettings map. Unknown or missing values are zero.
func ParseSettings(m map[string]any) Settings {
	var s Settings
	if m == nil {
		s.ServiceFeeType = ServiceFeeNone
		return s
	}
	s.DeliveryFee, _ = docstore.Float(m, "deliveryFee", "delivery.fee")
	s.FreeDeliveryThreshold, _ = docstore.Float(m, "freeDeliveryThreshold", "delivery.freeThreshold")
	s.ServiceFeeRate, _ = docstore.Float(m, "serviceFeeRate", "serviceFeePercentage", "serviceFee.rate")
	s.ServiceFeeAmount, _ = docstore.Float(m, "serviceFeeAmount", "serviceFeeFixed", "serviceFee.amount")
	s.ServiceFeeMax, _ = docstore.Float(m, "serviceFeeMax", "maxServiceFee", "serviceFee.max")

	switch strings.ToLower(docstore.String(m, "serviceFeeType", "serviceFee.type")) {
	case "percentage", "percent":
		s.ServiceFeeType = ServiceFeePercentage
	case "fixed", "flat":
		s.ServiceFeeType = ServiceFeeFixed
	case "":
		switch {
		case s.ServiceFeeRate > 0:
			s.ServiceFeeType = ServiceFeePercentage
		case s.ServiceFeeAmount > 0:
			s.ServiceFeeType = ServiceFeeFixed
		default:
			s.ServiceFeeType = ServiceFeeNone
		}
	default:
		s.ServiceFeeType = ServiceFeeNone
	}
	return s
}

// DeliveryFeeFor is zero for collection orders and when a positive free-delivery threshold
// is reached; otherwise the flat delivery fee.
func DeliveryFeeFor(s Settings, subtotal float64, deliveryType string) float64 {
	if deliveryType != models.DeliveryTypeDelivery {
		return 0
	}
	if s.FreeDeliveryThreshold > 0 && subtotal >= s.FreeDeliveryThreshold {
		return 0
	}
	return s.DeliveryFee
}

// ServiceFeeFor applies the percentage rate, capped at ServiceFeeMax when set, or the flat amount.
func ServiceFeeFor(s Settings, subtotal float64) float64 {
	switch s.ServiceFeeType {
	case ServiceFeePercentage:
		fee := subtotal * s.ServiceFeeRate / 100
		if s.ServiceFeeMax > 0 && fee > s.ServiceFeeMax {
			fee = s.ServiceFeeMax
		}
		return fee
	case ServiceFeeFixed:
		return s.ServiceFeeAmount
	}
	return 0
}

func Compute(s Settings, subtotal float64, deliveryType string) Breakdown {
	b := Breakdown{
		Subtotal:    Round(subtotal),
		DeliveryFee: Round(DeliveryFeeFor(s, subtotal, deliveryType)),
		ServiceFee:  Round(ServiceFeeFor(s, subtotal)),
	}
	b.Total = Round(b.Subtotal + b.DeliveryFee + b.ServiceFee)
	return b
}

// Round rounds to cents.
func Round(v float64) float64 {
	return math.Round(v*100) / 100
}
