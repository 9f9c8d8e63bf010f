package receipts

import (
	"context"
	"errors"
	"strings"

	"github.com/localmart/localmart-backend-go/docstore"
)

// StoreInfo is what a receipt shows about the seller.
type StoreInfo struct {
	ID      string `json:"id,omitempty"`
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Email   string `json:"email"`
}

var (
	storeNameKeys    = []string{"storeName", "name", "businessName", "store.name", "shopName", "displayName", "sellerName"}
	storePhoneKeys   = []string{"phone", "phoneNumber", "storePhone", "contactPhone", "contact.phone", "businessPhone", "mobile"}
	storeAddressKeys = []string{"address", "storeAddress", "location.address", "businessAddress", "contact.address",
		"formattedAddress", "location.formattedAddress", "deliveryLocation.address"}
	storeEmailKeys = []string{"email", "contactEmail", "contact.email", "businessEmail"}
)

// ResolveStore reads the seller's store by id, then by owner, and fills gaps from the seller's
// user document. Missing values stay empty.
func (f *Finder) ResolveStore(ctx context.Context, sellerID, storeID string) StoreInfo {
	var docs []docstore.Document
	if storeID != "" {
		doc, err := f.store.Get(ctx, docstore.Stores, storeID)
		if err == nil {
			docs = append(docs, doc)
		} else if !errors.Is(err, docstore.ErrNotFound) {
			f.log.WithError(err).WithField("store", storeID).Warn("store lookup failed")
		}
	}
	if sellerID != "" {
		for _, field := range []string{"ownerId", "sellerId", "userId"} {
			doc, err := docstore.FindFirst(ctx, f.store, docstore.Query{
				Collection: docstore.Stores,
				Filters:    []docstore.Filter{docstore.Where(field, sellerID)},
			})
			if err == nil {
				docs = append(docs, doc)
				break
			}
			if !errors.Is(err, docstore.ErrNotFound) {
				f.log.WithError(err).WithField("seller", sellerID).Warn("store lookup failed")
				break
			}
		}
		if doc, err := f.store.Get(ctx, docstore.Users, sellerID); err == nil {
			docs = append(docs, doc)
		}
	}

	var info StoreInfo
	for _, d := range docs {
		if info.ID == "" && d.ID() != sellerID {
			info.ID = d.ID()
		}
		info.Name = firstNonEmpty(info.Name, docstore.String(d, storeNameKeys...))
		info.Phone = firstNonEmpty(info.Phone, docstore.String(d, storePhoneKeys...))
		info.Address = firstNonEmpty(info.Address, docstore.String(d, storeAddressKeys...))
		info.Email = firstNonEmpty(info.Email, docstore.String(d, storeEmailKeys...))
	}
	return info
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// DeliveryMethod reconciles deliveryType, deliveryMethod and shippingMethod across docs.
func DeliveryMethod(docs ...map[string]any) string {
	for _, d := range docs {
		v := strings.ToLower(docstore.String(d,
			"deliveryType", "deliveryMethod", "shippingMethod",
			"orderData.deliveryType", "orderData.deliveryMethod", "shipping.method"))
		switch {
		case v == "":
			continue
		case strings.Contains(v, "deliver") || strings.Contains(v, "ship"):
			return "Delivery"
		case strings.Contains(v, "collect") || strings.Contains(v, "pickup") || strings.Contains(v, "pick up"):
			return "Collection"
		default:
			return strings.ToUpper(v[:1]) + v[1:]
		}
	}
	return NotSpecified
}
