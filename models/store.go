package models

import "github.com/localmart/localmart-backend-go/docstore"

// Store is a seller's shop profile. FeeSettings is kept raw and parsed by the fees package.
type Store struct {
	ID              string         `json:"id"`
	OwnerID         string         `json:"ownerId"`
	Name            string         `json:"name"`
	Phone           string         `json:"phone,omitempty"`
	Address         string         `json:"address,omitempty"`
	Email           string         `json:"email,omitempty"`
	Currency        string         `json:"currency,omitempty"`
	StripeAccountID string         `json:"stripeAccountId,omitempty"`
	FeeSettings     map[string]any `json:"feeSettings,omitempty"`
}

func StoreFromDocument(doc docstore.Document) Store {
	return Store{
		ID:              doc.ID(),
		OwnerID:         docstore.String(doc, "ownerId", "sellerId", "userId"),
		Name:            docstore.String(doc, "storeName", "name", "businessName"),
		Phone:           docstore.String(doc, "phone", "phoneNumber"),
		Address:         docstore.String(doc, "address", "storeAddress", "location.address"),
		Email:           docstore.String(doc, "email"),
		Currency:        docstore.String(doc, "currency"),
		StripeAccountID: docstore.String(doc, "stripeAccountId"),
		FeeSettings:     docstore.Map(doc, "feeSettings"),
	}
}
