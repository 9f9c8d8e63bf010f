package models

import (
	"time"

	"github.com/localmart/localmart-backend-go/docstore"
)

// Location is a saved delivery location. Delivery orders are refused without one.
type Location struct {
	Address    string  `json:"address"`
	City       string  `json:"city,omitempty"`
	PostalCode string  `json:"postalCode,omitempty"`
	Country    string  `json:"country,omitempty"`
	Lat        float64 `json:"lat,omitempty"`
	Lng        float64 `json:"lng,omitempty"`
}

type User struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	Password         string    `json:"-"`
	PhoneNumber      string    `json:"phoneNumber,omitempty"`
	Role             string    `json:"role"` // buyer/seller
	StoreID          string    `json:"storeId,omitempty"`
	StripeAccountID  string    `json:"stripeAccountId,omitempty"`
	Country          string    `json:"country,omitempty"`
	DeliveryLocation *Location `json:"deliveryLocation,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

func (u User) Document() docstore.Document {
	doc := docstore.Document{
		"name":        u.Name,
		"email":       u.Email,
		"password":    u.Password,
		"phoneNumber": u.PhoneNumber,
		"role":        u.Role,
		"storeId":     u.StoreID,
		"country":     u.Country,
		"createdAt":   u.CreatedAt,
		"updatedAt":   u.UpdatedAt,
	}
	if u.StripeAccountID != "" {
		doc["stripeAccountId"] = u.StripeAccountID
	}
	if u.DeliveryLocation != nil {
		doc["deliveryLocation"] = u.DeliveryLocation.Document()
	}
	return doc
}

func UserFromDocument(doc docstore.Document) User {
	u := User{
		ID:              doc.ID(),
		Name:            docstore.String(doc, "name", "displayName", "fullName"),
		Email:           docstore.String(doc, "email"),
		Password:        docstore.String(doc, "password"),
		PhoneNumber:     docstore.String(doc, "phoneNumber", "phone"),
		Role:            docstore.String(doc, "role"),
		StoreID:         docstore.String(doc, "storeId"),
		StripeAccountID: docstore.String(doc, "stripeAccountId"),
		Country:         docstore.String(doc, "country"),
	}
	if u.Role == "" {
		u.Role = "buyer"
	}
	u.CreatedAt, _ = docstore.Time(doc, "createdAt")
	u.UpdatedAt, _ = docstore.Time(doc, "updatedAt")
	if loc := docstore.Map(doc, "deliveryLocation", "location"); loc != nil {
		l := LocationFromMap(loc)
		if l.Address != "" {
			u.DeliveryLocation = &l
		}
	}
	return u
}

func (l Location) Document() map[string]any {
	return map[string]any{
		"address":    l.Address,
		"city":       l.City,
		"postalCode": l.PostalCode,
		"country":    l.Country,
		"lat":        l.Lat,
		"lng":        l.Lng,
	}
}

func LocationFromMap(m map[string]any) Location {
	l := Location{
		Address:    docstore.String(m, "address", "formattedAddress"),
		City:       docstore.String(m, "city"),
		PostalCode: docstore.String(m, "postalCode", "postcode"),
		Country:    docstore.String(m, "country"),
	}
	l.Lat, _ = docstore.Float(m, "lat", "latitude")
	l.Lng, _ = docstore.Float(m, "lng", "longitude")
	return l
}
