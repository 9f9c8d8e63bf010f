package docstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestString_FallbackChain(t *testing.T) {
	doc := Document{
		"name":     "  ",
		"location": map[string]any{"address": "12 High St"},
		"phone":    int64(5551234),
	}

	assert.Equal(t, "12 High St", String(doc, "storeAddress", "address", "location.address"))
	assert.Equal(t, "5551234", String(doc, "phoneNumber", "phone"))
	assert.Equal(t, "", String(doc, "name", "storeName"))
}

func TestFloat_ParsesLooseNumbers(t *testing.T) {
	doc := Document{"price": "£1,250.50", "qty": int32(3), "bad": "n/a"}

	price, ok := Float(doc, "price")
	assert.True(t, ok)
	assert.Equal(t, 1250.5, price)

	qty, ok := Int(doc, "quantity", "qty")
	assert.True(t, ok)
	assert.Equal(t, 3, qty)

	_, ok = Float(doc, "bad")
	assert.False(t, ok)
}

func TestTime_Formats(t *testing.T) {
	want := time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC)
	cases := map[string]any{
		"time.Time": want,
		"rfc3339":   "2024-03-10T09:30:00Z",
		"millis":    float64(want.UnixMilli()),
		"seconds":   map[string]any{"seconds": float64(want.Unix()), "nanoseconds": 0},
	}
	for name, v := range cases {
		t.Run(name, func(t *testing.T) {
			got, ok := Time(Document{"createdAt": v}, "timestamp", "createdAt")
			assert.True(t, ok)
			assert.True(t, want.Equal(got), "got %v", got)
		})
	}

	_, ok := Time(Document{}, "createdAt")
	assert.False(t, ok)
}

func TestSliceAndBool(t *testing.T) {
	doc := Document{
		"items":      []any{},
		"orderData":  map[string]any{"items": []map[string]any{{"name": "Bread"}}},
		"isRead":     "true",
		"isArchived": false,
	}

	items := Slice(doc, "items", "orderData.items")
	assert.Len(t, items, 1)
	assert.True(t, Bool(doc, "isRead"))
	assert.False(t, Bool(doc, "isArchived"))
}
