package payments

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/localmart/localmart-backend-go/logger"
	"github.com/stretchr/testify/assert"
)

func TestDetect_HintWins(t *testing.T) {
	d := NewCountryDetector("http://unused.invalid", time.Second, "GB", logger.Discard())
	got := d.Detect(context.Background(), "8.8.8.8", "ng")
	assert.Equal(t, Detection{Country: "NG", Source: SourceHint}, got)
}

func TestDetect_IPLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/81.2.69.160/json/", r.URL.Path)
		w.Write([]byte(`{"ip":"81.2.69.160","country_code":"ie"}`))
	}))
	defer srv.Close()

	d := NewCountryDetector(srv.URL, time.Second, "GB", logger.Discard())
	got := d.Detect(context.Background(), "81.2.69.160", "")
	assert.Equal(t, Detection{Country: "IE", Source: SourceIP}, got)
}

func TestDetect_TimeoutFallsBack(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
		w.Write([]byte(`{"country_code":"US"}`))
	}))
	defer srv.Close()
	defer close(release)

	d := NewCountryDetector(srv.URL, 20*time.Millisecond, "GB", logger.Discard())
	// the lookup error and the deadline race; both must report a timeout
	for i := 0; i < 5; i++ {
		start := time.Now()
		got := d.Detect(context.Background(), "8.8.8.8", "")

		assert.Equal(t, Detection{Country: "GB", Source: SourceTimeout}, got)
		assert.Less(t, time.Since(start), time.Second)
	}
}

func TestDetect_LookupErrorFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":true,"reason":"RateLimited"}`))
	}))
	defer srv.Close()

	d := NewCountryDetector(srv.URL, time.Second, "gh", logger.Discard())
	got := d.Detect(context.Background(), "8.8.8.8", "")
	assert.Equal(t, Detection{Country: "GH", Source: SourceFallback}, got)
}

func TestDetect_PrivateAddressSkipsLookup(t *testing.T) {
	d := NewCountryDetector("http://unused.invalid", time.Second, "GB", logger.Discard())
	for _, ip := range []string{"127.0.0.1", "10.1.2.3", "::1", "not-an-ip"} {
		got := d.Detect(context.Background(), ip, "")
		assert.Equal(t, Detection{Country: "GB", Source: SourceFallback}, got, ip)
	}
}
