package payments

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/localmart/localmart-backend-go/logger"
	"github.com/localmart/localmart-backend-go/metrics"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

type DetectionSource string

const (
	SourceHint     DetectionSource = "hint"
	SourceIP       DetectionSource = "ip"
	SourceTimeout  DetectionSource = "timeout"
	SourceFallback DetectionSource = "fallback"
)

type Detection struct {
	Country string          `json:"country"`
	Source  DetectionSource `json:"source"`
}

// CountryDetector resolves a country from a client hint or an IP lookup. The lookup races
// a timeout; failure or timeout yields the fallback country.
type CountryDetector struct {
	baseURL  string
	client   *http.Client
	timeout  time.Duration
	fallback string
	log      logrus.FieldLogger
}

func NewCountryDetector(baseURL string, timeout time.Duration, fallback string, log logrus.FieldLogger) *CountryDetector {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	if NormalizeCountry(fallback) == "" {
		fallback = "GB"
	}
	return &CountryDetector{
		baseURL:  baseURL,
		client:   &http.Client{},
		timeout:  timeout,
		fallback: NormalizeCountry(fallback),
		log:      logger.Component(log, "country"),
	}
}

func (d *CountryDetector) Detect(ctx context.Context, ip, hint string) Detection {
	det := d.detect(ctx, ip, hint)
	metrics.CountryDetections.WithLabelValues(string(det.Source)).Inc()
	return det
}

func (d *CountryDetector) detect(ctx context.Context, ip, hint string) Detection {
	if code := NormalizeCountry(hint); code != "" {
		return Detection{Country: code, Source: SourceHint}
	}
	if !routable(ip) {
		return Detection{Country: d.fallback, Source: SourceFallback}
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	type result struct {
		country string
		err     error
	}
	// buffered so the lookup goroutine can always finish
	done := make(chan result, 1)
	go func() {
		c, err := d.lookup(ctx, ip)
		done <- result{c, err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			if errors.Is(r.err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
				d.log.WithField("ip", ip).Warn("country lookup timed out")
				return Detection{Country: d.fallback, Source: SourceTimeout}
			}
			d.log.WithError(r.err).WithField("ip", ip).Warn("country lookup failed")
			return Detection{Country: d.fallback, Source: SourceFallback}
		}
		return Detection{Country: r.country, Source: SourceIP}
	case <-ctx.Done():
		d.log.WithField("ip", ip).Warn("country lookup timed out")
		return Detection{Country: d.fallback, Source: SourceTimeout}
	}
}

func (d *CountryDetector) lookup(ctx context.Context, ip string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/%s/json/", d.baseURL, ip), nil)
	if err != nil {
		return "", err
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("lookup status %d", resp.StatusCode)
	}
	res := gjson.ParseBytes(body)
	for _, path := range []string{"country_code", "countryCode", "country"} {
		if code := NormalizeCountry(res.Get(path).String()); code != "" {
			return code, nil
		}
	}
	return "", errors.New("lookup returned no country")
}

func routable(ip string) bool {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return false
	}
	return !parsed.IsLoopback() && !parsed.IsPrivate() && !parsed.IsUnspecified() && !parsed.IsLinkLocalUnicast()
}
