// Package terrain provides the elevation oracle the profile corrector
// anchors departure/arrival altitudes against (spec.md §4.8, §6.2).
package terrain

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/ffdumont/navprofile/internal/geodesy"
)

// Oracle looks up ground elevation in feet at a coordinate. Elevation
// is always returned as an estimate when the real lookup failed;
// callers read Estimated to know whether to flag the result.
type Oracle interface {
	ElevationFt(ctx context.Context, lat, lon float64) (ft float64, estimated bool, err error)
}

// OpenElevation queries the public Open-Elevation API, grounded on the
// getElevation pattern from the pack's terrain geomapping example.
// Results are cached in memory keyed by coordinate rounded to 5
// decimal places (spec.md §6.2); a timed-out or failed lookup degrades
// to 0 ft with Estimated=true rather than failing the caller.
type OpenElevation struct {
	httpClient *http.Client
	baseURL    string
	timeout    time.Duration

	mu    sync.Mutex
	cache map[coordKey]float64
}

type coordKey struct {
	lat, lon float64
}

const defaultBaseURL = "https://api.open-elevation.com/api/v1/lookup"

// NewOpenElevation builds an oracle with the given per-call timeout.
// A zero timeout uses the spec's default of 5 seconds.
func NewOpenElevation(timeout time.Duration) *OpenElevation {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &OpenElevation{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    defaultBaseURL,
		timeout:    timeout,
		cache:      make(map[coordKey]float64),
	}
}

func round5(v float64) float64 {
	return float64(int64(v*1e5+0.5*sign(v))) / 1e5
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}

type lookupResponse struct {
	Results []struct {
		Elevation float64 `json:"elevation"`
	} `json:"results"`
}

// ElevationFt returns ground elevation in feet MSL at (lat, lon).
func (o *OpenElevation) ElevationFt(ctx context.Context, lat, lon float64) (float64, bool, error) {
	key := coordKey{round5(lat), round5(lon)}

	o.mu.Lock()
	if ft, ok := o.cache[key]; ok {
		o.mu.Unlock()
		return ft, false, nil
	}
	o.mu.Unlock()

	meters, err := o.fetchMeters(ctx, lat, lon)
	if err != nil {
		return 0, true, nil
	}

	ft := geodesy.ToFeet(meters, geodesy.UnitMeters)
	o.mu.Lock()
	o.cache[key] = ft
	o.mu.Unlock()
	return ft, false, nil
}

func (o *OpenElevation) fetchMeters(ctx context.Context, lat, lon float64) (float64, error) {
	url := fmt.Sprintf("%s?locations=%.6f,%.6f", o.baseURL, lat, lon)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("open-elevation returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, err
	}

	var result lookupResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return 0, err
	}
	if len(result.Results) == 0 {
		return 0, fmt.Errorf("no elevation data for %.6f,%.6f", lat, lon)
	}
	return result.Results[0].Elevation, nil
}

// Static is a fixed-elevation oracle used by tests and by callers who
// already have a digital elevation model loaded locally.
type Static struct {
	Ft map[[2]float64]float64
}

func (s Static) ElevationFt(_ context.Context, lat, lon float64) (float64, bool, error) {
	if ft, ok := s.Ft[[2]float64{round5(lat), round5(lon)}]; ok {
		return ft, false, nil
	}
	return 0, true, nil
}
