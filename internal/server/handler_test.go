package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/kavya-jain14/sentiment-tracker/internal/chart"
	"github.com/kavya-jain14/sentiment-tracker/internal/config"
	"github.com/kavya-jain14/sentiment-tracker/internal/sentiment"
	"github.com/kavya-jain14/sentiment-tracker/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type trackerStub struct {
	snap    *service.Snapshot
	loadErr error
	loads   int
}

func (s *trackerStub) Snapshot() *service.Snapshot { return s.snap }

func (s *trackerStub) Load(context.Context) (*service.Snapshot, error) {
	s.loads++
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return s.snap, nil
}

func readySnapshot(series []sentiment.Point) *service.Snapshot {
	return &service.Snapshot{Phase: service.PhaseReady, Series: series}
}

func serve(t *testing.T, tracker Tracker, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	router := NewRouter(New(tracker, chart.DefaultLayout()), zerolog.Nop())
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("parse error: %v (%s)", err, w.Body.String())
	}
	return body
}

func TestHealth(t *testing.T) {
	w := serve(t, &trackerStub{snap: &service.Snapshot{Phase: service.PhaseLoading}}, http.MethodGet, "/healthz")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if body := decode(t, w); body["phase"] != "loading" {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestLoadingAnswers503(t *testing.T) {
	tracker := &trackerStub{snap: &service.Snapshot{Phase: service.PhaseLoading}}
	for _, path := range []string{"/api/gauge", "/api/series", "/api/chart", "/gauge.svg", "/chart.svg"} {
		w := serve(t, tracker, http.MethodGet, path)
		if w.Code != http.StatusServiceUnavailable {
			t.Fatalf("%s: expected 503, got %d", path, w.Code)
		}
		if body := decode(t, w); body["state"] != "loading" {
			t.Fatalf("%s: unexpected body %v", path, body)
		}
	}
}

func TestNoDataState(t *testing.T) {
	tracker := &trackerStub{snap: readySnapshot(nil)}
	for _, path := range []string{"/api/gauge", "/api/series", "/api/chart"} {
		w := serve(t, tracker, http.MethodGet, path)
		if w.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, w.Code)
		}
		if body := decode(t, w); body["state"] != "no_data" {
			t.Fatalf("%s: unexpected body %v", path, body)
		}
	}
}

func TestGetGauge(t *testing.T) {
	snap := readySnapshot([]sentiment.Point{
		{Date: "2024-03-09", Score: 40, Classification: "Fear", SyntheticPrice: 43000},
		{Date: "2024-03-10", Score: 100, Classification: "Extreme Greed", SyntheticPrice: 56000},
	})
	w := serve(t, &trackerStub{snap: snap}, http.MethodGet, "/api/gauge")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var reading service.GaugeReading
	if err := json.Unmarshal(w.Body.Bytes(), &reading); err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if reading.Score != 100 || reading.Angle != 90 || reading.Category.Name != "Extreme Greed" || reading.Date != "2024-03-10" {
		t.Fatalf("unexpected reading: %+v", reading)
	}
}

func TestGetSeriesCarriesAdvisory(t *testing.T) {
	snap := readySnapshot(sentiment.FallbackSeries(sentimentNow()))
	snap.Simulated = true
	snap.Advisory = sentiment.FallbackAdvisory

	w := serve(t, &trackerStub{snap: snap}, http.MethodGet, "/api/series")
	body := decode(t, w)
	if body["advisory"] != sentiment.FallbackAdvisory || body["simulated"] != true {
		t.Fatalf("unexpected body: %v", body)
	}
	if points, _ := body["points"].([]any); len(points) != 6 {
		t.Fatalf("expected 6 points, got %v", body["points"])
	}
}

func TestGetChart(t *testing.T) {
	snap := readySnapshot(sentiment.FallbackSeries(sentimentNow()))
	w := serve(t, &trackerStub{snap: snap}, http.MethodGet, "/api/chart")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body struct {
		Plot chart.Plot `json:"plot"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if len(body.Plot.Points) != 6 || len(body.Plot.Zones) != 5 {
		t.Fatalf("unexpected plot: %d points %d zones", len(body.Plot.Points), len(body.Plot.Zones))
	}
	if body.Plot.Points[0].X != chart.DefaultLayout().Padding {
		t.Fatalf("first x = %v", body.Plot.Points[0].X)
	}
}

func TestRefreshConflict(t *testing.T) {
	tracker := &trackerStub{loadErr: service.ErrLoadInProgress, snap: readySnapshot(nil)}
	w := serve(t, tracker, http.MethodPost, "/api/refresh")
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
}

func TestRefreshSuccess(t *testing.T) {
	tracker := &trackerStub{snap: readySnapshot(sentiment.FallbackSeries(sentimentNow()))}
	w := serve(t, tracker, http.MethodPost, "/api/refresh")
	if w.Code != http.StatusOK || tracker.loads != 1 {
		t.Fatalf("expected 200 and one load, got %d / %d", w.Code, tracker.loads)
	}
}

type staticSource []sentiment.RawEntry

func (s staticSource) FetchEntries(context.Context) ([]sentiment.RawEntry, error) {
	return s, nil
}

func TestRefreshRunsServiceRefresh(t *testing.T) {
	entries := staticSource{
		{Value: "80", Timestamp: strconv.FormatInt(sentimentNow().Unix(), 10)},
		{Value: "40", Timestamp: strconv.FormatInt(sentimentNow().AddDate(0, 0, -1).Unix(), 10)},
	}
	cfg := &config.Config{}
	svc := service.New(cfg, service.NewTracker(entries, zerolog.Nop()), nil, nil, nil, nil, zerolog.Nop())

	w := serve(t, svc, http.MethodPost, "/api/refresh")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d %s", w.Code, w.Body.String())
	}
	if body := decode(t, w); body["points"] != float64(2) || body["simulated"] != false {
		t.Fatalf("unexpected body: %v", body)
	}
	latest, ok := svc.Snapshot().Latest()
	if !ok || latest.Score != 80 {
		t.Fatalf("latest = %+v ok=%v", latest, ok)
	}
}

func TestSVGEndpoints(t *testing.T) {
	tracker := &trackerStub{snap: readySnapshot(sentiment.FallbackSeries(sentimentNow()))}
	for _, path := range []string{"/gauge.svg", "/chart.svg"} {
		w := serve(t, tracker, http.MethodGet, path)
		if w.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, w.Code)
		}
		if ct := w.Header().Get("Content-Type"); ct != svgContentType {
			t.Fatalf("%s: content type %q", path, ct)
		}
		if !strings.Contains(w.Body.String(), "<svg") {
			t.Fatalf("%s: body is not svg", path)
		}
	}
}

func TestChartSVGNoData(t *testing.T) {
	w := serve(t, &trackerStub{snap: readySnapshot(nil)}, http.MethodGet, "/chart.svg")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "No Historical Data") {
		t.Fatalf("expected no-data svg, got %d %s", w.Code, w.Body.String())
	}
}

func sentimentNow() time.Time {
	return time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
}
