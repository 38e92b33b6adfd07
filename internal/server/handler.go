package server

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kavya-jain14/sentiment-tracker/internal/chart"
	"github.com/kavya-jain14/sentiment-tracker/internal/sentiment"
	"github.com/kavya-jain14/sentiment-tracker/internal/service"
)

const svgContentType = "image/svg+xml"

// Tracker is the read/refresh surface of service.Service.
type Tracker interface {
	Snapshot() *service.Snapshot
	Load(ctx context.Context) (*service.Snapshot, error)
}

var _ Tracker = (*service.Service)(nil)

// Handler serves the tracker state as JSON and SVG.
type Handler struct {
	tracker Tracker
	layout  chart.Layout
	gauge   sentiment.Gauge
	painter *chart.Painter
}

// New builds a handler drawing charts on layout.
func New(tracker Tracker, layout chart.Layout) *Handler {
	return &Handler{
		tracker: tracker,
		layout:  layout,
		gauge:   sentiment.DefaultGauge(),
		painter: chart.SVG(),
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/healthz", h.Health)
	r.GET("/api/gauge", h.GetGauge)
	r.GET("/api/series", h.GetSeries)
	r.GET("/api/chart", h.GetChart)
	r.POST("/api/refresh", h.Refresh)
	r.GET("/gauge.svg", h.GaugeSVG)
	r.GET("/chart.svg", h.ChartSVG)
}

// Health reports liveness and the tracker phase.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "phase": h.tracker.Snapshot().Phase})
}

// ready returns the current Ready snapshot or answers 503 while loading.
func (h *Handler) ready(c *gin.Context) (*service.Snapshot, bool) {
	snap := h.tracker.Snapshot()
	if snap == nil || snap.Phase != service.PhaseReady {
		c.JSON(http.StatusServiceUnavailable, gin.H{"state": service.PhaseLoading})
		return nil, false
	}
	return snap, true
}

func noData(c *gin.Context, snap *service.Snapshot) {
	c.JSON(http.StatusOK, gin.H{"state": "no_data", "advisory": snap.Advisory})
}

// GetGauge returns the latest reading with its band and needle angle.
func (h *Handler) GetGauge(c *gin.Context) {
	snap, ok := h.ready(c)
	if !ok {
		return
	}
	reading, ok := snap.Gauge()
	if !ok {
		noData(c, snap)
		return
	}
	c.JSON(http.StatusOK, reading)
}

// GetSeries returns the full oldest-first series.
func (h *Handler) GetSeries(c *gin.Context) {
	snap, ok := h.ready(c)
	if !ok {
		return
	}
	if len(snap.Series) == 0 {
		noData(c, snap)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"state":     "ready",
		"simulated": snap.Simulated,
		"advisory":  snap.Advisory,
		"loadedAt":  snap.LoadedAt,
		"points":    snap.Series,
	})
}

// GetChart returns the series scaled onto the configured canvas.
func (h *Handler) GetChart(c *gin.Context) {
	snap, ok := h.ready(c)
	if !ok {
		return
	}
	plot, err := chart.Scale(snap.Series, h.layout)
	if errors.Is(err, chart.ErrNoData) {
		noData(c, snap)
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"state":     "ready",
		"simulated": snap.Simulated,
		"advisory":  snap.Advisory,
		"plot":      plot,
	})
}

// Refresh triggers an on-demand refresh. Only one load runs at a time.
func (h *Handler) Refresh(c *gin.Context) {
	snap, err := h.tracker.Load(c.Request.Context())
	if errors.Is(err, service.ErrLoadInProgress) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"state":     "ready",
		"points":    len(snap.Series),
		"simulated": snap.Simulated,
		"advisory":  snap.Advisory,
	})
}

// GaugeSVG draws the dial for the latest score.
func (h *Handler) GaugeSVG(c *gin.Context) {
	snap, ok := h.ready(c)
	if !ok {
		return
	}
	latest, ok := snap.Latest()
	if !ok {
		h.render(c, func(w io.Writer) error {
			return h.painter.NoData(w, chart.Layout{Width: h.gauge.Width, Height: h.gauge.Height})
		})
		return
	}
	h.render(c, func(w io.Writer) error { return h.painter.Gauge(w, h.gauge, latest.Score) })
}

// ChartSVG draws the historical dual-axis chart.
func (h *Handler) ChartSVG(c *gin.Context) {
	snap, ok := h.ready(c)
	if !ok {
		return
	}
	plot, err := chart.Scale(snap.Series, h.layout)
	if errors.Is(err, chart.ErrNoData) {
		h.render(c, func(w io.Writer) error { return h.painter.NoData(w, h.layout) })
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	h.render(c, func(w io.Writer) error { return h.painter.History(w, plot) })
}

func (h *Handler) render(c *gin.Context, paint func(w io.Writer) error) {
	c.Header("Content-Type", svgContentType)
	c.Status(http.StatusOK)
	if err := paint(c.Writer); err != nil {
		_ = c.Error(err)
		if !c.Writer.Written() {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
	}
}
