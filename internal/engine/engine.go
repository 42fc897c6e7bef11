// Package engine implements the view-mode controller: the long-lived
// orchestrator that turns offer snapshots into ranked results and
// cluster layers as the surrounding UI toggles modes, searches, zooms,
// and hovers.
package engine

import (
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/feiramap/feiramap/internal/cluster"
	"github.com/feiramap/feiramap/internal/marker"
	"github.com/feiramap/feiramap/internal/metrics"
	"github.com/feiramap/feiramap/pkg/geomath"
	"github.com/feiramap/feiramap/pkg/rank"
	score "github.com/feiramap/feiramap/pkg/scorer"
	"github.com/feiramap/feiramap/pkg/tier"
	domain "github.com/feiramap/feiramap/pkg/types"
)

// ViewMode is the controller state.
type ViewMode string

// View modes. Default shows every vendor tiered and unranked; best-price
// shows only the current search results, ranked.
const (
	ModeDefault   ViewMode = "default"
	ModeBestPrice ViewMode = "best_price"
)

// ErrNoSearchResults is returned when best-price mode is requested
// without an active search result set.
var ErrNoSearchResults = errors.New("best-price mode requires an active search result set")

const defaultZoom = 12

// IngestStats summarizes one snapshot load.
type IngestStats struct {
	SnapshotID       string `json:"snapshot_id"`
	Accepted         int    `json:"accepted"`
	FilteredGeometry int    `json:"filtered_geometry"`
}

// Engine is the view-mode controller. It owns the current snapshot, the
// active search set, the highlight state, and the latest zoom level, and
// recomputes the full pipeline on every relevant change. One pipeline
// run always completes before the next event is processed; rapid zoom
// events are coalesced because only the zoom current at recompute time
// is ever used.
type Engine struct {
	log      *slog.Logger
	weights  score.Weights
	topPicks int
	markers  *marker.Factory
	clusters *cluster.Manager

	mu        sync.Mutex
	snapshot  domain.Snapshot
	search    []domain.Offer
	ranked    []domain.ScoredOffer
	mode      ViewMode
	zoom      int
	origin    *geomath.Point
	highlight *string
	listeners []func(vendorID *string)
}

// New creates an Engine with default weights, thresholds, and radius.
func New(opts ...Option) *Engine {
	e := &Engine{
		log:      slog.Default(),
		weights:  score.DefaultWeights(),
		topPicks: rank.DefaultTopPicks,
		markers:  marker.NewFactory(marker.DefaultConfig()),
		clusters: cluster.NewManager(cluster.DefaultRadiusPx),
		mode:     ModeDefault,
		zoom:     defaultZoom,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Option configures the Engine.
type Option func(*Engine)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.log = l
	}
}

// WithWeights sets the price/distance scoring weights.
func WithWeights(w score.Weights) Option {
	return func(e *Engine) {
		e.weights = w
	}
}

// WithTopPicks sets how many leading ranks get the top-pick marker.
func WithTopPicks(n int) Option {
	return func(e *Engine) {
		e.topPicks = n
	}
}

// WithMarkerConfig sets the marker zoom thresholds.
func WithMarkerConfig(cfg marker.Config) Option {
	return func(e *Engine) {
		e.markers = marker.NewFactory(cfg)
	}
}

// WithClusterRadius sets the screen-space clustering radius in pixels.
func WithClusterRadius(px float64) Option {
	return func(e *Engine) {
		e.clusters = cluster.NewManager(px)
	}
}

// ValidateOffers splits offers into the valid set and a count of records
// dropped for invalid geometry. An offer whose vendor carries malformed
// coordinates is excluded entirely: never shown, never ranked. A nil
// location is fine and only degrades the distance signal.
func ValidateOffers(offers []domain.Offer) ([]domain.Offer, int) {
	valid := make([]domain.Offer, 0, len(offers))
	filtered := 0
	for i := range offers {
		loc := offers[i].Vendor.Location
		if loc != nil && !loc.Valid() {
			filtered++
			continue
		}
		valid = append(valid, offers[i])
	}
	return valid, filtered
}

// RankOffers scores and ranks offers against an optional origin.
// Offers without a usable price cannot be normalized and are excluded;
// the second return reports how many were. Pure: no engine state.
func RankOffers(
	offers []domain.Offer,
	origin *geomath.Point,
	w score.Weights,
	topN int,
) ([]domain.ScoredOffer, int) {
	priceable := make([]domain.Offer, 0, len(offers))
	for i := range offers {
		if _, ok := offers[i].EffectivePrice(); ok {
			priceable = append(priceable, offers[i])
		}
	}
	excluded := len(offers) - len(priceable)

	scored := score.Score(priceable, origin, w)
	for i := range scored {
		metrics.ScoreDistribution.Observe(scored[i].Score)
	}

	return rank.Assign(scored, topN), excluded
}

// LoadSnapshot replaces the working snapshot. Invalid-geometry offers
// are filtered with a diagnostic, not an error: partial data is routine
// in a crowd-sourced catalog. Ranking annotations and the active search
// are discarded and the controller returns to default mode.
func (e *Engine) LoadSnapshot(offers []domain.Offer) IngestStats {
	valid, filtered := ValidateOffers(offers)

	e.mu.Lock()
	defer e.mu.Unlock()

	e.snapshot = domain.Snapshot{
		ID:        uuid.NewString(),
		Offers:    valid,
		FetchedAt: time.Now(),
	}
	e.search = nil
	e.ranked = nil
	e.mode = ModeDefault

	metrics.SnapshotOffersTotal.Add(float64(len(valid)))
	if filtered > 0 {
		metrics.SnapshotGeometryFilteredTotal.Add(float64(filtered))
		e.log.Warn("offers dropped for invalid coordinates",
			"snapshot_id", e.snapshot.ID,
			"filtered", filtered,
		)
	}
	e.log.Info("snapshot loaded",
		"snapshot_id", e.snapshot.ID,
		"offers", len(valid),
	)

	return IngestStats{
		SnapshotID:       e.snapshot.ID,
		Accepted:         len(valid),
		FilteredGeometry: filtered,
	}
}

// Search filters the snapshot by a case-insensitive match on title or
// product ID and makes the matches the active search result set. While
// in best-price mode the pipeline re-runs immediately: refining a search
// is a full recompute, never a delta update. Returns the match count.
func (e *Engine) Search(query string) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	trimmed := strings.TrimSpace(query)
	q := strings.ToLower(trimmed)
	var matches []domain.Offer
	if q != "" {
		for i := range e.snapshot.Offers {
			o := &e.snapshot.Offers[i]
			if strings.Contains(strings.ToLower(o.Title), q) || o.ProductID == trimmed {
				matches = append(matches, *o)
			}
		}
	}

	e.search = matches
	if e.mode == ModeBestPrice {
		if len(matches) == 0 {
			e.mode = ModeDefault
			e.ranked = nil
		} else {
			e.rerank()
		}
	}

	e.log.Info("search updated", "query", query, "matches", len(matches))
	return len(matches)
}

// ClearSearch discards the active search set and returns to default mode.
func (e *Engine) ClearSearch() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.search = nil
	e.ranked = nil
	e.mode = ModeDefault
}

// SetMode switches the view mode. Entering best-price mode requires an
// active search result set and triggers the score and rank pass; leaving
// it discards all ranking annotations.
func (e *Engine) SetMode(m ViewMode) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch m {
	case ModeBestPrice:
		if len(e.search) == 0 {
			return ErrNoSearchResults
		}
		e.mode = ModeBestPrice
		e.rerank()
	case ModeDefault:
		e.mode = ModeDefault
		e.ranked = nil
	default:
		return errors.New("unknown view mode: " + string(m))
	}
	return nil
}

// Mode returns the current view mode.
func (e *Engine) Mode() ViewMode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mode
}

// SetZoom records the latest zoom level. Layers always computes with the
// most recent value, so intermediate levels of a fast zoom gesture may
// never be observed.
func (e *Engine) SetZoom(zoom int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.zoom = zoom
}

// Zoom returns the latest zoom level.
func (e *Engine) Zoom() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.zoom
}

// SetOrigin sets the shopper's location used for distance scoring. A nil
// or invalid origin degrades gracefully to neutral distances.
func (e *Engine) SetOrigin(p *geomath.Point) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if p != nil && !p.Valid() {
		e.log.Warn("ignoring invalid origin", "lat", p.Lat, "lng", p.Lng)
		p = nil
	}
	e.origin = p
	if e.mode == ModeBestPrice {
		e.rerank()
	}
}

// SetHighlight records the hovered vendor; nil clears it. Last write
// wins. Listeners are notified outside the pipeline lock.
func (e *Engine) SetHighlight(vendorID *string) {
	e.mu.Lock()
	e.highlight = vendorID
	listeners := e.listeners
	e.mu.Unlock()

	for _, fn := range listeners {
		fn(vendorID)
	}
}

// Highlight returns the currently highlighted vendor id, or nil.
func (e *Engine) Highlight() *string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.highlight
}

// OnHighlight registers a listener invoked on every highlight change.
// The map and the results list both subscribe to stay in sync.
func (e *Engine) OnHighlight(fn func(vendorID *string)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners = append(e.listeners, fn)
}

// Ranked returns the current ranking annotations, empty outside
// best-price mode.
func (e *Engine) Ranked() []domain.ScoredOffer {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]domain.ScoredOffer, len(e.ranked))
	copy(out, e.ranked)
	return out
}

// SnapshotID returns the id of the working snapshot, empty before the
// first load.
func (e *Engine) SnapshotID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshot.ID
}

// Layers runs marker generation and clustering for the current mode,
// zoom, and highlight, and returns the layers ready for the rendering
// surface.
func (e *Engine) Layers() []domain.ClusterLayer {
	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()
	defer func() {
		metrics.PipelineDuration.Observe(time.Since(start).Seconds())
	}()

	var markers []domain.MarkerDescriptor
	if e.mode == ModeBestPrice {
		markers = e.searchMarkers()
	} else {
		markers = e.vendorMarkers()
	}

	layers := e.clusters.Layerize(markers, e.zoom)
	for _, l := range layers {
		metrics.LayerMarkers.WithLabelValues(string(l.Bucket)).
			Observe(float64(len(l.Markers)))
		metrics.LayerClusters.WithLabelValues(string(l.Bucket)).
			Observe(float64(len(l.Clusters)))
	}
	return layers
}

// searchMarkers builds one marker per ranked search result. Results
// whose vendors have no usable location are ranked but cannot be drawn.
func (e *Engine) searchMarkers() []domain.MarkerDescriptor {
	markers := make([]domain.MarkerDescriptor, 0, len(e.ranked))
	for i := range e.ranked {
		so := &e.ranked[i]
		if !so.HasValidLocation() {
			continue
		}
		c := tier.Classify(&so.Vendor)
		m := e.markers.Build(&so.Vendor, c, so, so.OnPromotion, e.zoom)
		m.Highlighted = e.isHighlighted(so.Vendor.ID)
		markers = append(markers, m)
	}
	return markers
}

// vendorMarkers builds one marker per located vendor in the snapshot,
// tiered but unranked.
func (e *Engine) vendorMarkers() []domain.MarkerDescriptor {
	vendors := e.snapshot.Vendors()
	markers := make([]domain.MarkerDescriptor, 0, len(vendors))
	for i := range vendors {
		v := &vendors[i]
		if v.Location == nil || !v.Location.Valid() {
			continue
		}
		c := tier.Classify(v)
		m := e.markers.Build(v, c, nil, e.snapshot.VendorOnPromotion(v.ID), e.zoom)
		m.Highlighted = e.isHighlighted(v.ID)
		markers = append(markers, m)
	}
	return markers
}

func (e *Engine) isHighlighted(vendorID string) bool {
	return e.highlight != nil && *e.highlight == vendorID
}

// rerank recomputes ranking annotations for the active search set.
// Callers hold e.mu.
func (e *Engine) rerank() {
	ranked, priceless := RankOffers(e.search, e.origin, e.weights, e.topPicks)
	e.ranked = ranked

	metrics.RankRunsTotal.WithLabelValues(string(ModeBestPrice)).Inc()
	if priceless > 0 {
		metrics.RankPricelessExcludedTotal.Add(float64(priceless))
		e.log.Debug("offers excluded from ranking for missing prices",
			"excluded", priceless,
		)
	}
}
