// Package matcher reconciles a scanned or typed shipment reference against
// stored shipments, tolerating OCR misreads.
package matcher

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/solushipx/logisynapse/services/match-service/ocr"
	"github.com/solushipx/logisynapse/services/shipment-service/store"
	"github.com/solushipx/logisynapse/shared/contracts"
	"github.com/solushipx/logisynapse/shared/identity"
	"github.com/solushipx/logisynapse/shared/kafka"
)

// RecordFinder is the read-only lookup the matcher needs. Every
// store.ShipmentStore satisfies it.
type RecordFinder interface {
	FindShipments(ctx context.Context, field store.Field, value string, limit int) ([]contracts.ShipmentDocument, error)
}

// HistoryRecorder keeps the recent search terms of each user.
type HistoryRecorder interface {
	Record(ctx context.Context, userID, term string) error
	Recent(ctx context.Context, userID string, n int) ([]string, error)
}

// EventSearchCompleted is published after every successful manual search.
const EventSearchCompleted = "match.search.completed"

// SearchCompleted is the payload of EventSearchCompleted.
type SearchCompleted struct {
	UserID     string    `json:"userID"`
	CompanyID  string    `json:"companyID,omitempty"`
	Term       string    `json:"term"`
	Candidates int       `json:"candidates"`
	Matches    int       `json:"matches"`
	At         time.Time `json:"at"`
}

// lookupFields are queried for every candidate, in this order.
var lookupFields = []store.Field{store.FieldShipmentID, store.FieldTrackingNumber}

// Options tune a Matcher. Zero values take the defaults.
type Options struct {
	// Timeout bounds one whole search. Default 10s.
	Timeout time.Duration
	// Concurrency caps in-flight lookups. Default 8.
	Concurrency int
	// LookupLimit caps the hits of each lookup. Default 5.
	LookupLimit int
	// MaxResults caps the deduplicated result list. Default 20.
	MaxResults int
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = 10 * time.Second
	}
	if o.Concurrency <= 0 {
		o.Concurrency = 8
	}
	if o.LookupLimit <= 0 {
		o.LookupLimit = 5
	}
	if o.MaxResults <= 0 {
		o.MaxResults = DefaultMaxResults
	}
	return o
}

// Matcher runs manual searches. It is safe for concurrent use.
type Matcher struct {
	finder  RecordFinder
	opts    Options
	logger  *zap.Logger
	events  kafka.Publisher
	history HistoryRecorder
	now     func() time.Time

	// identical terms searched at the same moment share one fan-out
	flight singleflight.Group
}

// New builds a Matcher over finder. events and history may be nil.
func New(finder RecordFinder, opts Options, events kafka.Publisher, history HistoryRecorder, logger *zap.Logger) *Matcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Matcher{
		finder:  finder,
		opts:    opts.withDefaults(),
		logger:  logger,
		events:  events,
		history: history,
		now:     time.Now,
	}
}

// ManualSearch looks up every OCR spelling of req.SearchTerm by shipment ID
// and by tracking number, and returns the distinct hits.
//
// A nil caller yields identity.ErrUnauthenticated before any lookup. Every
// other failure is reported in the response with a nil error.
func (m *Matcher) ManualSearch(ctx context.Context, caller *identity.Identity, req SearchRequest) (*SearchResponse, error) {
	if caller == nil {
		return nil, identity.ErrUnauthenticated
	}
	term := strings.TrimSpace(req.SearchTerm)
	if term == "" {
		return Failure(ErrSearchTermRequired.Error()), nil
	}

	// the shared fan-out outlives any single caller and is bounded by
	// Options.Timeout; each caller stops waiting when its own ctx ends
	ch := m.flight.DoChan(strings.ToUpper(term), func() (interface{}, error) {
		return m.search(context.WithoutCancel(ctx), term)
	})
	var (
		v   interface{}
		err error
	)
	select {
	case <-ctx.Done():
		err = ctx.Err()
	case r := <-ch:
		v, err = r.Val, r.Err
	}
	if err != nil {
		m.logger.Error("manual search failed",
			zap.String("term", term),
			zap.String("user_id", caller.UserID.String()),
			zap.Error(err))
		return Failure(err.Error()), nil
	}
	res := v.(*searchResult)

	m.record(ctx, caller, term, res)
	return &SearchResponse{Success: true, Matches: res.matches}, nil
}

// RecentSearches returns the caller's last n search terms, newest first.
func (m *Matcher) RecentSearches(ctx context.Context, caller *identity.Identity, n int) ([]string, error) {
	if caller == nil {
		return nil, identity.ErrUnauthenticated
	}
	if m.history == nil {
		return []string{}, nil
	}
	return m.history.Recent(ctx, caller.UserID.String(), n)
}

type searchResult struct {
	candidates int
	matches    []Match
}

func (m *Matcher) search(ctx context.Context, term string) (*searchResult, error) {
	ctx, cancel := context.WithTimeout(ctx, m.opts.Timeout)
	defer cancel()

	candidates := ocr.Candidates(term)

	// one slot per (candidate, field) keeps the concatenation order fixed
	// whatever order the lookups finish in
	slots := make([][]contracts.ShipmentDocument, len(candidates)*len(lookupFields))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.opts.Concurrency)
	for i, candidate := range candidates {
		for j, field := range lookupFields {
			slot := i*len(lookupFields) + j
			g.Go(func() error {
				docs, err := m.finder.FindShipments(gctx, field, candidate, m.opts.LookupLimit)
				if err != nil {
					m.logger.Debug("lookup failed",
						zap.String("field", string(field)),
						zap.String("value", candidate),
						zap.Error(err))
					return err
				}
				slots[slot] = docs
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var hits []contracts.ShipmentDocument
	for _, docs := range slots {
		hits = append(hits, docs...)
	}
	unique := Dedupe(hits, m.opts.MaxResults)

	matches := make([]Match, len(unique))
	for i, doc := range unique {
		matches[i] = Project(doc)
	}
	m.logger.Debug("manual search finished",
		zap.String("term", term),
		zap.Int("candidates", len(candidates)),
		zap.Int("hits", len(hits)),
		zap.Int("matches", len(matches)))
	return &searchResult{candidates: len(candidates), matches: matches}, nil
}

// record publishes the completion event and remembers the term. Both are
// best effort and never change the response.
func (m *Matcher) record(ctx context.Context, caller *identity.Identity, term string, res *searchResult) {
	userID := caller.UserID.String()
	if m.events != nil {
		evt := kafka.Event{
			Event: EventSearchCompleted,
			Payload: SearchCompleted{
				UserID:     userID,
				CompanyID:  caller.CompanyID,
				Term:       term,
				Candidates: res.candidates,
				Matches:    len(res.matches),
				At:         m.now().UTC(),
			},
		}
		if err := m.events.Publish(ctx, userID, evt); err != nil {
			m.logger.Warn("failed to publish search event", zap.String("user_id", userID), zap.Error(err))
		}
	}
	if m.history != nil {
		if err := m.history.Record(ctx, userID, term); err != nil {
			m.logger.Warn("failed to record search history", zap.String("user_id", userID), zap.Error(err))
		}
	}
}
