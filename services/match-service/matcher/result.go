package matcher

import (
	"time"

	"github.com/solushipx/logisynapse/shared/contracts"
)

// DefaultMaxResults bounds the deduplicated result list.
const DefaultMaxResults = 20

// Dedupe keeps the first document for each ID, in order of first appearance,
// and truncates to max entries. max <= 0 means no bound.
func Dedupe(hits []contracts.ShipmentDocument, max int) []contracts.ShipmentDocument {
	seen := make(map[string]struct{}, len(hits))
	out := make([]contracts.ShipmentDocument, 0, len(hits))
	for _, doc := range hits {
		if max > 0 && len(out) >= max {
			break
		}
		if _, dup := seen[doc.ID]; dup {
			continue
		}
		seen[doc.ID] = struct{}{}
		out = append(out, doc)
	}
	return out
}

// accessor reads one optional fact from a document; ok is false when the
// document does not carry it in that place.
type accessor[T any] func(contracts.ShipmentDocument) (v T, ok bool)

// firstOf evaluates chain in order and returns the first value found, or def.
func firstOf[T any](doc contracts.ShipmentDocument, def T, chain []accessor[T]) T {
	for _, get := range chain {
		if v, ok := get(doc); ok {
			return v
		}
	}
	return def
}

// UnknownCarrier labels shipments with no carrier recorded anywhere.
const UnknownCarrier = "Unknown"

var carrierChain = []accessor[string]{
	func(d contracts.ShipmentDocument) (string, bool) {
		return d.Carrier, d.Carrier != ""
	},
	func(d contracts.ShipmentDocument) (string, bool) {
		if d.SelectedCarrier == nil {
			return "", false
		}
		return d.SelectedCarrier.Carrier, d.SelectedCarrier.Carrier != ""
	},
	func(d contracts.ShipmentDocument) (string, bool) {
		if d.SelectedCarrier == nil {
			return "", false
		}
		return d.SelectedCarrier.Name, d.SelectedCarrier.Name != ""
	},
}

var bookedAtChain = []accessor[*time.Time]{
	func(d contracts.ShipmentDocument) (*time.Time, bool) {
		return d.BookedAt, d.BookedAt != nil
	},
	func(d contracts.ShipmentDocument) (*time.Time, bool) {
		return d.CreatedAt, d.CreatedAt != nil
	},
}

var shipFromChain = []accessor[*contracts.Address]{
	func(d contracts.ShipmentDocument) (*contracts.Address, bool) {
		return d.ShipFrom, !d.ShipFrom.IsZero()
	},
	func(d contracts.ShipmentDocument) (*contracts.Address, bool) {
		if d.ShipmentInfo == nil {
			return nil, false
		}
		return d.ShipmentInfo.ShipFrom, !d.ShipmentInfo.ShipFrom.IsZero()
	},
}

var shipToChain = []accessor[*contracts.Address]{
	func(d contracts.ShipmentDocument) (*contracts.Address, bool) {
		return d.ShipTo, !d.ShipTo.IsZero()
	},
	func(d contracts.ShipmentDocument) (*contracts.Address, bool) {
		if d.ShipmentInfo == nil {
			return nil, false
		}
		return d.ShipmentInfo.ShipTo, !d.ShipmentInfo.ShipTo.IsZero()
	},
}

// a recorded zero is a real amount and stops the chain
var totalChargesChain = []accessor[float64]{
	func(d contracts.ShipmentDocument) (float64, bool) {
		if d.TotalCharges == nil {
			return 0, false
		}
		return *d.TotalCharges, true
	},
	func(d contracts.ShipmentDocument) (float64, bool) {
		if d.SelectedRate == nil || d.SelectedRate.TotalCharges == nil {
			return 0, false
		}
		return *d.SelectedRate.TotalCharges, true
	},
	func(d contracts.ShipmentDocument) (float64, bool) {
		if d.Pricing == nil || d.Pricing.Total == nil {
			return 0, false
		}
		return *d.Pricing.Total, true
	},
}

// Project maps a stored document to the manual search result shape.
func Project(doc contracts.ShipmentDocument) Match {
	return Match{
		Shipment: ShipmentSummary{
			ID:              doc.ID,
			ShipmentID:      doc.ShipmentID,
			SelectedCarrier: firstOf(doc, UnknownCarrier, carrierChain),
			BookedAt:        firstOf[*time.Time](doc, nil, bookedAtChain),
			ShipFrom:        firstOf[*contracts.Address](doc, nil, shipFromChain),
			ShipTo:          firstOf[*contracts.Address](doc, nil, shipToChain),
			TotalCharges:    firstOf(doc, 0, totalChargesChain),
		},
		Confidence:    ManualSearchConfidence,
		MatchStrategy: StrategyManualSearch,
	}
}
