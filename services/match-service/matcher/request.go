package matcher

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/solushipx/logisynapse/shared/contracts"
)

// ErrSearchTermRequired is the validation failure for a missing, empty or
// non-string searchTerm. It is reported in the response, never returned.
var ErrSearchTermRequired = errors.New("searchTerm is required")

const (
	// StrategyManualSearch tags results of an operator-triggered search.
	StrategyManualSearch = "manual_search"

	// ManualSearchConfidence is the score every manual search result carries.
	ManualSearchConfidence = 0.7
)

// SearchRequest is the body of a manual search.
type SearchRequest struct {
	SearchTerm string `json:"searchTerm"`
}

// UnmarshalJSON accepts any JSON object. A searchTerm that is missing, null
// or not a string decodes as empty so the matcher reports it as a
// validation failure rather than the transport rejecting the body.
func (r *SearchRequest) UnmarshalJSON(data []byte) error {
	var raw struct {
		SearchTerm json.RawMessage `json:"searchTerm"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.SearchTerm = ""
	if len(raw.SearchTerm) > 0 {
		var s string
		if json.Unmarshal(raw.SearchTerm, &s) == nil {
			r.SearchTerm = s
		}
	}
	return nil
}

// ShipmentSummary is the minimal projection of a matched shipment.
type ShipmentSummary struct {
	ID              string             `json:"id"`
	ShipmentID      string             `json:"shipmentID"`
	SelectedCarrier string             `json:"selectedCarrier"`
	BookedAt        *time.Time         `json:"bookedAt"`
	ShipFrom        *contracts.Address `json:"shipFrom"`
	ShipTo          *contracts.Address `json:"shipTo"`
	TotalCharges    float64            `json:"totalCharges"`
}

// Match is one entry of a successful search response.
type Match struct {
	Shipment      ShipmentSummary `json:"shipment"`
	Confidence    float64         `json:"confidence"`
	MatchStrategy string          `json:"matchStrategy"`
}

// SearchResponse is either {success:true, matches:[...]} or
// {success:false, message:"..."}.
type SearchResponse struct {
	Success bool    `json:"success"`
	Matches []Match `json:"matches,omitempty"`
	Message string  `json:"message,omitempty"`
}

// Failure builds the success:false response.
func Failure(message string) *SearchResponse {
	return &SearchResponse{Success: false, Message: message}
}

// MarshalJSON writes exactly one of the two response shapes. A successful
// search with no hits still carries an empty matches array.
func (r SearchResponse) MarshalJSON() ([]byte, error) {
	if !r.Success {
		return json.Marshal(struct {
			Success bool   `json:"success"`
			Message string `json:"message"`
		}{false, r.Message})
	}
	matches := r.Matches
	if matches == nil {
		matches = []Match{}
	}
	return json.Marshal(struct {
		Success bool    `json:"success"`
		Matches []Match `json:"matches"`
	}{true, matches})
}
