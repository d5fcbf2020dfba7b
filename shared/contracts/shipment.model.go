package contracts

import "time"

// Shipment statuses as written by the booking flow.
const (
	StatusDraft     = "draft"
	StatusPending   = "pending"
	StatusBooked    = "booked"
	StatusInTransit = "in_transit"
	StatusDelivered = "delivered"
	StatusCancelled = "cancelled"
)

// Address is the location summary stored on a shipment document.
type Address struct {
	Company    string `json:"company,omitempty"`
	Street     string `json:"street,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
	Country    string `json:"country,omitempty"`
}

// IsZero reports whether no part of the address is populated.
func (a *Address) IsZero() bool {
	return a == nil || *a == Address{}
}

// SelectedCarrier is the carrier choice made at booking time. Older documents
// carry the code in Carrier, newer ones only the display Name.
type SelectedCarrier struct {
	Carrier string `json:"carrier,omitempty"`
	Name    string `json:"name,omitempty"`
	Service string `json:"service,omitempty"`
}

// SelectedRate is the quoted rate the customer accepted.
type SelectedRate struct {
	TotalCharges *float64 `json:"totalCharges,omitempty"`
	Currency     string   `json:"currency,omitempty"`
}

// Pricing is the legacy charge breakdown written by the first booking UI.
type Pricing struct {
	Total *float64 `json:"total,omitempty"`
}

// ShipmentInfo nests the addresses for documents created by the draft form.
type ShipmentInfo struct {
	ShipFrom *Address `json:"shipFrom,omitempty"`
	ShipTo   *Address `json:"shipTo,omitempty"`
}

// ShipmentDocument is a shipment record as held by the document store.
// Documents were written by several generations of the booking flow, so most
// fields are optional and the same fact may live in more than one place.
type ShipmentDocument struct {
	ID              string           `json:"id"`
	ShipmentID      string           `json:"shipmentID,omitempty"`
	TrackingNumber  string           `json:"trackingNumber,omitempty"`
	CompanyID       string           `json:"companyID,omitempty"`
	Status          string           `json:"status,omitempty"`
	Carrier         string           `json:"carrier,omitempty"`
	SelectedCarrier *SelectedCarrier `json:"selectedCarrier,omitempty"`
	SelectedRate    *SelectedRate    `json:"selectedRate,omitempty"`
	Pricing         *Pricing         `json:"pricing,omitempty"`
	TotalCharges    *float64         `json:"totalCharges,omitempty"`
	BookedAt        *time.Time       `json:"bookedAt,omitempty"`
	CreatedAt       *time.Time       `json:"createdAt,omitempty"`
	ShipFrom        *Address         `json:"shipFrom,omitempty"`
	ShipTo          *Address         `json:"shipTo,omitempty"`
	ShipmentInfo    *ShipmentInfo    `json:"shipmentInfo,omitempty"`
}

// Origin returns the ship-from summary wherever the document keeps it.
func (d ShipmentDocument) Origin() *Address {
	if !d.ShipFrom.IsZero() {
		return d.ShipFrom
	}
	if d.ShipmentInfo != nil && !d.ShipmentInfo.ShipFrom.IsZero() {
		return d.ShipmentInfo.ShipFrom
	}
	return nil
}

// Destination returns the ship-to summary wherever the document keeps it.
func (d ShipmentDocument) Destination() *Address {
	if !d.ShipTo.IsZero() {
		return d.ShipTo
	}
	if d.ShipmentInfo != nil && !d.ShipmentInfo.ShipTo.IsZero() {
		return d.ShipmentInfo.ShipTo
	}
	return nil
}
