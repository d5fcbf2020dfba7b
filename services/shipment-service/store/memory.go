package store

import (
	"context"
	"sync"

	"github.com/solushipx/logisynapse/shared/contracts"
)

// MemoryStore keeps documents in insertion order, so lookups and listings are
// deterministic. Used by tests and the "memory" driver.
type MemoryStore struct {
	mu        sync.RWMutex
	shipments map[string]contracts.ShipmentDocument
	order     []string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		shipments: make(map[string]contracts.ShipmentDocument),
	}
}

func (s *MemoryStore) CreateShipment(ctx context.Context, doc contracts.ShipmentDocument) (contracts.ShipmentDocument, error) {
	if err := ctx.Err(); err != nil {
		return contracts.ShipmentDocument{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.shipments[doc.ID]; exists {
		return contracts.ShipmentDocument{}, ErrShipmentExists
	}
	s.shipments[doc.ID] = doc
	s.order = append(s.order, doc.ID)
	return doc, nil
}

func (s *MemoryStore) GetShipment(ctx context.Context, id string) (contracts.ShipmentDocument, error) {
	if err := ctx.Err(); err != nil {
		return contracts.ShipmentDocument{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.shipments[id]
	if !ok {
		return contracts.ShipmentDocument{}, ErrShipmentNotFound
	}
	return doc, nil
}

func (s *MemoryStore) GetShipments(ctx context.Context, filter ListFilter) ([]contracts.ShipmentDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []contracts.ShipmentDocument
	for _, id := range s.order {
		doc := s.shipments[id]
		if (filter.CompanyID == "" || doc.CompanyID == filter.CompanyID) &&
			(filter.Status == "" || doc.Status == filter.Status) {
			result = append(result, doc)
		}
	}

	// Apply pagination
	start := int(filter.Offset)
	if start < 0 {
		start = 0
	}
	if start > len(result) {
		return nil, nil
	}
	end := len(result)
	if filter.Limit > 0 && start+int(filter.Limit) < end {
		end = start + int(filter.Limit)
	}
	return result[start:end], nil
}

func (s *MemoryStore) UpdateShipment(ctx context.Context, doc contracts.ShipmentDocument) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.shipments[doc.ID]; !ok {
		return ErrShipmentNotFound
	}
	s.shipments[doc.ID] = doc
	return nil
}

func (s *MemoryStore) FindShipments(ctx context.Context, field Field, value string, limit int) ([]contracts.ShipmentDocument, error) {
	if !field.Valid() {
		return nil, ErrUnknownField
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []contracts.ShipmentDocument
	for _, id := range s.order {
		if limit > 0 && len(result) >= limit {
			break
		}
		doc := s.shipments[id]
		if field.value(doc) == value {
			result = append(result, doc)
		}
	}
	return result, nil
}

func (s *MemoryStore) Close() error { return nil }
