// Package mock serves auctions from a static dataset compiled into the
// binary. It backs local development and the mock GraphQL endpoint.
package mock

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	"zoundz/internal/models/auction"
)

//go:embed mockAuctions.json
var dataset []byte

type Store struct {
	records []auction.Record
}

func New() (*Store, error) {
	return NewFromJSON(dataset)
}

func NewFromJSON(raw []byte) (*Store, error) {
	const op = "provider.mock.NewFromJSON"

	var data struct {
		Auctions []auction.Record `json:"auctions"`
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	for _, r := range data.Auctions {
		if _, err := r.Auction(); err != nil {
			return nil, fmt.Errorf("%s: auction %s: %w", op, r.Id, err)
		}
	}
	return &Store{records: data.Auctions}, nil
}

func (s *Store) Auction(_ context.Context, id string) (auction.Auction, error) {
	const op = "provider.mock.Auction"

	r, ok := s.Record(id)
	if !ok {
		return auction.Auction{}, fmt.Errorf("%s: %s: %w", op, id, auction.ErrNotFound)
	}
	return r.Auction()
}

func (s *Store) Record(id string) (auction.Record, bool) {
	for _, r := range s.records {
		if r.Id == id {
			return r, true
		}
	}
	return auction.Record{}, false
}

// Live returns the first started auction, if any.
func (s *Store) Live() []auction.Record {
	for _, r := range s.records {
		if r.Status == auction.StatusStarted {
			return []auction.Record{r}
		}
	}
	return []auction.Record{}
}

func (s *Store) Past() []auction.Record {
	return s.byStatus(auction.StatusEnded)
}

func (s *Store) Upcoming() []auction.Record {
	return s.byStatus(auction.StatusCreated)
}

func (s *Store) byStatus(status auction.Status) []auction.Record {
	out := []auction.Record{}
	for _, r := range s.records {
		if r.Status == status {
			out = append(out, r)
		}
	}
	return out
}
