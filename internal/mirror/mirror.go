// Package mirror copies auction snapshots from the indexer into the SQL
// mirror served by the postgres provider.
package mirror

import (
	"context"
	"fmt"
	"log/slog"

	"zoundz/internal/lib/logger/sl"
	"zoundz/internal/models/auction"
)

const DefaultPageSize = 500

type Source interface {
	Auctions(ctx context.Context, first, skip int) ([]auction.Auction, error)
}

type Sink interface {
	SaveAuction(ctx context.Context, a auction.Auction) error
}

type Syncer struct {
	log      *slog.Logger
	source   Source
	sink     Sink
	pageSize int
}

func New(log *slog.Logger, source Source, sink Sink, pageSize int) *Syncer {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Syncer{log: log, source: source, sink: sink, pageSize: pageSize}
}

// Run pages through every auction and upserts it. It stops at the first
// failure and reports how many auctions were saved before it.
func (s *Syncer) Run(ctx context.Context) (int, error) {
	const op = "mirror.Run"

	log := s.log.With(slog.String("op", op))

	saved := 0
	for skip := 0; ; skip += s.pageSize {
		page, err := s.source.Auctions(ctx, s.pageSize, skip)
		if err != nil {
			log.Error("reading auctions page", slog.Int("skip", skip), sl.Err(err))
			return saved, fmt.Errorf("%s: %w", op, err)
		}

		for _, a := range page {
			if err := s.sink.SaveAuction(ctx, a); err != nil {
				log.Error("saving auction", slog.String("auction_id", a.Id), sl.Err(err))
				return saved, fmt.Errorf("%s: auction %s: %w", op, a.Id, err)
			}
			saved++
		}
		log.Debug("page mirrored", slog.Int("skip", skip), slog.Int("count", len(page)))

		if len(page) < s.pageSize {
			break
		}
	}

	log.Info("mirror synced", slog.Int("auctions", saved))
	return saved, nil
}
