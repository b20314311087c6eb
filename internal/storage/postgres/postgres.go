package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/big"

	"zoundz/internal/models/auction"

	_ "github.com/lib/pq"
)

// Storage reads auction snapshots from a Postgres mirror of the subgraph.
type Storage struct {
	db *sql.DB
}

func New(storagePath string) (*Storage, error) {
	const op = "storage.postgres.New"

	db, err := sql.Open("postgres", storagePath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	stmt, err := db.Prepare(`
	CREATE TABLE IF NOT EXISTS auction (
		id VARCHAR(100) PRIMARY KEY,
		tokenId NUMERIC(78, 0) NOT NULL,
		title VARCHAR(200) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		artist VARCHAR(100) NOT NULL DEFAULT '',
		coverImage TEXT NOT NULL DEFAULT '',
		audioUrl TEXT NOT NULL DEFAULT '',
		startTime BIGINT NOT NULL DEFAULT 0,
		endTime BIGINT NOT NULL,
		highestBid NUMERIC(78, 0) NOT NULL DEFAULT 0,
		highestBidder VARCHAR(100) NOT NULL DEFAULT '',
		status VARCHAR(20) NOT NULL DEFAULT 'CREATED'
	);
	`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	_, err = stmt.Exec()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	stmt, err = db.Prepare(`
	CREATE TABLE IF NOT EXISTS bid (
		id VARCHAR(100) PRIMARY KEY,
		auctionId VARCHAR(100) REFERENCES auction(id) ON DELETE CASCADE,
		bidder VARCHAR(100) NOT NULL,
		amount NUMERIC(78, 0) NOT NULL,
		timestamp BIGINT NOT NULL,
		comment TEXT NOT NULL DEFAULT ''
	);
	`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	_, err = stmt.Exec()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{db: db}, nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) Auction(ctx context.Context, id string) (auction.Auction, error) {
	const op = "storage.postgres.Auction"

	var (
		a                   auction.Auction
		tokenId, highestBid string
		status              string
	)
	err := s.db.QueryRowContext(ctx, `
	SELECT id, tokenId::TEXT, title, description, artist, coverImage, audioUrl,
		startTime, endTime, highestBid::TEXT, highestBidder, status
	FROM auction
	WHERE id = $1
	`, id).Scan(
		&a.Id, &tokenId, &a.Title, &a.Description, &a.Artist, &a.CoverImage, &a.AudioUrl,
		&a.StartTime, &a.EndTime, &highestBid, &a.HighestBidder, &status,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return auction.Auction{}, fmt.Errorf("%s: %s: %w", op, id, auction.ErrNotFound)
	}
	if err != nil {
		return auction.Auction{}, fmt.Errorf("%s: %w", op, err)
	}
	a.Status = auction.Status(status)

	if a.TokenId, err = parseNumeric(tokenId); err != nil {
		return auction.Auction{}, fmt.Errorf("%s: tokenId: %w", op, err)
	}
	if a.HighestBid, err = parseNumeric(highestBid); err != nil {
		return auction.Auction{}, fmt.Errorf("%s: highestBid: %w", op, err)
	}

	rows, err := s.db.QueryContext(ctx, `
	SELECT id, bidder, amount::TEXT, timestamp, comment
	FROM bid
	WHERE auctionId = $1
	ORDER BY timestamp DESC
	`, id)
	if err != nil {
		return auction.Auction{}, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	a.Bids = []auction.Bid{}
	for rows.Next() {
		var (
			b      auction.Bid
			amount string
		)
		if err := rows.Scan(&b.Id, &b.Bidder, &amount, &b.Timestamp, &b.Comment); err != nil {
			return auction.Auction{}, fmt.Errorf("%s: %w", op, err)
		}
		if b.Amount, err = parseNumeric(amount); err != nil {
			return auction.Auction{}, fmt.Errorf("%s: bid %s amount: %w", op, b.Id, err)
		}
		a.Bids = append(a.Bids, b)
	}
	if err := rows.Err(); err != nil {
		return auction.Auction{}, fmt.Errorf("%s: %w", op, err)
	}

	return a, nil
}

// SaveAuction upserts a snapshot and replaces its bids. It is how the mirror
// is fed from the indexer.
func (s *Storage) SaveAuction(ctx context.Context, a auction.Auction) error {
	const op = "storage.postgres.SaveAuction"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
	INSERT INTO auction(id, tokenId, title, description, artist, coverImage, audioUrl,
		startTime, endTime, highestBid, highestBidder, status)
	VALUES ($1, $2::NUMERIC, $3, $4, $5, $6, $7, $8, $9, $10::NUMERIC, $11, $12)
	ON CONFLICT (id) DO UPDATE SET
		tokenId = EXCLUDED.tokenId,
		title = EXCLUDED.title,
		description = EXCLUDED.description,
		artist = EXCLUDED.artist,
		coverImage = EXCLUDED.coverImage,
		audioUrl = EXCLUDED.audioUrl,
		startTime = EXCLUDED.startTime,
		endTime = EXCLUDED.endTime,
		highestBid = EXCLUDED.highestBid,
		highestBidder = EXCLUDED.highestBidder,
		status = EXCLUDED.status
	`,
		a.Id, numeric(a.TokenId), a.Title, a.Description, a.Artist, a.CoverImage, a.AudioUrl,
		a.StartTime, a.EndTime, numeric(a.HighestBid), a.HighestBidder, string(a.Status),
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	_, err = tx.ExecContext(ctx, `DELETE FROM bid WHERE auctionId = $1`, a.Id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	for _, b := range a.Bids {
		_, err = tx.ExecContext(ctx, `
		INSERT INTO bid(id, auctionId, bidder, amount, timestamp, comment)
		VALUES ($1, $2, $3, $4::NUMERIC, $5, $6)
		`, b.Id, a.Id, b.Bidder, numeric(b.Amount), b.Timestamp, b.Comment)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func parseNumeric(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("invalid numeric %q", s)
	}
	return v, nil
}

func numeric(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}
