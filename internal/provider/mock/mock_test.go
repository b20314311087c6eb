package mock

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"zoundz/internal/models/auction"
)

func TestEmbeddedDataset(t *testing.T) {
	t.Parallel()

	s, err := New()
	require.NoError(t, err)

	a, err := s.Auction(context.Background(), "1")
	require.NoError(t, err)
	require.Equal(t, "Neon Dreams", a.Title)
	require.Equal(t, "1000000000000000000", a.HighestBid.String())
	require.Len(t, a.Bids, 3)

	_, err = s.Auction(context.Background(), "404")
	require.ErrorIs(t, err, auction.ErrNotFound)
}

func TestListings(t *testing.T) {
	t.Parallel()

	s, err := New()
	require.NoError(t, err)

	live := s.Live()
	require.Len(t, live, 1)
	require.Equal(t, auction.StatusStarted, live[0].Status)

	for _, r := range s.Past() {
		require.Equal(t, auction.StatusEnded, r.Status)
	}
	require.Len(t, s.Past(), 2)

	require.Len(t, s.Upcoming(), 1)
	require.Equal(t, "4", s.Upcoming()[0].Id)
}

func TestNewFromJSON(t *testing.T) {
	t.Parallel()

	s, err := NewFromJSON([]byte(`{"auctions":[]}`))
	require.NoError(t, err)
	require.Empty(t, s.Live())
	require.NotNil(t, s.Past())

	_, err = NewFromJSON([]byte(`{"auctions":[{"id":"x","endTime":"soon"}]}`))
	require.Error(t, err)

	_, err = NewFromJSON([]byte(`not json`))
	require.Error(t, err)
}
