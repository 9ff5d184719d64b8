package contest_test

import (
	"testing"
	"time"

	"github.com/programme-lv/judge/internal/apperr"
	"github.com/programme-lv/judge/internal/contest"
	"github.com/stretchr/testify/require"
)

var (
	from = time.Date(2022, 8, 27, 0, 0, 0, 0, time.UTC)
	to   = from.Add(2 * time.Hour)
	mid  = from.Add(time.Hour)
)

func TestNewValidates(t *testing.T) {
	_, err := contest.New(1, "c", to, from, nil, nil, 1)
	require.True(t, apperr.Is(err, apperr.InvalidArgument))

	_, err = contest.New(1, "c", from, to, []uint32{1, 1}, nil, 1)
	require.True(t, apperr.Is(err, apperr.InvalidArgument))

	_, err = contest.New(1, "c", from, to, nil, []uint32{2, 3, 2}, 1)
	require.True(t, apperr.Is(err, apperr.InvalidArgument))

	c, err := contest.New(1, "c", from, from, nil, nil, 1)
	require.NoError(t, err)
	require.False(t, c.Open(from))
}

func TestWindowIsHalfOpen(t *testing.T) {
	c, err := contest.New(1, "c", from, to, []uint32{0}, []uint32{1}, 5)
	require.NoError(t, err)

	require.False(t, c.Open(from.Add(-time.Millisecond)))
	require.True(t, c.Open(from))
	require.True(t, c.Open(to.Add(-time.Millisecond)))
	require.False(t, c.Open(to))
}

func TestAdmit(t *testing.T) {
	c, err := contest.New(1, "c", from, to, []uint32{0, 2}, []uint32{1}, 2)
	require.NoError(t, err)

	require.NoError(t, c.Admit(1, 0, mid))
	require.True(t, apperr.Is(c.Admit(1, 0, to), apperr.InvalidArgument))
	require.True(t, apperr.Is(c.Admit(3, 0, mid), apperr.InvalidArgument))
	require.True(t, apperr.Is(c.Admit(1, 1, mid), apperr.InvalidArgument))

	c.Charge(1, 0)
	require.NoError(t, c.Admit(1, 0, mid))
	c.Charge(1, 0)
	require.True(t, apperr.Is(c.Admit(1, 0, mid), apperr.RateLimit))
	// budgets are per problem
	require.NoError(t, c.Admit(1, 2, mid))
}

func TestInheritKeepsCounters(t *testing.T) {
	old, err := contest.New(1, "c", from, to, []uint32{0}, []uint32{1}, 3)
	require.NoError(t, err)
	old.Charge(1, 0)

	next, err := contest.New(1, "renamed", from, to, []uint32{0}, []uint32{1}, 3)
	require.NoError(t, err)
	next.Inherit(old)
	require.Equal(t, uint32(1), next.Used(1, 0))
}

func TestDoc(t *testing.T) {
	c, err := contest.New(2, "weekly", from, to, []uint32{3, 1}, []uint32{0}, 10)
	require.NoError(t, err)
	doc := c.Doc()
	require.Equal(t, "2022-08-27T00:00:00.000Z", doc.From)
	require.Equal(t, "2022-08-27T02:00:00.000Z", doc.To)
	require.Equal(t, []uint32{3, 1}, doc.ProblemIDs)
}
