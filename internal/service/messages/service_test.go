package messages

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/board-server/internal/store"
	"github.com/vovakirdan/board-server/internal/store/sqlite"
	"github.com/vovakirdan/board-server/internal/validation"
)

// stepClock returns a clock advancing by one second on every call.
func stepClock(start time.Time) func() time.Time {
	next := start
	return func() time.Time {
		now := next
		next = next.Add(time.Second)
		return now
	}
}

func newTestService(t *testing.T) *Service {
	t.Helper()

	st, err := sqlite.NewWithSetup(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.Migrate(context.Background()))

	start := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	return New(st, "default", WithClock(stepClock(start)))
}

func TestSubmit_StoresCanonicalStyle(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	res, err := svc.Submit(ctx, SubmitInput{
		Message:    "Hello World",
		BgColor:    "#A6FF9D",
		FontFamily: "Georgia",
		TextSize:   "large",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.ID)
	assert.Equal(t, store.Style{BgColor: "#a6ff9d", FontFamily: "Georgia", TextSize: "large"}, res.Style)

	cur, err := svc.Current(ctx)
	require.NoError(t, err)
	require.NotNil(t, cur)
	assert.Equal(t, "Hello World", cur.Text)
	assert.Equal(t, res.Style, cur.Style)
	assert.True(t, res.CreatedAt.Equal(cur.CreatedAt))
}

func TestSubmit_StyleFallsBackToDefaults(t *testing.T) {
	svc := newTestService(t)

	res, err := svc.Submit(context.Background(), SubmitInput{
		Message:    "  padded  ",
		BgColor:    "purple",
		FontFamily: 12,
	})
	require.NoError(t, err)
	assert.Equal(t, store.Style{BgColor: "", FontFamily: "system-ui", TextSize: "medium"}, res.Style)

	cur, err := svc.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "padded", cur.Text)
}

func TestSubmit_RejectionsCreateNoRow(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Submit(ctx, SubmitInput{Message: ""})
	require.ErrorIs(t, err, validation.ErrEmpty)
	assert.Equal(t, "Message cannot be empty", err.Error())

	_, err = svc.Submit(ctx, SubmitInput{Message: strings.Repeat("x", 101)})
	require.ErrorIs(t, err, validation.ErrTooLong)
	assert.Equal(t, "Message too long (max 100 chars)", err.Error())

	_, err = svc.Submit(ctx, SubmitInput{Message: nil})
	require.ErrorIs(t, err, validation.ErrNotString)
	assert.ErrorIs(t, err, validation.ErrInvalidMessage)

	list, err := svc.List(ctx, 1, 20)
	require.NoError(t, err)
	assert.Zero(t, list.Total)
}

func TestCurrent_EmptyBoard(t *testing.T) {
	svc := newTestService(t)

	cur, err := svc.Current(context.Background())
	require.NoError(t, err)
	assert.Nil(t, cur)
}

func TestOrdering_NewestFirst(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Submit(ctx, SubmitInput{Message: "M1"})
	require.NoError(t, err)
	_, err = svc.Submit(ctx, SubmitInput{Message: "M2"})
	require.NoError(t, err)

	cur, err := svc.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, "M2", cur.Text)

	list, err := svc.List(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, list.Items, 2)
	assert.Equal(t, "M2", list.Items[0].Text)
	assert.Equal(t, "M1", list.Items[1].Text)
}

func TestList_IdempotentAndPaginated(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.Submit(ctx, SubmitInput{Message: "msg"})
		require.NoError(t, err)
	}

	first, err := svc.List(ctx, 1, 2)
	require.NoError(t, err)
	second, err := svc.List(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	beyond, err := svc.List(ctx, 5, 2)
	require.NoError(t, err)
	assert.Empty(t, beyond.Items)
	assert.Equal(t, int64(3), beyond.Total)
}

func TestList_ClampsArguments(t *testing.T) {
	svc := newTestService(t)

	list, err := svc.List(context.Background(), -3, 1000)
	require.NoError(t, err)
	assert.Equal(t, 1, list.Page)
	assert.Equal(t, MaxLimit, list.Limit)

	list, err = svc.List(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, list.Page)
	assert.Equal(t, 1, list.Limit)
}

func TestDelete(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	res, err := svc.Submit(ctx, SubmitInput{Message: "doomed"})
	require.NoError(t, err)

	n, err := svc.Delete(ctx, "999")
	require.NoError(t, err)
	assert.Zero(t, n)

	list, err := svc.List(ctx, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), list.Total)

	n, err = svc.Delete(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, int64(1), res.ID)

	list, err = svc.List(ctx, 1, 20)
	require.NoError(t, err)
	assert.Zero(t, list.Total)
	assert.Empty(t, list.Items)
}

func TestDelete_RejectsNonInteger(t *testing.T) {
	svc := newTestService(t)

	for _, raw := range []string{"", "abc", "1.5", "12abc", "NaN"} {
		_, err := svc.Delete(context.Background(), raw)
		assert.ErrorIs(t, err, ErrInvalidID, raw)
	}
}

// faultyStore fails every call, standing in for an I/O fault.
type faultyStore struct {
	err error
}

func (f faultyStore) Insert(context.Context, *store.Message) error { return f.err }
func (f faultyStore) Latest(context.Context, string) (*store.Message, error) {
	return nil, f.err
}
func (f faultyStore) ListPage(context.Context, string, int, int) (*store.Page, error) {
	return nil, f.err
}
func (f faultyStore) DeleteByID(context.Context, int64) (int64, error) { return 0, f.err }

func TestStorageFaultsPropagate(t *testing.T) {
	ioErr := errors.New("disk I/O error")
	svc := New(faultyStore{err: ioErr}, "default")
	ctx := context.Background()

	_, err := svc.Submit(ctx, SubmitInput{Message: "hi"})
	assert.ErrorIs(t, err, ioErr)

	var rej *validation.Rejection
	assert.False(t, errors.As(err, &rej), "storage faults are not rejections")

	_, err = svc.Current(ctx)
	assert.ErrorIs(t, err, ioErr)

	_, err = svc.List(ctx, 1, 20)
	assert.ErrorIs(t, err, ioErr)

	_, err = svc.Delete(ctx, "1")
	assert.ErrorIs(t, err, ioErr)
}

func TestSubmit_ValidationShortCircuitsStorage(t *testing.T) {
	svc := New(faultyStore{err: errors.New("must not be called")}, "default")

	_, err := svc.Submit(context.Background(), SubmitInput{Message: "   "})
	assert.ErrorIs(t, err, validation.ErrEmpty)
}
