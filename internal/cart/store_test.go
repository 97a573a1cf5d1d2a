package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vxsahu/urban-threadz/internal/domain"
	"github.com/vxsahu/urban-threadz/internal/storage"
	"github.com/vxsahu/urban-threadz/internal/storage/memory"
	"github.com/vxsahu/urban-threadz/pkg/logger"
)

var errBackendDown = errors.New("backend down")

// flakyStorage fails the configured operations.
type flakyStorage struct {
	storage.Storage
	failGet, failSet, failRemove bool
}

func (f *flakyStorage) Get(ctx context.Context, key string) (string, bool, error) {
	if f.failGet {
		return "", false, errBackendDown
	}
	return f.Storage.Get(ctx, key)
}

func (f *flakyStorage) Set(ctx context.Context, key, value string) error {
	if f.failSet {
		return errBackendDown
	}
	return f.Storage.Set(ctx, key, value)
}

func (f *flakyStorage) Remove(ctx context.Context, key string) error {
	if f.failRemove {
		return errBackendDown
	}
	return f.Storage.Remove(ctx, key)
}

func ptr(v int64) *int64 { return &v }

func p1() domain.Product {
	return domain.Product{
		ID:              "P1",
		Name:            "Oversized Graphic Tee",
		RealPrice:       999,
		DiscountedPrice: 799,
		Images:          []domain.Image{{URL: "/img/p1.jpg", Alt: "front", IsMain: true}},
		Sizes:           []domain.Size{{Name: "M", Stock: 5}, {Name: "L", Stock: 2}},
	}
}

func p2() domain.Product {
	return domain.Product{ID: "P2", Name: "Plain Hoodie", RealPrice: 1200, DiscountedPrice: 1200}
}

func newTestStore(t *testing.T) (*Store, *memory.Store) {
	t.Helper()
	backend := memory.New()
	return New(storage.Scope(backend, storage.SessionNamespace("test")), logger.Discard()), backend
}

// ============================================================================
// Scenarios
// ============================================================================

func TestAddToCart_Scenario(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	lines := s.AddToCart(ctx, p1(), 2, "M")
	require.Len(t, lines, 1)
	assert.Equal(t, 2, lines[0].Quantity)
	assert.Equal(t, int64(1598), s.GetCartTotal(ctx))

	lines = s.AddToCart(ctx, p1(), 1, "M")
	require.Len(t, lines, 1)
	assert.Equal(t, 3, lines[0].Quantity)
	assert.Equal(t, int64(2397), s.GetCartTotal(ctx))

	lines = s.AddToCart(ctx, p1(), 1, "L")
	require.Len(t, lines, 2)
	assert.Equal(t, "M", lines[0].Size)
	assert.Equal(t, "L", lines[1].Size)
}

func TestTotals_Scenario(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	s.AddToCart(ctx, p1(), 3, "M")
	s.AddToCart(ctx, p2(), 1, "")

	assert.Equal(t, 4, s.GetCartItemCount(ctx))
	assert.Equal(t, int64(3*799+1200), s.GetCartTotal(ctx))
}

func TestAddToCart_QuantitiesSum(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	want := 0
	for _, q := range []int{1, 4, 2, 3} {
		s.AddToCart(ctx, p1(), q, "M")
		want += q
	}
	lines := s.GetCart(ctx)
	require.Len(t, lines, 1)
	assert.Equal(t, want, lines[0].Quantity)
}

func TestAddToCart_NoClamp(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	s.AddToCart(ctx, p1(), 8, "M")
	lines := s.AddToCart(ctx, p1(), 8, "M")
	assert.Equal(t, 16, lines[0].Quantity)
}

func TestAddToCart_Snapshot(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	lines := s.AddToCart(ctx, p1(), 1, "")
	require.Len(t, lines, 1)
	l := lines[0]
	assert.Equal(t, "Oversized Graphic Tee", l.Name)
	assert.Equal(t, int64(999), l.Price)
	require.NotNil(t, l.DiscountedPrice)
	assert.Equal(t, int64(799), *l.DiscountedPrice)
	assert.Equal(t, "/img/p1.jpg", l.Images[0].URL)
	assert.Empty(t, l.Size)
}

// ============================================================================
// Update / remove / clear
// ============================================================================

func TestUpdateCartItemQuantity(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	s.AddToCart(ctx, p1(), 1, "M")

	lines := s.UpdateCartItemQuantity(ctx, "P1", 7, "M")
	require.Len(t, lines, 1)
	assert.Equal(t, 7, lines[0].Quantity)
	assert.Equal(t, 7, s.GetCartItemCount(ctx))
}

func TestUpdateCartItemQuantity_ZeroRemoves(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	s.AddToCart(ctx, p1(), 2, "M")
	s.AddToCart(ctx, p2(), 1, "")

	lines := s.UpdateCartItemQuantity(ctx, "P1", 0, "M")
	require.Len(t, lines, 1)
	assert.Equal(t, "P2", lines[0].ID)
	assert.False(t, s.IsItemInCart(ctx, "P1", "M"))
}

func TestUpdateCartItemQuantity_NegativeRemoves(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	s.AddToCart(ctx, p1(), 2, "M")

	assert.Empty(t, s.UpdateCartItemQuantity(ctx, "P1", -3, "M"))
	assert.False(t, s.IsItemInCart(ctx, "P1", "M"))
}

func TestUpdateCartItemQuantity_MissingLineNoWrite(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	notified := 0
	s.Subscribe(func([]domain.CartLine) { notified++ })

	lines := s.UpdateCartItemQuantity(ctx, "nope", 3, "")
	assert.Empty(t, lines)
	assert.Zero(t, notified)
}

func TestUpdateCartItemQuantity_SizeIsPartOfKey(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	s.AddToCart(ctx, p1(), 2, "M")

	lines := s.UpdateCartItemQuantity(ctx, "P1", 5, "L")
	require.Len(t, lines, 1)
	assert.Equal(t, 2, lines[0].Quantity)
}

func TestRemoveFromCart(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	s.AddToCart(ctx, p1(), 1, "M")
	s.AddToCart(ctx, p1(), 1, "L")

	lines := s.RemoveFromCart(ctx, "P1", "M")
	require.Len(t, lines, 1)
	assert.Equal(t, "L", lines[0].Size)
	assert.True(t, s.IsItemInCart(ctx, "P1", "L"))
	assert.False(t, s.IsItemInCart(ctx, "P1", "M"))
}

func TestClearCart(t *testing.T) {
	ctx := context.Background()
	s, backend := newTestStore(t)
	s.AddToCart(ctx, p1(), 1, "M")

	var got []domain.CartLine
	s.Subscribe(func(lines []domain.CartLine) { got = lines })

	s.ClearCart(ctx)
	assert.Empty(t, s.GetCart(ctx))
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Zero(t, backend.Len())
}

// ============================================================================
// Persistence
// ============================================================================

func TestSaveCart_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	lines := []domain.CartLine{
		{ID: "P1", Name: "Tee", Price: 999, DiscountedPrice: ptr(799),
			Images: []domain.CartImage{{URL: "/a.jpg", Alt: "a", IsMain: true}}, Quantity: 3, Size: "M"},
		{ID: "P2", Name: "Hoodie", Price: 1200, Images: []domain.CartImage{}, Quantity: 1},
	}
	s.SaveCart(ctx, lines)

	assert.Equal(t, lines, s.GetCart(ctx))
}

func TestSaveCart_PersistedLayout(t *testing.T) {
	ctx := context.Background()
	s, backend := newTestStore(t)
	s.SaveCart(ctx, []domain.CartLine{{ID: "P2", Name: "Hoodie", Price: 1200, Images: []domain.CartImage{{URL: "/h.jpg"}}, Quantity: 1}})

	raw, ok, err := backend.Get(ctx, "session:test:cart")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `[{"id":"P2","name":"Hoodie","price":1200,"images":[{"url":"/h.jpg"}],"quantity":1}]`, raw)
}

func TestGetCart_Empty(t *testing.T) {
	s, _ := newTestStore(t)
	lines := s.GetCart(context.Background())
	assert.NotNil(t, lines)
	assert.Empty(t, lines)
}

func TestGetCart_MalformedJSON(t *testing.T) {
	ctx := context.Background()
	s, backend := newTestStore(t)

	for _, raw := range []string{"{not json", `{"id":"P1"}`, `"string"`} {
		require.NoError(t, backend.Set(ctx, "session:test:cart", raw))
		lines := s.GetCart(ctx)
		assert.NotNil(t, lines, raw)
		assert.Empty(t, lines, raw)
		assert.Zero(t, s.GetCartTotal(ctx))
		assert.False(t, s.IsItemInCart(ctx, "P1", ""))
	}
}

func TestGetCart_NullJSON(t *testing.T) {
	ctx := context.Background()
	s, backend := newTestStore(t)
	require.NoError(t, backend.Set(ctx, "session:test:cart", "null"))
	assert.Equal(t, []domain.CartLine{}, s.GetCart(ctx))
}

// ============================================================================
// Fail-open
// ============================================================================

func TestFailOpen_ReadFailure(t *testing.T) {
	ctx := context.Background()
	s := New(&flakyStorage{Storage: memory.New(), failGet: true}, logger.Discard())

	assert.Empty(t, s.GetCart(ctx))
	assert.Zero(t, s.GetCartItemCount(ctx))
	assert.False(t, s.IsItemInCart(ctx, "P1", ""))

	lines := s.AddToCart(ctx, p1(), 1, "")
	assert.Len(t, lines, 1)
}

func TestFailOpen_WriteFailureSkipsNotification(t *testing.T) {
	ctx := context.Background()
	s := New(&flakyStorage{Storage: memory.New(), failSet: true, failRemove: true}, logger.Discard())

	notified := 0
	s.Subscribe(func([]domain.CartLine) { notified++ })

	lines := s.AddToCart(ctx, p1(), 2, "M")
	assert.Len(t, lines, 1)
	assert.Empty(t, s.GetCart(ctx))

	s.ClearCart(ctx)
	assert.Zero(t, notified)
}

// ============================================================================
// Observers
// ============================================================================

func TestSubscribe_NotifiedAfterSave(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	var calls [][]domain.CartLine
	unsubscribe := s.Subscribe(func(lines []domain.CartLine) { calls = append(calls, lines) })

	s.AddToCart(ctx, p1(), 1, "M")
	s.AddToCart(ctx, p2(), 1, "")
	require.Len(t, calls, 2)
	assert.Len(t, calls[1], 2)

	unsubscribe()
	unsubscribe()
	s.RemoveFromCart(ctx, "P2", "")
	assert.Len(t, calls, 2)
}

func TestSubscribe_ListenerGetsCopy(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	s.Subscribe(func(lines []domain.CartLine) { lines[0].Quantity = 99 })
	lines := s.AddToCart(ctx, p1(), 1, "M")
	assert.Equal(t, 1, lines[0].Quantity)
}

func TestFollow_ExternalWritesResync(t *testing.T) {
	ctx := context.Background()
	backend := memory.New()
	scoped := storage.Scope(backend, storage.SessionNamespace("tab"))

	follower := New(scoped, logger.Discard())
	writer := New(scoped, logger.Discard())

	var got []domain.CartLine
	follower.Subscribe(func(lines []domain.CartLine) { got = lines })
	stop := follower.Follow(ctx)
	defer stop()

	writer.AddToCart(ctx, p1(), 2, "M")
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].Quantity)

	writer.ClearCart(ctx)
	assert.Empty(t, got)
}

func TestFollow_IgnoresOtherKeysAndSessions(t *testing.T) {
	ctx := context.Background()
	backend := memory.New()

	follower := New(storage.Scope(backend, storage.SessionNamespace("a")), logger.Discard())
	notified := 0
	follower.Subscribe(func([]domain.CartLine) { notified++ })
	stop := follower.Follow(ctx)
	defer stop()

	other := New(storage.Scope(backend, storage.SessionNamespace("b")), logger.Discard())
	other.AddToCart(ctx, p1(), 1, "")
	require.NoError(t, backend.Set(ctx, "session:a:wishlist", "[]"))

	assert.Zero(t, notified)
}

func TestFollow_WithoutWatcher(t *testing.T) {
	s := New(&flakyStorage{Storage: memory.New()}, logger.Discard())
	stop := s.Follow(context.Background())
	stop()
}

// ============================================================================
// Codec
// ============================================================================

func TestEncodeDecode(t *testing.T) {
	raw, err := encode([]domain.CartLine{})
	require.NoError(t, err)
	assert.Equal(t, "[]", raw)

	_, err = decode("[")
	assert.Error(t, err)
}
