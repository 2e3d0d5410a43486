package storefront

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/bookhaven/internal/domain"
)

func TestCartSession_AddSameTitleMergesQuantity(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.session.AddItem(ctx, "Dune", "Frank Herbert", "$12.50")
	require.NoError(t, err)
	line, err := f.session.AddItem(ctx, "Dune", "Frank Herbert", "$12.50")
	require.NoError(t, err)

	cart := f.session.Cart(ctx)
	require.Len(t, cart, 1)
	assert.Equal(t, 2, cart[0].Quantity)
	assert.Equal(t, 2, line.Quantity)
	assert.Equal(t, cart, f.store.Load(ctx))
}

func TestCartSession_AddFillsDefaults(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	line, err := f.session.AddItem(ctx, "Emma", "", "")
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultAuthor, line.Author)
	assert.Equal(t, domain.DefaultPrice, line.Price)
	assert.Equal(t, fixedNow, line.DateAdded)

	line, err = f.session.AddItem(ctx, "", "Nobody", "$1.00")
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultTitle, line.Title)

	// Вторая книга без названия сливается с первой.
	line, err = f.session.AddItem(ctx, "", "Nobody", "$1.00")
	require.NoError(t, err)
	assert.Equal(t, 2, line.Quantity)
	assert.Len(t, f.session.Cart(ctx), 2)
}

func TestCartSession_ReloadsFromStorage(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	require.NoError(t, f.store.Save(ctx, sampleCart(t)))

	_, err := f.session.AddItem(ctx, "Emma", "Jane Austen", "$5.00")
	require.NoError(t, err)

	cart := f.session.Cart(ctx)
	require.Len(t, cart, 2)
	assert.Equal(t, 2, cart[1].Quantity)
}

func TestComputeTotal(t *testing.T) {
	cases := []struct {
		name string
		cart domain.Cart
		want float64
	}{
		{
			name: "two lines",
			cart: domain.Cart{{Title: "A", Price: "$12.50", Quantity: 2}, {Title: "B", Price: "$5.00", Quantity: 1}},
			want: 30.00,
		},
		{
			name: "unparsable price counts as zero",
			cart: domain.Cart{{Title: "A", Price: "free", Quantity: 3}, {Title: "B", Price: "$1.25", Quantity: 2}},
			want: 2.50,
		},
		{
			name: "rounded to cents",
			cart: domain.Cart{{Title: "A", Price: "$0.10", Quantity: 3}},
			want: 0.30,
		},
		{name: "empty", cart: domain.Cart{}, want: 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ComputeTotal(tc.cart))
		})
	}
}

func TestCartSession_ClearCart(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	assert.ErrorIs(t, f.session.ClearCart(ctx), domain.ErrCartAlreadyEmpty)

	_, err := f.session.AddItem(ctx, "Dune", "", "$1.00")
	require.NoError(t, err)
	require.NoError(t, f.session.ClearCart(ctx))

	assert.Empty(t, f.session.Cart(ctx))
	raw, _, err := f.sessionKV.Get(ctx, domain.CartKey)
	require.NoError(t, err)
	assert.Equal(t, "[]", raw)
}

func TestCartSession_CommitEmptyCartWritesNothing(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.session.CommitOrder(ctx)

	assert.ErrorIs(t, err, domain.ErrEmptyCart)
	assert.Zero(t, f.durableKV.writes())
	assert.Zero(t, f.sessionKV.writes())
}

func TestCartSession_CommitOrder(t *testing.T) {
	publisher := &recordingPublisher{}
	f := newFixture(WithEventPublisher(publisher))
	ctx := context.Background()
	require.NoError(t, f.store.Save(ctx, sampleCart(t)))
	before := f.session.Cart(ctx)

	order, err := f.session.CommitOrder(ctx)
	require.NoError(t, err)

	orders := f.records.Orders(ctx)
	require.Len(t, orders, 1)
	assert.Equal(t, before, domain.Cart(orders[0].Items))
	assert.Equal(t, "ORDER-1773484200000", orders[0].OrderID)
	assert.Equal(t, domain.OrderStatusProcessed, orders[0].Status)
	assert.Equal(t, 3, orders[0].TotalItems)
	assert.Equal(t, 30.00, orders[0].TotalPrice)
	assert.Equal(t, order.OrderID, orders[0].OrderID)

	assert.Empty(t, f.session.Cart(ctx))
	assert.Empty(t, f.store.Load(ctx))
	require.Len(t, publisher.orders, 1)
	assert.Equal(t, order.OrderID, publisher.orders[0].OrderID)
}

func TestCartSession_CommitOrderGrowsHistoryByOne(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := f.session.AddItem(ctx, "Dune", "", "$1.00")
		require.NoError(t, err)
		_, err = f.session.CommitOrder(ctx)
		require.NoError(t, err)
		assert.Len(t, f.records.Orders(ctx), i+1)
	}
}

func TestCartSession_CommitClearsCartWhenHistoryWriteFails(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	_, err := f.session.AddItem(ctx, "Dune", "", "$1.00")
	require.NoError(t, err)

	f.durableKV.failSet = true
	order, err := f.session.CommitOrder(ctx)

	assert.ErrorIs(t, err, domain.ErrWriteFailure)
	assert.NotEmpty(t, order.OrderID)
	assert.Empty(t, f.session.Cart(ctx))
}

func TestCartSession_PublishFailureDoesNotFailCommit(t *testing.T) {
	publisher := &recordingPublisher{err: errors.New("broker down")}
	f := newFixture(WithEventPublisher(publisher))
	ctx := context.Background()
	_, err := f.session.AddItem(ctx, "Dune", "", "$1.00")
	require.NoError(t, err)

	_, err = f.session.CommitOrder(ctx)

	require.NoError(t, err)
	assert.Len(t, f.records.Orders(ctx), 1)
}

func TestCartSession_DegradedKeepsMemoryCart(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.sessionKV.failSet = true

	_, err := f.session.AddItem(ctx, "Dune", "", "$1.00")
	require.NoError(t, err)
	_, err = f.session.AddItem(ctx, "Dune", "", "$1.00")
	require.NoError(t, err)

	assert.True(t, f.session.Degraded())
	cart := f.session.Cart(ctx)
	require.Len(t, cart, 1)
	assert.Equal(t, 2, cart[0].Quantity)

	f.sessionKV.failSet = false
	_, err = f.session.AddItem(ctx, "Emma", "", "$1.00")
	require.NoError(t, err)

	assert.False(t, f.session.Degraded())
	assert.Len(t, f.store.Load(ctx), 2)
}

func TestCartSession_WithoutSessionStore(t *testing.T) {
	f := newFixture()
	session := NewCartSession(nil, f.records, WithClock(fixedClock), WithLogger(testLogger()))
	ctx := context.Background()

	_, err := session.AddItem(ctx, "Dune", "", "$2.00")
	require.NoError(t, err)
	assert.Len(t, session.Cart(ctx), 1)
	assert.False(t, session.Degraded())

	_, err = session.CommitOrder(ctx)
	require.NoError(t, err)
	assert.Empty(t, session.Cart(ctx))
}

func TestCartSession_ClearAllDataAndSnapshot(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	_, err := f.session.AddItem(ctx, "Dune", "", "$1.00")
	require.NoError(t, err)
	sub, err := domain.NewSubscription("reader@example.com", fixedNow)
	require.NoError(t, err)
	require.NoError(t, f.records.AppendSubscription(ctx, sub))

	snapshot := f.session.Snapshot(ctx)
	assert.Len(t, snapshot.Cart, 1)
	assert.Len(t, snapshot.Subscriptions, 1)

	require.NoError(t, f.session.ClearAllData(ctx))

	snapshot = f.session.Snapshot(ctx)
	assert.Empty(t, snapshot.Cart)
	assert.Empty(t, snapshot.Subscriptions)
	_, ok, err := f.sessionKV.Get(ctx, domain.CartKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSummarize(t *testing.T) {
	want := "Shopping Cart Contents:\n\n" +
		"Dune\nFrank Herbert\n$12.50 x 2 = $25.00\nAdded: 3/14/2026\n\n" +
		"Emma\nJane Austen\n$5.00 x 1 = $5.00\nAdded: 3/14/2026\n\n" +
		"Total Items: 3\nTotal Price: $30.00"

	assert.Equal(t, want, Summarize(sampleCart(t)))
}

func TestRenderCartSummaryAndConfirmation(t *testing.T) {
	assert.Equal(t, "Cart Summary: 3 items | Total: $30.00", RenderCartSummary(3, 30))
	assert.Equal(t, "Process order for 1 item(s)? Total: $4.50", OrderConfirmation(1, 4.5))
}
