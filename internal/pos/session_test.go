package pos

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddItemIncrementsExistingLine(t *testing.T) {
	s := NewSession("T1")
	s.AddItem(OrderLineItem{ItemID: "burger", Name: "Burger", UnitPrice: 10})
	s.AddItem(OrderLineItem{ItemID: "burger", Name: "Burger", UnitPrice: 10})
	s.AddItem(OrderLineItem{ItemID: "soda", Name: "Soda", UnitPrice: 3})

	require.Len(t, s.Lines, 2)
	assert.Equal(t, 2, s.Lines[0].Quantity)
	assert.Equal(t, 1, s.Lines[1].Quantity)
	assert.Equal(t, 3, s.ItemCount())
}

func TestAddItemForcesQuantityOne(t *testing.T) {
	s := NewSession("T1")
	s.AddItem(OrderLineItem{ItemID: "burger", UnitPrice: 10, Quantity: 7})
	require.Len(t, s.Lines, 1)
	assert.Equal(t, 1, s.Lines[0].Quantity)
}

func TestUpdateQuantity(t *testing.T) {
	tests := []struct {
		name      string
		qty       int
		wantLines int
		wantQty   int
	}{
		{"positive sets quantity", 5, 1, 5},
		{"zero removes the line", 0, 0, 0},
		{"negative removes the line", -3, 0, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := NewSession("T1")
			s.AddItem(OrderLineItem{ItemID: "burger", UnitPrice: 10})
			s.UpdateQuantity("burger", tc.qty)
			require.Len(t, s.Lines, tc.wantLines)
			if tc.wantLines > 0 {
				assert.Equal(t, tc.wantQty, s.Lines[0].Quantity)
			}
		})
	}
}

func TestUpdateQuantityUnknownIDIsNoop(t *testing.T) {
	s := NewSession("T1")
	s.AddItem(OrderLineItem{ItemID: "burger", UnitPrice: 10})
	s.UpdateQuantity("nope", 4)
	require.Len(t, s.Lines, 1)
	assert.Equal(t, 1, s.Lines[0].Quantity)
}

func TestRemoveItem(t *testing.T) {
	s := NewSession("T1")
	s.AddItem(OrderLineItem{ItemID: "burger", UnitPrice: 10})
	s.AddItem(OrderLineItem{ItemID: "soda", UnitPrice: 3})
	s.RemoveItem("burger")
	require.Len(t, s.Lines, 1)
	assert.Equal(t, "soda", s.Lines[0].ItemID)
	s.RemoveItem("missing") // no-op
	assert.Len(t, s.Lines, 1)
}

// Any sequence of item operations keeps subtotal == sum(price*qty) over the
// remaining lines, and no line ever sits at quantity <= 0.
func TestSubtotalTracksOperationSequence(t *testing.T) {
	s := NewSession("T1")
	s.AddItem(OrderLineItem{ItemID: "a", UnitPrice: 2.5})
	s.AddItem(OrderLineItem{ItemID: "b", UnitPrice: 4})
	s.AddItem(OrderLineItem{ItemID: "a", UnitPrice: 2.5})
	s.UpdateQuantity("b", 3)
	s.AddItem(OrderLineItem{ItemID: "c", UnitPrice: 1})
	s.UpdateQuantity("a", -1)
	s.RemoveItem("missing")
	s.UpdateQuantity("c", 0)

	var want float64
	for _, ln := range s.Lines {
		require.Greater(t, ln.Quantity, 0)
		want += ln.UnitPrice * float64(ln.Quantity)
	}
	assert.InDelta(t, want, Calculate(s).Subtotal, 1e-9)
	assert.InDelta(t, 12.0, Calculate(s).Subtotal, 1e-9) // only b remains at qty 3
}

func TestClearResetsDraftAndTable(t *testing.T) {
	s := NewSession("T1")
	s.AddItem(OrderLineItem{ItemID: "burger", UnitPrice: 10})
	s.SetDiscount(Charge{Kind: KindPercentage, Value: 10})
	s.SetCustomer("Ana", "window seat")
	s.Clear()
	assert.Equal(t, OrderSession{}, *s)
}

func TestSnapshotRoundTrip(t *testing.T) {
	s := NewSession("T1")
	s.AddItem(OrderLineItem{ItemID: "burger", Name: "Burger", UnitPrice: 10})
	s.AddItem(OrderLineItem{ItemID: "burger", Name: "Burger", UnitPrice: 10})
	s.SetDiscount(Charge{Kind: KindPercentage, Value: 10})
	s.SetServiceCharge(Charge{Kind: KindFixed, Value: 5})
	s.SetCustomer("Ana", "window seat")

	snap := Snapshot(s)
	assert.InDelta(t, 20.0, snap.Subtotal, 1e-9)
	assert.InDelta(t, 23.0, snap.TotalAmount, 1e-9)

	back := SessionFromSnapshot(&snap)
	assert.Equal(t, s.Lines, back.Lines)
	assert.Equal(t, s.Discount, back.Discount)
	assert.Equal(t, s.CustomerNotes, back.CustomerNotes)
}
