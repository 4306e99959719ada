package pos

type ChargeKind string

const (
	KindPercentage ChargeKind = "percentage"
	KindFixed      ChargeKind = "fixed"
)

// Charge is a discount or service charge. The kind carries its own compute
// rule so callers never branch on a raw string.
type Charge struct {
	Kind  ChargeKind `json:"kind"`
	Value float64    `json:"value"`
}

func (c Charge) Amount(subtotal float64) float64 {
	if c.Kind == KindPercentage {
		return subtotal * c.Value / 100
	}
	return c.Value
}

// Calculate derives the bill totals from a session snapshot.
//
// total = subtotal - discount + service charge, with no clamping: a discount
// larger than the subtotal or a negative service charge propagates straight
// into the total, and inputs are not range-checked. Negative totals can
// stand for refunds.
func Calculate(s *OrderSession) BillTotals {
	var subtotal float64
	for _, ln := range s.Lines {
		subtotal += ln.UnitPrice * float64(ln.Quantity)
	}
	discount := s.Discount.Amount(subtotal)
	service := s.ServiceCharge.Amount(subtotal)
	return BillTotals{
		Subtotal:            subtotal,
		DiscountAmount:      discount,
		ServiceChargeAmount: service,
		Total:               subtotal - discount + service,
	}
}
