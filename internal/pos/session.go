package pos

func NewSession(tableName string) *OrderSession {
	return &OrderSession{TableName: tableName}
}

// AddItem increments the quantity of an existing line with the same item id,
// or appends a new line at quantity 1. In-memory only, no side effects.
func (s *OrderSession) AddItem(item OrderLineItem) {
	for i := range s.Lines {
		if s.Lines[i].ItemID == item.ItemID {
			s.Lines[i].Quantity++
			return
		}
	}
	item.Quantity = 1
	s.Lines = append(s.Lines, item)
}

// UpdateQuantity sets the line's quantity, removing the line when qty <= 0.
// Unknown ids are a no-op.
func (s *OrderSession) UpdateQuantity(itemID string, qty int) {
	if qty <= 0 {
		s.RemoveItem(itemID)
		return
	}
	for i := range s.Lines {
		if s.Lines[i].ItemID == itemID {
			s.Lines[i].Quantity = qty
			return
		}
	}
}

func (s *OrderSession) RemoveItem(itemID string) {
	for i := range s.Lines {
		if s.Lines[i].ItemID == itemID {
			s.Lines = append(s.Lines[:i], s.Lines[i+1:]...)
			return
		}
	}
}

func (s *OrderSession) SetDiscount(c Charge)      { s.Discount = c }
func (s *OrderSession) SetServiceCharge(c Charge) { s.ServiceCharge = c }

func (s *OrderSession) SetCustomer(name, notes string) {
	s.CustomerName = name
	s.CustomerNotes = notes
}

// Clear resets to an empty draft with no bound table.
func (s *OrderSession) Clear() {
	*s = OrderSession{}
}

// ItemCount is the number of units across all lines.
func (s *OrderSession) ItemCount() int {
	var n int
	for _, ln := range s.Lines {
		n += ln.Quantity
	}
	return n
}

func Snapshot(s *OrderSession) SessionSnapshot {
	t := Calculate(s)
	lines := make([]OrderLineItem, len(s.Lines))
	copy(lines, s.Lines)
	return SessionSnapshot{
		TableName:     s.TableName,
		Lines:         lines,
		Discount:      s.Discount,
		ServiceCharge: s.ServiceCharge,
		CustomerName:  s.CustomerName,
		CustomerNotes: s.CustomerNotes,
		Subtotal:      t.Subtotal,
		TotalAmount:   t.Total,
	}
}

func SessionFromSnapshot(sn *SessionSnapshot) *OrderSession {
	lines := make([]OrderLineItem, len(sn.Lines))
	copy(lines, sn.Lines)
	return &OrderSession{
		TableName:     sn.TableName,
		Lines:         lines,
		Discount:      sn.Discount,
		ServiceCharge: sn.ServiceCharge,
		CustomerName:  sn.CustomerName,
		CustomerNotes: sn.CustomerNotes,
	}
}
