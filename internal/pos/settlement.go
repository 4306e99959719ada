package pos

type SettlementState string

const (
	SettleIdle      SettlementState = "IDLE"
	SettleAwaiting  SettlementState = "AWAITING"
	SettleConfirmed SettlementState = "CONFIRMED"
	SettleCompleted SettlementState = "COMPLETED"
)

var validNext = map[SettlementState]map[SettlementState]bool{
	SettleIdle:      {SettleAwaiting: true},
	SettleAwaiting:  {SettleConfirmed: true, SettleIdle: true},
	SettleConfirmed: {SettleCompleted: true, SettleAwaiting: true, SettleIdle: true},
	SettleCompleted: {},
}

func CanTransition(from, to SettlementState) bool {
	return validNext[from][to]
}

// Settlement validates and finalizes payment for one session's bill.
// Opening captures the bill total as the amount due; the engine drives
// confirm/reject/complete around the gateway round trip.
type Settlement struct {
	state    SettlementState
	due      float64
	received float64
	method   PaymentMethod
}

func NewSettlement(due float64) *Settlement {
	return &Settlement{state: SettleAwaiting, due: due, method: PayCash}
}

func (s *Settlement) State() SettlementState { return s.state }
func (s *Settlement) Due() float64           { return s.due }
func (s *Settlement) Received() float64      { return s.received }
func (s *Settlement) Method() PaymentMethod  { return s.method }

// SetMethod selects the payment method. Card charges exactly the amount due,
// so the received amount is forced to it and stops being editable.
func (s *Settlement) SetMethod(m PaymentMethod) {
	s.method = m
	if m == PayCard {
		s.received = s.due
	}
}

func (s *Settlement) SetReceived(v float64) error {
	if s.method == PayCard {
		return ErrCardAmountFixed
	}
	s.received = v
	return nil
}

func (s *Settlement) IsValid() bool {
	return s.received >= s.due
}

// Change clamps to 0 for display; an invalid payment cannot be confirmed
// anyway.
func (s *Settlement) Change() float64 {
	if c := s.received - s.due; c > 0 {
		return c
	}
	return 0
}

// Confirm moves Awaiting -> Confirmed and hands back the payment record for
// the gateway completion call. It does not touch the session.
func (s *Settlement) Confirm() (PaymentRecord, error) {
	if !CanTransition(s.state, SettleConfirmed) {
		return PaymentRecord{}, ErrSettlementState
	}
	if !s.IsValid() {
		return PaymentRecord{}, ErrInsufficientPayment
	}
	s.state = SettleConfirmed
	return PaymentRecord{
		AmountReceived: s.received,
		Method:         s.method,
		Change:         s.Change(),
	}, nil
}

// reject returns to Awaiting after a gateway rejection. The entered amount
// is kept.
func (s *Settlement) reject() {
	if CanTransition(s.state, SettleAwaiting) {
		s.state = SettleAwaiting
	}
}

func (s *Settlement) complete() {
	if CanTransition(s.state, SettleCompleted) {
		s.state = SettleCompleted
	}
}

func (s *Settlement) Cancel() {
	if CanTransition(s.state, SettleIdle) {
		s.state = SettleIdle
	}
}
