package pos

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrNoOpenSession = errors.New("no table is open")

	ErrInsufficientPayment = errors.New("received amount is less than the amount due")
	ErrCardAmountFixed     = errors.New("card payments charge the exact amount due")
	ErrNoSettlement        = errors.New("no settlement in progress")
	ErrSettlementState     = errors.New("invalid settlement state transition")

	ErrJoinTooFew    = errors.New("joining requires at least two tables")
	ErrAlreadyJoined = errors.New("table already belongs to a join group")
	ErrTableUnknown  = errors.New("unknown table")

	// ErrQueueDelete marks a merge whose items landed but whose queue
	// delete failed; callers report it without undoing the merge.
	ErrQueueDelete = errors.New("merged order could not be deleted from the queue")
)

// IsValidation reports whether err was rejected synchronously, before any
// state mutation. Gateway round-trip failures are never validation errors.
func IsValidation(err error) bool {
	for _, v := range []error{
		ErrNoOpenSession,
		ErrInsufficientPayment,
		ErrCardAmountFixed,
		ErrNoSettlement,
		ErrSettlementState,
		ErrJoinTooFew,
		ErrAlreadyJoined,
		ErrTableUnknown,
	} {
		if errors.Is(err, v) {
			return true
		}
	}
	return false
}
