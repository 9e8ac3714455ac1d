package delivery

import "errors"

// ErrDeliveryTransport marks a failed delivery attempt through one facility.
// The tracker records it in the ledger and logs it; it is never returned.
var ErrDeliveryTransport = errors.New("delivery transport failed")

// ErrInvalidLedger indicates stored delivery state that cannot be decoded.
var ErrInvalidLedger = errors.New("invalid delivery state")
