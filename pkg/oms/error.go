package oms

import (
	"errors"

	"github.com/joripage/execution-engine/pkg/oms/model"
	"github.com/joripage/execution-engine/pkg/oms/risk"
)

var (
	errOrderIDNotFound = errors.New("orderID not found")
	errNoVenue         = errors.New("no candidate venue")
)

// Public taxonomy. Every REJECTED or CANCELLED transition is
// attributable to exactly one cause and queryable via GetOrderEvents.
var (
	// ErrMalformedRequest: the request never entered the ledger.
	ErrMalformedRequest = model.ErrMalformedRequest
	// ErrRiskRejected: the order was recorded as REJECTED and stays
	// queryable.
	ErrRiskRejected = risk.ErrRejected
	// ErrDuplicateOrder: the ClientOrderID was already seen.
	ErrDuplicateOrder = errors.New("duplicate order")
	// ErrOrderNotFound is returned by the query surface.
	ErrOrderNotFound = errOrderIDNotFound
)
