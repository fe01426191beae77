// Package errs defines the error taxonomy of the delivery engine.
//
// Every failure raised by an adapter or pipeline is an *Error carrying a Kind
// (one of the sentinel errors below), the operation that failed and the
// underlying cause. Callers classify errors with errors.Is against the
// sentinels and still reach the cause through the same chain:
//
//	if errors.Is(err, errs.ErrRouting) {
//	    // the routing service failed
//	}
//
// The planning pipeline treats every kind as fatal; the ingestion pipeline
// records the failing message and moves on.
package errs
