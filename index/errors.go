package index

import "github.com/latticedb/bptreeindex/util"

// Errors surfaced to callers of the public API. These are sentinel
// values compared with errors.Is, built on a message-plus-cause
// wrapping shape rather than an exception hierarchy.
var (
	// ErrBadIndexInfo is returned by Open when an existing index file's
	// metadata does not match the constructor arguments.
	ErrBadIndexInfo = &util.WrappedError{Message: "index: relation name, attribute offset, or attribute type mismatch on reopen"}

	// ErrBadOperator is returned by StartScan when the low/high operator
	// pair is not one of {GT, GTE} x {LT, LTE}.
	ErrBadOperator = &util.WrappedError{Message: "index: scan operators must be one of GT/GTE paired with LT/LTE"}

	// ErrBadRange is returned by StartScan when lowVal > highVal.
	ErrBadRange = &util.WrappedError{Message: "index: low value exceeds high value"}

	// ErrNoSuchKey is returned by StartScan when no key in the tree
	// satisfies the scan predicate.
	ErrNoSuchKey = &util.WrappedError{Message: "index: no key satisfies the scan predicate"}

	// ErrScanNotActive is returned by ScanNext/EndScan when no scan has
	// been started.
	ErrScanNotActive = &util.WrappedError{Message: "index: no scan is active"}

	// ErrScanDone is returned by ScanNext once iteration is exhausted.
	ErrScanDone = &util.WrappedError{Message: "index: scan exhausted"}
)
