// Package billing holds names shared by every obligation store.
package billing

// Payment methods recorded on settled obligations.
const (
	MethodWebpay        = "webpay"
	MethodManual        = "manual"
	MethodStoredCard    = "stored-instrument"
	MethodStoredAutopay = "stored-instrument autopay"
	MethodCash          = "cash"
)
