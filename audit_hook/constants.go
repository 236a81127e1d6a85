package audithook

// Action constants for audit events.
const (
	// Cycle actions
	ActionCycleStarted = "cycle.started"

	// Provider actions
	ActionProviderFetch = "provider.fetch"

	// Ledger actions
	ActionBatchReconciled = "batch.reconciled"

	// Budget actions
	ActionBudgetRecomputed = "budget.recomputed"
	ActionBudgetExceeded   = "budget.exceeded"
)

// Resource constants for audit events.
const (
	ResourceCycle    = "cycle"
	ResourceProvider = "provider"
	ResourceLedger   = "ledger"
	ResourceBudget   = "budget"
)

// Category constants for audit events.
const (
	CategoryCollection = "collection"
	CategoryLedger     = "ledger"
	CategoryBudget     = "budget"
)

// Severity levels for audit events.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityError    = "error"
	SeverityCritical = "critical"
)

// Outcome values for audit events.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomePartial = "partial"
)
