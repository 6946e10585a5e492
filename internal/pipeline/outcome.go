package pipeline

// Outcome classifies how a webhook invocation terminated. The handler
// switches on it to pick the HTTP status and echo body; the metrics
// publisher records its String form.
type Outcome int

const (
	// OutcomeSuccess: at least one event was delivered this invocation.
	OutcomeSuccess Outcome = iota
	// OutcomeSkipByConfig: the trigger resource is on the ignore list.
	OutcomeSkipByConfig
	// OutcomeUnauthenticated: no Store API credentials for the store.
	OutcomeUnauthenticated
	// OutcomeDisabled: measurement credentials missing or no enabled
	// event matches the order.
	OutcomeDisabled
	// OutcomeAlreadySent: every candidate was filtered out by the ledger.
	OutcomeAlreadySent
	// OutcomeDownstreamFailure: order fetch, config fetch, ledger read
	// or delivery failed.
	OutcomeDownstreamFailure
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeSkipByConfig:
		return "skip_by_config"
	case OutcomeUnauthenticated:
		return "unauthenticated"
	case OutcomeDisabled:
		return "disabled"
	case OutcomeAlreadySent:
		return "already_sent"
	case OutcomeDownstreamFailure:
		return "downstream_failure"
	default:
		return "unknown"
	}
}

// Result is the terminal state of one invocation. Err is set only for
// OutcomeDownstreamFailure; Delivered lists the event names sent this
// invocation (Success only).
type Result struct {
	Outcome   Outcome
	Delivered []string
	Err       error
}

func failure(err error) Result {
	return Result{Outcome: OutcomeDownstreamFailure, Err: err}
}
