package model

import "fmt"

// ResultKind discriminates the three outcomes a collection task can produce.
type ResultKind int

const (
	// KindValue means the task produced usable data.
	KindValue ResultKind = iota
	// KindAbsent means the task ran but no data could be obtained.
	KindAbsent
	// KindError means the task failed outright; the reason is preserved.
	KindError
)

// AbsentReason classifies why a result carries no value.
type AbsentReason string

const (
	ReasonNone              AbsentReason = ""
	ReasonNetworkFailure    AbsentReason = "network_failure"
	ReasonRateLimited       AbsentReason = "rate_limited"
	ReasonNonTransientHTTP  AbsentReason = "non_transient_http"
	ReasonMalformedResponse AbsentReason = "malformed_response"
	ReasonMissingCredential AbsentReason = "missing_credential"
	ReasonFeatureDisabled   AbsentReason = "feature_disabled"
	ReasonInsufficientData  AbsentReason = "insufficient_data"
	ReasonTaskPanic         AbsentReason = "task_panic"
)

// Result is the value every task slot in a Snapshot holds. "No data" is a value
// here, never an in-flight exception: the scheduler converts any task failure
// into an Absent or Error result and keeps going.
type Result struct {
	Kind   ResultKind   `json:"kind"`
	Value  any          `json:"value,omitempty"`
	Reason AbsentReason `json:"reason,omitempty"`
	Detail string       `json:"detail,omitempty"`
}

// Value wraps usable task output.
func Value(v any) Result {
	return Result{Kind: KindValue, Value: v}
}

// Absent records a typed "no value" with a reason.
func Absent(reason AbsentReason, detail string) Result {
	return Result{Kind: KindAbsent, Reason: reason, Detail: detail}
}

// Errorf records a task-level failure without propagating it.
func Errorf(reason AbsentReason, format string, args ...any) Result {
	return Result{Kind: KindError, Reason: reason, Detail: fmt.Sprintf(format, args...)}
}

// MissingCredential marks an enhanced source that was skipped before any
// network call because its API key is not configured.
func MissingCredential(key string) Result {
	return Result{Kind: KindAbsent, Reason: ReasonMissingCredential, Detail: fmt.Sprintf("credential %s not configured", key)}
}

// Present reports whether the result carries a usable value.
func (r Result) Present() bool {
	return r.Kind == KindValue && r.Value != nil
}

func (r Result) String() string {
	switch r.Kind {
	case KindValue:
		return fmt.Sprintf("value(%v)", r.Value)
	case KindAbsent:
		return fmt.Sprintf("absent(%s)", r.Reason)
	default:
		return fmt.Sprintf("error(%s: %s)", r.Reason, r.Detail)
	}
}
