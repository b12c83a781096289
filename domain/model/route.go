package model

// Outcome classifies one handler attempt.
type Outcome string

const (
	// OutcomeSkipped means CanHandle returned false.
	OutcomeSkipped Outcome = "skipped"
	// OutcomeFailed means client construction failed.
	OutcomeFailed Outcome = "failed"
	// OutcomeSelected means the handler produced the client.
	OutcomeSelected Outcome = "selected"
)

// ReasonCannotHandle is the reason recorded for skipped handlers.
const ReasonCannotHandle = "cannot handle model"

// Attempt records what one handler did for one routing call.
type Attempt struct {
	Handler string  `json:"handler"`
	Outcome Outcome `json:"outcome"`
	Reason  string  `json:"reason,omitempty"`
	Err     error   `json:"-"`
}

// Route is the result of a successful routing call.
type Route struct {
	// Model is the requested model name.
	Model string

	// Handler is the name of the handler that built the client.
	Handler string

	// Client is the constructed client.
	Client Client

	// Attempts lists every handler consulted, ending with the selected one.
	Attempts []Attempt
}

// Failures returns the attempts that failed construction.
func (r *Route) Failures() []Attempt {
	var out []Attempt
	for _, a := range r.Attempts {
		if a.Outcome == OutcomeFailed {
			out = append(out, a)
		}
	}
	return out
}
