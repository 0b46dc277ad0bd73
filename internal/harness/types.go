package harness

// TraceEvent records one executed step.
type TraceEvent struct {
	Seq  int64  `json:"seq"`
	Op   string `json:"op"`
	Name string `json:"name,omitempty"`
	Type string `json:"type,omitempty"`
	Path string `json:"path,omitempty"`

	// Kind is "file" or "listing" for get_entry.
	Kind string `json:"kind,omitempty"`

	// Result is the JSON-normalized value a read step returned.
	Result any `json:"result,omitempty"`

	// Error is the step's error message, if any.
	Error string `json:"error,omitempty"`
}

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true when every expectation matched.
	Pass bool `json:"pass"`

	// Trace holds one event per step, in execution order.
	Trace []TraceEvent `json:"trace"`

	// Errors lists mismatches. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends an executed step.
func (r *Result) AddTrace(event TraceEvent) {
	r.Trace = append(r.Trace, event)
}
