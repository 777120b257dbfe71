package render

import "errors"

var (
	// ErrNoSource is reported when RenderResponsesFor is given a nil source.
	ErrNoSource = errors.New("no service to render")
	// ErrNoServer is reported when the target has no HTTP server.
	ErrNoServer = errors.New("no http server")
	// ErrNoProcessMethod is reported for an endpoint without a processing method.
	ErrNoProcessMethod = errors.New("no processing method for endpoint")
	// ErrNoRenderMethod is reported for an endpoint without a render method.
	ErrNoRenderMethod = errors.New("no render method for endpoint")
	// ErrNoDefinition is reported for a selected name the source does not declare.
	ErrNoDefinition = errors.New("no definition for endpoint")
	// ErrUnknownVerb is reported when the server cannot route the endpoint's verb.
	ErrUnknownVerb = errors.New("method not known by server")
)

// Outcome is the registration result for one endpoint.
type Outcome struct {
	Endpoint string
	Verb     string
	Path     string
	// Err is nil when the endpoint was registered.
	Err error
}

// Report collects the outcomes of one RenderResponsesFor call.
type Report struct {
	Service  string
	Outcomes []Outcome
	// Err is set when the call failed before any endpoint was attempted.
	Err error
}

// Registered returns the outcomes that succeeded.
func (r Report) Registered() []Outcome {
	return r.filter(func(o Outcome) bool { return o.Err == nil })
}

// Failed returns the outcomes that failed.
func (r Report) Failed() []Outcome {
	return r.filter(func(o Outcome) bool { return o.Err != nil })
}

// OK reports whether at least one endpoint was registered, or none was selected.
func (r Report) OK() bool {
	if r.Err != nil {
		return false
	}
	return len(r.Outcomes) == 0 || len(r.Registered()) > 0
}

func (r Report) filter(keep func(Outcome) bool) []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if keep(o) {
			out = append(out, o)
		}
	}
	return out
}
