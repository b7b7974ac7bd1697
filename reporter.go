package scout

import (
	"encoding/json"
	"runtime/debug"
	"sync/atomic"

	"github.com/scoutlabs/scout-go/adapters"
)

// errorEnvelope is the wire format of the error side-channel: message and
// stack only, never identity cookies or page content.
type errorEnvelope struct {
	Msg   string `json:"msg"`
	Stack string `json:"stack"`
}

// ErrorReporter converts internal errors into a best-effort diagnostic
// submission on a dedicated endpoint, distinct from the tracking endpoint.
// It is a terminal sink: Report never panics, and an error raised while
// reporting an error falls through to local logging instead of re-entering
// the pipeline.
type ErrorReporter struct {
	endpoint string
	beacon   adapters.BeaconAdapter
	logger   adapters.LoggerAdapter
	inFlight atomic.Bool
}

// NewErrorReporter creates a new ErrorReporter.
func NewErrorReporter(endpoint string, beacon adapters.BeaconAdapter, logger adapters.LoggerAdapter) *ErrorReporter {
	if logger == nil {
		logger = adapters.NewPrintLoggerAdapter(adapters.LogLevelWarn)
	}
	return &ErrorReporter{
		endpoint: endpoint,
		beacon:   beacon,
		logger:   logger,
	}
}

// Report logs err locally and makes a single fire-and-forget submission to
// the error endpoint. Nested invocations (a report triggered while another
// is in flight) terminate at the local log.
func (r *ErrorReporter) Report(err error) {
	if err == nil {
		return
	}
	r.logger.Error("%v", err)

	if !r.inFlight.CompareAndSwap(false, true) {
		return
	}
	defer r.inFlight.Store(false)
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("error report submission panicked: %v", rec)
		}
	}()

	if r.beacon == nil || r.endpoint == "" {
		return
	}
	body, marshalErr := json.Marshal(errorEnvelope{
		Msg:   err.Error(),
		Stack: string(debug.Stack()),
	})
	if marshalErr != nil {
		return
	}
	if sendErr := r.beacon.Send(r.endpoint, body); sendErr != nil {
		r.logger.Warn("error report submission failed: %v", sendErr)
	}
}
