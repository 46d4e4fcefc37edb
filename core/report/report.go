/*Package report builds structured error records from failed requests and
forwards them to a log sink.

Reporting is best effort. The reporter returns sink failures so callers
can log them, but call sites always swallow the returned error: a
reporting failure must never mask the original error or reach the client.
*/
package report

import (
	"context"
	"net/http"
)

// HTTPRequest is an immutable projection of the request taken at the
// moment of failure.
type HTTPRequest struct {
	Method    string              `json:"method"`
	Endpoint  string              `json:"endpoint"`
	URL       string              `json:"url"`
	UserAgent string              `json:"userAgent"`
	RemoteIP  string              `json:"remoteIp"`
	Headers   map[string][]string `json:"headers,omitempty"`
}

// NewHTTPRequest generates the HTTP snapshot for a request before
// reporting an error.
func NewHTTPRequest(r *http.Request) HTTPRequest {
	headers := make(map[string][]string, len(r.Header))
	for k, v := range r.Header {
		if k == "Authorization" { // never log credentials
			continue
		}
		headers[k] = v
	}
	return HTTPRequest{
		Method:    r.Method,
		Endpoint:  r.URL.Path,
		URL:       r.URL.String(),
		UserAgent: r.UserAgent(),
		RemoteIP:  r.RemoteAddr,
		Headers:   headers,
	}
}

// Record is a structured error record
type Record struct {
	Message string                 `json:"message"`
	Context map[string]interface{} `json:"context"`
}

// Sink accepts error records. Implementations forward them to a
// structured log sink; they never retry.
type Sink interface {
	Write(ctx context.Context, record Record) error
}

// Reporter builds error records and forwards them to its sink, once,
// with no retry on sink failure.
type Reporter struct {
	sink Sink
}

// NewReporter creates a reporter for the given sink
func NewReporter(sink Sink) *Reporter {
	return &Reporter{sink: sink}
}

// Report forwards the error to the log sink together with a snapshot of
// the request it occurred in. Extra caller-supplied context is merged into
// the record. The request may be nil for errors outside a request scope.
func (rep *Reporter) Report(ctx context.Context, err error, r *http.Request, extra map[string]interface{}) error {
	record := Record{
		Message: err.Error(),
		Context: map[string]interface{}{},
	}
	for k, v := range extra {
		record.Context[k] = v
	}
	if r != nil {
		record.Context["request"] = NewHTTPRequest(r)
	}
	return rep.sink.Write(ctx, record)
}
