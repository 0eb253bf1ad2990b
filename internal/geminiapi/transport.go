package geminiapi

import "net/http"

type statusKey struct{}

// statusRecorder stores the response status into the *int carried by the
// request context under statusKey.
type statusRecorder struct {
	base http.RoundTripper
}

func (t statusRecorder) RoundTrip(r *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(r)
	if err == nil && resp != nil {
		if p, ok := r.Context().Value(statusKey{}).(*int); ok {
			*p = resp.StatusCode
		}
	}
	return resp, err
}

// withStatusRecorder returns a copy of c whose transport records response statuses.
func withStatusRecorder(c *http.Client) *http.Client {
	out := &http.Client{}
	if c != nil {
		*out = *c
	}
	base := out.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	out.Transport = statusRecorder{base: base}
	return out
}
