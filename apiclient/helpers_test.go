package apiclient_test

import (
	"io"
	"net/http"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

// readerOnly hides the concrete reader type so http.NewRequest cannot set GetBody.
type readerOnly struct {
	io.Reader
}
