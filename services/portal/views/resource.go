package views

import (
	"context"

	"carenest/services/portal/apiclient"
)

// Resource is one fetched value as a page sees it. Loading holds until the
// fetch returns; Err carries the message the page shows instead of Data.
type Resource[T any] struct {
	Data    T      `json:"data"`
	Loading bool   `json:"loading"`
	Err     string `json:"error,omitempty"`
	cause   error
}

// Pending is a resource whose fetch has not completed.
func Pending[T any]() Resource[T] {
	return Resource[T]{Loading: true}
}

// Fetch runs fn and settles the resource. On failure Data keeps its zero
// value and Err holds the server message or fallback.
func Fetch[T any](ctx context.Context, fallback string, fn func(context.Context) (T, error)) Resource[T] {
	r := Pending[T]()
	data, err := fn(ctx)
	r.Loading = false
	if err != nil {
		r.Err = apiclient.MessageOr(err, fallback)
		r.cause = err
		return r
	}
	r.Data = data
	return r
}

func (r Resource[T]) Failed() bool { return r.Err != "" }

// Cause is the underlying error of a failed fetch.
func (r Resource[T]) Cause() error { return r.cause }
