package fetch

import (
	"context"
	"errors"
	"time"
)

// Event describes one completed fetch.
type Event struct {
	URL        string
	StatusCode int // set for non-2xx responses only
	Bytes      int
	Duration   time.Duration
	Err        error
}

// Observer receives an Event after every fetch made through Observe.
type Observer interface {
	ObserveFetch(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) ObserveFetch(ev Event) { f(ev) }

// Observe wraps f so every call is reported to o.
func Observe(f Fetcher, o Observer) Fetcher {
	return &observed{next: f, obs: o, now: time.Now}
}

type observed struct {
	next Fetcher
	obs  Observer
	now  func() time.Time
}

func (o *observed) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	start := o.now()
	data, err := o.next.Fetch(ctx, rawURL)

	ev := Event{URL: rawURL, Bytes: len(data), Duration: o.now().Sub(start), Err: err}
	var ferr *Error
	if errors.As(err, &ferr) {
		ev.StatusCode = ferr.StatusCode
	}
	o.obs.ObserveFetch(ev)
	return data, err
}
