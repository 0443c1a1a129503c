package ggbench

import (
	"encoding/json"
	"errors"
	"io"
	"sync"
)

// ErrNotifierFull is returned by ChanNotifier when its buffer is full.
var ErrNotifierFull = errors.New("ggbench: notifier channel full")

// Notifier delivers the result of a run. Notify is called exactly once per
// run, when the run reaches its terminal outcome.
type Notifier interface {
	Notify(Result) error
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(Result) error

// Notify implements Notifier.
func (f NotifierFunc) Notify(r Result) error { return f(r) }

// Discard is a Notifier that drops every result.
var Discard Notifier = NotifierFunc(func(Result) error { return nil })

// JSONNotifier writes each result as one JSON object per line.
type JSONNotifier struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewJSONNotifier creates a JSONNotifier writing to w.
func NewJSONNotifier(w io.Writer) *JSONNotifier {
	return &JSONNotifier{enc: json.NewEncoder(w)}
}

// Notify implements Notifier.
func (n *JSONNotifier) Notify(r Result) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.enc.Encode(r)
}

// ChanNotifier sends results to a channel. The channel must have room for
// every run that reports to it; Notify never blocks.
type ChanNotifier chan Result

// Notify implements Notifier.
func (c ChanNotifier) Notify(r Result) error {
	select {
	case c <- r:
		return nil
	default:
		return ErrNotifierFull
	}
}
