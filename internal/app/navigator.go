package app

import (
	"net/url"
	"sync"
)

// Navigator performs page navigations requested by components.
type Navigator interface {
	Navigate(target *url.URL)
}

// RecordingNavigator stores navigations instead of performing them. The HTTP
// server reads the last one and answers with a redirect.
type RecordingNavigator struct {
	mu      sync.Mutex
	history []*url.URL
}

// Navigate implements Navigator.
func (n *RecordingNavigator) Navigate(target *url.URL) {
	n.mu.Lock()
	defer n.mu.Unlock()
	u := *target
	n.history = append(n.history, &u)
}

// Count returns the number of recorded navigations.
func (n *RecordingNavigator) Count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.history)
}

// Last returns the most recent navigation, or nil.
func (n *RecordingNavigator) Last() *url.URL {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.history) == 0 {
		return nil
	}
	u := *n.history[len(n.history)-1]
	return &u
}
