package main

import (
	"errors"
	"sync"
)

type fakeEndpoint struct {
	mu       sync.Mutex
	levels   []float32
	countErr error
	readErr  error
	setErr   error
	writes   int
	closed   int
}

func newFakeEndpoint(levels ...float32) *fakeEndpoint {
	return &fakeEndpoint{levels: levels}
}

func (e *fakeEndpoint) ChannelCount() (uint32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.countErr != nil {
		return 0, e.countErr
	}
	return uint32(len(e.levels)), nil
}

func (e *fakeEndpoint) ChannelLevel(ch uint32) (float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.readErr != nil {
		return 0, e.readErr
	}
	return e.levels[ch], nil
}

func (e *fakeEndpoint) SetChannelLevel(ch uint32, level float32) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.setErr != nil {
		return e.setErr
	}
	e.levels[ch] = level
	e.writes++
	return nil
}

func (e *fakeEndpoint) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed++
	return nil
}

func (e *fakeEndpoint) level(ch uint32) float32 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.levels[ch]
}

// fakeMixer hands out the same endpoint on every call, like a device that
// stays the default.
type fakeMixer struct {
	ep    *fakeEndpoint
	err   error
	opens int
}

func (m *fakeMixer) DefaultEndpoint() (Endpoint, error) {
	m.opens++
	if m.err != nil {
		return nil, m.err
	}
	return m.ep, nil
}

type fakeAutostart struct {
	enabled    bool
	queryErr   error
	enableErr  error
	disableErr error
	calls      []string
}

func (a *fakeAutostart) IsEnabled() (bool, error) {
	a.calls = append(a.calls, "query")
	if a.queryErr != nil {
		return false, a.queryErr
	}
	return a.enabled, nil
}

func (a *fakeAutostart) Enable() error {
	a.calls = append(a.calls, "enable")
	if a.enableErr != nil {
		return a.enableErr
	}
	a.enabled = true
	return nil
}

func (a *fakeAutostart) Disable() error {
	a.calls = append(a.calls, "disable")
	if a.disableErr != nil {
		return a.disableErr
	}
	a.enabled = false
	return nil
}

type notification struct {
	title, message string
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notification
}

func (n *recordingNotifier) Notify(title, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification{title, message})
}

func (n *recordingNotifier) messages() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.sent))
	for i, s := range n.sent {
		out[i] = s.message
	}
	return out
}

type recordingStatus struct {
	tooltips []string
}

func (s *recordingStatus) SetTooltip(text string) {
	s.tooltips = append(s.tooltips, text)
}

var errDevice = errors.New("device gone")
