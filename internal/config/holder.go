package config

import "sync"

// Holder stores the launch options of a Network. Bootstrap overwrites the
// stored value; Current returns whatever was stored last.
type Holder struct {
	mu   sync.RWMutex
	opts *LaunchOptions
}

// NewHolder returns a Holder that has not been bootstrapped.
func NewHolder() *Holder {
	return &Holder{}
}

// Bootstrap stores opts, replacing any previous value. A nil opts clears it.
func (h *Holder) Bootstrap(opts *LaunchOptions) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.opts = opts
}

// Current returns the most recently bootstrapped options, or nil if Bootstrap
// was never called.
func (h *Holder) Current() *LaunchOptions {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.opts
}
