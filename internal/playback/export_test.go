package playback

import "time"

func withTickInterval(interval time.Duration) Option {
	return func(d *Driver) { d.interval = interval }
}

// evaluate runs one tick against the current run.
func (d *Driver) evaluate() {
	d.mu.Lock()
	if d.state != Running {
		d.mu.Unlock()
		return
	}
	d.evaluateLocked()
}
