package models

// OrderingWindow is a time-of-day range in zero-padded 24-hour "HH:MM" form.
// Windows never wrap past midnight.
type OrderingWindow struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Settings is the runtime configuration served by GET /api/settings
type Settings struct {
	OrderingWindows     []OrderingWindow `json:"orderingWindows"`
	CancellationWindows []OrderingWindow `json:"cancellationWindows,omitempty"`
}

// CancellationOrOrdering returns the cancellation windows, or the ordering windows
// when the backend does not configure them separately
func (s Settings) CancellationOrOrdering() []OrderingWindow {
	if len(s.CancellationWindows) > 0 {
		return s.CancellationWindows
	}
	return s.OrderingWindows
}
