package world

// KitchenMetrics is a thread-safe read-only view of key kitchen runtime signals.
// It is updated from the world loop goroutine and read from HTTP handlers/tests.
type KitchenMetrics struct {
	Tick uint64 `json:"tick"`

	Players   int `json:"players"`
	Clients   int `json:"clients"`
	Observers int `json:"observers"`
	Objects   int `json:"objects"`

	Delivered int `json:"delivered"`
	Failed    int `json:"failed"`

	QueueDepths QueueDepths `json:"queue_depths"`

	StepMS float64 `json:"step_ms"`
}

type QueueDepths struct {
	Inbox  int `json:"inbox"`
	Join   int `json:"join"`
	Leave  int `json:"leave"`
	Attach int `json:"attach"`
}

func (w *World) Metrics() KitchenMetrics {
	if w == nil {
		return KitchenMetrics{}
	}
	m, _ := w.metrics.Load().(KitchenMetrics)
	return m
}
