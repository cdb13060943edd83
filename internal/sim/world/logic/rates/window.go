package rates

// Window counts events in fixed windows of ticks.
type Window struct {
	Start uint64
	Count int
}

// Allow records one event at nowTick. It reports whether the event fits in the
// current window of size ticks holding at most max events, and if not, how many
// ticks remain until the window resets. A zero size or max disables the limit.
func (w *Window) Allow(nowTick, size uint64, max int) (ok bool, cooldownTicks uint64) {
	if size == 0 || max <= 0 {
		return true, 0
	}
	if nowTick < w.Start || nowTick-w.Start >= size {
		w.Start = nowTick
		w.Count = 0
	}
	w.Count++
	if w.Count <= max {
		return true, 0
	}
	return false, (w.Start + size) - nowTick
}
