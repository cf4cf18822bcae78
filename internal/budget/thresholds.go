package budget

import (
	"sort"
	"time"
)

// MatchTolerance absorbs 1 Hz scheduler jitter when comparing remaining time
// against a warning threshold.
const MatchTolerance = 1500 * time.Millisecond

// normalizeThresholds returns a largest-first copy without duplicates or
// non-positive values.
func normalizeThresholds(in []time.Duration) []time.Duration {
	out := make([]time.Duration, 0, len(in))
	seen := make(map[time.Duration]bool, len(in))
	for _, t := range in {
		if t <= 0 || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] > out[j] })
	return out
}

// matchThreshold returns the first (largest) threshold within MatchTolerance
// of remaining. Callers stop at this match even if it already fired.
func matchThreshold(thresholds []time.Duration, remaining time.Duration) (time.Duration, bool) {
	for _, t := range thresholds {
		d := remaining - t
		if d < 0 {
			d = -d
		}
		if d < MatchTolerance {
			return t, true
		}
	}
	return 0, false
}

type firedKey struct {
	appID     string
	threshold time.Duration
}

// firedSet records which (app, threshold) warnings were delivered in the
// current accumulation period.
type firedSet map[firedKey]struct{}

// markOnce marks the pair and reports whether it was not yet marked.
func (f firedSet) markOnce(appID string, threshold time.Duration) bool {
	k := firedKey{appID: appID, threshold: threshold}
	if _, ok := f[k]; ok {
		return false
	}
	f[k] = struct{}{}
	return true
}

func (f firedSet) has(appID string, threshold time.Duration) bool {
	_, ok := f[firedKey{appID: appID, threshold: threshold}]
	return ok
}

func (f firedSet) clearApp(appID string) {
	for k := range f {
		if k.appID == appID {
			delete(f, k)
		}
	}
}

func (f firedSet) clearAll() {
	for k := range f {
		delete(f, k)
	}
}
