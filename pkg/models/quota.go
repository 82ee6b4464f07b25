package models

import "sync"

// Quota is the per-channel remaining download allowance for the current
// run. It is the only state shared by concurrent fetch workers, so the
// check-and-decrement must be a single step: two workers racing on the
// last unit see exactly one success.
type Quota struct {
	mu     sync.Mutex
	photos int
	videos int
}

// NewQuota creates a quota with the given allowances. Negative inputs are
// clamped to zero.
func NewQuota(photos, videos int) *Quota {
	if photos < 0 {
		photos = 0
	}
	if videos < 0 {
		videos = 0
	}
	return &Quota{photos: photos, videos: videos}
}

// TryConsume reserves one unit of the allowance for kind. It returns false
// when that allowance is already exhausted; the counters never go negative.
func (q *Quota) TryConsume(kind Kind) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	switch kind {
	case KindPhoto:
		if q.photos == 0 {
			return false
		}
		q.photos--
		return true
	case KindVideo:
		if q.videos == 0 {
			return false
		}
		q.videos--
		return true
	default:
		return false
	}
}

// Remaining returns the units left for kind.
func (q *Quota) Remaining(kind Kind) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	switch kind {
	case KindPhoto:
		return q.photos
	case KindVideo:
		return q.videos
	default:
		return 0
	}
}
