package logging

// ProgressSampler throttles progress logs for a known number of work units,
// emitting once per percentage bucket instead of once per unit. It is not
// safe for concurrent use; feed it from the goroutine that collects results.
type ProgressSampler struct {
	total      int
	bucketSize float64
	lastBucket int
}

// NewProgressSampler constructs a sampler over total units that emits when
// the completed percentage crosses bucket boundaries (default 10%).
func NewProgressSampler(total int, bucketSize float64) *ProgressSampler {
	if bucketSize <= 0 {
		bucketSize = 10
	}
	return &ProgressSampler{total: total, bucketSize: bucketSize, lastBucket: 0}
}

// Observe records that done units are complete and reports the percentage
// and whether it should be logged. The first unit never logs on its own;
// completion always does.
func (s *ProgressSampler) Observe(done int) (float64, bool) {
	if s == nil || s.total <= 0 {
		return 100, false
	}
	percent := float64(done) * 100 / float64(s.total)
	if percent > 100 {
		percent = 100
	}
	bucket := int(percent / s.bucketSize)
	if bucket > s.lastBucket {
		s.lastBucket = bucket
		return percent, true
	}
	return percent, false
}
