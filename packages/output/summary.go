package output

import (
	"fmt"

	"github.com/HdrHistogram/hdrhistogram-go"

	"github.com/imhmg/purl/packages/core/runner"
)

// LatencySummary condenses response times across a run. All values are in
// milliseconds.
type LatencySummary struct {
	Count int64
	Mean  float64
	P50   int64
	P95   int64
	P99   int64
	Max   int64
}

// Latency builds the distribution from every execution that produced a
// response. It returns nil when nothing responded.
func Latency(execs []*runner.RequestExecution) *LatencySummary {
	h := hdrhistogram.New(1, 10*60*1000, 3)
	for _, exec := range execs {
		if exec.Response == nil {
			continue
		}
		ms := exec.Response.Duration.Milliseconds()
		if ms < 1 {
			ms = 1
		}
		_ = h.RecordValue(ms)
	}
	if h.TotalCount() == 0 {
		return nil
	}

	return &LatencySummary{
		Count: h.TotalCount(),
		Mean:  h.Mean(),
		P50:   h.ValueAtQuantile(50),
		P95:   h.ValueAtQuantile(95),
		P99:   h.ValueAtQuantile(99),
		Max:   h.Max(),
	}
}

func (s *LatencySummary) String() string {
	return fmt.Sprintf("mean %.1fms, p50 %dms, p95 %dms, p99 %dms, max %dms",
		s.Mean, s.P50, s.P95, s.P99, s.Max)
}
