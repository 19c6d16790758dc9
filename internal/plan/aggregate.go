package plan

import (
	"fmt"
	"math"
	"strconv"

	"github.com/mwhite/stratplan-api/internal/models"
)

// Status is the canonical three-state classification, plus a sentinel for
// goals and metrics with no usable data.
type Status string

const (
	StatusOnTrack  Status = "on-track"
	StatusAtRisk   Status = "at-risk"
	StatusOffTrack Status = "off-track"
	StatusNoData   Status = "no-data"
)

// Per-metric thresholds: ratio >= 0.90 on-track, >= 0.70 at-risk, else
// off-track.
const (
	onTrackRatio = 0.90
	atRiskRatio  = 0.70
)

// Roll-up thresholds over all contributing metrics of a goal subtree.
const (
	offTrackShare = 0.50
	onTrackShare  = 0.70
)

// Ratio returns current/target for a metric, and whether the ratio is
// usable. A missing current or target, a zero target, or a non-finite
// result all mean "no data", never a division error.
func Ratio(m models.Metric) (float64, bool) {
	if m.CurrentValue == nil || m.TargetValue == nil || *m.TargetValue == 0 {
		return 0, false
	}
	r := *m.CurrentValue / *m.TargetValue
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0, false
	}
	return r, true
}

// MetricStatus classifies a single metric against its target.
func MetricStatus(m models.Metric) Status {
	r, ok := Ratio(m)
	if !ok {
		return StatusNoData
	}
	switch {
	case r >= onTrackRatio:
		return StatusOnTrack
	case r >= atRiskRatio:
		return StatusAtRisk
	default:
		return StatusOffTrack
	}
}

// Progress returns the goal's progress percentage: the mean of usable
// metric ratios x100 from the goal's own metrics, falling back exactly one
// level to its immediate children's metrics if it has none. The second
// return is false when no usable metric was found anywhere, so callers can
// report "no metrics" instead of a false 0%.
func Progress(goal *GoalNode) (float64, bool) {
	if pct, ok := meanRatio(goal.Metrics); ok {
		return pct, true
	}
	var pool []models.Metric
	for _, child := range goal.Children {
		pool = append(pool, child.Metrics...)
	}
	return meanRatio(pool)
}

func meanRatio(metrics []models.Metric) (float64, bool) {
	total, count := 0.0, 0
	for _, m := range metrics {
		if r, ok := Ratio(m); ok {
			total += r * 100
			count++
		}
	}
	if count == 0 {
		return 0, false
	}
	return total / float64(count), true
}

// OverallStatus rolls up the goal's own metrics and those of all its
// descendants: off-track wins when off-track metrics are at least half of
// the contributing set, then on-track when on-track metrics are at least
// 70% of it, otherwise at-risk.
func OverallStatus(goal *GoalNode) Status {
	var onTrack, offTrack, contributing int
	for _, node := range Flatten([]*GoalNode{goal}) {
		for _, m := range node.Metrics {
			switch MetricStatus(m) {
			case StatusOnTrack:
				onTrack++
			case StatusOffTrack:
				offTrack++
			case StatusNoData:
				continue
			}
			contributing++
		}
	}
	if contributing == 0 {
		return StatusNoData
	}
	if float64(offTrack) >= offTrackShare*float64(contributing) && offTrack > 0 {
		return StatusOffTrack
	}
	if float64(onTrack) >= onTrackShare*float64(contributing) {
		return StatusOnTrack
	}
	return StatusAtRisk
}

// PrimaryMetric picks the goal's headline metric: the one flagged primary,
// else the first by display order. Nil when the goal has no metrics.
func PrimaryMetric(goal *GoalNode) *models.Metric {
	for i := range goal.Metrics {
		if goal.Metrics[i].IsPrimary {
			return &goal.Metrics[i]
		}
	}
	if len(goal.Metrics) == 0 {
		return nil
	}
	best := 0
	for i := 1; i < len(goal.Metrics); i++ {
		if goal.Metrics[i].DisplayOrder < goal.Metrics[best].DisplayOrder {
			best = i
		}
	}
	return &goal.Metrics[best]
}

// PrimaryDisplay is the single-value summary shown on goal cards.
type PrimaryDisplay struct {
	Value           string  `json:"value"`
	Description     string  `json:"description"`
	ProgressPercent float64 `json:"progressPercent"`
}

// Display builds the headline summary for a goal from its primary metric.
// The second return is false when the goal has no metrics at all.
func Display(goal *GoalNode) (PrimaryDisplay, bool) {
	m := PrimaryMetric(goal)
	if m == nil {
		return PrimaryDisplay{}, false
	}
	pct := 0.0
	if r, ok := Ratio(*m); ok {
		pct = r * 100
	}
	return PrimaryDisplay{
		Value:           FormatValue(*m),
		Description:     m.Name,
		ProgressPercent: pct,
	}, true
}

// FormatValue renders a metric's current value by type. Metrics without a
// current value render as "—".
func FormatValue(m models.Metric) string {
	if m.CurrentValue == nil {
		return "—"
	}
	cur := *m.CurrentValue
	switch m.MetricType {
	case models.MetricTypePercent:
		return strconv.Itoa(int(math.Round(cur))) + "%"
	case models.MetricTypeCurrency:
		return "$" + groupThousands(int64(math.Round(cur)))
	case models.MetricTypeRating:
		if m.TargetValue != nil {
			return fmt.Sprintf("%.2f / %.1f", cur, *m.TargetValue)
		}
		return fmt.Sprintf("%.2f", cur)
	case models.MetricTypeNumber:
		s := groupThousands(int64(math.Round(cur)))
		if m.Unit != "" {
			return s + " " + m.Unit
		}
		return s
	default:
		return strconv.FormatFloat(cur, 'f', -1, 64)
	}
}

func groupThousands(v int64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	s := strconv.FormatInt(v, 10)
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	if neg {
		return "-" + s
	}
	return s
}
