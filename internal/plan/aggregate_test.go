package plan

import (
	"testing"

	"github.com/google/uuid"
	"github.com/mwhite/stratplan-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 { return &v }

func metric(current, target *float64) models.Metric {
	return models.Metric{
		ID:           uuid.New(),
		GoalID:       uuid.New(),
		Name:         "m",
		MetricType:   models.MetricTypeNumber,
		CurrentValue: current,
		TargetValue:  target,
	}
}

func TestRatio(t *testing.T) {
	r, ok := Ratio(metric(f(75), f(100)))
	require.True(t, ok)
	assert.InDelta(t, 0.75, r, 1e-9)

	_, ok = Ratio(metric(f(50), nil))
	assert.False(t, ok, "missing target is no data, not an error")

	_, ok = Ratio(metric(f(50), f(0)))
	assert.False(t, ok, "zero target is no data, not a divide-by-zero")

	_, ok = Ratio(metric(nil, f(100)))
	assert.False(t, ok)
}

func TestMetricStatus_Thresholds(t *testing.T) {
	cases := []struct {
		current float64
		want    Status
	}{
		{95, StatusOnTrack},
		{90, StatusOnTrack}, // boundary is inclusive
		{89.9, StatusAtRisk},
		{75, StatusAtRisk},
		{70, StatusAtRisk},
		{69.9, StatusOffTrack},
		{10, StatusOffTrack},
	}
	for _, tc := range cases {
		got := MetricStatus(metric(f(tc.current), f(100)))
		assert.Equal(t, tc.want, got, "current=%v", tc.current)
	}

	assert.Equal(t, StatusNoData, MetricStatus(metric(f(50), nil)))
}

func node(metrics []models.Metric, children ...*GoalNode) *GoalNode {
	return &GoalNode{
		Goal:     models.Goal{ID: uuid.New(), Title: "g"},
		Metrics:  metrics,
		Children: children,
	}
}

func TestProgress_OwnMetrics(t *testing.T) {
	g := node([]models.Metric{
		metric(f(50), f(100)), // 50%
		metric(f(100), f(100)),
		metric(f(10), f(0)), // unusable, excluded
	})

	pct, ok := Progress(g)
	require.True(t, ok)
	assert.InDelta(t, 75, pct, 1e-9)
}

func TestProgress_FallsBackOneLevelOnly(t *testing.T) {
	grandchild := node([]models.Metric{metric(f(10), f(100))})
	child := node([]models.Metric{metric(f(80), f(100))}, grandchild)
	g := node(nil, child)

	pct, ok := Progress(g)
	require.True(t, ok)
	// Grandchild's 10% must not leak into the one-level fallback.
	assert.InDelta(t, 80, pct, 1e-9)
}

func TestProgress_NoUsableMetrics(t *testing.T) {
	g := node([]models.Metric{metric(f(5), nil)})
	pct, ok := Progress(g)
	assert.False(t, ok)
	assert.Zero(t, pct)
}

func TestOverallStatus_CountsAllDescendants(t *testing.T) {
	grandchild := node([]models.Metric{metric(f(10), f(100))}) // off-track
	child := node([]models.Metric{metric(f(20), f(100))}, grandchild)
	g := node([]models.Metric{metric(f(95), f(100))}, child)

	// 2 of 3 contributing metrics off-track
	assert.Equal(t, StatusOffTrack, OverallStatus(g))
}

func TestOverallStatus_MajorityRules(t *testing.T) {
	onTrack := func() models.Metric { return metric(f(95), f(100)) }
	atRisk := func() models.Metric { return metric(f(75), f(100)) }
	offTrack := func() models.Metric { return metric(f(10), f(100)) }

	// off-track at exactly half of contributing wins
	g := node([]models.Metric{offTrack(), onTrack()})
	assert.Equal(t, StatusOffTrack, OverallStatus(g))

	// 3 of 4 on-track (75% >= 70%)
	g = node([]models.Metric{onTrack(), onTrack(), onTrack(), atRisk()})
	assert.Equal(t, StatusOnTrack, OverallStatus(g))

	// 1 on, 1 at-risk: neither bucket dominates
	g = node([]models.Metric{onTrack(), atRisk()})
	assert.Equal(t, StatusAtRisk, OverallStatus(g))

	// only unusable metrics
	g = node([]models.Metric{metric(f(5), nil)})
	assert.Equal(t, StatusNoData, OverallStatus(g))
}

func TestPrimaryMetric_Selection(t *testing.T) {
	flagged := metric(f(1), f(2))
	flagged.IsPrimary = true
	flagged.DisplayOrder = 9
	first := metric(f(3), f(4))
	first.DisplayOrder = 1

	g := node([]models.Metric{first, flagged})
	assert.Equal(t, flagged.ID, PrimaryMetric(g).ID, "primary flag wins over order")

	g = node([]models.Metric{metric(f(1), f(2)), first})
	g.Metrics[0].DisplayOrder = 5
	assert.Equal(t, first.ID, PrimaryMetric(g).ID, "lowest display order wins without a flag")

	assert.Nil(t, PrimaryMetric(node(nil)))
}

func TestDisplay(t *testing.T) {
	m := metric(f(87.4), f(100))
	m.MetricType = models.MetricTypePercent
	m.Name = "Reading at grade level"
	g := node([]models.Metric{m})

	d, ok := Display(g)
	require.True(t, ok)
	assert.Equal(t, "87%", d.Value)
	assert.Equal(t, "Reading at grade level", d.Description)
	assert.InDelta(t, 87.4, d.ProgressPercent, 1e-9)

	_, ok = Display(node(nil))
	assert.False(t, ok)
}

func TestFormatValue(t *testing.T) {
	percent := metric(f(87.4), f(100))
	percent.MetricType = models.MetricTypePercent

	currency := metric(f(1234567), f(2000000))
	currency.MetricType = models.MetricTypeCurrency

	rating := metric(f(4.256), f(5))
	rating.MetricType = models.MetricTypeRating

	count := metric(f(15234), f(16000))
	count.MetricType = models.MetricTypeNumber
	count.Unit = "students"

	raw := metric(f(3.5), f(4))
	raw.MetricType = models.MetricTypeStatus

	assert.Equal(t, "87%", FormatValue(percent))
	assert.Equal(t, "$1,234,567", FormatValue(currency))
	assert.Equal(t, "4.26 / 5.0", FormatValue(rating))
	assert.Equal(t, "15,234 students", FormatValue(count))
	assert.Equal(t, "3.5", FormatValue(raw))
	assert.Equal(t, "—", FormatValue(metric(nil, f(10))))
}
