package analysis

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func row(key string, v int64) AggregateRow {
	return AggregateRow{Key: key, Value: decimal.NewFromInt(v), Rows: 1}
}

func TestTopN_StableForTies(t *testing.T) {
	rows := []AggregateRow{row("a", 5), row("b", 9), row("c", 5), row("d", 9), row("e", 1)}
	got := TopN(rows, 4)
	assert.Equal(t, []string{"b", "d", "a", "c"}, got.Keys())
	assert.Equal(t, "a", rows[0].Key, "input must not be reordered")
}

func TestTopN_DefaultsAndEmpty(t *testing.T) {
	var rows []AggregateRow
	for i := 0; i < 15; i++ {
		rows = append(rows, row(string(rune('a'+i)), int64(i)))
	}
	assert.Len(t, TopN(rows, 0), DefaultTopN)
	assert.Len(t, TopN(rows, -3), DefaultTopN)
	assert.Len(t, TopN(rows[:2], 5), 2)

	empty := TopN(nil, 3)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestPareto_ExactBoundaryIncluded(t *testing.T) {
	seg := Pareto([]AggregateRow{row("c", 20), row("a", 50), row("b", 30)}, 0.8)
	require.Len(t, seg.Members, 2)
	assert.Equal(t, []string{"a", "b"}, seg.Keys())
	assert.Equal(t, 50.0, seg.Members[0].SharePercent)
	assert.Equal(t, 80.0, seg.Members[1].CumulativePercent)
	assert.Equal(t, "100", seg.GrandTotal.String())
}

func TestPareto_FirstRowAboveThreshold(t *testing.T) {
	seg := Pareto([]AggregateRow{row("ProductX", 500), row("ProductY", 50)}, 0.8)
	assert.NotNil(t, seg.Members)
	assert.Empty(t, seg.Members)
}

func TestPareto_InclusionBound(t *testing.T) {
	for seed := uint64(1); seed <= 15; seed++ {
		rows, err := GroupReduce(fakeSet(seed, 200), ByCustomer, MetricTotal, ReduceSum)
		require.NoError(t, err)
		seg := Pareto(rows, 0.8)
		if seg.GrandTotal.IsZero() {
			continue
		}
		ranked := rankDesc(rows)
		limit := decimal.NewFromFloat(0.8).Mul(seg.GrandTotal)
		cum := decimal.Zero
		for i, m := range seg.Members {
			assert.Equal(t, ranked[i].Key, m.Key)
			cum = cum.Add(m.Value)
		}
		assert.True(t, cum.LessThanOrEqual(limit), "seed %d", seed)
		if n := len(seg.Members); n < len(ranked) {
			assert.True(t, cum.Add(ranked[n].Value).GreaterThan(limit), "seed %d", seed)
		}
	}
}

func TestPareto_DegenerateInputs(t *testing.T) {
	empty := Pareto(nil, 0.8)
	assert.Empty(t, empty.Members)
	assert.NotNil(t, empty.Members)

	zero := Pareto([]AggregateRow{row("a", 0), row("b", 0)}, 0.8)
	assert.Empty(t, zero.Members)

	for _, thr := range []float64{0, -1, 1.5} {
		seg := Pareto([]AggregateRow{row("a", 50), row("b", 30), row("c", 20)}, thr)
		assert.Equal(t, DefaultParetoThreshold, seg.Threshold)
		assert.Len(t, seg.Members, 2)
	}

	all := Pareto([]AggregateRow{row("a", 50), row("b", 30), row("c", 20)}, 1)
	assert.Len(t, all.Members, 3)
}
