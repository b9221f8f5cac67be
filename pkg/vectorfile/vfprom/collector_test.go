package vfprom_test

import (
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/vectorfile/pkg/vectorfile"
	"github.com/calvinalkan/vectorfile/pkg/vectorfile/vfprom"
)

func Test_Collector_Counts_Vector_Events_When_Attached(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	collector := vfprom.New(reg, "test")

	path := filepath.Join(t.TempDir(), "prom.vec")

	v, err := vectorfile.Create(path, vectorfile.NewSlice[int32](), 0, vectorfile.Options{
		WindowSize: 16,
		Metrics:    collector,
	})
	require.NoError(t, err)

	t.Cleanup(func() { _ = v.Close() })

	for i := range 4 {
		require.NoError(t, v.PushBack([]int32{int32(i)}))
	}

	for i := range 4 {
		_, err := v.Get(i)
		require.NoError(t, err)
	}

	require.NoError(t, v.Set(3, []int32{1, 2, 3}))
	require.NoError(t, v.Flush())

	stats := v.Stats()

	hits, err := counterValue(reg, "vectorfile_accesses_total", "result", "hit")
	require.NoError(t, err)
	assert.InDelta(t, float64(stats.Hits), hits, 0)

	misses, err := counterValue(reg, "vectorfile_accesses_total", "result", "miss")
	require.NoError(t, err)
	assert.InDelta(t, float64(stats.Misses), misses, 0)

	loads, err := counterValue(reg, "vectorfile_window_loads_total", "", "")
	require.NoError(t, err)
	assert.InDelta(t, float64(stats.Loads), loads, 0)

	extends, err := counterValue(reg, "vectorfile_rewrites_total", "kind", "extend")
	require.NoError(t, err)
	assert.InDelta(t, 1, extends, 0)
}

func Test_New_Panics_When_Name_Registered_Twice(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	vfprom.New(reg, "dup")

	assert.Panics(t, func() { vfprom.New(reg, "dup") })
}

// counterValue sums the counter samples of family name whose label matches
// value. An empty label matches every sample.
func counterValue(reg *prometheus.Registry, name, label, value string) (float64, error) {
	families, err := reg.Gather()
	if err != nil {
		return 0, err
	}

	var total float64

	for _, family := range families {
		if family.GetName() != name {
			continue
		}

		for _, metric := range family.GetMetric() {
			if label != "" && !hasLabel(metric.GetLabel(), label, value) {
				continue
			}

			total += metric.GetCounter().GetValue()
		}
	}

	return total, nil
}

func hasLabel[L interface {
	GetName() string
	GetValue() string
}](labels []L, name, value string) bool {
	for _, l := range labels {
		if l.GetName() == name && l.GetValue() == value {
			return true
		}
	}

	return false
}
