package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var (
	_ Recorder = NoopRecorder{}
	_ Recorder = (*MemoryRecorder)(nil)
	_ Recorder = (*PrometheusRecorder)(nil)
)

func TestMemoryRecorder(t *testing.T) {
	m := NewMemoryRecorder()
	m.IncPage(PageTemplated)
	m.IncPage(PageTemplated)
	m.IncPage(PageCopied)
	m.AddOutputBytes(10)
	m.AddOutputBytes(5)
	m.IncStageResult("apply_template", ResultSuccess)
	m.IncBuildOutcome(BuildOutcomeFailed)
	m.ObserveStageDuration("apply_template", time.Millisecond)

	assert.Equal(t, 2, m.Pages(PageTemplated))
	assert.Equal(t, 1, m.Pages(PageCopied))
	assert.Equal(t, 0, m.Pages(PageStatic))
	assert.Equal(t, int64(15), m.OutputBytes())
	assert.Equal(t, 1, m.StageResults("apply_template", ResultSuccess))
	assert.Equal(t, 1, m.BuildOutcomes(BuildOutcomeFailed))
}
