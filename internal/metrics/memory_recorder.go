package metrics

import (
	"sync"
	"time"
)

// MemoryRecorder keeps counts in memory. It backs tests and the build summary.
type MemoryRecorder struct {
	mu             sync.Mutex
	stageDurations map[string]time.Duration
	stageResults   map[string]map[ResultLabel]int
	buildDurations int
	buildOutcomes  map[BuildOutcomeLabel]int
	pages          map[PageLabel]int
	outputBytes    int64
}

// NewMemoryRecorder returns an empty MemoryRecorder.
func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{
		stageDurations: map[string]time.Duration{},
		stageResults:   map[string]map[ResultLabel]int{},
		buildOutcomes:  map[BuildOutcomeLabel]int{},
		pages:          map[PageLabel]int{},
	}
}

func (m *MemoryRecorder) ObserveStageDuration(stage string, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stageDurations[stage] += d
}

func (m *MemoryRecorder) ObserveBuildDuration(time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.buildDurations++
}

func (m *MemoryRecorder) IncStageResult(stage string, result ResultLabel) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.stageResults[stage]
	if !ok {
		r = map[ResultLabel]int{}
		m.stageResults[stage] = r
	}
	r[result]++
}

func (m *MemoryRecorder) IncBuildOutcome(outcome BuildOutcomeLabel) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.buildOutcomes[outcome]++
}

func (m *MemoryRecorder) IncPage(kind PageLabel) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pages[kind]++
}

func (m *MemoryRecorder) AddOutputBytes(n int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outputBytes += n
}

// Pages returns the number of pages recorded with kind.
func (m *MemoryRecorder) Pages(kind PageLabel) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pages[kind]
}

// StageResults returns how often stage ended with result.
func (m *MemoryRecorder) StageResults(stage string, result ResultLabel) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stageResults[stage][result]
}

// BuildOutcomes returns how many builds ended with outcome.
func (m *MemoryRecorder) BuildOutcomes(outcome BuildOutcomeLabel) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.buildOutcomes[outcome]
}

// OutputBytes returns the total bytes written.
func (m *MemoryRecorder) OutputBytes() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.outputBytes
}
