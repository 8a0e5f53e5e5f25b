package corelog

import "sync"

const avgCount uint8 = 30

// FrameMetrics tracks a rolling average of frame times, used by the
// renderer to report FPS alongside its per-view job timings.
type FrameMetrics struct {
	mu sync.Mutex

	counter  uint8
	msTimes  [avgCount]float64
	msAvg    float64
	frames   int32
	accumMS  float64
	fps      float64
}

func NewFrameMetrics() *FrameMetrics {
	return &FrameMetrics{}
}

// Update folds one frame's elapsed seconds into the rolling average.
func (m *FrameMetrics) Update(frameElapsedSeconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	frameMS := frameElapsedSeconds * 1000.0
	m.msTimes[m.counter] = frameMS
	if m.counter == avgCount-1 {
		var sum float64
		for _, t := range m.msTimes {
			sum += t
		}
		m.msAvg = sum / float64(avgCount)
	}
	m.counter = (m.counter + 1) % avgCount

	m.frames++
	m.accumMS += frameMS
	if m.accumMS >= 1000.0 {
		m.fps = float64(m.frames) * 1000.0 / m.accumMS
		m.frames = 0
		m.accumMS = 0
	}
}

func (m *FrameMetrics) AverageFrameMS() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.msAvg
}

func (m *FrameMetrics) FPS() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fps
}
