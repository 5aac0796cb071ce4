package dashboard

import "vitalwatch/internal/models"

// DefaultChartSize 图表窗口默认容量
const DefaultChartSize = 20

// ChartWindow 固定容量 FIFO：超出容量时淘汰最早的采样点
type ChartWindow struct {
	buf   []models.ChartSample
	start int
	size  int
}

func NewChartWindow(capacity int) *ChartWindow {
	if capacity <= 0 {
		capacity = DefaultChartSize
	}
	return &ChartWindow{buf: make([]models.ChartSample, capacity)}
}

func (w *ChartWindow) Append(s models.ChartSample) {
	if w.size < len(w.buf) {
		w.buf[(w.start+w.size)%len(w.buf)] = s
		w.size++
		return
	}
	w.buf[w.start] = s
	w.start = (w.start + 1) % len(w.buf)
}

// Samples 按到达顺序返回副本
func (w *ChartWindow) Samples() []models.ChartSample {
	out := make([]models.ChartSample, w.size)
	for i := 0; i < w.size; i++ {
		out[i] = w.buf[(w.start+i)%len(w.buf)]
	}
	return out
}

func (w *ChartWindow) Len() int { return w.size }

func (w *ChartWindow) Cap() int { return len(w.buf) }
