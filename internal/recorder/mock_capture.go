package recorder

import (
	"context"
	"encoding/binary"
	"math"
	"time"
)

// mockCapture synthesizes a 440 Hz tone instead of touching a device.
type mockCapture struct {
	sampleRate int
	channels   int
}

func NewMockCapture(sampleRate, channels int) Capture {
	return &mockCapture{sampleRate: sampleRate, channels: channels}
}

func (m *mockCapture) Record(ctx context.Context, duration time.Duration) ([]byte, error) {
	if duration <= 0 {
		// Unbounded capture: pretend to run until canceled, then flush one
		// second of tone.
		<-ctx.Done()
		duration = time.Second
	}
	samples := int(float64(m.sampleRate) * duration.Seconds())
	pcm := make([]byte, 0, samples*m.channels*2)
	for i := 0; i < samples; i++ {
		v := int16(0.3 * math.MaxInt16 * math.Sin(2*math.Pi*440*float64(i)/float64(m.sampleRate)))
		for c := 0; c < m.channels; c++ {
			pcm = binary.LittleEndian.AppendUint16(pcm, uint16(v))
		}
	}
	return pcm, nil
}
