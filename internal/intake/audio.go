package intake

import (
	"fmt"

	"github.com/gordonklaus/portaudio"
)

// SampleFunc is the pull-style callback the receive chain's OFDM
// front-end reads from: it fills dest with up to len(dest) normalized
// complex samples (±1 full scale) and stamps timestampSec/timestampFrac,
// returning the count actually delivered.
type SampleFunc func(dest []complex64, timestampSec *int64, timestampFrac *float64) int

// AudioSource wraps a portaudio input stream as a SampleFunc source,
// treating the left/right channel pair of a stereo input device as the
// I/Q pair of a baseband-sampled SDR front-end: the same "audio
// interface as radio interface" framing a sound-card modem uses, just
// read as complex samples rather than mono PCM.
type AudioSource struct {
	stream  *portaudio.Stream
	buf     []float32 // interleaved I,Q
	sampleRate float64
}

// OpenAudioSource opens the default input device at sampleRate with the
// given per-callback frame count.
func OpenAudioSource(sampleRate float64, framesPerBuffer int) (*AudioSource, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("intake: portaudio init: %w", err)
	}
	src := &AudioSource{buf: make([]float32, framesPerBuffer*2), sampleRate: sampleRate}
	stream, err := portaudio.OpenDefaultStream(2, 0, sampleRate, framesPerBuffer, src.buf)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("intake: open stream: %w", err)
	}
	src.stream = stream
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return nil, fmt.Errorf("intake: start stream: %w", err)
	}
	return src, nil
}

// Read blocks until one callback's worth of frames is available, then
// deinterleaves into complex64 I/Q samples.
func (a *AudioSource) Read(dest []complex64, timestampSec *int64, timestampFrac *float64) int {
	if err := a.stream.Read(); err != nil {
		return 0
	}
	n := len(a.buf) / 2
	if n > len(dest) {
		n = len(dest)
	}
	for i := 0; i < n; i++ {
		dest[i] = complex(a.buf[2*i], a.buf[2*i+1])
	}
	info := a.stream.Info()
	sec := info.InputLatency.Seconds()
	*timestampSec = int64(sec)
	*timestampFrac = sec - float64(*timestampSec)
	return n
}

// Close stops the stream and releases portaudio's process-wide state.
func (a *AudioSource) Close() error {
	err := a.stream.Close()
	portaudio.Terminate()
	return err
}
