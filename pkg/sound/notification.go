package sound

import (
	"fmt"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/generators"
	"github.com/gopxl/beep/v2/speaker"
)

const sampleRate = beep.SampleRate(44100)

// Rising triad played when a combo is found.
var comboNotes = []float64{659.25, 830.61, 987.77}

const (
	noteLength = 120 * time.Millisecond
	noteGap    = 40 * time.Millisecond
)

type SoundNotifier struct {
	mu sync.Mutex
	sr beep.SampleRate
}

func NewSoundNotifier() (*SoundNotifier, error) {
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		return nil, fmt.Errorf("failed to initialize audio: %w", err)
	}
	return &SoundNotifier{sr: sampleRate}, nil
}

// comboMelody builds the chime as a finite streamer.
func comboMelody(sr beep.SampleRate) (beep.Streamer, error) {
	var parts []beep.Streamer
	for _, freq := range comboNotes {
		tone, err := generators.SineTone(sr, freq)
		if err != nil {
			return nil, fmt.Errorf("failed to create %.0fHz tone: %w", freq, err)
		}
		parts = append(parts,
			beep.Take(sr.N(noteLength), tone),
			generators.Silence(sr.N(noteGap)))
	}
	return beep.Seq(parts...), nil
}

// PlayComboSound plays the chime and waits for it to finish.
func (s *SoundNotifier) PlayComboSound() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	melody, err := comboMelody(s.sr)
	if err != nil {
		return err
	}

	done := make(chan struct{})
	speaker.Play(beep.Seq(melody, beep.Callback(func() {
		close(done)
	})))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		return fmt.Errorf("combo sound did not finish")
	}
	return nil
}
