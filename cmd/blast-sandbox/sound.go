package main

import (
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
)

const sampleRate = beep.SampleRate(44100)

// hitSound plays a short blip per bullet hit, at most one per gap.
type hitSound struct {
	ready bool
	last  time.Time
	gap   time.Duration
}

func newHitSound() (*hitSound, error) {
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		return &hitSound{}, err
	}
	return &hitSound{ready: true, gap: 60 * time.Millisecond}, nil
}

func (h *hitSound) play(kill bool) {
	if !h.ready || time.Since(h.last) < h.gap {
		return
	}
	h.last = time.Now()
	freq := 880.0
	length := 40 * time.Millisecond
	if kill {
		freq = 440
		length = 120 * time.Millisecond
	}
	tone, err := generators.SineTone(sampleRate, freq)
	if err != nil {
		return
	}
	speaker.Play(beep.Take(sampleRate.N(length), tone))
}

func (h *hitSound) close() {
	if h.ready {
		speaker.Close()
	}
}
