package vcon

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/gopxl/beep/wav"
)

const speakerRate = beep.SampleRate(44100)

// SoundPlayer plays short sound files, such as the console beep.
type SoundPlayer interface {
	Play(path string) error
	Close() error
}

// Speaker plays sound files through the system audio device.
// Decoded sounds are cached by path.
type Speaker struct {
	mu          sync.Mutex
	cache       map[string]*beep.Buffer
	initialized bool
}

// NewSpeaker returns a speaker. The audio device is opened on the first Play.
func NewSpeaker() *Speaker {
	return &Speaker{cache: make(map[string]*beep.Buffer)}
}

// decodeSound decodes a sound file into a buffer at the speaker sample rate.
func decodeSound(path string) (*beep.Buffer, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".wav" {
		return nil, fmt.Errorf("unsupported sound format %q: %s", ext, path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	streamer, format, err := wav.Decode(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	defer streamer.Close()

	var s beep.Streamer = streamer
	if format.SampleRate != speakerRate {
		s = beep.Resample(4, format.SampleRate, speakerRate, streamer)
	}
	format.SampleRate = speakerRate
	buf := beep.NewBuffer(format)
	buf.Append(s)
	return buf, nil
}

// Play starts playing the sound and returns without waiting for it to finish.
func (sp *Speaker) Play(path string) error {
	sp.mu.Lock()
	defer sp.mu.Unlock()

	buf, ok := sp.cache[path]
	if !ok {
		var err error
		if buf, err = decodeSound(path); err != nil {
			return err
		}
		sp.cache[path] = buf
	}

	if !sp.initialized {
		if err := speaker.Init(speakerRate, speakerRate.N(time.Second/10)); err != nil {
			return fmt.Errorf("initializing audio: %w", err)
		}
		sp.initialized = true
	}

	speaker.Play(buf.Streamer(0, buf.Len()))
	return nil
}

// Close stops all sounds that are still playing and releases the audio device.
// A later Play opens the device again.
func (sp *Speaker) Close() error {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	if sp.initialized {
		speaker.Clear()
		speaker.Close()
		sp.initialized = false
	}
	return nil
}
