package scribe_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alkime/scribe/internal/audio"
	"github.com/alkime/scribe/internal/scribe"
)

type fakeCapture struct {
	mu        sync.Mutex
	capturing bool
	starts    int
	stops     int
	aborts    int
	startErr  error
	stopErr   error
	elapsed   time.Duration
	// stopPath is the artifact file Stop reports, even when it fails.
	stopPath string
}

func (f *fakeCapture) Start(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.startErr != nil {
		return f.startErr
	}
	f.capturing = true
	f.starts++
	return nil
}

func (f *fakeCapture) Stop(context.Context) (audio.Artifact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.capturing = false
	f.stops++
	artifact := audio.Artifact{ID: fmt.Sprintf("rec-%d", f.stops), Path: f.stopPath, Size: 512, Duration: time.Second}
	if f.stopErr != nil {
		return artifact, f.stopErr
	}
	return artifact, nil
}

func (f *fakeCapture) Abort(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.capturing = false
	f.aborts++
	return nil
}

func (f *fakeCapture) Status() audio.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return audio.Status{Capturing: f.capturing, Elapsed: f.elapsed, Level: 0.5}
}

func (f *fakeCapture) counts() (starts, stops, aborts int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.starts, f.stops, f.aborts
}

type result struct {
	text string
	err  error
}

// fakeTranscriber returns queued results in order, then "dictation". When
// gate is set each call signals called and waits for gate.
type fakeTranscriber struct {
	mu      sync.Mutex
	results []result
	seen    []audio.Artifact
	gate    chan struct{}
	called  chan struct{}
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, a audio.Artifact) (string, error) {
	f.mu.Lock()
	f.seen = append(f.seen, a)
	var r result
	if len(f.results) > 0 {
		r, f.results = f.results[0], f.results[1:]
	} else {
		r = result{text: "dictation"}
	}
	gate, called := f.gate, f.called
	f.mu.Unlock()

	if gate != nil {
		called <- struct{}{}
		select {
		case <-gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	return r.text, r.err
}

func (f *fakeTranscriber) artifacts() []audio.Artifact {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]audio.Artifact(nil), f.seen...)
}

type fakeFormatter struct {
	mu       sync.Mutex
	fail     map[string]error
	calls    []string
	inFlight atomic.Int32
	maxSeen  atomic.Int32
	gate     chan struct{}
	called   chan struct{}
}

func (f *fakeFormatter) Format(ctx context.Context, section, text string) (string, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		m := f.maxSeen.Load()
		if n <= m || f.maxSeen.CompareAndSwap(m, n) {
			break
		}
	}

	f.mu.Lock()
	f.calls = append(f.calls, section)
	err := f.fail[section]
	gate, called := f.gate, f.called
	f.mu.Unlock()

	if gate != nil {
		called <- struct{}{}
		<-gate
	}
	if err != nil {
		return "", err
	}

	return "formatted " + text, nil
}

type recorder struct {
	mu     sync.Mutex
	events []scribe.Event
}

func (r *recorder) Observe(e scribe.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) all() []scribe.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]scribe.Event(nil), r.events...)
}

func (r *recorder) notices() []scribe.NoticeKind {
	var kinds []scribe.NoticeKind
	for _, e := range r.all() {
		if e.Notice != nil {
			kinds = append(kinds, e.Notice.Kind)
		}
	}
	return kinds
}

var errBoom = errors.New("boom")

func (f *fakeCapture) artifact() audio.Artifact {
	return audio.Artifact{ID: "fixed", Size: 512}
}
