package timing

import (
	"math"

	"github.com/verte-zerg/humangate/internal/feedback"
	"github.com/verte-zerg/humangate/internal/generator"
	"github.com/verte-zerg/humangate/internal/model"
)

const (
	flashDuration = 0.16

	// Notes are drawn from slightly before spawn until shortly after the
	// receptor; hit notes disappear sooner.
	showBefore = 0.2
	showAfter  = 0.6
	hitLinger  = 0.35
)

// NoteStatus is the lifecycle state of a note.
type NoteStatus int

// Note states. Hit and Missed are final.
const (
	Pending NoteStatus = iota
	NoteHit
	NoteMissed
)

// Note is one scheduled event in a lane.
type Note struct {
	ID        int
	Lane      int
	SpawnTime float64
	HitTime   float64
	Status    NoteStatus
}

// NoteView is a note with its travel progress: 0 at spawn, 1 at the receptor.
type NoteView struct {
	Note
	Progress float64
}

// RhythmPhase is the state of a rhythm session.
type RhythmPhase int

// Rhythm phases.
const (
	Ready RhythmPhase = iota
	Playing
	Finished
)

// RhythmResult summarizes a finished session.
type RhythmResult struct {
	Hits     int
	Misses   int
	Strays   int
	Total    int
	MaxCombo int
	Accuracy float64
	Passed   bool
}

// NewChart schedules cfg.Notes notes at a fixed interval, each in a random lane.
func NewChart(cfg model.RhythmConfig, gen *generator.Generator) []Note {
	lanes := gen.Lanes(cfg.Notes, cfg.Lanes)
	notes := make([]Note, cfg.Notes)
	for i := range notes {
		hit := cfg.TravelTime + float64(i)*cfg.Interval
		notes[i] = Note{
			ID:        i,
			Lane:      lanes[i],
			SpawnTime: hit - cfg.TravelTime,
			HitTime:   hit,
			Status:    Pending,
		}
	}
	return notes
}

// Rhythm judges lane presses against a time-based chart.
type Rhythm struct {
	cfg model.RhythmConfig
	gen *generator.Generator
	bus *feedback.Bus

	notes    []Note
	elapsed  float64
	duration float64
	phase    RhythmPhase

	hits, misses, strays int
	combo, maxCombo      int
	flashUntil           []float64
}

// NewRhythm returns a judge in the Ready phase.
func NewRhythm(cfg model.RhythmConfig, gen *generator.Generator, bus *feedback.Bus) *Rhythm {
	return &Rhythm{cfg: cfg, gen: gen, bus: bus, flashUntil: make([]float64, cfg.Lanes)}
}

// Start generates a fresh chart and starts the song clock.
func (r *Rhythm) Start() {
	r.notes = NewChart(r.cfg, r.gen)
	r.elapsed = 0
	r.duration = 0
	if n := len(r.notes); n > 0 {
		r.duration = r.notes[n-1].HitTime + r.cfg.Interval
	}
	r.hits, r.misses, r.strays = 0, 0, 0
	r.combo, r.maxCombo = 0, 0
	r.flashUntil = make([]float64, r.cfg.Lanes)
	r.phase = Playing
}

// Phase returns the current phase.
func (r *Rhythm) Phase() RhythmPhase { return r.phase }

// Elapsed is the song clock in seconds.
func (r *Rhythm) Elapsed() float64 { return r.elapsed }

// Combo is the current run of consecutive hits.
func (r *Rhythm) Combo() int { return r.combo }

// Tally returns hits and misses so far.
func (r *Rhythm) Tally() (hits, misses int) { return r.hits, r.misses }

// Notes returns a copy of the chart.
func (r *Rhythm) Notes() []Note {
	return append([]Note(nil), r.notes...)
}

// Advance moves the song clock by dt seconds, expiring notes whose window
// has closed. The session ends when every note is judged, when the pass
// target is reached, or one interval after the last note. Advance reports
// whether the session finished during this call.
func (r *Rhythm) Advance(dt float64) bool {
	if r.phase != Playing || dt < 0 {
		return false
	}
	r.elapsed += dt
	ended := r.elapsed >= r.duration
	for i := range r.notes {
		n := &r.notes[i]
		if n.Status == Pending && (ended || r.elapsed > n.HitTime+r.cfg.TimingWindow) {
			r.miss(n)
		}
	}
	if ended || r.done() {
		r.phase = Finished
		return true
	}
	return false
}

// Press judges a key press in lane. At most one note is consumed: the
// pending note in that lane closest to the song clock, within the timing
// window. It reports whether a note was hit.
func (r *Rhythm) Press(lane int) bool {
	if r.phase != Playing || lane < 0 || lane >= r.cfg.Lanes {
		return false
	}
	best := -1
	bestDelta := math.Inf(1)
	for i, n := range r.notes {
		if n.Lane != lane || n.Status != Pending {
			continue
		}
		delta := math.Abs(r.elapsed - n.HitTime)
		if delta <= r.cfg.TimingWindow && delta < bestDelta {
			best = i
			bestDelta = delta
		}
	}
	if best < 0 {
		r.strays++
		r.combo = 0
		r.bus.Emit(feedback.Event{Challenge: model.Rhythm, Kind: feedback.Stray, Lane: lane})
		return false
	}
	r.notes[best].Status = NoteHit
	r.hits++
	r.combo++
	if r.combo > r.maxCombo {
		r.maxCombo = r.combo
	}
	r.flashUntil[lane] = r.elapsed + flashDuration
	r.bus.Emit(feedback.Event{Challenge: model.Rhythm, Kind: feedback.Hit, Lane: lane})
	if r.done() {
		r.phase = Finished
	}
	return true
}

// Flash reports whether lane was hit recently.
func (r *Rhythm) Flash(lane int) bool {
	if lane < 0 || lane >= len(r.flashUntil) {
		return false
	}
	return r.elapsed < r.flashUntil[lane]
}

// Visible returns the notes that should be drawn now.
func (r *Rhythm) Visible() []NoteView {
	var out []NoteView
	for _, n := range r.notes {
		if n.Status == NoteHit && r.elapsed > n.HitTime+hitLinger {
			continue
		}
		if r.elapsed < n.SpawnTime-showBefore || r.elapsed > n.HitTime+showAfter {
			continue
		}
		progress := 1.0
		if r.cfg.TravelTime > 0 {
			progress = (r.elapsed - n.SpawnTime) / r.cfg.TravelTime
		}
		out = append(out, NoteView{Note: n, Progress: progress})
	}
	return out
}

// Result scores the session.
func (r *Rhythm) Result() RhythmResult {
	total := len(r.notes)
	res := RhythmResult{
		Hits:     r.hits,
		Misses:   r.misses,
		Strays:   r.strays,
		Total:    total,
		MaxCombo: r.maxCombo,
	}
	if total > 0 {
		res.Accuracy = float64(r.hits) / float64(total)
	}
	if r.cfg.PassTarget > 0 {
		res.Passed = r.hits >= r.cfg.PassTarget
	} else {
		res.Passed = total > 0 && res.Accuracy >= r.cfg.PassThreshold
	}
	return res
}

func (r *Rhythm) miss(n *Note) {
	n.Status = NoteMissed
	r.misses++
	r.combo = 0
	r.bus.Emit(feedback.Event{Challenge: model.Rhythm, Kind: feedback.Miss, Lane: n.Lane})
}

func (r *Rhythm) done() bool {
	if r.cfg.PassTarget > 0 && r.hits >= r.cfg.PassTarget {
		return true
	}
	return r.hits+r.misses >= len(r.notes)
}
