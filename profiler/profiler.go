package profiler

import (
	"log"
	"strings"
	"time"
)

// windowSize bounds the retained rebuild history.
const windowSize = 32

// StageTiming is one timed phase of a pipeline run.
type StageTiming struct {
	Name    string
	Elapsed time.Duration
}

// Rebuild summarizes one completed pipeline run.
type Rebuild struct {
	Stages []StageTiming
	Total  time.Duration
	Voxels int
}

// Profiler times the stages of volume loads and LUT rebuilds and logs a
// summary with voxel throughput after each run. A bounded window of past
// runs backs the averages.
type Profiler struct {
	current []StageTiming
	begun   time.Time
	started bool
	window  []Rebuild
}

// NewProfiler creates a new Profiler with an empty history window.
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler() *Profiler {
	return &Profiler{}
}

// Begin starts timing a new pipeline run, discarding any unfinished one.
func (p *Profiler) Begin() {
	p.current = p.current[:0]
	p.begun = time.Now()
	p.started = true
}

// Stage starts timing one named stage and returns the function that stops
// it, meant for defer at the top of the stage:
//
//	defer p.Stage("remap")()
//
// Parameters:
//   - name: the stage label used in the summary line
//
// Returns:
//   - func(): stops the stage timer and records the elapsed time
func (p *Profiler) Stage(name string) func() {
	start := time.Now()
	return func() {
		p.current = append(p.current, StageTiming{Name: name, Elapsed: time.Since(start)})
	}
}

// End completes the run over the given voxel count, logs the summary, and
// returns the recorded rebuild. Calling End without a matching Begin is a
// no-op returning the zero Rebuild.
//
// Parameters:
//   - voxels: the number of voxels the run processed
//
// Returns:
//   - Rebuild: the recorded stage timings and total
func (p *Profiler) End(voxels int) Rebuild {
	if !p.started {
		return Rebuild{}
	}
	p.started = false

	r := Rebuild{
		Stages: make([]StageTiming, len(p.current)),
		Total:  time.Since(p.begun),
		Voxels: voxels,
	}
	copy(r.Stages, p.current)

	p.window = append(p.window, r)
	if len(p.window) > windowSize {
		p.window = p.window[1:]
	}

	var b strings.Builder
	for _, s := range r.Stages {
		b.WriteString(" | ")
		b.WriteString(s.Name)
		b.WriteString(": ")
		b.WriteString(s.Elapsed.Round(time.Microsecond).String())
	}
	throughput := 0.0
	if r.Total > 0 {
		throughput = float64(voxels) / 1e6 / r.Total.Seconds()
	}
	log.Printf("[Profiler] Rebuild: %s%s | Throughput: %.2f Mvox/s",
		r.Total.Round(time.Microsecond), b.String(), throughput)
	return r
}

// Report logs aggregate statistics over the retained window: the run count,
// the shortest, mean and longest rebuild, and the mean voxel throughput.
// A no-op while the window is empty.
func (p *Profiler) Report() {
	if len(p.window) == 0 {
		return
	}
	shortest, longest := p.window[0].Total, p.window[0].Total
	var sum time.Duration
	var voxels int
	for _, r := range p.window {
		if r.Total < shortest {
			shortest = r.Total
		}
		if r.Total > longest {
			longest = r.Total
		}
		sum += r.Total
		voxels += r.Voxels
	}
	throughput := 0.0
	if sum > 0 {
		throughput = float64(voxels) / 1e6 / sum.Seconds()
	}
	log.Printf("[Profiler] %d rebuild(s) | min: %s | avg: %s | max: %s | Throughput: %.2f Mvox/s",
		len(p.window), shortest.Round(time.Microsecond),
		(sum / time.Duration(len(p.window))).Round(time.Microsecond),
		longest.Round(time.Microsecond), throughput)
}

// Window returns the retained history, oldest first.
//
// Returns:
//   - []Rebuild: a copy of the recorded runs
func (p *Profiler) Window() []Rebuild {
	out := make([]Rebuild, len(p.window))
	copy(out, p.window)
	return out
}

// Average returns the mean total duration over the window. An empty window
// averages to zero.
//
// Returns:
//   - time.Duration: the mean rebuild duration
func (p *Profiler) Average() time.Duration {
	if len(p.window) == 0 {
		return 0
	}
	var sum time.Duration
	for _, r := range p.window {
		sum += r.Total
	}
	return sum / time.Duration(len(p.window))
}
