package lac

import (
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/HellmannM/anari-volume-viewer/volume"
)

// remapChunkSize is the number of samples one pool task remaps. Every chunk
// writes a disjoint output range, so the result does not depend on task
// scheduling.
const remapChunkSize = 64 * 1024

// Transformer remaps voxel buffers through a set's active table. Remap work
// fans out over a dynamic worker pool; Apply blocks until the whole output
// buffer is written so the load pipeline stays synchronous.
type Transformer struct {
	pool worker.DynamicWorkerPool
}

// NewTransformer creates a Transformer with one remap worker per available
// CPU, leaving one for the submitting goroutine.
func NewTransformer() *Transformer {
	workers := max(runtime.NumCPU()-1, 1)
	return &Transformer{
		pool: worker.NewDynamicWorkerPool(workers, 256, 1*time.Second),
	}
}

// Apply remaps every sample of raw through the set's active table into a
// freshly allocated 32-bit float buffer. The source buffer is never
// modified, so repeated LUT switches always remap the same original samples
// and equal inputs produce bit-identical outputs. The returned buffer
// carries the value range of the remapped data, computed from scratch.
//
// Parameters:
//   - raw: the source buffer, left untouched
//   - set: the table set whose active LUT drives the remap
//
// Returns:
//   - *volume.Buffer: the remapped float buffer
//   - error: ErrInvalidLutIndex when the set is empty
func (t *Transformer) Apply(raw *volume.Buffer, set *Set) (*volume.Buffer, error) {
	lut, err := set.ActiveLut()
	if err != nil {
		return nil, err
	}

	n := raw.Len()
	out := make([]float32, n)

	// A WaitGroup provides the join barrier since pool.Wait() blocks until
	// workers idle-exit.
	var wg sync.WaitGroup
	taskID := 0
	for start := 0; start < n; start += remapChunkSize {
		lo, hi := start, min(start+remapChunkSize, n) // capture for closure
		id := taskID
		taskID++
		wg.Add(1)
		t.pool.SubmitTask(worker.Task{
			ID: id,
			Do: func() (any, error) {
				defer wg.Done()
				remapChunk(raw, lut, out[lo:hi], lo)
				return nil, nil
			},
		})
	}
	wg.Wait()

	return volume.NewFloat32Buffer(out), nil
}

// remapChunk evaluates the table for the samples [offset, offset+len(dst)).
func remapChunk(raw *volume.Buffer, lut *Lut, dst []float32, offset int) {
	switch {
	case raw.Uint8() != nil:
		src := raw.Uint8()
		for i := range dst {
			dst[i] = float32(lut.Eval(float64(src[offset+i])))
		}
	case raw.Uint16() != nil:
		src := raw.Uint16()
		for i := range dst {
			dst[i] = float32(lut.Eval(float64(src[offset+i])))
		}
	default:
		src := raw.Float32()
		for i := range dst {
			dst[i] = float32(lut.Eval(float64(src[offset+i])))
		}
	}
}
