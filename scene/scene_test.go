package scene

import (
	"errors"
	"testing"

	"github.com/HellmannM/anari-volume-viewer/device"
)

func TestReplaceVolumeKeepsWorldPopulated(t *testing.T) {
	dev, log := newTestDevice(t)
	builder := NewBuilder(dev)
	graph, err := NewGraph(dev)
	if err != nil {
		t.Fatalf("NewGraph() error = %v", err)
	}

	buf, desc := testBuffer()
	fieldA, volA, err := builder.Build(buf, desc)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if err := graph.ReplaceVolume(volA); err != nil {
		t.Fatalf("ReplaceVolume() error = %v", err)
	}
	if n := graph.World().VolumeCount(); n != 1 {
		t.Fatalf("VolumeCount() = %d after first attach, want 1", n)
	}

	// A LUT-change style swap: the new volume goes in, then the old field
	// goes away. The world must hold exactly one volume at every committed
	// state in between.
	fieldB, volB, err := builder.Build(buf, desc)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if err := graph.ReplaceVolume(volB); err != nil {
		t.Fatalf("ReplaceVolume() error = %v", err)
	}
	if n := graph.World().VolumeCount(); n != 1 {
		t.Fatalf("VolumeCount() = %d after swap, want 1", n)
	}
	fieldA.Release()

	fieldB.Release()
	graph.Release()
	dev.Release()
	if n := log.count("live object"); n != 0 {
		t.Errorf("device reported leaked objects %d times", n)
	}
	if n := log.count("released more often"); n != 0 {
		t.Errorf("device reported double releases %d times", n)
	}
}

func TestReplaceVolumeConsumesVolumeOnFailure(t *testing.T) {
	dev, log := newTestDevice(t)
	failing := &failingDevice{Device: dev, failVolArr: true}
	builder := NewBuilder(dev)
	graph, err := NewGraph(failing)
	if err != nil {
		t.Fatalf("NewGraph() error = %v", err)
	}

	buf, desc := testBuffer()
	field, vol, err := builder.Build(buf, desc)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if err := graph.ReplaceVolume(vol); !errors.Is(err, device.ErrAllocation) {
		t.Fatalf("ReplaceVolume() error = %v, want ErrAllocation", err)
	}

	// The volume reference was consumed by the failed swap; only the field
	// remains with the caller.
	field.Release()
	graph.Release()
	dev.Release()
	if n := log.count("live object"); n != 0 {
		t.Errorf("device reported leaked objects %d times after failed swap", n)
	}
}

func TestNewGraphCommitsEmptyWorld(t *testing.T) {
	dev, log := newTestDevice(t)
	graph, err := NewGraph(dev)
	if err != nil {
		t.Fatalf("NewGraph() error = %v", err)
	}
	if n := graph.World().VolumeCount(); n != 0 {
		t.Errorf("VolumeCount() = %d on an empty world, want 0", n)
	}
	graph.Release()
	dev.Release()
	if n := log.count("live object"); n != 0 {
		t.Errorf("device reported leaked objects %d times", n)
	}
}
