package compute

import (
	"cmp"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"golang.org/x/exp/slices"
)

// BroadPhase finds overlapping AABB pairs on the GPU. The pipeline, bind
// group and every buffer are created once and reused across calls.
type BroadPhase struct {
	system    *System
	pipeline  *Pipeline
	bindGroup *wgpu.BindGroup

	boxBuffer     *Buffer // input boxes
	pairBuffer    *Buffer // output pairs
	countBuffer   *Buffer // output pair count
	uniformBuffer *Buffer // box count

	maxObjects uint32
	maxPairs   uint32
}

// Box is an AABB laid out for WGSL: vec3 + pad, vec3 + pad.
type Box struct {
	MinX, MinY, MinZ float32
	_                float32
	MaxX, MaxY, MaxZ float32
	_                float32
}

func NewBox(minX, minY, minZ, maxX, maxY, maxZ float32) Box {
	return Box{MinX: minX, MinY: minY, MinZ: minZ, MaxX: maxX, MaxY: maxY, MaxZ: maxZ}
}

// CollisionPair references two input boxes by index, A < B.
type CollisionPair struct {
	A, B uint32
}

const broadPhaseShader = `
// Each thread tests one box against every box with a higher index, so each
// pair is produced once with a < b.

struct Box {
    min: vec3<f32>,
    pad0: f32,
    max: vec3<f32>,
    pad1: f32,
}

struct Pair {
    a: u32,
    b: u32,
}

@group(0) @binding(0) var<storage, read> boxes: array<Box>;
@group(0) @binding(1) var<storage, read_write> pairs: array<Pair>;
@group(0) @binding(2) var<storage, read_write> pairCount: atomic<u32>;
@group(0) @binding(3) var<uniform> boxCount: vec4<u32>;

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let i = global_id.x;
    let n = boxCount.x;
    if (i >= n) {
        return;
    }

    let a = boxes[i];
    for (var j = i + 1u; j < n; j = j + 1u) {
        let b = boxes[j];
        if (all(a.min <= b.max) && all(b.min <= a.max)) {
            let idx = atomicAdd(&pairCount, 1u);
            if (idx < arrayLength(&pairs)) {
                pairs[idx] = Pair(i, j);
            }
        }
    }
}
`

var broadPhaseBindings = []wgpu.BindGroupLayoutEntry{
	{Binding: 0, Visibility: wgpu.ShaderStageCompute,
		Buffer: wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeReadOnlyStorage}},
	{Binding: 1, Visibility: wgpu.ShaderStageCompute,
		Buffer: wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeStorage}},
	{Binding: 2, Visibility: wgpu.ShaderStageCompute,
		Buffer: wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeStorage}},
	{Binding: 3, Visibility: wgpu.ShaderStageCompute,
		Buffer: wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeUniform}},
}

// NewBroadPhase creates the GPU broad phase. It returns nil, nil when the
// compute system is not initialized.
// maxPairs should be generous, e.g. maxObjects * 20.
func NewBroadPhase(maxObjects, maxPairs uint32) (*BroadPhase, error) {
	sys := Get()
	if sys == nil {
		return nil, nil
	}

	pipeline, err := sys.CreatePipeline("aabb_broadphase", broadPhaseShader, "main", broadPhaseBindings)
	if err != nil {
		return nil, err
	}

	bp := &BroadPhase{system: sys, pipeline: pipeline, maxObjects: maxObjects, maxPairs: maxPairs}
	if err := bp.createBuffers(); err != nil {
		bp.Release()
		return nil, err
	}
	bp.bindGroup, err = sys.CreateBindGroup("aabb_broadphase_bindgroup", pipeline,
		bp.boxBuffer, bp.pairBuffer, bp.countBuffer, bp.uniformBuffer)
	if err != nil {
		bp.Release()
		return nil, err
	}
	return bp, nil
}

func (bp *BroadPhase) createBuffers() error {
	var err error
	bp.boxBuffer, err = bp.system.CreateBuffer("boxes", uint64(bp.maxObjects)*32,
		wgpu.BufferUsageStorage|wgpu.BufferUsageCopyDst)
	if err != nil {
		return err
	}
	bp.pairBuffer, err = bp.system.CreateBuffer("pairs", uint64(bp.maxPairs)*8,
		wgpu.BufferUsageStorage|wgpu.BufferUsageCopySrc)
	if err != nil {
		return err
	}
	bp.countBuffer, err = bp.system.CreateBuffer("pairCount", 4,
		wgpu.BufferUsageStorage|wgpu.BufferUsageCopySrc|wgpu.BufferUsageCopyDst)
	if err != nil {
		return err
	}
	// Uniforms are padded to 16 bytes
	bp.uniformBuffer, err = bp.system.CreateBuffer("boxCount", 16,
		wgpu.BufferUsageUniform|wgpu.BufferUsageCopyDst)
	return err
}

// MaxObjects is the largest input DetectPairs accepts.
func (bp *BroadPhase) MaxObjects() int {
	return int(bp.maxObjects)
}

// DetectPairs returns every overlapping pair of boxes, sorted by (A, B).
// Touching boxes count as overlapping.
func (bp *BroadPhase) DetectPairs(boxes []Box) ([]CollisionPair, error) {
	if len(boxes) < 2 {
		return nil, nil
	}
	if uint32(len(boxes)) > bp.maxObjects {
		return nil, fmt.Errorf("broad phase: %d boxes exceeds capacity %d", len(boxes), bp.maxObjects)
	}

	n := uint32(len(boxes))
	bp.system.WriteBuffer(bp.boxBuffer, 0, ToBytes(boxes))
	bp.system.WriteBuffer(bp.countBuffer, 0, ToBytes([]uint32{0}))
	bp.system.WriteBuffer(bp.uniformBuffer, 0, ToBytes([]uint32{n, 0, 0, 0}))

	if err := bp.system.Dispatch(bp.pipeline, bp.bindGroup, (n+255)/256); err != nil {
		return nil, err
	}

	countData, err := bp.system.ReadBuffer(bp.countBuffer, 4)
	if err != nil {
		return nil, err
	}
	pairCount := fromBytes[uint32](countData)[0]
	if pairCount == 0 {
		return nil, nil
	}
	if pairCount > bp.maxPairs {
		return nil, fmt.Errorf("broad phase: %d pairs overflowed capacity %d", pairCount, bp.maxPairs)
	}

	pairData, err := bp.system.ReadBuffer(bp.pairBuffer, uint64(pairCount)*8)
	if err != nil {
		return nil, err
	}
	pairs := make([]CollisionPair, pairCount)
	copy(pairs, fromBytes[CollisionPair](pairData))

	// Atomic append order varies between runs
	slices.SortFunc(pairs, func(p, q CollisionPair) int {
		if c := cmp.Compare(p.A, q.A); c != 0 {
			return c
		}
		return cmp.Compare(p.B, q.B)
	})
	return pairs, nil
}

// Release frees GPU resources. The cached pipeline belongs to the System.
func (bp *BroadPhase) Release() {
	if bp.bindGroup != nil {
		bp.bindGroup.Release()
		bp.bindGroup = nil
	}
	for _, buf := range []*Buffer{bp.boxBuffer, bp.pairBuffer, bp.countBuffer, bp.uniformBuffer} {
		if buf != nil {
			buf.Release()
		}
	}
	bp.boxBuffer, bp.pairBuffer, bp.countBuffer, bp.uniformBuffer = nil, nil, nil, nil
}
