package raster

import (
	"encoding/binary"
	"log/slog"
	"math"
	"sync"

	"github.com/gogpu/gputypes"

	"github.com/javagg/layoutview"
	"github.com/javagg/layoutview/geometry"
	"github.com/javagg/layoutview/scenestore"
)

// VertexStride is the byte size of one interleaved vertex:
// position (2 x f32) followed by color (4 x f32).
const VertexStride = 24

// Batch is one draw call: all visible primitives sharing a layer style.
type Batch struct {
	Layer layoutview.LayerKey
	Style layoutview.Style

	VertexBuf BufferID
	IndexBuf  BufferID

	VertexCount int
	IndexCount  int
}

// Renderer batches primitives per layer style and uploads them through a
// GPUAdapter. Batches keep first-use order of the primitive stream, so
// layers draw in the order their first shape appears and overlaps stay
// correct. A visible-bounds window culls primitives through the spatial
// index before upload.
//
// Thread safety: Renderer is safe for concurrent use.
type Renderer struct {
	mu      sync.Mutex
	adapter GPUAdapter
	styles  *layoutview.StyleTable
	handle  DeviceHandle

	prims   []geometry.Primitive
	store   *scenestore.Store
	view    layoutview.Rect
	batches []Batch
	shader  ShaderModuleID
}

// NewRenderer creates a renderer over an adapter and style table.
func NewRenderer(adapter GPUAdapter, styles *layoutview.StyleTable) (*Renderer, error) {
	if adapter == nil {
		return nil, ErrNoDevice
	}
	if styles == nil {
		styles = layoutview.NewStyleTable()
	}
	return &Renderer{adapter: adapter, styles: styles, view: layoutview.EmptyRect()}, nil
}

// SetDeviceHandle attaches the host device handle, used to pick the
// output texture format.
func (r *Renderer) SetDeviceHandle(h DeviceHandle) {
	r.mu.Lock()
	r.handle = h
	r.mu.Unlock()
}

// TargetTextureFormat returns the format frames should render into.
func (r *Renderer) TargetTextureFormat() gputypes.TextureFormat {
	r.mu.Lock()
	defer r.mu.Unlock()
	return TargetFormat(r.handle)
}

// InitShader compiles and registers the fill shader. Optional: hosts
// that manage their own pipelines can skip it.
func (r *Renderer) InitShader() error {
	spirv, err := CompileFillShader()
	if err != nil {
		return err
	}
	id, err := r.adapter.CreateShaderModule(spirv, "layoutview-fill")
	if err != nil {
		return err
	}
	r.mu.Lock()
	old := r.shader
	r.shader = id
	r.mu.Unlock()
	if old != InvalidID {
		r.adapter.DestroyShaderModule(old)
	}
	return nil
}

// FillShader returns the registered shader module, or InvalidID.
func (r *Renderer) FillShader() ShaderModuleID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.shader
}

// SetPrimitives replaces the primitive set, rebuilds the spatial index,
// and uploads fresh batches.
func (r *Renderer) SetPrimitives(prims []geometry.Primitive) error {
	store := scenestore.Build(prims)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.prims = prims
	r.store = store
	return r.rebatchLocked()
}

// SetVisibleBounds culls batches to the world-space window, typically
// Camera.VisibleBounds. Primitives outside it are not uploaded. An empty
// rectangle disables culling and uploads everything.
func (r *Renderer) SetVisibleBounds(bounds layoutview.Rect) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.view = bounds
	return r.rebatchLocked()
}

// SetLayerVisible toggles a layer and re-batches the existing primitives.
// The resolved geometry is untouched.
func (r *Renderer) SetLayerVisible(key layoutview.LayerKey, visible bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.styles.SetVisible(key, visible)
	return r.rebatchLocked()
}

// Batches returns the current draw batches in draw order.
func (r *Renderer) Batches() []Batch {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Batch, len(r.batches))
	copy(out, r.batches)
	return out
}

// Pick returns the topmost primitive under a screen position, or nil.
// Hidden layers never pick.
func (r *Renderer) Pick(screen layoutview.Point, cam *layoutview.Camera) *geometry.Primitive {
	if cam == nil {
		return nil
	}
	world := cam.Unproject(screen)

	// Style lookups happen under the lock: SetLayerVisible mutates the
	// table concurrently.
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.store == nil {
		return nil
	}
	for _, id := range r.store.QueryPoint(world) {
		prim := r.store.Primitive(id)
		if r.styles.Visible(prim.Layer) {
			return prim
		}
	}
	return nil
}

// Release destroys all uploaded buffers and the shader module.
func (r *Renderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.releaseBatchesLocked()
	if r.shader != InvalidID {
		r.adapter.DestroyShaderModule(r.shader)
		r.shader = InvalidID
	}
}

func (r *Renderer) releaseBatchesLocked() {
	for _, b := range r.batches {
		r.adapter.DestroyBuffer(b.VertexBuf)
		r.adapter.DestroyBuffer(b.IndexBuf)
	}
	r.batches = nil
}

// rebatchLocked regroups primitives by layer style and uploads buffers.
func (r *Renderer) rebatchLocked() error {
	r.releaseBatchesLocked()

	// Coarse viewport cull through the spatial index. QueryRect returns
	// ids ascending, which is resolution order, so draw order survives.
	var candidates []*geometry.Primitive
	if !r.view.IsEmpty() && r.store != nil {
		for _, id := range r.store.QueryRect(r.view) {
			candidates = append(candidates, r.store.Primitive(id))
		}
	} else {
		for i := range r.prims {
			candidates = append(candidates, &r.prims[i])
		}
	}

	// Group by layer in first-use order of the primitive stream.
	type group struct {
		layer layoutview.LayerKey
		prims []*geometry.Primitive
	}
	var order []layoutview.LayerKey
	groups := make(map[layoutview.LayerKey]*group)
	for _, p := range candidates {
		if !r.styles.Visible(p.Layer) {
			continue
		}
		g, ok := groups[p.Layer]
		if !ok {
			g = &group{layer: p.Layer}
			groups[p.Layer] = g
			order = append(order, p.Layer)
		}
		g.prims = append(g.prims, p)
	}

	for _, layer := range order {
		g := groups[layer]
		style := r.styles.Get(layer)
		batch, err := r.uploadGroup(g.prims, layer, style)
		if err != nil {
			r.releaseBatchesLocked()
			return err
		}
		r.batches = append(r.batches, batch)
	}

	layoutview.Logger().Debug("batches rebuilt",
		slog.Int("batches", len(r.batches)),
		slog.Int("primitives", len(r.prims)))
	return nil
}

func (r *Renderer) uploadGroup(prims []*geometry.Primitive, layer layoutview.LayerKey, style layoutview.Style) (Batch, error) {
	var vertexCount, indexCount int
	for _, p := range prims {
		vertexCount += len(p.Vertices)
		indexCount += len(p.Indices)
	}

	rgba := style.RGBA()
	vertexData := make([]byte, 0, vertexCount*VertexStride)
	indexData := make([]byte, 0, indexCount*4)

	base := uint32(0)
	for _, p := range prims {
		for _, v := range p.Vertices {
			vertexData = appendF32(vertexData, float32(v.X))
			vertexData = appendF32(vertexData, float32(v.Y))
			vertexData = appendF32(vertexData, rgba[0])
			vertexData = appendF32(vertexData, rgba[1])
			vertexData = appendF32(vertexData, rgba[2])
			vertexData = appendF32(vertexData, rgba[3])
		}
		for _, idx := range p.Indices {
			indexData = binary.LittleEndian.AppendUint32(indexData, base+idx)
		}
		base += uint32(len(p.Vertices))
	}

	vbuf, err := r.adapter.CreateBuffer(len(vertexData), BufferUsageVertex|BufferUsageCopyDst)
	if err != nil {
		return Batch{}, err
	}
	ibuf, err := r.adapter.CreateBuffer(len(indexData), BufferUsageIndex|BufferUsageCopyDst)
	if err != nil {
		r.adapter.DestroyBuffer(vbuf)
		return Batch{}, err
	}
	r.adapter.WriteBuffer(vbuf, 0, vertexData)
	r.adapter.WriteBuffer(ibuf, 0, indexData)

	return Batch{
		Layer:       layer,
		Style:       style,
		VertexBuf:   vbuf,
		IndexBuf:    ibuf,
		VertexCount: vertexCount,
		IndexCount:  indexCount,
	}, nil
}

func appendF32(b []byte, f float32) []byte {
	return binary.LittleEndian.AppendUint32(b, math.Float32bits(f))
}
