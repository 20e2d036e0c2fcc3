package renderer

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/Carmen-Shannon/oxy-corridor/common"
	"github.com/Carmen-Shannon/oxy-corridor/engine/style"
	"github.com/cogentcore/webgpu/wgpu"
)

// minInstanceCapacity is the initial size of the instance storage buffer, in records.
const minInstanceCapacity = 64

type wgpuRendererBackendImpl struct {
	device *wgpu.Device
	queue  *wgpu.Queue

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface

	surfaceFormat        *wgpu.TextureFormat
	msaaTexture          *wgpu.Texture
	msaaTextureView      *wgpu.TextureView
	depthTexture         *wgpu.Texture
	depthTextureView     *wgpu.TextureView
	renderPassDescriptor *wgpu.RenderPassDescriptor

	presentMode wgpu.PresentMode // defaults to PresentModeImmediate (Uncapped)
	sampleCount MSAASampleCount  // MSAA sample count for the main render pass

	pipeline        *wgpu.RenderPipeline
	bindGroupLayout *wgpu.BindGroupLayout
	bindGroup       *wgpu.BindGroup

	vertexBuffer *wgpu.Buffer
	indexBuffer  *wgpu.Buffer
	indexCount   uint32

	globalsBuffer    *wgpu.Buffer
	instanceBuffer   *wgpu.Buffer
	instanceCapacity int

	noiseTexture *wgpu.Texture
	noiseView    *wgpu.TextureView
	noiseSampler *wgpu.Sampler
}

var _ RendererBackend = &wgpuRendererBackendImpl{}

func newWGPURendererBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, forceFallbackAdapter bool, sampleCount MSAASampleCount) (*wgpuRendererBackendImpl, error) {
	runtime.LockOSThread()
	b := &wgpuRendererBackendImpl{
		instance:    wgpu.CreateInstance(nil),
		presentMode: wgpu.PresentModeImmediate,
		sampleCount: sampleCount,
	}
	b.surface = b.instance.CreateSurface(surfaceDescriptor)

	a, err := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
		CompatibleSurface:    b.surface,
	})
	if err != nil {
		b.Release()
		return nil, fmt.Errorf("request adapter: %w", err)
	}
	b.adapter = a

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Corridor Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: wgpu.DefaultLimits(),
		},
	})
	if err != nil {
		b.Release()
		return nil, fmt.Errorf("request device: %w", err)
	}
	b.device = d
	b.queue = d.GetQueue()

	return b, nil
}

func (b *wgpuRendererBackendImpl) ConfigureSurface(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("surface size %dx%d must be positive", width, height)
	}

	capabilities := b.surface.GetCapabilities(b.adapter)
	if len(capabilities.Formats) == 0 {
		return errors.New("surface reports no supported formats")
	}
	b.surfaceFormat = &capabilities.Formats[0]

	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      *b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})

	b.releaseAttachments()

	count := uint32(b.sampleCount)
	msaaEnabled := count > 1
	size := wgpu.Extent3D{
		Width:              uint32(width),
		Height:             uint32(height),
		DepthOrArrayLayers: 1,
	}

	if msaaEnabled {
		// The render pass draws into the MSAA texture; the swapchain view is its ResolveTarget.
		tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
			Label:         "MSAA Texture",
			Size:          size,
			MipLevelCount: 1,
			SampleCount:   count,
			Dimension:     wgpu.TextureDimension2D,
			Format:        *b.surfaceFormat,
			Usage:         wgpu.TextureUsageRenderAttachment,
		})
		if err != nil {
			return fmt.Errorf("create msaa texture: %w", err)
		}
		b.msaaTexture = tex
		b.msaaTextureView, err = tex.CreateView(nil)
		if err != nil {
			return fmt.Errorf("create msaa view: %w", err)
		}
	}

	// Depth texture sample count must match the color attachment.
	depth, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "Depth Texture",
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   count,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatDepth24Plus,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		return fmt.Errorf("create depth texture: %w", err)
	}
	b.depthTexture = depth
	b.depthTextureView, err = depth.CreateView(nil)
	if err != nil {
		return fmt.Errorf("create depth view: %w", err)
	}

	storeOp := wgpu.StoreOpStore
	if msaaEnabled {
		storeOp = wgpu.StoreOpDiscard
	}
	b.renderPassDescriptor = &wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:          b.msaaTextureView, // nil when MSAA is off; set in DrawFrame
				ResolveTarget: nil,               // set per-frame when MSAA is on
				LoadOp:        wgpu.LoadOpClear,
				StoreOp:       storeOp,
				ClearValue: wgpu.Color{
					R: 0, G: 0, B: 0, A: 1.0,
				},
			},
		},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            b.depthTextureView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpDiscard,
			DepthClearValue: 1.0,
		},
	}
	return nil
}

func (b *wgpuRendererBackendImpl) SetPresentMode(mode PresentMode) {
	switch mode {
	case PresentModeVSync:
		b.presentMode = wgpu.PresentModeFifo
	case PresentModeUncapped:
		fallthrough
	default:
		b.presentMode = wgpu.PresentModeImmediate
	}
}

// InitPipeline creates the corridor render pipeline, the shared box mesh and the globals uniform buffer.
// Must be called after ConfigureSurface so the surface format is known.
func (b *wgpuRendererBackendImpl) InitPipeline() error {
	if b.surfaceFormat == nil {
		return errors.New("surface not configured")
	}

	module, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: "Corridor Shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: CorridorShaderSource,
		},
	})
	if err != nil {
		return err
	}
	defer module.Release()

	b.bindGroupLayout, err = b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "Corridor Bind Group Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeUniform,
					MinBindingSize: GlobalsSize,
				},
			},
			{
				Binding:    1,
				Visibility: wgpu.ShaderStageFragment,
				Texture: wgpu.TextureBindingLayout{
					SampleType:    wgpu.TextureSampleTypeFloat,
					ViewDimension: wgpu.TextureViewDimension2D,
				},
			},
			{
				Binding:    2,
				Visibility: wgpu.ShaderStageFragment,
				Sampler: wgpu.SamplerBindingLayout{
					Type: wgpu.SamplerBindingTypeFiltering,
				},
			},
			{
				Binding:    3,
				Visibility: wgpu.ShaderStageVertex,
				Buffer: wgpu.BufferBindingLayout{
					Type: wgpu.BufferBindingTypeReadOnlyStorage,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create bind group layout: %w", err)
	}

	pipelineLayout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "Corridor Pipeline Layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{b.bindGroupLayout},
	})
	if err != nil {
		return err
	}
	defer pipelineLayout.Release()

	b.pipeline, err = b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "Corridor Render Pipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: "vs_main",
			Buffers: []wgpu.VertexBufferLayout{
				{
					ArrayStride: VertexSize,
					StepMode:    wgpu.VertexStepModeVertex,
					Attributes: []wgpu.VertexAttribute{
						{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
						{Format: wgpu.VertexFormatFloat32x2, Offset: 12, ShaderLocation: 1},
					},
				},
			},
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{
				{
					Format:    *b.surfaceFormat,
					WriteMask: wgpu.ColorWriteMaskAll,
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{
			Count: uint32(b.sampleCount),
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            wgpu.TextureFormatDepth24Plus,
			DepthWriteEnabled: true,
			DepthCompare:      wgpu.CompareFunctionLess,
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create render pipeline: %w", err)
	}

	vertices, indices := BoxMesh()
	if b.vertexBuffer, err = b.createBuffer("Box Vertex Buffer", marshalVertices(vertices), wgpu.BufferUsageVertex); err != nil {
		return err
	}
	if b.indexBuffer, err = b.createBuffer("Box Index Buffer", marshalIndices(indices), wgpu.BufferUsageIndex); err != nil {
		return err
	}
	b.indexCount = uint32(len(indices))

	b.globalsBuffer, err = b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Globals Uniform Buffer",
		Size:  GlobalsSize,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return err
	}

	return b.growInstances(minInstanceCapacity)
}

func (b *wgpuRendererBackendImpl) InitNoise(tex *style.NoiseTexture) error {
	if tex == nil {
		return errors.New("noise texture is nil")
	}
	staging := tex.Staging

	texture, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:     tex.Name + " Noise Texture",
		Usage:     wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension: wgpu.TextureDimension2D,
		Size: wgpu.Extent3D{
			Width:              staging.Width,
			Height:             staging.Height,
			DepthOrArrayLayers: 1,
		},
		Format:        wgpu.TextureFormatRGBA8Unorm,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return err
	}

	b.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  texture,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		staging.Pixels,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  staging.Width * 4,
			RowsPerImage: staging.Height,
		},
		&wgpu.Extent3D{
			Width:              staging.Width,
			Height:             staging.Height,
			DepthOrArrayLayers: 1,
		},
	)

	view, err := texture.CreateView(nil)
	if err != nil {
		texture.Release()
		return err
	}

	s := tex.Sampler
	sampler, err := b.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         tex.Name + " Noise Sampler",
		AddressModeU:  common.Coalesce(s.AddressModeU, wgpu.AddressModeRepeat),
		AddressModeV:  common.Coalesce(s.AddressModeV, wgpu.AddressModeRepeat),
		AddressModeW:  common.Coalesce(s.AddressModeW, wgpu.AddressModeRepeat),
		MagFilter:     common.Coalesce(s.MagFilter, wgpu.FilterModeNearest),
		MinFilter:     common.Coalesce(s.MinFilter, wgpu.FilterModeNearest),
		MipmapFilter:  common.Coalesce(s.MipmapFilter, wgpu.MipmapFilterModeNearest),
		LodMinClamp:   0,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	})
	if err != nil {
		view.Release()
		texture.Release()
		return err
	}

	b.releaseNoise()
	b.noiseTexture, b.noiseView, b.noiseSampler = texture, view, sampler
	return b.rebuildBindGroup()
}

func (b *wgpuRendererBackendImpl) WriteGlobals(data []byte) {
	if b.globalsBuffer == nil {
		return
	}
	b.queue.WriteBuffer(b.globalsBuffer, 0, data)
}

func (b *wgpuRendererBackendImpl) WriteInstances(data []byte) error {
	count := len(data) / style.ObjectParamsSize
	if count > b.instanceCapacity {
		capacity := max(b.instanceCapacity, minInstanceCapacity)
		for capacity < count {
			capacity *= 2
		}
		if err := b.growInstances(capacity); err != nil {
			return err
		}
	}
	if len(data) > 0 {
		b.queue.WriteBuffer(b.instanceBuffer, 0, data)
	}
	return nil
}

func (b *wgpuRendererBackendImpl) DrawFrame(instanceCount int) error {
	if b.pipeline == nil || b.bindGroup == nil {
		return errors.New("pipeline not initialized")
	}

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return err
	}
	defer surfaceTexture.Release()

	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		return err
	}
	defer view.Release()

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		return err
	}
	defer encoder.Release()

	// With MSAA the swapchain view is the ResolveTarget, otherwise it is drawn into directly.
	if b.sampleCount > 1 {
		b.renderPassDescriptor.ColorAttachments[0].ResolveTarget = view
	} else {
		b.renderPassDescriptor.ColorAttachments[0].View = view
	}

	pass := encoder.BeginRenderPass(b.renderPassDescriptor)
	if instanceCount > 0 {
		pass.SetPipeline(b.pipeline)
		pass.SetBindGroup(0, b.bindGroup, nil)
		pass.SetVertexBuffer(0, b.vertexBuffer, 0, wgpu.WholeSize)
		pass.SetIndexBuffer(b.indexBuffer, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
		pass.DrawIndexed(b.indexCount, uint32(instanceCount), 0, 0, 0)
	}
	pass.End()

	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		return err
	}
	defer commandBuffer.Release()

	b.queue.Submit(commandBuffer)
	b.surface.Present()
	return nil
}

func (b *wgpuRendererBackendImpl) Release() {
	b.releaseAttachments()
	b.releaseNoise()
	for _, buf := range []*wgpu.Buffer{b.vertexBuffer, b.indexBuffer, b.globalsBuffer, b.instanceBuffer} {
		if buf != nil {
			buf.Release()
		}
	}
	b.vertexBuffer, b.indexBuffer, b.globalsBuffer, b.instanceBuffer = nil, nil, nil, nil
	if b.bindGroup != nil {
		b.bindGroup.Release()
		b.bindGroup = nil
	}
	if b.bindGroupLayout != nil {
		b.bindGroupLayout.Release()
		b.bindGroupLayout = nil
	}
	if b.pipeline != nil {
		b.pipeline.Release()
		b.pipeline = nil
	}
	b.queue = nil
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.surface != nil {
		b.surface.Release()
		b.surface = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
}

func (b *wgpuRendererBackendImpl) createBuffer(label string, data []byte, usage wgpu.BufferUsage) (*wgpu.Buffer, error) {
	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  uint64(len(data)),
		Usage: usage | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, err
	}
	b.queue.WriteBuffer(buf, 0, data)
	return buf, nil
}

// growInstances replaces the instance storage buffer with one holding capacity records.
// The bind group references the buffer, so it is rebuilt as well.
func (b *wgpuRendererBackendImpl) growInstances(capacity int) error {
	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Instance Storage Buffer",
		Size:  uint64(capacity * style.ObjectParamsSize),
		Usage: wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("grow instance buffer to %d: %w", capacity, err)
	}
	if b.instanceBuffer != nil {
		b.instanceBuffer.Release()
	}
	b.instanceBuffer = buf
	b.instanceCapacity = capacity
	return b.rebuildBindGroup()
}

// rebuildBindGroup is a no-op until both the instance buffer and the noise resources exist.
func (b *wgpuRendererBackendImpl) rebuildBindGroup() error {
	if b.bindGroupLayout == nil || b.globalsBuffer == nil || b.instanceBuffer == nil || b.noiseView == nil {
		return nil
	}

	bindGroup, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Corridor Bind Group",
		Layout: b.bindGroupLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: b.globalsBuffer, Offset: 0, Size: wgpu.WholeSize},
			{Binding: 1, TextureView: b.noiseView},
			{Binding: 2, Sampler: b.noiseSampler},
			{Binding: 3, Buffer: b.instanceBuffer, Offset: 0, Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		return fmt.Errorf("create bind group: %w", err)
	}
	if b.bindGroup != nil {
		b.bindGroup.Release()
	}
	b.bindGroup = bindGroup
	return nil
}

func (b *wgpuRendererBackendImpl) releaseAttachments() {
	if b.msaaTextureView != nil {
		b.msaaTextureView.Release()
		b.msaaTextureView = nil
	}
	if b.msaaTexture != nil {
		b.msaaTexture.Release()
		b.msaaTexture = nil
	}
	if b.depthTextureView != nil {
		b.depthTextureView.Release()
		b.depthTextureView = nil
	}
	if b.depthTexture != nil {
		b.depthTexture.Release()
		b.depthTexture = nil
	}
}

func (b *wgpuRendererBackendImpl) releaseNoise() {
	if b.noiseSampler != nil {
		b.noiseSampler.Release()
		b.noiseSampler = nil
	}
	if b.noiseView != nil {
		b.noiseView.Release()
		b.noiseView = nil
	}
	if b.noiseTexture != nil {
		b.noiseTexture.Release()
		b.noiseTexture = nil
	}
}
