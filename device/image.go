package device

// Pixel storage formats for queue-owned images.
type PixelFmt uint8

const (
	FmtRGBA8 PixelFmt = iota
	FmtRGBA32F
)

func (f PixelFmt) String() string {
	switch f {
	case FmtRGBA8:
		return "RGBA8"
	case FmtRGBA32F:
		return "RGBA32F"
	}
	panic("device: unsupported pixel format")
}

// Largest supported image extent per dimension.
const maxImageDim = 16384

// A 2D image owned by the rendering timeline. Float formats back the
// path tracer's accumulation and guide targets; the byte format backs
// the tone-mapped display target.
type Image struct {
	Fmt PixelFmt
	W   uint32
	H   uint32

	// Exactly one of the two slices is allocated, depending on Fmt.
	F32 []float32
	U8  []uint8
}

// Allocate a new image. Fails for degenerate or oversized dimensions;
// the caller must treat a failed allocation as fatal for whatever
// resize or setup operation triggered it.
func NewImage(fmt PixelFmt, w, h uint32) (*Image, error) {
	if w == 0 || h == 0 || w > maxImageDim || h > maxImageDim {
		return nil, ErrInvalidImageSize
	}

	img := &Image{Fmt: fmt, W: w, H: h}
	switch fmt {
	case FmtRGBA8:
		img.U8 = make([]uint8, w*h*4)
	case FmtRGBA32F:
		img.F32 = make([]float32, w*h*4)
	}
	return img, nil
}

// Zero all pixel data.
func (img *Image) Clear() {
	for i := range img.F32 {
		img.F32[i] = 0
	}
	for i := range img.U8 {
		img.U8[i] = 0
	}
}

// A linear buffer used for hand-offs between the rendering timeline
// and an external accelerator.
type Buffer struct {
	Name string
	Data []float32
}

// Allocate a new hand-off buffer holding size float32 elements.
func NewBuffer(name string, size int) *Buffer {
	return &Buffer{Name: name, Data: make([]float32, size)}
}
