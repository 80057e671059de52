package renderer

import (
	"fmt"

	"github.com/vegatrace/vega/device"
)

// The roles a frame render target can serve.
type TargetRole int

const (
	// Tonemapped 8-bit image presented to the user.
	RoleDisplay TargetRole = iota

	// HDR accumulation target written by the trace stage.
	RoleRawResult

	// Guide channels for the denoiser.
	RoleAlbedo
	RoleNormal

	// Output written back from the denoiser.
	RoleDenoised

	numTargetRoles
)

func (r TargetRole) String() string {
	switch r {
	case RoleDisplay:
		return "display"
	case RoleRawResult:
		return "raw-result"
	case RoleAlbedo:
		return "albedo"
	case RoleNormal:
		return "normal"
	case RoleDenoised:
		return "denoised"
	}
	return fmt.Sprintf("role-%d", int(r))
}

// TargetSet owns the per-frame render targets plus the depth target. All
// targets always share the same dimensions; Resize replaces the whole set
// atomically or not at all.
type TargetSet struct {
	w, h uint32

	images [numTargetRoles]*device.Image
	depth  *device.Image
}

// Allocate a target set for the given dimensions.
func NewTargetSet(w, h uint32) (*TargetSet, error) {
	ts := &TargetSet{}
	if err := ts.Resize(w, h); err != nil {
		return nil, err
	}
	return ts, nil
}

// Resize replaces every target with a freshly allocated one of the new
// dimensions. On allocation failure the existing targets are left intact
// so the caller can keep presenting at the old size.
func (ts *TargetSet) Resize(w, h uint32) error {
	var images [numTargetRoles]*device.Image
	var err error

	for role := TargetRole(0); role < numTargetRoles; role++ {
		pixFmt := device.FmtRGBA32F
		if role == RoleDisplay {
			pixFmt = device.FmtRGBA8
		}
		if images[role], err = device.NewImage(pixFmt, w, h); err != nil {
			return fmt.Errorf("%w: %s target: %v", ErrTargetAlloc, role, err)
		}
	}

	depth, err := device.NewImage(device.FmtRGBA32F, w, h)
	if err != nil {
		return fmt.Errorf("%w: depth target: %v", ErrTargetAlloc, err)
	}

	ts.images = images
	ts.depth = depth
	ts.w, ts.h = w, h
	return nil
}

// Get the image serving the given role.
func (ts *TargetSet) Get(role TargetRole) *device.Image {
	return ts.images[role]
}

// Depth returns the depth target.
func (ts *TargetSet) Depth() *device.Image {
	return ts.depth
}

// Size returns the current target dimensions.
func (ts *TargetSet) Size() (w, h uint32) {
	return ts.w, ts.h
}

// Clear zeroes the pixel data of every target.
func (ts *TargetSet) Clear() {
	for _, img := range ts.images {
		img.Clear()
	}
	ts.depth.Clear()
}
