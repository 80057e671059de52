package renderer

import (
	"errors"
	"testing"

	"github.com/vegatrace/vega/device"
)

func TestTargetSetResize(t *testing.T) {
	ts, err := NewTargetSet(16, 8)
	if err != nil {
		t.Fatal(err)
	}

	w, h := ts.Size()
	if w != 16 || h != 8 {
		t.Fatalf("expected size 16x8; got %dx%d", w, h)
	}

	for role := TargetRole(0); role < numTargetRoles; role++ {
		img := ts.Get(role)
		if img == nil {
			t.Fatalf("expected image for role %q", role)
		}
		if img.W != 16 || img.H != 8 {
			t.Fatalf("[role %q] expected image size 16x8; got %dx%d", role, img.W, img.H)
		}

		expFmt := device.FmtRGBA32F
		if role == RoleDisplay {
			expFmt = device.FmtRGBA8
		}
		if img.Fmt != expFmt {
			t.Fatalf("[role %q] expected pixel format %d; got %d", role, expFmt, img.Fmt)
		}
	}

	if depth := ts.Depth(); depth == nil || depth.W != 16 || depth.H != 8 {
		t.Fatal("expected a depth target matching the frame dimensions")
	}
}

func TestTargetSetResizeFailureKeepsTargets(t *testing.T) {
	ts, err := NewTargetSet(4, 4)
	if err != nil {
		t.Fatal(err)
	}

	// Oversized dimensions must fail without disturbing the current set.
	if err := ts.Resize(1<<20, 1<<20); !errors.Is(err, ErrTargetAlloc) {
		t.Fatalf("expected resize with oversized dimensions to fail with ErrTargetAlloc; got %v", err)
	}

	w, h := ts.Size()
	if w != 4 || h != 4 {
		t.Fatalf("expected targets to retain size 4x4 after a failed resize; got %dx%d", w, h)
	}
	if ts.Get(RoleDisplay) == nil {
		t.Fatal("expected display target to survive a failed resize")
	}
}
