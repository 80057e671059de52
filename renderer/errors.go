package renderer

import "errors"

var (
	ErrSceneNotDefined  = errors.New("renderer: no scene defined")
	ErrCameraNotDefined = errors.New("renderer: no camera defined")
	ErrTargetAlloc      = errors.New("renderer: could not allocate render targets")
	ErrRendererClosed   = errors.New("renderer: renderer has been closed")
)
