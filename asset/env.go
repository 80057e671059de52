package asset

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	oiio "github.com/achilleasa/openimageigo"

	"github.com/vegatrace/vega/scene"
)

// LoadEnvMap reads a lat-long environment map image from a resource and
// converts it into the packed rgb float32 layout used by the tracer.
func LoadEnvMap(res *Resource) (*scene.EnvMap, error) {
	var pathToFile string

	// If this is a remote resource save it to a temp file so that oiio can load it
	if res.IsRemote() {
		pathToFile = os.TempDir() + "/" + filepath.Base(res.RemotePath())
		f, err := os.Create(pathToFile)
		if err != nil {
			return nil, err
		}
		defer os.Remove(pathToFile)
		_, err = io.Copy(f, res)
		f.Close()
		if err != nil {
			return nil, err
		}
	} else {
		pathToFile = res.Path()
	}

	input, err := oiio.OpenImageInput(pathToFile)
	if err != nil {
		return nil, err
	}
	defer input.Close()

	spec := input.Spec()
	numChannels := spec.NumChannels()
	if numChannels != 1 && numChannels != 3 && numChannels != 4 {
		return nil, fmt.Errorf("envmap: unsupported channel count %d while loading %s", numChannels, res.Path())
	}
	if spec.Depth() != 1 {
		return nil, fmt.Errorf("envmap: unsupported depth %d while loading %s", spec.Depth(), res.Path())
	}

	imgData, err := input.ReadImageFormat(oiio.TypeFloat, nil)
	if err != nil {
		return nil, fmt.Errorf("envmap: could not read data from %s: %s", res.Path(), err.Error())
	}

	srcData, valid := imgData.([]float32)
	if !valid {
		return nil, fmt.Errorf("envmap: unexpected pixel data type while loading %s", res.Path())
	}

	env := &scene.EnvMap{
		Width:  uint32(spec.Width()),
		Height: uint32(spec.Height()),
		Data:   make([]float32, spec.Width()*spec.Height()*3),
	}

	// Repack the source channels as rgb triplets. Single channel images
	// are broadcast to all three channels.
	wOffset := 0
	for rOffset := 0; rOffset < len(srcData); rOffset += numChannels {
		switch numChannels {
		case 1:
			env.Data[wOffset] = srcData[rOffset]
			env.Data[wOffset+1] = srcData[rOffset]
			env.Data[wOffset+2] = srcData[rOffset]
		default:
			env.Data[wOffset] = srcData[rOffset]
			env.Data[wOffset+1] = srcData[rOffset+1]
			env.Data[wOffset+2] = srcData[rOffset+2]
		}
		wOffset += 3
	}

	return env, nil
}
