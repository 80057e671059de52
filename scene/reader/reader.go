package reader

import (
	"fmt"
	"strings"

	"github.com/vegatrace/vega/asset"
	"github.com/vegatrace/vega/scene"
)

// The SceneReader interface is implemented by all scene readers.
type SceneReader interface {
	// Read scene definition from a resource.
	Read(res *asset.Resource) (*scene.Scene, error)
}

// ReadScene parses a scene definition from the given path. The reader
// implementation is selected based on the file extension: wavefront object
// files are parsed and compiled on the fly while pre-compiled zstd archives
// are deserialized directly.
func ReadScene(pathToFile string) (*scene.Scene, error) {
	res, err := asset.NewResource(pathToFile, nil)
	if err != nil {
		return nil, err
	}
	defer res.Close()

	var reader SceneReader
	switch {
	case strings.HasSuffix(pathToFile, ".obj"):
		reader = newWavefrontReader()
	case strings.HasSuffix(pathToFile, ".vega"):
		reader = newCompiledReader()
	default:
		return nil, fmt.Errorf("reader: no reader available for parsing scene file %s", pathToFile)
	}

	return reader.Read(res)
}
