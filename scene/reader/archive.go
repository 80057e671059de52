package reader

import (
	"encoding/gob"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/vegatrace/vega/asset"
	"github.com/vegatrace/vega/log"
	"github.com/vegatrace/vega/scene"
)

type compiledSceneReader struct {
	logger log.Logger
}

// Create a reader for pre-compiled zstd scene archives.
func newCompiledReader() *compiledSceneReader {
	return &compiledSceneReader{
		logger: log.New("compiledSceneReader"),
	}
}

// Read a compiled scene from a zstd compressed archive.
func (r *compiledSceneReader) Read(res *asset.Resource) (*scene.Scene, error) {
	r.logger.Noticef("parsing compiled scene from %s", res.Path())
	start := time.Now()

	zr, err := zstd.NewReader(res)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	var sc scene.Scene
	if err = gob.NewDecoder(zr).Decode(&sc); err != nil {
		return nil, err
	}

	if err = sc.Valid(); err != nil {
		return nil, err
	}
	sc.Camera.Update()

	r.logger.Noticef("parsed compiled scene in %d ms", time.Since(start).Nanoseconds()/1e6)
	return &sc, nil
}
