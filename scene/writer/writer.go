package writer

import (
	"encoding/gob"
	"os"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/vegatrace/vega/log"
	"github.com/vegatrace/vega/scene"
)

type compiledSceneWriter struct {
	logger    log.Logger
	sceneFile string
}

// Create a writer that serializes compiled scenes into zstd compressed
// archives.
func newCompiledWriter(sceneFile string) *compiledSceneWriter {
	return &compiledSceneWriter{
		logger:    log.New("compiledSceneWriter"),
		sceneFile: sceneFile,
	}
}

// Write a compiled scene definition to a zstd archive.
func (w *compiledSceneWriter) Write(sc *scene.Scene) error {
	w.logger.Noticef("writing compressed scene to %s", w.sceneFile)
	start := time.Now()

	outFile, err := os.Create(w.sceneFile)
	if err != nil {
		return err
	}
	defer outFile.Close()

	zw, err := zstd.NewWriter(outFile)
	if err != nil {
		return err
	}

	if err = gob.NewEncoder(zw).Encode(sc); err != nil {
		zw.Close()
		return err
	}
	if err = zw.Close(); err != nil {
		return err
	}

	w.logger.Noticef("compressed scene in %d ms", time.Since(start).Nanoseconds()/1e6)
	return nil
}

// WriteScene serializes a compiled scene to the given path.
func WriteScene(sc *scene.Scene, pathToFile string) error {
	if err := sc.Valid(); err != nil {
		return err
	}
	return newCompiledWriter(pathToFile).Write(sc)
}
