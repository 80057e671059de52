package compiler

import (
	"time"

	"github.com/vegatrace/vega/log"
	"github.com/vegatrace/vega/scene"
	"github.com/vegatrace/vega/types"
)

const (
	minTrianglesPerLeaf = 10
)

// RawScene is the intermediate representation emitted by the scene readers.
// It groups triangles per render node and carries the unprocessed material
// and camera definitions.
type RawScene struct {
	Camera *scene.Camera

	Materials []scene.Material

	// One triangle list per render node. The slice index becomes the
	// instance identifier for all triangles in the list.
	Nodes []RawNode

	BgColor types.Vec3
	Env     *scene.EnvMap
}

// RawNode is a named group of triangles sharing an instance identifier.
type RawNode struct {
	Name      string
	Triangles []scene.Triangle
}

type sceneCompiler struct {
	rawScene *RawScene
	compiled *scene.Scene
	logger   log.Logger
}

// Compile a scene representation emitted by a scene reader into the packed
// format used by the tracer: a flat triangle list partitioned by a BVH so
// that each leaf references a contiguous triangle range.
func Compile(rawScene *RawScene) (*scene.Scene, error) {
	compiler := &sceneCompiler{
		rawScene: rawScene,
		compiled: &scene.Scene{},
		logger:   log.New("scene compiler"),
	}

	start := time.Now()
	compiler.logger.Noticef("compiling scene")

	compiler.assignInstanceIDs()
	compiler.partitionGeometry()
	compiler.setupCamera()

	compiler.compiled.Materials = rawScene.Materials
	compiler.compiled.BgColor = rawScene.BgColor
	compiler.compiled.Env = rawScene.Env

	if err := compiler.compiled.Valid(); err != nil {
		return nil, err
	}

	compiler.logger.Noticef("compiled scene in %d ms", time.Since(start).Nanoseconds()/1e6)
	return compiler.compiled, nil
}

// Stamp each triangle with the identifier of the render node that owns it
// and record the node names for pick result reporting.
func (sc *sceneCompiler) assignInstanceIDs() {
	names := make([]string, len(sc.rawScene.Nodes))
	for nodeIndex, node := range sc.rawScene.Nodes {
		names[nodeIndex] = node.Name
		for triIndex := range node.Triangles {
			node.Triangles[triIndex].InstanceID = uint32(nodeIndex)
		}
	}
	sc.compiled.InstanceNames = names
}

// Build a BVH over all scene triangles. The leaf callback reorders the
// triangles into a flat list so that each leaf references a contiguous
// range.
func (sc *sceneCompiler) partitionGeometry() {
	start := time.Now()
	sc.logger.Notice("partitioning geometry")

	workList := make([]BoundedVolume, 0)
	for nodeIndex := range sc.rawScene.Nodes {
		node := &sc.rawScene.Nodes[nodeIndex]
		for triIndex := range node.Triangles {
			workList = append(workList, &node.Triangles[triIndex])
		}
	}

	packed := make([]scene.Triangle, 0, len(workList))
	sc.compiled.Nodes = BuildBVH(workList, minTrianglesPerLeaf, func(leaf *scene.BvhNode, items []BoundedVolume) {
		leaf.SetTriangles(uint32(len(packed)), uint32(len(items)))
		for _, item := range items {
			packed = append(packed, *item.(*scene.Triangle))
		}
	})
	sc.compiled.Triangles = packed

	sc.logger.Noticef("partitioned geometry in %d ms", time.Since(start).Nanoseconds()/1e6)
}

// Initialize the scene camera, falling back to a default camera when the
// reader did not define one.
func (sc *sceneCompiler) setupCamera() {
	camera := sc.rawScene.Camera
	if camera == nil {
		camera = scene.NewCamera(45)
	}
	camera.Update()
	sc.compiled.Camera = camera
}
