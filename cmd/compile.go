package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
	"github.com/vegatrace/vega/scene"
	"github.com/vegatrace/vega/scene/reader"
	"github.com/vegatrace/vega/scene/writer"
)

// Compile scene to binary format.
func CompileScene(ctx *cli.Context) error {
	setupLogging(ctx)

	if ctx.NArg() == 0 {
		return errors.New("missing scene file argument")
	}

	for idx := 0; idx < ctx.NArg(); idx++ {
		sceneFile := ctx.Args().Get(idx)
		if !strings.HasSuffix(sceneFile, ".obj") {
			logger.Warningf("skipping unsupported file %s", sceneFile)
			continue
		}

		logger.Noticef("parsing and compiling scene: %s", sceneFile)
		sc, err := reader.ReadScene(sceneFile)
		if err != nil {
			return err
		}

		displaySceneInfo(sc)

		outFile := strings.Replace(sceneFile, ".obj", ".vega", -1)
		if err = writer.WriteScene(sc, outFile); err != nil {
			return err
		}
	}

	return nil
}

// Display compiled scene info.
func ShowSceneInfo(ctx *cli.Context) error {
	setupLogging(ctx)

	if ctx.NArg() != 1 {
		return errors.New("missing compiled scene file argument")
	}

	sc, err := reader.ReadScene(ctx.Args().First())
	if err != nil {
		return err
	}

	displaySceneInfo(sc)
	return nil
}

func displaySceneInfo(sc *scene.Scene) {
	envMap := "none"
	if sc.Env != nil {
		envMap = fmt.Sprintf("%dx%d", sc.Env.Width, sc.Env.Height)
	}

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Property", "Value"})
	table.Append([]string{"Triangles", fmt.Sprintf("%d", len(sc.Triangles))})
	table.Append([]string{"BVH nodes", fmt.Sprintf("%d", len(sc.Nodes))})
	table.Append([]string{"Materials", fmt.Sprintf("%d", len(sc.Materials))})
	table.Append([]string{"Instances", fmt.Sprintf("%d", len(sc.InstanceNames))})
	table.Append([]string{"Environment map", envMap})
	table.Render()

	logger.Noticef("scene information:\n%s", buf.String())
}
