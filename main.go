package main

import (
	"os"

	"github.com/urfave/cli"
	"github.com/vegatrace/vega/cmd"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "vega"
	app.Usage = "render scenes using path tracing with accelerated denoising"
	app.Version = "0.0.1"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}

	renderFlags := []cli.Flag{
		cli.IntFlag{
			Name:  "width",
			Value: 1024,
			Usage: "frame width",
		},
		cli.IntFlag{
			Name:  "height",
			Value: 1024,
			Usage: "frame height",
		},
		cli.IntFlag{
			Name:  "spp",
			Value: 1,
			Usage: "samples per pixel per frame",
		},
		cli.IntFlag{
			Name:  "max-depth",
			Value: 5,
			Usage: "maximum path depth for indirect bounces",
		},
		cli.Float64Flag{
			Name:  "exposure",
			Value: 1.0,
			Usage: "exposure for tonemapping",
		},
		cli.Float64Flag{
			Name:  "env-rotation",
			Value: 0,
			Usage: "environment map rotation around the Y axis in radians",
		},
		cli.BoolFlag{
			Name:  "no-denoise",
			Usage: "disable the denoising accelerator",
		},
		cli.BoolFlag{
			Name:  "denoise-first-frame",
			Usage: "denoise the very first accumulated frame",
		},
		cli.IntFlag{
			Name:  "denoise-every",
			Value: 100,
			Usage: "denoise every N accumulated frames",
		},
		cli.Float64Flag{
			Name:  "denoise-blend",
			Value: 0,
			Usage: "blend factor between the filtered and unfiltered image",
		},
		cli.StringFlag{
			Name:  "device",
			Usage: "name filter for selecting the accelerator device",
		},
	}

	app.Commands = []cli.Command{
		{
			Name:  "compile",
			Usage: "compile text scene representation into a binary compressed format",
			Description: `
Parse a scene definition from a wavefront obj file, build a BVH tree to optimize
ray intersection tests and package scene elements in a renderer-friendly format.

The compiled scene data is then written to a compressed archive which can be
supplied as an argument to the render commands.`,
			ArgsUsage: "scene_file1.obj scene_file2.obj ...",
			Action:    cmd.CompileScene,
		},
		{
			Name:      "info",
			Usage:     "display information about a compiled scene",
			ArgsUsage: "scene_file.vega",
			Action:    cmd.ShowSceneInfo,
		},
		{
			Name:   "list-devices",
			Usage:  "list the opencl devices available to the denoising accelerator",
			Action: cmd.ListDevices,
		},
		{
			Name:      "render",
			Usage:     "render a still frame to a png file",
			ArgsUsage: "scene_file.obj|scene_file.vega",
			Flags: append(renderFlags,
				cli.IntFlag{
					Name:  "frames",
					Value: 100,
					Usage: "number of frames to accumulate; 0 uses the default limit",
				},
				cli.StringFlag{
					Name:  "out",
					Value: "frame.png",
					Usage: "png file to write the rendered frame to",
				},
			),
			Action: cmd.RenderFrame,
		},
		{
			Name:      "render-interactive",
			Usage:     "render and display the scene in an interactive opengl window",
			ArgsUsage: "scene_file.obj|scene_file.vega",
			Flags:     renderFlags,
			Action:    cmd.RenderInteractive,
		},
		{
			Name:      "debug",
			Usage:     "trace a single frame and dump the g-buffer channels to png files",
			ArgsUsage: "scene_file.obj|scene_file.vega",
			Flags: append(renderFlags,
				cli.StringFlag{
					Name:  "out",
					Value: "debug",
					Usage: "prefix for the dumped png files",
				},
			),
			Action: cmd.Debug,
		},
	}

	app.Run(os.Args)
}
