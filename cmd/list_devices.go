package cmd

import (
	"bytes"
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
	"github.com/vegatrace/vega/denoiser/opencl/device"
)

// List the opencl devices available to the denoising accelerator.
func ListDevices(ctx *cli.Context) error {
	setupLogging(ctx)

	platforms, err := device.GetPlatformInfo()
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Platform", "Device", "Type", "GFlops"})
	for _, platformInfo := range platforms {
		for _, dev := range platformInfo.Devices {
			table.Append([]string{
				platformInfo.Name,
				dev.Name,
				dev.Type.String(),
				fmt.Sprintf("%d", dev.Speed),
			})
		}
	}
	table.Render()

	logger.Noticef("system provides %d opencl platform(s):\n%s", len(platforms), buf.String())
	return nil
}
