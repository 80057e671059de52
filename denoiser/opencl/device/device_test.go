package device

import "testing"

const testProgram = `
__kernel void square(__global float *data) {
	int idx = get_global_id(0);
	data[idx] = data[idx] * data[idx];
}
`

func TestSelectDevices(t *testing.T) {
	devList, err := SelectDevices(AllDevices, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(devList) == 0 {
		t.Skip("no opencl devices available; skipping")
	}
}

func TestDeviceInit(t *testing.T) {
	devList, err := SelectDevices(AllDevices, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(devList) == 0 {
		t.Skip("no opencl devices available; skipping")
	}

	dev := devList[0]
	if err = dev.Init(testProgram); err != nil {
		t.Fatalf("error initializing device '%s': %v", dev.Name, err)
	}
	defer dev.Close()

	if _, err = dev.Kernel("square"); err != nil {
		t.Fatal(err)
	}

	if _, err = dev.Kernel("undefined-kernel"); err == nil {
		t.Fatal("expected to get an error while trying to load an unknown kernel")
	}
}
