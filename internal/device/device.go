package device

import (
	"fmt"
	"os"
	"strings"

	"github.com/shirou/gopsutil/v4/mem"
)

// Kind identifies the compute device class.
type Kind string

const (
	KindCPU  Kind = "cpu"
	KindCUDA Kind = "cuda"
)

// Device is a resolved compute target for model loading.
type Device struct {
	Kind    Kind
	Ordinal int
	// TotalMemMB is the device memory capacity in MB. For CPU devices this is
	// host RAM; for CUDA devices it may be zero when the driver does not
	// expose it through the probe.
	TotalMemMB uint64
}

func (d Device) String() string {
	if d.Kind == KindCUDA {
		return fmt.Sprintf("cuda:%d", d.Ordinal)
	}
	return string(KindCPU)
}

// IsCPU reports whether the device is the host CPU.
func (d Device) IsCPU() bool { return d.Kind == KindCPU }

// Best probes for the best available device. With forceCPU set the probe
// skips accelerator detection entirely and returns the host CPU.
func Best(forceCPU bool) (Device, error) {
	if forceCPU {
		return cpuDevice()
	}
	if ord, ok := cudaOrdinal(); ok {
		return Device{Kind: KindCUDA, Ordinal: ord}, nil
	}
	return cpuDevice()
}

func cpuDevice() (Device, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return Device{}, fmt.Errorf("probe host memory: %w", err)
	}
	return Device{Kind: KindCPU, TotalMemMB: vm.Total / (1024 * 1024)}, nil
}

// cudaOrdinal reports the first visible CUDA device, honoring
// CUDA_VISIBLE_DEVICES. Detection is presence-based (driver procfs entry);
// capability queries belong to the loader backend.
func cudaOrdinal() (int, bool) {
	if v, set := os.LookupEnv("CUDA_VISIBLE_DEVICES"); set {
		v = strings.TrimSpace(v)
		if v == "" || v == "-1" {
			return 0, false
		}
		first := strings.Split(v, ",")[0]
		var ord int
		if _, err := fmt.Sscanf(strings.TrimSpace(first), "%d", &ord); err == nil && ord >= 0 {
			if nvidiaDriverPresent() {
				return ord, true
			}
		}
		return 0, false
	}
	if nvidiaDriverPresent() {
		return 0, true
	}
	return 0, false
}

func nvidiaDriverPresent() bool {
	_, err := os.Stat("/proc/driver/nvidia/version")
	return err == nil
}
