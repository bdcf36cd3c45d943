package vision

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"gocv.io/x/gocv"

	"github.com/SameriteRL/Face-Recognizer/pkg/logging"
)

// Backend selects the OpenCV DNN execution backend for the native models.
type Backend string

const (
	// BackendAuto picks the best available backend at startup.
	BackendAuto Backend = "auto"

	// BackendCPU runs inference on the CPU (always available).
	BackendCPU Backend = "cpu"

	// BackendCUDA runs inference on an NVIDIA GPU through the CUDA DNN
	// backend. Requires an OpenCV build with CUDA support.
	BackendCUDA Backend = "cuda"

	// BackendOpenVINO runs inference through Intel OpenVINO. Requires an
	// OpenCV build with the OpenVINO inference engine.
	BackendOpenVINO Backend = "openvino"
)

// ParseBackend validates a backend name from the configuration.
func ParseBackend(name string) (Backend, error) {
	switch Backend(name) {
	case BackendAuto, BackendCPU, BackendCUDA, BackendOpenVINO:
		return Backend(name), nil
	case "":
		return BackendAuto, nil
	}
	return "", fmt.Errorf("unknown inference backend %q", name)
}

// Resolve maps the backend to the OpenCV DNN backend and target identifiers
// passed to the model constructors. BackendAuto probes the machine and falls
// back to the CPU when no accelerator is usable.
func (b Backend) Resolve() (backendID, targetID int) {
	resolved := b
	if resolved == BackendAuto {
		switch {
		case cudaAvailable():
			resolved = BackendCUDA
		case openVINOAvailable():
			resolved = BackendOpenVINO
		default:
			resolved = BackendCPU
		}
		logging.Debugf("inference backend auto-selected: %s", resolved)
	}

	switch resolved {
	case BackendCUDA:
		return int(gocv.NetBackendCUDA), int(gocv.NetTargetCUDA)
	case BackendOpenVINO:
		return int(gocv.NetBackendOpenVINO), int(gocv.NetTargetCPU)
	default:
		return int(gocv.NetBackendDefault), int(gocv.NetTargetCPU)
	}
}

// cudaAvailable reports whether an NVIDIA GPU with a working driver is
// present.
func cudaAvailable() bool {
	out, err := exec.Command("nvidia-smi", "--query-gpu=name", "--format=csv,noheader").Output()
	if err != nil {
		return false
	}
	return strings.TrimSpace(string(out)) != ""
}

// openVINOAvailable reports whether an OpenVINO installation is present.
func openVINOAvailable() bool {
	if os.Getenv("INTEL_OPENVINO_DIR") != "" {
		return true
	}
	for _, p := range []string{
		"/opt/intel/openvino",
		"/opt/intel/openvino_2024",
		"/opt/intel/openvino_2023",
	} {
		if _, err := os.Stat(p); err == nil {
			return true
		}
	}
	return false
}
