package core

import (
	"bytes"
	"log"
	"os/exec"
	"sync"
)

var (
	gpuOnce sync.Once
	gpuOK   bool
)

// HasGPU reports whether the host exposes a usable GPU. The probe runs once
// at first use and the result is cached for the process lifetime.
func HasGPU() bool {
	gpuOnce.Do(func() {
		gpuOK = probeGPU()
		if gpuOK {
			log.Printf("GPU detected, GPU-only models enabled")
		} else {
			log.Printf("no GPU detected, GPU-only models disabled")
		}
	})
	return gpuOK
}

func probeGPU() bool {
	// NVIDIA first, then ROCm. A tool that exists but errors (no device,
	// driver missing) counts as no GPU.
	for _, tool := range []string{"nvidia-smi", "rocm-smi"} {
		if _, err := exec.LookPath(tool); err != nil {
			continue
		}
		cmd := exec.Command(tool, "-L")
		var out bytes.Buffer
		cmd.Stdout = &out
		cmd.Stderr = nil
		if err := cmd.Run(); err != nil {
			continue
		}
		if out.Len() > 0 {
			return true
		}
	}
	return false
}
