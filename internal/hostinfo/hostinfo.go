// Package hostinfo describes the machine being maintained for headers and
// the startup log line.
package hostinfo

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
)

// Info is a snapshot of the host.
type Info struct {
	Hostname        string
	Platform        string
	PlatformVersion string
	KernelVersion   string
	Uptime          uint64
	// RootFreeBytes is the free space on /, zero when unknown.
	RootFreeBytes   uint64
	RootUsedPercent float64
}

// Collect gathers what gopsutil can report. Fields it cannot read stay
// empty; Collect never fails.
func Collect() Info {
	info := Info{Platform: runtime.GOOS}
	if hostInfo, err := host.Info(); err == nil {
		info.Hostname = hostInfo.Hostname
		if hostInfo.Platform != "" {
			info.Platform = hostInfo.Platform
		}
		info.PlatformVersion = hostInfo.PlatformVersion
		info.KernelVersion = hostInfo.KernelVersion
		info.Uptime = hostInfo.Uptime
	}
	if usage, err := disk.Usage("/"); err == nil {
		info.RootFreeBytes = usage.Free
		info.RootUsedPercent = usage.UsedPercent
	}
	return info
}

// Describe renders "ubuntu 24.04 (kernel 6.8.0-31-generic)".
func (i Info) Describe() string {
	name := strings.TrimSpace(i.Platform + " " + i.PlatformVersion)
	if name == "" {
		name = runtime.GOOS
	}
	if i.KernelVersion != "" {
		name += fmt.Sprintf(" (kernel %s)", i.KernelVersion)
	}
	return name
}

// DiskSummary renders root filesystem usage, or "" when unknown.
func (i Info) DiskSummary() string {
	if i.RootFreeBytes == 0 {
		return ""
	}
	return fmt.Sprintf("/ %.0f%% used, %s free", i.RootUsedPercent, HumanBytes(i.RootFreeBytes))
}

// HumanBytes formats n using binary units.
func HumanBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
