package report

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/host"
	"github.com/shirou/gopsutil/mem"
	"github.com/shirou/gopsutil/process"
)

// SysInfo describes the machine a sweep ran on.
type SysInfo struct {
	Platform  string
	CPU       string
	Cores     int
	Memory    string
	GoVersion string
}

// CollectSysInfo gathers host details. Lookups that fail leave their
// field empty.
func CollectSysInfo() SysInfo {
	info := SysInfo{Cores: runtime.NumCPU(), GoVersion: runtime.Version()}
	if hostStat, err := host.Info(); err == nil {
		info.Platform = hostStat.Platform + " " + hostStat.PlatformVersion
	}
	if cpuStat, err := cpu.Info(); err == nil && len(cpuStat) > 0 {
		info.CPU = cpuStat[0].ModelName
	}
	if vmStat, err := mem.VirtualMemory(); err == nil {
		info.Memory = fmt.Sprintf("%d GB", vmStat.Total/1024/1024/1024)
	}
	return info
}

func (s SysInfo) String() string {
	return fmt.Sprintf("%s, %s (%d cores), %s, %s", s.Platform, s.CPU, s.Cores, s.Memory, s.GoVersion)
}

// ProcessCPUTime returns user plus system CPU time consumed by this
// process so far.
func ProcessCPUTime() (time.Duration, error) {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return 0, err
	}
	times, err := p.Times()
	if err != nil {
		return 0, err
	}
	return time.Duration((times.User + times.System) * float64(time.Second)), nil
}
