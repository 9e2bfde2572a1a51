// Package sysinfo reports process and runtime status for the status command and /info.
package sysinfo

import (
	"context"
	"math"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/load"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/sensors"

	"github.com/aretw0/wikicard/pkg/buildinfo"
)

var startedAt = time.Now()

// Memory holds formatted Go runtime memory figures.
type Memory struct {
	HeapAlloc string `json:"heap_alloc"`
	HeapSys   string `json:"heap_sys"`
	Sys       string `json:"sys"`
	NumGC     uint32 `json:"num_gc"`
}

// NotAvailable marks a host figure the platform does not report.
const NotAvailable = "N/A"

// HostCPU describes the host processor.
type HostCPU struct {
	Model string  `json:"model,omitempty"`
	Cores int     `json:"cores,omitempty"`
	MHz   float64 `json:"mhz,omitempty"`
	Load  string  `json:"load"`
	Load1 float64 `json:"load1"`
	Temp  string  `json:"temp"`
}

// HostMemory holds formatted host RAM figures.
type HostMemory struct {
	Total     string `json:"total"`
	Used      string `json:"used"`
	Free      string `json:"free"`
	Available string `json:"available"`
}

// Host is the machine the process runs on. Figures the platform refuses stay
// empty or NotAvailable.
type Host struct {
	Platform string     `json:"platform,omitempty"`
	Distro   string     `json:"distro,omitempty"`
	Release  string     `json:"release,omitempty"`
	Kernel   string     `json:"kernel,omitempty"`
	Uptime   string     `json:"uptime"`
	CPU      HostCPU    `json:"cpu"`
	Memory   HostMemory `json:"memory"`
}

// Status is a point-in-time snapshot of the running process and its host.
type Status struct {
	App        string    `json:"app"`
	Version    string    `json:"version"`
	Commit     string    `json:"commit"`
	GoVersion  string    `json:"go_version"`
	OS         string    `json:"os"`
	Arch       string    `json:"arch"`
	Hostname   string    `json:"hostname,omitempty"`
	CPUs       int       `json:"cpus"`
	Goroutines int       `json:"goroutines"`
	Memory     Memory    `json:"memory"`
	Host       Host      `json:"host"`
	StartedAt  time.Time `json:"started_at"`
	Uptime     string    `json:"uptime"`
}

// Collect gathers the current status. Host figures are best effort.
func Collect(ctx context.Context) Status {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	host, _ := os.Hostname()

	return Status{
		App:        buildinfo.Name,
		Version:    buildinfo.Version,
		Commit:     buildinfo.Commit,
		GoVersion:  runtime.Version(),
		OS:         runtime.GOOS,
		Arch:       runtime.GOARCH,
		Hostname:   host,
		CPUs:       runtime.NumCPU(),
		Goroutines: runtime.NumGoroutine(),
		Memory: Memory{
			HeapAlloc: FormatBytes(ms.HeapAlloc),
			HeapSys:   FormatBytes(ms.HeapSys),
			Sys:       FormatBytes(ms.Sys),
			NumGC:     ms.NumGC,
		},
		Host:      collectHost(ctx),
		StartedAt: startedAt.UTC(),
		Uptime:    FormatUptime(Uptime()),
	}
}

func collectHost(ctx context.Context) Host {
	h := Host{
		Uptime: NotAvailable,
		CPU:    HostCPU{Load: NotAvailable, Temp: NotAvailable},
		Memory: HostMemory{Total: NotAvailable, Used: NotAvailable, Free: NotAvailable, Available: NotAvailable},
	}

	if info, err := host.InfoWithContext(ctx); err == nil {
		h.Platform = info.OS
		h.Distro = info.Platform
		h.Release = info.PlatformVersion
		h.Kernel = info.KernelVersion
		h.Uptime = FormatUptime(time.Duration(info.Uptime) * time.Second)
	}

	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		h.Memory = HostMemory{
			Total:     FormatBytes(vm.Total),
			Used:      FormatBytes(vm.Used),
			Free:      FormatBytes(vm.Free),
			Available: FormatBytes(vm.Available),
		}
	}

	if infos, err := cpu.InfoWithContext(ctx); err == nil && len(infos) > 0 {
		h.CPU.Model = strings.TrimSpace(infos[0].ModelName)
		h.CPU.MHz = infos[0].Mhz
	}
	if cores, err := cpu.CountsWithContext(ctx, false); err == nil {
		h.CPU.Cores = cores
	}
	// Zero interval compares against the previous call instead of sleeping.
	if pct, err := cpu.PercentWithContext(ctx, 0, false); err == nil && len(pct) > 0 {
		h.CPU.Load = strconv.FormatFloat(pct[0], 'f', 2, 64)
	}
	if avg, err := load.AvgWithContext(ctx); err == nil {
		h.CPU.Load1 = avg.Load1
	}

	// Sensors may return readings alongside a partial-read warning.
	temps, _ := sensors.TemperaturesWithContext(ctx)
	if c, ok := CPUTemperature(temps); ok {
		h.CPU.Temp = strconv.FormatFloat(c, 'f', 1, 64) + "°C"
	}
	return h
}

var cpuSensorHints = []string{"package", "coretemp", "k10temp", "cpu", "tctl", "soc"}

// CPUTemperature picks the reading that best represents the CPU package.
// Sensors are tried in hint order; zero readings are ignored.
func CPUTemperature(temps []sensors.TemperatureStat) (float64, bool) {
	for _, hint := range cpuSensorHints {
		for _, t := range temps {
			if t.Temperature > 0 && strings.Contains(strings.ToLower(t.SensorKey), hint) {
				return t.Temperature, true
			}
		}
	}
	return 0, false
}

// Uptime is the time since the process started.
func Uptime() time.Duration {
	return time.Since(startedAt)
}

var byteUnits = []string{"Bytes", "KB", "MB", "GB", "TB", "PB", "EB"}

// FormatBytes renders a size in 1024-based units with at most two decimals,
// trailing zeros dropped: 1536 -> "1.5 KB", 0 -> "0 Bytes".
func FormatBytes(n uint64) string {
	if n == 0 {
		return "0 Bytes"
	}
	v := float64(n)
	i := 0
	for v >= 1024 && i < len(byteUnits)-1 {
		v /= 1024
		i++
	}
	v = math.Round(v*100) / 100
	return strconv.FormatFloat(v, 'f', -1, 64) + " " + byteUnits[i]
}

// FormatUptime renders a duration as "1d 2h 3m 4s". Zero days, hours and minutes
// are skipped; seconds are always present.
func FormatUptime(d time.Duration) string {
	total := int64(d / time.Second)
	if total < 0 {
		total = 0
	}
	days := total / 86400
	hours := total % 86400 / 3600
	minutes := total % 3600 / 60
	seconds := total % 60

	var parts []string
	if days > 0 {
		parts = append(parts, strconv.FormatInt(days, 10)+"d")
	}
	if hours > 0 {
		parts = append(parts, strconv.FormatInt(hours, 10)+"h")
	}
	if minutes > 0 {
		parts = append(parts, strconv.FormatInt(minutes, 10)+"m")
	}
	parts = append(parts, strconv.FormatInt(seconds, 10)+"s")
	return strings.Join(parts, " ")
}
