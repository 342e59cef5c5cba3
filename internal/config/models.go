package config

import (
	"strings"
	"time"
)

// CurrentVersion is the registry file format version
const CurrentVersion = 1

// Registry represents the entire user configuration file.
// This stores scanners the user has found or named and application preferences.
type Registry struct {
	Version     int                `yaml:"version"`
	Devices     map[string]*Device `yaml:"devices,omitempty"` // Keyed by DNS-SD instance name
	Preferences *Preferences       `yaml:"preferences,omitempty"`

	path string // file the registry was loaded from; Save writes back here
}

// Device represents a remembered scanner.
type Device struct {
	BaseURL      string    `yaml:"base_url"`                // eSCL root, e.g. http://192.168.1.20:80/eSCL
	Nickname     string    `yaml:"nickname,omitempty"`      // User-friendly name usable with --device
	MakeAndModel string    `yaml:"make_and_model,omitempty"` // From the ty TXT key
	UUID         string    `yaml:"uuid,omitempty"`          // From the UUID TXT key, when advertised
	LastSeen     time.Time `yaml:"last_seen,omitempty"`     // Last discovery time
}

// Preferences represents application-wide user preferences.
type Preferences struct {
	DiscoverTimeout   int    `yaml:"discover_timeout"`             // mDNS discovery timeout in seconds
	OutputDir         string `yaml:"output_dir,omitempty"`         // Where scan pages are written
	DefaultResolution int    `yaml:"default_resolution,omitempty"` // DPI used when --resolution is not given
	DefaultFormat     string `yaml:"default_format,omitempty"`     // MIME type used when --format is not given
}

func defaultPreferences() *Preferences {
	return &Preferences{
		DiscoverTimeout:   5,
		OutputDir:         ".",
		DefaultResolution: 300,
		DefaultFormat:     "image/jpeg",
	}
}

// NewRegistry creates a new Registry with default values.
func NewRegistry() *Registry {
	return &Registry{
		Version:     CurrentVersion,
		Devices:     make(map[string]*Device),
		Preferences: defaultPreferences(),
	}
}

// DiscoverTimeoutDuration returns the discovery timeout preference as a duration.
func (p *Preferences) DiscoverTimeoutDuration() time.Duration {
	if p == nil || p.DiscoverTimeout <= 0 {
		return defaultPreferences().DiscoverTimeoutDuration()
	}
	return time.Duration(p.DiscoverTimeout) * time.Second
}

// GetDevice retrieves a device by its registry key.
// Returns nil if the device doesn't exist in the registry.
func (r *Registry) GetDevice(name string) *Device {
	return r.Devices[name]
}

// EnsureDevice ensures a device entry exists in the registry.
// Returns the device entry (existing or newly created).
func (r *Registry) EnsureDevice(name string) *Device {
	if r.Devices == nil {
		r.Devices = make(map[string]*Device)
	}

	if device, exists := r.Devices[name]; exists {
		return device
	}

	device := &Device{}
	r.Devices[name] = device
	return device
}

// RememberDevice records a discovered scanner, refreshing its address and
// last seen time. A user-set nickname is kept.
func (r *Registry) RememberDevice(name, baseURL, makeAndModel, uuid string) {
	device := r.EnsureDevice(name)
	device.BaseURL = baseURL
	device.LastSeen = time.Now()
	if makeAndModel != "" {
		device.MakeAndModel = makeAndModel
	}
	if uuid != "" {
		device.UUID = uuid
	}
}

// SetDeviceNickname sets a user-friendly nickname for a device.
func (r *Registry) SetDeviceNickname(name, nickname string) {
	device := r.EnsureDevice(name)
	device.Nickname = nickname
}

// Resolve finds a device by registry key or nickname (case-insensitive).
// The second result is false if nothing matches.
func (r *Registry) Resolve(ref string) (*Device, bool) {
	if device, ok := r.Devices[ref]; ok {
		return device, true
	}
	for name, device := range r.Devices {
		if strings.EqualFold(name, ref) || (device.Nickname != "" && strings.EqualFold(device.Nickname, ref)) {
			return device, true
		}
	}
	return nil, false
}
