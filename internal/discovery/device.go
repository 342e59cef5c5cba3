package discovery

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/miekg/dns"
)

// TXT keys a scanner advertises alongside its _uscan._tcp service
const (
	// TXTKeyPath is the eSCL root path, without or with a leading slash
	TXTKeyPath = "rs"
	// TXTKeyName is the human readable make and model
	TXTKeyName = "ty"
)

// Device is a scanner endpoint found on the network
type Device struct {
	// Name is the human readable name from the ty TXT key (e.g., "HP LaserJet MFP M28w")
	Name string `json:"name" yaml:"name"`

	// Instance is the DNS-SD service instance name
	Instance string `json:"instance" yaml:"instance"`

	// Hostname is the SRV target (e.g., "NPI1D2E1.local.")
	Hostname string `json:"hostname" yaml:"hostname"`

	// IP is the IPv4 address the hostname resolved to
	IP string `json:"ip" yaml:"ip"`

	// Port is the HTTP port from the SRV record
	Port int `json:"port" yaml:"port"`

	// Path is the eSCL root from the rs TXT key, normalised to start with "/"
	// or empty for the server root
	Path string `json:"path" yaml:"path"`

	// Metadata holds every TXT key the device advertised
	// Common fields: "vers", "UUID", "pdl", "cs", "is", "duplex"
	Metadata map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`

	// DiscoveredAt is when the announcement was received
	DiscoveredAt time.Time `json:"discovered_at" yaml:"discovered_at"`
}

// String returns a human-readable string representation of the device
func (d *Device) String() string {
	return fmt.Sprintf("%s (%s) at %s", d.Name, d.Hostname, d.BaseURL())
}

// BaseURL returns the eSCL root URL to hand to escl.NewClient
func (d *Device) BaseURL() string {
	return "http://" + net.JoinHostPort(d.IP, strconv.Itoa(d.Port)) + d.Path
}

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (d *Device) GetMetadata(key string) string {
	if d.Metadata == nil {
		return ""
	}
	return d.Metadata[key]
}

// normalizePath turns an rs value into a URL path: "eSCL" and "/eSCL/" both
// become "/eSCL", and an empty value stays empty
func normalizePath(rs string) string {
	rs = strings.Trim(strings.TrimSpace(rs), "/")
	if rs == "" {
		return ""
	}
	return "/" + rs
}

// parseTXT splits "key=value" strings into a map. Keys are matched
// case-insensitively, so they are stored lower-cased; a key without "=" maps
// to "".
func parseTXT(txt []string) map[string]string {
	metadata := make(map[string]string, len(txt))
	for _, entry := range txt {
		if entry == "" {
			continue
		}
		key, value, _ := strings.Cut(entry, "=")
		key = strings.ToLower(key)
		// The first occurrence of a key wins
		if _, seen := metadata[key]; !seen {
			metadata[key] = value
		}
	}
	return metadata
}

// instanceLabel extracts the display form of a service instance name
// ("HP\ LaserJet._uscan._tcp.local." becomes "HP LaserJet")
func instanceLabel(instance, service string) string {
	fq := dns.Fqdn(instance)
	suffix := "." + canonical(service)
	if strings.HasSuffix(canonical(fq), suffix) {
		fq = fq[:len(fq)-len(suffix)]
	}
	return unescapeLabel(strings.TrimSuffix(fq, "."))
}

// unescapeLabel reverses DNS presentation escaping: "\ " and "\." stand for
// the character itself and "\DDD" for a decimal byte value
func unescapeLabel(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 >= len(s) {
			b.WriteByte(s[i])
			continue
		}
		if i+3 < len(s) && isDigit(s[i+1]) && isDigit(s[i+2]) && isDigit(s[i+3]) {
			if v, err := strconv.Atoi(s[i+1 : i+4]); err == nil && v < 256 {
				b.WriteByte(byte(v))
				i += 3
				continue
			}
		}
		b.WriteByte(s[i+1])
		i++
	}
	return b.String()
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
