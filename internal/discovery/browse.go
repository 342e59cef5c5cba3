package discovery

import (
	"context"
	"time"

	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"

	"github.com/muurk/escl/internal/escl"
	"github.com/muurk/escl/internal/logging"
)

// browseDrain bounds how long Browse waits for the resolver to flush
// entries after ctx ends
const browseDrain = time.Second

// Browse watches the network for eSCL scanners until ctx ends, calling fn for
// every complete announcement. The same device may be reported more than
// once. Unlike Discover it keeps listening across announcement bursts.
func (s *Scanner) Browse(ctx context.Context, fn func(*Device)) error {
	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return escl.NewDiscoveryError("failed to create mDNS resolver", err)
	}

	entries := make(chan *zeroconf.ServiceEntry)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for entry := range entries {
			device := deviceFromEntry(entry)
			if device == nil {
				continue
			}
			if ctx.Err() == nil {
				fn(device)
			}
		}
	}()

	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		return escl.NewDiscoveryError("failed to browse for mDNS services", err)
	}

	<-ctx.Done()

	// The resolver closes entries once it has shut down
	select {
	case <-done:
	case <-time.After(browseDrain):
	}
	return nil
}

// deviceFromEntry converts a zeroconf service entry to a Device
// Returns nil if the entry lacks the TXT keys or an IPv4 address
func deviceFromEntry(entry *zeroconf.ServiceEntry) *Device {
	if entry == nil || entry.HostName == "" {
		return nil
	}

	metadata := parseTXT(entry.Text)
	path, hasPath := metadata[TXTKeyPath]
	name, hasName := metadata[TXTKeyName]
	if !hasPath || !hasName {
		dropped(entry.Instance, "TXT record lacks rs or ty")
		return nil
	}

	var ip string
	for _, addr := range entry.AddrIPv4 {
		if v4 := addr.To4(); v4 != nil {
			ip = v4.String()
			break
		}
	}
	if ip == "" {
		dropped(entry.Instance, "no IPv4 address for "+entry.HostName)
		return nil
	}

	if entry.Port == 0 {
		dropped(entry.Instance, "no port")
		return nil
	}

	logging.Debug("Scanner announced",
		zap.String("instance", entry.Instance),
		zap.String("host", entry.HostName),
		zap.String("ip", ip),
	)

	return &Device{
		Name:         name,
		Instance:     unescapeLabel(entry.Instance),
		Hostname:     entry.HostName,
		IP:           ip,
		Port:         entry.Port,
		Path:         normalizePath(path),
		Metadata:     metadata,
		DiscoveredAt: time.Now(),
	}
}
