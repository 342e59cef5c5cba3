package discovery

import (
	"net"
	"strings"
	"time"

	"github.com/miekg/dns"
	"go.uber.org/zap"

	"github.com/muurk/escl/internal/logging"
)

// recordSet indexes the resource records of one answer batch by owner name.
// Devices are assembled from it with independent lookups, so a missing
// record only drops the device that needed it.
type recordSet struct {
	ptr map[string][]string
	txt map[string][]string
	srv map[string]*dns.SRV
	a   map[string]net.IP
}

// canonical lower-cases a DNS name and makes it fully qualified
func canonical(name string) string {
	return strings.ToLower(dns.Fqdn(name))
}

// newRecordSet indexes every record in the given sections. Records with a
// zero TTL are goodbye announcements and are skipped.
func newRecordSet(sections ...[]dns.RR) *recordSet {
	rs := &recordSet{
		ptr: make(map[string][]string),
		txt: make(map[string][]string),
		srv: make(map[string]*dns.SRV),
		a:   make(map[string]net.IP),
	}

	for _, section := range sections {
		for _, rr := range section {
			hdr := rr.Header()
			if hdr.Ttl == 0 {
				continue
			}
			owner := canonical(hdr.Name)

			switch r := rr.(type) {
			case *dns.PTR:
				target := dns.Fqdn(r.Ptr)
				if !containsFold(rs.ptr[owner], target) {
					rs.ptr[owner] = append(rs.ptr[owner], target)
				}
			case *dns.TXT:
				rs.txt[owner] = append(rs.txt[owner], r.Txt...)
			case *dns.SRV:
				if _, ok := rs.srv[owner]; !ok {
					rs.srv[owner] = r
				}
			case *dns.A:
				if _, ok := rs.a[owner]; !ok && r.A.To4() != nil {
					rs.a[owner] = r.A.To4()
				}
			}
		}
	}

	return rs
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

// devices correlates PTR → TXT, PTR → SRV and SRV → A for every instance
// of service, in the order the PTR records appeared
func (rs *recordSet) devices(service string, seen time.Time) []*Device {
	devices := make([]*Device, 0)

	for _, instance := range rs.ptr[canonical(service)] {
		key := canonical(instance)

		txt, ok := rs.txt[key]
		if !ok {
			dropped(instance, "no TXT record")
			continue
		}
		metadata := parseTXT(txt)
		path, hasPath := metadata[TXTKeyPath]
		name, hasName := metadata[TXTKeyName]
		if !hasPath || !hasName {
			dropped(instance, "TXT record lacks rs or ty")
			continue
		}

		srv, ok := rs.srv[key]
		if !ok {
			dropped(instance, "no SRV record")
			continue
		}

		ip, ok := rs.a[canonical(srv.Target)]
		if !ok {
			dropped(instance, "no A record for "+srv.Target)
			continue
		}

		devices = append(devices, &Device{
			Name:         name,
			Instance:     instanceLabel(instance, service),
			Hostname:     srv.Target,
			IP:           ip.String(),
			Port:         int(srv.Port),
			Path:         normalizePath(path),
			Metadata:     metadata,
			DiscoveredAt: seen,
		})
	}

	return devices
}

func dropped(instance, reason string) {
	logging.Debug("Ignoring incomplete scanner announcement",
		zap.String("instance", instance),
		zap.String("reason", reason),
	)
}
