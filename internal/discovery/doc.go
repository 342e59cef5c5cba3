// Package discovery finds eSCL scanners on the local network with multicast
// DNS.
//
// Scanners advertise the "_uscan._tcp" service. A device is only reported
// when one answer batch carries every record needed to reach it:
//
//	PTR  _uscan._tcp.local.        → instance name
//	TXT  instance                  → rs (eSCL root path), ty (make and model)
//	SRV  instance                  → port, hostname
//	A    hostname                  → IPv4 address
//
// Announcements missing any of these are dropped without error (they are
// logged at debug level).
//
// # Usage Example
//
//	devices, err := discovery.Discover(5 * time.Second)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, device := range devices {
//	    fmt.Printf("Found: %s at %s\n", device.Name, device.BaseURL())
//	}
//
// Discover sends one query and uses the first answer batch; it does not keep
// collecting after that. Browse keeps listening until its context ends and is
// meant for watching devices come and go.
//
// # Network Requirements
//
// - Requires multicast support on the network interface
// - Devices must be on the same local network segment
// - Firewall must allow mDNS (UDP port 5353)
package discovery
