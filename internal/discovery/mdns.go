package discovery

import (
	"context"
	"errors"
	"net"
	"os"
	"time"

	"github.com/miekg/dns"
	"go.uber.org/zap"
	"golang.org/x/net/ipv4"

	"github.com/muurk/escl/internal/escl"
	"github.com/muurk/escl/internal/logging"
)

const (
	// ServiceType is the DNS-SD service type eSCL scanners advertise
	ServiceType = "_uscan._tcp"

	// ServiceDomain is the mDNS domain
	ServiceDomain = "local."

	// ServiceName is the fully qualified name queried for PTR records
	ServiceName = ServiceType + "." + ServiceDomain

	// MulticastAddr is the IPv4 mDNS group and port
	MulticastAddr = "224.0.0.251:5353"

	// DefaultScanTimeout is the default timeout for device discovery
	DefaultScanTimeout = 5 * time.Second

	// maxPacket is the largest mDNS message accepted
	maxPacket = 9000
)

// Querier sends one question and returns the first answer batch for it.
// A nil message with a nil error means nothing answered before ctx ended.
type Querier interface {
	Query(ctx context.Context, question *dns.Msg) (*dns.Msg, error)
}

// Scanner handles one-shot mDNS discovery of eSCL devices. Each Discover call
// owns its socket for the duration of the call.
type Scanner struct {
	// Timeout is the maximum time to wait for an answer
	Timeout time.Duration

	// Service is the fully qualified service name to query
	Service string

	// Addr is where the query is sent; the mDNS group unless overridden
	Addr string

	// Querier replaces the UDP transport; nil uses Addr
	Querier Querier
}

// NewScanner creates a new mDNS scanner with default settings
func NewScanner() *Scanner {
	return &Scanner{
		Timeout: DefaultScanTimeout,
		Service: ServiceName,
		Addr:    MulticastAddr,
	}
}

// Discover queries for eSCL scanners and returns the devices fully described
// by the first answer batch. No answer before the timeout is an empty list,
// not an error; only a failure of the query channel itself is reported, as
// an escl.ErrTypeDiscoveryTransport error.
func (s *Scanner) Discover(ctx context.Context) ([]*Device, error) {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = DefaultScanTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	service := s.Service
	if service == "" {
		service = ServiceName
	}

	querier := s.Querier
	if querier == nil {
		addr := s.Addr
		if addr == "" {
			addr = MulticastAddr
		}
		querier = &udpQuerier{addr: addr}
	}

	question := new(dns.Msg)
	question.SetQuestion(dns.Fqdn(service), dns.TypePTR)
	question.RecursionDesired = false
	// Replies echo the ID; zero would make an empty reply unrecognizable
	for question.Id == 0 {
		question.Id = dns.Id()
	}

	logging.Debug("Sending mDNS query", zap.String("service", service), zap.Duration("timeout", timeout))

	resp, err := querier.Query(ctx, question)
	if err != nil {
		return nil, escl.NewDiscoveryError("mDNS query failed", err)
	}
	if resp == nil {
		logging.Debug("No mDNS answer before timeout", zap.String("service", service))
		return make([]*Device, 0), nil
	}

	devices := newRecordSet(resp.Answer, resp.Ns, resp.Extra).devices(service, time.Now())
	logging.Debug("mDNS answer processed",
		zap.Int("records", len(resp.Answer)+len(resp.Ns)+len(resp.Extra)),
		zap.Int("devices", len(devices)),
	)
	return devices, nil
}

// Discover is a convenience function to discover devices with a custom timeout
func Discover(timeout time.Duration) ([]*Device, error) {
	scanner := NewScanner()
	scanner.Timeout = timeout
	return scanner.Discover(context.Background())
}

// udpQuerier sends a one-shot query from an ephemeral port, so responders
// answer by unicast to that port (RFC 6762 section 5.1)
type udpQuerier struct {
	addr string
}

func (q *udpQuerier) Query(ctx context.Context, question *dns.Msg) (*dns.Msg, error) {
	dst, err := net.ResolveUDPAddr("udp4", q.addr)
	if err != nil {
		return nil, err
	}

	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4zero})
	if err != nil {
		return nil, err
	}
	defer func() { _ = conn.Close() }()

	if dst.IP.IsMulticast() {
		pc := ipv4.NewPacketConn(conn)
		if err := pc.SetMulticastTTL(255); err != nil {
			logging.Debug("Could not set multicast TTL", zap.Error(err))
		}
		if err := pc.SetMulticastLoopback(true); err != nil {
			logging.Debug("Could not enable multicast loopback", zap.Error(err))
		}
	}

	packet, err := question.Pack()
	if err != nil {
		return nil, err
	}
	if _, err := conn.WriteToUDP(packet, dst); err != nil {
		return nil, err
	}

	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetReadDeadline(deadline); err != nil {
			return nil, err
		}
	}
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetReadDeadline(time.Now())
	})
	defer stop()

	buf := make([]byte, maxPacket)
	for {
		n, from, err := conn.ReadFromUDP(buf)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, os.ErrDeadlineExceeded) {
				return nil, nil
			}
			return nil, err
		}

		resp := new(dns.Msg)
		if err := resp.Unpack(buf[:n]); err != nil {
			logging.Debug("Ignoring malformed mDNS packet", zap.Stringer("from", from), zap.Error(err))
			continue
		}
		if !answers(resp, question) {
			logging.Debug("Ignoring unrelated mDNS packet", zap.Stringer("from", from))
			continue
		}

		logging.Debug("mDNS answer received", zap.Stringer("from", from), zap.Int("bytes", n))
		return resp, nil
	}
}

// answers reports whether resp belongs to the query: either it carries a
// record for the question's name, or it is a direct reply (same ID, question
// echoed) from a responder, which may be empty when no scanner matches
func answers(resp, question *dns.Msg) bool {
	if !resp.Response || len(question.Question) == 0 {
		return false
	}
	want := canonical(question.Question[0].Name)
	for _, rr := range resp.Answer {
		if canonical(rr.Header().Name) == want {
			return true
		}
	}
	if question.Id != 0 && resp.Id == question.Id {
		for _, q := range resp.Question {
			if canonical(q.Name) == want {
				return true
			}
		}
	}
	return false
}
