package report

import (
	"fmt"
	"net"

	"github.com/rs/zerolog"
	"golang.org/x/net/ipv4"
)

// Submitter delivers signed report packets over UDP to the configured
// ingest targets: an optional unicast ingest service and an optional
// multicast group for local witnesses.
type Submitter struct {
	conn   *net.UDPConn
	addrs  []*net.UDPAddr
	secret string
	log    zerolog.Logger
}

// NewSubmitter resolves the submission targets and opens the sending
// socket. At least one of ingestAddress and multicastGroup must be set.
func NewSubmitter(ifaceName, ingestAddress, multicastGroup string, port int, secret string, log zerolog.Logger) (*Submitter, error) {
	var addrs []*net.UDPAddr

	if multicastGroup != "" {
		mAddr, err := net.ResolveUDPAddr("udp4", fmt.Sprintf("%s:%d", multicastGroup, port))
		if err != nil {
			return nil, fmt.Errorf("resolving multicast group: %w", err)
		}
		addrs = append(addrs, mAddr)
	}

	if ingestAddress != "" {
		sAddr, err := net.ResolveUDPAddr("udp4", fmt.Sprintf("%s:%d", ingestAddress, port))
		if err != nil {
			log.Warn().Err(err).Str("ingest_address", ingestAddress).Msg("Failed to resolve ingest address")
		} else {
			addrs = append(addrs, sAddr)
			log.Info().Str("ingest_address", ingestAddress).Msg("Unicast submission enabled")
		}
	}

	if len(addrs) == 0 {
		return nil, fmt.Errorf("no submission targets configured")
	}

	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4zero, Port: 0})
	if err != nil {
		return nil, fmt.Errorf("listening for UDP: %w", err)
	}

	if ifaceName != "" {
		iface, err := net.InterfaceByName(ifaceName)
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("finding interface %s: %w", ifaceName, err)
		}
		// ipv4.PacketConn is used for multicast control
		pc := ipv4.NewPacketConn(conn)
		if err := pc.SetMulticastInterface(iface); err != nil {
			log.Warn().Err(err).Msg("Failed to set multicast interface")
		}
		if err := pc.SetMulticastTTL(1); err != nil {
			log.Warn().Err(err).Msg("Failed to set multicast TTL")
		}
	}

	if err := conn.SetWriteBuffer(4096); err != nil {
		log.Warn().Err(err).Msg("Failed to set write buffer")
	}

	return &Submitter{conn: conn, addrs: addrs, secret: secret, log: log}, nil
}

// Submit signs and sends the report to every configured target. Per-target
// write failures are logged; the report counts as submitted if at least one
// target accepted it.
func (s *Submitter) Submit(r Report) error {
	packet, err := Encode(r, s.secret)
	if err != nil {
		return err
	}

	sent := 0
	for _, addr := range s.addrs {
		if _, err := s.conn.WriteToUDP(packet, addr); err != nil {
			s.log.Error().Err(err).Str("target", addr.String()).Msg("Failed to send report")
			continue
		}
		sent++
		s.log.Debug().
			Str("target", addr.String()).
			Str("beacon_id", r.BeaconID()).
			Int("bytes", len(packet)).
			Msg("Report sent")
	}

	if sent == 0 {
		return fmt.Errorf("report delivery failed for all %d targets", len(s.addrs))
	}
	return nil
}

// Close releases the sending socket.
func (s *Submitter) Close() error {
	return s.conn.Close()
}
