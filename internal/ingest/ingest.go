// Package ingest implements the UDP receiver that collects signed beacon
// reports from the multicast group and records them for deduplication.
package ingest

import (
	"fmt"
	"net"
	"time"

	"github.com/rs/zerolog"

	"pocbeacon/internal/beacon"
	"pocbeacon/internal/report"
	"pocbeacon/internal/store"
)

const (
	maxPacketSize    = 4096
	timestampMaxSkew = 5 * time.Minute
	maxPacketsPerMin = 30
)

// rateTracker tracks per-source-IP packet counts for rate limiting.
type rateTracker struct {
	counts    map[string]int
	resetTime time.Time
}

// StartListener joins the UDP multicast group and processes incoming report
// packets.
func StartListener(ifaceName, multicastGroup string, port int, sharedSecret string, db *store.Store, log zerolog.Logger) error {
	var iface *net.Interface
	if ifaceName != "" {
		var err error
		iface, err = net.InterfaceByName(ifaceName)
		if err != nil {
			return fmt.Errorf("finding interface %s: %w", ifaceName, err)
		}
	}

	group := net.ParseIP(multicastGroup)
	if group == nil {
		return fmt.Errorf("invalid multicast group: %s", multicastGroup)
	}

	listenAddr := &net.UDPAddr{
		IP:   group,
		Port: port,
	}

	conn, err := net.ListenMulticastUDP("udp4", iface, listenAddr)
	if err != nil {
		return fmt.Errorf("joining multicast group: %w", err)
	}
	defer conn.Close()

	if err := conn.SetReadBuffer(maxPacketSize * 10); err != nil {
		log.Warn().Err(err).Msg("Failed to set read buffer")
	}

	log.Info().
		Str("multicast_group", multicastGroup).
		Int("port", port).
		Msg("Ingest listener started, waiting for reports")

	tracker := &rateTracker{
		counts:    make(map[string]int),
		resetTime: time.Now().Add(time.Minute),
	}

	buf := make([]byte, maxPacketSize)
	for {
		n, src, err := conn.ReadFromUDP(buf)
		if err != nil {
			log.Error().Err(err).Msg("Error reading from UDP")
			continue
		}

		// Rate limiting
		now := time.Now()
		if now.After(tracker.resetTime) {
			tracker.counts = make(map[string]int)
			tracker.resetTime = now.Add(time.Minute)
		}
		srcIP := src.IP.String()
		tracker.counts[srcIP]++
		if tracker.counts[srcIP] > maxPacketsPerMin {
			log.Warn().Str("src_ip", srcIP).Msg("Rate limit exceeded, dropping packet")
			continue
		}

		// Copy packet data for goroutine
		packet := make([]byte, n)
		copy(packet, buf[:n])

		go handlePacket(packet, src, sharedSecret, db, log)
	}
}

func handlePacket(packet []byte, src *net.UDPAddr, secret string, db *store.Store, log zerolog.Logger) {
	srcIP := src.IP.String()

	log.Debug().
		Str("src_ip", srcIP).
		Int("payload_bytes", len(packet)).
		Msg("Packet received")

	r, err := report.Decode(packet, secret)
	if err != nil {
		log.Warn().
			Str("src_ip", srcIP).
			Err(err).
			Msg("Report rejected")
		return
	}

	if err := validateReport(r, time.Now()); err != nil {
		log.Warn().
			Str("src_ip", srcIP).
			Str("beacon_id", r.BeaconID()).
			Err(err).
			Msg("Report failed validation")
		return
	}

	first, err := db.Save(r, srcIP)
	if err != nil {
		log.Error().
			Str("beacon_id", r.BeaconID()).
			Err(err).
			Msg("Database write error")
		return
	}

	if first {
		log.Info().
			Str("src_ip", srcIP).
			Str("beacon_id", r.BeaconID()).
			Uint64("frequency", r.Frequency).
			Str("datarate", beacon.DataRate(r.DataRate).String()).
			Msg("New beacon report ingested")
	}
}

// validateReport checks the protocol invariants a well-formed report must
// satisfy before it is recorded.
func validateReport(r report.Report, now time.Time) error {
	if len(r.Data) < beacon.MinPayloadSize || len(r.Data) > beacon.MaxPayloadSize {
		return fmt.Errorf("payload length %d outside [%d, %d]", len(r.Data), beacon.MinPayloadSize, beacon.MaxPayloadSize)
	}

	supported := false
	for _, dr := range beacon.BeaconDataRates {
		if beacon.DataRate(r.DataRate) == dr {
			supported = true
		}
	}
	if !supported {
		return fmt.Errorf("datarate tag %d not in supported set", r.DataRate)
	}

	if r.Frequency == 0 {
		return fmt.Errorf("zero frequency")
	}

	ts := time.Unix(0, int64(r.Timestamp))
	age := now.Sub(ts)
	if age < -timestampMaxSkew || age > timestampMaxSkew {
		return fmt.Errorf("report timestamp %s outside the accepted window", ts.UTC().Format(time.RFC3339))
	}

	return nil
}
