package report

import (
	"crypto/hmac"
	"crypto/sha256"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// SignatureSize is the length of the HMAC-SHA256 signature in bytes.
const SignatureSize = 32

// Sign returns the HMAC-SHA256 signature for the given bytes using the
// shared secret.
func Sign(data []byte, secret string) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(data)
	return mac.Sum(nil)
}

// Verify performs a constant-time comparison of the expected HMAC against
// the provided signature.
func Verify(sig, data []byte, secret string) bool {
	expected := Sign(data, secret)
	return hmac.Equal(sig, expected)
}

// Encode marshals the report and prepends its signature, producing the
// packet sent to ingest targets.
func Encode(r Report, secret string) ([]byte, error) {
	body, err := msgpack.Marshal(&r)
	if err != nil {
		return nil, fmt.Errorf("marshaling report: %w", err)
	}
	return append(Sign(body, secret), body...), nil
}

// Decode verifies a packet's signature and unmarshals the report. The
// verified signature is retained on the returned report.
func Decode(packet []byte, secret string) (Report, error) {
	if len(packet) <= SignatureSize {
		return Report{}, fmt.Errorf("packet too small: %d bytes", len(packet))
	}

	sig := packet[:SignatureSize]
	body := packet[SignatureSize:]
	if !Verify(sig, body, secret) {
		return Report{}, fmt.Errorf("signature mismatch")
	}

	var r Report
	if err := msgpack.Unmarshal(body, &r); err != nil {
		return Report{}, fmt.Errorf("unmarshaling report: %w", err)
	}
	r.Signature = sig
	return r, nil
}
