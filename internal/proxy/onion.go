package proxy

import (
	"encoding/base32"
	"regexp"
	"strings"

	"golang.org/x/crypto/sha3"
)

// Onion address constants.
const (
	// OnionSuffix is the common suffix for all onion addresses.
	OnionSuffix = ".onion"

	// onionV3Version is the version byte for v3 onion addresses.
	onionV3Version = 0x03

	// onionV3DecodedLength is pubkey (32) + checksum (2) + version (1).
	onionV3DecodedLength = 35
)

var (
	// 56 base32 characters (a-z, 2-7).
	onionV3Pattern = regexp.MustCompile(`^[a-z2-7]{56}\.onion$`)
	// 16 base32 characters; deprecated since 2021.
	onionV2Pattern = regexp.MustCompile(`^[a-z2-7]{16}\.onion$`)
)

// checksumPrefix is fixed by the Tor rendezvous specification.
var checksumPrefix = []byte(".onion checksum")

// IsOnionHost reports whether host is in the .onion TLD.
func IsOnionHost(host string) bool {
	return strings.HasSuffix(strings.ToLower(host), OnionSuffix)
}

// IsValidV3Address reports whether address is a v3 onion address with a
// valid checksum and version byte. Case is ignored.
func IsValidV3Address(address string) bool {
	address = strings.ToLower(address)
	if !onionV3Pattern.MatchString(address) {
		return false
	}

	onionPart := strings.TrimSuffix(address, OnionSuffix)
	decoded, err := base32.StdEncoding.DecodeString(strings.ToUpper(onionPart))
	if err != nil || len(decoded) != onionV3DecodedLength {
		return false
	}

	pubkey := decoded[:32]
	checksum := decoded[32:34]
	version := decoded[34]
	if version != onionV3Version {
		return false
	}

	expected := computeV3Checksum(pubkey, version)
	return checksum[0] == expected[0] && checksum[1] == expected[1]
}

// computeV3Checksum returns the first 2 bytes of
// SHA3-256(".onion checksum" || pubkey || version).
func computeV3Checksum(pubkey []byte, version byte) []byte {
	data := make([]byte, 0, len(checksumPrefix)+len(pubkey)+1)
	data = append(data, checksumPrefix...)
	data = append(data, pubkey...)
	data = append(data, version)

	hash := sha3.Sum256(data)
	return hash[:2]
}

// IsV2Address reports whether address has the deprecated v2 format.
func IsV2Address(address string) bool {
	return onionV2Pattern.MatchString(strings.ToLower(address))
}

// ValidateOnionHost returns nil for valid v3 hosts and a descriptive error
// for v2 or malformed .onion hosts.
func ValidateOnionHost(host string) error {
	if IsValidV3Address(host) {
		return nil
	}
	if IsV2Address(host) {
		return ErrV2AddressDeprecated
	}
	return ErrInvalidOnionAddress
}

// ComputeV3AddressFromPublicKey derives the v3 onion address of a 32-byte
// ed25519 public key.
func ComputeV3AddressFromPublicKey(pubkey []byte) (string, error) {
	if len(pubkey) != 32 {
		return "", ErrInvalidOnionAddress
	}

	checksum := computeV3Checksum(pubkey, onionV3Version)

	addressData := make([]byte, onionV3DecodedLength)
	copy(addressData[:32], pubkey)
	copy(addressData[32:34], checksum)
	addressData[34] = onionV3Version

	encoded := base32.StdEncoding.EncodeToString(addressData)
	return strings.ToLower(encoded) + OnionSuffix, nil
}
