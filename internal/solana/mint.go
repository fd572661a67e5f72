package solana

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// Program IDs.
const (
	TokenProgramID     = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"
	Token2022ProgramID = "TokenzQdBNbLqP5VEhdkAS6EPFLC1PeMsbBY3Ssb8yZ"
	MetaplexProgramID  = "metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s"
)

// MintAccountSize is the SPL Token mint layout size.
const MintAccountSize = 82

// ErrInvalidPubkey is returned for strings that are not 32-byte base58 keys.
var ErrInvalidPubkey = errors.New("invalid public key")

// ValidatePubkey checks that s is a base58 encoded 32-byte public key.
func ValidatePubkey(s string) error {
	if s == "" {
		return fmt.Errorf("%w: empty", ErrInvalidPubkey)
	}
	b, err := base58.Decode(s)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPubkey, err)
	}
	if len(b) != 32 {
		return fmt.Errorf("%w: decoded length %d", ErrInvalidPubkey, len(b))
	}
	return nil
}

// IsTokenProgram reports whether owner is the SPL Token or Token-2022 program.
func IsTokenProgram(owner string) bool {
	return owner == TokenProgramID || owner == Token2022ProgramID
}

// Mint is a decoded SPL Token mint account.
type Mint struct {
	MintAuthority   *string // nil when renounced
	Supply          uint64
	Decimals        uint8
	IsInitialized   bool
	FreezeAuthority *string // nil when renounced
}

// ParseMint decodes base64 SPL Token mint account data.
// SPL Token Mint layout (82 bytes):
// - mintAuthority: COption<Pubkey> (36 bytes: 4 + 32)
// - supply: u64 (8 bytes)
// - decimals: u8 (1 byte)
// - isInitialized: bool (1 byte)
// - freezeAuthority: COption<Pubkey> (36 bytes: 4 + 32)
func ParseMint(data string) (*Mint, error) {
	decoded, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("decode mint data: %w", err)
	}

	// Token-2022 mints append extensions after the base layout.
	if len(decoded) < MintAccountSize {
		return nil, fmt.Errorf("mint data too short: %d", len(decoded))
	}

	return &Mint{
		MintAuthority:   parseCOptionPubkey(decoded[0:36]),
		Supply:          binary.LittleEndian.Uint64(decoded[36:44]),
		Decimals:        decoded[44],
		IsInitialized:   decoded[45] == 1,
		FreezeAuthority: parseCOptionPubkey(decoded[46:82]),
	}, nil
}

func parseCOptionPubkey(b []byte) *string {
	if binary.LittleEndian.Uint32(b[0:4]) != 1 {
		return nil
	}
	key := base58.Encode(b[4:36])
	return &key
}

// DeriveMetadataPDA derives the Metaplex metadata PDA for a given mint.
// Seeds: ["metadata", metaplex_program_id, mint]
func DeriveMetadataPDA(mint string) (string, error) {
	mintBytes, err := base58.Decode(mint)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPubkey, err)
	}
	programBytes, err := base58.Decode(MetaplexProgramID)
	if err != nil {
		return "", fmt.Errorf("decode metaplex program: %w", err)
	}
	if len(mintBytes) != 32 {
		return "", fmt.Errorf("%w: decoded length %d", ErrInvalidPubkey, len(mintBytes))
	}

	seeds := [][]byte{
		[]byte("metadata"),
		programBytes,
		mintBytes,
	}

	pda := derivePDA(seeds, programBytes)
	if pda == "" {
		return "", errors.New("no viable bump seed")
	}
	return pda, nil
}

// derivePDA derives a Program Derived Address using the Solana algorithm:
// sha256(seeds || bump || programID || "ProgramDerivedAddress"), taking the
// first bump from 255 downwards that lands off the ed25519 curve.
func derivePDA(seeds [][]byte, programID []byte) string {
	for bump := byte(255); bump > 0; bump-- {
		data := make([]byte, 0, 128)
		for _, seed := range seeds {
			data = append(data, seed...)
		}
		data = append(data, bump)
		data = append(data, programID...)
		data = append(data, []byte("ProgramDerivedAddress")...)

		hash := sha256.Sum256(data)

		if !isOnCurve(hash[:]) {
			return base58.Encode(hash[:])
		}
	}

	return ""
}

func isOnCurve(point []byte) bool {
	if len(point) != 32 {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(point)
	return err == nil
}

// MetaplexMetadata holds the name and symbol from a metadata account.
type MetaplexMetadata struct {
	Name   string
	Symbol string
}

// ParseMetaplexMetadata parses Metaplex Token Metadata account data.
// Metaplex Metadata layout:
// - key: u8 (1 byte, 4 for MetadataV1)
// - updateAuthority: Pubkey (32 bytes)
// - mint: Pubkey (32 bytes)
// - name: String (4 + length bytes, max 32 chars)
// - symbol: String (4 + length bytes, max 10 chars)
// ...and more fields
func ParseMetaplexMetadata(data string) (*MetaplexMetadata, error) {
	decoded, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}

	if len(decoded) < 100 {
		return nil, fmt.Errorf("metadata too short: %d", len(decoded))
	}

	if decoded[0] != 4 {
		return nil, fmt.Errorf("unexpected metadata key %d", decoded[0])
	}

	// Skip: key(1) + updateAuthority(32) + mint(32) = 65 bytes
	offset := 65
	meta := &MetaplexMetadata{}

	name, next, ok := readBorshString(decoded, offset, 100)
	if !ok {
		return nil, errors.New("metadata name out of bounds")
	}
	meta.Name = name

	symbol, _, ok := readBorshString(decoded, next, 20)
	if !ok {
		return meta, nil
	}
	meta.Symbol = symbol

	return meta, nil
}

// readBorshString reads a u32-length-prefixed string and trims NUL padding.
func readBorshString(b []byte, offset int, maxLen uint32) (string, int, bool) {
	if offset+4 > len(b) {
		return "", offset, false
	}
	n := binary.LittleEndian.Uint32(b[offset:])
	offset += 4
	if n > maxLen || offset+int(n) > len(b) {
		return "", offset, false
	}
	s := strings.TrimRight(string(b[offset:offset+int(n)]), "\x00")
	return s, offset + int(n), true
}
