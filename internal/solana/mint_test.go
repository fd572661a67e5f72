package solana

import (
	"encoding/base64"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const usdcMint = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"

func buildMint(mintAuthority, freezeAuthority []byte, supply uint64, decimals uint8) string {
	buf := make([]byte, MintAccountSize)
	if mintAuthority != nil {
		binary.LittleEndian.PutUint32(buf[0:4], 1)
		copy(buf[4:36], mintAuthority)
	}
	binary.LittleEndian.PutUint64(buf[36:44], supply)
	buf[44] = decimals
	buf[45] = 1
	if freezeAuthority != nil {
		binary.LittleEndian.PutUint32(buf[46:50], 1)
		copy(buf[50:82], freezeAuthority)
	}
	return base64.StdEncoding.EncodeToString(buf)
}

func TestParseMint_Renounced(t *testing.T) {
	data := buildMint(nil, nil, 1_000_000_000, 6)

	mint, err := ParseMint(data)
	require.NoError(t, err)

	assert.Nil(t, mint.MintAuthority)
	assert.Nil(t, mint.FreezeAuthority)
	assert.Equal(t, uint64(1_000_000_000), mint.Supply)
	assert.Equal(t, uint8(6), mint.Decimals)
	assert.True(t, mint.IsInitialized)
}

func TestParseMint_ActiveAuthorities(t *testing.T) {
	authority, err := base58.Decode(usdcMint)
	require.NoError(t, err)

	mint, err := ParseMint(buildMint(authority, authority, 42, 9))
	require.NoError(t, err)

	require.NotNil(t, mint.MintAuthority)
	require.NotNil(t, mint.FreezeAuthority)
	assert.Equal(t, usdcMint, *mint.MintAuthority)
	assert.Equal(t, usdcMint, *mint.FreezeAuthority)
}

func TestParseMint_TooShort(t *testing.T) {
	_, err := ParseMint(base64.StdEncoding.EncodeToString(make([]byte, 40)))
	assert.Error(t, err)

	_, err = ParseMint("not base64!")
	assert.Error(t, err)
}

func TestValidatePubkey(t *testing.T) {
	assert.NoError(t, ValidatePubkey(usdcMint))
	assert.NoError(t, ValidatePubkey("So11111111111111111111111111111111111111112"))

	for _, bad := range []string{"", "abc", "0OIl", usdcMint + "x"} {
		err := ValidatePubkey(bad)
		if !errors.Is(err, ErrInvalidPubkey) {
			t.Errorf("ValidatePubkey(%q) = %v, want ErrInvalidPubkey", bad, err)
		}
	}
}

func TestDeriveMetadataPDA(t *testing.T) {
	pda, err := DeriveMetadataPDA(usdcMint)
	require.NoError(t, err)
	assert.NoError(t, ValidatePubkey(pda))

	again, err := DeriveMetadataPDA(usdcMint)
	require.NoError(t, err)
	assert.Equal(t, pda, again)

	raw, err := base58.Decode(pda)
	require.NoError(t, err)
	assert.False(t, isOnCurve(raw), "PDA must be off curve")

	_, err = DeriveMetadataPDA("bad")
	assert.Error(t, err)
}

func TestParseMetaplexMetadata(t *testing.T) {
	buf := make([]byte, 0, 200)
	buf = append(buf, 4)
	buf = append(buf, make([]byte, 64)...)
	buf = appendBorshString(buf, "Bonk\x00\x00\x00")
	buf = appendBorshString(buf, "BONK")
	buf = appendBorshString(buf, "https://example.invalid/bonk.json")
	buf = append(buf, make([]byte, 40)...)

	meta, err := ParseMetaplexMetadata(base64.StdEncoding.EncodeToString(buf))
	require.NoError(t, err)
	assert.Equal(t, "Bonk", meta.Name)
	assert.Equal(t, "BONK", meta.Symbol)
}

func TestParseMetaplexMetadata_WrongKey(t *testing.T) {
	buf := make([]byte, 120)
	buf[0] = 7

	_, err := ParseMetaplexMetadata(base64.StdEncoding.EncodeToString(buf))
	assert.Error(t, err)
}

func appendBorshString(b []byte, s string) []byte {
	var n [4]byte
	binary.LittleEndian.PutUint32(n[:], uint32(len(s)))
	b = append(b, n[:]...)
	return append(b, s...)
}
