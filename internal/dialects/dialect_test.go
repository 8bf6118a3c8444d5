package dialects

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dfinance/move-tools/internal/address"
	"github.com/dfinance/move-tools/internal/sourcemap"
)

func mustDialect(t *testing.T, name Name, opts ...Option) Dialect {
	t.Helper()
	d, err := New(name, opts...)
	require.NoError(t, err)
	return d
}

func walletAddress(t *testing.T, fill byte) string {
	t.Helper()
	encoded, err := address.EncodeBech32(bytes.Repeat([]byte{fill}, address.DfinanceLength))
	require.NoError(t, err)
	return encoded
}

func ss58Address(t *testing.T, fill byte) string {
	t.Helper()
	encoded, err := address.EncodeSS58(42, bytes.Repeat([]byte{fill}, 32))
	require.NoError(t, err)
	return encoded
}

func TestParseName(t *testing.T) {
	for _, name := range Names {
		parsed, err := ParseName(string(name))
		require.NoError(t, err)
		assert.Equal(t, name, parsed)
	}

	_, err := ParseName("x")
	assert.EqualError(t, err, `invalid dialect "x"`)

	d, err := Get("polkadot")
	require.NoError(t, err)
	assert.Equal(t, "polkadot", d.Name())
}

func TestParseMalformedPolicy(t *testing.T) {
	p, err := ParseMalformedPolicy("")
	require.NoError(t, err)
	assert.Equal(t, Ignore, p)

	p, err = ParseMalformedPolicy("report")
	require.NoError(t, err)
	assert.Equal(t, Report, p)

	_, err = ParseMalformedPolicy("panic")
	assert.Error(t, err)
}

func TestNormalizeAccountAddress(t *testing.T) {
	libra := mustDialect(t, Libra)
	addr, err := libra.NormalizeAccountAddress("0x1")
	require.NoError(t, err)
	assert.Equal(t, "0x1", addr.Literal)
	assert.Len(t, addr.Bytes, address.LibraLength)

	_, err = libra.NormalizeAccountAddress(walletAddress(t, 1))
	assert.Error(t, err)

	dfi := mustDialect(t, Dfinance)
	addr, err = dfi.NormalizeAccountAddress(walletAddress(t, 0x11))
	require.NoError(t, err)
	assert.Equal(t, "0x"+strings.Repeat("11", 20), addr.Literal)

	addr, err = dfi.NormalizeAccountAddress("0x1")
	require.NoError(t, err)
	assert.Len(t, addr.Bytes, address.DfinanceLength)

	dot := mustDialect(t, Polkadot)
	addr, err = dot.NormalizeAccountAddress(ss58Address(t, 0xab))
	require.NoError(t, err)
	assert.Equal(t, "0x"+strings.Repeat("AB", 16), addr.Literal)

	_, err = dot.NormalizeAccountAddress("0xzz")
	assert.Error(t, err)
}

func TestCostTable(t *testing.T) {
	for _, name := range Names {
		table := mustDialect(t, name).CostTable()
		assert.NotEmpty(t, table.Instructions)
		assert.NotZero(t, table.MaxGas)
	}
}

func TestLibraLeavesTextAlone(t *testing.T) {
	text := "module 0x1::M { fun f() { " + walletAddress(t, 2) + "; } }"
	fmap := sourcemap.NewFileOffsetMap(len(text))
	out, err := mustDialect(t, Libra).ReplaceAddresses(text, fmap)
	require.NoError(t, err)
	assert.Equal(t, text, out)
	assert.Zero(t, fmap.Len())
}

func TestDfinanceReplaceAddresses(t *testing.T) {
	wallet := walletAddress(t, 0x42)
	canonical := "0x" + strings.Repeat("42", 20)
	text := "script {\n    use " + wallet + "::Coins;\n    fun main() { Coins::mint(" + wallet + "); }\n}\n"

	fmap := sourcemap.NewFileOffsetMap(len(text))
	out, err := mustDialect(t, Dfinance).ReplaceAddresses(text, fmap)
	require.NoError(t, err)

	assert.Equal(t, strings.ReplaceAll(text, wallet, canonical), out)
	assert.Equal(t, 2, fmap.Len())

	// Every byte outside the rewritten literals maps back onto itself
	for _, marker := range []string{"::Coins", "fun main", "); }"} {
		assert.Equal(t, strings.Index(text, marker), fmap.Translate(strings.Index(out, marker)), marker)
	}

	// Second pass is a no-op
	again := sourcemap.NewFileOffsetMap(len(out))
	out2, err := mustDialect(t, Dfinance).ReplaceAddresses(out, again)
	require.NoError(t, err)
	assert.Equal(t, out, out2)
	assert.Zero(t, again.Len())
}

func TestDfinanceSkipsStringLiterals(t *testing.T) {
	wallet := walletAddress(t, 0x07)
	text := `script { fun main() { let s = b"` + wallet + `"; } }`
	fmap := sourcemap.NewFileOffsetMap(len(text))
	out, err := mustDialect(t, Dfinance).ReplaceAddresses(text, fmap)
	require.NoError(t, err)
	assert.Equal(t, text, out)
	assert.Zero(t, fmap.Len())
}

func TestDfinanceMalformedPolicy(t *testing.T) {
	good := walletAddress(t, 0x09)
	bad := good[:len(good)-1] + "q"
	if bad == good {
		bad = good[:len(good)-1] + "p"
	}
	text := "use " + good + "::A; use " + bad + "::B;"

	fmap := sourcemap.NewFileOffsetMap(len(text))
	out, err := mustDialect(t, Dfinance).ReplaceAddresses(text, fmap)
	require.NoError(t, err)
	assert.Contains(t, out, bad)
	assert.Equal(t, 1, fmap.Len())

	fmap = sourcemap.NewFileOffsetMap(len(text))
	out, err = mustDialect(t, Dfinance, WithMalformedPolicy(Report)).ReplaceAddresses(text, fmap)
	require.Error(t, err)
	malformed, ok := AsMalformed(err)
	require.True(t, ok)
	require.Len(t, malformed, 1)
	assert.Equal(t, bad, malformed[0].Literal)
	assert.Equal(t, bad, out[malformed[0].Span.Start:malformed[0].Span.End])
	assert.Equal(t, strings.Index(text, bad), fmap.Translate(malformed[0].Span.Start))
}

func TestPolkadotReplaceAddresses(t *testing.T) {
	ss58 := ss58Address(t, 0x0c)
	canonical := "0x" + strings.Repeat("0C", 16)
	text := "module " + ss58 + "::Vault {}\nscript { use " + ss58 + "::Vault; fun main() {} }"

	fmap := sourcemap.NewFileOffsetMap(len(text))
	out, err := mustDialect(t, Polkadot).ReplaceAddresses(text, fmap)
	require.NoError(t, err)
	assert.Equal(t, strings.ReplaceAll(text, ss58, canonical), out)
	assert.Equal(t, 2, fmap.Len())

	idx := strings.LastIndex(out, "::Vault")
	assert.Equal(t, strings.LastIndex(text, "::Vault"), fmap.Translate(idx))

	again := sourcemap.NewFileOffsetMap(len(out))
	out2, err := mustDialect(t, Polkadot).ReplaceAddresses(out, again)
	require.NoError(t, err)
	assert.Equal(t, out, out2)
	assert.Zero(t, again.Len())
}

func TestPolkadotIgnoresNonAddresses(t *testing.T) {
	long := strings.Repeat("abc", 15)
	ss58 := ss58Address(t, 0x01)
	raw := []byte(ss58)
	// Change one character to break the checksum while staying base58
	if raw[10] == '2' {
		raw[10] = '3'
	} else {
		raw[10] = '2'
	}
	broken := string(raw)

	text := "fun " + long + "() {} // " + broken
	fmap := sourcemap.NewFileOffsetMap(len(text))
	out, err := mustDialect(t, Polkadot, WithMalformedPolicy(Report)).ReplaceAddresses(text, fmap)
	require.NoError(t, err)
	assert.Equal(t, text, out)
	assert.Zero(t, fmap.Len())
}

func TestScanWords(t *testing.T) {
	words, err := scanWords(`let a = x"00ff"; b::c(0x1);`)
	require.NoError(t, err)

	var texts []string
	for _, w := range words {
		texts = append(texts, w.text)
	}
	assert.Equal(t, []string{"let", "a", "b", "c", "0x1"}, texts)
	assert.Equal(t, 4, words[1].start)
}

func TestPolicy(t *testing.T) {
	assert.Equal(t, Ignore, mustDialect(t, Libra, WithMalformedPolicy(Report)).Policy())
	assert.Equal(t, Ignore, mustDialect(t, Polkadot, WithMalformedPolicy(Report)).Policy())
	assert.Equal(t, Ignore, mustDialect(t, Dfinance).Policy())
	assert.Equal(t, Report, mustDialect(t, Dfinance, WithMalformedPolicy(Report)).Policy())
}
