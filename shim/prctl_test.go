package shim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrctlSetNameTruncatesTo15Bytes(t *testing.T) {
	sh, tm, _, mem := newTestShim()
	name := []byte("this-name-is-way-too-long\x00")
	require.NoError(t, mem.WriteBytes(0x6000, 0, name))

	merr := sh.Prctl(PrSetName, 0x6000)
	require.Nil(t, merr)
	assert.LessOrEqual(t, len(tm.GetThreadName()), 15)
}

func TestPrctlSetNameStopsAtNUL(t *testing.T) {
	sh, tm, _, mem := newTestShim()
	require.NoError(t, mem.WriteBytes(0x6000, 0, []byte("short\x00garbage")))

	require.Nil(t, sh.Prctl(PrSetName, 0x6000))
	assert.Equal(t, []byte("short"), tm.GetThreadName())
}

func TestPrctlGetNameWritesNULTerminated(t *testing.T) {
	sh, tm, _, mem := newTestShim()
	tm.SetThreadName([]byte("worker"))

	require.Nil(t, sh.Prctl(PrGetName, 0x7000))
	raw, err := mem.ReadBytes(0x7000, 0, len("worker")+1)
	require.NoError(t, err)
	assert.Equal(t, append([]byte("worker"), 0), raw)
}

func TestPrctlUnknownOpIsUnsupported(t *testing.T) {
	sh, _, _, _ := newTestShim()
	merr := sh.Prctl(999, 0x7000)
	assert.NotNil(t, merr)
}
