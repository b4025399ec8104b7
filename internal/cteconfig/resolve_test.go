package cteconfig

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveCLIWins(t *testing.T) {
	cli := float32(0.5)
	meta := float32(0.2)
	v, src, warn := Resolve(&cli, true, &meta, true, float32(0))
	assert.Equal(t, float32(0.5), v)
	assert.Equal(t, "cli", src)
	assert.True(t, warn)
}

func TestResolveCLIWinsNoMismatch(t *testing.T) {
	cli := float32(0.5)
	v, src, warn := Resolve(&cli, true, (*float32)(nil), false, float32(0))
	assert.Equal(t, float32(0.5), v)
	assert.Equal(t, "cli", src)
	assert.False(t, warn)
}

func TestResolveMetadataFallback(t *testing.T) {
	meta := "PENINSULA"
	v, src, warn := Resolve((*string)(nil), false, &meta, true, "CANARIAS")
	assert.Equal(t, "PENINSULA", v)
	assert.Equal(t, "metadata", src)
	assert.False(t, warn)
}

func TestResolveDefault(t *testing.T) {
	v, src, warn := Resolve((*int)(nil), false, (*int)(nil), false, 42)
	assert.Equal(t, 42, v)
	assert.Equal(t, "default", src)
	assert.False(t, warn)
}

func TestResolveAgreeingCLIAndMetadataNoWarning(t *testing.T) {
	cli := 7
	meta := 7
	_, _, warn := Resolve(&cli, true, &meta, true, 0)
	assert.False(t, warn)
}
