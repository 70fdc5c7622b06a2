package pageserver

import (
	"context"
	"net"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startServer(t *testing.T, store PageStore) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{Store: store}
	go s.Serve(ctx, ln)
	t.Cleanup(func() {
		cancel()
		ln.Close()
	})
	return ln.Addr().String()
}

func TestClient_WriteThenRead_RoundTrip(t *testing.T) {
	store := newMemStore(4096)
	addr := startServer(t, store)

	c, err := Dial(addr)
	require.NoError(t, err)
	defer c.Close()

	payload := []byte("hello page server")
	require.NoError(t, c.Write(100, payload))

	got, err := c.Read(100, uint32(len(payload)))
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestClient_Read_WithinBoundsButUnwritten(t *testing.T) {
	store := newMemStore(4096)
	addr := startServer(t, store)

	c, err := Dial(addr)
	require.NoError(t, err)
	defer c.Close()

	got, err := c.Read(2048, 16)
	require.NoError(t, err)
	assert.Equal(t, make([]byte, 16), got) // never written, reads as zeros
}

func TestClient_Flush(t *testing.T) {
	store := newMemStore(16)
	addr := startServer(t, store)

	c, err := Dial(addr)
	require.NoError(t, err)
	defer c.Close()

	assert.NoError(t, c.Flush())
}

func TestClient_Discard(t *testing.T) {
	store := newMemStore(16)
	addr := startServer(t, store)

	c, err := Dial(addr)
	require.NoError(t, err)
	defer c.Close()

	assert.NoError(t, c.Discard(0, 16))
}

func TestClient_Stat(t *testing.T) {
	store := newMemStore(4096)
	addr := startServer(t, store)

	c, err := Dial(addr)
	require.NoError(t, err)
	defer c.Close()

	stats, err := c.Stat()
	require.NoError(t, err)
	assert.Equal(t, uint64(4096), stats.TotalSize)
	assert.Equal(t, uint32(4096), stats.PageSize)
}

func TestClient_Read_OutOfBoundsIsRejectedByServer(t *testing.T) {
	store := newMemStore(16)
	addr := startServer(t, store)

	c, err := Dial(addr)
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Read(10, 100) // 10+100 > 16
	assert.ErrorIs(t, err, ErrServerError)
}

func TestParseSize(t *testing.T) {
	t.Parallel()

	cases := map[string]int64{
		"4096": 4096,
		"64K":  64 << 10,
		"64k":  64 << 10,
		"128M": 128 << 20,
		"1G":   1 << 30,
	}
	for in, want := range cases {
		got, err := ParseSize(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestParseSize_Invalid(t *testing.T) {
	t.Parallel()

	_, err := ParseSize("not-a-size")
	assert.Error(t, err)
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	assert.Equal(t, 8964, cfg.Port)
	assert.Equal(t, "0.0.0.0", cfg.Addr)
}

func TestLoadConfigFile_MergesOverBase(t *testing.T) {
	t.Parallel()

	path := t.TempDir() + "/config.json"
	require.NoError(t, os.WriteFile(path, []byte(`{
		// trailing comment and comma are fine in HuJSON
		"port": 9000,
		"verbose": true,
	}`), 0o644))

	merged, err := LoadConfigFile(DefaultConfig(), path)
	require.NoError(t, err)
	assert.Equal(t, 9000, merged.Port)
	assert.Equal(t, "0.0.0.0", merged.Addr) // unchanged from base
	assert.True(t, merged.Verbose)
}
