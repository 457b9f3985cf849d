package relay

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"lore.lol/pkg/app/config"
	"lore.lol/pkg/database"
	"lore.lol/pkg/protocol/relayinfo"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	db, err := database.New(ctx, cancel, t.TempDir(), "off")
	require.NoError(t, err)
	t.Cleanup(func() {
		cancel()
		require.NoError(t, db.Close())
	})
	cfg := &config.C{
		AppName:          "lore-test",
		MaxMessageLength: 4096,
		MaxSubscriptions: 32,
		MaxSubidLength:   71,
		DefaultLimit:     512,
		MaxLimit:         1000,
	}
	return NewServer(ctx, cancel, cfg, db)
}

func TestRelayInfoDocument(t *testing.T) {
	s := testServer(t)
	srv := httptest.NewServer(s.mux)
	defer srv.Close()

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/", nil)
	require.NoError(t, err)
	req.Header.Set("Accept", "application/nostr+json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "application/nostr+json",
		resp.Header.Get("Content-Type"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var info relayinfo.T
	require.NoError(t, json.Unmarshal(body, &info))
	require.Equal(t, "lore-test", info.Name)
	require.Contains(t, info.SupportedNIPs, 1)
	require.Contains(t, info.SupportedNIPs, 42)
	require.NotNil(t, info.Limitation)
	require.Equal(t, 4096, info.Limitation.MaxMessageLength)
	require.False(t, info.Limitation.RestrictedWrites)
}

func TestCORSPreflight(t *testing.T) {
	s := testServer(t)
	srv := httptest.NewServer(s.mux)
	defer srv.Close()

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", "GET")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	require.Equal(t, "*",
		resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestDecodeKeys(t *testing.T) {
	keys := decodeKeys([]string{
		"0000000000000000000000000000000000000000000000000000000000000001",
		"not hex",
		"abcd",
	})
	require.Len(t, keys, 1)
	require.Len(t, keys[0], 32)
}

func TestBareOptions(t *testing.T) {
	s := testServer(t)
	srv := httptest.NewServer(s.mux)
	defer srv.Close()

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
}
