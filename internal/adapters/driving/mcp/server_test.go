package mcp

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer(t *testing.T) {
	t.Run("missing answer service returns error", func(t *testing.T) {
		server, err := NewServer(&Ports{Index: &mockVectorIndex{}})
		require.Error(t, err)
		assert.Nil(t, server)
		assert.ErrorIs(t, err, ErrMissingAnswerService)
	})

	t.Run("missing index returns error", func(t *testing.T) {
		_, err := NewServer(&Ports{Answer: &mockAnswerService{}})
		assert.ErrorIs(t, err, ErrMissingIndex)
	})

	t.Run("valid ports creates server", func(t *testing.T) {
		server, err := NewServer(&Ports{Answer: &mockAnswerService{}, Index: &mockVectorIndex{}})
		require.NoError(t, err)
		assert.NotNil(t, server)
		assert.NotNil(t, server.Handler())
	})
}

func TestPorts_Validate(t *testing.T) {
	t.Run("empty ports", func(t *testing.T) {
		assert.ErrorIs(t, (&Ports{}).Validate(), ErrMissingAnswerService)
	})

	t.Run("optional ports may be nil", func(t *testing.T) {
		ports := &Ports{Answer: &mockAnswerService{}, Index: &mockVectorIndex{}}
		assert.NoError(t, ports.Validate())
	})
}

func TestServer_ServeStopsOnCancel(t *testing.T) {
	server, err := NewServer(&Ports{Answer: &mockAnswerService{}, Index: &mockVectorIndex{}}, WithVersion("1.2.3"))
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String())
	require.NoError(t, err)
	resp.Body.Close()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestServer_RunHTTP_BadAddress(t *testing.T) {
	server, err := NewServer(&Ports{Answer: &mockAnswerService{}, Index: &mockVectorIndex{}})
	require.NoError(t, err)

	err = server.RunHTTP(context.Background(), "256.0.0.1:http")
	assert.ErrorContains(t, err, "listen on")
}
