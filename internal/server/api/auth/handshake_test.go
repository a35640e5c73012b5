package auth

import (
	"bufio"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmikit/rmitouch/apitypes"
)

type handshakeResult struct {
	clientNonce []byte
	serverNonce []byte
	err         error
}

func runHandshake(t *testing.T, clientKey, serverKey []byte) (client, server handshakeResult) {
	t.Helper()

	cConn, sConn := net.Pipe()
	defer cConn.Close()
	defer sConn.Close()

	serverDone := make(chan handshakeResult, 1)
	go func() {
		cn, sn, err := HandleAuthHandshake(bufio.NewReader(sConn), sConn, serverKey, false)
		serverDone <- handshakeResult{cn, sn, err}
		if err != nil {
			// Mirror the API server: report and drop the connection.
			_ = sConn.Close()
		}
	}()

	cn, sn, err := HandleAuthHandshake(bufio.NewReader(cConn), cConn, clientKey, true)
	client = handshakeResult{cn, sn, err}
	server = <-serverDone
	return client, server
}

func TestHandshakeMatchingKeys(t *testing.T) {
	key, err := DeriveKey("hunter2")
	require.NoError(t, err)

	client, server := runHandshake(t, key, key)
	require.NoError(t, client.err)
	require.NoError(t, server.err)

	assert.Equal(t, client.clientNonce, server.clientNonce)
	assert.Equal(t, client.serverNonce, server.serverNonce)
	assert.Len(t, client.clientNonce, NonceSize)
	assert.NotEqual(t, client.clientNonce, client.serverNonce)
}

func TestHandshakeWrongKey(t *testing.T) {
	serverKey, err := DeriveKey("hunter2")
	require.NoError(t, err)
	clientKey, err := DeriveKey("wrong")
	require.NoError(t, err)

	client, server := runHandshake(t, clientKey, serverKey)
	require.Error(t, server.err)
	var apiErr apitypes.ApiError
	require.ErrorAs(t, server.err, &apiErr)
	assert.Equal(t, 401, apiErr.Status)

	require.Error(t, client.err)
}

func TestHandshakeMissingKey(t *testing.T) {
	_, _, err := HandleAuthHandshake(bufio.NewReader(nil), nil, nil, false)
	require.Error(t, err)
}
