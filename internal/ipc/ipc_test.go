package ipc

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCommandRoundTrip(t *testing.T) {
	sock := filepath.Join(t.TempDir(), "ctl.sock")

	received := make(chan ControlMessage, 1)
	err := StartServer(sock, func(msg ControlMessage) Reply {
		received <- msg
		return Reply{OK: true, Msg: "recording"}
	})
	require.NoError(t, err)

	reply, err := SendCommand(sock, "trigger", map[string]string{"lang": "et"})
	require.NoError(t, err)
	require.True(t, reply.OK)
	require.Equal(t, "recording", reply.Msg)

	got := <-received
	require.Equal(t, "trigger", got.Cmd)
	require.Equal(t, "et", got.Args["lang"])
}

func TestSendCommandNoServer(t *testing.T) {
	_, err := SendCommand(filepath.Join(t.TempDir(), "missing.sock"), "trigger", nil)
	require.Error(t, err)
}
