// Package ipc is the unix-socket control channel between the daemon
// and the ctl tool.
package ipc

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
)

const DefaultSocketPath = "/tmp/sitevoice.sock"

// ControlMessage is one command from the ctl tool.
type ControlMessage struct {
	Cmd  string            `json:"cmd"`
	Args map[string]string `json:"args,omitempty"`
}

// Reply is the daemon's answer.
type Reply struct {
	OK  bool   `json:"ok"`
	Msg string `json:"msg,omitempty"`
}

func StartServer(socketPath string, handler func(ControlMessage) Reply) error {
	os.Remove(socketPath)

	ln, err := net.Listen("unix", socketPath)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				continue
			}
			go handleConn(conn, handler)
		}
	}()

	return nil
}

func handleConn(conn net.Conn, handler func(ControlMessage) Reply) {
	defer conn.Close()

	var msg ControlMessage
	dec := json.NewDecoder(conn)
	if err := dec.Decode(&msg); err != nil {
		return
	}

	reply := handler(msg)

	enc := json.NewEncoder(conn)
	_ = enc.Encode(reply)
}

func SendCommand(socketPath, cmd string, args map[string]string) (*Reply, error) {
	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	enc := json.NewEncoder(conn)
	if err := enc.Encode(ControlMessage{Cmd: cmd, Args: args}); err != nil {
		return nil, err
	}

	var reply Reply
	dec := json.NewDecoder(conn)
	if err := dec.Decode(&reply); err != nil {
		return nil, err
	}
	return &reply, nil
}
