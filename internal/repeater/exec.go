package repeater

import (
	"bytes"
	"io"
	"os/exec"
	"strconv"
)

// ExecDispatcher hands requests to an external command: the raw bytes go to
// its stdin and the transport coordinates are appended as trailing arguments
// (host, port, useHTTPS, and — for the labeled form — label). A non-zero
// exit is a rejected send, which lets Deliver fall back to other routes.
type ExecDispatcher struct {
	Command string
	// Args are fixed leading arguments placed before the transport arguments.
	Args   []string
	Stderr io.Writer
}

func (d ExecDispatcher) Send(host string, port int, useHTTPS bool, raw []byte, label string) error {
	return d.run(raw, append(d.argv(host, port, useHTTPS), label))
}

func (d ExecDispatcher) SendUnlabeled(host string, port int, useHTTPS bool, raw []byte) error {
	return d.run(raw, d.argv(host, port, useHTTPS))
}

func (d ExecDispatcher) argv(host string, port int, useHTTPS bool) []string {
	args := append([]string(nil), d.Args...)
	return append(args, host, strconv.Itoa(port), strconv.FormatBool(useHTTPS))
}

func (d ExecDispatcher) run(raw []byte, args []string) error {
	cmd := exec.Command(d.Command, args...)
	cmd.Stdin = bytes.NewReader(raw)
	cmd.Stderr = d.Stderr
	return cmd.Run()
}
