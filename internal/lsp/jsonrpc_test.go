package lsp

import (
	"bufio"
	"bytes"
	"strings"
	"testing"
)

func TestJSONRPCFramingMultipleMessages(t *testing.T) {
	var buf bytes.Buffer
	msg1 := []byte(`{"jsonrpc":"2.0","method":"one"}`)
	msg2 := []byte(`{"jsonrpc":"2.0","method":"two"}`)

	if err := writeMessage(&buf, msg1); err != nil {
		t.Fatalf("write message 1: %v", err)
	}
	if err := writeMessage(&buf, msg2); err != nil {
		t.Fatalf("write message 2: %v", err)
	}

	reader := bufio.NewReader(bytes.NewReader(buf.Bytes()))
	for i, want := range [][]byte{msg1, msg2} {
		got, err := readMessage(reader)
		if err != nil {
			t.Fatalf("read message %d: %v", i+1, err)
		}
		if !bytes.Equal(got, want) {
			t.Fatalf("unexpected message %d: %s", i+1, got)
		}
	}
}

func TestJSONRPCHeaderErrors(t *testing.T) {
	for _, in := range []string{
		"Content-Type: application/json\r\n\r\n{}",
		"Content-Length: nope\r\n\r\n{}",
		"content-length: 999999999999\r\n\r\n",
	} {
		if _, err := readMessage(bufio.NewReader(strings.NewReader(in))); err == nil {
			t.Errorf("readMessage(%q) succeeded, want error", in)
		}
	}
}
