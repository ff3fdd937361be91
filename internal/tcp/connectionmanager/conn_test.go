package connectionmanager

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"io"
	"net"
	"testing"

	"gitlab.com/fcv-judge.net/internal/adapter/logging"
	"gitlab.com/fcv-judge.net/internal/handlers/response"
	"gitlab.com/fcv-judge.net/internal/tcp/defs"
)

func TestSendAndReadMessage(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	go func() {
		_ = SendMessage(client, defs.MsgRunRequest, []byte(`{"language":"python"}`))
	}()

	msgType, payload, err := ReadMessage(server)
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	if msgType != defs.MsgRunRequest {
		t.Errorf("type = %#x, want %#x", msgType, defs.MsgRunRequest)
	}
	if string(payload) != `{"language":"python"}` {
		t.Errorf("payload = %q", payload)
	}
}

func TestSendMessage_HeaderLayout(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	go func() {
		_ = SendMessage(client, defs.MsgSubmitResult, []byte("abc"))
	}()

	frame := make([]byte, defs.HeaderSize+3)
	if _, err := io.ReadFull(server, frame); err != nil {
		t.Fatal(err)
	}
	if got := binary.BigEndian.Uint16(frame[0:2]); got != defs.MagicNumber {
		t.Errorf("magic = %#x", got)
	}
	if frame[2] != defs.MsgSubmitResult || frame[3] != 0 {
		t.Errorf("type/reserved = %#x/%#x", frame[2], frame[3])
	}
	if got := binary.BigEndian.Uint32(frame[4:8]); got != 3 {
		t.Errorf("length = %d", got)
	}
	if string(frame[8:]) != "abc" {
		t.Errorf("payload = %q", frame[8:])
	}
}

func TestReadMessage_EmptyPayload(t *testing.T) {
	header := make([]byte, defs.HeaderSize)
	binary.BigEndian.PutUint16(header[0:2], defs.MagicNumber)
	header[2] = defs.MsgRunRequest

	msgType, payload, err := ReadMessage(bytes.NewReader(header))
	if err != nil {
		t.Fatal(err)
	}
	if msgType != defs.MsgRunRequest || len(payload) != 0 {
		t.Errorf("got %#x %q", msgType, payload)
	}
}

func TestReadMessage_InvalidMagic(t *testing.T) {
	header := []byte{0xBE, 0xEF, defs.MsgRunRequest, 0, 0, 0, 0, 0}

	_, _, err := ReadMessage(bytes.NewReader(header))
	if !errors.Is(err, ErrInvalidMagic) {
		t.Fatalf("err = %v, want ErrInvalidMagic", err)
	}
}

func TestReadMessage_PayloadTooLarge(t *testing.T) {
	header := make([]byte, defs.HeaderSize)
	binary.BigEndian.PutUint16(header[0:2], defs.MagicNumber)
	binary.BigEndian.PutUint32(header[4:8], defs.MaxPayloadSize+1)

	_, _, err := ReadMessage(bytes.NewReader(header))
	if !errors.Is(err, ErrPayloadTooLarge) {
		t.Fatalf("err = %v, want ErrPayloadTooLarge", err)
	}
}

func TestReadMessage_TruncatedPayload(t *testing.T) {
	header := make([]byte, defs.HeaderSize)
	binary.BigEndian.PutUint16(header[0:2], defs.MagicNumber)
	binary.BigEndian.PutUint32(header[4:8], 10)

	_, _, err := ReadMessage(bytes.NewReader(append(header, "short"...)))
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("err = %v, want ErrUnexpectedEOF", err)
	}
}

func TestSendErrorMessage(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	go func() {
		_ = SendErrorMessage(client, response.TypeInvalidRequest, "bad frame")
	}()

	msgType, payload, err := ReadMessage(server)
	if err != nil {
		t.Fatal(err)
	}
	if msgType != defs.MsgError {
		t.Fatalf("type = %#x", msgType)
	}

	var failure response.Failure
	if err := json.Unmarshal(payload, &failure); err != nil {
		t.Fatal(err)
	}
	if failure.Success || failure.Type != response.TypeInvalidRequest || failure.Message != "bad frame" {
		t.Errorf("failure = %+v", failure)
	}
}

func TestConnectionManager_RegisterAndCloseAll(t *testing.T) {
	cm := NewConnectionManager(logging.NewNopLogger())

	a, aPeer := net.Pipe()
	b, bPeer := net.Pipe()
	defer aPeer.Close()
	defer bPeer.Close()

	idA := cm.Register(a)
	idB := cm.Register(b)
	if idA == idB {
		t.Fatal("connection ids must be unique")
	}
	if cm.Count() != 2 {
		t.Fatalf("Count = %d", cm.Count())
	}

	cm.Remove(idA)
	if cm.Count() != 1 {
		t.Fatalf("Count after Remove = %d", cm.Count())
	}

	cm.CloseAll()
	if cm.Count() != 0 {
		t.Fatalf("Count after CloseAll = %d", cm.Count())
	}
	if _, err := b.Write([]byte("x")); err == nil {
		t.Error("write on closed connection succeeded")
	}
	a.Close()
}
