package tcp

import (
	"context"
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/google/uuid"

	"gitlab.com/fcv-judge.net/internal/adapter/logging"
	"gitlab.com/fcv-judge.net/internal/core/services/execution"
	"gitlab.com/fcv-judge.net/internal/domain"
	"gitlab.com/fcv-judge.net/internal/handlers/exec"
	"gitlab.com/fcv-judge.net/internal/handlers/response"
	"gitlab.com/fcv-judge.net/internal/tcp/connectionmanager"
	"gitlab.com/fcv-judge.net/internal/tcp/defs"
)

type stubService struct{}

var _ execution.IExecutionService = stubService{}

func (stubService) Run(_ context.Context, _ domain.Language, code, input string) (*domain.ExecutionResult, error) {
	if code == "crash" {
		return nil, domain.NewExecutionError(domain.FailureRuntimeError, "Traceback (most recent call last)")
	}
	return &domain.ExecutionResult{Stdout: input, Duration: 5 * time.Millisecond}, nil
}

func (stubService) Submit(_ context.Context, _ domain.Language, _ string, cases []domain.TestCase) (*domain.JudgeResult, error) {
	return &domain.JudgeResult{
		Verdict:            domain.VerdictWrongAnswer,
		FailedTestCase:     len(cases),
		TestCaseCount:      len(cases),
		MaxExecutionTime:   3 * time.Millisecond,
		TotalExecutionTime: 9 * time.Millisecond,
	}, nil
}

func (stubService) GetJudgement(context.Context, uuid.UUID) (*domain.Judgement, error) {
	return nil, nil
}

func (stubService) ListJudgements(context.Context, int) ([]*domain.Judgement, error) {
	return nil, nil
}

func startServer(t *testing.T) (*TCPServer, net.Conn) {
	t.Helper()
	logger := logging.NewNopLogger()
	server := NewTCPServer(exec.NewBoundary(stubService{}, logger), logger, WithAddress("127.0.0.1:0"))
	if err := server.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	conn, err := net.Dial("tcp", server.Addr().String())
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	_ = conn.SetDeadline(time.Now().Add(5 * time.Second))

	t.Cleanup(func() {
		conn.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := server.Stop(ctx); err != nil {
			t.Errorf("Stop: %v", err)
		}
	})
	return server, conn
}

func roundTrip(t *testing.T, conn net.Conn, msgType byte, body string) (byte, map[string]interface{}) {
	t.Helper()
	if err := connectionmanager.SendMessage(conn, msgType, []byte(body)); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	replyType, payload, err := connectionmanager.ReadMessage(conn)
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	var reply map[string]interface{}
	if err := json.Unmarshal(payload, &reply); err != nil {
		t.Fatalf("invalid reply %q: %v", payload, err)
	}
	return replyType, reply
}

func TestTCPServer_Run(t *testing.T) {
	_, conn := startServer(t)

	replyType, reply := roundTrip(t, conn, defs.MsgRunRequest, `{"language":"python","code":"x","input":"42"}`)
	if replyType != defs.MsgRunResult {
		t.Fatalf("reply type = %#x", replyType)
	}
	if reply["success"] != true || reply["output"] != "42" || reply["executionTime"] != float64(5) {
		t.Errorf("reply = %v", reply)
	}
}

func TestTCPServer_RunFailureKeepsDiagnostics(t *testing.T) {
	_, conn := startServer(t)

	replyType, reply := roundTrip(t, conn, defs.MsgRunRequest, `{"language":"python","code":"crash"}`)
	if replyType != defs.MsgRunResult {
		t.Fatalf("reply type = %#x", replyType)
	}
	if reply["success"] != false || reply["type"] != string(domain.FailureRuntimeError) {
		t.Errorf("reply = %v", reply)
	}
	if reply["message"] != "Traceback (most recent call last)" {
		t.Errorf("message = %v", reply["message"])
	}
}

func TestTCPServer_SubmitOnPersistentConnection(t *testing.T) {
	_, conn := startServer(t)

	for i := 0; i < 3; i++ {
		replyType, reply := roundTrip(t, conn, defs.MsgSubmitRequest,
			`{"language":"cpp","code":"x","testCases":[{"input":"1","output":"1"},{"input":"2","output":"3"}]}`)
		if replyType != defs.MsgSubmitResult {
			t.Fatalf("reply type = %#x", replyType)
		}
		if reply["verdict"] != string(domain.VerdictWrongAnswer) || reply["failedTestCase"] != float64(2) {
			t.Errorf("reply = %v", reply)
		}
	}
}

func TestTCPServer_UnknownTypeKeepsConnection(t *testing.T) {
	_, conn := startServer(t)

	replyType, reply := roundTrip(t, conn, 0x42, `{}`)
	if replyType != defs.MsgError {
		t.Fatalf("reply type = %#x", replyType)
	}
	if reply["type"] != response.TypeInvalidRequest {
		t.Errorf("reply = %v", reply)
	}

	replyType, _ = roundTrip(t, conn, defs.MsgRunRequest, `{"language":"javascript","code":"x"}`)
	if replyType != defs.MsgRunResult {
		t.Fatalf("connection not usable after unknown type, got %#x", replyType)
	}
}

func TestTCPServer_InvalidPayload(t *testing.T) {
	_, conn := startServer(t)

	replyType, reply := roundTrip(t, conn, defs.MsgSubmitRequest, `not json`)
	if replyType != defs.MsgError {
		t.Fatalf("reply type = %#x", replyType)
	}
	if reply["type"] != response.TypeInvalidRequest {
		t.Errorf("reply = %v", reply)
	}
}

func TestTCPServer_EmptyTestCases(t *testing.T) {
	_, conn := startServer(t)

	replyType, reply := roundTrip(t, conn, defs.MsgSubmitRequest, `{"language":"python","code":"x","testCases":[]}`)
	if replyType != defs.MsgSubmitResult {
		t.Fatalf("reply type = %#x", replyType)
	}
	if reply["success"] != false || reply["type"] != response.TypeInvalidRequest {
		t.Errorf("reply = %v", reply)
	}
}

func TestTCPServer_StopClosesClients(t *testing.T) {
	server, conn := startServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := server.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	if _, _, err := connectionmanager.ReadMessage(conn); err == nil {
		t.Fatal("expected read to fail after Stop")
	}
}
