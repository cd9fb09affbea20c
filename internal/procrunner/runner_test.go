package procrunner

import (
	"strings"
	"testing"
	"time"
)

func TestRunCapturesStdout(t *testing.T) {
	res := Run("echo", []string{"hello"}, Options{}, nil)
	if res.SpawnError != nil {
		t.Fatalf("unexpected spawn error: %v", res.SpawnError)
	}
	if res.ExitCode != 0 {
		t.Fatalf("exit code = %d, want 0", res.ExitCode)
	}
	if strings.TrimSpace(string(res.Stdout)) != "hello" {
		t.Fatalf("stdout = %q, want hello", res.Stdout)
	}
}

func TestRunStreamsChunks(t *testing.T) {
	var chunks [][]byte
	res := Run("echo", []string{"streamed"}, Options{
		OnStdout: func(c []byte) {
			cp := make([]byte, len(c))
			copy(cp, c)
			chunks = append(chunks, cp)
		},
	}, nil)
	if res.SpawnError != nil {
		t.Fatalf("unexpected spawn error: %v", res.SpawnError)
	}
	if len(chunks) == 0 {
		t.Fatal("expected at least one streamed chunk")
	}
}

func TestRunSpawnErrorNotFound(t *testing.T) {
	res := Run("definitely-not-a-real-binary-xyz", nil, Options{}, nil)
	if res.SpawnError == nil {
		t.Fatal("expected spawn error for missing binary")
	}
	if !IsNotFound(res.SpawnError) {
		t.Fatalf("expected IsNotFound, got %v", res.SpawnError)
	}
}

func TestRunTimeout(t *testing.T) {
	res := Run("sleep", []string{"10"}, Options{Timeout: 50 * time.Millisecond}, nil)
	if !res.TimedOut {
		t.Fatal("expected TimedOut = true")
	}
}

func TestRunAbort(t *testing.T) {
	h := &Handle{}
	done := make(chan Result, 1)
	go func() {
		done <- Run("sleep", []string{"10"}, Options{Timeout: 10 * time.Second}, h)
	}()
	time.Sleep(50 * time.Millisecond)
	h.Abort()
	select {
	case res := <-done:
		if !res.TimedOut {
			t.Fatal("expected abort to report as TimedOut")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after Abort")
	}
}
