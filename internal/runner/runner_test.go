package runner

import (
	"context"
	"testing"
	"time"
)

func TestRunCapturesStdoutAndExitCode(t *testing.T) {
	res, err := Run(context.Background(), time.Second, "/bin/sh", []string{"-c", "echo hello; exit 3"})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if string(res.Stdout) != "hello\n" {
		t.Errorf("Stdout = %q, want %q", res.Stdout, "hello\n")
	}
	if res.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", res.ExitCode)
	}
}

func TestRunCapturesStderr(t *testing.T) {
	res, err := Run(context.Background(), time.Second, "/bin/sh", []string{"-c", "echo oops 1>&2"})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if string(res.Stderr) != "oops\n" {
		t.Errorf("Stderr = %q, want %q", res.Stderr, "oops\n")
	}
}

func TestRunTimesOut(t *testing.T) {
	_, err := Run(context.Background(), 50*time.Millisecond, "/bin/sh", []string{"-c", "sleep 5"})
	if err != context.DeadlineExceeded {
		t.Fatalf("err = %v, want context.DeadlineExceeded", err)
	}
}

func TestTimeoutCapsAtMax(t *testing.T) {
	if got := Timeout(0); got != MaxTimeout {
		t.Errorf("Timeout(0) = %v, want %v", got, MaxTimeout)
	}
	if got := Timeout(time.Hour); got != MaxTimeout {
		t.Errorf("Timeout(1h) = %v, want %v", got, MaxTimeout)
	}
	if got := Timeout(5 * time.Second); got != 5*time.Second {
		t.Errorf("Timeout(5s) = %v, want 5s", got)
	}
}
