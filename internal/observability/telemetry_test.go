package observability

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestTeeLoggerKeepsOptions(t *testing.T) {
	stdoutCore, stdoutLogs := observer.New(zapcore.InfoLevel)
	exportCore, exportLogs := observer.New(zapcore.InfoLevel)

	base := zap.New(stdoutCore,
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
		zap.Fields(zap.String("service", "test")),
	)
	logger := teeLogger(base, exportCore)

	logger.Info("calculated")
	logger.Error("failed")

	for name, logs := range map[string]*observer.ObservedLogs{"stdout": stdoutLogs, "export": exportLogs} {
		entries := logs.AllUntimed()
		if len(entries) != 2 {
			t.Fatalf("%s: expected 2 entries, got %d", name, len(entries))
		}
		if !entries[0].Caller.Defined {
			t.Fatalf("%s: expected caller annotation", name)
		}
		if entries[1].Stack == "" {
			t.Fatalf("%s: expected stack trace on error entry", name)
		}
	}

	if got := stdoutLogs.AllUntimed()[0].ContextMap()["service"]; got != "test" {
		t.Fatalf("expected service field on stdout entry, got %v", got)
	}
}
