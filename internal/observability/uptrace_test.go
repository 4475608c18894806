package observability

import (
	"context"
	"testing"

	"github.com/jsvanda/infoboard/internal/config"
	"github.com/jsvanda/infoboard/internal/platform/logging"
)

func TestInitUptrace_DisabledIsNoop(t *testing.T) {
	t.Parallel()

	shutdown, err := InitUptrace(config.Config{UptraceEnabled: false}, logging.NewNop())
	if err != nil {
		t.Fatalf("InitUptrace: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

func TestInitUptrace_EnabledWithoutDSNIsNoop(t *testing.T) {
	t.Parallel()

	shutdown, err := InitUptrace(config.Config{UptraceEnabled: true, UptraceDSN: "  "}, logging.NewNop())
	if err != nil {
		t.Fatalf("InitUptrace: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}
