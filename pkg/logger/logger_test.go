package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestSetupLevels(t *testing.T) {
	var buf bytes.Buffer
	cleanup := Setup(Config{Writer: &buf})
	L().Debug("hidden.event")
	L().Info("shown.event", "k", 1)
	cleanup()

	out := buf.String()
	if strings.Contains(out, "hidden.event") {
		t.Error("debug record written at info level")
	}
	if !strings.Contains(out, "msg=shown.event") || !strings.Contains(out, "k=1") {
		t.Errorf("info record missing: %q", out)
	}

	buf.Reset()
	cleanup = Setup(Config{Writer: &buf, Debug: true, JSON: true})
	L().Debug("debug.event")
	cleanup()
	if !strings.Contains(buf.String(), `"msg":"debug.event"`) {
		t.Errorf("debug JSON record missing: %q", buf.String())
	}
}

func TestCleanupRestoresDiscard(t *testing.T) {
	var buf bytes.Buffer
	cleanup := Setup(Config{Writer: &buf})
	cleanup()
	L().Info("after.cleanup")
	if buf.Len() != 0 {
		t.Errorf("logged after cleanup: %q", buf.String())
	}
}
