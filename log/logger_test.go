package log

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestLevelFilter(t *testing.T) {
	buf := &bytes.Buffer{}
	SetOutput(buf)
	defer SetOutput(os.Stderr)
	SetMinLevel(LInfo)
	defer SetMinLevel(LProgress)

	Debugf("hidden %d", 1)
	Printf("[progress] hidden too")
	Warnf("visible %d", 2)
	Println("[info] also visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("debug/progress line not filtered:", out)
	}
	if !strings.Contains(out, "[warn] visible 2") {
		t.Error("warn line missing:", out)
	}
	if !strings.Contains(out, "[info] also visible") {
		t.Error("info line missing:", out)
	}
}

func TestUnleveledLinesPass(t *testing.T) {
	buf := &bytes.Buffer{}
	SetOutput(buf)
	defer SetOutput(os.Stderr)
	SetMinLevel(LFatal)
	defer SetMinLevel(LProgress)

	Println("plain message")
	if !strings.Contains(buf.String(), "plain message") {
		t.Error(buf.String())
	}
}
