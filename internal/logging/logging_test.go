package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestLoggerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LevelWarn, "")
	l.Infof("hidden %d", 1)
	l.Debugf("hidden %d", 2)
	l.Warnf("shown %d", 3)
	l.Errorf("shown %d", 4)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("filtered messages leaked: %q", out)
	}
	if !strings.Contains(out, "WARN shown 3") || !strings.Contains(out, "ERROR shown 4") {
		t.Fatalf("missing messages: %q", out)
	}

	buf.Reset()
	l.SetLevel(LevelDebug)
	l.Debugf("now visible")
	if !strings.Contains(buf.String(), "DEBUG now visible") {
		t.Fatalf("debug message missing after SetLevel: %q", buf.String())
	}
}

func TestNilLoggerIsSilent(t *testing.T) {
	var l *Logger
	l.Infof("nothing")
	l.SetLevel(LevelDebug)
	if l.Level() != LevelError {
		t.Fatalf("unexpected nil logger level: %s", l.Level())
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"error":   LevelError,
		"WARN":    LevelWarn,
		"warning": LevelWarn,
		"":        LevelInfo,
		" debug ": LevelDebug,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Fatalf("ParseLevel(%q) = %s, %v", in, got, err)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatal("expected unknown level error")
	}
}

func TestSetIgnoresNil(t *testing.T) {
	before := Get()
	Set(nil)
	if Get() != before {
		t.Fatal("Set(nil) replaced the default logger")
	}
	var buf bytes.Buffer
	replacement := New(&buf, LevelInfo, "")
	Set(replacement)
	t.Cleanup(func() { Set(before) })
	Get().Infof("hello")
	if !strings.Contains(buf.String(), "INFO hello") {
		t.Fatalf("replacement logger not used: %q", buf.String())
	}
}
