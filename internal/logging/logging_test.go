package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatalf("decode %q: %v", buf.String(), err)
	}
	return m
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"ERROR":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestHandler_RedactsSensitiveKeys(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewHandler(&buf, slog.LevelInfo))

	log.Info("login", "username", "admin", "password", "hunter2", "access_token", "abc", "Authorization", "Bearer x")

	m := decodeLine(t, &buf)
	if m["username"] != "admin" {
		t.Errorf("username = %v", m["username"])
	}
	for _, k := range []string{"password", "access_token", "Authorization"} {
		if m[k] != redacted {
			t.Errorf("%s = %v, want redacted", k, m[k])
		}
	}
}

func TestHandler_ErrorCarriesStacktrace(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewHandler(&buf, slog.LevelInfo))

	log.Error("boom")

	if _, ok := decodeLine(t, &buf)["stacktrace"]; !ok {
		t.Error("expected stacktrace on ERROR record")
	}
}

func TestHandler_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewHandler(&buf, slog.LevelWarn))

	log.Info("ignored")
	if buf.Len() != 0 {
		t.Errorf("expected INFO to be dropped, got %s", buf.String())
	}
}
