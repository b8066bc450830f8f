package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unkn0wn-root/calcache/calendar"
	"github.com/unkn0wn-root/calcache/internal/config"
)

func testConfig(t *testing.T) config.Config {
	return config.Config{
		Env:        "production",
		TTL:        30 * time.Minute,
		Collection: "cache",
		Backend:    config.BackendSQLite,
		Codec:      "json",
		SQLitePath: filepath.Join(t.TempDir(), "calcache.db"),
		Logger:     "none",
		LogLevel:   "info",
	}
}

func run(t *testing.T, cfg config.Config, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var out, errb bytes.Buffer
	code := Run(context.Background(), cfg, args, IO{
		Stdin:  strings.NewReader(stdin),
		Stdout: &out,
		Stderr: &errb,
	})
	return code, out.String(), errb.String()
}

const lectures = `[
  {"uid": "c220-1", "start": "2024-10-07T09:00:00Z", "end": "2024-10-07T10:00:00Z", "summary": "Compilers", "location": "Huxley 311"},
  {"uid": "c220-2", "start": "2024-10-08T09:00:00+01:00", "summary": "Compilers lab"}
]`

func TestSaveGetHas(t *testing.T) {
	cfg := testConfig(t)

	code, _, _ := run(t, cfg, "", "has", "c220")
	assert.Equal(t, ExitNotFresh, code)

	code, out, errOut := run(t, cfg, lectures, "save", "c220")
	require.Equal(t, ExitOK, code, errOut)
	assert.Contains(t, out, "saved 2 events")

	code, out, _ = run(t, cfg, "", "has", "c220")
	assert.Equal(t, ExitOK, code)
	assert.Equal(t, "fresh\n", out)

	code, out, errOut = run(t, cfg, "", "get", "c220")
	require.Equal(t, ExitOK, code, errOut)
	var got []calendar.Event
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "c220-1", got[0].UID)
	assert.True(t, got[1].Start.Equal(time.Date(2024, 10, 8, 8, 0, 0, 0, time.UTC)))
	assert.True(t, got[1].End.IsZero())
}

func TestGetMissing(t *testing.T) {
	code, _, errOut := run(t, testConfig(t), "", "get", "nope")
	assert.Equal(t, ExitError, code)
	assert.Contains(t, errOut, "not found")
}

func TestDisabledSaveIsNoop(t *testing.T) {
	cfg := testConfig(t)
	cfg.Env = "test"

	code, out, _ := run(t, cfg, lectures, "save", "c220")
	require.Equal(t, ExitOK, code)
	assert.Contains(t, out, "disabled")

	code, _, _ = run(t, cfg, "", "get", "c220")
	assert.Equal(t, ExitError, code)
}

func TestUsageErrors(t *testing.T) {
	cfg := testConfig(t)
	for name, args := range map[string][]string{
		"no args":     nil,
		"missing key": {"get"},
		"unknown cmd": {"purge", "k"},
		"bad flag":    {"-nope", "get", "k"},
		"bad backend": {"-backend", "mongo", "get", "k"},
	} {
		t.Run(name, func(t *testing.T) {
			code, _, _ := run(t, cfg, "", args...)
			assert.Equal(t, ExitUsage, code)
		})
	}

	code, _, _ := run(t, cfg, "not json", "save", "k")
	assert.Equal(t, ExitUsage, code)
}

func TestSaveRejectsInvalidEvent(t *testing.T) {
	code, _, errOut := run(t, testConfig(t), `[{"uid": "", "start": "2024-10-07T09:00:00Z"}]`, "save", "k")
	assert.Equal(t, ExitError, code)
	assert.Contains(t, errOut, "uid")
}

func TestFlagsOverrideConfig(t *testing.T) {
	cfg := testConfig(t)
	code, _, errOut := run(t, cfg, lectures, "-collection", "timetables", "save", "c220")
	require.Equal(t, ExitOK, code, errOut)

	code, _, _ = run(t, cfg, "", "get", "c220")
	assert.Equal(t, ExitError, code, "default collection must not see the record")

	code, _, _ = run(t, cfg, "", "-collection", "timetables", "get", "c220")
	assert.Equal(t, ExitOK, code)
}
