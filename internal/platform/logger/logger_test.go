package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = func() time.Time { return time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC) }

func TestStdLogger_TextIsSortedAndFiltered(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Level: Info, Writer: &buf, App: "petvax", Now: fixedNow})

	log.Debug("hidden", nil)
	log.With(Fields{"request_id": "r-1"}).Info("pet created", Fields{"pet_id": "p-1"})

	out := strings.TrimSpace(buf.String())
	assert.Equal(t,
		"app=petvax level=info msg=pet created pet_id=p-1 request_id=r-1 ts=2025-01-10T12:00:00Z",
		out,
	)
}

func TestStdLogger_JSONRendersErrors(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Level: Debug, Format: FormatJSON, Writer: &buf, Now: fixedNow})

	log.Error("authorize failed", Fields{"error": errors.New("boom")})

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "boom", entry["error"])
}

func TestParseLevelAndFormat(t *testing.T) {
	assert.Equal(t, Warn, ParseLevel("WARNING"))
	assert.Equal(t, Info, ParseLevel("verbose"))
	assert.Equal(t, FormatJSON, ParseFormat(" JSON "))
	assert.Equal(t, FormatText, ParseFormat(""))
}

func TestNop_WritesNothing(t *testing.T) {
	log := Nop()
	log.Error("ignored", nil)
	log.With(Fields{"a": 1}).Info("ignored", nil)
}
