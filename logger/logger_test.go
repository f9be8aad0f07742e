package logger

import (
	"bytes"
	"errors"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func captureLog(t *testing.T) *bytes.Buffer {
	var buf bytes.Buffer
	flags, out := log.Flags(), log.Writer()
	log.SetOutput(&buf)
	log.SetFlags(0)
	t.Cleanup(func() {
		log.SetOutput(out)
		log.SetFlags(flags)
	})
	return &buf
}

func TestFormatFields(t *testing.T) {
	assert := assert.New(t)
	assert.Equal("", formatFields(nil))
	assert.Equal(" {a=1, b=x, c=0.50}", formatFields(Fields{"b": "x", "a": 1, "c": 0.5}))
	assert.Equal(" {took=1.5s}", formatFields(Fields{"took": 1500 * time.Millisecond}))
}

func TestLevels(t *testing.T) {
	buf := captureLog(t)

	Info("rendered", Fields{"pages": 2})
	Warn("slow", nil)
	Error("failed", errors.New("boom"), Fields{"stage": "recognize"})

	out := buf.String()
	assert.Contains(t, out, "[INFO] rendered {pages=2}\n")
	assert.Contains(t, out, "[WARN] slow\n")
	assert.Contains(t, out, "[ERROR] failed: boom {stage=recognize}\n")
}

func TestInitWithoutDSN(t *testing.T) {
	flush, err := Init("", "development", "test")
	assert.NoError(t, err)
	flush()
}
