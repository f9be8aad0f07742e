//go:build e2e
// +build e2e

package e2e_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/jsphweid/accompanist/cmd"
	"github.com/jsphweid/accompanist/config"
	"github.com/jsphweid/accompanist/musicxml"
	"github.com/jsphweid/accompanist/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var server *httptest.Server

func TestMain(m *testing.M) {
	server = httptest.NewServer(cmd.NewRouter())
	exitVal := m.Run()
	server.Close()
	os.Exit(exitVal)
}

func TestCMajorOverHTTP(t *testing.T) {
	f, err := os.Open(filepath.Join("testdata", "cmajor.musicxml"))
	require.NoError(t, err)
	defer f.Close()

	resp, err := http.Post(server.URL+"/accompaniment", "application/xml", f)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert := assert.New(t)
	assert.Equal(200, resp.StatusCode)

	combined, err := musicxml.Read(resp.Body)
	require.NoError(t, err)
	require.Len(t, combined.Parts, 2)
	assert.Equal("Piano", combined.Parts[1].Name)
	assert.Len(combined.Parts[1].Measures, 2)
}

// TestFullRun needs pdftoppm and oemer installed plus a sample at
// ACCOMPANIST_E2E_INPUT.
func TestFullRun(t *testing.T) {
	input := os.Getenv("ACCOMPANIST_E2E_INPUT")
	if input == "" {
		t.Skip("ACCOMPANIST_E2E_INPUT not set")
	}
	cfg := config.Load()
	for _, tool := range []string{cfg.PdftoppmCommand, cfg.OMRCommand} {
		if _, err := exec.LookPath(tool); err != nil {
			t.Skipf("%s not installed", tool)
		}
	}

	driver, err := pipeline.New(cfg)
	require.NoError(t, err)

	dir := t.TempDir()
	opts := pipeline.DefaultOptions()
	opts.Input = input
	opts.MidiPath = filepath.Join(dir, "output.mid")
	opts.XMLPath = filepath.Join(dir, "output_with_accompaniment.musicxml")
	opts.Isolate = true
	opts.WorkDir = dir

	res, err := driver.Run(context.Background(), opts)
	require.NoError(t, err)
	assert.FileExists(t, res.MidiPath)
	assert.FileExists(t, res.XMLPath)
	assert.Equal(t, res.Measures, res.Chords+res.Rests)
}
