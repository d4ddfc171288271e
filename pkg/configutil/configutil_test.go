package configutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Host     string `json:"host"`
	Username string `json:"username"`
	Smtp     struct {
		Port int `json:"port"`
	} `json:"smtp"`
}

func write(t testing.TB, path, contents string) {
	err := os.WriteFile(path, []byte(contents), 0600)
	if err != nil {
		t.Fatal(err)
	}
}

func TestLocalPath(t *testing.T) {
	require.Equal(t, "a/iserv.local.json5", localPath("a/iserv.json5"))
	require.Equal(t, "iserv.local", localPath("iserv"))
}

func TestReadConfigMergesLocal(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "iserv.json5"), `{
		// comments are allowed
		host: "school.example",
		username: "max.mustermann",
		smtp: { port: 465 },
	}`)
	write(t, filepath.Join(dir, "iserv.local.json5"), `{ username: "erika.musterfrau" }`)

	cfg, err := ReadConfig[testConfig](filepath.Join(dir, "iserv.json5"))
	require.NoError(t, err)
	require.Equal(t, "school.example", cfg.Host)
	require.Equal(t, "erika.musterfrau", cfg.Username)
	require.Equal(t, 465, cfg.Smtp.Port)
}

func TestReadConfigMissing(t *testing.T) {
	_, err := ReadConfig[testConfig](filepath.Join(t.TempDir(), "iserv.json5"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestReadConfigInvalid(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "iserv.json5"), `{ host: `)

	_, err := ReadConfig[testConfig](filepath.Join(dir, "iserv.json5"))
	require.Error(t, err)
	require.NotErrorIs(t, err, os.ErrNotExist)
}
