package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"spoken-answer/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	rq := require.New(t)
	t.Setenv("AZURE_SPEECH_KEY", "")
	t.Setenv("AZURE_SPEECH_REGION", "")

	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	rq.NoError(err)

	rq.Equal("http", cfg.Audio.Source)
	rq.Equal(":8080", cfg.Audio.HTTPAddr)
	rq.Equal(16000, cfg.Audio.SampleRate)
	rq.Equal(config.ProviderAzure, cfg.STT.Provider)
	rq.Equal([]string{"en-US"}, cfg.Azure.Locales)
	rq.Equal(10*time.Minute, cfg.CacheTTL())
	rq.Equal("info", cfg.Log.Level)

	rq.ErrorContains(cfg.Validate(), "AZURE_SPEECH_KEY")
}

func TestLoad_YAMLWithEnvExpansionAndOverlay(t *testing.T) {
	rq := require.New(t)
	t.Setenv("ANSWER_DIR", "/tmp/answers")
	t.Setenv("AZURE_SPEECH_KEY", "from-env")
	t.Setenv("AZURE_SPEECH_REGION", "")

	path := writeConfig(t, `
audio:
  source: file
  file_dir: ${ANSWER_DIR}
azure:
  key: from-yaml
  region: westeurope
cache:
  ttl: 0s
log:
  level: debug
  format: json
`)

	cfg, err := config.Load(path)
	rq.NoError(err)

	rq.Equal("file", cfg.Audio.Source)
	rq.Equal("/tmp/answers", cfg.Audio.FileDir)
	rq.Equal("from-env", cfg.Azure.Key)
	rq.Equal("westeurope", cfg.Azure.Region)
	rq.Equal(time.Duration(0), cfg.CacheTTL())
	rq.Equal("json", cfg.Log.Format)
	rq.NoError(cfg.Validate())
}

func TestConfig_Validate(t *testing.T) {
	testCases := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{name: "none provider", yaml: "stt:\n  provider: none\n"},
		{name: "openai without key", yaml: "stt:\n  provider: openai\n", wantErr: "OPENAI_API_KEY"},
		{name: "unknown provider", yaml: "stt:\n  provider: google\n", wantErr: "unknown stt provider"},
		{name: "bad ttl", yaml: "stt:\n  provider: none\ncache:\n  ttl: soon\n", wantErr: "invalid cache ttl"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("OPENAI_API_KEY", "")

			cfg, err := config.Load(writeConfig(t, tc.yaml))
			require.NoError(t, err)

			err = cfg.Validate()
			if tc.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := config.Load(writeConfig(t, "audio: [unterminated"))
	require.ErrorContains(t, err, "parsing config")
}
