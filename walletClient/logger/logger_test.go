package logger

import (
	"bytes"
	"regexp"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/pushchain/push-wallet-connect/walletClient/config"
)

func TestInitVariants(t *testing.T) {
	t.Run("json format logs expected fields", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewWithWriter(&buf, int(zerolog.InfoLevel), "json", false)

		logger.Info().Str("key", "value").Msg("json_test")

		logOutput := buf.String()
		require.Contains(t, logOutput, `"message":"json_test"`)
		require.Contains(t, logOutput, `"key":"value"`)
	})

	t.Run("console format logs human readable output", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewWithWriter(&buf, int(zerolog.DebugLevel), "console", false)

		logger.Debug().Str("env", "test").Msg("console_log")

		logOutput := stripANSI(buf.String())
		require.Contains(t, logOutput, "console_log")
		require.Contains(t, logOutput, "env=test")
	})

	t.Run("level filter drops debug", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewWithWriter(&buf, int(zerolog.WarnLevel), "json", false)

		logger.Info().Msg("hidden")
		logger.Warn().Msg("shown")

		require.NotContains(t, buf.String(), "hidden")
		require.Contains(t, buf.String(), "shown")
	})

	t.Run("sampler reduces output frequency", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewWithWriter(&buf, int(zerolog.InfoLevel), "json", true)

		for i := 0; i < 20; i++ {
			logger.Info().Int("count", i).Msg("sampled")
		}

		count := strings.Count(buf.String(), "sampled")
		require.Greater(t, count, 0)
		require.Less(t, count, 20)
	})

	t.Run("init uses config values", func(t *testing.T) {
		logger := Init(config.Config{LogLevel: int(zerolog.ErrorLevel), LogFormat: "json"})
		require.Equal(t, zerolog.ErrorLevel, logger.GetLevel())
	})
}

// stripANSI removes ANSI escape sequences (used in console logs)
func stripANSI(input string) string {
	re := regexp.MustCompile(`\x1b\[[0-9;]*m`)
	return re.ReplaceAllString(input, "")
}
