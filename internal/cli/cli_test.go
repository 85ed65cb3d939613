package cli

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/ppiankov/reliefboard/internal/model"
	"github.com/ppiankov/reliefboard/internal/pipeline"
)

func TestParseKinds(t *testing.T) {
	kinds, err := parseKinds("all")
	require.NoError(t, err)
	assert.Equal(t, pipeline.AllKinds, kinds)

	kinds, err = parseKinds("disasters")
	require.NoError(t, err)
	assert.Equal(t, []model.Kind{model.KindDisaster}, kinds)

	_, err = parseKinds("reports")
	assert.Error(t, err)
}

func TestLoadConfigOverlaysDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("board.key", "key-from-env")
	viper.Set("board.concurrency", 3)
	viper.Set("connectors.disasters.board_id", "b-dis")
	viper.Set("verbose", true)

	cfg, err := loadConfig()
	require.NoError(t, err)

	assert.Equal(t, "key-from-env", cfg.Board.Key)
	assert.Equal(t, 3, cfg.Board.Concurrency)
	assert.Equal(t, "b-dis", cfg.Connectors.Disasters.BoardID)
	assert.True(t, cfg.Debug)

	// untouched settings keep their defaults
	defaults := model.DefaultConfig()
	assert.Equal(t, defaults.Upstream.BaseURL, cfg.Upstream.BaseURL)
	assert.Equal(t, defaults.Warnings, cfg.Warnings)
	assert.Equal(t, defaults.Connectors.Topics.Lists, cfg.Connectors.Topics.Lists)
}

func TestLoadConfigReplacesConfiguredSlices(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("connectors.disasters.labels", []map[string]any{
		{"name": "Hot", "status": "current"},
	})
	viper.Set("connectors.disasters.lists", []map[string]any{
		{"name": "Watch", "status": "alert", "position": 1},
	})

	cfg, err := loadConfig()
	require.NoError(t, err)

	assert.Equal(t, []model.StatusLabel{{Status: "current", Name: "Hot"}}, cfg.Connectors.Disasters.Labels,
		"a label configured without a color stays colorless")
	assert.Equal(t, []model.ListConfig{{Name: "Watch", Status: "alert", Position: 1}}, cfg.Connectors.Disasters.Lists)

	// sections the config does not name keep their defaults
	defaults := model.DefaultConfig()
	assert.Equal(t, defaults.Connectors.Topics.Labels, cfg.Connectors.Topics.Labels)
	assert.Equal(t, defaults.Warnings, cfg.Warnings)
}

func TestRedact(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Board.Key = "abcdef123456"
	cfg.Board.Token = "xyz"
	redact(cfg)
	assert.Equal(t, "abcd****", cfg.Board.Key)
	assert.Equal(t, "****", cfg.Board.Token)
}

func TestNewLogger(t *testing.T) {
	logger, err := newLogger(true)
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel), "debug enabled")

	logger, err = newLogger(false)
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
}
