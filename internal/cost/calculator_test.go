package cost

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClaudeCost(t *testing.T) {
	calc := NewCalculator(Rates{
		Anthropic: map[string]ModelRate{
			"test-model": {Input: 1.0, Output: 10.0, CacheWriteMul: 1.25, CacheReadMul: 0.1},
		},
	})

	// 1M input tokens at $1/MTok, 100k output at $10/MTok.
	got := calc.Claude("test-model", 1_000_000, 100_000, 0, 0)
	assert.InDelta(t, 2.0, got, 1e-9)
}

func TestClaudeCostCacheMultipliers(t *testing.T) {
	calc := NewCalculator(Rates{
		Anthropic: map[string]ModelRate{
			"test-model": {Input: 1.0, Output: 10.0, CacheWriteMul: 1.25, CacheReadMul: 0.1},
		},
	})

	// Cache writes cost 1.25x input rate, reads 0.1x.
	got := calc.Claude("test-model", 0, 0, 1_000_000, 1_000_000)
	assert.InDelta(t, 1.25+0.1, got, 1e-9)
}

func TestClaudeCostUnknownModel(t *testing.T) {
	calc := NewCalculator(DefaultRates())
	assert.Zero(t, calc.Claude("no-such-model", 1_000_000, 1_000_000, 0, 0))
}

func TestDefaultRatesCoverConfiguredModels(t *testing.T) {
	rates := DefaultRates()
	assert.Contains(t, rates.Anthropic, "claude-haiku-4-5-20251001")
	assert.Contains(t, rates.Anthropic, "claude-sonnet-4-5-20250929")
}

func TestLoadRatesOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rates.yaml")
	content := `anthropic:
  custom-model:
    input: 2.0
    output: 8.0
    cache_write_mul: 1.25
    cache_read_mul: 0.1
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	rates, err := LoadRates(path)
	require.NoError(t, err)

	// New model added, defaults preserved.
	assert.Contains(t, rates.Anthropic, "custom-model")
	assert.Contains(t, rates.Anthropic, "claude-haiku-4-5-20251001")
	assert.InDelta(t, 2.0, rates.Anthropic["custom-model"].Input, 1e-9)
}

func TestLoadRatesMissingFile(t *testing.T) {
	rates, err := LoadRates(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
	// Defaults still usable on error.
	assert.Contains(t, rates.Anthropic, "claude-haiku-4-5-20251001")
}
