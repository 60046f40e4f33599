package cost

// Rates holds per-provider pricing configuration.
type Rates struct {
	Anthropic map[string]ModelRate `yaml:"anthropic" mapstructure:"anthropic"`
	Verifier  VerifierRate         `yaml:"verifier" mapstructure:"verifier"`
	Apify     ApifyRate            `yaml:"apify" mapstructure:"apify"`
}

// ModelRate holds per-model token pricing (per million tokens).
type ModelRate struct {
	Input         float64 `yaml:"input" mapstructure:"input"`
	Output        float64 `yaml:"output" mapstructure:"output"`
	BatchDiscount float64 `yaml:"batch_discount" mapstructure:"batch_discount"`
	CacheWriteMul float64 `yaml:"cache_write_mul" mapstructure:"cache_write_mul"`
	CacheReadMul  float64 `yaml:"cache_read_mul" mapstructure:"cache_read_mul"`
}

// VerifierRate holds email verification pricing. Credits are bought in
// bundles, so the per-credit rate is the bundle price divided by its size.
type VerifierRate struct {
	PerCredit float64 `yaml:"per_credit" mapstructure:"per_credit"`
}

// ApifyRate holds Apify actor pricing.
type ApifyRate struct {
	PerRun        float64 `yaml:"per_run" mapstructure:"per_run"`
	PerDatasetRow float64 `yaml:"per_dataset_row" mapstructure:"per_dataset_row"`
}

// Calculator computes costs for API usage.
type Calculator struct {
	rates Rates
}

// NewCalculator creates a Calculator with the given rates.
func NewCalculator(rates Rates) *Calculator {
	return &Calculator{rates: rates}
}

// Claude computes the cost for a Claude API call.
func (c *Calculator) Claude(model string, isBatch bool, input, output, cacheWrite, cacheRead int) float64 {
	rate, ok := c.rates.Anthropic[model]
	if !ok {
		return 0
	}

	batchMul := 1.0
	if isBatch {
		batchMul = rate.BatchDiscount
	}

	inCost := (float64(input) / 1e6) * rate.Input * batchMul
	outCost := (float64(output) / 1e6) * rate.Output * batchMul
	cwCost := (float64(cacheWrite) / 1e6) * rate.Input * rate.CacheWriteMul * batchMul
	crCost := (float64(cacheRead) / 1e6) * rate.Input * rate.CacheReadMul * batchMul

	return inCost + outCost + cwCost + crCost
}

// Verification computes the cost of the given number of verification
// credits. One credit is one deliverability check.
func (c *Calculator) Verification(credits int) float64 {
	return float64(credits) * c.rates.Verifier.PerCredit
}

// ApifyRun computes the cost of one actor run that returned the given
// number of dataset rows.
func (c *Calculator) ApifyRun(rows int) float64 {
	return c.rates.Apify.PerRun + float64(rows)*c.rates.Apify.PerDatasetRow
}

// DefaultRates returns the default pricing rates.
func DefaultRates() Rates {
	return Rates{
		Anthropic: map[string]ModelRate{
			"claude-haiku-4-5-20251001": {
				Input: 0.80, Output: 4.00,
				BatchDiscount: 0.5, CacheWriteMul: 1.25, CacheReadMul: 0.1,
			},
			"claude-sonnet-4-5-20250929": {
				Input: 3.00, Output: 15.00,
				BatchDiscount: 0.5, CacheWriteMul: 1.25, CacheReadMul: 0.1,
			},
		},
		// 10k bundle at $37.
		Verifier: VerifierRate{PerCredit: 0.0037},
		Apify:    ApifyRate{PerRun: 0.01, PerDatasetRow: 0.002},
	}
}
