package costs

// ModelPrice holds per-million-token USD rates for one model
type ModelPrice struct {
	InputPerMillion  float64
	OutputPerMillion float64
}

// tokenPrices is the LLM price table keyed by model id.
// Unknown models contribute zero cost.
var tokenPrices = map[string]ModelPrice{
	"claude-haiku-4-5-20251001":  {InputPerMillion: 0.80, OutputPerMillion: 4.00},
	"claude-sonnet-4-5-20250514": {InputPerMillion: 3.00, OutputPerMillion: 15.00},
	"claude-haiku-3-5-20241022":  {InputPerMillion: 0.80, OutputPerMillion: 4.00},
	"claude-sonnet-4-20250514":   {InputPerMillion: 3.00, OutputPerMillion: 15.00},
	"gemini-3-flash-preview":     {InputPerMillion: 0.30, OutputPerMillion: 2.50},
}

// CalculateCost returns the USD cost of a call against the price table.
// Rates are per million tokens; unknown model ids cost zero.
func CalculateCost(model string, inputTokens, outputTokens int) float64 {
	price, ok := tokenPrices[model]
	if !ok {
		return 0
	}
	return float64(inputTokens)/1_000_000*price.InputPerMillion +
		float64(outputTokens)/1_000_000*price.OutputPerMillion
}
