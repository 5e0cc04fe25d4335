// Package estimate approximates token usage and API cost for a single
// AI interaction. The heuristics are deliberate approximations (~4
// characters per token for English text), good enough for telemetry
// but not for exact billing.
package estimate

import (
	"fmt"
	"math"
)

// charsPerToken is the rule-of-thumb ratio for English text.
const charsPerToken = 4

// tokensPerMillion scales the per-million-token price to a per-token cost.
const tokensPerMillion = 1_000_000

// DefaultPricePerMillionTokens is the documented default price used
// when no pricing configuration is supplied.
const DefaultPricePerMillionTokens = 0.1875

// TokenUsage holds the per-segment token estimates for one interaction.
// Total is the sum of the three segment ceilings, not the ceiling of
// the combined length; segment-wise rounding is part of the contract.
type TokenUsage struct {
	Total    int `json:"total"`
	System   int `json:"system"`
	User     int `json:"user"`
	Response int `json:"response"`
}

// Tokens estimates the token count of a single text segment,
// rounding up to a whole token. The estimate is byte-length based
// regardless of script; that is an accepted approximation.
func Tokens(text string) int {
	if len(text) == 0 {
		return 0
	}
	return (len(text) + charsPerToken - 1) / charsPerToken
}

// TokenUsageFor estimates token usage for the three segments of an
// interaction: the system prompt, the user message, and the AI
// response. Empty segments count zero tokens.
func TokenUsageFor(systemPrompt, userMessage, aiResponse string) TokenUsage {
	usage := TokenUsage{
		System:   Tokens(systemPrompt),
		User:     Tokens(userMessage),
		Response: Tokens(aiResponse),
	}
	usage.Total = usage.System + usage.User + usage.Response
	return usage
}

// APICost estimates the dollar cost of totalTokens at the default
// per-million-token price.
func APICost(totalTokens int) float64 {
	return APICostAt(totalTokens, DefaultPricePerMillionTokens)
}

// APICostAt estimates the dollar cost of totalTokens at the given
// per-million-token price, rounded half away from zero at the sixth
// decimal digit. Negative token counts are out of contract.
func APICostAt(totalTokens int, pricePerMillionTokens float64) float64 {
	if totalTokens < 0 {
		panic(fmt.Sprintf("estimate: negative token count %d", totalTokens))
	}
	cost := float64(totalTokens) / tokensPerMillion * pricePerMillionTokens
	return math.Round(cost*1e6) / 1e6
}
