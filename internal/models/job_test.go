package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeContentHash(t *testing.T) {
	h1 := ComputeContentHash("Acme", "ML Engineer", "Build models")
	h2 := ComputeContentHash("Acme", "ML Engineer", "Build models")
	assert.Equal(t, h1, h2, "same inputs must produce the same fingerprint")
	assert.Len(t, h1, 64)

	h3 := ComputeContentHash("Acme", "ML Engineer", "Different description")
	assert.NotEqual(t, h1, h3)

	h4 := ComputeContentHash("Other", "ML Engineer", "Build models")
	assert.NotEqual(t, h1, h4, "company name participates in the fingerprint")
}

func TestComputeContentHash_TruncatesDescription(t *testing.T) {
	base := strings.Repeat("a", 500)
	h1 := ComputeContentHash("Acme", "Engineer", base+"tail one")
	h2 := ComputeContentHash("Acme", "Engineer", base+"different tail")
	assert.Equal(t, h1, h2, "only the first 500 chars of the description count")

	h3 := ComputeContentHash("Acme", "Engineer", base[:499]+"X")
	assert.NotEqual(t, h1, h3)
}

func TestNormalizeRemoteType(t *testing.T) {
	cases := map[string]RemoteType{
		"onsite":         RemoteOnsite,
		"on-site":        RemoteOnsite,
		"On-Site":        RemoteOnsite,
		"in-office":      RemoteOnsite,
		"office":         RemoteOnsite,
		"hybrid":         RemoteHybrid,
		"remote":         RemoteRemote,
		"Fully Remote":   RemoteRemote,
		"wfh":            RemoteRemote,
		"work from home": RemoteRemote,
		"  remote  ":     RemoteRemote,
		"unknown":        RemoteUnknown,
		"martian":        RemoteUnknown,
		"":               RemoteUnknown,
	}
	for input, expected := range cases {
		assert.Equal(t, expected, NormalizeRemoteType(input), "input %q", input)
	}
}

func TestCoerceRecommendation(t *testing.T) {
	assert.Equal(t, RecommendStrongMatch, CoerceRecommendation("strong_match"))
	assert.Equal(t, RecommendGoodMatch, CoerceRecommendation("good_match"))
	assert.Equal(t, RecommendStretch, CoerceRecommendation("stretch"))
	assert.Equal(t, RecommendMismatch, CoerceRecommendation("mismatch"))
	assert.Equal(t, RecommendStretch, CoerceRecommendation("worth_considering"))
	assert.Equal(t, RecommendStretch, CoerceRecommendation(""))
}

func TestParseCompanyTier(t *testing.T) {
	assert.Equal(t, TierOne, ParseCompanyTier("tier_1"))
	assert.Equal(t, TierStartup, ParseCompanyTier("startup"))
	assert.Equal(t, TierUnknown, ParseCompanyTier("mega"))
	assert.Equal(t, TierUnknown, ParseCompanyTier(""))
}
