package service

import (
	"strings"
	"testing"
)

func fixedRand(n int) func(int) int {
	return func(int) int { return n }
}

func TestParseVerificationInlineBullets(t *testing.T) {
	text := "Alignment score: 82. • Point A aligns well. Recommendation: • Do X."

	res := ParseVerification(text, fixedRand(0))
	if res.AlignmentScore != 82 {
		t.Fatalf("expected score 82, got %d", res.AlignmentScore)
	}
	if len(res.KeyPoints) == 0 || !strings.Contains(res.KeyPoints[0].Point, "Point A") {
		t.Fatalf("expected key point with Point A, got %+v", res.KeyPoints)
	}
	if !res.KeyPoints[0].Aligned {
		t.Fatalf("Point A should be aligned")
	}
	for _, kp := range res.KeyPoints {
		if strings.Contains(kp.Point, "Do X") {
			t.Fatalf("recommendation leaked into key points: %+v", res.KeyPoints)
		}
	}
	if len(res.Recommendations) == 0 || !strings.Contains(res.Recommendations[0], "Do X") {
		t.Fatalf("expected recommendation with Do X, got %+v", res.Recommendations)
	}
}

func TestParseVerificationStructuredReply(t *testing.T) {
	text := `**Alignment Score (0-100):** 74

## Summary
The plan supports the growth strategy but underplays the mission.

Key Points:
- Pricing model aligns with the premium positioning
- The hiring section does not align with the remote-first vision
* Misaligned tone in the executive summary

Recommendations:
1. Intro sentence that is not a bullet
- Rewrite the executive summary
- Reference the mission in each section
- Add KPIs for customer retention
- Review tone with marketing
- Fifth item is dropped`

	res := ParseVerification(text, fixedRand(0))
	if res.AlignmentScore != 74 {
		t.Fatalf("expected 74, got %d", res.AlignmentScore)
	}
	if res.Summary != "The plan supports the growth strategy but underplays the mission." {
		t.Fatalf("unexpected summary %q", res.Summary)
	}
	if len(res.KeyPoints) != 3 {
		t.Fatalf("expected 3 key points, got %+v", res.KeyPoints)
	}
	if !res.KeyPoints[0].Aligned || res.KeyPoints[1].Aligned || res.KeyPoints[2].Aligned {
		t.Fatalf("unexpected alignment flags %+v", res.KeyPoints)
	}
	if len(res.Recommendations) != maxRecommendations {
		t.Fatalf("expected %d recommendations, got %+v", maxRecommendations, res.Recommendations)
	}
	if res.Recommendations[0] != "Rewrite the executive summary" {
		t.Fatalf("unexpected first recommendation %q", res.Recommendations[0])
	}
}

func TestParseAlignmentScore(t *testing.T) {
	cases := []struct {
		in    string
		want  int
		found bool
	}{
		{"Alignment score: 82", 82, true},
		{"ALIGNMENT SCORE (0-100) = 55/100", 55, true},
		{"alignment score: 140", 100, true},
		{"The document is great.", 0, false},
		{"Alignment score: not available", 0, false},
	}
	for _, tc := range cases {
		got, ok := ParseAlignmentScore(tc.in)
		if got != tc.want || ok != tc.found {
			t.Fatalf("ParseAlignmentScore(%q) = %d,%v want %d,%v", tc.in, got, ok, tc.want, tc.found)
		}
	}
}

func TestParseSummaryFallbacks(t *testing.T) {
	inline := "Summary: The document is consistent with the stated strategy."
	if got := ParseSummary(inline); got != "The document is consistent with the stated strategy." {
		t.Fatalf("inline summary: %q", got)
	}

	long := "short\nThis line is long enough to be used as the overview of the whole analysis.\nend"
	if got := ParseSummary(long); got != "This line is long enough to be used as the overview of the whole analysis." {
		t.Fatalf("long-line summary: %q", got)
	}

	tiny := "ok"
	if got := ParseSummary(tiny); got != "ok" {
		t.Fatalf("prefix summary: %q", got)
	}
}

func TestParseVerificationFallbacks(t *testing.T) {
	res := ParseVerification("Nothing useful here.", fixedRand(7))
	if res.AlignmentScore != scoreFallbackMin+7 {
		t.Fatalf("expected fallback score %d, got %d", scoreFallbackMin+7, res.AlignmentScore)
	}
	if len(res.KeyPoints) != len(fallbackKeyPoints) || len(res.Recommendations) != len(fallbackRecommendations) {
		t.Fatalf("expected generic fallbacks, got %+v", res)
	}
	res.KeyPoints[0].Point = "changed"
	if fallbackKeyPoints[0].Point == "changed" {
		t.Fatalf("fallbacks must be copied")
	}
}

func TestParseVerificationJSONReply(t *testing.T) {
	text := "```json\n{\"alignment_score\": 91.6, \"summary\": \"Strong fit.\", \"key_points\": [{\"aligned\": true, \"point\": \"Clear mission\"}], \"recommendations\": [\"Add metrics\"]}\n```"

	res := ParseVerification(text, fixedRand(0))
	if res.AlignmentScore != 92 {
		t.Fatalf("expected rounded score 92, got %d", res.AlignmentScore)
	}
	if res.Summary != "Strong fit." {
		t.Fatalf("unexpected summary %q", res.Summary)
	}
	if len(res.KeyPoints) != 1 || res.KeyPoints[0].Point != "Clear mission" {
		t.Fatalf("unexpected key points %+v", res.KeyPoints)
	}
	if len(res.Recommendations) != 1 || res.Recommendations[0] != "Add metrics" {
		t.Fatalf("unexpected recommendations %+v", res.Recommendations)
	}
}

func TestParseVerificationJSONReplyWithBOM(t *testing.T) {
	text := "\ufeff```json\n{\"alignment_score\": 70, \"summary\": \"Partial fit.\", \"key_points\": [], \"recommendations\": [\"Tie goals to the mission\"]}\n```"

	if got := cleanLLMJSONResponse(text); !strings.HasPrefix(got, "{") || !strings.HasSuffix(got, "}") {
		t.Fatalf("expected bare object after cleanup, got %q", got)
	}
	res := ParseVerification(text, fixedRand(0))
	if res.AlignmentScore != 70 || res.Summary != "Partial fit." {
		t.Fatalf("unexpected result %+v", res)
	}
	if len(res.Recommendations) != 1 || res.Recommendations[0] != "Tie goals to the mission" {
		t.Fatalf("unexpected recommendations %+v", res.Recommendations)
	}
}

func TestParseKeyPointsIgnoresSuggestInProse(t *testing.T) {
	text := `Alignment Score: 74
Summary:
The document suggests a growth plan that mostly matches the strategy.
Key Points:
• Pricing aligns with the premium positioning
• Hiring plan does not align with the remote-first vision
Recommendations:
• Trim the hiring section`

	points := ParseKeyPoints(text)
	if len(points) != 2 {
		t.Fatalf("expected 2 key points, got %+v", points)
	}
	if !points[0].Aligned || points[1].Aligned {
		t.Fatalf("unexpected alignment flags %+v", points)
	}
	recs := ParseRecommendations(text)
	if len(recs) != 1 || recs[0] != "Trim the hiring section" {
		t.Fatalf("unexpected recommendations %+v", recs)
	}
}

func TestIsRecommendationHeader(t *testing.T) {
	headers := []string{"Recommendations:", "Key recommendations", "Suggestions for improvement:", "Recommendation: Do X."}
	for _, h := range headers {
		if !isRecommendationHeader(h) {
			t.Fatalf("%q should be a header", h)
		}
	}
	prose := []string{"The document suggests a growth plan.", "We have no recommendations. The plan is solid and ready to go."}
	for _, p := range prose {
		if isRecommendationHeader(p) {
			t.Fatalf("%q should not be a header", p)
		}
	}
}

func TestExtractFirstJSONObject(t *testing.T) {
	in := `prefix {"a": "brace } inside", "b": {"c": 1}} trailing {"d": 2}`
	want := `{"a": "brace } inside", "b": {"c": 1}}`
	if got := extractFirstJSONObject(in); got != want {
		t.Fatalf("got %q", got)
	}
	if got := extractFirstJSONObject(`{"open": true`); got != "" {
		t.Fatalf("unbalanced object should yield empty, got %q", got)
	}
}
