package service

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"lofty-chat/internal/domain"
)

// Heurísticas para convertir la prosa del modelo en un VerificationResult.
// Son funciones puras y de mejor esfuerzo: no garantizan exactitud.

const (
	maxKeyPoints       = 5
	maxRecommendations = 4
	summaryMinLength   = 50
	summaryFallbackLen = 150
	scoreSearchWindow  = 80
	scoreFallbackMin   = 60
	scoreFallbackSpan  = 31
)

var (
	scorePhraseRe  = regexp.MustCompile(`(?i)alignment\s+score`)
	scoreNumberRe  = regexp.MustCompile(`\d{1,3}`)
	parenthesesRe  = regexp.MustCompile(`\([^)]*\)`)
	headerBreakRe  = regexp.MustCompile(`(?i)([.!?])\s+((?:key\s+)?(?:recommendations?|suggestions?)\b)`)
	recHeaderRe    = regexp.MustCompile(`(?i)^(?:\d+[.)]\s*)?(?:key\s+|main\s+)?(?:recommendations?|suggestions?)\b(?:\s*:.*|[^.!?:]{0,40}:?)$`)
	fenceStartRe   = regexp.MustCompile("(?is)^\\s*```(?:json)?\\s*")
	fenceEndRe     = regexp.MustCompile("(?is)\\s*```\\s*$")
	markdownNoiseR = strings.NewReplacer("**", "", "__", "")
)

var fallbackKeyPoints = []domain.KeyPoint{
	{Aligned: true, Point: "The document's core objectives align with your strategic goals."},
	{Aligned: true, Point: "The document's tone is consistent with your mission and vision."},
	{Aligned: false, Point: "Some sections do not clearly reference your strategic priorities."},
}

var fallbackRecommendations = []string{
	"Strengthen the connection between your value proposition and mission statement",
	"Add more specific metrics to track alignment with strategic objectives",
	"Include clearer references to your core values throughout the document",
}

// ParseVerification arma el resultado a partir del texto del modelo.
// randIntn solo se usa cuando no se encuentra un puntaje.
func ParseVerification(text string, randIntn func(int) int) domain.VerificationResult {
	if res, ok := parseVerificationJSON(text); ok {
		if res.AlignmentScore < 0 {
			res.AlignmentScore = fallbackScore(randIntn)
		}
		return withFallbackLists(res)
	}

	score, ok := ParseAlignmentScore(text)
	if !ok {
		score = fallbackScore(randIntn)
	}
	return withFallbackLists(domain.VerificationResult{
		AlignmentScore:  score,
		Summary:         ParseSummary(text),
		KeyPoints:       ParseKeyPoints(text),
		Recommendations: ParseRecommendations(text),
	})
}

// ParseAlignmentScore busca el primer número después de "alignment score", ignorando
// texto entre paréntesis como "(0-100)". El valor se acota a [0,100].
func ParseAlignmentScore(text string) (int, bool) {
	loc := scorePhraseRe.FindStringIndex(text)
	if loc == nil {
		return 0, false
	}
	window := []rune(text[loc[1]:])
	if len(window) > scoreSearchWindow {
		window = window[:scoreSearchWindow]
	}
	candidate := parenthesesRe.ReplaceAllString(string(window), "")
	m := scoreNumberRe.FindString(candidate)
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return clampScore(n), true
}

// ParseSummary toma la línea siguiente a la que menciona "summary" (o el resto de esa
// línea si ya trae el texto), luego la primera línea larga y por último el comienzo del texto.
func ParseSummary(text string) string {
	lines := nonEmptyLines(text)
	for i, line := range lines {
		lower := strings.ToLower(line)
		idx := strings.Index(lower, "summary")
		if idx < 0 {
			continue
		}
		inline := cleanLine(strings.TrimLeft(line[idx+len("summary"):], " :*-#"))
		if len([]rune(inline)) > 20 {
			return inline
		}
		if i+1 < len(lines) {
			return cleanLine(lines[i+1])
		}
		if inline != "" {
			return inline
		}
	}
	for _, line := range lines {
		if len([]rune(line)) > summaryMinLength {
			return cleanLine(line)
		}
	}
	runes := []rune(strings.TrimSpace(text))
	if len(runes) > summaryFallbackLen {
		runes = runes[:summaryFallbackLen]
	}
	return string(runes)
}

// ParseKeyPoints junta viñetas (•, -, *) hasta el encabezado de recomendaciones.
// Una viñeta con "not align" o "misalign" se marca como no alineada.
func ParseKeyPoints(text string) []domain.KeyPoint {
	points := []domain.KeyPoint{}
	for _, seg := range splitSegments(text) {
		lower := strings.ToLower(seg.text)
		if !seg.bullet {
			if isRecommendationHeader(lower) {
				break
			}
			continue
		}
		if strings.Contains(lower, "recommendation") {
			continue
		}
		aligned := !strings.Contains(lower, "not align") && !strings.Contains(lower, "misalign")
		points = append(points, domain.KeyPoint{Aligned: aligned, Point: seg.text})
		if len(points) == maxKeyPoints {
			break
		}
	}
	return points
}

// ParseRecommendations junta las viñetas que siguen al encabezado de recomendaciones.
func ParseRecommendations(text string) []string {
	recs := []string{}
	started := false
	for _, seg := range splitSegments(text) {
		if !started {
			started = isRecommendationHeader(strings.ToLower(seg.text))
			continue
		}
		if !seg.bullet {
			continue
		}
		recs = append(recs, seg.text)
		if len(recs) == maxRecommendations {
			break
		}
	}
	return recs
}

type textSegment struct {
	text   string
	bullet bool
}

// splitSegments parte el texto en líneas y cada línea en viñetas "•". Los encabezados de
// recomendaciones pegados a una oración anterior pasan a su propia línea.
func splitSegments(text string) []textSegment {
	text = headerBreakRe.ReplaceAllString(text, "$1\n$2")
	var out []textSegment
	for _, line := range nonEmptyLines(text) {
		parts := strings.Split(line, "•")
		if head := strings.TrimSpace(parts[0]); head != "" {
			if rest, ok := cutDashBullet(head); ok {
				if rest = cleanLine(rest); rest != "" {
					out = append(out, textSegment{text: rest, bullet: true})
				}
			} else {
				out = append(out, textSegment{text: cleanLine(head)})
			}
		}
		for _, p := range parts[1:] {
			if p = cleanLine(p); p != "" {
				out = append(out, textSegment{text: p, bullet: true})
			}
		}
	}
	return out
}

func cutDashBullet(line string) (string, bool) {
	for _, marker := range []string{"- ", "* ", "-\t", "*\t"} {
		if strings.HasPrefix(line, marker) {
			return line[len(marker):], true
		}
	}
	return line, false
}

// isRecommendationHeader reconoce "Recommendations:", "Key suggestions" y similares.
// Una oración que solo menciona "suggests" no abre la sección.
func isRecommendationHeader(line string) bool {
	return recHeaderRe.MatchString(strings.TrimSpace(line))
}

func nonEmptyLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

func cleanLine(s string) string {
	s = markdownNoiseR.Replace(s)
	s = strings.TrimLeft(s, "# ")
	return strings.TrimSpace(s)
}

func withFallbackLists(res domain.VerificationResult) domain.VerificationResult {
	if len(res.KeyPoints) == 0 {
		res.KeyPoints = append([]domain.KeyPoint(nil), fallbackKeyPoints...)
	}
	if len(res.Recommendations) == 0 {
		res.Recommendations = append([]string(nil), fallbackRecommendations...)
	}
	return res
}

func fallbackScore(randIntn func(int) int) int {
	return scoreFallbackMin + randIntn(scoreFallbackSpan)
}

func clampScore(n int) int {
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}

// parseVerificationJSON acepta respuestas que vienen como objeto JSON (con o sin fences).
// AlignmentScore queda en -1 si el objeto no trae puntaje.
func parseVerificationJSON(text string) (domain.VerificationResult, bool) {
	obj := extractFirstJSONObject(cleanLLMJSONResponse(text))
	if obj == "" {
		return domain.VerificationResult{}, false
	}
	var tmp struct {
		AlignmentScore      *float64          `json:"alignmentScore"`
		AlignmentScoreSnake *float64          `json:"alignment_score"`
		Summary             string            `json:"summary"`
		KeyPoints           []domain.KeyPoint `json:"keyPoints"`
		KeyPointsSnake      []domain.KeyPoint `json:"key_points"`
		Recommendations     []string          `json:"recommendations"`
	}
	if err := json.Unmarshal([]byte(obj), &tmp); err != nil {
		return domain.VerificationResult{}, false
	}
	score := tmp.AlignmentScore
	if score == nil {
		score = tmp.AlignmentScoreSnake
	}
	keyPoints := tmp.KeyPoints
	if len(keyPoints) == 0 {
		keyPoints = tmp.KeyPointsSnake
	}
	if score == nil && strings.TrimSpace(tmp.Summary) == "" && len(keyPoints) == 0 {
		return domain.VerificationResult{}, false
	}

	res := domain.VerificationResult{
		AlignmentScore:  -1,
		Summary:         strings.TrimSpace(tmp.Summary),
		Recommendations: []string{},
		KeyPoints:       []domain.KeyPoint{},
	}
	if score != nil {
		res.AlignmentScore = clampScore(int(*score + 0.5))
	}
	for _, kp := range keyPoints {
		if p := strings.TrimSpace(kp.Point); p != "" && len(res.KeyPoints) < maxKeyPoints {
			res.KeyPoints = append(res.KeyPoints, domain.KeyPoint{Aligned: kp.Aligned, Point: p})
		}
	}
	for _, r := range tmp.Recommendations {
		if r = strings.TrimSpace(r); r != "" && len(res.Recommendations) < maxRecommendations {
			res.Recommendations = append(res.Recommendations, r)
		}
	}
	return res, true
}

// cleanLLMJSONResponse quita fences ```json ... ``` y BOM, dejando el contenido usable.
func cleanLLMJSONResponse(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	s = strings.TrimPrefix(s, "\ufeff")
	s = fenceStartRe.ReplaceAllString(s, "")
	s = fenceEndRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// extractFirstJSONObject devuelve el primer objeto {...} balanceado, respetando strings.
func extractFirstJSONObject(input string) string {
	start := strings.IndexByte(input, '{')
	if start == -1 {
		return ""
	}
	inString, escaped := false, false
	depth := 0
	for i := start; i < len(input); i++ {
		ch := input[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return input[start : i+1]
			}
		}
	}
	return ""
}
