package service

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	promptMinLength  = 20
	promptWarnLength = 1000
)

var (
	roleDefinitionRe = regexp.MustCompile(`(?i)you are|act as|behave as|function as|serve as`)
	ambiguousTerms   = []string{"maybe", "possibly", "perhaps", "sometimes"}
)

// PromptValidation es el resultado de revisar un prompt de sistema antes de guardarlo.
type PromptValidation struct {
	Valid    bool     `json:"valid"`
	Message  string   `json:"message"`
	Warnings []string `json:"warnings"`
}

// ValidatePrompt aplica reglas simples de calidad; las advertencias no invalidan el prompt.
func ValidatePrompt(text string) PromptValidation {
	res := PromptValidation{Valid: true, Message: "Prompt looks good!", Warnings: []string{}}

	if strings.TrimSpace(text) == "" {
		return PromptValidation{Valid: false, Message: "System prompt is required", Warnings: []string{}}
	}
	if len([]rune(text)) < promptMinLength {
		return PromptValidation{Valid: false, Message: "System prompt is too short", Warnings: []string{}}
	}

	if !roleDefinitionRe.MatchString(text) {
		res.Warnings = append(res.Warnings, "Consider defining a clear role (e.g., 'You are...')")
	}
	if len([]rune(text)) > promptWarnLength {
		res.Warnings = append(res.Warnings, "Prompt is very long. Consider simplifying for better results.")
	}
	lower := strings.ToLower(text)
	for _, term := range ambiguousTerms {
		if strings.Contains(lower, term) {
			res.Warnings = append(res.Warnings, fmt.Sprintf("Contains ambiguous term: %q. Consider using more definitive language.", term))
		}
	}

	if len(res.Warnings) > 0 {
		res.Message = "Prompt is valid, but could be improved"
	}
	return res
}
