package service

import (
	"errors"
	"strings"
	"testing"

	"lofty-chat/internal/domain"
)

func TestValidatePrompt(t *testing.T) {
	if res := ValidatePrompt("   "); res.Valid || res.Message != "System prompt is required" {
		t.Fatalf("empty prompt: %+v", res)
	}
	if res := ValidatePrompt("Be brief."); res.Valid || res.Message != "System prompt is too short" {
		t.Fatalf("short prompt: %+v", res)
	}

	res := ValidatePrompt("You are a precise financial analyst. Answer with numbers.")
	if !res.Valid || len(res.Warnings) != 0 || res.Message != "Prompt looks good!" {
		t.Fatalf("good prompt: %+v", res)
	}

	res = ValidatePrompt("Answer questions and maybe add some context when useful.")
	if !res.Valid || len(res.Warnings) != 2 {
		t.Fatalf("expected role and ambiguity warnings: %+v", res)
	}
	if res.Message != "Prompt is valid, but could be improved" {
		t.Fatalf("unexpected message %q", res.Message)
	}

	res = ValidatePrompt("You are helpful. " + strings.Repeat("x", 1000))
	if !res.Valid || len(res.Warnings) != 1 || !strings.Contains(res.Warnings[0], "very long") {
		t.Fatalf("long prompt: %+v", res)
	}
}

func TestPromptTemplates(t *testing.T) {
	templates := PromptTemplates()
	if len(templates) != 5 {
		t.Fatalf("expected 5 templates, got %d", len(templates))
	}
	templates[0].Template = "changed"
	if PromptTemplates()[0].Template == "changed" {
		t.Fatalf("PromptTemplates must return copies")
	}
	for _, tpl := range PromptTemplates() {
		if res := ValidatePrompt(tpl.Template); !res.Valid {
			t.Fatalf("template %s does not validate: %+v", tpl.ID, res)
		}
	}
	if _, err := TemplateByID("missing"); !errors.Is(err, domain.ErrTemplateNotFound) {
		t.Fatalf("expected ErrTemplateNotFound, got %v", err)
	}
}
