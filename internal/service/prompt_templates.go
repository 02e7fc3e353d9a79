package service

import (
	"fmt"
	"slices"

	"lofty-chat/internal/domain"
)

var promptTemplates = []domain.PromptTemplate{
	{
		ID:          "business-consultant",
		Name:        "Business Consultant",
		Description: "Strategic business advice and problem-solving",
		Template:    "You are an AI consultant specializing in business strategy. Provide actionable advice based on data. Focus on practical solutions that can be implemented quickly. Always consider both short-term wins and long-term goals.",
		Tags:        []string{"business", "strategy", "consulting"},
		Category:    "business",
	},
	{
		ID:          "research-assistant",
		Name:        "Research Assistant",
		Description: "Data analysis and evidence-based insights",
		Template:    "You are a research assistant with expertise in data analysis. When providing information, cite sources where possible and indicate confidence levels. Prioritize accuracy over speculation.",
		Tags:        []string{"research", "analysis", "academic"},
		Category:    "research",
	},
	{
		ID:          "creative-consultant",
		Name:        "Creative Consultant",
		Description: "Marketing and creative idea generation",
		Template:    "You are a creative consultant with expertise in marketing and branding. Generate innovative ideas and think outside the box. Your responses should inspire creativity while remaining practical and implementation-focused.",
		Tags:        []string{"creative", "marketing", "ideas"},
		Category:    "creative",
	},
	{
		ID:          "technical-advisor",
		Name:        "Technical Advisor",
		Description: "Technical implementation guidance",
		Template:    "You are a technical advisor specializing in software development and implementation. Provide detailed technical advice with code examples when relevant. Focus on best practices, scalability, and maintainability.",
		Tags:        []string{"technical", "development", "code"},
		Category:    "general",
	},
	{
		ID:          "default-assistant",
		Name:        "Default Assistant",
		Description: "General-purpose AI assistant",
		Template:    domain.DefaultSystemPrompt,
		Tags:        []string{"general", "assistant", "default"},
		Category:    "general",
	},
}

// PromptTemplates devuelve una copia del catálogo de plantillas.
func PromptTemplates() []domain.PromptTemplate {
	out := make([]domain.PromptTemplate, len(promptTemplates))
	for i, t := range promptTemplates {
		t.Tags = slices.Clone(t.Tags)
		out[i] = t
	}
	return out
}

func TemplateByID(id string) (domain.PromptTemplate, error) {
	for _, t := range PromptTemplates() {
		if t.ID == id {
			return t, nil
		}
	}
	return domain.PromptTemplate{}, fmt.Errorf("template %q: %w", id, domain.ErrTemplateNotFound)
}
