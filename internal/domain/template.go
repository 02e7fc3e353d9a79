package domain

type PromptTemplate struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Template    string   `json:"template"`
	Tags        []string `json:"tags"`
	Category    string   `json:"category"`
}
