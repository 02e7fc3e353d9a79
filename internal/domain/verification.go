package domain

// Document es el archivo subido para el análisis de alineación.
type Document struct {
	Name     string
	MimeType string
	Content  []byte
}

type VerificationRequest struct {
	Document         Document
	BusinessStrategy string
	MissionVision    string
}

type KeyPoint struct {
	Aligned bool   `json:"aligned"`
	Point   string `json:"point"`
}

// VerificationResult es efímero: se devuelve una vez por análisis y no se guarda.
type VerificationResult struct {
	AlignmentScore  int        `json:"alignmentScore"`
	Summary         string     `json:"summary"`
	KeyPoints       []KeyPoint `json:"keyPoints"`
	Recommendations []string   `json:"recommendations"`
	ReportURL       string     `json:"reportUrl"`
}
