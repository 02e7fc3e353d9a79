package main

import (
	"fmt"
	"strings"

	"lofty-chat/internal/domain"
)

// Scenario describe un documento con la banda de puntaje que se espera obtener.
type Scenario struct {
	Name     string
	Strategy string
	Mission  string
	Document string
	MinScore int
	MaxScore int
}

var scenarios = []Scenario{
	{
		Name:     "plan-alineado",
		Strategy: "Grow recurring revenue from mid-size retailers through premium analytics subscriptions.",
		Mission:  "Help independent retailers make data-driven decisions.",
		Document: "Q3 plan: launch a premium analytics tier for mid-size retailers, bundle onboarding workshops, and track monthly recurring revenue per account.",
		MinScore: 60,
		MaxScore: 100,
	},
	{
		Name:     "plan-desalineado",
		Strategy: "Grow recurring revenue from mid-size retailers through premium analytics subscriptions.",
		Mission:  "Help independent retailers make data-driven decisions.",
		Document: "Q3 plan: pivot to selling one-off hardware kiosks to large supermarket chains with no software component.",
		MinScore: 0,
		MaxScore: 60,
	},
}

type checkResult struct {
	Passed bool
	Reason string
}

// evaluateResult aplica reglas simples sobre el resultado parseado.
func evaluateResult(sc Scenario, res domain.VerificationResult) checkResult {
	var problems []string
	if res.AlignmentScore < sc.MinScore || res.AlignmentScore > sc.MaxScore {
		problems = append(problems, fmt.Sprintf("puntaje %d fuera de banda", res.AlignmentScore))
	}
	if strings.TrimSpace(res.Summary) == "" {
		problems = append(problems, "sin resumen")
	}
	if len(res.KeyPoints) == 0 {
		problems = append(problems, "sin puntos clave")
	}
	if len(res.Recommendations) == 0 {
		problems = append(problems, "sin recomendaciones")
	}
	if res.ReportURL == "" {
		problems = append(problems, "sin reporte")
	}
	if len(problems) > 0 {
		return checkResult{Passed: false, Reason: strings.Join(problems, "; ")}
	}
	return checkResult{Passed: true, Reason: "ok"}
}
