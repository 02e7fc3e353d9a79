package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"lofty-chat/internal/config"
	"lofty-chat/internal/domain"
	"lofty-chat/internal/llm"
	"lofty-chat/internal/repository"
	"lofty-chat/internal/service"
)

const (
	colorGreen = "\033[32m"
	colorRed   = "\033[31m"
	colorCyan  = "\033[36m"
	colorReset = "\033[0m"
)

// Corre escenarios fijos contra el analizador de alineación y verifica que el
// puntaje caiga en la banda esperada. Sin GEMINI_API_KEY usa el resultado simulado.
func main() {
	ctx := context.Background()
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := zap.NewExample()
	defer logger.Sync()

	settings := service.NewSettingsService(repository.NewKVSettingsRepository(repository.NewMemoryKVStore()), nil, logger, llm.DefaultModelID)
	if cfg.GeminiAPIKey != "" {
		update := service.SettingsUpdate{APIKey: &cfg.GeminiAPIKey}
		if cfg.GeminiModel != "" {
			update.SelectedModel = &cfg.GeminiModel
		}
		if _, err := settings.Update(ctx, update); err != nil {
			log.Fatal(err)
		}
	} else {
		fmt.Println("GEMINI_API_KEY no configurada: se evalúa el resultado simulado.")
	}

	gateway := llm.NewGeminiClient(cfg.GeminiBaseURL, cfg.GatewayTimeout, logger)
	analyzer := service.NewDocumentAnalyzer(gateway, settings, service.PlainTextExtractor{}, nil, logger, service.AnalyzerOptions{
		ReportURL:      cfg.ReportURL,
		GatewayTimeout: cfg.GatewayTimeout,
	})

	failed := 0
	for _, sc := range scenarios {
		fmt.Printf("%s[Escenario]%s %s\n", colorCyan, colorReset, sc.Name)

		res, err := analyzer.Analyze(ctx, domain.VerificationRequest{
			Document:         domain.Document{Name: sc.Name + ".txt", MimeType: "text/plain", Content: []byte(sc.Document)},
			BusinessStrategy: sc.Strategy,
			MissionVision:    sc.Mission,
		})
		if err != nil {
			log.Fatalf("analyze failed: %v", err)
		}

		check := evaluateResult(sc, res)
		color := colorGreen
		if !check.Passed {
			color = colorRed
			failed++
		}
		fmt.Printf("Puntaje %d (esperado %d-%d) | puntos clave %d | recomendaciones %d\n",
			res.AlignmentScore, sc.MinScore, sc.MaxScore, len(res.KeyPoints), len(res.Recommendations))
		fmt.Printf("%s%s%s\n\n", color, check.Reason, colorReset)
	}

	fmt.Println("==== Resumen ====")
	fmt.Printf("%d/%d escenarios dentro de lo esperado\n", len(scenarios)-failed, len(scenarios))
	if failed > 0 {
		os.Exit(1)
	}
}
