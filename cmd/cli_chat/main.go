package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"mime"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"lofty-chat/internal/bootstrap"
	"lofty-chat/internal/config"
	"lofty-chat/internal/domain"
	"lofty-chat/internal/service"
)

const helpText = `Comandos:
  /new               nueva conversación
  /list              listar conversaciones
  /select N          activar la conversación N
  /delete N          borrar la conversación N
  /rename TITULO     renombrar la conversación activa
  /clear             borrar todo el historial
  /model ID          elegir modelo
  /models            listar modelos
  /key KEY           guardar API key de Gemini
  /test              probar la API key guardada
  /prompt TEXTO      cambiar el prompt de sistema
  /template ID       aplicar una plantilla (sin ID lista las disponibles)
  /analyze ARCHIVO   analizar alineación de un documento
  /export            imprimir el historial como JSON
  /quit              salir
Cualquier otro texto se envía como mensaje.`

func main() {
	ctx := context.Background()
	reader := bufio.NewReader(os.Stdin)

	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := zap.NewExample()
	defer logger.Sync()

	app, err := bootstrap.Build(ctx, cfg, logger)
	if err != nil {
		log.Fatal(err)
	}
	defer app.Close()

	app.Feed.OnNotify(func(n domain.Notification) {
		fmt.Printf("[%s] %s: %s\n", strings.ToUpper(string(n.Level)), n.Title, n.Description)
	})

	fmt.Println("===== go:lofty chat =====")
	if !app.Settings.HasCredential() {
		fmt.Println("Sin API key: las respuestas serán simuladas. Usa /key para configurarla.")
	}
	fmt.Println(helpText)

	for {
		active := app.Sessions.EnsureActive()
		fmt.Printf("\n[%s] Tu > ", active.Title)
		line, err := reader.ReadString('\n')
		if err != nil {
			fmt.Println()
			return
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if !strings.HasPrefix(line, "/") {
			sendFlow(ctx, app, line)
			continue
		}

		cmd, arg, _ := strings.Cut(line, " ")
		arg = strings.TrimSpace(arg)
		switch cmd {
		case "/quit", "/exit":
			fmt.Println("Hasta luego.")
			return
		case "/help":
			fmt.Println(helpText)
		case "/new":
			s := app.Sessions.CreateSession()
			fmt.Printf("Conversación creada: %s\n", s.Title)
		case "/list":
			listSessions(app)
		case "/select":
			withSessionIndex(app, arg, func(s domain.Session) error {
				return app.Sessions.SelectSession(s.ID)
			})
		case "/delete":
			withSessionIndex(app, arg, func(s domain.Session) error {
				return app.Sessions.DeleteSession(s.ID)
			})
		case "/rename":
			if _, err := app.Sessions.RenameSession(active.ID, arg); err != nil {
				fmt.Printf("Error: %v\n", err)
			}
		case "/clear":
			app.Sessions.ClearAll()
			fmt.Println("Historial borrado.")
		case "/model":
			updateSettings(ctx, app, service.SettingsUpdate{SelectedModel: &arg})
		case "/models":
			listModels(app)
		case "/key":
			updateSettings(ctx, app, service.SettingsUpdate{APIKey: &arg})
		case "/test":
			if app.Gateway.TestCredential(ctx, app.Settings.Get().APIKey) {
				fmt.Println("API key válida.")
			} else {
				fmt.Println("API key inválida o sin conexión.")
			}
		case "/prompt":
			promptFlow(ctx, app, arg)
		case "/template":
			templateFlow(ctx, app, arg)
		case "/analyze":
			analyzeFlow(ctx, app, reader, arg)
		case "/export":
			raw, err := app.Sessions.Export()
			if err != nil {
				fmt.Printf("Error exportando: %v\n", err)
				continue
			}
			fmt.Println(string(raw))
		default:
			fmt.Println("Comando desconocido. Usa /help.")
		}
	}
}

func sendFlow(ctx context.Context, app *bootstrap.App, text string) {
	res, err := app.Orchestrator.SendMessage(ctx, text, nil)
	if err != nil {
		fmt.Printf("error enviando mensaje: %v\n", err)
		return
	}
	label := "Gemini"
	if res.Simulated {
		label = "Simulado"
	}
	fmt.Printf("%s > %s\n", label, res.AssistantMessage.Content)
}

func listSessions(app *bootstrap.App) {
	activeID := app.Sessions.ActiveID()
	for i, s := range app.Sessions.List() {
		marker := " "
		if s.ID == activeID {
			marker = "*"
		}
		fmt.Printf("%s[%d] %s (%d mensajes)\n", marker, i+1, s.Title, len(s.Messages))
	}
}

func withSessionIndex(app *bootstrap.App, arg string, fn func(domain.Session) error) {
	sessions := app.Sessions.List()
	idx, err := strconv.Atoi(arg)
	if err != nil || idx < 1 || idx > len(sessions) {
		fmt.Println("Seleccion invalida.")
		return
	}
	if err := fn(sessions[idx-1]); err != nil {
		fmt.Printf("Error: %v\n", err)
	}
}

func listModels(app *bootstrap.App) {
	current := app.Settings.Get()
	for _, m := range app.Gateway.ListModels(current.HasCredential()) {
		marker := " "
		if m.ID == current.SelectedModel {
			marker = "*"
		}
		status := ""
		if m.Disabled {
			status = " (requiere API key)"
		}
		fmt.Printf("%s %-28s %s%s\n", marker, m.ID, m.Description, status)
	}
}

func updateSettings(ctx context.Context, app *bootstrap.App, u service.SettingsUpdate) {
	if _, err := app.Settings.Update(ctx, u); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Println("Configuración guardada.")
}

func promptFlow(ctx context.Context, app *bootstrap.App, text string) {
	if text == "" {
		current := app.Settings.Get()
		fmt.Printf("Prompt actual:\n%s\n", current.Prompt)
		for i, h := range current.PromptHistory {
			fmt.Printf("  [%d] %s\n", i+1, h)
		}
		return
	}
	check := service.ValidatePrompt(text)
	if !check.Valid {
		fmt.Println(check.Message)
		return
	}
	for _, w := range check.Warnings {
		fmt.Printf("Aviso: %s\n", w)
	}
	updateSettings(ctx, app, service.SettingsUpdate{Prompt: &text})
}

func templateFlow(ctx context.Context, app *bootstrap.App, id string) {
	if id == "" {
		for _, tpl := range service.PromptTemplates() {
			fmt.Printf("  %-22s %s\n", tpl.ID, tpl.Description)
		}
		return
	}
	if _, err := app.Settings.ApplyTemplate(ctx, id); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Println("Plantilla aplicada.")
}

func analyzeFlow(ctx context.Context, app *bootstrap.App, reader *bufio.Reader, path string) {
	if path == "" {
		fmt.Println("Uso: /analyze ARCHIVO")
		return
	}
	content, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("Error leyendo archivo: %v\n", err)
		return
	}
	fmt.Print("Estrategia de negocio: ")
	strategy, _ := reader.ReadString('\n')
	fmt.Print("Misión y visión: ")
	mission, _ := reader.ReadString('\n')

	fmt.Println("Analizando...")
	res, err := app.Analyzer.Analyze(ctx, domain.VerificationRequest{
		Document: domain.Document{
			Name:     filepath.Base(path),
			MimeType: mime.TypeByExtension(filepath.Ext(path)),
			Content:  content,
		},
		BusinessStrategy: strings.TrimSpace(strategy),
		MissionVision:    strings.TrimSpace(mission),
	})
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	fmt.Printf("\nAlineación: %d/100\n%s\n\nPuntos clave:\n", res.AlignmentScore, res.Summary)
	for _, kp := range res.KeyPoints {
		mark := "+"
		if !kp.Aligned {
			mark = "-"
		}
		fmt.Printf("  %s %s\n", mark, kp.Point)
	}
	fmt.Println("Recomendaciones:")
	for _, r := range res.Recommendations {
		fmt.Printf("  • %s\n", r)
	}
	fmt.Printf("Reporte: %s\n", res.ReportURL)
}
