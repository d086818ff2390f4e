package main

import (
	"flag"
	"io"
	"log"
	"os"
	"runtime"

	"TrailVision/cliente/internal/app"
	"TrailVision/shared/config"
)

// applyFlags sobrepõe a configuração salva com as flags de linha de comando.
func applyFlags(cfg *config.Config) {
	serverURL := flag.String("server", "", "URL do feed de posições (padrão: ws://127.0.0.1:8080/ws)")
	fullscreen := flag.Bool("fullscreen", false, "Iniciar em tela cheia")
	debug := flag.Bool("debug", false, "Mostrar informações de debug")
	width := flag.Int("width", 0, "Largura da janela")
	height := flag.Int("height", 0, "Altura da janela")
	loop := flag.Bool("loop", false, "Fechar a linha de demonstração animada")
	flag.Parse()

	if *serverURL != "" {
		cfg.ServerURL = *serverURL
	}
	if *fullscreen {
		cfg.Fullscreen = true
	}
	if *debug {
		cfg.ShowDebugInfo = true
	}
	if *width > 0 {
		cfg.WindowWidth = int32(*width)
	}
	if *height > 0 {
		cfg.WindowHeight = int32(*height)
	}
	if *loop {
		cfg.LineLoop = true
	}
}

// setupLogging espelha o log no terminal e em arquivo, quando possível.
func setupLogging() {
	log.SetFlags(log.Ltime | log.Lshortfile)
	f, err := os.OpenFile("debug_tv.log", os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		return
	}
	log.SetOutput(io.MultiWriter(os.Stdout, f))
}

func main() {
	// Raylib/OpenGL exige rodar na thread principal do SO
	runtime.LockOSThread()

	setupLogging()
	log.Println("[TrailVision] Cliente v0.1.0 iniciando")

	cfg := config.Load()
	applyFlags(cfg)

	app.New(cfg).Run()
}
