package app

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// draw renderiza um frame completo.
func (a *App) draw() {
	rl.BeginDrawing()
	rl.ClearBackground(rl.NewColor(12, 14, 22, 255))

	rl.BeginMode3D(a.Cam.RLCamera)

	if a.Config.ShowGrid {
		rl.DrawGrid(40, 1.0)
	}

	// Marcador da posição atual de cada entidade viva
	for _, e := range a.entities {
		if !e.gone {
			rl.DrawSphere(e.pos, 0.15, rl.NewColor(255, 230, 120, 255))
		}
	}

	// As correntes são translúcidas: uma passada única com blend alpha
	a.renderer.Begin(a.Cam.RLCamera)
	rl.BeginBlendMode(rl.BlendAlpha)

	transform := rl.MatrixIdentity()
	for _, l := range a.lines {
		a.renderer.DrawChain(l.model, transform)
	}
	if a.playback != nil {
		a.renderer.DrawChain(a.playback.model, transform)
	}
	for _, e := range a.entities {
		a.renderer.DrawChain(e.model, rl.MatrixTranslate(e.origin.X, e.origin.Y, e.origin.Z))
	}

	rl.EndBlendMode()
	rl.EndMode3D()

	if a.Config.ShowDebugInfo {
		a.drawHUD()
	}

	rl.EndDrawing()
}

// drawHUD desenha as informações de debug e os atalhos.
func (a *App) drawHUD() {
	rl.DrawFPS(10, 10)

	live := 0
	segments := 0
	for _, e := range a.entities {
		if !e.gone {
			live++
		}
		segments += e.trail.Occupancy()
	}

	y := int32(34)
	line := func(text string) {
		rl.DrawText(text, 10, y, 18, rl.RayWhite)
		y += 22
	}

	connected := a.netClient != nil && a.netClient.Connected()
	line(fmt.Sprintf("feed: conectado=%v  entidades=%d  segmentos=%d", connected, live, segments))

	if a.recording != nil {
		line(fmt.Sprintf("GRAVANDO %q (%d pontos)", a.recording.Name, len(a.recording.Points)))
	}

	line("R grava/salva trajeto | L carrega ultimo | C limpa rastros")
	line("O loop da senoide | G grade | F1 debug | botao direito orbita")
}
