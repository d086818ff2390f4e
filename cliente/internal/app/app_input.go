package app

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// updateInput trata as teclas de atalho da demonstração.
func (a *App) updateInput() {
	switch {
	case rl.IsKeyPressed(rl.KeyR):
		a.toggleRecording()

	case rl.IsKeyPressed(rl.KeyL):
		a.loadLatestTrack()

	case rl.IsKeyPressed(rl.KeyC):
		// Limpa todos os rastros vivos sem remover as entidades
		for _, e := range a.entities {
			e.trail.Clear()
		}

	case rl.IsKeyPressed(rl.KeyG):
		a.Config.ShowGrid = !a.Config.ShowGrid

	case rl.IsKeyPressed(rl.KeyF1):
		a.Config.ShowDebugInfo = !a.Config.ShowDebugInfo

	case rl.IsKeyPressed(rl.KeyO):
		// Alterna o fechamento da senoide de demonstração
		for _, l := range a.lines {
			if l.animate {
				a.Config.LineLoop = !a.Config.LineLoop
				l.line.SetLoop(a.Config.LineLoop)
			}
		}
	}
}
