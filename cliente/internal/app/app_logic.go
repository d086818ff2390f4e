package app

import (
	"fmt"
	"log"
	"math"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"TrailVision/cliente/internal/render"
	"TrailVision/cliente/internal/trail"
	"TrailVision/shared/trackdata"
)

// setupLines monta as linhas de demonstração do modo passivo: um anel
// fechado estático e uma senoide aberta animada ponto a ponto (o caminho
// incremental do driver).
func (a *App) setupLines() {
	ring := trail.NewLineRenderer(trail.Options{
		Loop:            true,
		WidthMultiplier: a.Config.WidthMultiplier,
		Width:           func(t float32) float32 { return 0.15 },
		Color: func(t float32) rl.Color {
			return rl.NewColor(80, uint8(120+135*t), 255, 200)
		},
	})
	const ringPoints = 24
	pts := make([]rl.Vector3, ringPoints)
	for i := range pts {
		ang := float64(i) / ringPoints * 2 * math.Pi
		pts[i] = rl.Vector3{
			X: 8 * float32(math.Cos(ang)),
			Y: 0.1,
			Z: 8 * float32(math.Sin(ang)),
		}
	}
	ring.SetPoints(pts)

	wave := trail.NewLineRenderer(trail.Options{
		Loop:            a.Config.LineLoop,
		WidthMultiplier: a.Config.WidthMultiplier,
		Width:           func(t float32) float32 { return 0.1 + 0.2*t },
		Color: func(t float32) rl.Color {
			return rl.NewColor(255, uint8(200 - 120*t), 60, 220)
		},
	})
	const wavePoints = 32
	wpts := make([]rl.Vector3, wavePoints)
	for i := range wpts {
		wpts[i] = rl.Vector3{X: -8 + float32(i)*0.5, Y: 2, Z: -6}
	}
	wave.SetPoints(wpts)

	a.lines = []*lineShowcase{
		{line: ring, model: render.NewChainModel(ring.Chain())},
		{line: wave, model: render.NewChainModel(wave.Chain()), animate: true},
	}
}

// updateLines anima a senoide movendo um ponto por vez via SetPosition, que
// recomputa só a ponta e os tubos vizinhos.
func (a *App) updateLines(dt float32) {
	for _, l := range a.lines {
		if !l.animate {
			continue
		}
		l.phase += dt
		n := l.line.PointCount()
		for i := 0; i < n; i++ {
			y := 2 + float32(math.Sin(float64(l.phase*2)+float64(i)*0.4))
			l.line.SetPosition(i, rl.Vector3{X: -8 + float32(i)*0.5, Y: y, Z: -6})
		}
	}
}

// primaryEntity escolhe a entidade gravável: a de menor ID ainda viva.
func (a *App) primaryEntity() *entityTrail {
	var best *entityTrail
	for _, e := range a.entities {
		if e.gone {
			continue
		}
		if best == nil || e.id < best.id {
			best = e
		}
	}
	return best
}

// toggleRecording inicia ou encerra a gravação do trajeto da entidade
// primária. Ao encerrar, o trajeto vai para o SQLite.
func (a *App) toggleRecording() {
	if a.recording == nil {
		if a.primaryEntity() == nil {
			log.Println("[App] Nada para gravar: nenhuma entidade viva no feed")
			return
		}
		a.recording = &trackdata.Track{
			Name: fmt.Sprintf("track-%s", time.Now().Format("150405")),
		}
		a.recordStart = rl.GetTime()
		log.Printf("[App] Gravando trajeto %q", a.recording.Name)
		return
	}

	track := a.recording
	a.recording = nil
	if a.tracks == nil {
		log.Println("[App] Gravação descartada: persistência indisponível")
		return
	}
	if err := a.tracks.SaveTrack(track); err != nil {
		log.Printf("[App] Erro ao salvar trajeto: %v", err)
	}
}

// updateRecording acrescenta a posição atual da entidade primária ao trajeto
// em gravação, no máximo uma amostra a cada ~100ms.
func (a *App) updateRecording() {
	if a.recording == nil {
		return
	}
	e := a.primaryEntity()
	if e == nil {
		log.Println("[App] Entidade gravada sumiu, encerrando gravação")
		a.toggleRecording()
		return
	}

	elapsed := float32(rl.GetTime() - a.recordStart)
	n := len(a.recording.Points)
	if n == 0 || elapsed-a.recording.Points[n-1].T >= 0.1 {
		a.recording.Append(e.pos, elapsed)
	}
}

// loadLatestTrack carrega o trajeto salvo mais recente e o exibe como uma
// linha estática.
func (a *App) loadLatestTrack() {
	if a.tracks == nil {
		log.Println("[App] Persistência de trajetos indisponível")
		return
	}

	names, err := a.tracks.ListTracks()
	if err != nil || len(names) == 0 {
		log.Printf("[App] Nenhum trajeto salvo para carregar (%v)", err)
		return
	}

	track, err := a.tracks.LoadTrack(names[0])
	if err != nil {
		log.Printf("[App] Erro ao carregar trajeto: %v", err)
		return
	}

	line := trail.NewLineRenderer(trail.Options{
		WidthMultiplier: a.Config.WidthMultiplier,
		Width:           func(t float32) float32 { return 0.12 },
		Color: func(t float32) rl.Color {
			return rl.NewColor(120, 255, 120, 180)
		},
	})
	line.SetPoints(track.Positions())

	if a.playback != nil {
		a.playback.model.Unload()
	}
	a.playback = &lineShowcase{line: line, model: render.NewChainModel(line.Chain())}
	log.Printf("[App] Trajeto %q carregado (%d pontos)", track.Name, len(track.Points))
}
