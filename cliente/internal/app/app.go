package app

import (
	"log"
	"sync"

	rl "github.com/gen2brain/raylib-go/raylib"

	"TrailVision/cliente/internal/camera"
	"TrailVision/cliente/internal/client"
	"TrailVision/cliente/internal/render"
	"TrailVision/cliente/internal/trail"
	"TrailVision/shared/config"
	"TrailVision/shared/proto/tvnet"
	"TrailVision/shared/trackdata"
)

// entityTrail é uma entidade do feed com seu rastro e o lado GPU da corrente.
type entityTrail struct {
	id    int64
	pos   rl.Vector3
	trail *trail.TrailRenderer
	model *render.ChainModel
	gone  bool // removida do feed; o rastro ainda esvazia antes de sumir

	// origin é a referência do espaço local da entidade. Em modo local os
	// pontos são gravados relativos a ela e a malha é desenhada transladada;
	// em modo mundo fica em zero e não muda nada.
	origin rl.Vector3
}

// lineShowcase é uma linha de demonstração do modo passivo.
type lineShowcase struct {
	line    *trail.LineRenderer
	model   *render.ChainModel
	animate bool
	phase   float32
}

// App é a aplicação principal do TrailVision.
type App struct {
	Config *config.Config

	Cam      *camera.CameraController
	renderer *render.Renderer

	// Feed de posições
	netClient *client.NetworkClient
	mu        sync.Mutex
	pending   []*tvnet.EntityUpdateMessage
	entities  map[int64]*entityTrail

	// Linhas de demonstração (modo passivo)
	lines []*lineShowcase

	// Gravação e reprodução de trajetos
	tracks      *trackdata.Store
	recording   *trackdata.Track
	recordStart float64
	playback    *lineShowcase
}

// New cria uma nova instância da aplicação.
func New(cfg *config.Config) *App {
	return &App{
		Config:   cfg,
		entities: make(map[int64]*entityTrail),
	}
}

// Run inicia o loop principal da aplicação.
func (a *App) Run() {
	rl.SetConfigFlags(rl.FlagMsaa4xHint | rl.FlagWindowResizable)
	rl.InitWindow(a.Config.WindowWidth, a.Config.WindowHeight, a.Config.WindowTitle)
	rl.SetTraceLogLevel(rl.LogWarning) // Reduz ruído no terminal

	if a.Config.Fullscreen {
		rl.ToggleFullscreen()
	}

	rl.SetTargetFPS(a.Config.TargetFPS)

	a.Cam = camera.New()
	a.Cam.SetTarget(rl.Vector3{X: 0, Y: 0, Z: 0})

	log.Println("[TrailVision] Janela inicializada com sucesso")
	log.Printf("[TrailVision] Resolução: %dx%d", a.Config.WindowWidth, a.Config.WindowHeight)

	a.renderer = render.NewRenderer()
	a.setupLines()

	if store, err := trackdata.OpenInitialize(a.Config.TracksDatabase); err != nil {
		log.Printf("[App] AVISO: persistência de trajetos indisponível: %v", err)
	} else {
		a.tracks = store
	}

	go a.connectServer()

	for !rl.WindowShouldClose() {
		a.update()
		a.draw()
	}

	a.shutdown()
	rl.CloseWindow()
}

// update roda a lógica de um frame. A ordem importa: tudo que move posições
// (feed, input, animação) roda antes dos ticks dos rastros, e o commit das
// correntes é o último passo; assim a geometria deste frame já reflete o
// movimento deste frame, sem atraso de um frame.
func (a *App) update() {
	dt := rl.GetFrameTime()

	a.drainFeed()
	a.updateInput()
	a.Cam.Update(dt)
	a.updateLines(dt)
	a.updateTrails(dt)
	a.updateRecording()

	// Commit: materializa todas as mudanças pendentes nas malhas.
	for _, e := range a.entities {
		trail.Commit(e.trail)
	}
	for _, l := range a.lines {
		trail.Commit(l.line)
	}
	if a.playback != nil {
		trail.Commit(a.playback.line)
	}
}

// trailOptions monta as opções de rastro a partir da configuração. O feed
// sempre usa autodestruct: entidade que sai do ar some quando o rastro esvazia.
func (a *App) trailOptions() trail.Options {
	return trail.Options{
		MaxTrailPoints:      a.Config.MaxTrailPoints,
		StealLastPoint:      a.Config.StealLastPoint,
		LifetimeSeconds:     a.Config.TrailLifetime,
		MinVertexDistance:   a.Config.MinVertexDistance,
		Autodestruct:        true,
		SmoothInterpolation: a.Config.SmoothInterpolation,
		WidthMultiplier:     a.Config.WidthMultiplier,
		Width:               trailWidth,
		Color:               trailColor,
	}
}

// trailWidth afina o rastro em direção à cauda (t = 0 é o ponto mais antigo).
func trailWidth(t float32) float32 {
	return 0.08 + 0.35*t
}

// trailColor esfria e esvanece a cauda do rastro.
func trailColor(t float32) rl.Color {
	return rl.NewColor(
		uint8(40+215*t),
		uint8(120+80*t),
		uint8(255-160*t),
		uint8(30+225*t),
	)
}

// updateTrails avança cada rastro com a posição mais recente da entidade e
// descarta entidades cujo rastro autodestruiu.
func (a *App) updateTrails(dt float32) {
	for id, e := range a.entities {
		destroyed := e.trail.Tick(dt, rl.Vector3Subtract(e.pos, e.origin))
		if destroyed || (e.gone && !e.trail.Visible()) {
			log.Printf("[App] Entidade %d removida (rastro esvaziou)", id)
			e.model.Unload()
			delete(a.entities, id)
		}
	}
}

// shutdown realiza a limpeza de recursos.
func (a *App) shutdown() {
	log.Println("[App] Finalizando aplicação...")

	if a.netClient != nil {
		a.netClient.Close()
	}
	if a.tracks != nil {
		a.tracks.Close()
	}
	for _, e := range a.entities {
		e.model.Unload()
	}
	for _, l := range a.lines {
		l.model.Unload()
	}
	if a.playback != nil {
		a.playback.model.Unload()
	}
	a.renderer.Unload()

	if err := a.Config.Save(); err != nil {
		log.Printf("[TrailVision] Erro ao salvar configurações: %v", err)
	}
}
