package app

import (
	"log"

	rl "github.com/gen2brain/raylib-go/raylib"

	"TrailVision/cliente/internal/client"
	"TrailVision/cliente/internal/render"
	"TrailVision/cliente/internal/trail"
	"TrailVision/shared/proto/tvnet"
)

// connectServer conecta ao feed de posições em background.
func (a *App) connectServer() {
	a.netClient = client.NewNetworkClient(a.Config.ServerURL)

	// Os quadros chegam na goroutine de leitura; só enfileiramos aqui e o
	// update do frame consome, já que as correntes não são thread-safe.
	a.netClient.OnEntities = func(msg *tvnet.EntityUpdateMessage) {
		a.mu.Lock()
		a.pending = append(a.pending, msg)
		a.mu.Unlock()
	}
	a.netClient.OnStatus = func(connected bool) {
		log.Printf("[App] Feed de posições: conectado=%v", connected)
	}

	if err := a.netClient.Connect(); err != nil {
		log.Printf("[App] Sem feed de posições: %v", err)
	}
}

// drainFeed aplica os quadros pendentes do feed: atualiza as posições das
// entidades conhecidas, cria rastros para as novas e marca as removidas.
func (a *App) drainFeed() {
	a.mu.Lock()
	frames := a.pending
	a.pending = nil
	a.mu.Unlock()

	for _, msg := range frames {
		for _, es := range msg.Entities {
			e, ok := a.entities[es.ID]
			if !ok {
				tr := trail.NewTrailRenderer(a.trailOptions())
				e = &entityTrail{
					id:    es.ID,
					trail: tr,
					model: render.NewChainModel(tr.Chain()),
				}
				if a.Config.LocalSpace {
					// A primeira posição reportada vira a origem do espaço
					// local da entidade.
					e.origin = rl.Vector3{X: es.X, Y: es.Y, Z: es.Z}
				}
				a.entities[es.ID] = e
				log.Printf("[App] Nova entidade %d no feed", es.ID)
			}
			e.pos = rl.Vector3{X: es.X, Y: es.Y, Z: es.Z}
			e.gone = false
		}

		for _, id := range msg.Removed {
			if e, ok := a.entities[id]; ok {
				// O rastro continua envelhecendo até esvaziar; só então a
				// entidade sai de cena.
				e.gone = true
			}
		}
	}
}
