package main

import (
	"log"
	"math"
	"math/rand"
	"net/http"
	"os"
	"sync"
	"time"

	"TrailVision/shared/proto/tvnet"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Hub gerencia as conexões WebSocket ativas
type Hub struct {
	clients    map[*websocket.Conn]*sync.Mutex
	broadcast  chan []byte
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	mu         sync.Mutex
}

func newHub() *Hub {
	return &Hub{
		clients:    make(map[*websocket.Conn]*sync.Mutex),
		broadcast:  make(chan []byte, 1024), // Bufferizado para evitar deadlocks e bloqueios
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
	}
}

func (h *Hub) run() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Hub] Recuperado de pânico fatal: %v", r)
		}
	}()

	for {
		select {
		case client, ok := <-h.register:
			if !ok {
				return
			}
			h.mu.Lock()
			h.clients[client] = &sync.Mutex{}
			h.mu.Unlock()
			log.Printf("Cliente registrado: %s", client.RemoteAddr())
		case client, ok := <-h.unregister:
			if !ok {
				return
			}
			h.mu.Lock()
			if lock, ok := h.clients[client]; ok {
				lock.Lock()
				delete(h.clients, client)
				client.Close()
				lock.Unlock()
				log.Printf("Cliente desregistrado: %s", client.RemoteAddr())
			}
			h.mu.Unlock()
		case message, ok := <-h.broadcast:
			if !ok {
				return
			}
			h.mu.Lock()
			// Criamos uma lista de clientes para iterar fora do lock do hub
			type clientEntry struct {
				conn *websocket.Conn
				lock *sync.Mutex
			}
			var targets []clientEntry
			for c, l := range h.clients {
				targets = append(targets, clientEntry{c, l})
			}
			h.mu.Unlock()

			for _, target := range targets {
				target.lock.Lock()
				err := target.conn.WriteMessage(websocket.BinaryMessage, message)
				if err != nil {
					log.Printf("Erro ao enviar para cliente %s: %v", target.conn.RemoteAddr(), err)
					target.conn.Close()
					h.mu.Lock()
					delete(h.clients, target.conn)
					h.mu.Unlock()
				}
				target.lock.Unlock()
			}
		}
	}
}

// safeSend envia para o canal de broadcast protegendo contra pânicos de canal fechado
func (h *Hub) safeSend(data []byte) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Hub] Aviso: Falha ao enviar broadcast (canal fechado?): %v", r)
		}
	}()
	// IMPORTANTE: Não segurar h.mu.Lock() aqui, pois o h.broadcast <- data pode bloquear
	// se o buffer estiver cheio, e o run() precisaria do lock para esvaziar o buffer.
	h.broadcast <- data
}

// BroadcastEntities serializa e envia o estado atual das entidades simuladas
func (h *Hub) BroadcastEntities(msg *tvnet.EntityUpdateMessage) {
	if len(msg.Entities) == 0 && len(msg.Removed) == 0 {
		return
	}
	h.safeSend(msg.Marshal())
}

// simEntity é uma entidade sintética que percorre uma curva de Lissajous.
// Cada entidade tem frequências e fases próprias para que as trajetórias
// não se sobreponham.
type simEntity struct {
	id     int64
	freqX  float64
	freqZ  float64
	phaseX float64
	phaseZ float64
	radius float64
	height float64
	// ttl em segundos; quando zera, a entidade é removida e renasce
	// com novos parâmetros alguns segundos depois
	ttl     float64
	respawn float64
}

func newSimEntity(id int64, rng *rand.Rand) *simEntity {
	return &simEntity{
		id:     id,
		freqX:  0.3 + rng.Float64()*0.5,
		freqZ:  0.3 + rng.Float64()*0.5,
		phaseX: rng.Float64() * 2 * math.Pi,
		phaseZ: rng.Float64() * 2 * math.Pi,
		radius: 4 + rng.Float64()*8,
		height: 1 + rng.Float64()*5,
		ttl:    20 + rng.Float64()*40,
	}
}

func (e *simEntity) position(t float64) (x, y, z float32) {
	x = float32(e.radius * math.Sin(e.freqX*t+e.phaseX))
	z = float32(e.radius * math.Sin(e.freqZ*t+e.phaseZ))
	y = float32(e.height + math.Sin(t*0.7+e.phaseX)*0.8)
	return
}

// Simulator mantém o conjunto de entidades e produz frames de atualização
type Simulator struct {
	entities []*simEntity
	nextID   int64
	rng      *rand.Rand
	elapsed  float64
}

func NewSimulator(count int) *Simulator {
	s := &Simulator{
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		nextID: 1,
	}
	for i := 0; i < count; i++ {
		s.entities = append(s.entities, newSimEntity(s.nextID, s.rng))
		s.nextID++
	}
	return s
}

// Step avança a simulação e monta a mensagem do frame. Entidades cujo
// tempo de vida expirou entram na lista Removed e renascem após a pausa.
func (s *Simulator) Step(dt float64) *tvnet.EntityUpdateMessage {
	s.elapsed += dt
	msg := &tvnet.EntityUpdateMessage{}

	for _, e := range s.entities {
		if e.ttl <= 0 {
			// Aguardando renascimento
			e.respawn -= dt
			if e.respawn <= 0 {
				fresh := newSimEntity(s.nextID, s.rng)
				s.nextID++
				*e = *fresh
				log.Printf("[Sim] Entidade %d renasceu", e.id)
			}
			continue
		}

		e.ttl -= dt
		if e.ttl <= 0 {
			msg.Removed = append(msg.Removed, e.id)
			e.respawn = 3 + s.rng.Float64()*5
			log.Printf("[Sim] Entidade %d removida", e.id)
			continue
		}

		x, y, z := e.position(s.elapsed)
		msg.Entities = append(msg.Entities, tvnet.EntityState{
			ID: e.id,
			X:  x,
			Y:  y,
			Z:  z,
		})
	}
	return msg
}

func serveWS(hub *Hub, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Erro no upgrade do WebSocket: %v", err)
		return
	}
	hub.register <- conn

	// Loop de leitura apenas para detectar desconexões; o servidor não
	// consome mensagens do cliente.
	go func() {
		defer func() { hub.unregister <- conn }()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func main() {
	log.SetFlags(log.Ltime | log.Lshortfile)
	log.Println("╔══════════════════════════════════════╗")
	log.Println("║      TrailVision SERVER v0.1.0       ║")
	log.Println("╚══════════════════════════════════════╝")

	addr := ":8080"
	if a := os.Getenv("TRAILVISION_ADDR"); a != "" {
		addr = a
	}

	hub := newHub()
	go hub.run()

	sim := NewSimulator(6)

	// Loop de simulação: 20 frames por segundo é suficiente para rastros
	// suaves sem saturar a conexão.
	go func() {
		const tick = 50 * time.Millisecond
		ticker := time.NewTicker(tick)
		defer ticker.Stop()
		last := time.Now()
		for now := range ticker.C {
			dt := now.Sub(last).Seconds()
			last = now
			hub.BroadcastEntities(sim.Step(dt))
		}
	}()

	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		serveWS(hub, w, r)
	})

	log.Printf("Servidor ouvindo em %s (ws://localhost%s/ws)", addr, addr)
	if err := http.ListenAndServe(addr, nil); err != nil {
		log.Fatalf("Erro fatal no servidor HTTP: %v", err)
	}
}
