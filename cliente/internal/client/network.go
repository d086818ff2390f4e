package client

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"TrailVision/shared/proto/tvnet"
)

// NetworkClient lida com a comunicação com o TrailVision Server: mantém a
// conexão WebSocket e entrega cada quadro do feed de posições via callback.
type NetworkClient struct {
	conn      *websocket.Conn
	url       string
	connected bool
	mu        sync.RWMutex

	// Callbacks para o App. Chamados na goroutine de leitura; o App enfileira
	// o que precisar tocar no estado do frame.
	OnEntities func(msg *tvnet.EntityUpdateMessage)
	OnStatus   func(connected bool)
}

func NewNetworkClient(url string) *NetworkClient {
	return &NetworkClient{url: url}
}

// Connect tenta estabelecer a conexão com o servidor, com algumas tentativas
// antes de desistir. Em caso de sucesso, inicia a goroutine de leitura.
func (c *NetworkClient) Connect() error {
	dialer := websocket.Dialer{
		HandshakeTimeout: 5 * time.Second,
	}

	var err error
	maxRetries := 10
	for i := 0; i < maxRetries; i++ {
		log.Printf("[Network] Tentativa de conexão %d/%d em %s...", i+1, maxRetries, c.url)
		c.conn, _, err = dialer.Dial(c.url, nil)
		if err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return fmt.Errorf("falha ao conectar em %s: %w", c.url, err)
	}

	c.setConnected(true)
	log.Printf("[Network] Conectado ao servidor %s", c.url)

	go c.readLoop()
	return nil
}

// Connected informa se a conexão está ativa.
func (c *NetworkClient) Connected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

func (c *NetworkClient) setConnected(v bool) {
	c.mu.Lock()
	c.connected = v
	c.mu.Unlock()
	if c.OnStatus != nil {
		c.OnStatus(v)
	}
}

// readLoop consome os quadros binários do feed até a conexão cair.
func (c *NetworkClient) readLoop() {
	defer c.setConnected(false)

	for {
		msgType, data, err := c.conn.ReadMessage()
		if err != nil {
			log.Printf("[Network] Conexão encerrada: %v", err)
			return
		}
		if msgType != websocket.BinaryMessage {
			continue
		}

		var msg tvnet.EntityUpdateMessage
		if err := msg.Unmarshal(data); err != nil {
			log.Printf("[Network] Quadro do feed descartado: %v", err)
			continue
		}
		if c.OnEntities != nil {
			c.OnEntities(&msg)
		}
	}
}

// Close encerra a conexão.
func (c *NetworkClient) Close() {
	if c.conn != nil {
		c.conn.Close()
	}
}
