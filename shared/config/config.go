package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Config armazena as configurações do TrailVision.
type Config struct {
	// Janela
	WindowWidth  int32  `json:"window_width"`
	WindowHeight int32  `json:"window_height"`
	WindowTitle  string `json:"window_title"`
	Fullscreen   bool   `json:"fullscreen"`
	TargetFPS    int32  `json:"target_fps"`

	// TrailVision Server (feed de posições, usado pelo Cliente)
	ServerURL string `json:"server_url"`

	// Rastro
	MaxTrailPoints      int     `json:"max_trail_points"`     // mínimo 3
	StealLastPoint      bool    `json:"steal_last_point"`     // rouba o slot mais antigo com o buffer cheio
	TrailLifetime       float32 `json:"trail_lifetime"`       // segundos de vida de cada ponto (>= 0)
	MinVertexDistance   float32 `json:"min_vertex_distance"`  // distância mínima entre pontos gravados
	Autodestruct        bool    `json:"autodestruct"`         // remove o rastro quando esvazia
	SmoothInterpolation bool    `json:"smooth_interpolation"` // suaviza a expiração da ponta mais antiga
	WidthMultiplier     float32 `json:"width_multiplier"`     // multiplicador global de largura
	LocalSpace          bool    `json:"local_space"`          // coordenadas locais ao dono em vez de mundo
	LineLoop            bool    `json:"line_loop"`            // fecha as linhas de demonstração

	// Persistência de trajetos
	TracksDatabase string `json:"tracks_database"`

	// Câmera
	CameraSpeed       float32 `json:"camera_speed"`
	CameraSensitivity float32 `json:"camera_sensitivity"`
	ZoomSpeed         float32 `json:"zoom_speed"`

	// Debug
	ShowDebugInfo bool `json:"show_debug_info"`
	ShowGrid      bool `json:"show_grid"`
}

// DefaultConfig retorna a configuração padrão.
func DefaultConfig() *Config {
	return &Config{
		WindowWidth:  1280,
		WindowHeight: 720,
		WindowTitle:  "TrailVision",
		Fullscreen:   false,
		TargetFPS:    60,

		ServerURL: "ws://127.0.0.1:8080/ws",

		MaxTrailPoints:      64,
		StealLastPoint:      true,
		TrailLifetime:       2.5,
		MinVertexDistance:   0.25,
		Autodestruct:        false,
		SmoothInterpolation: true,
		WidthMultiplier:     1.0,
		LocalSpace:          false,
		LineLoop:            false,

		TracksDatabase: "tracks",

		CameraSpeed:       10.0,
		CameraSensitivity: 0.3,
		ZoomSpeed:         5.0,

		ShowDebugInfo: true,
		ShowGrid:      true,
	}
}

// configPath retorna o caminho do arquivo de configuração.
func configPath() string {
	execDir, err := os.Executable()
	if err != nil {
		return "config.json"
	}
	return filepath.Join(filepath.Dir(execDir), "config.json")
}

// Load carrega as configurações de um arquivo JSON.
// Se o arquivo não existir, retorna as configurações padrão.
func Load() *Config {
	cfg := DefaultConfig()

	data, err := os.ReadFile(configPath())
	if err != nil {
		return cfg
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return DefaultConfig()
	}

	return cfg
}

// Save salva as configurações em um arquivo JSON.
func (c *Config) Save() error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(configPath(), data, 0644)
}
