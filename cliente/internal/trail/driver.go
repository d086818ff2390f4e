package trail

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"TrailVision/cliente/internal/meshchain"
)

// WidthFunc avalia a largura do traço em t ∈ [0,1] ao longo da ordem dos pontos.
type WidthFunc func(t float32) float32

// ColorFunc avalia a cor do traço em t ∈ [0,1] ao longo da ordem dos pontos.
type ColorFunc func(t float32) rl.Color

// Options reúne a superfície de configuração dos dois drivers.
// Valores fora da faixa válida são clampados, nunca viram erro: são parâmetros
// ajustáveis pelo usuário, não erros de programação.
type Options struct {
	// Trail
	MaxTrailPoints      int     // mínimo 3
	StealLastPoint      bool    // rouba o slot mais antigo quando o buffer enche
	LifetimeSeconds     float32 // vida de cada ponto gravado (>= 0)
	MinVertexDistance   float32 // distância mínima entre pontos gravados (>= piso)
	Autodestruct        bool    // remove o dono quando o rastro esvazia
	SmoothInterpolation bool    // suaviza a ponta mais antiga ao expirar

	// Line
	Loop bool

	// Comum
	WidthMultiplier float32
	Width           WidthFunc
	Color           ColorFunc
}

// Piso do limiar de distância: limiares quase zero gerariam pontos sem parar.
const minVertexDistanceFloor = 0.01

// Driver é a capacidade comum das duas variantes sobre uma mesma corrente.
type Driver interface {
	// RequiredCapacity retorna quantos elementos a corrente precisa reservar.
	RequiredCapacity() int
	// Rebuild re-emite todos os elementos a partir do estado do driver.
	Rebuild()
	// Chain expõe a corrente possuída pelo driver.
	Chain() *meshchain.Chain
}

// Commit materializa as mudanças pendentes do driver na malha de desenho.
// Deve rodar uma única vez por frame, depois de todos os sistemas que movem
// os pontos rastreados; por isso o host chama isto por último no update.
func Commit(d Driver) {
	d.Chain().Refresh()
}

func defaultWidth(t float32) float32 { return 1.0 }

func defaultColor(t float32) rl.Color { return rl.White }

// normalize aplica os defaults e clamps da superfície de configuração.
func (o Options) normalize() Options {
	if o.MaxTrailPoints < 3 {
		o.MaxTrailPoints = 3
	}
	if o.LifetimeSeconds < 0 {
		o.LifetimeSeconds = 0
	}
	if o.MinVertexDistance < minVertexDistanceFloor {
		o.MinVertexDistance = minVertexDistanceFloor
	}
	if o.WidthMultiplier == 0 {
		o.WidthMultiplier = 1.0
	}
	if o.Width == nil {
		o.Width = defaultWidth
	}
	if o.Color == nil {
		o.Color = defaultColor
	}
	return o
}
