package trail

import (
	"log"

	rl "github.com/gen2brain/raylib-go/raylib"

	"TrailVision/cliente/internal/meshchain"
)

// LineRenderer traduz uma lista ordenada de pontos, de posse do caller, em
// elementos da corrente de malha. Passivo: só reage a mutações explícitas da
// lista, sem tick por frame.
type LineRenderer struct {
	chain  *meshchain.Chain
	points []rl.Vector3
	opts   Options
}

// NewLineRenderer cria o driver de linha com sua própria corrente.
func NewLineRenderer(opts Options) *LineRenderer {
	return &LineRenderer{
		chain: meshchain.New(),
		opts:  opts.normalize(),
	}
}

// Chain implementa Driver.
func (l *LineRenderer) Chain() *meshchain.Chain { return l.chain }

// PointCount retorna a quantidade atual de pontos de controle.
func (l *LineRenderer) PointCount() int { return len(l.points) }

// RequiredCapacity implementa Driver: 2N-1 elementos para N pontos
// (ponta, tubo, ponta, ...), mais um tubo de fechamento quando em loop.
func (l *LineRenderer) RequiredCapacity() int {
	n := len(l.points)
	if n == 0 {
		return 0
	}
	if l.opts.Loop {
		return 2 * n
	}
	return 2*n - 1
}

// SetLoop liga ou desliga o fechamento da linha. Mudar o flag muda a
// capacidade requerida, então força um rebuild completo.
func (l *LineRenderer) SetLoop(loop bool) {
	if l.opts.Loop == loop {
		return
	}
	l.opts.Loop = loop
	l.Rebuild()
}

// SetPoints substitui a lista inteira de pontos. Quando o tamanho muda, a
// capacidade da corrente deixa de bater e o caminho incremental seria
// inválido: forçamos a reinicialização completa com um aviso de diagnóstico.
func (l *LineRenderer) SetPoints(points []rl.Vector3) {
	sameLen := len(points) == len(l.points)
	if !sameLen && len(l.points) > 0 {
		log.Printf("[Line] quantidade de pontos mudou (%d -> %d), reinicializando a malha completa", len(l.points), len(points))
	}

	l.points = make([]rl.Vector3, len(points))
	copy(l.points, points)

	if sameLen && l.RequiredCapacity() == l.chain.ReservedElementCount() {
		// Mesmo tamanho: só as posições mudam, tamanhos e cores ficam.
		for i := range l.points {
			l.emitPosition(i)
		}
		return
	}
	l.Rebuild()
}

// SetPosition move um único ponto e recomputa apenas a ponta 2i e os (até
// dois) tubos adjacentes, deixando o resto da corrente intocado.
func (l *LineRenderer) SetPosition(i int, pos rl.Vector3) {
	if i < 0 || i >= len(l.points) {
		log.Printf("[Line] SetPosition ignorado: índice %d fora da lista de %d pontos", i, len(l.points))
		return
	}

	// Capacidade dessincronizada indica que a lista mudou por fora do driver;
	// o patch pontual seria gravado em offsets errados.
	if l.RequiredCapacity() != l.chain.ReservedElementCount() {
		log.Printf("[Line] capacidade da corrente desatualizada (%d != %d), fazendo rebuild completo",
			l.RequiredCapacity(), l.chain.ReservedElementCount())
		l.points[i] = pos
		l.Rebuild()
		return
	}

	l.points[i] = pos
	l.emitPosition(i)
}

// emitPosition grava a ponta do ponto i e os tubos vizinhos na corrente.
// Só toca posições; as flags de tamanho/cor não são sujadas.
func (l *LineRenderer) emitPosition(i int) {
	n := len(l.points)
	l.chain.SetPosition(2*i, l.points[i])

	// Tubo à esquerda: liga o ponto anterior a este. No ponto 0 em loop, o
	// vizinho à esquerda é o tubo de fechamento no final do buffer.
	if i > 0 {
		l.chain.SetPipe(2*i-1, l.points[i-1], l.points[i])
	} else if l.opts.Loop {
		l.chain.SetPipe(2*n-1, l.points[n-1], l.points[0])
	}

	// Tubo à direita: liga este ponto ao próximo.
	if i < n-1 {
		l.chain.SetPipe(2*i+1, l.points[i], l.points[i+1])
	} else if l.opts.Loop {
		l.chain.SetPipe(2*n-1, l.points[n-1], l.points[0])
	}
}

// Rebuild implementa Driver: realoca a corrente para a capacidade requerida e
// re-emite todos os elementos na ordem dos pontos. O parâmetro t avança por um
// passo fixo por ponto: amostras uniformes das funções de largura/cor ao
// longo da ordem dos pontos, não do comprimento de arco.
func (l *LineRenderer) Rebuild() {
	n := len(l.points)
	l.chain.Allocate(l.RequiredCapacity())
	if n == 0 {
		return
	}

	var step float32
	switch {
	case l.opts.Loop:
		step = 1.0 / float32(n)
	case n > 1:
		step = 1.0 / float32(n-1)
	}

	sample := func(t float32) (float32, rl.Color) {
		return l.opts.Width(t) * l.opts.WidthMultiplier, l.opts.Color(t)
	}

	t := float32(0)
	w, c := sample(0)
	l.chain.SetPosition(0, l.points[0])
	l.chain.SetSize(0, w)
	l.chain.SetColor(0, c)

	for i := 1; i < n; i++ {
		prevW, prevC := w, c
		t += step
		w, c = sample(t)

		l.chain.SetPipe(2*i-1, l.points[i-1], l.points[i])
		l.chain.SetSizes(2*i-1, prevW, w)
		l.chain.SetColors(2*i-1, prevC, c)

		l.chain.SetPosition(2*i, l.points[i])
		l.chain.SetSize(2*i, w)
		l.chain.SetColor(2*i, c)
	}

	if l.opts.Loop {
		endW, endC := sample(1.0)
		l.chain.SetPipe(2*n-1, l.points[n-1], l.points[0])
		l.chain.SetSizes(2*n-1, w, endW)
		l.chain.SetColors(2*n-1, c, endC)
	}
}
