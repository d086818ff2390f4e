package trail

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"

	"TrailVision/cliente/internal/meshchain"
	"TrailVision/shared/util"
)

// trailPoint é um ponto gravado do histórico: posição mais a vida restante,
// que só decresce depois de criado e dispara exatamente uma expiração ao
// cruzar zero.
type trailPoint struct {
	pos       rl.Vector3
	remaining float32
}

// TrailRenderer mantém uma janela móvel e envelhecida de posições gravadas em
// um buffer circular de capacidade fixa, dirigido uma vez por tick pela
// posição atual do objeto rastreado.
//
// Convenção de sentinela: start == end significa zero pontos vivos, então só
// capacidade-1 pontos são utilizáveis de uma vez. Os slots de start a end
// guardam posições ordenadas da mais antiga para a mais nova; a ocupação
// conta os segmentos vivos: (end - start + capacidade) % capacidade.
type TrailRenderer struct {
	chain    *meshchain.Chain
	opts     Options
	capacity int

	points []trailPoint
	start  int
	end    int

	anchor    rl.Vector3 // última posição gravada
	hasAnchor bool
	// newestAge é o frescor do ponto mais novo: conta pra cima até saturar
	// na vida máxima e zera a cada ponto gravado. Contabilidade apenas; quem
	// dirige expiração e suavização é o countdown remaining de cada ponto.
	newestAge float32
	destroyed bool
}

// NewTrailRenderer cria o driver de rastro com sua própria corrente, já
// alocada para a capacidade fixa (dois elementos por ponto).
func NewTrailRenderer(opts Options) *TrailRenderer {
	t := &TrailRenderer{
		chain: meshchain.New(),
		opts:  opts.normalize(),
	}
	t.capacity = t.opts.MaxTrailPoints
	t.points = make([]trailPoint, t.capacity)
	t.chain.Allocate(t.RequiredCapacity())
	t.Rebuild()
	return t
}

// Chain implementa Driver.
func (t *TrailRenderer) Chain() *meshchain.Chain { return t.chain }

// RequiredCapacity implementa Driver: dois elementos (ponta + tubo) por slot.
func (t *TrailRenderer) RequiredCapacity() int {
	return 2 * t.capacity
}

// Occupancy retorna a contagem de pontos vivos no buffer circular.
func (t *TrailRenderer) Occupancy() int {
	return (t.end - t.start + t.capacity) % t.capacity
}

// Visible informa se o rastro tem geometria a desenhar.
func (t *TrailRenderer) Visible() bool {
	return t.Occupancy() > 0
}

// Destroyed informa se o autodestruct já disparou para este rastro.
func (t *TrailRenderer) Destroyed() bool {
	return t.destroyed
}

// Tick avança o rastro em um frame: decide se a posição atual vira um ponto
// novo, envelhece os pontos vivos, expira o mais antigo e reamostra largura e
// cor de todos os elementos vivos. Retorna true no único tick em que o rastro
// esvazia com autodestruct habilitado; o dono deve se remover nesse momento.
func (t *TrailRenderer) Tick(dt float32, pos rl.Vector3) bool {
	if t.destroyed {
		return false
	}
	if !t.hasAnchor {
		t.anchor = pos
		t.hasAnchor = true
	}

	// 1. Distância quadrada desde a última âncora gravada.
	minD := t.opts.MinVertexDistance
	if util.DistSq(t.anchor, pos) > minD*minD {
		t.addPoint(pos)
	}

	if t.Occupancy() == 0 {
		return false
	}

	// 3. Frescor do ponto mais novo, clampado à vida máxima.
	t.newestAge = util.Clamp(t.newestAge+dt, 0, t.opts.LifetimeSeconds)

	// 4. Vida restante conta pra baixo; o mais antigo expira ao cruzar zero.
	s := t.start
	for {
		t.points[s].remaining -= dt
		if s == t.end {
			break
		}
		s = (s + 1) % t.capacity
	}

	expired := false
	for t.Occupancy() > 0 && t.points[t.start].remaining <= 0 {
		t.expireOldest()
		expired = true
	}

	// 5. Autodestruct: one-shot, avaliado apenas no tick em que esvaziou.
	if t.Occupancy() == 0 {
		if expired && t.opts.Autodestruct {
			t.destroyed = true
			return true
		}
		return false
	}

	// 6. Recomputa os elementos de fronteira. A ponta mais antiga pode ser
	// suavizada em direção ao próximo ponto, na proporção da vida já gasta,
	// para não dar "pop" visível quando expirar.
	if t.opts.SmoothInterpolation {
		t.smoothStart()
	}

	// 7. Passada completa de largura/cor por todos os pontos vivos. O passo
	// de amostragem muda a cada tick junto com a ocupação, então isto é
	// O(ocupação) por tick, de propósito.
	t.resample()
	return false
}

// addPoint grava a posição atual como o novo ponto mais novo do buffer.
func (t *TrailRenderer) addPoint(pos rl.Vector3) {
	if t.start == t.end {
		// Buffer vazio: primeiro grava a âncora anterior como ponto inicial,
		// senão o primeiro segmento não teria de onde partir.
		t.points[t.start] = trailPoint{pos: t.anchor, remaining: t.opts.LifetimeSeconds}
		t.writeSlotPosition(t.start)
	}

	next := (t.end + 1) % t.capacity
	if next == t.start {
		if !t.opts.StealLastPoint {
			// Recusa o ponto: o mais novo fica pinado no lugar e o movimento
			// é descartado até um slot liberar por expiração.
			return
		}
		// Rouba o slot do ponto mais antigo e o descarta.
		t.zeroSlot(t.start)
		t.start = (t.start + 1) % t.capacity
	}

	t.end = next
	t.points[t.end] = trailPoint{pos: pos, remaining: t.opts.LifetimeSeconds}
	t.newestAge = 0
	t.anchor = pos

	t.writeSlotPosition(t.end)
	prev := (t.end - 1 + t.capacity) % t.capacity
	t.writePipe(prev)
}

// expireOldest remove o ponto mais antigo: zera o tamanho dos seus dois
// elementos (some da geometria visível) e avança o cursor start.
func (t *TrailRenderer) expireOldest() {
	t.zeroSlot(t.start)
	t.start = (t.start + 1) % t.capacity
	if t.start == t.end {
		// Esvaziou: o último ponto restante também sai da geometria.
		t.zeroSlot(t.end)
	}
}

// smoothStart desloca a ponta mais antiga em direção ao próximo ponto,
// proporcional à fração da vida já consumida.
func (t *TrailRenderer) smoothStart() {
	next := (t.start + 1) % t.capacity
	life := t.opts.LifetimeSeconds
	frac := float32(1.0)
	if life > 0 {
		frac = util.Clamp(1.0-t.points[t.start].remaining/life, 0, 1)
	}

	a := t.points[t.start].pos
	b := t.points[next].pos
	av := mgl32.Vec3{a.X, a.Y, a.Z}
	bv := mgl32.Vec3{b.X, b.Y, b.Z}
	sv := av.Add(bv.Sub(av).Mul(frac))
	smoothed := rl.Vector3{X: sv.X(), Y: sv.Y(), Z: sv.Z()}

	t.chain.SetPosition(2*t.start, smoothed)
	t.chain.SetPipe(2*t.start+1, smoothed, b)
}

// resample reamostra largura e cor de todos os elementos vivos com passo
// 1/ocupação (1.0 se vazio, para nunca dividir por zero).
func (t *TrailRenderer) resample() {
	occ := t.Occupancy()
	step := float32(1.0)
	if occ > 0 {
		step = 1.0 / float32(occ)
	}

	sample := func(tv float32) (float32, rl.Color) {
		return t.opts.Width(tv) * t.opts.WidthMultiplier, t.opts.Color(tv)
	}

	tv := float32(0)
	w, c := sample(0)
	for s, k := t.start, 0; ; s, k = (s+1)%t.capacity, k+1 {
		t.chain.SetSize(2*s, w)
		t.chain.SetColor(2*s, c)

		if s == t.end {
			// O tubo do ponto mais novo não liga a nada.
			t.chain.SetSize(2*s+1, 0)
			break
		}

		nextW, nextC := sample(tv + step)
		t.chain.SetSizes(2*s+1, w, nextW)
		t.chain.SetColors(2*s+1, c, nextC)
		tv += step
		w, c = nextW, nextC
	}
}

// writeSlotPosition grava a ponta do slot na corrente.
func (t *TrailRenderer) writeSlotPosition(s int) {
	t.chain.SetPosition(2*s, t.points[s].pos)
}

// writePipe grava o tubo que liga o slot s ao slot seguinte.
func (t *TrailRenderer) writePipe(s int) {
	next := (s + 1) % t.capacity
	t.chain.SetPipe(2*s+1, t.points[s].pos, t.points[next].pos)
}

// zeroSlot remove os dois elementos do slot da geometria visível.
func (t *TrailRenderer) zeroSlot(s int) {
	t.chain.SetSize(2*s, 0)
	t.chain.SetSize(2*s+1, 0)
}

// Clear interrompe o rastro: reseta os cursores e zera o tamanho visível de
// todos os elementos em uma única passada síncrona.
func (t *TrailRenderer) Clear() {
	for s := 0; s < t.capacity; s++ {
		t.zeroSlot(s)
	}
	t.start = 0
	t.end = 0
	t.hasAnchor = false
	t.newestAge = 0
	t.chain.Refresh()
}

// Rebuild implementa Driver: realoca se preciso e re-emite todos os slots,
// vivos com suas posições, mortos com tamanho zero.
func (t *TrailRenderer) Rebuild() {
	t.chain.Allocate(t.RequiredCapacity())

	live := make(map[int]bool, t.capacity)
	if t.Occupancy() > 0 {
		for s := t.start; ; s = (s + 1) % t.capacity {
			live[s] = true
			t.writeSlotPosition(s)
			if s == t.end {
				break
			}
			t.writePipe(s)
		}
	}
	for s := 0; s < t.capacity; s++ {
		if !live[s] {
			t.chain.SetPosition(2*s, rl.Vector3{})
			t.chain.SetPipe(2*s+1, rl.Vector3{}, rl.Vector3{})
			t.zeroSlot(s)
		}
	}
	if t.Occupancy() > 0 {
		t.resample()
	}
}
