package trail

import (
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"

	"TrailVision/cliente/internal/meshchain"
)

func v3(x, y, z float32) rl.Vector3 { return rl.Vector3{X: x, Y: y, Z: z} }

func newTestTrail(opts Options) *TrailRenderer {
	return NewTrailRenderer(opts)
}

func checkOccupancyInvariant(t *testing.T, tr *TrailRenderer) {
	t.Helper()
	occ := tr.Occupancy()
	want := (tr.end - tr.start + tr.capacity) % tr.capacity
	if occ != want {
		t.Fatalf("ocupação = %d, fórmula dá %d", occ, want)
	}
	if occ < 0 || occ > tr.capacity-1 {
		t.Fatalf("ocupação %d fora de [0, %d]", occ, tr.capacity-1)
	}
}

func TestRastroVazioEhNoOp(t *testing.T) {
	tr := newTestTrail(Options{MaxTrailPoints: 4, LifetimeSeconds: 5, MinVertexDistance: 1})
	tr.Chain().Refresh()

	// Ticks parados nunca criam pontos nem erram.
	for i := 0; i < 10; i++ {
		if tr.Tick(0.1, v3(0, 0, 0)) {
			t.Fatal("autodestruct em rastro que nunca teve pontos")
		}
		checkOccupancyInvariant(t, tr)
	}
	if tr.Visible() {
		t.Error("rastro parado não deveria ter geometria")
	}
}

func TestLimiarDeDistancia(t *testing.T) {
	tr := newTestTrail(Options{MaxTrailPoints: 4, LifetimeSeconds: 5, MinVertexDistance: 1})

	tr.Tick(0.016, v3(0, 0, 0))
	tr.Tick(0.016, v3(0.5, 0, 0)) // moveu 0.5 < 1: não grava
	if tr.Occupancy() != 0 {
		t.Fatalf("ocupação = %d antes de cruzar o limiar", tr.Occupancy())
	}

	tr.Tick(0.016, v3(2, 0, 0)) // moveu 2 > 1: grava
	if tr.Occupancy() != 1 {
		t.Fatalf("ocupação = %d depois de cruzar o limiar, esperado 1", tr.Occupancy())
	}
	checkOccupancyInvariant(t, tr)
}

// Cenário: rastro com vida de 5s, um único ponto gravado, objeto parado por
// 6s de ticks. O ponto expira ao cruzar 5s, a ocupação cai de 1 para 0 e o
// autodestruct dispara exatamente uma vez, no tick do cruzamento.
func TestExpiracaoComAutodestruct(t *testing.T) {
	tr := newTestTrail(Options{
		MaxTrailPoints:    4,
		LifetimeSeconds:   5,
		MinVertexDistance: 1,
		Autodestruct:      true,
	})

	tr.Tick(0.1, v3(0, 0, 0))
	tr.Tick(0.1, v3(2, 0, 0))
	if tr.Occupancy() != 1 {
		t.Fatalf("ocupação inicial = %d, esperado 1", tr.Occupancy())
	}

	fired := 0
	elapsed := float32(0)
	var firedAt float32
	for i := 0; i < 60; i++ { // 6s em passos de 0.1s
		elapsed += 0.1
		if tr.Tick(0.1, v3(2, 0, 0)) {
			fired++
			firedAt = elapsed
		}
		checkOccupancyInvariant(t, tr)
	}

	if fired != 1 {
		t.Fatalf("autodestruct disparou %d vezes, esperado exatamente 1", fired)
	}
	if firedAt < 4.9 || firedAt > 5.3 {
		t.Errorf("autodestruct em %.1fs, esperado no cruzamento dos 5s", firedAt)
	}
	if tr.Occupancy() != 0 {
		t.Errorf("ocupação = %d após expirar, esperado 0", tr.Occupancy())
	}
	if !tr.Destroyed() {
		t.Error("Destroyed() = false após o autodestruct disparar")
	}
}

// Cenário: vida de 2s, ponto gravado em (2,0,0) partindo da âncora (0,0,0).
// Com a suavização ligada, a ponta mais antiga desliza em direção ao próximo
// ponto na proporção da vida já consumida, e segue deslizando a cada tick.
func TestSuavizacaoDaPonta(t *testing.T) {
	tr := newTestTrail(Options{
		MaxTrailPoints:      4,
		LifetimeSeconds:     2,
		MinVertexDistance:   1,
		SmoothInterpolation: true,
	})

	tr.Tick(0.1, v3(0, 0, 0))
	tr.Tick(0.1, v3(2, 0, 0))
	tr.Chain().Refresh()

	startX := func() float32 {
		return tr.Chain().Data().Positions[2*tr.start*meshchain.VertsPerElement*3]
	}

	// 0.1s dos 2s consumidos: 5% do caminho de (0,0,0) até (2,0,0).
	if got := startX(); got < 0.09 || got > 0.11 {
		t.Fatalf("ponta suavizada em X = %v, esperado ~0.1", got)
	}

	tr.Tick(0.1, v3(2, 0, 0))
	tr.Chain().Refresh()
	if got := startX(); got < 0.19 || got > 0.21 {
		t.Errorf("ponta suavizada em X = %v após mais um tick, esperado ~0.2", got)
	}

	// Sem suavização a ponta fica exatamente no ponto gravado.
	plain := newTestTrail(Options{MaxTrailPoints: 4, LifetimeSeconds: 2, MinVertexDistance: 1})
	plain.Tick(0.1, v3(0, 0, 0))
	plain.Tick(0.1, v3(2, 0, 0))
	plain.Chain().Refresh()
	if x := plain.Chain().Data().Positions[2*plain.start*meshchain.VertsPerElement*3]; x != 0 {
		t.Errorf("ponta sem suavização em X = %v, esperado 0", x)
	}
}

// O frescor do ponto mais novo conta pra cima, zera a cada ponto gravado e
// satura na vida máxima.
func TestFrescorDoPontoMaisNovo(t *testing.T) {
	tr := newTestTrail(Options{MaxTrailPoints: 4, LifetimeSeconds: 1, MinVertexDistance: 1})

	tr.Tick(0.1, v3(0, 0, 0))
	tr.Tick(0.1, v3(2, 0, 0))
	if got := tr.newestAge; got < 0.09 || got > 0.11 {
		t.Fatalf("frescor após gravar = %v, esperado ~0.1", got)
	}

	// Parado até saturar: o frescor sobe a cada tick mas nunca passa da vida.
	prev := tr.newestAge
	for i := 0; i < 15 && tr.Occupancy() > 0; i++ {
		tr.Tick(0.1, v3(2, 0, 0))
		if tr.newestAge < prev {
			t.Fatalf("frescor caiu de %v para %v sem ponto novo", prev, tr.newestAge)
		}
		if tr.newestAge > tr.opts.LifetimeSeconds {
			t.Fatalf("frescor %v passou da vida máxima", tr.newestAge)
		}
		prev = tr.newestAge
	}

	// Um ponto novo zera o acumulador antes de envelhecer o tick corrente.
	tr.Tick(0.1, v3(4, 0, 0))
	if tr.newestAge > 0.11 {
		t.Errorf("frescor = %v após ponto novo, esperado ~0.1", tr.newestAge)
	}
}

// Vida restante só decresce depois de criada, com uma única expiração.
func TestEnvelhecimentoMonotonico(t *testing.T) {
	tr := newTestTrail(Options{MaxTrailPoints: 5, LifetimeSeconds: 2, MinVertexDistance: 0.5})

	tr.Tick(0.05, v3(0, 0, 0))
	tr.Tick(0.05, v3(1, 0, 0))

	prev := tr.points[tr.end].remaining
	for i := 0; i < 30; i++ {
		tr.Tick(0.05, v3(1, 0, 0))
		if tr.Occupancy() == 0 {
			break
		}
		cur := tr.points[tr.end].remaining
		if cur > prev {
			t.Fatalf("vida restante subiu de %v para %v", prev, cur)
		}
		prev = cur
	}
}

// Cenário: roubo habilitado com o buffer cheio. Um ponto novo expulsa o mais
// antigo e entra no mesmo tick; a ocupação líquida não muda.
func TestRouboComBufferCheio(t *testing.T) {
	tr := newTestTrail(Options{
		MaxTrailPoints:    4,
		LifetimeSeconds:   100,
		MinVertexDistance: 1,
		StealLastPoint:    true,
	})

	x := float32(0)
	tr.Tick(0.016, v3(x, 0, 0))
	for tr.Occupancy() < tr.capacity-1 {
		x += 2
		tr.Tick(0.016, v3(x, 0, 0))
		checkOccupancyInvariant(t, tr)
	}
	full := tr.Occupancy()
	oldStart := tr.start

	x += 2
	tr.Tick(0.016, v3(x, 0, 0))
	checkOccupancyInvariant(t, tr)

	if tr.Occupancy() != full {
		t.Errorf("ocupação mudou de %d para %d com roubo habilitado", full, tr.Occupancy())
	}
	if tr.start == oldStart {
		t.Error("start não avançou: o ponto mais antigo não foi roubado")
	}
}

// Com roubo desabilitado, o buffer cheio recusa pontos novos e pina o mais
// novo no lugar; o movimento é descartado até um slot liberar.
func TestRecusaComBufferCheio(t *testing.T) {
	tr := newTestTrail(Options{
		MaxTrailPoints:    4,
		LifetimeSeconds:   100,
		MinVertexDistance: 1,
		StealLastPoint:    false,
	})

	x := float32(0)
	tr.Tick(0.016, v3(x, 0, 0))
	for tr.Occupancy() < tr.capacity-1 {
		x += 2
		tr.Tick(0.016, v3(x, 0, 0))
	}
	newest := tr.points[tr.end].pos

	x += 2
	tr.Tick(0.016, v3(x, 0, 0))
	checkOccupancyInvariant(t, tr)

	if tr.Occupancy() != tr.capacity-1 {
		t.Errorf("ocupação = %d, esperado permanecer em %d", tr.Occupancy(), tr.capacity-1)
	}
	if tr.points[tr.end].pos != newest {
		t.Error("ponto mais novo saiu do lugar em vez de ficar pinado")
	}
}

func TestClampDaConfiguracao(t *testing.T) {
	tests := []struct {
		name string
		in   Options
		cap  int
		minD float32
	}{
		{"capacidade abaixo do mínimo", Options{MaxTrailPoints: 1, MinVertexDistance: 1}, 3, 1},
		{"limiar abaixo do piso", Options{MaxTrailPoints: 8, MinVertexDistance: 0}, 8, minVertexDistanceFloor},
		{"vida negativa", Options{MaxTrailPoints: 8, MinVertexDistance: 1, LifetimeSeconds: -2}, 8, 1},
	}

	for _, tt := range tests {
		tr := newTestTrail(tt.in)
		if tr.capacity != tt.cap {
			t.Errorf("%s: capacidade = %d, esperado %d", tt.name, tr.capacity, tt.cap)
		}
		if tr.opts.MinVertexDistance != tt.minD {
			t.Errorf("%s: limiar = %v, esperado %v", tt.name, tr.opts.MinVertexDistance, tt.minD)
		}
		if tr.opts.LifetimeSeconds < 0 {
			t.Errorf("%s: vida negativa não foi clampada", tt.name)
		}
	}
}

func TestClearZeraGeometria(t *testing.T) {
	tr := newTestTrail(Options{MaxTrailPoints: 4, LifetimeSeconds: 10, MinVertexDistance: 1})
	tr.Tick(0.016, v3(0, 0, 0))
	tr.Tick(0.016, v3(2, 0, 0))
	tr.Tick(0.016, v3(4, 0, 0))
	tr.Chain().Refresh()

	tr.Clear()
	if tr.Occupancy() != 0 {
		t.Fatalf("ocupação = %d após Clear", tr.Occupancy())
	}
	data := tr.Chain().Data()
	for i, s := range data.Sizes {
		if s != 0 {
			t.Fatalf("tamanho visível não zerado no vértice %d", i)
		}
	}
}

// O cursor circular precisa dar a volta sem corromper a ordem dos pontos.
func TestVoltaDoCursor(t *testing.T) {
	tr := newTestTrail(Options{
		MaxTrailPoints:    4,
		LifetimeSeconds:   100,
		MinVertexDistance: 1,
		StealLastPoint:    true,
	})

	x := float32(0)
	tr.Tick(0.016, v3(x, 0, 0))
	for i := 0; i < 12; i++ {
		x += 2
		tr.Tick(0.016, v3(x, 0, 0))
		checkOccupancyInvariant(t, tr)
	}

	// Depois de muitas voltas, o mais novo tem que ser a última posição dada.
	if tr.points[tr.end].pos != v3(x, 0, 0) {
		t.Errorf("ponto mais novo = %v, esperado %v", tr.points[tr.end].pos, v3(x, 0, 0))
	}
	// E a ordem do mais antigo ao mais novo tem que ser estritamente crescente em X.
	prev := tr.points[tr.start].pos.X
	for s := (tr.start + 1) % tr.capacity; ; s = (s + 1) % tr.capacity {
		if tr.points[s].pos.X <= prev {
			t.Fatalf("ordem dos pontos corrompida na volta do cursor (X %v depois de %v)", tr.points[s].pos.X, prev)
		}
		prev = tr.points[s].pos.X
		if s == tr.end {
			break
		}
	}
}
