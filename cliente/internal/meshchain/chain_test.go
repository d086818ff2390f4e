package meshchain

import (
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
)

func TestAllocateIdempotente(t *testing.T) {
	c := New()
	c.Allocate(5)
	if c.ReservedElementCount() != 5 {
		t.Fatalf("capacidade = %d, esperado 5", c.ReservedElementCount())
	}

	before := &c.data.Positions[0]
	c.Allocate(5)
	if &c.data.Positions[0] != before {
		t.Error("Allocate com a mesma capacidade realocou os buffers")
	}

	c.Allocate(8)
	if c.ReservedElementCount() != 8 {
		t.Fatalf("capacidade = %d, esperado 8", c.ReservedElementCount())
	}
	if len(c.data.Indices) != 8*IndicesPerElement {
		t.Errorf("index buffer = %d índices, esperado %d", len(c.data.Indices), 8*IndicesPerElement)
	}
}

func TestIndiceForaDaCapacidade(t *testing.T) {
	c := New()
	c.Allocate(3)

	defer func() {
		if recover() == nil {
			t.Error("setter com índice fora da capacidade deveria entrar em pânico")
		}
	}()
	c.SetPosition(3, rl.Vector3{})
}

func TestRefreshIdempotente(t *testing.T) {
	c := New()
	c.Allocate(2)
	c.SetPosition(0, rl.Vector3{X: 1, Y: 2, Z: 3})
	c.SetPipe(1, rl.Vector3{X: 1, Y: 2, Z: 3}, rl.Vector3{X: 4, Y: 5, Z: 6})
	c.SetSize(0, 0.5)
	c.SetColor(0, rl.Red)

	commits := 0
	c.OnCommit(func(data *BufferData, dirty DirtyFlags) {
		commits++
	})

	c.Refresh()
	if commits != 1 {
		t.Fatalf("commits = %d, esperado 1", commits)
	}
	if c.Dirty() != DirtyNone {
		t.Errorf("flags sujas após Refresh: %b", c.Dirty())
	}

	snapshot := make([]float32, len(c.data.Positions))
	copy(snapshot, c.data.Positions)

	// Segundo Refresh sem setters no meio: nenhum recompute, saída idêntica.
	c.Refresh()
	if commits != 1 {
		t.Errorf("Refresh sem flags sujas recomputou (commits = %d)", commits)
	}
	for i, v := range c.data.Positions {
		if snapshot[i] != v {
			t.Fatalf("buffer de posições mudou sem setter (vértice float %d)", i)
		}
	}
}

func TestCommitPorCategoria(t *testing.T) {
	c := New()
	c.Allocate(1)
	c.SetPosition(0, rl.Vector3{X: 1})
	c.Refresh()

	var got DirtyFlags
	c.OnCommit(func(data *BufferData, dirty DirtyFlags) {
		got = dirty
	})

	c.SetColor(0, rl.Blue)
	c.Refresh()
	if got != DirtyColors {
		t.Errorf("dirty no commit = %b, esperado apenas Colors", got)
	}

	c.SetSizes(0, 0.1, 0.2)
	c.Refresh()
	if got != DirtySizes {
		t.Errorf("dirty no commit = %b, esperado apenas Sizes", got)
	}
}

func TestGeometriaDoElemento(t *testing.T) {
	c := New()
	c.Allocate(2)

	a := rl.Vector3{X: 0, Y: 0, Z: 0}
	b := rl.Vector3{X: 2, Y: 0, Z: 0}
	c.SetPosition(0, a)
	c.SetPipe(1, a, b)
	c.SetSizes(1, 0.5, 1.0)
	c.SetColors(1, rl.Red, rl.Blue)
	c.Refresh()

	// Billboard: os 4 vértices no mesmo ponto, cantos nos 4 quadrantes.
	for k := 0; k < VertsPerElement; k++ {
		if c.data.Positions[k*3] != a.X {
			t.Errorf("vértice %d do billboard fora do ponto", k)
		}
	}
	wantCorners := []float32{-1, -1, 1, -1, 1, 1, -1, 1}
	for i, w := range wantCorners {
		if c.data.Corners[i] != w {
			t.Fatalf("canto do billboard [%d] = %v, esperado %v", i, c.data.Corners[i], w)
		}
	}

	// Tubo: dois vértices em cada extremidade, tamanhos e cores pareados.
	base := VertsPerElement
	if c.data.Positions[(base+2)*3] != b.X {
		t.Error("extremidade B do tubo não está na posição esperada")
	}
	if c.data.Others[(base+0)*3] != b.X || c.data.Others[(base+2)*3] != a.X {
		t.Error("stream de extremidades pareadas do tubo incorreto")
	}
	if c.data.Sizes[base+0] != 0.5 || c.data.Sizes[base+3] != 1.0 {
		t.Errorf("tamanhos do tubo = (%v, %v), esperado (0.5, 1.0)", c.data.Sizes[base+0], c.data.Sizes[base+3])
	}
	if c.data.Colors[(base+0)*4] != rl.Red.R || c.data.Colors[(base+2)*4+2] != rl.Blue.B {
		t.Error("cores pareadas do tubo incorretas")
	}

	// Winding fixo: (0,1,2)(0,2,3) relativo à base do quad.
	want := []uint16{4, 5, 6, 4, 6, 7}
	for i, w := range want {
		if c.data.Indices[IndicesPerElement+i] != w {
			t.Fatalf("índice [%d] do segundo quad = %d, esperado %d", i, c.data.Indices[IndicesPerElement+i], w)
		}
	}
}
