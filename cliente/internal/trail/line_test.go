package trail

import (
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"

	"TrailVision/cliente/internal/meshchain"
)

func TestFormulaDeCapacidade(t *testing.T) {
	tests := []struct {
		name   string
		points int
		loop   bool
		want   int
	}{
		{"zero pontos", 0, false, 0},
		{"um ponto", 1, false, 1},
		{"dois pontos", 2, false, 3},
		{"tres pontos abertos", 3, false, 5},
		{"tres pontos em loop", 3, true, 6},
		{"cinco pontos em loop", 5, true, 10},
	}

	for _, tt := range tests {
		l := NewLineRenderer(Options{Loop: tt.loop})
		pts := make([]rl.Vector3, tt.points)
		l.SetPoints(pts)
		if got := l.RequiredCapacity(); got != tt.want {
			t.Errorf("%s: capacidade requerida = %d, esperado %d", tt.name, got, tt.want)
		}
		if got := l.Chain().ReservedElementCount(); got != tt.want {
			t.Errorf("%s: capacidade alocada = %d, esperado %d", tt.name, got, tt.want)
		}
	}
}

// Cenário: três pontos colineares, sem loop. O buffer tem que sair como
// ponta(0), tubo(0->1), ponta(1), tubo(1->2), ponta(2).
func TestLayoutDaLinhaAberta(t *testing.T) {
	l := NewLineRenderer(Options{})
	l.SetPoints([]rl.Vector3{v3(0, 0, 0), v3(1, 0, 0), v3(2, 0, 0)})
	l.Chain().Refresh()
	data := l.Chain().Data()

	// Posição do primeiro vértice de cada elemento.
	elemX := func(i int) float32 {
		return data.Positions[i*meshchain.VertsPerElement*3]
	}
	// Extremidade oposta do primeiro vértice (só difere nos tubos).
	otherX := func(i int) float32 {
		return data.Others[i*meshchain.VertsPerElement*3]
	}

	wantPos := []float32{0, 0, 1, 1, 2}
	wantOther := []float32{0, 1, 1, 2, 2}
	for i := range wantPos {
		if elemX(i) != wantPos[i] {
			t.Errorf("elemento %d: posição X = %v, esperado %v", i, elemX(i), wantPos[i])
		}
		if otherX(i) != wantOther[i] {
			t.Errorf("elemento %d: extremidade X = %v, esperado %v", i, otherX(i), wantOther[i])
		}
	}
}

// Cenário: três pontos em loop, seis elementos, com o tubo extra no final
// ligando o último ponto de volta ao ponto 0.
func TestLayoutDaLinhaEmLoop(t *testing.T) {
	l := NewLineRenderer(Options{Loop: true})
	l.SetPoints([]rl.Vector3{v3(0, 0, 0), v3(1, 0, 0), v3(2, 0, 0)})
	l.Chain().Refresh()
	data := l.Chain().Data()

	if l.Chain().ReservedElementCount() != 6 {
		t.Fatalf("capacidade = %d, esperado 6", l.Chain().ReservedElementCount())
	}

	// Tubo de fechamento no elemento 5: vai de (2,0,0) de volta a (0,0,0).
	base := 5 * meshchain.VertsPerElement
	if data.Positions[base*3] != 2 {
		t.Errorf("início do tubo de fechamento em X = %v, esperado 2", data.Positions[base*3])
	}
	if data.Positions[(base+2)*3] != 0 {
		t.Errorf("fim do tubo de fechamento em X = %v, esperado 0", data.Positions[(base+2)*3])
	}
}

// SetPosition seguido de Refresh tem que produzir a mesma malha que uma
// reinicialização completa com a lista já mutada.
func TestEquivalenciaIncrementalCompleta(t *testing.T) {
	width := func(t float32) float32 { return 1 + t }
	color := func(t float32) rl.Color {
		return rl.NewColor(uint8(255*t), 128, uint8(255*(1-t)), 255)
	}

	base := []rl.Vector3{v3(0, 0, 0), v3(1, 1, 0), v3(2, 0, 1), v3(3, 2, 0)}

	for _, loop := range []bool{false, true} {
		for mut := 0; mut < len(base); mut++ {
			incr := NewLineRenderer(Options{Loop: loop, Width: width, Color: color})
			incr.SetPoints(base)
			incr.Chain().Refresh()
			incr.SetPosition(mut, v3(9, 9, 9))
			incr.Chain().Refresh()

			mutated := make([]rl.Vector3, len(base))
			copy(mutated, base)
			mutated[mut] = v3(9, 9, 9)
			full := NewLineRenderer(Options{Loop: loop, Width: width, Color: color})
			full.SetPoints(mutated)
			full.Chain().Refresh()

			a, b := incr.Chain().Data(), full.Chain().Data()
			for i := range b.Positions {
				if a.Positions[i] != b.Positions[i] {
					t.Fatalf("loop=%v mut=%d: posições divergem no float %d (%v != %v)", loop, mut, i, a.Positions[i], b.Positions[i])
				}
			}
			for i := range b.Sizes {
				if a.Sizes[i] != b.Sizes[i] {
					t.Fatalf("loop=%v mut=%d: tamanhos divergem no vértice %d", loop, mut, i)
				}
			}
			for i := range b.Colors {
				if a.Colors[i] != b.Colors[i] {
					t.Fatalf("loop=%v mut=%d: cores divergem no byte %d", loop, mut, i)
				}
			}
		}
	}
}

// Trocar a lista por outra de tamanho diferente força a reinicialização
// completa em vez de errar.
func TestTrocaDeTamanhoForcaRebuild(t *testing.T) {
	l := NewLineRenderer(Options{})
	l.SetPoints([]rl.Vector3{v3(0, 0, 0), v3(1, 0, 0)})
	if l.Chain().ReservedElementCount() != 3 {
		t.Fatalf("capacidade = %d, esperado 3", l.Chain().ReservedElementCount())
	}

	l.SetPoints([]rl.Vector3{v3(0, 0, 0), v3(1, 0, 0), v3(2, 0, 0), v3(3, 0, 0)})
	if l.Chain().ReservedElementCount() != 7 {
		t.Errorf("capacidade = %d após crescer a lista, esperado 7", l.Chain().ReservedElementCount())
	}

	l.SetPoints(nil)
	if l.Chain().ReservedElementCount() != 0 {
		t.Errorf("capacidade = %d com lista vazia, esperado 0", l.Chain().ReservedElementCount())
	}
	l.Chain().Refresh() // refresh vazio é sempre um no-op definido
}

func TestAmostragemDeLarguraECor(t *testing.T) {
	width := func(t float32) float32 { return t }
	l := NewLineRenderer(Options{Width: width, WidthMultiplier: 2})
	l.SetPoints([]rl.Vector3{v3(0, 0, 0), v3(1, 0, 0), v3(2, 0, 0)})
	l.Chain().Refresh()
	data := l.Chain().Data()

	// t = i/(N-1): larguras 0, 1, 2 nas pontas (multiplicador 2 aplicado).
	sizeOf := func(elem int) float32 {
		return data.Sizes[elem*meshchain.VertsPerElement]
	}
	if sizeOf(0) != 0 || sizeOf(2) != 1 || sizeOf(4) != 2 {
		t.Errorf("larguras das pontas = (%v, %v, %v), esperado (0, 1, 2)", sizeOf(0), sizeOf(2), sizeOf(4))
	}
	// Tubo 1 interpola da largura do ponto 0 para a do ponto 1.
	b := 1 * meshchain.VertsPerElement
	if data.Sizes[b] != 0 || data.Sizes[b+2] != 1 {
		t.Errorf("tamanhos do tubo 1 = (%v, %v), esperado (0, 1)", data.Sizes[b], data.Sizes[b+2])
	}
}
