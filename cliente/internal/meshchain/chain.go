package meshchain

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// DirtyFlags marca quais categorias de dados por elemento mudaram desde o
// último Refresh. O commit é adiado: os setters apenas gravam os valores e o
// Refresh materializa tudo de uma vez nos buffers de desenho.
type DirtyFlags uint8

const (
	DirtyNone      DirtyFlags = 0
	DirtyPositions DirtyFlags = 1 << 0
	DirtySizes     DirtyFlags = 1 << 1
	DirtyColors    DirtyFlags = 1 << 2
	DirtyAll                  = DirtyPositions | DirtySizes | DirtyColors
)

type elementKind uint8

const (
	// Elemento de ponta: quad billboard centrado em um único ponto.
	elemPoint elementKind = iota
	// Elemento de tubo: quad ligando dois pontos consecutivos.
	elemPipe
)

// element é um slot do buffer plano da corrente. Índices pares são pontas
// (billboard) e ímpares são tubos, mas o buffer em si não impõe a paridade:
// quem decide o papel de cada slot é o driver, via SetPosition/SetPipe.
type element struct {
	kind   elementKind
	posA   rl.Vector3
	posB   rl.Vector3 // extremidade oposta (apenas tubos)
	sizeA  float32
	sizeB  float32
	colorA rl.Color
	colorB rl.Color
}

// Vértices por elemento e índices por elemento (dois triângulos por quad).
const (
	VertsPerElement   = 4
	IndicesPerElement = 6
)

// BufferData contém os streams de vértices prontos para upload, no mesmo
// espírito do GeometryData dos meshers de voxel: arrays planos paralelos.
//
// Layout por vértice:
//   - Positions: posição do ponto do elemento (3 floats)
//   - Others:    extremidade pareada do segmento (3 floats; igual à posição
//     nos billboards, o que sinaliza ao shader "sem direção")
//   - Corners:   deslocamento 2D local do canto do quad (2 floats), consumido
//     pelo backend para extrudar o quad na tela
//   - Sizes:     raio de extrusão (1 float)
//   - Colors:    RGBA (4 bytes)
type BufferData struct {
	Positions []float32
	Others    []float32
	Corners   []float32
	Sizes     []float32
	Colors    []uint8
	Indices   []uint16
}

// CommitFunc recebe os buffers regenerados e as categorias que mudaram.
// O renderer registra aqui o push para a GPU; em testes fica nil.
type CommitFunc func(data *BufferData, dirty DirtyFlags)

// Chain é o buffer plano de elementos alternados ponta/tubo que representa
// uma linha ou rastro contínuo como uma única malha indexada.
type Chain struct {
	elements []element
	data     BufferData
	dirty    DirtyFlags
	onCommit CommitFunc
}

// New cria uma corrente vazia. Use Allocate antes de emitir elementos.
func New() *Chain {
	return &Chain{}
}

// OnCommit registra o callback chamado ao final de cada Refresh com trabalho.
func (c *Chain) OnCommit(fn CommitFunc) {
	c.onCommit = fn
}

// ReservedElementCount retorna a capacidade atualmente alocada.
// Os drivers comparam com a capacidade requerida para decidir realocação.
func (c *Chain) ReservedElementCount() int {
	return len(c.elements)
}

// Allocate (re)dimensiona o armazenamento interno para a quantidade de
// elementos pedida. Idempotente: repetir com a mesma capacidade não faz nada.
// Mudar a capacidade descarta o conteúdo anterior por completo: é o rebuild
// do driver que preenche o novo buffer, nunca uma migração parcial.
func (c *Chain) Allocate(requiredElementCount int) {
	if requiredElementCount < 0 {
		requiredElementCount = 0
	}
	if len(c.elements) == requiredElementCount {
		return
	}

	c.elements = make([]element, requiredElementCount)

	vcount := requiredElementCount * VertsPerElement
	c.data.Positions = make([]float32, vcount*3)
	c.data.Others = make([]float32, vcount*3)
	c.data.Corners = make([]float32, vcount*2)
	c.data.Sizes = make([]float32, vcount)
	c.data.Colors = make([]uint8, vcount*4)

	// O index buffer é fixo por alocação: dois triângulos por quad, sempre
	// na mesma ordem de winding (0,1,2)(0,2,3).
	c.data.Indices = make([]uint16, requiredElementCount*IndicesPerElement)
	for i := 0; i < requiredElementCount; i++ {
		base := uint16(i * VertsPerElement)
		idx := i * IndicesPerElement
		c.data.Indices[idx+0] = base
		c.data.Indices[idx+1] = base + 1
		c.data.Indices[idx+2] = base + 2
		c.data.Indices[idx+3] = base
		c.data.Indices[idx+4] = base + 2
		c.data.Indices[idx+5] = base + 3
	}

	c.dirty = DirtyAll
}

// checkIndex valida o índice do elemento. Índice fora da capacidade alocada
// só acontece quando um driver esqueceu de realocar antes de emitir updates,
// então falhamos rápido em vez de clampar silenciosamente.
func (c *Chain) checkIndex(index int) {
	if index < 0 || index >= len(c.elements) {
		panic(fmt.Sprintf("meshchain: índice de elemento %d fora da capacidade %d", index, len(c.elements)))
	}
}

// SetPosition marca o elemento como ponta (billboard) na posição dada.
func (c *Chain) SetPosition(index int, pos rl.Vector3) {
	c.checkIndex(index)
	e := &c.elements[index]
	e.kind = elemPoint
	e.posA = pos
	e.posB = pos
	c.dirty |= DirtyPositions
}

// SetPipe marca o elemento como tubo ligando posA -> posB.
func (c *Chain) SetPipe(index int, posA, posB rl.Vector3) {
	c.checkIndex(index)
	e := &c.elements[index]
	e.kind = elemPipe
	e.posA = posA
	e.posB = posB
	c.dirty |= DirtyPositions
}

// SetSize define um raio de extrusão constante para o elemento.
func (c *Chain) SetSize(index int, size float32) {
	c.checkIndex(index)
	e := &c.elements[index]
	e.sizeA = size
	e.sizeB = size
	c.dirty |= DirtySizes
}

// SetSizes define raios de extrusão distintos para o início e o fim do quad.
func (c *Chain) SetSizes(index int, sizeA, sizeB float32) {
	c.checkIndex(index)
	e := &c.elements[index]
	e.sizeA = sizeA
	e.sizeB = sizeB
	c.dirty |= DirtySizes
}

// SetColor define uma cor constante para o elemento.
func (c *Chain) SetColor(index int, color rl.Color) {
	c.checkIndex(index)
	e := &c.elements[index]
	e.colorA = color
	e.colorB = color
	c.dirty |= DirtyColors
}

// SetColors define cores interpoladas entre o início e o fim do quad.
func (c *Chain) SetColors(index int, colorA, colorB rl.Color) {
	c.checkIndex(index)
	e := &c.elements[index]
	e.colorA = colorA
	e.colorB = colorB
	c.dirty |= DirtyColors
}

// MarkDirty força o re-commit de uma ou mais categorias no próximo Refresh.
func (c *Chain) MarkDirty(flags DirtyFlags) {
	c.dirty |= flags
}

// Dirty retorna as categorias pendentes de commit.
func (c *Chain) Dirty() DirtyFlags {
	return c.dirty
}

// Data expõe os buffers materializados (somente leitura por convenção).
// Válido após um Refresh; o renderer usa no primeiro upload.
func (c *Chain) Data() *BufferData {
	return &c.data
}

// Refresh regenera os streams de vértices das categorias sujas a partir dos
// valores por elemento, entrega ao callback de commit e limpa as flags.
// É o único ponto com trabalho O(capacidade); sem flags sujas é um no-op.
func (c *Chain) Refresh() {
	if c.dirty == DirtyNone {
		return
	}

	if c.dirty&DirtyPositions != 0 {
		c.commitPositions()
	}
	if c.dirty&DirtySizes != 0 {
		c.commitSizes()
	}
	if c.dirty&DirtyColors != 0 {
		c.commitColors()
	}

	if c.onCommit != nil {
		c.onCommit(&c.data, c.dirty)
	}
	c.dirty = DirtyNone
}

// commitPositions preenche posições, extremidades pareadas e cantos.
// Os cantos acompanham as posições porque dependem do papel do elemento:
// billboards extrudam nos dois eixos da tela, tubos apenas na perpendicular.
func (c *Chain) commitPositions() {
	for i := range c.elements {
		e := &c.elements[i]
		v := i * VertsPerElement

		if e.kind == elemPoint {
			for k := 0; k < VertsPerElement; k++ {
				writeVec3(c.data.Positions, v+k, e.posA)
				writeVec3(c.data.Others, v+k, e.posA)
			}
			writeVec2(c.data.Corners, v+0, -1, -1)
			writeVec2(c.data.Corners, v+1, 1, -1)
			writeVec2(c.data.Corners, v+2, 1, 1)
			writeVec2(c.data.Corners, v+3, -1, 1)
			continue
		}

		// Tubo: dois vértices em cada extremidade, extrusão só no eixo Y
		// do canto, para o quad encostar sem folga nos billboards vizinhos.
		writeVec3(c.data.Positions, v+0, e.posA)
		writeVec3(c.data.Positions, v+1, e.posA)
		writeVec3(c.data.Positions, v+2, e.posB)
		writeVec3(c.data.Positions, v+3, e.posB)
		writeVec3(c.data.Others, v+0, e.posB)
		writeVec3(c.data.Others, v+1, e.posB)
		writeVec3(c.data.Others, v+2, e.posA)
		writeVec3(c.data.Others, v+3, e.posA)
		writeVec2(c.data.Corners, v+0, 0, -1)
		writeVec2(c.data.Corners, v+1, 0, 1)
		writeVec2(c.data.Corners, v+2, 0, 1)
		writeVec2(c.data.Corners, v+3, 0, -1)
	}
}

func (c *Chain) commitSizes() {
	for i := range c.elements {
		e := &c.elements[i]
		v := i * VertsPerElement
		c.data.Sizes[v+0] = e.sizeA
		c.data.Sizes[v+1] = e.sizeA
		c.data.Sizes[v+2] = e.sizeB
		c.data.Sizes[v+3] = e.sizeB
	}
}

func (c *Chain) commitColors() {
	for i := range c.elements {
		e := &c.elements[i]
		v := i * VertsPerElement
		writeColor(c.data.Colors, v+0, e.colorA)
		writeColor(c.data.Colors, v+1, e.colorA)
		writeColor(c.data.Colors, v+2, e.colorB)
		writeColor(c.data.Colors, v+3, e.colorB)
	}
}

func writeVec3(dst []float32, vertex int, v rl.Vector3) {
	i := vertex * 3
	dst[i+0] = v.X
	dst[i+1] = v.Y
	dst[i+2] = v.Z
}

func writeVec2(dst []float32, vertex int, x, y float32) {
	i := vertex * 2
	dst[i+0] = x
	dst[i+1] = y
}

func writeColor(dst []uint8, vertex int, c rl.Color) {
	i := vertex * 4
	dst[i+0] = c.R
	dst[i+1] = c.G
	dst[i+2] = c.B
	dst[i+3] = c.A
}
