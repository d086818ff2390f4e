package render

/*
#include <stdlib.h>
*/
import "C"

import (
	"log"
	"unsafe"

	rl "github.com/gen2brain/raylib-go/raylib"

	"TrailVision/cliente/internal/meshchain"
)

// Índices dos vertex buffers do raylib (layout do shader padrão do rlgl).
const (
	bufferPositions = 0
	bufferTexcoords = 1
	bufferNormals   = 2
	bufferColors    = 3
	bufferTangents  = 4
)

// Renderer possui o shader de extrusão e o material compartilhado por todas
// as correntes. As correntes em si viram ChainModels, um por driver.
type Renderer struct {
	Shader   rl.Shader
	material rl.Material

	camPosLoc   int32
	camRightLoc int32
	camUpLoc    int32
}

// NewRenderer carrega o shader de extrusão. Requer a janela inicializada.
func NewRenderer() *Renderer {
	r := &Renderer{}

	if rl.IsWindowReady() {
		r.Shader = rl.LoadShaderFromMemory(chainVertexShader, chainFragmentShader)
		r.camPosLoc = rl.GetShaderLocation(r.Shader, "camPos")
		r.camRightLoc = rl.GetShaderLocation(r.Shader, "camRight")
		r.camUpLoc = rl.GetShaderLocation(r.Shader, "camUp")

		r.material = rl.LoadMaterialDefault()
		r.material.Shader = r.Shader
		log.Printf("[Renderer] Shader de extrusão carregado (id=%d)", r.Shader.ID)
	}

	return r
}

// Begin atualiza os uniforms de câmera. Deve rodar uma vez por frame, antes
// de desenhar qualquer corrente.
func (r *Renderer) Begin(cam rl.Camera3D) {
	if r.Shader.ID == 0 {
		return
	}

	forward := rl.Vector3Normalize(rl.Vector3Subtract(cam.Target, cam.Position))
	right := rl.Vector3Normalize(rl.Vector3CrossProduct(forward, cam.Up))
	up := rl.Vector3CrossProduct(right, forward)

	rl.SetShaderValue(r.Shader, r.camPosLoc, []float32{cam.Position.X, cam.Position.Y, cam.Position.Z}, rl.ShaderUniformVec3)
	rl.SetShaderValue(r.Shader, r.camRightLoc, []float32{right.X, right.Y, right.Z}, rl.ShaderUniformVec3)
	rl.SetShaderValue(r.Shader, r.camUpLoc, []float32{up.X, up.Y, up.Z}, rl.ShaderUniformVec3)
}

// DrawChain desenha uma corrente já materializada. O transform é identidade
// para correntes em espaço de mundo, ou a matriz do dono em espaço local.
func (r *Renderer) DrawChain(m *ChainModel, transform rl.Matrix) {
	if m == nil || !m.uploaded || m.vertexCount == 0 {
		return
	}
	rl.DrawMesh(m.mesh, r.material, transform)
}

// Unload libera o shader.
func (r *Renderer) Unload() {
	if r.Shader.ID != 0 {
		rl.UnloadShader(r.Shader)
	}
}

// ChainModel é o lado GPU de uma corrente: uma única malha indexada de
// triângulos, atualizada por categoria suja a cada commit.
type ChainModel struct {
	mesh        rl.Mesh
	uploaded    bool
	vertexCount int
	tangents    []float32 // staging: tamanho empacotado no .x de cada tangente
}

// NewChainModel registra o modelo como destino de commit da corrente.
// A partir daí, cada Refresh com trabalho empurra só os streams que mudaram.
func NewChainModel(chain *meshchain.Chain) *ChainModel {
	m := &ChainModel{}
	chain.OnCommit(m.commit)
	return m
}

func (m *ChainModel) commit(data *meshchain.BufferData, dirty meshchain.DirtyFlags) {
	if !rl.IsWindowReady() {
		return
	}

	vcount := len(data.Sizes)
	if vcount == 0 {
		m.release()
		return
	}

	// Capacidade mudou: a malha antiga é destruída e substituída por inteiro,
	// nunca redimensionada no lugar.
	if !m.uploaded || vcount != m.vertexCount {
		m.upload(data)
		return
	}

	if dirty&meshchain.DirtyPositions != 0 {
		rl.UpdateMeshBuffer(m.mesh, bufferPositions, floatBytes(data.Positions), 0)
		rl.UpdateMeshBuffer(m.mesh, bufferNormals, floatBytes(data.Others), 0)
		rl.UpdateMeshBuffer(m.mesh, bufferTexcoords, floatBytes(data.Corners), 0)
	}
	if dirty&meshchain.DirtySizes != 0 {
		m.packTangents(data.Sizes)
		rl.UpdateMeshBuffer(m.mesh, bufferTangents, floatBytes(m.tangents), 0)
	}
	if dirty&meshchain.DirtyColors != 0 {
		rl.UpdateMeshBuffer(m.mesh, bufferColors, data.Colors, 0)
	}
}

// upload sobe a malha completa para a GPU como buffers dinâmicos.
func (m *ChainModel) upload(data *meshchain.BufferData) {
	m.release()

	vcount := len(data.Sizes)
	m.packTangents(data.Sizes)

	var mesh rl.Mesh
	mesh.VertexCount = int32(vcount)
	mesh.TriangleCount = int32(len(data.Indices) / 3)

	mesh.Vertices = (*float32)(copyToC(unsafe.Pointer(&data.Positions[0]), len(data.Positions)*4))
	mesh.Normals = (*float32)(copyToC(unsafe.Pointer(&data.Others[0]), len(data.Others)*4))
	mesh.Texcoords = (*float32)(copyToC(unsafe.Pointer(&data.Corners[0]), len(data.Corners)*4))
	mesh.Tangents = (*float32)(copyToC(unsafe.Pointer(&m.tangents[0]), len(m.tangents)*4))
	mesh.Colors = (*uint8)(copyToC(unsafe.Pointer(&data.Colors[0]), len(data.Colors)))
	mesh.Indices = (*uint16)(copyToC(unsafe.Pointer(&data.Indices[0]), len(data.Indices)*2))

	rl.UploadMesh(&mesh, true)
	// As cópias em RAM não são mais necessárias: os updates parciais vão
	// direto do Go para a GPU via UpdateMeshBuffer.
	freeMeshRAM(&mesh)

	m.mesh = mesh
	m.vertexCount = vcount
	m.uploaded = true
}

// packTangents espalha o stream de tamanhos (1 float por vértice) no layout
// de tangentes do raylib (4 floats por vértice, tamanho no .x).
func (m *ChainModel) packTangents(sizes []float32) {
	need := len(sizes) * 4
	if cap(m.tangents) < need {
		m.tangents = make([]float32, need)
	}
	m.tangents = m.tangents[:need]
	for i, s := range sizes {
		m.tangents[i*4+0] = s
		m.tangents[i*4+1] = 0
		m.tangents[i*4+2] = 0
		m.tangents[i*4+3] = 0
	}
}

// release devolve a malha ativa. As cópias em C já foram liberadas logo após
// o upload, então só os buffers de GPU restam.
func (m *ChainModel) release() {
	if !m.uploaded {
		return
	}
	rl.UnloadMesh(&m.mesh)
	m.uploaded = false
	m.vertexCount = 0
}

// Unload libera os recursos do modelo.
func (m *ChainModel) Unload() {
	m.release()
}

// copyToC duplica um bloco de memória Go para o heap C, como o raylib espera
// para buffers de malha que ele mesmo vai liberar ou reler.
func copyToC(data unsafe.Pointer, size int) unsafe.Pointer {
	if size <= 0 || data == nil {
		return nil
	}
	ptr := C.malloc(C.size_t(size))
	if ptr == nil {
		return nil
	}
	cSlice := unsafe.Slice((*byte)(ptr), size)
	goSlice := unsafe.Slice((*byte)(data), size)
	copy(cSlice, goSlice)
	return ptr
}

// freeMeshRAM libera as cópias em C dos buffers de uma malha.
func freeMeshRAM(mesh *rl.Mesh) {
	if mesh.Vertices != nil {
		C.free(unsafe.Pointer(mesh.Vertices))
		mesh.Vertices = nil
	}
	if mesh.Normals != nil {
		C.free(unsafe.Pointer(mesh.Normals))
		mesh.Normals = nil
	}
	if mesh.Texcoords != nil {
		C.free(unsafe.Pointer(mesh.Texcoords))
		mesh.Texcoords = nil
	}
	if mesh.Tangents != nil {
		C.free(unsafe.Pointer(mesh.Tangents))
		mesh.Tangents = nil
	}
	if mesh.Colors != nil {
		C.free(unsafe.Pointer(mesh.Colors))
		mesh.Colors = nil
	}
	if mesh.Indices != nil {
		C.free(unsafe.Pointer(mesh.Indices))
		mesh.Indices = nil
	}
}

// floatBytes reinterpreta um slice de float32 como bytes para o
// UpdateMeshBuffer, sem cópia.
func floatBytes(f []float32) []byte {
	if len(f) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&f[0])), len(f)*4)
}
