package camera

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"

	"TrailVision/shared/util"
)

// CameraController gerencia a órbita da câmera de demonstração: alvo e zoom
// interpolados suavemente, rotação por arrasto do mouse.
type CameraController struct {
	RLCamera rl.Camera3D

	// Configurações
	MinZoom      float32
	MaxZoom      float32
	RotateSpeed  float32
	ZoomSpeed    float32
	SmoothFactor float32 // 0.0 a 1.0 (quanto menor, mais suave/lento)

	// Estado alvo (para interpolação suave)
	TargetLookAt rl.Vector3
	TargetZoom   float32
	TargetAngleY float32 // rotação horizontal (radianos)
	TargetAngleX float32 // rotação vertical (radianos)

	// Estado atual (interpolado)
	CurrentLookAt rl.Vector3
	CurrentZoom   float32
}

// New cria um novo controlador de câmera.
func New() *CameraController {
	c := &CameraController{
		MinZoom:      3.0,
		MaxZoom:      120.0,
		RotateSpeed:  2.0,
		ZoomSpeed:    5.0,
		SmoothFactor: 0.12,

		TargetLookAt: rl.Vector3{X: 0, Y: 0, Z: 0},
		TargetZoom:   30.0,
		TargetAngleY: 45.0 * rl.Deg2rad,
		TargetAngleX: -35.0 * rl.Deg2rad,
	}

	// Inicializa os valores atuais com os alvos para não "saltar" no início
	c.CurrentLookAt = c.TargetLookAt
	c.CurrentZoom = c.TargetZoom

	c.RLCamera = rl.Camera3D{
		Up:         rl.Vector3{X: 0, Y: 1, Z: 0},
		Fovy:       45.0,
		Projection: rl.CameraPerspective,
	}

	c.reposition()
	return c
}

// SetTarget define o alvo da câmera imediatamente (sem suavização).
func (c *CameraController) SetTarget(pos rl.Vector3) {
	c.TargetLookAt = pos
	c.CurrentLookAt = pos
	c.reposition()
}

// Update lê a entrada do mouse e interpola a câmera até o estado alvo.
// Deve ser chamado a cada frame.
func (c *CameraController) Update(dt float32) {
	// Rotação por arrasto com o botão direito
	if rl.IsMouseButtonDown(rl.MouseRightButton) {
		delta := rl.GetMouseDelta()
		c.TargetAngleY -= delta.X * 0.005 * c.RotateSpeed
		c.TargetAngleX -= delta.Y * 0.005 * c.RotateSpeed
		c.TargetAngleX = util.Clamp(c.TargetAngleX, -1.5, -0.05)
	}

	// Zoom pela roda, proporcional à distância atual
	wheel := rl.GetMouseWheelMove()
	if wheel != 0 {
		c.TargetZoom -= wheel * c.ZoomSpeed * (c.TargetZoom / 30.0)
		c.TargetZoom = util.Clamp(c.TargetZoom, c.MinZoom, c.MaxZoom)
	}

	// Amortecimento normalizado para 60 FPS
	factor := c.SmoothFactor * 60.0 * dt
	if factor > 1.0 {
		factor = 1.0
	}

	// Conversão rl.Vector3 -> mgl32.Vec3 para interpolação segura
	curVec := mgl32.Vec3{c.CurrentLookAt.X, c.CurrentLookAt.Y, c.CurrentLookAt.Z}
	tgtVec := mgl32.Vec3{c.TargetLookAt.X, c.TargetLookAt.Y, c.TargetLookAt.Z}
	lerpedVec := curVec.Add(tgtVec.Sub(curVec).Mul(factor))

	c.CurrentLookAt = rl.Vector3{X: lerpedVec.X(), Y: lerpedVec.Y(), Z: lerpedVec.Z()}
	c.CurrentZoom = util.Lerp(c.CurrentZoom, c.TargetZoom, factor)

	c.reposition()
}

// reposition recalcula a posição da câmera a partir dos ângulos e zoom
// atuais (coordenadas esféricas ao redor do alvo).
func (c *CameraController) reposition() {
	dist := c.CurrentZoom
	cosX := float32(math.Cos(float64(c.TargetAngleX)))

	offset := rl.Vector3{
		X: dist * cosX * float32(math.Sin(float64(c.TargetAngleY))),
		Y: dist * -float32(math.Sin(float64(c.TargetAngleX))),
		Z: dist * cosX * float32(math.Cos(float64(c.TargetAngleY))),
	}

	c.RLCamera.Target = c.CurrentLookAt
	c.RLCamera.Position = rl.Vector3{
		X: c.CurrentLookAt.X + offset.X,
		Y: c.CurrentLookAt.Y + offset.Y,
		Z: c.CurrentLookAt.Z + offset.Z,
	}
}
