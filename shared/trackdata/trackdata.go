package trackdata

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// TrackPoint é um ponto gravado de um trajeto, com o instante relativo ao
// início da gravação.
type TrackPoint struct {
	X, Y, Z float32
	T       float32 // segundos desde o início da gravação
}

// Track é um trajeto nomeado: a sequência ordenada de pontos gravados de um
// rastro, pronta para ser reproduzida como uma linha.
type Track struct {
	Name   string
	Points []TrackPoint
}

// Append grava mais um ponto no final do trajeto.
func (t *Track) Append(pos rl.Vector3, elapsed float32) {
	t.Points = append(t.Points, TrackPoint{X: pos.X, Y: pos.Y, Z: pos.Z, T: elapsed})
}

// Positions converte os pontos gravados para a lista de posições que o
// driver de linha consome.
func (t *Track) Positions() []rl.Vector3 {
	out := make([]rl.Vector3, len(t.Points))
	for i, p := range t.Points {
		out[i] = rl.Vector3{X: p.X, Y: p.Y, Z: p.Z}
	}
	return out
}
