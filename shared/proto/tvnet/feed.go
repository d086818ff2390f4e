package tvnet

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// EntityState é a posição atual de uma entidade rastreada no feed.
type EntityState struct {
	ID int64
	X  float32
	Y  float32
	Z  float32
}

// EntityUpdateMessage é o quadro periódico do servidor: o estado de todas as
// entidades vivas mais os IDs removidos desde o último quadro.
type EntityUpdateMessage struct {
	Entities []EntityState
	Removed  []int64
}

// Números de campo do wire format.
const (
	fieldEntities = 1
	fieldRemoved  = 2

	fieldEntityID = 1
	fieldEntityX  = 2
	fieldEntityY  = 3
	fieldEntityZ  = 4
)

func (e *EntityState) marshal() []byte {
	var b []byte
	b = protowire.AppendTag(b, fieldEntityID, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(e.ID))
	b = protowire.AppendTag(b, fieldEntityX, protowire.Fixed32Type)
	b = protowire.AppendFixed32(b, math.Float32bits(e.X))
	b = protowire.AppendTag(b, fieldEntityY, protowire.Fixed32Type)
	b = protowire.AppendFixed32(b, math.Float32bits(e.Y))
	b = protowire.AppendTag(b, fieldEntityZ, protowire.Fixed32Type)
	b = protowire.AppendFixed32(b, math.Float32bits(e.Z))
	return b
}

func (e *EntityState) unmarshal(data []byte) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]

		switch {
		case num == fieldEntityID && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return protowire.ParseError(n)
			}
			e.ID = int64(v)
			data = data[n:]
		case typ == protowire.Fixed32Type:
			v, n := protowire.ConsumeFixed32(data)
			if n < 0 {
				return protowire.ParseError(n)
			}
			f := math.Float32frombits(v)
			switch num {
			case fieldEntityX:
				e.X = f
			case fieldEntityY:
				e.Y = f
			case fieldEntityZ:
				e.Z = f
			}
			data = data[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return protowire.ParseError(n)
			}
			data = data[n:]
		}
	}
	return nil
}

// Marshal serializa a mensagem no wire format do protobuf.
func (m *EntityUpdateMessage) Marshal() []byte {
	var b []byte
	for i := range m.Entities {
		sub := m.Entities[i].marshal()
		b = protowire.AppendTag(b, fieldEntities, protowire.BytesType)
		b = protowire.AppendBytes(b, sub)
	}
	for _, id := range m.Removed {
		b = protowire.AppendTag(b, fieldRemoved, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(id))
	}
	return b
}

// Unmarshal decodifica a mensagem; campos desconhecidos são pulados.
func (m *EntityUpdateMessage) Unmarshal(data []byte) error {
	m.Entities = m.Entities[:0]
	m.Removed = m.Removed[:0]

	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]

		switch {
		case num == fieldEntities && typ == protowire.BytesType:
			sub, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return protowire.ParseError(n)
			}
			var e EntityState
			if err := e.unmarshal(sub); err != nil {
				return fmt.Errorf("entidade malformada no feed: %w", err)
			}
			m.Entities = append(m.Entities, e)
			data = data[n:]
		case num == fieldRemoved && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return protowire.ParseError(n)
			}
			m.Removed = append(m.Removed, int64(v))
			data = data[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return protowire.ParseError(n)
			}
			data = data[n:]
		}
	}
	return nil
}
