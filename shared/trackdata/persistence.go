package trackdata

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TrackModel representa o esquema do banco de dados para um trajeto gravado.
type TrackModel struct {
	Name      string `gorm:"primaryKey"`
	Data      []byte // pontos serializados em GOB
	Points    int    // contagem, para listar sem decodificar o blob
	UpdatedAt time.Time
}

// Store gerencia a persistência de trajetos em SQLite.
type Store struct {
	DB *gorm.DB
}

// OpenInitialize abre (ou cria) o banco de dados SQLite de trajetos e roda
// as migrações.
func OpenInitialize(name string) (*Store, error) {
	if err := os.MkdirAll("saves", 0755); err != nil {
		return nil, err
	}

	dbPath := filepath.Join("saves", fmt.Sprintf("%s.tv", name))

	// Logger silencioso em produção
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("falha ao conectar no SQLite: %w", err)
	}

	if err := db.AutoMigrate(&TrackModel{}); err != nil {
		return nil, fmt.Errorf("falha na migração do banco: %w", err)
	}

	log.Printf("[Tracks] Banco de dados SQLite aberto: %s", dbPath)
	return &Store{DB: db}, nil
}

// SaveTrack salva (ou substitui) um trajeto no banco.
func (s *Store) SaveTrack(track *Track) error {
	if s.DB == nil {
		return fmt.Errorf("banco de dados não inicializado")
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(track.Points); err != nil {
		return fmt.Errorf("falha ao serializar trajeto %q: %w", track.Name, err)
	}

	model := TrackModel{
		Name:   track.Name,
		Data:   buf.Bytes(),
		Points: len(track.Points),
	}
	if err := s.DB.Save(&model).Error; err != nil {
		return fmt.Errorf("falha ao salvar trajeto %q: %w", track.Name, err)
	}

	log.Printf("[Tracks] Trajeto %q salvo (%d pontos)", track.Name, len(track.Points))
	return nil
}

// LoadTrack carrega um trajeto pelo nome.
func (s *Store) LoadTrack(name string) (*Track, error) {
	if s.DB == nil {
		return nil, fmt.Errorf("banco de dados não inicializado")
	}

	var model TrackModel
	if err := s.DB.First(&model, "name = ?", name).Error; err != nil {
		return nil, fmt.Errorf("trajeto %q não encontrado: %w", name, err)
	}

	track := &Track{Name: model.Name}
	if err := gob.NewDecoder(bytes.NewReader(model.Data)).Decode(&track.Points); err != nil {
		return nil, fmt.Errorf("falha ao decodificar trajeto %q: %w", name, err)
	}
	return track, nil
}

// ListTracks retorna os nomes dos trajetos salvos, do mais recente ao mais
// antigo.
func (s *Store) ListTracks() ([]string, error) {
	if s.DB == nil {
		return nil, fmt.Errorf("banco de dados não inicializado")
	}

	var names []string
	if err := s.DB.Model(&TrackModel{}).Order("updated_at desc").Pluck("name", &names).Error; err != nil {
		return nil, fmt.Errorf("falha ao listar trajetos: %w", err)
	}
	return names, nil
}

// Close fecha a conexão com o banco.
func (s *Store) Close() {
	if s.DB == nil {
		return
	}
	if db, err := s.DB.DB(); err == nil {
		db.Close()
	}
}
