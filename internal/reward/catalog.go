package reward

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/osse101/SpinVault_Go/internal/domain"
	"github.com/osse101/SpinVault_Go/internal/logger"
	"github.com/osse101/SpinVault_Go/internal/validation"
)

//go:embed schemas/wheels.schema.json
var wheelsSchema []byte

// Catalog looks up wheel definitions
type Catalog interface {
	Wheel(ctx context.Context, id string) (*domain.Wheel, error)
}

// WheelFile is the on-disk catalogue layout
type WheelFile struct {
	Version string         `json:"version"`
	Wheels  []domain.Wheel `json:"wheels" validate:"dive"`
}

// FileCatalog reads the catalogue on every lookup so edits apply to the next
// spin without a restart
type FileCatalog struct {
	path     string
	schemas  validation.SchemaValidator
	validate *validator.Validate
}

// NewFileCatalog registers the wheel schema with schemas and returns a
// catalogue backed by path
func NewFileCatalog(path string, schemas validation.SchemaValidator) (*FileCatalog, error) {
	if err := schemas.Register(WheelsSchemaName, wheelsSchema); err != nil {
		return nil, fmt.Errorf(ErrMsgRegisterSchema, err)
	}
	return &FileCatalog{path: path, schemas: schemas, validate: validator.New()}, nil
}

// Wheel loads the catalogue and returns the wheel with id
func (c *FileCatalog) Wheel(ctx context.Context, id string) (*domain.Wheel, error) {
	wheels, err := c.Load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range wheels {
		if wheels[i].ID == id {
			return &wheels[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrWheelNotFound, id)
}

// Load reads, validates and normalizes the whole catalogue
func (c *FileCatalog) Load(ctx context.Context) ([]domain.Wheel, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgReadWheels, c.path, err)
	}
	if err := c.schemas.ValidateBytes(data, WheelsSchemaName); err != nil {
		return nil, fmt.Errorf(ErrMsgInvalidWheels, err)
	}

	var file WheelFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf(ErrMsgParseWheels, err)
	}
	if err := c.validate.Struct(file); err != nil {
		return nil, fmt.Errorf(ErrMsgInvalidWheels, err)
	}

	seen := make(map[string]struct{}, len(file.Wheels))
	for i := range file.Wheels {
		w := &file.Wheels[i]
		if _, dup := seen[w.ID]; dup {
			return nil, fmt.Errorf(ErrMsgInvalidWheels, fmt.Errorf(ErrMsgDuplicateWheel, w.ID))
		}
		seen[w.ID] = struct{}{}
		normalizeWheel(w)
	}

	logger.FromContext(ctx).Debug(LogMsgWheelLoaded, "path", c.path, "wheels", len(file.Wheels))
	return file.Wheels, nil
}

func normalizeWheel(w *domain.Wheel) {
	weights := NormalizeWeights(w.Segments)
	for i := range w.Segments {
		w.Segments[i].WeightPercent = weights[i]
	}
}

// MemoryCatalog holds wheels in process. Lookups return copies.
type MemoryCatalog struct {
	mu     sync.RWMutex
	wheels map[string]domain.Wheel
}

// NewMemoryCatalog creates a catalogue from wheels
func NewMemoryCatalog(wheels ...domain.Wheel) *MemoryCatalog {
	c := &MemoryCatalog{wheels: make(map[string]domain.Wheel, len(wheels))}
	for _, w := range wheels {
		c.Put(w)
	}
	return c
}

// Put adds or replaces a wheel
func (c *MemoryCatalog) Put(w domain.Wheel) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.wheels[w.ID] = w
}

// Wheel returns a copy of the wheel with id
func (c *MemoryCatalog) Wheel(_ context.Context, id string) (*domain.Wheel, error) {
	c.mu.RLock()
	w, ok := c.wheels[id]
	c.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrWheelNotFound, id)
	}
	w.Segments = append([]domain.RewardSegment(nil), w.Segments...)
	normalizeWheel(&w)
	return &w, nil
}
