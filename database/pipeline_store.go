package database

import (
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/constellation-engine/core/dagspec"
	goerrors "github.com/constellation-engine/core/errors"
	"github.com/constellation-engine/core/store"
)

// PipelineImageModel is the durable row for a store.Image (C3), keyed by
// structural hash. DagSpec and ModuleOptions are stored as serialized JSON
// since their shape is closed-sum and does not benefit from relational
// decomposition the way BaseModel's identity fields do.
type PipelineImageModel struct {
	StructuralHash string `gorm:"primaryKey"`
	SyntacticHash  string
	DagSpecJSON    []byte
	OptionsJSON    []byte
	CompiledAt     time.Time
	SourceHash     string
}

func (PipelineImageModel) TableName() string { return "pipeline_images" }

// PipelineAliasModel binds a human-readable name to a structural hash.
type PipelineAliasModel struct {
	Name           string `gorm:"primaryKey"`
	StructuralHash string `gorm:"index"`
}

func (PipelineAliasModel) TableName() string { return "pipeline_aliases" }

// SyntacticIndexModel records compile-skip lookups keyed by
// (syntacticHash, registryHash).
type SyntacticIndexModel struct {
	SyntacticHash  string `gorm:"primaryKey"`
	RegistryHash   string `gorm:"primaryKey"`
	StructuralHash string
}

func (SyntacticIndexModel) TableName() string { return "pipeline_syntactic_index" }

// PipelineStoreBackend is a store.Store backed by GORM/SQLite, used when a
// deployment needs the pipeline store to survive process restarts. It
// mirrors MemoryStore's semantics exactly (idempotent store, alias-blocks-
// removal) but persists through *DB.
type PipelineStoreBackend struct {
	db *DB
}

// NewPipelineStoreBackend wraps db as a store.Store. Callers are expected to
// have already run AutoMigrate with the three models above.
func NewPipelineStoreBackend(db *DB) *PipelineStoreBackend {
	return &PipelineStoreBackend{db: db}
}

// Models returns the GORM models this backend needs migrated, for use with
// Component.WithAutoMigrate.
func Models() []interface{} {
	return []interface{}{&PipelineImageModel{}, &PipelineAliasModel{}, &SyntacticIndexModel{}}
}

func (b *PipelineStoreBackend) StoreImage(img store.Image) (string, error) {
	dagJSON, err := json.Marshal(img.DagSpec)
	if err != nil {
		return "", goerrors.Codec("marshal dag spec", err)
	}
	optsJSON, err := json.Marshal(img.ModuleOptions)
	if err != nil {
		return "", goerrors.Codec("marshal module options", err)
	}

	var existing PipelineImageModel
	err = b.db.GormDB.Where("structural_hash = ?", img.StructuralHash).First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		row := PipelineImageModel{
			StructuralHash: img.StructuralHash,
			SyntacticHash:  img.SyntacticHash,
			DagSpecJSON:    dagJSON,
			OptionsJSON:    optsJSON,
			CompiledAt:     img.CompiledAt,
			SourceHash:     img.SourceHash,
		}
		if err := b.db.GormDB.Create(&row).Error; err != nil {
			return "", goerrors.ModuleExecution(img.StructuralHash, err)
		}
		return img.StructuralHash, nil
	case err != nil:
		return "", goerrors.ModuleExecution(img.StructuralHash, err)
	}

	if existing.SyntacticHash != img.SyntacticHash || string(existing.OptionsJSON) != string(optsJSON) {
		return "", goerrors.ValidationError("structural hash collision: image contents differ for hash " + img.StructuralHash)
	}
	return img.StructuralHash, nil
}

func (b *PipelineStoreBackend) GetImage(structuralHash string) (*store.Image, bool) {
	var row PipelineImageModel
	if err := b.db.GormDB.Where("structural_hash = ?", structuralHash).First(&row).Error; err != nil {
		return nil, false
	}
	return rowToImage(&row)
}

func rowToImage(row *PipelineImageModel) (*store.Image, bool) {
	var spec dagspec.DagSpec
	if err := json.Unmarshal(row.DagSpecJSON, &spec); err != nil {
		return nil, false
	}
	var opts map[string]dagspec.ModuleCallOptions
	if err := json.Unmarshal(row.OptionsJSON, &opts); err != nil {
		return nil, false
	}
	return &store.Image{
		StructuralHash: row.StructuralHash,
		SyntacticHash:  row.SyntacticHash,
		DagSpec:        &spec,
		ModuleOptions:  opts,
		CompiledAt:     row.CompiledAt,
		SourceHash:     row.SourceHash,
	}, true
}

func (b *PipelineStoreBackend) Alias(name, structuralHash string) error {
	var count int64
	b.db.GormDB.Model(&PipelineImageModel{}).Where("structural_hash = ?", structuralHash).Count(&count)
	if count == 0 {
		return goerrors.PipelineNotFound(structuralHash)
	}
	row := PipelineAliasModel{Name: name, StructuralHash: structuralHash}
	return b.db.GormDB.Save(&row).Error
}

func (b *PipelineStoreBackend) Resolve(name string) (string, bool) {
	var row PipelineAliasModel
	if err := b.db.GormDB.Where("name = ?", name).First(&row).Error; err != nil {
		return "", false
	}
	return row.StructuralHash, true
}

func (b *PipelineStoreBackend) GetByName(name string) (*store.Image, bool) {
	h, ok := b.Resolve(name)
	if !ok {
		return nil, false
	}
	return b.GetImage(h)
}

func (b *PipelineStoreBackend) ListAliases() map[string]string {
	var rows []PipelineAliasModel
	b.db.GormDB.Find(&rows)
	out := make(map[string]string, len(rows))
	for _, r := range rows {
		out[r.Name] = r.StructuralHash
	}
	return out
}

func (b *PipelineStoreBackend) RemoveImage(structuralHash string) (bool, error) {
	var count int64
	b.db.GormDB.Model(&PipelineAliasModel{}).Where("structural_hash = ?", structuralHash).Count(&count)
	if count > 0 {
		return false, goerrors.ValidationError("cannot remove image " + structuralHash + ": an alias still references it")
	}
	res := b.db.GormDB.Where("structural_hash = ?", structuralHash).Delete(&PipelineImageModel{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (b *PipelineStoreBackend) IndexSyntactic(syntacticHash, registryHash, structuralHash string) {
	row := SyntacticIndexModel{SyntacticHash: syntacticHash, RegistryHash: registryHash, StructuralHash: structuralHash}
	b.db.GormDB.Save(&row)
}

func (b *PipelineStoreBackend) LookupSyntactic(syntacticHash, registryHash string) (string, bool) {
	var row SyntacticIndexModel
	err := b.db.GormDB.Where("syntactic_hash = ? AND registry_hash = ?", syntacticHash, registryHash).First(&row).Error
	if err != nil {
		return "", false
	}
	return row.StructuralHash, true
}

func (b *PipelineStoreBackend) ListImages() []string {
	var hashes []string
	b.db.GormDB.Model(&PipelineImageModel{}).Order("structural_hash").Pluck("structural_hash", &hashes)
	return hashes
}

var _ store.Store = (*PipelineStoreBackend)(nil)
