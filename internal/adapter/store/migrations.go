package store

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
	"go.etcd.io/bbolt"
)

// CurrentSchemaVersion is the current schema version.
// Increment this when making breaking changes to the storage format.
const CurrentSchemaVersion = 1

var (
	keySchemaVersion = []byte("schema_version")
	keyFingerprint   = []byte("fingerprint")
)

// SchemaInfo stores schema version and the generation fingerprint.
type SchemaInfo struct {
	Version     int    `json:"version"`
	Fingerprint string `json:"fingerprint"`
}

// GetSchemaInfo retrieves the current schema info from the database.
func (c *BoltCache) GetSchemaInfo() (*SchemaInfo, error) {
	var info SchemaInfo
	err := c.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketMeta)
		if b == nil {
			return nil
		}
		if data := b.Get(keySchemaVersion); data != nil {
			if err := json.Unmarshal(data, &info.Version); err != nil {
				info.Version = 0
			}
		}
		if data := b.Get(keyFingerprint); data != nil {
			info.Fingerprint = string(data)
		}
		return nil
	})
	return &info, err
}

// SetSchemaInfo stores the schema info in the database.
func (c *BoltCache) SetSchemaInfo(info *SchemaInfo) error {
	return c.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketMeta)
		data, err := json.Marshal(info.Version)
		if err != nil {
			return err
		}
		if err := b.Put(keySchemaVersion, data); err != nil {
			return err
		}
		return b.Put(keyFingerprint, []byte(info.Fingerprint))
	})
}

// MigrationResult describes the result of a migration check.
type MigrationResult struct {
	NeedsClear bool
	OldVersion int
	NewVersion int
	Reason     string
}

// CheckMigration reports whether cached entries are still usable.
func (c *BoltCache) CheckMigration(fingerprint string) (*MigrationResult, error) {
	info, err := c.GetSchemaInfo()
	if err != nil {
		return nil, fmt.Errorf("failed to get schema info: %w", err)
	}

	result := &MigrationResult{
		OldVersion: info.Version,
		NewVersion: CurrentSchemaVersion,
	}
	switch {
	case info.Version == 0:
		result.Reason = "initializing schema version"
	case info.Version != CurrentSchemaVersion:
		result.NeedsClear = true
		result.Reason = fmt.Sprintf("schema v%d does not match v%d", info.Version, CurrentSchemaVersion)
	case info.Fingerprint != fingerprint:
		result.NeedsClear = true
		result.Reason = "prompt or model changed"
	}
	return result, nil
}

// Migrate clears stale entries and records the current schema info.
func (c *BoltCache) Migrate(fingerprint string) error {
	result, err := c.CheckMigration(fingerprint)
	if err != nil {
		return err
	}
	if result.NeedsClear {
		log.Info().Str("cache", c.path).Str("reason", result.Reason).Msg("Clearing doc cache")
		if err := c.Clear(); err != nil {
			return fmt.Errorf("clear stale cache: %w", err)
		}
	}
	return c.SetSchemaInfo(&SchemaInfo{Version: CurrentSchemaVersion, Fingerprint: fingerprint})
}
