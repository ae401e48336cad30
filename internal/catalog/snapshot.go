package catalog

import (
	"encoding/json"
	"os"
	"time"

	"github.com/go-faster/errors"
	"github.com/klauspost/pgzip"

	"github.com/sellkit/orderdesk/internal/pricing"
	"github.com/sellkit/orderdesk/internal/salesapi"
)

// Snapshot is the on-disk form of the cache, written gzip-compressed so a
// full catalog stays small enough to ship around.
type Snapshot struct {
	TakenAt    time.Time             `json:"takenAt"`
	Products   []salesapi.Product    `json:"products"`
	Promotions []pricing.Promotion   `json:"promotions"`
	Agents     []salesapi.Agent      `json:"agents"`
	Groups     []salesapi.AgentGroup `json:"agentGroups"`
}

// WriteSnapshot saves the cache contents to path.
func (c *Cache) WriteSnapshot(path string) error {
	snap := Snapshot{
		TakenAt:    time.Now().UTC(),
		Products:   c.Products(),
		Promotions: c.Promotions(),
		Agents:     c.Agents(),
		Groups:     c.AgentGroups(),
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create snapshot")
	}
	defer func() { _ = f.Close() }()

	zw := pgzip.NewWriter(f)
	if err := json.NewEncoder(zw).Encode(snap); err != nil {
		return errors.Wrap(err, "encode snapshot")
	}
	if err := zw.Close(); err != nil {
		return errors.Wrap(err, "flush snapshot")
	}
	return f.Close()
}

// Restore loads a snapshot from path into the cache, replacing whatever it
// held.
func (c *Cache) Restore(path string) (time.Time, error) {
	f, err := os.Open(path)
	if err != nil {
		return time.Time{}, errors.Wrap(err, "open snapshot")
	}
	defer func() { _ = f.Close() }()

	zr, err := pgzip.NewReader(f)
	if err != nil {
		return time.Time{}, errors.Wrap(err, "read snapshot")
	}
	defer func() { _ = zr.Close() }()

	var snap Snapshot
	if err := json.NewDecoder(zr).Decode(&snap); err != nil {
		return time.Time{}, errors.Wrap(err, "decode snapshot")
	}

	c.replace(snap.Products, snap.Promotions, snap.Agents, snap.Groups)
	return snap.TakenAt, nil
}
