package storage

import (
	"database/sql"
	"fmt"
)

// Deduplicator resolves player and event names to stable surrogate ids,
// inserting a row only the first time a name is seen. Resolutions made
// inside a transaction are staged and promoted to the run-wide cache
// only once that transaction commits; a rolled-back import leaves no
// cache entry pointing at a removed row. Across runs (or concurrent
// writers) the UNIQUE(name) constraint with upsert semantics keeps
// resolution idempotent without a lookup-then-insert race.
type Deduplicator struct {
	players map[string]int64
	events  map[string]int64

	pendingPlayers map[string]int64
	pendingEvents  map[string]int64
}

// NewDeduplicator creates caches scoped to a single ingestion run.
func NewDeduplicator() *Deduplicator {
	return &Deduplicator{
		players:        make(map[string]int64),
		events:         make(map[string]int64),
		pendingPlayers: make(map[string]int64),
		pendingEvents:  make(map[string]int64),
	}
}

// ResolvePlayer returns the id for name, creating the player if unseen.
func (d *Deduplicator) ResolvePlayer(tx *sql.Tx, name string) (int64, error) {
	if id, ok := d.players[name]; ok {
		return id, nil
	}
	if id, ok := d.pendingPlayers[name]; ok {
		return id, nil
	}
	id, err := resolveName(tx,
		`INSERT INTO players (name) VALUES (?)
		 ON CONFLICT(name) DO UPDATE SET name = excluded.name
		 RETURNING player_id`, name)
	if err != nil {
		return 0, fmt.Errorf("resolve player %q: %w", name, err)
	}
	d.pendingPlayers[name] = id
	return id, nil
}

// ResolveEvent returns the id for name, creating the event if unseen.
func (d *Deduplicator) ResolveEvent(tx *sql.Tx, name string) (int64, error) {
	if id, ok := d.events[name]; ok {
		return id, nil
	}
	if id, ok := d.pendingEvents[name]; ok {
		return id, nil
	}
	id, err := resolveName(tx,
		`INSERT INTO events (name) VALUES (?)
		 ON CONFLICT(name) DO UPDATE SET name = excluded.name
		 RETURNING event_id`, name)
	if err != nil {
		return 0, fmt.Errorf("resolve event %q: %w", name, err)
	}
	d.pendingEvents[name] = id
	return id, nil
}

// Commit promotes staged resolutions into the run-wide cache. Call it
// only after the transaction that created them has committed.
func (d *Deduplicator) Commit() {
	for name, id := range d.pendingPlayers {
		d.players[name] = id
	}
	for name, id := range d.pendingEvents {
		d.events[name] = id
	}
	d.Discard()
}

// Discard drops staged resolutions. After a rollback the rows they
// pointed at no longer exist; the names resolve fresh next time.
func (d *Deduplicator) Discard() {
	clear(d.pendingPlayers)
	clear(d.pendingEvents)
}

// resolveName runs an atomic insert-or-fetch. The no-op DO UPDATE makes
// the conflicting row visible to RETURNING, so one statement covers
// both the first-sight insert and every later lookup.
func resolveName(tx *sql.Tx, query, name string) (int64, error) {
	var id int64
	if err := tx.QueryRow(query, name).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}
