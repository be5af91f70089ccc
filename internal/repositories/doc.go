// Package repositories implements SQLite persistence for play history.
//
// [PlayRepository] implements models.Repository[*models.Play] with atomic sequence generation for
// stable ordering and soft deletes via deleted_at timestamps; deleted records are excluded from queries.
// [HistoryRecorder] adapts it to the playback engine's recorder interface so every track that starts
// playing is logged with its session id.
//
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
