package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"streamboard/internal/app/ports"
)

// TTLSeconds bounds how long untouched tracked games and unseen
// streams survive in the cache.
const TTLSeconds = 7 * 24 * 60 * 60

const schema = `
CREATE TABLE IF NOT EXISTS games (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  box_art_url TEXT,
  updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS tracked_games (
  game_id TEXT PRIMARY KEY REFERENCES games(id) ON DELETE CASCADE,
  last_requested_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS streamer_profiles (
  user_id TEXT PRIMARY KEY,
  display_name TEXT,
  broadcaster_type TEXT,
  follower_count INTEGER,
  follower_expires_at INTEGER,
  updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS streams (
  id TEXT PRIMARY KEY,
  game_id TEXT NOT NULL REFERENCES games(id) ON DELETE CASCADE,
  user_id TEXT NOT NULL,
  user_name TEXT,
  title TEXT,
  viewer_count INTEGER,
  started_at TEXT,
  language TEXT,
  thumbnail_url TEXT,
  is_live INTEGER NOT NULL,
  last_seen_at INTEGER NOT NULL,
  ended_at INTEGER
);

CREATE INDEX IF NOT EXISTS idx_streams_game_live ON streams(game_id, is_live);
CREATE INDEX IF NOT EXISTS idx_streams_last_seen ON streams(last_seen_at);
CREATE INDEX IF NOT EXISTS idx_profiles_follower_exp ON streamer_profiles(follower_expires_at);
`

type DB struct {
	db *sql.DB
}

func NewDB(path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// modernc's driver is not safe for concurrent writers on one file.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{"PRAGMA journal_mode=WAL;", "PRAGMA foreign_keys=ON;"} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("pragma: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &DB{db: db}, nil
}

func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) UpsertGames(games []ports.Game) error {
	if len(games) == 0 {
		return nil
	}

	now := time.Now().Unix()
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO games(id, name, box_art_url, updated_at)
		VALUES(?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
		  name=excluded.name,
		  box_art_url=excluded.box_art_url,
		  updated_at=excluded.updated_at`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, g := range games {
		if _, err := stmt.Exec(g.ID, g.Name, g.BoxArtURL, now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (d *DB) TouchTrackedGames(gameIDs []string) error {
	if len(gameIDs) == 0 {
		return nil
	}

	now := time.Now().Unix()
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO tracked_games(game_id, last_requested_at)
		VALUES(?, ?)
		ON CONFLICT(game_id) DO UPDATE SET last_requested_at=excluded.last_requested_at`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, gid := range gameIDs {
		if _, err := stmt.Exec(gid, now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (d *DB) TrackedGames() ([]string, error) {
	cutoff := time.Now().Unix() - TTLSeconds
	rows, err := d.db.Query(
		"SELECT game_id FROM tracked_games WHERE last_requested_at >= ? ORDER BY last_requested_at DESC",
		cutoff,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// UpsertStreams replaces the live set of a game: fetched streams are
// upserted live, live rows missing from the fetch get ended.
func (d *DB) UpsertStreams(gameID string, streams []ports.Stream) error {
	now := time.Now().Unix()
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if len(streams) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(streams)), ",")
		args := make([]any, 0, len(streams)+2)
		args = append(args, now, gameID)
		for _, s := range streams {
			args = append(args, s.ID)
		}
		if _, err := tx.Exec(
			fmt.Sprintf("UPDATE streams SET is_live=0, ended_at=? WHERE game_id=? AND is_live=1 AND id NOT IN (%s)", placeholders),
			args...,
		); err != nil {
			return err
		}
	} else {
		if _, err := tx.Exec("UPDATE streams SET is_live=0, ended_at=? WHERE game_id=? AND is_live=1", now, gameID); err != nil {
			return err
		}
	}

	stmt, err := tx.Prepare(`
		INSERT INTO streams(
		  id, game_id, user_id, user_name, title, viewer_count,
		  started_at, language, thumbnail_url, is_live, last_seen_at, ended_at
		) VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?, NULL)
		ON CONFLICT(id) DO UPDATE SET
		  game_id=excluded.game_id,
		  user_id=excluded.user_id,
		  user_name=excluded.user_name,
		  title=excluded.title,
		  viewer_count=excluded.viewer_count,
		  started_at=excluded.started_at,
		  language=excluded.language,
		  thumbnail_url=excluded.thumbnail_url,
		  is_live=1,
		  last_seen_at=excluded.last_seen_at,
		  ended_at=NULL`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, s := range streams {
		if _, err := stmt.Exec(s.ID, gameID, s.UserID, s.UserName, s.Title, s.ViewerCount,
			s.StartedAt, s.Language, s.ThumbnailURL, now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// UpsertProfiles merges broadcaster rows; nil fields never overwrite
// a value already present.
func (d *DB) UpsertProfiles(profiles []ports.Profile) error {
	if len(profiles) == 0 {
		return nil
	}

	now := time.Now().Unix()
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO streamer_profiles(
		  user_id, display_name, broadcaster_type, follower_count, follower_expires_at, updated_at
		) VALUES(?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
		  display_name=COALESCE(excluded.display_name, streamer_profiles.display_name),
		  broadcaster_type=COALESCE(excluded.broadcaster_type, streamer_profiles.broadcaster_type),
		  follower_count=COALESCE(excluded.follower_count, streamer_profiles.follower_count),
		  follower_expires_at=COALESCE(excluded.follower_expires_at, streamer_profiles.follower_expires_at),
		  updated_at=excluded.updated_at`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, p := range profiles {
		if _, err := stmt.Exec(p.UserID, p.DisplayName, p.BroadcasterType, p.FollowerCount, p.FollowerExpiresAt, now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (d *DB) ProfilesNeedingFollowers(limit int) ([]string, error) {
	now := time.Now().Unix()
	rows, err := d.db.Query(`
		SELECT user_id FROM streamer_profiles
		WHERE follower_expires_at IS NULL OR follower_expires_at <= ?
		ORDER BY COALESCE(follower_expires_at, 0) ASC
		LIMIT ?`, now, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (d *DB) PurgeExpired() (int, error) {
	cutoff := time.Now().Unix() - TTLSeconds
	res, err := d.db.Exec("DELETE FROM streams WHERE last_seen_at < ?", cutoff)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// QueryStreams groups live streams by game in the requested game-id
// order, applying the filter set. Games with no matching streams are
// still returned as empty groups.
func (d *DB) QueryStreams(q ports.StreamQuery) (ports.StreamsPayload, error) {
	payload := ports.StreamsPayload{Games: []ports.GameGroup{}}
	if len(q.GameIDs) == 0 {
		return payload, nil
	}

	where := []string{
		fmt.Sprintf("s.game_id IN (%s)", strings.TrimSuffix(strings.Repeat("?,", len(q.GameIDs)), ",")),
		"s.is_live=1",
	}
	args := make([]any, 0, len(q.GameIDs)+8)
	for _, gid := range q.GameIDs {
		args = append(args, gid)
	}

	switch q.BroadcasterType {
	case "partner", "affiliate":
		where = append(where, "p.broadcaster_type = ?")
		args = append(args, q.BroadcasterType)
	case "verified":
		where = append(where, "p.broadcaster_type IN ('partner','affiliate')")
	}

	if q.MinViewers != nil {
		where = append(where, "s.viewer_count >= ?")
		args = append(args, *q.MinViewers)
	}
	if q.MaxViewers != nil {
		where = append(where, "s.viewer_count <= ?")
		args = append(args, *q.MaxViewers)
	}
	if q.MinFollowers != nil {
		where = append(where, "p.follower_count IS NOT NULL AND p.follower_count >= ?")
		args = append(args, *q.MinFollowers)
	}
	if q.MaxFollowers != nil {
		where = append(where, "p.follower_count IS NOT NULL AND p.follower_count <= ?")
		args = append(args, *q.MaxFollowers)
	}
	if len(q.IgnoredUserIDs) > 0 {
		where = append(where, fmt.Sprintf("s.user_id NOT IN (%s)", strings.TrimSuffix(strings.Repeat("?,", len(q.IgnoredUserIDs)), ",")))
		for _, uid := range q.IgnoredUserIDs {
			args = append(args, uid)
		}
	}

	query := fmt.Sprintf(`
		SELECT
		  g.id, g.name, COALESCE(g.box_art_url, ''),
		  s.id, s.user_id, COALESCE(s.user_name, ''), COALESCE(s.title, ''),
		  COALESCE(s.viewer_count, 0), COALESCE(s.started_at, ''), COALESCE(s.language, ''),
		  COALESCE(s.thumbnail_url, ''), COALESCE(p.broadcaster_type, ''), p.follower_count
		FROM streams s
		JOIN games g ON g.id = s.game_id
		LEFT JOIN streamer_profiles p ON p.user_id = s.user_id
		WHERE %s
		ORDER BY g.name ASC, s.viewer_count DESC`, strings.Join(where, " AND "))

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return payload, err
	}
	defer rows.Close()

	groups := make(map[string]*ports.GameGroup)
	for rows.Next() {
		var g ports.Game
		var s ports.Stream
		if err := rows.Scan(&g.ID, &g.Name, &g.BoxArtURL,
			&s.ID, &s.UserID, &s.UserName, &s.Title,
			&s.ViewerCount, &s.StartedAt, &s.Language,
			&s.ThumbnailURL, &s.BroadcasterType, &s.FollowerCount); err != nil {
			return payload, err
		}

		grp, ok := groups[g.ID]
		if !ok {
			grp = &ports.GameGroup{Game: g, Streams: []ports.Stream{}}
			groups[g.ID] = grp
		}
		grp.Streams = append(grp.Streams, s)
	}
	if err := rows.Err(); err != nil {
		return payload, err
	}

	// Empty game cards let the UI show "no streams right now".
	gameRows, err := d.db.Query(
		fmt.Sprintf("SELECT id, name, COALESCE(box_art_url, '') FROM games WHERE id IN (%s)",
			strings.TrimSuffix(strings.Repeat("?,", len(q.GameIDs)), ",")),
		toAnySlice(q.GameIDs)...,
	)
	if err != nil {
		return payload, err
	}
	defer gameRows.Close()

	for gameRows.Next() {
		var g ports.Game
		if err := gameRows.Scan(&g.ID, &g.Name, &g.BoxArtURL); err != nil {
			return payload, err
		}
		if _, ok := groups[g.ID]; !ok {
			groups[g.ID] = &ports.GameGroup{Game: g, Streams: []ports.Stream{}}
		}
	}
	if err := gameRows.Err(); err != nil {
		return payload, err
	}

	for _, gid := range q.GameIDs {
		if grp, ok := groups[gid]; ok {
			payload.Games = append(payload.Games, *grp)
		}
	}
	return payload, nil
}

func toAnySlice(in []string) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}
