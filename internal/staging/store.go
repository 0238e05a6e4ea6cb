// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package staging writes finished post bundles to disk for manual
// publication and keeps a SQLite index of what has been staged.
//
// Each bundle lives in its own directory under the staging dir:
//
//	<dir>/<id>/post.md
//	<dir>/<id>/image.jpg   (extension follows the image MIME type)
//	<dir>/<id>/bundle.yaml
//
// and <dir>/staged.db records one row per bundle.
package staging

import (
	"context"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/postforge/pkg/types"
)

const (
	dbFile     = "staged.db"
	postFile   = "post.md"
	bundleFile = "bundle.yaml"
	maxSlugLen = 40
)

// ErrNotFound is returned by Get for an unknown bundle ID.
var ErrNotFound = errors.New("bundle not found")

// Store manages the staging directory and its index database.
type Store struct {
	db  *sql.DB
	dir string
	now func() time.Time
}

// bundleMeta is the content of bundle.yaml.
type bundleMeta struct {
	ID        string    `yaml:"id"`
	Topic     string    `yaml:"topic"`
	StagedAt  time.Time `yaml:"staged_at"`
	PostFile  string    `yaml:"post_file"`
	ImageFile string    `yaml:"image_file"`
	ImageMIME string    `yaml:"image_mime"`
}

// NewStore opens or creates the staging directory and staged.db.
func NewStore(cfg types.StagingConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating staging directory: %w", err)
	}

	db, err := sql.Open("sqlite3", filepath.Join(cfg.Dir, dbFile)+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, dir: cfg.Dir, now: time.Now}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS bundles (
			id TEXT PRIMARY KEY,
			topic TEXT NOT NULL,
			dir TEXT NOT NULL,
			post_path TEXT NOT NULL,
			image_path TEXT NOT NULL,
			staged_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_bundles_staged_at ON bundles(staged_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Stage writes b to a new bundle directory and records it in the index.
// Files are written to a temporary directory that is renamed into place, so
// a failed write or index insert leaves no bundle behind.
func (s *Store) Stage(ctx context.Context, b types.Bundle) (types.Receipt, error) {
	if b.Post == "" {
		return types.Receipt{}, fmt.Errorf("bundle has no post text")
	}
	mime, data, err := ParseDataURI(b.Image)
	if err != nil {
		return types.Receipt{}, fmt.Errorf("decoding image: %w", err)
	}

	stagedAt := s.now().UTC()
	id, err := s.uniqueID(stagedAt, b.Topic)
	if err != nil {
		return types.Receipt{}, err
	}

	finalDir := filepath.Join(s.dir, id)
	tmpDir := finalDir + ".tmp"
	if err := os.MkdirAll(tmpDir, 0o755); err != nil {
		return types.Receipt{}, fmt.Errorf("creating bundle directory: %w", err)
	}

	imageFile := "image" + extensionFor(mime)
	meta := bundleMeta{
		ID:        id,
		Topic:     b.Topic,
		StagedAt:  stagedAt,
		PostFile:  postFile,
		ImageFile: imageFile,
		ImageMIME: mime,
	}
	if err := writeBundle(tmpDir, meta, b.Post, data); err != nil {
		os.RemoveAll(tmpDir)
		return types.Receipt{}, err
	}

	r := types.Receipt{
		ID:        id,
		Topic:     b.Topic,
		Dir:       finalDir,
		PostPath:  filepath.Join(finalDir, postFile),
		ImagePath: filepath.Join(finalDir, imageFile),
		StagedAt:  stagedAt,
	}

	// The row and the directory appear together: the insert is committed
	// only after the rename succeeds.
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		os.RemoveAll(tmpDir)
		return types.Receipt{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO bundles (id, topic, dir, post_path, image_path, staged_at) VALUES (?, ?, ?, ?, ?, ?)`,
		r.ID, r.Topic, r.Dir, r.PostPath, r.ImagePath, r.StagedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		os.RemoveAll(tmpDir)
		return types.Receipt{}, fmt.Errorf("indexing bundle %s: %w", id, err)
	}
	if err := os.Rename(tmpDir, finalDir); err != nil {
		os.RemoveAll(tmpDir)
		return types.Receipt{}, fmt.Errorf("finalizing bundle: %w", err)
	}
	if err := tx.Commit(); err != nil {
		os.RemoveAll(finalDir)
		return types.Receipt{}, fmt.Errorf("committing bundle %s: %w", id, err)
	}
	return r, nil
}

func writeBundle(dir string, meta bundleMeta, post string, image []byte) error {
	if err := os.WriteFile(filepath.Join(dir, meta.PostFile), []byte(post+"\n"), 0o644); err != nil {
		return fmt.Errorf("writing post: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, meta.ImageFile), image, 0o644); err != nil {
		return fmt.Errorf("writing image: %w", err)
	}
	data, err := yaml.Marshal(&meta)
	if err != nil {
		return fmt.Errorf("marshaling bundle metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, bundleFile), data, 0o644); err != nil {
		return fmt.Errorf("writing bundle metadata: %w", err)
	}
	return nil
}

// uniqueID builds "<yyyymmdd-hhmmss>-<topic-slug>", adding a numeric suffix
// when a bundle with that ID already exists.
func (s *Store) uniqueID(t time.Time, topic string) (string, error) {
	base := t.Format("20060102-150405")
	if slug := Slug(topic); slug != "" {
		base += "-" + slug
	}
	id := base
	for n := 2; ; n++ {
		_, err := os.Stat(filepath.Join(s.dir, id))
		if os.IsNotExist(err) {
			return id, nil
		}
		if err != nil {
			return "", fmt.Errorf("checking bundle directory: %w", err)
		}
		id = fmt.Sprintf("%s-%d", base, n)
	}
}

// List returns staged bundles, newest first. A limit of 0 returns all.
func (s *Store) List(ctx context.Context, limit int) ([]types.Receipt, error) {
	query := `SELECT id, topic, dir, post_path, image_path, staged_at FROM bundles ORDER BY staged_at DESC, id DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing bundles: %w", err)
	}
	defer rows.Close()

	var out []types.Receipt
	for rows.Next() {
		r, err := scanReceipt(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Get returns the bundle with the given ID.
func (s *Store) Get(ctx context.Context, id string) (types.Receipt, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, topic, dir, post_path, image_path, staged_at FROM bundles WHERE id = ?`, id)
	r, err := scanReceipt(row)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Receipt{}, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return r, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanReceipt(sc scanner) (types.Receipt, error) {
	var (
		r        types.Receipt
		stagedAt string
	)
	if err := sc.Scan(&r.ID, &r.Topic, &r.Dir, &r.PostPath, &r.ImagePath, &stagedAt); err != nil {
		return types.Receipt{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, stagedAt)
	if err != nil {
		return types.Receipt{}, fmt.Errorf("parsing staged_at for %s: %w", r.ID, err)
	}
	r.StagedAt = t
	return r, nil
}

// ParseDataURI decodes a base64 data URI ("data:<mime>;base64,<payload>").
func ParseDataURI(uri string) (mime string, data []byte, err error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", nil, fmt.Errorf("not a data URI")
	}
	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("data URI has no payload")
	}
	mime, isBase64 := strings.CutSuffix(header, ";base64")
	if !isBase64 {
		return "", nil, fmt.Errorf("data URI is not base64 encoded")
	}
	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("decoding base64 payload: %w", err)
	}
	if len(data) == 0 {
		return "", nil, fmt.Errorf("data URI payload is empty")
	}
	return mime, data, nil
}

func extensionFor(mime string) string {
	switch mime {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	default:
		return ".bin"
	}
}

// Slug lowercases s, keeps letters and digits, and joins words with hyphens,
// truncated to 40 characters.
func Slug(s string) string {
	var b strings.Builder
	hyphen := false
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) && r < unicode.MaxASCII, unicode.IsDigit(r) && r < unicode.MaxASCII:
			if hyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			hyphen = false
			b.WriteRune(r)
		default:
			hyphen = true
		}
		if b.Len() >= maxSlugLen {
			break
		}
	}
	slug := b.String()
	if len(slug) > maxSlugLen {
		slug = slug[:maxSlugLen]
	}
	return strings.TrimRight(slug, "-")
}
