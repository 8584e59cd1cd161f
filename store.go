package mypenweb

import (
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mypen/mypenweb/views"
)

// Store wraps a SQLite database and provides CRUD operations for blog posts
// and FAQ entries.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and runs schema setup.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// Enable WAL mode for concurrent read/write access, set a busy timeout
	// so writers wait instead of returning SQLITE_BUSY immediately, and tune
	// performance: synchronous=NORMAL is safe with WAL and avoids an fsync
	// per transaction; larger cache and mmap reduce disk I/O.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
		PRAGMA cache_size=-8000;
		PRAGMA mmap_size=268435456;
	`); err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ensureSchema creates the posts and faqs tables if missing. There is no
// migration framework; the schema is managed as an idempotent create script.
func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS posts (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    title TEXT NOT NULL,
    title_ka TEXT NOT NULL,
    slug TEXT NOT NULL UNIQUE,
    content TEXT NOT NULL,
    content_ka TEXT NOT NULL,
    excerpt TEXT NOT NULL DEFAULT '',
    excerpt_ka TEXT NOT NULL DEFAULT '',
    author TEXT NOT NULL DEFAULT 'Mypen Team',
    published INTEGER NOT NULL DEFAULT 1,
    featured_image TEXT,
    published_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_posts_published ON posts(published, published_at DESC);

CREATE TABLE IF NOT EXISTS faqs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    question TEXT NOT NULL,
    question_ka TEXT NOT NULL,
    answer TEXT NOT NULL,
    answer_ka TEXT NOT NULL,
    category TEXT,
    category_ka TEXT,
    sort_order INTEGER NOT NULL DEFAULT 0,
    published INTEGER NOT NULL DEFAULT 1,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);
`)
	return err
}

// IsSlugConflict reports whether err is a uniqueness violation on posts.slug.
// This is the authoritative signal for the timestamp-suffix retry; the
// pre-insert existence check alone is racy under concurrent requests.
func IsSlugConflict(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed: posts.slug")
}

const postColumns = `id, title, title_ka, slug, content, content_ka, excerpt, excerpt_ka, author, published, featured_image, published_at, updated_at`

func scanPost(row interface{ Scan(...interface{}) error }) (views.BlogPost, error) {
	var p views.BlogPost
	var published int
	var featured sql.NullString
	var publishedAt, updatedAt string
	if err := row.Scan(&p.ID, &p.Title, &p.TitleKA, &p.Slug, &p.Content, &p.ContentKA,
		&p.Excerpt, &p.ExcerptKA, &p.Author, &published, &featured, &publishedAt, &updatedAt); err != nil {
		return views.BlogPost{}, err
	}
	p.Published = published == 1
	p.FeaturedImage = featured.String
	p.PublishedAt, _ = time.Parse(time.RFC3339, publishedAt)
	p.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return p, nil
}

// InsertPost inserts one post and returns its id. PublishedAt/UpdatedAt are
// set here; callers supply everything else. A slug collision surfaces as an
// error satisfying IsSlugConflict.
func (s *Store) InsertPost(p views.BlogPost) (int64, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	published := 0
	if p.Published {
		published = 1
	}
	var featured interface{}
	if p.FeaturedImage != "" {
		featured = p.FeaturedImage
	}
	res, err := s.db.Exec(`INSERT INTO posts
		(title, title_ka, slug, content, content_ka, excerpt, excerpt_ka, author, published, featured_image, published_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Title, p.TitleKA, p.Slug, p.Content, p.ContentKA, p.Excerpt, p.ExcerptKA,
		p.Author, published, featured, now, now)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// SlugExists reports whether any post already uses slug.
func (s *Store) SlugExists(slug string) (bool, error) {
	var one int
	err := s.db.QueryRow(`SELECT 1 FROM posts WHERE slug = ? LIMIT 1`, slug).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// GetPost returns a single published post by slug.
func (s *Store) GetPost(slug string) (views.BlogPost, error) {
	row := s.db.QueryRow(`SELECT `+postColumns+` FROM posts WHERE slug = ? AND published = 1`, slug)
	return scanPost(row)
}

// ListPosts returns published posts ordered by publish date descending.
// A limit of 0 returns everything.
func (s *Store) ListPosts(limit int) ([]views.BlogPost, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE published = 1 ORDER BY published_at DESC`
	var rows *sql.Rows
	var err error
	if limit > 0 {
		rows, err = s.db.Query(query+` LIMIT ?`, limit)
	} else {
		rows, err = s.db.Query(query)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPosts(rows)
}

// ListAllPosts returns every post, drafts included, for the admin API.
func (s *Store) ListAllPosts() ([]views.BlogPost, error) {
	rows, err := s.db.Query(`SELECT ` + postColumns + ` FROM posts ORDER BY published_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPosts(rows)
}

func collectPosts(rows *sql.Rows) ([]views.BlogPost, error) {
	var posts []views.BlogPost
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// DeletePost removes a post by id.
func (s *Store) DeletePost(id int64) error {
	_, err := s.db.Exec(`DELETE FROM posts WHERE id = ?`, id)
	return err
}

// ListFAQs returns published FAQ entries ordered by sort order then age.
// If category is non-empty, results are filtered to that English category.
func (s *Store) ListFAQs(category string) ([]views.FAQ, error) {
	query := `SELECT id, question, question_ka, answer, answer_ka, category, category_ka, sort_order, published, created_at, updated_at
		FROM faqs WHERE published = 1`
	var rows *sql.Rows
	var err error
	if category != "" {
		rows, err = s.db.Query(query+` AND category = ? ORDER BY sort_order ASC, created_at ASC`, category)
	} else {
		rows, err = s.db.Query(query + ` ORDER BY sort_order ASC, created_at ASC`)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var faqs []views.FAQ
	for rows.Next() {
		var f views.FAQ
		var published int
		var category, categoryKA sql.NullString
		var createdAt, updatedAt string
		if err := rows.Scan(&f.ID, &f.Question, &f.QuestionKA, &f.Answer, &f.AnswerKA,
			&category, &categoryKA, &f.SortOrder, &published, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		f.Published = published == 1
		f.Category = category.String
		f.CategoryKA = categoryKA.String
		f.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		f.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		faqs = append(faqs, f)
	}
	return faqs, rows.Err()
}

// FAQCategories returns the distinct non-null categories of published FAQs.
func (s *Store) FAQCategories() ([]string, error) {
	rows, err := s.db.Query(`SELECT DISTINCT category FROM faqs
		WHERE published = 1 AND category IS NOT NULL ORDER BY category ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// InsertFAQ inserts one FAQ entry and returns its id. Used by seed tooling
// and tests.
func (s *Store) InsertFAQ(f views.FAQ) (int64, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	published := 0
	if f.Published {
		published = 1
	}
	var category, categoryKA interface{}
	if f.Category != "" {
		category = f.Category
	}
	if f.CategoryKA != "" {
		categoryKA = f.CategoryKA
	}
	res, err := s.db.Exec(`INSERT INTO faqs
		(question, question_ka, answer, answer_ka, category, category_ka, sort_order, published, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		f.Question, f.QuestionKA, f.Answer, f.AnswerKA, category, categoryKA, f.SortOrder, published, now, now)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}
