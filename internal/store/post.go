package store

import (
	"database/sql"
	"fmt"

	"github.com/doraapp/dora/internal/model"
)

type PostStore struct {
	db *sql.DB
}

func NewPostStore(db *sql.DB) *PostStore {
	return &PostStore{db: db}
}

const postCols = `p.id, p.author_id, COALESCE(u.full_name, ''), p.country_code, p.title,
	p.content, p.status, p.likes, p.created_at, p.updated_at`

func scanPost(scanner interface{ Scan(...any) error }) (*model.CommunityPost, error) {
	var p model.CommunityPost
	err := scanner.Scan(
		&p.ID, &p.AuthorID, &p.AuthorName, &p.CountryCode, &p.Title,
		&p.Content, &p.Status, &p.Likes, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PostStore) Create(authorID int64, countryCode, title, content string) (*model.CommunityPost, error) {
	result, err := s.db.Exec(
		`INSERT INTO community_posts (author_id, country_code, title, content) VALUES (?, ?, ?, ?)`,
		authorID, countryCode, title, content,
	)
	if err != nil {
		return nil, fmt.Errorf("insert post: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *PostStore) GetByID(id int64) (*model.CommunityPost, error) {
	row := s.db.QueryRow(
		`SELECT `+postCols+` FROM community_posts p LEFT JOIN users u ON u.id = p.author_id WHERE p.id = ?`, id)
	p, err := scanPost(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	return p, nil
}

// List returns posts newest first. An empty status returns all posts;
// otherwise only posts in that moderation state.
func (s *PostStore) List(status string) ([]model.CommunityPost, error) {
	query := `SELECT ` + postCols + ` FROM community_posts p LEFT JOIN users u ON u.id = p.author_id`
	args := []any{}
	if status != "" {
		query += ` WHERE p.status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY p.created_at DESC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	var posts []model.CommunityPost
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, *p)
	}
	return posts, rows.Err()
}

// SetStatus moves a post between moderation states.
func (s *PostStore) SetStatus(id int64, status string) (*model.CommunityPost, error) {
	if !model.ValidPostStatus(status) {
		return nil, fmt.Errorf("invalid post status %q", status)
	}
	_, err := s.db.Exec(
		`UPDATE community_posts SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		status, id,
	)
	if err != nil {
		return nil, fmt.Errorf("set post status: %w", err)
	}
	return s.GetByID(id)
}

func (s *PostStore) Like(id int64) (*model.CommunityPost, error) {
	_, err := s.db.Exec(`UPDATE community_posts SET likes = likes + 1 WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("like post: %w", err)
	}
	return s.GetByID(id)
}

func (s *PostStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM community_posts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}
