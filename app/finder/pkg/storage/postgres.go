package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/goccy/go-json"
	_ "github.com/lib/pq"

	"github.com/iWorld-y/armor_finder/app/finder/pkg/config"
	"github.com/iWorld-y/armor_finder/app/finder/pkg/model"
)

// Storage 推荐解析历史的 PostgreSQL 存储
type Storage struct {
	db *sql.DB
}

// DSN 根据配置构造连接串
func DSN(cfg config.DBConfig) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name)
}

// NewStorage 连接数据库并初始化表结构
func NewStorage(cfg config.DBConfig) (*Storage, error) {
	return Open(DSN(cfg))
}

// Open 使用连接串打开存储
func Open(dsn string) (*Storage, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Storage{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return s, nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS resolutions (
			id BIGSERIAL PRIMARY KEY,
			topic TEXT NOT NULL,
			source TEXT NOT NULL,
			video_count INTEGER NOT NULL DEFAULT 0,
			failure_reason TEXT,
			latency_ms BIGINT NOT NULL DEFAULT 0,
			videos JSONB NOT NULL DEFAULT '[]'::jsonb,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_resolutions_created_at ON resolutions (created_at DESC)`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

// SaveResolution 写入一次解析记录，返回记录 ID
func (s *Storage) SaveResolution(ctx context.Context, r *model.Resolution) (int64, error) {
	videos := r.Videos
	if videos == nil {
		videos = []model.VideoRecommendation{}
	}
	cleaned := make([]model.VideoRecommendation, len(videos))
	for i, v := range videos {
		cleaned[i] = model.VideoRecommendation{
			Title:       sanitize(v.Title),
			URL:         sanitize(v.URL),
			Description: sanitize(v.Description),
		}
	}
	payload, err := json.Marshal(cleaned)
	if err != nil {
		return 0, fmt.Errorf("marshal videos: %w", err)
	}

	var reason sql.NullString
	if r.FailureReason != "" {
		reason = sql.NullString{String: sanitize(r.FailureReason), Valid: true}
	}

	var id int64
	err = s.db.QueryRowContext(ctx,
		`INSERT INTO resolutions (topic, source, video_count, failure_reason, latency_ms, videos)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, created_at`,
		sanitize(r.Topic), r.Source, len(cleaned), reason, r.LatencyMS, string(payload),
	).Scan(&id, &r.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("insert resolution: %w", err)
	}
	r.ID = id
	return id, nil
}

// ListResolutions 按时间倒序返回最近的解析记录
func (s *Storage) ListResolutions(ctx context.Context, limit int) ([]*model.Resolution, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, topic, source, video_count, failure_reason, latency_ms, videos, created_at
		 FROM resolutions ORDER BY created_at DESC, id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query resolutions: %w", err)
	}
	defer rows.Close()

	var out []*model.Resolution
	for rows.Next() {
		var (
			r       model.Resolution
			reason  sql.NullString
			payload []byte
		)
		if err := rows.Scan(&r.ID, &r.Topic, &r.Source, &r.VideoCount, &reason, &r.LatencyMS, &payload, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan resolution: %w", err)
		}
		r.FailureReason = reason.String
		if err := json.Unmarshal(payload, &r.Videos); err != nil {
			return nil, fmt.Errorf("unmarshal videos of resolution %d: %w", r.ID, err)
		}
		out = append(out, &r)
	}
	return out, rows.Err()
}

// sanitize 移除无效的 UTF-8 字符和 NULL 字节，PostgreSQL 文本字段不支持 NULL 字节
func sanitize(s string) string {
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "")
	}
	return strings.ReplaceAll(s, "\x00", "")
}
