package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"stock-analysis-backend/internal/model"
)

// Store SQLite持久层：自选池、分析历史与运行时配置
type Store struct {
	db *sql.DB
}

// Pool 自选池
type Pool struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
	Members   int    `json:"members"`
}

// HistoryRecord 历史分析记录
type HistoryRecord struct {
	ID          int64   `json:"id"`
	Code        string  `json:"code"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Score       float64 `json:"score"`
	Signal      string  `json:"signal"`
	TrendStatus string  `json:"trend_status"`
	Risk        string  `json:"risk"`
	Summary     string  `json:"summary"`
	CreatedAt   string  `json:"created_at"`
}

// Open 打开数据库并迁移表结构
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("创建数据目录失败: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("打开数据库失败: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS pools (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS pool_members (
			pool_id INTEGER NOT NULL,
			code TEXT NOT NULL,
			name TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (pool_id, code)
		)`,
		`CREATE TABLE IF NOT EXISTS history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			code TEXT NOT NULL,
			name TEXT NOT NULL DEFAULT '',
			price REAL NOT NULL DEFAULT 0,
			score REAL NOT NULL DEFAULT 0,
			signal TEXT NOT NULL DEFAULT '',
			trend_status TEXT NOT NULL DEFAULT '',
			risk TEXT NOT NULL DEFAULT '',
			summary TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_history_code ON history(code, created_at)`,
		`CREATE TABLE IF NOT EXISTS app_config (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("迁移表结构失败: %w", err)
		}
	}
	return nil
}

// Close 关闭数据库
func (s *Store) Close() error {
	return s.db.Close()
}

func now() string {
	return time.Now().Format("2006-01-02 15:04:05")
}

// ListPools 列出全部自选池及成员数
func (s *Store) ListPools() ([]Pool, error) {
	rows, err := s.db.Query(`
		SELECT p.id, p.name, p.created_at, COUNT(m.code)
		FROM pools p LEFT JOIN pool_members m ON m.pool_id = p.id
		GROUP BY p.id ORDER BY p.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pools []Pool
	for rows.Next() {
		var p Pool
		if err := rows.Scan(&p.ID, &p.Name, &p.CreatedAt, &p.Members); err != nil {
			return nil, err
		}
		pools = append(pools, p)
	}
	return pools, rows.Err()
}

// CreatePool 新建自选池
func (s *Store) CreatePool(name string) (int64, error) {
	if name == "" {
		return 0, fmt.Errorf("自选池名称不能为空")
	}
	res, err := s.db.Exec(`INSERT INTO pools(name, created_at) VALUES(?, ?)`, name, now())
	if err != nil {
		return 0, fmt.Errorf("创建自选池失败: %w", err)
	}
	return res.LastInsertId()
}

// RenamePool 重命名自选池
func (s *Store) RenamePool(id int64, name string) error {
	if name == "" {
		return fmt.Errorf("自选池名称不能为空")
	}
	res, err := s.db.Exec(`UPDATE pools SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("自选池不存在: %d", id)
	}
	return nil
}

// DeletePool 删除自选池及其成员
func (s *Store) DeletePool(id int64) error {
	if _, err := s.db.Exec(`DELETE FROM pool_members WHERE pool_id = ?`, id); err != nil {
		return err
	}
	_, err := s.db.Exec(`DELETE FROM pools WHERE id = ?`, id)
	return err
}

// AddMember 向自选池添加成员，重复添加时覆盖名称
func (s *Store) AddMember(poolID int64, code, name string) error {
	if code == "" {
		return fmt.Errorf("证券代码不能为空")
	}
	_, err := s.db.Exec(`
		INSERT INTO pool_members(pool_id, code, name) VALUES(?, ?, ?)
		ON CONFLICT(pool_id, code) DO UPDATE SET name = excluded.name`,
		poolID, code, name)
	return err
}

// RemoveMember 从自选池移除成员
func (s *Store) RemoveMember(poolID int64, code string) error {
	_, err := s.db.Exec(`DELETE FROM pool_members WHERE pool_id = ? AND code = ?`, poolID, code)
	return err
}

// ListMembers 列出自选池成员
func (s *Store) ListMembers(poolID int64) ([]model.Stock, error) {
	rows, err := s.db.Query(`SELECT code, name FROM pool_members WHERE pool_id = ? ORDER BY code`, poolID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []model.Stock
	for rows.Next() {
		var m model.Stock
		if err := rows.Scan(&m.Code, &m.Name); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// SaveReport 保存分析结论摘要
func (s *Store) SaveReport(r *model.Report) error {
	if r == nil {
		return nil
	}
	score, sig := 0.0, ""
	if r.Signal != nil {
		score = r.Signal.Score
		sig = r.Signal.SignalCN
	}
	risk := ""
	if r.Alerts != nil {
		risk = r.Alerts.OverallRisk
	}
	_, err := s.db.Exec(`
		INSERT INTO history(code, name, price, score, signal, trend_status, risk, summary, created_at)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Code, r.Name, r.Price, score, sig, r.TrendStatus, risk, r.Summary, now())
	return err
}

// RecentHistory 查询某标的最近的分析记录，code为空时查全部
func (s *Store) RecentHistory(code string, limit int) ([]HistoryRecord, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	query := `SELECT id, code, name, price, score, signal, trend_status, risk, summary, created_at
		FROM history`
	args := []any{}
	if code != "" {
		query += ` WHERE code = ?`
		args = append(args, code)
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []HistoryRecord
	for rows.Next() {
		var h HistoryRecord
		if err := rows.Scan(&h.ID, &h.Code, &h.Name, &h.Price, &h.Score, &h.Signal, &h.TrendStatus, &h.Risk, &h.Summary, &h.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, h)
	}
	return records, rows.Err()
}

// GetConfig 读取运行时配置项
func (s *Store) GetConfig(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM app_config WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

// SetConfig 写入运行时配置项
func (s *Store) SetConfig(key, value string) error {
	if key == "" {
		return fmt.Errorf("配置项不能为空")
	}
	_, err := s.db.Exec(`
		INSERT INTO app_config(key, value) VALUES(?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	return err
}

// AllConfig 读取全部运行时配置
func (s *Store) AllConfig() (map[string]string, error) {
	rows, err := s.db.Query(`SELECT key, value FROM app_config`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, rows.Err()
}
