package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"jrnl/internal/item"
	"jrnl/internal/journal"
)

const dateLayout = "2006-01-02"

// Store persists journal items in SQLite. It implements journal.Store; the
// querier is the database itself until Transact swaps in a *sql.Tx.
type Store struct {
	db   *sql.DB
	q    querier
	inTx bool
}

type querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

func Open(dbPath string) (*Store, error) {
	if dbPath == "" {
		return nil, errors.New("db path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, err
	}
	db, err := sql.Open("sqlite", sqliteDSN(dbPath))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db, q: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Transact runs fn against a Store bound to one transaction. Nested calls
// reuse the surrounding transaction.
func (s *Store) Transact(fn func(journal.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	tx, err := s.db.Begin()
	if err != nil {
		return storageErr("begin", err)
	}
	ts := &Store{db: s.db, q: tx, inTx: true}
	if err := fn(ts); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return storageErr("commit", err)
	}
	return nil
}

func (s *Store) ensureSchema() error {
	const ddl = `
CREATE TABLE IF NOT EXISTS items (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	kind TEXT NOT NULL CHECK(kind IN ('task','note')),
	title TEXT NOT NULL,
	created_at TEXT NOT NULL,
	parent_id INTEGER DEFAULT NULL REFERENCES items(id)
);
CREATE INDEX IF NOT EXISTS idx_items_parent ON items(parent_id);
CREATE TABLE IF NOT EXISTS task_info (
	item_id INTEGER PRIMARY KEY REFERENCES items(id),
	status TEXT NOT NULL CHECK(status IN ('todo','doing','waiting','done')) DEFAULT 'todo',
	due_date TEXT DEFAULT NULL,
	completed_at TEXT DEFAULT NULL,
	recur_amount INTEGER DEFAULT NULL,
	recur_unit TEXT DEFAULT NULL
);
CREATE TABLE IF NOT EXISTS links (
	item_a INTEGER NOT NULL,
	item_b INTEGER NOT NULL,
	PRIMARY KEY (item_a, item_b),
	CHECK (item_a < item_b)
);`
	if _, err := s.q.Exec(ddl); err != nil {
		return storageErr("apply schema", err)
	}
	return s.ensureTaskInfoColumns()
}

// ensureTaskInfoColumns backfills the recurrence columns on databases
// created before recurrence existed.
func (s *Store) ensureTaskInfoColumns() error {
	required := map[string]string{
		"recur_amount": "ALTER TABLE task_info ADD COLUMN recur_amount INTEGER DEFAULT NULL;",
		"recur_unit":   "ALTER TABLE task_info ADD COLUMN recur_unit TEXT DEFAULT NULL;",
	}
	existing := map[string]struct{}{}
	rows, err := s.q.Query(`PRAGMA table_info(task_info);`)
	if err != nil {
		return storageErr("inspect task_info", err)
	}
	defer rows.Close()
	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull, pk int
		var dflt sql.NullString
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return storageErr("inspect task_info", err)
		}
		existing[name] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return storageErr("inspect task_info", err)
	}
	for col, alter := range required {
		if _, ok := existing[col]; ok {
			continue
		}
		if _, err := s.q.Exec(alter); err != nil {
			return storageErr("add column "+col, err)
		}
	}
	return nil
}

func (s *Store) InsertItem(it item.Item, info *item.TaskInfo) (int64, error) {
	if !s.inTx && info != nil {
		// Item and task info land together or not at all.
		var id int64
		err := s.Transact(func(tx journal.Store) error {
			var err error
			id, err = tx.InsertItem(it, info)
			return err
		})
		return id, err
	}

	res, err := s.q.Exec(
		`INSERT INTO items (kind, title, created_at, parent_id) VALUES (?, ?, ?, ?);`,
		string(it.Kind), it.Title, it.CreatedAt.UTC().Format(time.RFC3339), nullInt(it.ParentID),
	)
	if err != nil {
		return 0, storageErr("insert item", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, storageErr("insert item", err)
	}

	if info != nil {
		amount, unit := nullRecur(info.Recur)
		_, err = s.q.Exec(
			`INSERT INTO task_info (item_id, status, due_date, completed_at, recur_amount, recur_unit) VALUES (?, ?, ?, ?, ?, ?);`,
			id, string(info.Status), nullDate(info.DueDate), nullTime(info.CompletedAt), amount, unit,
		)
		if err != nil {
			return 0, storageErr("insert task info", err)
		}
	}
	return id, nil
}

func (s *Store) GetItem(id int64) (item.Item, bool, error) {
	row := s.q.QueryRow(`SELECT id, kind, title, created_at, parent_id FROM items WHERE id = ?;`, id)
	it, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return item.Item{}, false, nil
	}
	if err != nil {
		return item.Item{}, false, storageErr("get item", err)
	}
	return it, true, nil
}

func (s *Store) GetTaskInfo(itemID int64) (item.TaskInfo, bool, error) {
	row := s.q.QueryRow(
		`SELECT item_id, status, due_date, completed_at, recur_amount, recur_unit FROM task_info WHERE item_id = ?;`,
		itemID,
	)
	info, err := scanTaskInfo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return item.TaskInfo{}, false, nil
	}
	if err != nil {
		return item.TaskInfo{}, false, storageErr("get task info", err)
	}
	return info, true, nil
}

func (s *Store) Children(parentID int64) ([]item.Item, error) {
	return s.queryItems(`SELECT id, kind, title, created_at, parent_id FROM items WHERE parent_id = ? ORDER BY id;`, parentID)
}

func (s *Store) Roots() ([]item.Item, error) {
	return s.queryItems(`SELECT id, kind, title, created_at, parent_id FROM items WHERE parent_id IS NULL ORDER BY id;`)
}

func (s *Store) AllItems() ([]item.Item, error) {
	return s.queryItems(`SELECT id, kind, title, created_at, parent_id FROM items ORDER BY id;`)
}

func (s *Store) AllTasks() ([]item.Task, error) {
	rows, err := s.q.Query(`
SELECT i.id, i.kind, i.title, i.created_at, i.parent_id,
       t.status, t.due_date, t.completed_at, t.recur_amount, t.recur_unit
FROM items i JOIN task_info t ON t.item_id = i.id
ORDER BY i.id;`)
	if err != nil {
		return nil, storageErr("query tasks", err)
	}
	defer rows.Close()

	var tasks []item.Task
	for rows.Next() {
		var (
			t          item.Task
			kind       string
			createdStr string
			parentID   sql.NullInt64
			status     string
			dueStr     sql.NullString
			doneStr    sql.NullString
			amount     sql.NullInt64
			unit       sql.NullString
		)
		if err := rows.Scan(&t.ID, &kind, &t.Title, &createdStr, &parentID,
			&status, &dueStr, &doneStr, &amount, &unit); err != nil {
			return nil, storageErr("scan task", err)
		}
		t.Kind = item.Kind(kind)
		t.CreatedAt = parseTime(createdStr)
		if parentID.Valid {
			pid := parentID.Int64
			t.ParentID = &pid
		}
		t.Info = buildTaskInfo(t.ID, status, dueStr, doneStr, amount, unit)
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("query tasks", err)
	}
	return tasks, nil
}

func (s *Store) UpdateItem(it item.Item) error {
	_, err := s.q.Exec(`UPDATE items SET title = ?, parent_id = ? WHERE id = ?;`,
		it.Title, nullInt(it.ParentID), it.ID)
	if err != nil {
		return storageErr("update item", err)
	}
	return nil
}

func (s *Store) UpdateTaskInfo(info item.TaskInfo) error {
	amount, unit := nullRecur(info.Recur)
	_, err := s.q.Exec(
		`UPDATE task_info SET status = ?, due_date = ?, completed_at = ?, recur_amount = ?, recur_unit = ? WHERE item_id = ?;`,
		string(info.Status), nullDate(info.DueDate), nullTime(info.CompletedAt), amount, unit, info.ItemID,
	)
	if err != nil {
		return storageErr("update task info", err)
	}
	return nil
}

func (s *Store) DeleteItem(id int64) error {
	if !s.inTx {
		return s.Transact(func(tx journal.Store) error {
			return tx.DeleteItem(id)
		})
	}
	if _, err := s.q.Exec(`DELETE FROM links WHERE item_a = ? OR item_b = ?;`, id, id); err != nil {
		return storageErr("delete links", err)
	}
	if _, err := s.q.Exec(`DELETE FROM task_info WHERE item_id = ?;`, id); err != nil {
		return storageErr("delete task info", err)
	}
	if _, err := s.q.Exec(`DELETE FROM items WHERE id = ?;`, id); err != nil {
		return storageErr("delete item", err)
	}
	return nil
}

func (s *Store) InsertLink(l item.Link) error {
	_, err := s.q.Exec(`INSERT OR IGNORE INTO links (item_a, item_b) VALUES (?, ?);`, l.A, l.B)
	if err != nil {
		return storageErr("insert link", err)
	}
	return nil
}

func (s *Store) DeleteLink(l item.Link) error {
	_, err := s.q.Exec(`DELETE FROM links WHERE item_a = ? AND item_b = ?;`, l.A, l.B)
	if err != nil {
		return storageErr("delete link", err)
	}
	return nil
}

func (s *Store) LinksFor(id int64) ([]item.Link, error) {
	rows, err := s.q.Query(`SELECT item_a, item_b FROM links WHERE item_a = ? OR item_b = ? ORDER BY item_a, item_b;`, id, id)
	if err != nil {
		return nil, storageErr("query links", err)
	}
	defer rows.Close()

	var links []item.Link
	for rows.Next() {
		var l item.Link
		if err := rows.Scan(&l.A, &l.B); err != nil {
			return nil, storageErr("scan link", err)
		}
		links = append(links, l)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("query links", err)
	}
	return links, nil
}

func (s *Store) queryItems(query string, args ...any) ([]item.Item, error) {
	rows, err := s.q.Query(query, args...)
	if err != nil {
		return nil, storageErr("query items", err)
	}
	defer rows.Close()

	var items []item.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, storageErr("scan item", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("query items", err)
	}
	return items, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (item.Item, error) {
	var (
		it         item.Item
		kind       string
		createdStr string
		parentID   sql.NullInt64
	)
	if err := row.Scan(&it.ID, &kind, &it.Title, &createdStr, &parentID); err != nil {
		return item.Item{}, err
	}
	it.Kind = item.Kind(kind)
	it.CreatedAt = parseTime(createdStr)
	if parentID.Valid {
		pid := parentID.Int64
		it.ParentID = &pid
	}
	return it, nil
}

func scanTaskInfo(row rowScanner) (item.TaskInfo, error) {
	var (
		itemID  int64
		status  string
		dueStr  sql.NullString
		doneStr sql.NullString
		amount  sql.NullInt64
		unit    sql.NullString
	)
	if err := row.Scan(&itemID, &status, &dueStr, &doneStr, &amount, &unit); err != nil {
		return item.TaskInfo{}, err
	}
	return buildTaskInfo(itemID, status, dueStr, doneStr, amount, unit), nil
}

func buildTaskInfo(itemID int64, status string, dueStr, doneStr sql.NullString, amount sql.NullInt64, unit sql.NullString) item.TaskInfo {
	info := item.TaskInfo{ItemID: itemID, Status: item.Status(status)}
	if dueStr.Valid {
		if parsed, err := time.ParseInLocation(dateLayout, dueStr.String, time.UTC); err == nil {
			info.DueDate = &parsed
		}
	}
	if doneStr.Valid {
		if parsed, err := time.Parse(time.RFC3339, doneStr.String); err == nil {
			info.CompletedAt = &parsed
		}
	}
	if amount.Valid && unit.Valid {
		info.Recur = &item.Recurrence{Amount: int(amount.Int64), Unit: item.Unit(unit.String)}
	}
	return info
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func nullInt(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func nullDate(v *time.Time) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: v.UTC().Format(dateLayout), Valid: true}
}

func nullTime(v *time.Time) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: v.UTC().Format(time.RFC3339), Valid: true}
}

func nullRecur(rec *item.Recurrence) (sql.NullInt64, sql.NullString) {
	if rec == nil {
		return sql.NullInt64{}, sql.NullString{}
	}
	return sql.NullInt64{Int64: int64(rec.Amount), Valid: true},
		sql.NullString{String: string(rec.Unit), Valid: true}
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", item.ErrStorage, op, err)
}

func sqliteDSN(path string) string {
	if strings.HasPrefix(path, "file:") {
		return path
	}
	abs, err := filepath.Abs(path)
	if err == nil {
		path = abs
	}
	u := url.URL{
		Scheme: "file",
		Path:   path,
	}
	q := u.Query()
	q.Set("mode", "rwc")
	q.Set("_pragma", "busy_timeout(5000)")
	u.RawQuery = q.Encode()
	return u.String()
}
