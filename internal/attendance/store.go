package attendance

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"

	"MERIT-backend/internal/platform/db"
)

// LogStore は出欠ログの永続化境界。
// 書き込み系は必ず RunInTx 内（q = トランザクション）で呼ぶこと。
type LogStore interface {
	GetEvent(ctx context.Context, q db.DBTX, eventULID string) (*Event, error)
	LockRecord(ctx context.Context, q db.DBTX, eventULID, memberID string) (*Record, error)
	InsertRecord(ctx context.Context, q db.DBTX, r *Record) error
	UpdateRecord(ctx context.Context, q db.DBTX, r *Record) error
	ListByEvent(ctx context.Context, q db.DBTX, eventULID string) ([]Record, error)
	ListByMember(ctx context.Context, q db.DBTX, memberID string) ([]Record, error)
}

type Store struct{}

func NewStore() *Store { return &Store{} }

const recordColumns = `event_ulid, member_id, created_at, signed_in_at, signed_out_at, points, verified`

func (s *Store) GetEvent(ctx context.Context, q db.DBTX, eventULID string) (*Event, error) {
	const query = `
	SELECT event_ulid, category, start_at, end_at, buffer_start_ms, buffer_end_ms,
	       sign_in_points, sign_out_points, points_per_hour
	FROM events
	WHERE event_ulid = ?`

	var (
		e   Event
		cat sql.NullString
	)
	err := q.QueryRowContext(ctx, query, eventULID).Scan(
		&e.EventULID, &cat, &e.StartAt, &e.EndAt, &e.BufferStartMS, &e.BufferEndMS,
		&e.SignInPoints, &e.SignOutPoints, &e.PointsPerHour,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound("event not found")
	}
	if err != nil {
		return nil, err
	}
	e.Category = ParseCategory(cat.String) // NULL → "" → Unconfigured
	return &e, nil
}

// LockRecord: イベント起点テーブルの行を FOR UPDATE で取得。
// 同一 (event, member) への並行サインイン/アウトはこの行ロックで直列化される。
// 行が無ければ (nil, nil)。
func (s *Store) LockRecord(ctx context.Context, q db.DBTX, eventULID, memberID string) (*Record, error) {
	const query = `
	SELECT ` + recordColumns + `
	FROM event_attendance
	WHERE event_ulid = ? AND member_id = ?
	LIMIT 1
	FOR UPDATE`

	r, err := scanRecord(q.QueryRowContext(ctx, query, eventULID, memberID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// InsertRecord: 両テーブルへ新規行を書く。
// 行ロックが効かない「初回同時サインイン」は複合主キーの重複で後勝ちが落ちる。
func (s *Store) InsertRecord(ctx context.Context, q db.DBTX, r *Record) error {
	const qEvent = `
	INSERT INTO event_attendance (` + recordColumns + `)
	VALUES (?, ?, ?, ?, ?, ?, ?)`
	const qMember = `
	INSERT INTO member_attendance (member_id, event_ulid, created_at, signed_in_at, signed_out_at, points, verified)
	VALUES (?, ?, ?, ?, ?, ?, ?)`

	if _, err := q.ExecContext(ctx, qEvent,
		r.EventULID, r.MemberID, r.CreatedAt, r.SignedInAt, r.SignedOutAt, r.Points, r.Verified,
	); err != nil {
		if isDuplicateKey(err) {
			return ErrAlreadyExists("attendance already recorded")
		}
		return err
	}
	if _, err := q.ExecContext(ctx, qMember,
		r.MemberID, r.EventULID, r.CreatedAt, r.SignedInAt, r.SignedOutAt, r.Points, r.Verified,
	); err != nil {
		if isDuplicateKey(err) {
			return ErrAlreadyExists("attendance already recorded")
		}
		return err
	}
	return nil
}

// UpdateRecord: 既存行の更新。created_at / verified は触らない（マージ書き込み）。
// メンバー起点側は UPSERT にして、外部要因で欠けた行があっても自己修復する。
func (s *Store) UpdateRecord(ctx context.Context, q db.DBTX, r *Record) error {
	const qEvent = `
	UPDATE event_attendance
	SET signed_in_at = ?, signed_out_at = ?, points = ?
	WHERE event_ulid = ? AND member_id = ?`
	const qMember = `
	INSERT INTO member_attendance (member_id, event_ulid, created_at, signed_in_at, signed_out_at, points, verified)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON DUPLICATE KEY UPDATE
	signed_in_at  = VALUES(signed_in_at),
	signed_out_at = VALUES(signed_out_at),
	points        = VALUES(points)`

	if _, err := q.ExecContext(ctx, qEvent,
		r.SignedInAt, r.SignedOutAt, r.Points, r.EventULID, r.MemberID,
	); err != nil {
		return err
	}
	if _, err := q.ExecContext(ctx, qMember,
		r.MemberID, r.EventULID, r.CreatedAt, r.SignedInAt, r.SignedOutAt, r.Points, r.Verified,
	); err != nil {
		return err
	}
	return nil
}

func (s *Store) ListByEvent(ctx context.Context, q db.DBTX, eventULID string) ([]Record, error) {
	const query = `
	SELECT ` + recordColumns + `
	FROM event_attendance
	WHERE event_ulid = ?
	ORDER BY member_id`
	return listRecords(ctx, q, query, eventULID)
}

func (s *Store) ListByMember(ctx context.Context, q db.DBTX, memberID string) ([]Record, error) {
	const query = `
	SELECT event_ulid, member_id, created_at, signed_in_at, signed_out_at, points, verified
	FROM member_attendance
	WHERE member_id = ?
	ORDER BY created_at DESC, event_ulid DESC`
	return listRecords(ctx, q, query, memberID)
}

// ===== reconciler用 =====

// RepairMemberProjection: イベント起点テーブルを正としてメンバー起点側の欠落・不一致行を直す。
// 返り値は影響行数。
func (s *Store) RepairMemberProjection(ctx context.Context, q db.DBTX) (int64, error) {
	const query = `
	INSERT INTO member_attendance (member_id, event_ulid, created_at, signed_in_at, signed_out_at, points, verified)
	SELECT e.member_id, e.event_ulid, e.created_at, e.signed_in_at, e.signed_out_at, e.points, e.verified
	FROM event_attendance e
	LEFT JOIN member_attendance m
	  ON m.member_id = e.member_id AND m.event_ulid = e.event_ulid
	WHERE m.member_id IS NULL
	   OR m.points <> e.points
	   OR NOT (m.signed_in_at <=> e.signed_in_at)
	   OR NOT (m.signed_out_at <=> e.signed_out_at)
	   OR m.verified <> e.verified
	ON DUPLICATE KEY UPDATE
	signed_in_at  = VALUES(signed_in_at),
	signed_out_at = VALUES(signed_out_at),
	points        = VALUES(points),
	verified      = VALUES(verified)`

	res, err := q.ExecContext(ctx, query)
	if err != nil {
		return 0, err
	}
	aff, _ := res.RowsAffected()
	return aff, nil
}

// CountOrphanMemberRows: 対になるイベント側の行が無いメンバー側の行数。
// 消しはしない（ログはこのサブシステムでは削除しない）。検知してログに出すだけ。
func (s *Store) CountOrphanMemberRows(ctx context.Context, q db.DBTX) (int64, error) {
	const query = `
	SELECT COUNT(*)
	FROM member_attendance m
	LEFT JOIN event_attendance e
	  ON e.event_ulid = m.event_ulid AND e.member_id = m.member_id
	WHERE e.event_ulid IS NULL`

	var n int64
	if err := q.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// ===== helpers =====

type rowScanner interface{ Scan(dest ...any) error }

func scanRecord(row rowScanner) (*Record, error) {
	var (
		r           Record
		verifiedInt int
	)
	if err := row.Scan(
		&r.EventULID, &r.MemberID, &r.CreatedAt, &r.SignedInAt, &r.SignedOutAt, &r.Points, &verifiedInt,
	); err != nil {
		return nil, err
	}
	r.Verified = verifiedInt != 0
	return &r, nil
}

func listRecords(ctx context.Context, q db.DBTX, query string, arg any) ([]Record, error) {
	rows, err := q.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			r           Record
			verifiedInt int
		)
		// SELECT の列順は両テーブルとも recordColumns に揃えてある
		if err := rows.Scan(&r.EventULID, &r.MemberID, &r.CreatedAt, &r.SignedInAt, &r.SignedOutAt, &r.Points, &verifiedInt); err != nil {
			return nil, err
		}
		r.Verified = verifiedInt != 0
		out = append(out, r)
	}
	return out, rows.Err()
}

func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}

// 1205 = lock wait timeout, 1213 = deadlock
func isLockConflict(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && (me.Number == 1205 || me.Number == 1213)
}
