package attendance

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"time"

	"github.com/oklog/ulid/v2"

	"MERIT-backend/internal/platform/db"
)

// ===== インターフェース群 =====

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now().UTC() }

// txRunner は db.RunInTx と同シグネチャ。テストでは直列化したフェイクに差し替える。
type txRunner func(ctx context.Context, sdb *sql.DB, opts *sql.TxOptions, fn func(ctx context.Context, tx db.DBTX) error) error

// REPEATABLE READ だと存在しない行への FOR UPDATE がギャップロックになり、
// 初回同時サインインが 1062 ではなくデッドロック(1213)で落ちる。
// READ COMMITTED ならギャップロックが無く、後勝ちは行ロック待ちから 1062 に落ちる。
var signTxOpts = &sql.TxOptions{Isolation: sql.LevelReadCommitted}

// ロック競合(1205/1213)で負けた側のやり直し上限。
// 再実行すれば勝者のコミット済み行が見えて ALREADY_EXISTS 等の通常系に収束する。
const maxTxRetries = 3

// ===== Service本体 =====

type Service struct {
	db    *sql.DB
	store LogStore
	clock Clock
	runTx txRunner
}

func NewService(sdb *sql.DB) *Service {
	return &Service{
		db:    sdb,
		store: NewStore(),
		clock: realClock{},
		runTx: db.RunInTx,
	}
}

// SignIn: (member, event) に対するサインインを高々1回だけ記録してポイントを加算する。
// 読み取り→冪等チェック→書き込みを1トランザクション（行ロック付き）で行うので、
// 並行呼び出しでも二重加算は起きない。
func (s *Service) SignIn(ctx context.Context, eventULID, memberID string) (*AttendanceResponse, error) {
	if err := validateIdentity(memberID); err != nil {
		return nil, err
	}
	if err := validateEventULID(eventULID); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	var out *Record
	err := s.runSignTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		ev, err := s.store.GetEvent(ctx, tx, eventULID)
		if err != nil {
			return err
		}

		rec, err := s.store.LockRecord(ctx, tx, eventULID, memberID)
		if err != nil {
			return err
		}
		created := rec == nil
		if created {
			rec = newRecord(eventULID, memberID, now)
		}

		if rec.SignedInAt.Valid {
			return ErrAlreadyExists("already signed in")
		}

		start, end := ev.windowBounds()
		if err := CheckWindow(now, start, end,
			time.Duration(ev.BufferStartMS)*time.Millisecond,
			time.Duration(ev.BufferEndMS)*time.Millisecond,
		); err != nil {
			return err
		}

		delta, err := SignInDelta(ev.Category, ev.pointParams())
		if err != nil {
			return err
		}

		rec.SignedInAt = sql.NullTime{Time: now, Valid: true}
		rec.Points += delta

		if created {
			err = s.store.InsertRecord(ctx, tx, rec)
		} else {
			err = s.store.UpdateRecord(ctx, tx, rec)
		}
		if err != nil {
			return err
		}
		out = rec
		return nil
	})
	if err != nil {
		logIfInternal("SignIn", eventULID, memberID, err)
		return nil, err
	}
	resp := out.toDTO()
	return &resp, nil
}

// SignOut: バリデーションの形は SignIn と対称。ポイント差分はカテゴリ依存で、
// サインイン時刻があれば滞在時間加算も入る（points.go 参照）。
func (s *Service) SignOut(ctx context.Context, eventULID, memberID string) (*AttendanceResponse, error) {
	if err := validateIdentity(memberID); err != nil {
		return nil, err
	}
	if err := validateEventULID(eventULID); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	var out *Record
	err := s.runSignTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		ev, err := s.store.GetEvent(ctx, tx, eventULID)
		if err != nil {
			return err
		}

		rec, err := s.store.LockRecord(ctx, tx, eventULID, memberID)
		if err != nil {
			return err
		}
		created := rec == nil
		if created {
			rec = newRecord(eventULID, memberID, now)
		}

		if rec.SignedOutAt.Valid {
			return ErrAlreadyExists("already signed out")
		}

		start, end := ev.windowBounds()
		if err := CheckWindow(now, start, end,
			time.Duration(ev.BufferStartMS)*time.Millisecond,
			time.Duration(ev.BufferEndMS)*time.Millisecond,
		); err != nil {
			return err
		}

		var signedInAt *time.Time
		if rec.SignedInAt.Valid {
			t := rec.SignedInAt.Time
			signedInAt = &t
		}
		delta, err := SignOutDelta(ev.Category, signedInAt, now, ev.pointParams())
		if err != nil {
			return err
		}

		rec.SignedOutAt = sql.NullTime{Time: now, Valid: true}
		rec.Points += delta

		if created {
			err = s.store.InsertRecord(ctx, tx, rec)
		} else {
			err = s.store.UpdateRecord(ctx, tx, rec)
		}
		if err != nil {
			return err
		}
		out = rec
		return nil
	})
	if err != nil {
		logIfInternal("SignOut", eventULID, memberID, err)
		return nil, err
	}
	resp := out.toDTO()
	return &resp, nil
}

// ListByEvent: イベント起点プロジェクションの読み出し（集計系コラボレータ向け）
func (s *Service) ListByEvent(ctx context.Context, eventULID string) ([]AttendanceResponse, error) {
	if err := validateEventULID(eventULID); err != nil {
		return nil, err
	}
	recs, err := s.store.ListByEvent(ctx, s.db, eventULID)
	if err != nil {
		return nil, err
	}
	return toDTOs(recs), nil
}

// ListByMember: メンバー起点プロジェクションの読み出し
func (s *Service) ListByMember(ctx context.Context, memberID string) ([]AttendanceResponse, error) {
	if err := validateIdentity(memberID); err != nil {
		return nil, err
	}
	recs, err := s.store.ListByMember(ctx, s.db, memberID)
	if err != nil {
		return nil, err
	}
	return toDTOs(recs), nil
}

// ===== helpers =====

// runSignTx: サインイン/アウト用のトランザクション実行。
// デッドロック等で負けた側は fn ごと再実行する（fn は再実行安全に書くこと）。
func (s *Service) runSignTx(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error {
	var err error
	for i := 0; i < maxTxRetries; i++ {
		err = s.runTx(ctx, s.db, signTxOpts, fn)
		if !isLockConflict(err) {
			return err
		}
	}
	return err
}

func validateIdentity(memberID string) error {
	if memberID == "" {
		return ErrUnauthenticated("caller identity is required")
	}
	return nil
}

func validateEventULID(eventULID string) error {
	if eventULID == "" {
		return ErrInvalid("event_id is required")
	}
	if _, err := ulid.Parse(eventULID); err != nil {
		return ErrInvalid("event_id must be a ULID")
	}
	return nil
}

// INTERNAL はイベント登録側のデータ不備なので、呼び出し元エラーと区別して必ずログに残す
func logIfInternal(op, eventULID, memberID string, err error) {
	var api *APIError
	if errors.As(err, &api) && api.Code == CodeInternal {
		log.Printf("[WARN] %s: event=%s member=%s: %s", op, eventULID, memberID, api.Message)
	}
}

func toDTOs(recs []Record) []AttendanceResponse {
	out := make([]AttendanceResponse, 0, len(recs))
	for i := range recs {
		out = append(out, recs[i].toDTO())
	}
	return out
}
