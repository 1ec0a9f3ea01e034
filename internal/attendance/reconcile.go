package attendance

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"MERIT-backend/internal/platform/db"
)

// repairStore: 突き合わせに必要な操作だけ切り出した境界（テストで差し替える）
type repairStore interface {
	RepairMemberProjection(ctx context.Context, q db.DBTX) (int64, error)
	CountOrphanMemberRows(ctx context.Context, q db.DBTX) (int64, error)
}

// Reconciler は2面持ちテーブルの突き合わせジョブ。
// 通常運用では両テーブルは同一トランザクションで書かれるのでズレないが、
// 手動メンテや外部ツールの書き込みで欠けた場合にイベント側を正として修復する。
type Reconciler struct {
	db    *sql.DB
	store repairStore
	cron  *cron.Cron
}

func NewReconciler(sdb *sql.DB) *Reconciler {
	return &Reconciler{db: sdb, store: NewStore(), cron: cron.New()}
}

// Start: schedule は robfig/cron 形式（例 "@every 5m"）
func (r *Reconciler) Start(schedule string) error {
	if _, err := r.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()
		if err := r.RunOnce(ctx); err != nil {
			log.Printf("[WARN] reconcile failed: %v", err)
		}
	}); err != nil {
		return err
	}
	r.cron.Start()
	return nil
}

func (r *Reconciler) Stop() {
	if r.cron != nil {
		r.cron.Stop()
	}
}

func (r *Reconciler) RunOnce(ctx context.Context) error {
	repaired, err := r.store.RepairMemberProjection(ctx, r.db)
	if err != nil {
		return err
	}
	if repaired > 0 {
		log.Printf("[WARN] reconcile: repaired %d member_attendance row(s)", repaired)
	}

	orphans, err := r.store.CountOrphanMemberRows(ctx, r.db)
	if err != nil {
		return err
	}
	if orphans > 0 {
		// 出欠ログは消さない方針なので、ここでは検知だけして人に任せる
		log.Printf("[WARN] reconcile: %d orphan member_attendance row(s) without event-side row", orphans)
	}
	return nil
}
