package attendance

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MERIT-backend/internal/platform/db"
)

type fakeRepairStore struct {
	repaired  int64
	orphans   int64
	repairErr error
	countErr  error
	calls     []string
}

func (f *fakeRepairStore) RepairMemberProjection(ctx context.Context, q db.DBTX) (int64, error) {
	f.calls = append(f.calls, "repair")
	return f.repaired, f.repairErr
}

func (f *fakeRepairStore) CountOrphanMemberRows(ctx context.Context, q db.DBTX) (int64, error) {
	f.calls = append(f.calls, "orphans")
	return f.orphans, f.countErr
}

func TestReconciler_RunOnce(t *testing.T) {
	fs := &fakeRepairStore{repaired: 2, orphans: 1}
	r := &Reconciler{store: fs}

	require.NoError(t, r.RunOnce(context.Background()))
	// 修復→孤児検知の順。孤児は数えるだけで消さない
	assert.Equal(t, []string{"repair", "orphans"}, fs.calls)
}

func TestReconciler_RunOnce_NothingToDo(t *testing.T) {
	fs := &fakeRepairStore{}
	r := &Reconciler{store: fs}

	require.NoError(t, r.RunOnce(context.Background()))
	assert.Equal(t, []string{"repair", "orphans"}, fs.calls)
}

func TestReconciler_RunOnce_RepairError(t *testing.T) {
	fs := &fakeRepairStore{repairErr: errors.New("lost connection")}
	r := &Reconciler{store: fs}

	require.Error(t, r.RunOnce(context.Background()))
	// 修復で失敗したら孤児カウントへは進まない
	assert.Equal(t, []string{"repair"}, fs.calls)
}

func TestReconciler_RunOnce_CountError(t *testing.T) {
	fs := &fakeRepairStore{countErr: errors.New("lost connection")}
	r := &Reconciler{store: fs}

	require.Error(t, r.RunOnce(context.Background()))
	assert.Equal(t, []string{"repair", "orphans"}, fs.calls)
}

func TestReconciler_Start_BadSchedule(t *testing.T) {
	r := NewReconciler(nil)
	defer r.Stop()

	require.Error(t, r.Start("not-a-schedule"))
}
