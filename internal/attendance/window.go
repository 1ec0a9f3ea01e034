package attendance

import "time"

// CheckWindow: start−bufferStart ≤ now ≤ end+bufferEnd なら nil。
// start/end が nil の側は制約なし。サインインとサインアウトで同一の判定を使う
// （開始前のサインアウトも「早すぎる」として同じ理由で弾かれる）。
func CheckWindow(now time.Time, start, end *time.Time, bufferStart, bufferEnd time.Duration) error {
	if end != nil && now.After(end.Add(bufferEnd)) {
		return ErrDeadlineExceeded("event is already over")
	}
	if start != nil && now.Before(start.Add(-bufferStart)) {
		return ErrFailedPrecondition("event is not open yet")
	}
	return nil
}
