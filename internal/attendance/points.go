package attendance

import (
	"math"
	"time"
)

// PointParams はイベントに設定されたカテゴリ別の数値パラメータ。未設定は0。
type PointParams struct {
	SignIn  float64
	SignOut float64
	PerHour float64
}

// SignInDelta: カテゴリが定義済みなら SignIn をそのまま加算。
// Unconfigured はイベント登録側の設定不備なので INTERNAL（呼び出し側の誤りではない）。
func SignInDelta(cat Category, p PointParams) (float64, error) {
	switch cat {
	case CategoryStudyHours, CategoryVolunteer, CategoryMeeting, CategorySocial, CategoryWorkshop:
		return p.SignIn, nil
	case CategoryUnconfigured:
		return 0, ErrInternal("event category is not configured")
	default:
		return 0, ErrInternal("unknown event category")
	}
}

// SignOutDelta: SignOut ＋ カテゴリ別の滞在時間加算。
//   - study_hours:     実数時間 × PerHour（端数込み）
//   - volunteer_event: floor(時間) × PerHour（1時間未満切り捨て）
//   - その他:          加算なし
//
// 加算はサインイン時刻がサインアウト時刻より厳密に前の場合のみ。
func SignOutDelta(cat Category, signedInAt *time.Time, signedOutAt time.Time, p PointParams) (float64, error) {
	switch cat {
	case CategoryStudyHours:
		return p.SignOut + elapsedHours(signedInAt, signedOutAt)*p.PerHour, nil
	case CategoryVolunteer:
		return p.SignOut + math.Floor(elapsedHours(signedInAt, signedOutAt))*p.PerHour, nil
	case CategoryMeeting, CategorySocial, CategoryWorkshop:
		return p.SignOut, nil
	case CategoryUnconfigured:
		return 0, ErrInternal("event category is not configured")
	default:
		return 0, ErrInternal("unknown event category")
	}
}

// elapsedHours = (out − in) / 3,600,000ms。in が無い／out 以降なら 0。
func elapsedHours(in *time.Time, out time.Time) float64 {
	if in == nil || !in.Before(out) {
		return 0
	}
	return out.Sub(*in).Hours()
}
