package events

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	ulid "github.com/oklog/ulid/v2"

	"MERIT-backend/internal/attendance"
	"MERIT-backend/internal/platform/cache"
)

// ---- Error model ----
type Code string

const (
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeNotFound        Code = "NOT_FOUND"
	CodeInternal        Code = "INTERNAL"
)

type APIError struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string      { return fmt.Sprintf("%s: %s", e.Code, e.Message) }
func ErrInvalid(msg string) *APIError  { return &APIError{Code: CodeInvalidArgument, Message: msg} }
func ErrNotFound(msg string) *APIError { return &APIError{Code: CodeNotFound, Message: msg} }
func ErrInternal(msg string) *APIError { return &APIError{Code: CodeInternal, Message: msg} }

func toHTTPStatus(err error) int {
	var api *APIError
	if errors.As(err, &api) {
		switch api.Code {
		case CodeInvalidArgument:
			return 400
		case CodeNotFound:
			return 404
		default:
			return 500
		}
	}
	return 500
}

// ---- Clock & ID ----
type Clock interface{ Now() time.Time }
type realClock struct{}

func (realClock) Now() time.Time { return time.Now().UTC() }

type IDGen interface{ NewULID(t time.Time) string }
type ulidGen struct{}

func (ulidGen) NewULID(t time.Time) string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}

// ---- Service ----

type eventStore interface {
	Insert(ctx context.Context, e *Event) error
	GetByULID(ctx context.Context, eventULID string) (*Event, error)
	List(ctx context.Context, p Page) ([]Event, int64, error)
	Update(ctx context.Context, e *Event) error
}

// eventCache は cache.Cache の使う分だけ。nil な *cache.Cache を入れても
// 各メソッドが nil レシーバを no-op にするのでそのまま使える。
type eventCache interface {
	GetJSON(ctx context.Context, key string, v any) (bool, error)
	SetJSON(ctx context.Context, key string, v any) error
	Delete(ctx context.Context, key string) error
}

type Service struct {
	db    *sql.DB
	store eventStore
	clock Clock
	id    IDGen
	cache eventCache
}

func NewService(db *sql.DB, c *cache.Cache) *Service {
	return &Service{
		db:    db,
		store: NewStore(db),
		clock: realClock{},
		id:    ulidGen{},
		cache: c, // nil *cache.Cache でも可
	}
}

func (s *Service) CreateEvent(ctx context.Context, req CreateEventRequest) (*EventResponse, error) {
	if req.Name == "" {
		return nil, ErrInvalid("name is required")
	}
	if err := validateCategory(req.Category); err != nil {
		return nil, err
	}
	if err := validateWindow(req.StartAt, req.EndAt, req.BufferStartMS, req.BufferEndMS); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	ev := &Event{
		EventULID:     s.id.NewULID(now),
		Name:          req.Name,
		BufferStartMS: req.BufferStartMS,
		BufferEndMS:   req.BufferEndMS,
		SignInPoints:  req.SignInPoints,
		SignOutPoints: req.SignOutPoints,
		PointsPerHour: req.PointsPerHour,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if req.Category != nil && *req.Category != "" {
		ev.Category = sql.NullString{String: *req.Category, Valid: true}
	}
	if req.StartAt != nil {
		ev.StartAt = sql.NullTime{Time: req.StartAt.UTC(), Valid: true}
	}
	if req.EndAt != nil {
		ev.EndAt = sql.NullTime{Time: req.EndAt.UTC(), Valid: true}
	}

	if err := s.store.Insert(ctx, ev); err != nil {
		return nil, err
	}

	resp := ev.toDTO()
	return &resp, nil
}

func (s *Service) GetEvent(ctx context.Context, eventULID string) (*EventResponse, error) {
	if eventULID == "" {
		return nil, ErrInvalid("event_id is required")
	}

	// 表示用の読み出しだけキャッシュする。
	// 出欠ゲートウェイはここを通らず常にDB（トランザクション内）を読む。
	var cached EventResponse
	if hit, err := s.cache.GetJSON(ctx, cacheKey(eventULID), &cached); err != nil {
		log.Printf("[WARN] event cache get: %v", err)
	} else if hit {
		return &cached, nil
	}

	ev, err := s.store.GetByULID(ctx, eventULID)
	if err != nil {
		return nil, err
	}

	resp := ev.toDTO()
	if err := s.cache.SetJSON(ctx, cacheKey(eventULID), resp); err != nil {
		log.Printf("[WARN] event cache set: %v", err)
	}
	return &resp, nil
}

func (s *Service) ListEvents(ctx context.Context, p Page) ([]EventResponse, int64, error) {
	rows, total, err := s.store.List(ctx, p)
	if err != nil {
		return nil, 0, err
	}
	out := make([]EventResponse, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDTO())
	}
	return out, total, nil
}

func (s *Service) UpdateEvent(ctx context.Context, eventULID string, req UpdateEventRequest) (*EventResponse, error) {
	if eventULID == "" {
		return nil, ErrInvalid("event_id is required")
	}
	if err := validateCategory(req.Category); err != nil {
		return nil, err
	}

	ev, err := s.store.GetByULID(ctx, eventULID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if *req.Name == "" {
			return nil, ErrInvalid("name must not be empty")
		}
		ev.Name = *req.Name
	}
	if req.Category != nil {
		if *req.Category == "" {
			ev.Category = sql.NullString{}
		} else {
			ev.Category = sql.NullString{String: *req.Category, Valid: true}
		}
	}
	if req.StartAt != nil {
		ev.StartAt = sql.NullTime{Time: req.StartAt.UTC(), Valid: true}
	}
	if req.EndAt != nil {
		ev.EndAt = sql.NullTime{Time: req.EndAt.UTC(), Valid: true}
	}
	if req.BufferStartMS != nil {
		ev.BufferStartMS = *req.BufferStartMS
	}
	if req.BufferEndMS != nil {
		ev.BufferEndMS = *req.BufferEndMS
	}
	if req.SignInPoints != nil {
		ev.SignInPoints = *req.SignInPoints
	}
	if req.SignOutPoints != nil {
		ev.SignOutPoints = *req.SignOutPoints
	}
	if req.PointsPerHour != nil {
		ev.PointsPerHour = *req.PointsPerHour
	}

	var start, end *time.Time
	if ev.StartAt.Valid {
		start = &ev.StartAt.Time
	}
	if ev.EndAt.Valid {
		end = &ev.EndAt.Time
	}
	if err := validateWindow(start, end, ev.BufferStartMS, ev.BufferEndMS); err != nil {
		return nil, err
	}

	ev.UpdatedAt = s.clock.Now()
	if err := s.store.Update(ctx, ev); err != nil {
		return nil, err
	}

	if err := s.cache.Delete(ctx, cacheKey(eventULID)); err != nil {
		log.Printf("[WARN] event cache invalidate: %v", err)
	}

	resp := ev.toDTO()
	return &resp, nil
}

// ---- helpers ----

func cacheKey(eventULID string) string { return "event:" + eventULID }

// カテゴリ文字列は閉じた列挙のいずれかに限定（タイポをここで弾く）
func validateCategory(cat *string) error {
	if cat == nil || *cat == "" {
		return nil
	}
	if attendance.ParseCategory(*cat) == attendance.CategoryUnconfigured {
		return ErrInvalid("unknown category: " + *cat)
	}
	return nil
}

func validateWindow(start, end *time.Time, bufStartMS, bufEndMS int64) error {
	if bufStartMS < 0 || bufEndMS < 0 {
		return ErrInvalid("buffers must be >= 0")
	}
	if start != nil && end != nil && !start.Before(*end) {
		return ErrInvalid("start_at must be before end_at")
	}
	return nil
}
