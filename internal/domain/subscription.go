package domain

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PlanStatus статус плана в каталоге. Неактивные планы не показываются
// в листингах и не участвуют в подписке, но никогда не удаляются подпиской.
type PlanStatus string

const (
	PlanStatusActive   PlanStatus = "active"
	PlanStatusInactive PlanStatus = "inactive"
)

// Допустимые теги плана. Все прочие значения молча отбрасываются.
var allowedPlanTags = map[string]struct{}{
	"most popular": {},
	"loved":        {},
	"best value":   {},
}

// Plan представляет запись каталога тарифных планов
type Plan struct {
	ID              uuid.UUID  `json:"id" db:"id"`
	Name            string     `json:"name" db:"name"`
	LegacyKey       string     `json:"legacy_key,omitempty" db:"legacy_key"`
	DurationSeconds int64      `json:"duration_seconds" db:"duration_seconds"`
	Price           float64    `json:"price" db:"price"`
	Currency        string     `json:"currency" db:"currency"`
	Tags            StringList `json:"tags" db:"tags"`
	Description     string     `json:"description,omitempty" db:"description"`
	Status          PlanStatus `json:"status" db:"status"`
	CreatedBy       *uuid.UUID `json:"created_by,omitempty" db:"created_by"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
}

// DurationDisplay возвращает человекочитаемую длительность плана.
func (p *Plan) DurationDisplay() string {
	return FormatDuration(p.DurationSeconds)
}

// PlanRequest запрос на создание/обновление плана
type PlanRequest struct {
	Name            string   `json:"name" binding:"required,max=100"`
	LegacyKey       string   `json:"legacy_key" binding:"max=100"`
	DurationSeconds int64    `json:"duration_seconds" binding:"required"`
	Price           float64  `json:"price"`
	Currency        string   `json:"currency" binding:"max=10"`
	Tags            []string `json:"tags"`
	Description     string   `json:"description" binding:"max=1000"`
	Status          string   `json:"status" binding:"omitempty,oneof=active inactive"`
}

// Subscription представляет единственную запись о подписке пользователя.
// Единственный источник истины об активности — поле ExpiresAt: подписка
// активна тогда и только тогда, когда ExpiresAt > now. Отдельного поля
// статуса нет, "истекла" — производная классификация на чтении.
type Subscription struct {
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
	PlanID    string    `json:"plan_id,omitempty" db:"plan_id"`
	PlanName  string    `json:"plan_name,omitempty" db:"plan_name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// SubscriptionStatus производное представление текущего доступа.
type SubscriptionStatus struct {
	ExpiresAt        *time.Time `json:"expires_at"`
	RemainingSeconds int64      `json:"remaining_seconds"`
	IsActive         bool       `json:"is_active"`
}

// StatusAt вычисляет статус подписки на момент now.
func (s *Subscription) StatusAt(now time.Time) SubscriptionStatus {
	expiresAt := s.ExpiresAt
	if !expiresAt.After(now) {
		// Истекшая подписка: expires_at сохраняем в ответе, но доступа нет
		return SubscriptionStatus{ExpiresAt: &expiresAt, RemainingSeconds: 0, IsActive: false}
	}
	remaining := int64(expiresAt.Sub(now).Seconds())
	return SubscriptionStatus{ExpiresAt: &expiresAt, RemainingSeconds: remaining, IsActive: true}
}

// SubscribeResult ответ на подписку: примененный план и статус доступа
// после продления.
type SubscribeResult struct {
	PlanID   string `json:"plan_id"`
	PlanName string `json:"plan_name"`
	SubscriptionStatus
}

// SubscribeRequest запрос на подписку/продление
type SubscribeRequest struct {
	PlanID string `json:"plan_id" binding:"required"`
}

// AdminSetExpiryRequest прямое задание срока подписки администратором
type AdminSetExpiryRequest struct {
	ExpiresAt string `json:"expires_at" binding:"required"`
}

// PlanStats агрегированная статистика каталога планов для админ-панели
type PlanStats struct {
	TotalPlans       int     `json:"total_plans"`
	ActivePlans      int     `json:"active_plans"`
	InactivePlans    int     `json:"inactive_plans"`
	ActivePlansPrice float64 `json:"active_plans_price_total"`
}

// NormalizePlanTags отбрасывает недопустимые теги и дубликаты.
// Сравнение регистронезависимое, сохраняется каноническая форма.
func NormalizePlanTags(tags []string) StringList {
	seen := make(map[string]struct{}, len(tags))
	result := make(StringList, 0, len(tags))
	for _, tag := range tags {
		canonical := strings.ToLower(strings.TrimSpace(tag))
		if _, ok := allowedPlanTags[canonical]; !ok {
			continue
		}
		if _, ok := seen[canonical]; ok {
			continue
		}
		seen[canonical] = struct{}{}
		result = append(result, canonical)
	}
	return result
}

// FormatDuration переводит секунды в человекочитаемую строку.
func FormatDuration(seconds int64) string {
	switch {
	case seconds < 60:
		return plural(seconds, "Second")
	case seconds < 3600:
		return plural(seconds/60, "Minute")
	case seconds < 86400:
		return plural(seconds/3600, "Hour")
	default:
		return plural(seconds/86400, "Day")
	}
}

func plural(n int64, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return strconv.FormatInt(n, 10) + " " + unit + "s"
}
