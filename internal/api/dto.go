package api

import (
	"time"

	"github.com/tazhate/leaderflow/internal/agenda"
	"github.com/tazhate/leaderflow/internal/domain"
)

type UpcomingItem struct {
	Kind        agenda.Kind `json:"kind"`
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Date        time.Time   `json:"date"`
	MinutesLeft int         `json:"minutesLeft"`
	Imminent    bool        `json:"imminent"`
}

type UpcomingResponse struct {
	Items    []UpcomingItem `json:"items"`
	Imminent bool           `json:"imminent"`
}

type SummaryResponse struct {
	Events      []domain.Event `json:"events"`
	UrgentTasks []domain.Task  `json:"urgentTasks"`
}

type StatusRequest struct {
	Status domain.DocumentStatus `json:"status" binding:"required"`
}

type UserItem struct {
	ID        string          `json:"id"`
	Username  string          `json:"username"`
	FullName  string          `json:"fullName"`
	Role      domain.UserRole `json:"role"`
	CreatedAt time.Time       `json:"createdAt"`
}

type CreateUserRequest struct {
	Username string          `json:"username" binding:"required"`
	FullName string          `json:"fullName" binding:"required"`
	Password string          `json:"password" binding:"required"`
	Role     domain.UserRole `json:"role"`
}

type UpdateUserRequest struct {
	FullName string          `json:"fullName"`
	Password string          `json:"password"`
	Role     domain.UserRole `json:"role"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func errorBody(err error) ErrorResponse {
	return ErrorResponse{Error: err.Error()}
}

func toUpcomingItems(items []agenda.Item, now time.Time, window time.Duration) []UpcomingItem {
	out := make([]UpcomingItem, 0, len(items))
	for _, it := range items {
		out = append(out, UpcomingItem{
			Kind:        it.Kind,
			ID:          it.ID(),
			Title:       it.Title(),
			Date:        it.Date,
			MinutesLeft: agenda.MinutesLeft(it, now),
			Imminent:    agenda.HasImminent([]agenda.Item{it}, now, window),
		})
	}
	return out
}

func toUserItem(u domain.User) UserItem {
	return UserItem{
		ID:        u.ID,
		Username:  u.Username,
		FullName:  u.FullName,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}
