package dto

import (
	"encoding/json"
	"time"

	"storefront-admin/pkg/apiclient"
	"storefront-admin/pkg/query"
)

// Redirect asks the client to navigate to To after AfterMs milliseconds.
type Redirect struct {
	To      string `json:"to"`
	AfterMs int64  `json:"afterMs"`
}

func NewRedirect(to string, after time.Duration) *Redirect {
	return &Redirect{To: to, AfterMs: after.Milliseconds()}
}

// ScreenState is what a screen renders from. Stale and Placeholder let the
// client tell old data apart from fresh data.
type ScreenState[T any] struct {
	Status      string    `json:"status"`
	Data        T         `json:"data"`
	HasData     bool      `json:"hasData"`
	Stale       bool      `json:"stale"`
	Fetching    bool      `json:"fetching"`
	Placeholder bool      `json:"placeholder"`
	Error       string    `json:"error,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt,omitempty"`
	Redirect    *Redirect `json:"redirect,omitempty"`
}

func ScreenFromResult[T any](res query.Result[T], err error) ScreenState[T] {
	state := ScreenState[T]{
		Status:      res.Status.String(),
		Data:        res.Data,
		HasData:     res.HasData,
		Stale:       res.Stale,
		Fetching:    res.Fetching,
		Placeholder: res.Placeholder,
		UpdatedAt:   res.UpdatedAt,
	}
	if err == nil {
		err = res.Err
	}
	if err != nil {
		state.Error = apiclient.Message(err)
	}
	return state
}

// MapScreen converts the payload of a screen while keeping its flags.
func MapScreen[T, U any](s ScreenState[T], fn func(T) U) ScreenState[U] {
	return ScreenState[U]{
		Status:      s.Status,
		Data:        fn(s.Data),
		HasData:     s.HasData,
		Stale:       s.Stale,
		Fetching:    s.Fetching,
		Placeholder: s.Placeholder,
		Error:       s.Error,
		UpdatedAt:   s.UpdatedAt,
		Redirect:    s.Redirect,
	}
}

// ActionResult answers a successful form submission.
type ActionResult struct {
	Result   json.RawMessage `json:"result,omitempty"`
	Redirect *Redirect       `json:"redirect,omitempty"`
}
