// Package geocoder resolves free-text addresses into candidate places.
package geocoder

import (
	"context"
	"errors"

	"github.com/chrisdamba/tripsim/internal/models"
)

var (
	ErrEmptyQuery = errors.New("geocoder: empty query")
	ErrStatus     = errors.New("geocoder: unexpected status")
	ErrDecode     = errors.New("geocoder: malformed response")
)

// Result is either a list of places (possibly empty) or a failure.
type Result struct {
	Places []models.Place
	Err    error
}

func OK(places []models.Place) Result { return Result{Places: places} }

func Failed(err error) Result { return Result{Err: err} }

// PlacesOrEmpty treats a failed lookup as having found nothing.
func (r Result) PlacesOrEmpty() []models.Place {
	if r.Err != nil {
		return nil
	}
	return r.Places
}

type Geocoder interface {
	Search(ctx context.Context, query string, limit int) Result
}
