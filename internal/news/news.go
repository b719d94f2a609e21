package news

import (
	"context"

	"ndr-radio/internal/models"
)

// Weather is the current-conditions snippet read out alongside a
// bulletin. Temp keeps the provider's formatting ("31°C").
type Weather struct {
	Condition string `json:"condition"`
	Temp      string `json:"temp"`
	Location  string `json:"location"`
}

// Report bundles one fetch of headlines with the matching weather.
// Weather is best effort; a nil Weather just drops that line from the
// script.
type Report struct {
	Items   []models.NewsItem
	Weather *Weather
}

// Provider fetches the latest headlines for a location.
type Provider interface {
	Fetch(ctx context.Context, location string) (*Report, error)
}
