package usecases

import (
	"context"
	"fmt"

	"github.com/devbydaniel/greenrec/internal/capture"
	"github.com/devbydaniel/greenrec/internal/domain/recording"
)

// SettingsWriter persists a single setting.
type SettingsWriter interface {
	Set(key, value string) error
}

// SelectArea asks the user for a screen region.
type SelectArea struct {
	Settings SettingsWriter
}

// Execute runs selector and, when save is set, stores the region as the
// default capture area.
func (s *SelectArea) Execute(ctx context.Context, selector capture.AreaSelector, save bool) (recording.Region, error) {
	region, err := selector.SelectArea(ctx)
	if err != nil {
		return recording.Region{}, err
	}
	if save {
		if err := s.Settings.Set("area", region.String()); err != nil {
			return region, fmt.Errorf("saving area: %w", err)
		}
	}
	return region, nil
}
