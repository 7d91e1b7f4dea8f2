package service

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"veredapos/internal/model"
	"veredapos/internal/notify"
	"veredapos/internal/state"

	"github.com/mitchellh/mapstructure"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

type SettingsService interface {
	Get(ctx context.Context) model.Settings
	// Update applies a partial JSON object; keys it does not name keep their
	// current value.
	Update(ctx context.Context, patch map[string]any) (model.Settings, error)
}

type settingsService struct {
	store    *state.Store
	notifier notify.Notifier
	cache    MenuCache
}

func NewSettingsService(store *state.Store, n notify.Notifier, cache MenuCache) SettingsService {
	return &settingsService{store: store, notifier: n, cache: cache}
}

func (s *settingsService) Get(_ context.Context) model.Settings {
	return s.store.Current().Settings
}

func (s *settingsService) Update(ctx context.Context, patch map[string]any) (model.Settings, error) {
	var result model.Settings
	err := s.store.Mutate(func(st *model.State) error {
		next := st.Settings
		if err := decodeSettings(patch, &next); err != nil {
			return err
		}
		if err := validateSettings(next); err != nil {
			return err
		}
		st.Settings = next
		result = next
		return nil
	})
	if err != nil {
		return model.Settings{}, err
	}
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			log.Warn().Err(err).Msg("settings: menu cache invalidation failed")
		}
	}
	s.notifier.Notify(notify.Success, "Configuracoes guardadas")
	return result, nil
}

func decodeSettings(patch map[string]any, into *model.Settings) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:     "json",
		ErrorUnused: true,
		DecodeHook:  decimalHook,
		Result:      into,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(patch); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSetting, err)
	}
	return nil
}

var decimalType = reflect.TypeOf(decimal.Decimal{})

// decimalHook accepts the shapes a JSON decoder produces for a number.
func decimalHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	if to != decimalType {
		return data, nil
	}
	switch v := data.(type) {
	case string:
		return decimal.NewFromString(v)
	case float64:
		return decimal.NewFromFloat(v), nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case json.Number:
		return decimal.NewFromString(v.String())
	}
	return data, nil
}

func validateSettings(s model.Settings) error {
	switch {
	case strings.TrimSpace(s.RestaurantName) == "":
		return fmt.Errorf("%w: restaurantName", ErrInvalidSetting)
	case strings.TrimSpace(s.Currency) == "":
		return fmt.Errorf("%w: currency", ErrInvalidSetting)
	case s.TaxRate.IsNegative() || s.TaxRate.GreaterThan(hundred):
		return fmt.Errorf("%w: taxRate", ErrInvalidSetting)
	case strings.TrimSpace(s.InvoiceSeries) == "" || strings.ContainsAny(s.InvoiceSeries, "/ "):
		return fmt.Errorf("%w: invoiceSeries", ErrInvalidSetting)
	}
	return nil
}
