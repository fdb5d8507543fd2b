package service

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/avocadohq/avocado.go/common"
	"github.com/avocadohq/avocado.go/db/models"
	"github.com/shopspring/decimal"
)

const settingDateLayout = "2006-01-02"

// GetSetting returns the raw text value for a key, or nil if the key is
// absent. Callers do their own type coercion and defaulting.
func (svc *AvocadoService) GetSetting(ctx context.Context, key string) (*string, error) {
	var setting models.SystemSetting
	err := svc.DB.NewSelect().Model(&setting).Where("key = ?", key).Limit(1).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &setting.Value, nil
}

// SetSetting upserts a key: an existing key gets its value (and description,
// when one is given) replaced and its update timestamp refreshed.
func (svc *AvocadoService) SetSetting(ctx context.Context, key, value, description string) error {
	setting := models.SystemSetting{
		Key:         key,
		Value:       value,
		Description: description,
	}
	insert := svc.DB.NewInsert().Model(&setting).
		On("CONFLICT (key) DO UPDATE").
		Set("value = EXCLUDED.value").
		Set("updated_at = now()")
	if description != "" {
		insert = insert.Set("description = EXCLUDED.description")
	}
	_, err := insert.Exec(ctx)
	return err
}

func (svc *AvocadoService) deleteSetting(ctx context.Context, key string) error {
	_, err := svc.DB.NewDelete().Model((*models.SystemSetting)(nil)).Where("key = ?", key).Exec(ctx)
	return err
}

// BonusSettings is the configuration snapshot the bonus engine loads at the
// top of each invocation. The default earn percentage is not part of it:
// that setting belongs to the write path, which freezes the percent on the
// transaction row before the engine ever sees it.
type BonusSettings struct {
	Enabled   bool
	StartDate time.Time // zero means no lower bound
}

// DiscountSettings gates the discount engine. Absent key means enabled:
// discount reconciliation is on unless explicitly switched off.
type DiscountSettings struct {
	Enabled bool
}

func (svc *AvocadoService) LoadBonusSettings(ctx context.Context) (BonusSettings, error) {
	settings := BonusSettings{}

	enabled, err := svc.GetSetting(ctx, common.SettingBonusSystemEnabled)
	if err != nil {
		return settings, err
	}
	settings.Enabled = parseBoolSetting(enabled, false)

	startDate, err := svc.GetSetting(ctx, common.SettingBonusSystemStartDate)
	if err != nil {
		return settings, err
	}
	settings.StartDate = parseDateSetting(startDate)

	return settings, nil
}

func (svc *AvocadoService) LoadDiscountSettings(ctx context.Context) (DiscountSettings, error) {
	enabled, err := svc.GetSetting(ctx, common.SettingDiscountSystemEnabled)
	if err != nil {
		return DiscountSettings{}, err
	}
	return DiscountSettings{Enabled: parseBoolSetting(enabled, true)}, nil
}

func parseBoolSetting(raw *string, fallback bool) bool {
	if raw == nil {
		return fallback
	}
	value, err := strconv.ParseBool(strings.ToLower(strings.TrimSpace(*raw)))
	if err != nil {
		return fallback
	}
	return value
}

func parseDateSetting(raw *string) time.Time {
	if raw == nil {
		return time.Time{}
	}
	date, err := time.Parse(settingDateLayout, strings.TrimSpace(*raw))
	if err != nil {
		return time.Time{}
	}
	return date
}

func parseDecimalSetting(raw *string) decimal.Decimal {
	if raw == nil {
		return decimal.Zero
	}
	value, err := decimal.NewFromString(strings.TrimSpace(*raw))
	if err != nil {
		return decimal.Zero
	}
	return value
}
