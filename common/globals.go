package common

const (
	OperationTypeEarn   = "EARN"
	OperationTypeSpend  = "SPEND"
	OperationTypeAdjust = "ADJUST"
	OperationTypeExpire = "EXPIRE"

	SettingBonusSystemEnabled    = "bonus_system_enabled"
	SettingBonusSystemStartDate  = "bonus_system_start_date"
	SettingDefaultBonusPercent   = "default_bonus_percent"
	SettingDiscountSystemEnabled = "discount_system_enabled"
	SettingBonusRecalcCheckpoint = "bonus_recalc_checkpoint"

	EngineBonus    = "bonus"
	EngineDiscount = "discount"

	// Balances and ledger amounts are stored in hundredths of the currency unit.
	MinorUnitsPerMajor = 100
)
