package schema

// RentPopup is the jeonse/wolse variant of the transaction popup. It
// shares the building header with SalePopup but carries rent-specific
// per-contract columns.
func RentPopup(building Record, transactions []Record) Popup {
	table := &Table{
		Headers: []string{
			"전월세구분", "계약구분", "계약연도", "계약월", "계약기간",
			"계약기간(년)", "보증금(만원)", "월세금(만원)", "전월세전환금(만원)",
			"층", "층확인", "평당보증금(만원)", "평당월세(만원)",
		},
		Rows: make([][]string, len(transactions)),
	}
	for i, t := range transactions {
		table.Rows[i] = []string{
			SafeValue(mustProbe(t, "extra.rentType", "rent_type")),
			SafeValue(mustProbe(t, "extra.contractType", "contract_type")),
			SafeValue(mustProbe(t, "extra.contractYear", "contract_year")),
			SafeValue(mustProbe(t, "extra.contractMonth", "contract_month")),
			SafeValue(mustProbe(t, "extra.contractPeriod", "contract_period")),
			SafeValue(mustProbe(t, "extra.contractPeriodYears", "contract_period_years")),
			Money(mustProbe(t, "extra.depositAmount", "deposit_amount", "deposit")),
			Money(mustProbe(t, "extra.monthlyRent", "monthly_rent")),
			Money(mustProbe(t, "extra.jeonseConversionAmount", "jeonse_conversion_amount")),
			SafeValue(mustProbe(t, "extra.floorInfoReal", "floor_info_real")),
			SafeValue(mustProbe(t, "extra.floorConfirmation", "floor_confirmation")),
			SafeValue(mustProbe(t, "extra.depositPerPyeong", "deposit_per_pyeong")),
			SafeValue(mustProbe(t, "extra.monthlyRentPerPyeong", "monthly_rent_per_pyeong")),
		}
	}
	return Popup{
		Title:    popupTitle(building),
		Subtitle: popupSubtitle(building),
		Rows:     buildingRows(building, len(transactions)),
		Table:    table,
		Actions:  []Action{{Label: "주소 복사", Action: "copy-addr"}},
	}
}

// PopupFor routes a record set to the adapter for its dataset.
func PopupFor(dataset string, building Record, transactions []Record) Popup {
	switch dataset {
	case "sale":
		return SalePopup(building, transactions)
	case "rent":
		return RentPopup(building, transactions)
	default:
		return AuctionPopup(building)
	}
}
