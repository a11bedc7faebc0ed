package schema

import "fmt"

// buildingRows is the shared header block for transaction popups: one
// representative record for the building plus per-contract rows below.
func buildingRows(b Record, txCount int) []Row {
	year := b.ProbeString(
		"extra.constructionYear", "buildYear",
		"extra.constructionYearReal", "construction_year_real", "construction_year",
	)
	yearValue := "-"
	if year != "" {
		yearValue = year + "년"
	}
	elevator, _ := b.Probe("extra.elevatorAvailable", "elevator_available")
	return []Row{
		{Label: "건물명", Value: SafeValue(mustProbe(b, "extra.buildingName", "building_name"))},
		{Label: "건물명(실제)", Value: SafeValue(mustProbe(b, "extra.buildingNameReal", "building_name_real"))},
		{Label: "지번주소", Value: SafeValue(mustProbe(b, "extra.jibunAddress", "jibun_address"))},
		{Label: "건축연도", Value: yearValue},
		{Label: "엘리베이터", Value: ElevatorText(elevator)},
		{Label: "총 거래 건수", Value: fmt.Sprintf("%d건", txCount)},
	}
}

func popupTitle(b Record) string {
	title := b.ProbeString(
		"address", "roadAddress", "extra.roadAddressReal",
		"road_address_real", "jibun_address",
	)
	if title == "" {
		return "주소 정보 없음"
	}
	return title
}

func popupSubtitle(b Record) string {
	return b.ProbeString(
		"extra.buildingName", "extra.buildingNameReal",
		"building_name_real", "building_name",
	)
}

// SalePopup aggregates every transaction at one address under the
// building's shared header.
func SalePopup(building Record, transactions []Record) Popup {
	table := &Table{
		Headers: []string{
			"동명", "계약연도", "계약월", "전용면적(㎡)", "대지권면적(㎡)",
			"거래금액(만원)", "평단가(만원)", "층", "층확인",
		},
		Rows: make([][]string, len(transactions)),
	}
	for i, t := range transactions {
		table.Rows[i] = []string{
			SafeValue(mustProbe(t, "extra.dongName", "dong_name")),
			SafeValue(mustProbe(t, "extra.contractYear", "contract_year")),
			SafeValue(mustProbe(t, "extra.contractMonth", "contract_month")),
			Fixed2(mustProbe(t, "extra.exclusiveAreaSqm", "area")),
			Fixed2(mustProbe(t, "extra.landRightsAreaSqm", "land_rights_area_sqm")),
			Grouped(mustProbe(t, "price", "extra.transactionAmount")),
			SafeValue(mustProbe(t, "extra.pricePerPyeong", "price_per_pyeong")),
			SafeValue(mustProbe(t, "extra.floorInfoReal", "floor_info_real")),
			SafeValue(mustProbe(t, "extra.floorConfirmation", "floor_confirmation")),
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
