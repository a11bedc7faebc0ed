package schema

import "strings"

// auctionAttrs is the display contract for completed-auction popups.
// Older crawler rows only carry snake_case keys, newer ones tuck the
// same data into the extra bag, so both spellings are probed.
var auctionAttrs = []Attr{
	{"감정가", money("appraised_value", "extra.appraisedValue")},
	{"최저가", money("minimum_bid_price", "extra.minimumBidPrice")},
	{"매각가", money("final_sale_price", "extra.finalSalePrice")},
	{"매각가/감정가", saleToAppraisedRatio},
	{"응찰인원", text("-", "bidder_count", "extra.bidderCount")},
	{"현재상태", text("", "current_status", "extra.currentStatus")},
	{"매각기일", text("-", "sale_date", "extra.saleDate")},
	{"건물평형", floorUnit("평", "building_area_pyeong", "extra.buildingAreaPyeong")},
	{"토지평형", floorUnit("평", "land_area_pyeong", "extra.landAreaPyeong")},
	{"층확인", text("", "floor_confirmation", "extra.floorConfirmation", "floor_info")},
	{"Elevator", func(r Record) string {
		v, _ := r.Probe("elevator_available", "extra.elevatorAvailable")
		return YesNo(v)
	}},
	{"건축연도", floorUnit("년", "construction_year", "extra.constructionYear")},
	{"특수조건", text("", "special_rights", "extra.specialRights")},
}

// saleToAppraisedRatio prefers the precomputed ratio and otherwise
// derives it from the sale price and appraised value, rounded to one
// decimal. Zero on either side means no meaningful ratio.
func saleToAppraisedRatio(r Record) string {
	if v, ok := r.Probe("sale_to_appraised_ratio", "extra.saleToAppraisedRatio"); ok {
		return Percent(v)
	}
	sale, okS := Num(mustProbe(r, "final_sale_price", "extra.finalSalePrice"))
	app, okA := Num(mustProbe(r, "appraised_value", "extra.appraisedValue"))
	if !okS || !okA || sale == 0 || app == 0 {
		return "-"
	}
	ratio := sale / app * 100
	return Percent(float64(int64(ratio*10+0.5)) / 10)
}

func mustProbe(r Record, paths ...string) any {
	v, _ := r.Probe(paths...)
	return v
}

// AuctionPopup renders one completed-auction record.
func AuctionPopup(r Record) Popup {
	usage := r.ProbeString("usage", "extra.usage")
	caseNumber := r.ProbeString("case_number", "extra.caseNumber")
	return Popup{
		Title:    strings.TrimSpace(usage + " " + caseNumber),
		Subtitle: r.ProbeString("general_location", "extra.generalLocation", "address", "road_address"),
		Rows:     renderRows(r, auctionAttrs),
		Actions: []Action{
			{Label: "주소 복사", Action: "copy-addr"},
			{Label: "사건번호 복사", Action: "copy-case"},
		},
	}
}
