// Package locations serves the administrative hierarchy the filter
// cascade selects from. The upstream tree endpoint is slow-changing,
// so results are cached hard and an embedded sample tree keeps the
// cascade usable when the backend is down or empty.
package locations

// Node is one administrative unit with its backend code and an
// optional listing count.
type Node struct {
	Code  string `json:"code"`
	Name  string `json:"name"`
	Count int    `json:"count,omitempty"`
}

type City struct {
	Node
	Towns []Node `json:"towns,omitempty"`
}

type Sido struct {
	Node
	Cities []City `json:"cities,omitempty"`
}

// TreeResponse is the full coded tree with counts.
type TreeResponse struct {
	Version     string `json:"version"`
	GeneratedAt string `json:"generated_at"`
	CodeType    string `json:"code_type"`
	Sidos       []Sido `json:"sidos"`
}

// SimpleTree is the name-only hierarchy the filter panels bind to.
type SimpleTree struct {
	Provinces []string            `json:"provinces"`
	Cities    map[string][]string `json:"cities"`
	Districts map[string][]string `json:"districts"`
}

func (t *SimpleTree) valid() bool {
	return t != nil && len(t.Provinces) > 0
}

// FindCodeByName resolves a node code from its display name.
func FindCodeByName(items []Node, name string) string {
	for _, it := range items {
		if it.Name == name {
			return it.Code
		}
	}
	return ""
}

func FindNameByCode(items []Node, code string) string {
	for _, it := range items {
		if it.Code == code {
			return it.Name
		}
	}
	return ""
}

// fallbackTree keeps the location cascade alive without a backend.
var fallbackTree = &SimpleTree{
	Provinces: []string{"서울특별시", "경기도", "인천광역시", "부산광역시", "대구광역시"},
	Cities: map[string][]string{
		"서울특별시": {"강남구", "서초구", "송파구", "강서구", "마포구", "종로구", "중구", "용산구"},
		"경기도":   {"수원시", "성남시", "안양시", "부천시", "광명시", "평택시", "과천시", "구리시"},
		"인천광역시": {"미추홀구", "연수구", "남동구", "부평구", "서구", "중구", "동구"},
		"부산광역시": {"해운대구", "부산진구", "동래구", "남구", "북구", "서구", "중구"},
		"대구광역시": {"수성구", "달서구", "중구", "동구", "서구", "남구", "북구"},
	},
	Districts: map[string][]string{
		"강남구":  {"역삼동", "삼성동", "청담동", "압구정동", "논현동", "신사동", "도곡동"},
		"서초구":  {"서초동", "잠원동", "반포동", "방배동", "양재동", "내곡동"},
		"송파구":  {"잠실동", "문정동", "가락동", "석촌동", "송파동", "방이동"},
		"수원시":  {"팔달구", "영통구", "장안구", "권선구"},
		"성남시":  {"분당구", "수정구", "중원구"},
		"해운대구": {"우동", "중동", "좌동", "송정동", "반여동", "재송동"},
	},
}
