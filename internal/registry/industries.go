package registry

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownCategory = errors.New("unknown category")

// Category groups industries for filtering.
type Category string

const (
	CategoryFood      Category = "food"
	CategoryRetail    Category = "retail"
	CategoryService   Category = "service"
	CategoryMedical   Category = "medical"
	CategoryFashion   Category = "fashion"
	CategoryLiving    Category = "living"
	CategoryEducation Category = "education"
	CategoryOther     Category = "other"
)

// Categories is the closed set of categories in display order.
var Categories = []Category{
	CategoryFood, CategoryRetail, CategoryService, CategoryMedical,
	CategoryFashion, CategoryLiving, CategoryEducation, CategoryOther,
}

var categoryLabels = map[Category]string{
	CategoryFood:      "외식업",
	CategoryRetail:    "소매업",
	CategoryService:   "서비스업",
	CategoryMedical:   "의료",
	CategoryFashion:   "패션",
	CategoryLiving:    "생활",
	CategoryEducation: "교육",
	CategoryOther:     "기타",
}

// Label returns the Korean display label of the category.
func (c Category) Label() string {
	return categoryLabels[c]
}

// ParseCategory accepts either the category code or its Korean label.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	for _, c := range Categories {
		if strings.EqualFold(s, string(c)) || s == c.Label() {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

// IndustryRecord is a canonical industry name with its category.
type IndustryRecord struct {
	CanonicalName string   `json:"name"`
	Category      Category `json:"category"`
}

var industrySeeds = []IndustryRecord{
	{"한식음식점", CategoryFood},
	{"중식음식점", CategoryFood},
	{"일식음식점", CategoryFood},
	{"양식음식점", CategoryFood},
	{"제과점", CategoryFood},
	{"패스트푸드점", CategoryFood},
	{"치킨전문점", CategoryFood},
	{"분식전문점", CategoryFood},
	{"호프-간이주점", CategoryFood},
	{"커피-음료", CategoryFood},
	{"반찬가게", CategoryFood},

	{"편의점", CategoryRetail},
	{"슈퍼마켓", CategoryRetail},
	{"화장품", CategoryRetail},
	{"청과상", CategoryRetail},
	{"수산물판매", CategoryRetail},
	{"육류판매", CategoryRetail},
	{"화초", CategoryRetail},
	{"운동/경기용품", CategoryRetail},
	{"서적", CategoryRetail},
	{"문구", CategoryRetail},

	{"미용실", CategoryService},
	{"네일숍", CategoryService},
	{"피부관리실", CategoryService},
	{"세탁소", CategoryService},
	{"부동산중개업", CategoryService},
	{"PC방", CategoryService},
	{"노래방", CategoryService},
	{"여관", CategoryService},
	{"고시원", CategoryService},
	{"골프연습장", CategoryService},
	{"자동차수리", CategoryService},
	{"당구장", CategoryService},
	{"스포츠클럽", CategoryService},

	{"의약품", CategoryMedical},
	{"일반의원", CategoryMedical},
	{"치과의원", CategoryMedical},
	{"한의원", CategoryMedical},

	{"일반의류", CategoryFashion},
	{"가방", CategoryFashion},
	{"신발", CategoryFashion},
	{"안경", CategoryFashion},

	{"가구", CategoryLiving},
	{"인테리어", CategoryLiving},

	{"일반교습학원", CategoryEducation},
	{"외국어학원", CategoryEducation},
	{"예술학원", CategoryEducation},
	{"독서실", CategoryEducation},
	{"스포츠강습", CategoryEducation},
}

// Alias maps a label variant to a canonical name.
type Alias struct {
	Key    string `json:"key"`
	Target string `json:"target"`
}

// Industry aliases in declaration order; the first matching key wins.
var industryAliases = []Alias{
	{"카페/디저트", "커피-음료"},
	{"한식", "한식음식점"},
	{"중식", "중식음식점"},
	{"일식", "일식음식점"},
	{"서양식", "양식음식점"},
	{"양식", "양식음식점"},
	{"제과제빵", "제과점"},
	{"베이커리", "제과점"},
	{"피자", "패스트푸드점"},
	{"햄버거", "패스트푸드점"},
	{"치킨", "치킨전문점"},
	{"분식", "분식전문점"},
	{"주점", "호프-간이주점"},
	{"호프", "호프-간이주점"},
	{"커피", "커피-음료"},
	{"카페", "커피-음료"},
	{"반찬", "반찬가게"},
	{"종합소매점", "슈퍼마켓"},
	{"청과", "청과상"},
	{"수산물", "수산물판매"},
	{"육류", "육류판매"},
	{"운동", "운동/경기용품"},
	{"이미용", "미용실"},
	{"헤어", "미용실"},
	{"네일", "네일숍"},
	{"피부", "피부관리실"},
	{"세탁", "세탁소"},
	{"부동산", "부동산중개업"},
	{"숙박", "여관"},
	{"골프", "골프연습장"},
	{"의류", "일반의류"},
	{"교습", "일반교습학원"},
	{"외국어", "외국어학원"},
	{"예체능", "예술학원"},
}
