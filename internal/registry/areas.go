package registry

// Commercial-area labels used by the rent tables, mapped to the dong they
// sit in. Declaration order matters: the resolver's substring fallback takes
// the first key that matches.
var areaAliases = []Alias{
	{"강남대로", "역삼1동"},
	{"강남역", "역삼1동"},
	{"가로수길", "신사동"},
	{"압구정로데오", "압구정동"},
	{"청담동 명품거리", "청담동"},
	{"코엑스", "삼성1동"},
	{"대치동 학원가", "대치2동"},
	{"논현역", "논현1동"},
	{"서래마을", "반포4동"},
	{"교대역", "서초3동"},
	{"양재역", "양재1동"},
	{"잠실새내", "잠실본동"},
	{"석촌호수", "잠실3동"},
	{"가락시장", "가락1동"},
	{"홍대입구", "서교동"},
	{"홍대", "서교동"},
	{"연트럴파크", "연남동"},
	{"망리단길", "망원1동"},
	{"합정역", "합정동"},
	{"상암DMC", "상암동"},
	{"신촌역", "신촌동"},
	{"경리단길", "이태원2동"},
	{"이태원역", "이태원1동"},
	{"해방촌", "용산2가동"},
	{"한남오거리", "한남동"},
	{"성수카페거리", "성수2가1동"},
	{"서울숲", "성수1가1동"},
	{"왕십리", "행당1동"},
	{"건대입구", "화양동"},
	{"대학로", "혜화동"},
	{"종로3가", "종로1.2.3.4가동"},
	{"인사동", "종로1.2.3.4가동"},
	{"서촌", "청운효자동"},
	{"광화문", "사직동"},
	{"북촌", "삼청동"},
	{"명동거리", "명동"},
	{"남대문시장", "회현동"},
	{"을지로3가", "을지로동"},
	{"동대문", "광희동"},
	{"신당동떡볶이타운", "신당동"},
	{"여의도", "여의동"},
	{"문래창작촌", "문래동"},
	{"구로디지털단지", "구로3동"},
	{"마곡나루", "마곡동"},
	{"노량진수산시장", "노량진1동"},
	{"목동", "목1동"},
	{"천호역", "천호2동"},
}
