package registry

import "fmt"

// GeoEntity is an administrative dong tracked by the service.
type GeoEntity struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	District string  `json:"district"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
}

type dongSeed struct {
	name     string
	district string
	lat, lng float64
}

// Declaration order is the canonical entity order for every output.
var dongSeeds = []dongSeed{
	{"청운효자동", "종로구", 37.584, 126.970},
	{"사직동", "종로구", 37.576, 126.968},
	{"삼청동", "종로구", 37.587, 126.981},
	{"부암동", "종로구", 37.595, 126.965},
	{"평창동", "종로구", 37.612, 126.975},
	{"종로1.2.3.4가동", "종로구", 37.570, 126.990},
	{"혜화동", "종로구", 37.588, 127.003},
	{"소공동", "중구", 37.564, 126.979},
	{"회현동", "중구", 37.557, 126.979},
	{"명동", "중구", 37.563, 126.985},
	{"을지로동", "중구", 37.566, 126.992},
	{"광희동", "중구", 37.564, 127.007},
	{"신당동", "중구", 37.565, 127.016},
	{"용산2가동", "용산구", 37.545, 126.986},
	{"이태원1동", "용산구", 37.534, 126.994},
	{"이태원2동", "용산구", 37.540, 126.993},
	{"한남동", "용산구", 37.535, 127.009},
	{"성수1가1동", "성동구", 37.545, 127.044},
	{"성수2가1동", "성동구", 37.542, 127.057},
	{"행당1동", "성동구", 37.558, 127.037},
	{"화양동", "광진구", 37.544, 127.070},
	{"서교동", "마포구", 37.554, 126.921},
	{"연남동", "마포구", 37.562, 126.924},
	{"망원1동", "마포구", 37.556, 126.903},
	{"합정동", "마포구", 37.549, 126.913},
	{"상암동", "마포구", 37.578, 126.892},
	{"신촌동", "서대문구", 37.559, 126.943},
	{"신사동", "강남구", 37.524, 127.023},
	{"논현1동", "강남구", 37.511, 127.028},
	{"압구정동", "강남구", 37.530, 127.032},
	{"청담동", "강남구", 37.525, 127.049},
	{"삼성1동", "강남구", 37.514, 127.060},
	{"역삼1동", "강남구", 37.500, 127.036},
	{"대치2동", "강남구", 37.501, 127.066},
	{"서초3동", "서초구", 37.486, 127.009},
	{"반포4동", "서초구", 37.498, 127.003},
	{"양재1동", "서초구", 37.476, 127.035},
	{"잠실3동", "송파구", 37.514, 127.093},
	{"잠실본동", "송파구", 37.507, 127.084},
	{"가락1동", "송파구", 37.496, 127.108},
	{"여의동", "영등포구", 37.521, 126.924},
	{"문래동", "영등포구", 37.516, 126.895},
	{"구로3동", "구로구", 37.485, 126.897},
	{"마곡동", "강서구", 37.560, 126.828},
	{"노량진1동", "동작구", 37.513, 126.944},
	{"목1동", "양천구", 37.528, 126.874},
	{"천호2동", "강동구", 37.543, 127.126},
}

func buildEntities() []GeoEntity {
	entities := make([]GeoEntity, len(dongSeeds))
	for i, s := range dongSeeds {
		entities[i] = GeoEntity{
			ID:       fmt.Sprintf("dong-%03d", i+1),
			Name:     s.name,
			District: s.district,
			Lat:      s.lat,
			Lng:      s.lng,
		}
	}
	return entities
}
