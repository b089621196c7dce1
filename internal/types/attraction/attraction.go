package attraction

import "tripTagAPI/utils"

type Attraction struct {
	UID  string  `json:"uid"`
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}

func FromDoc(id string, data map[string]any) *Attraction {
	return &Attraction{
		UID:  id,
		Name: utils.ToString(data["name"]),
		Lat:  utils.ToFloat64(data["lat"]),
		Lng:  utils.ToFloat64(data["lng"]),
	}
}
