package domain

// Geographic reference data is immutable at runtime; it is loaded by the
// seeder and only ever read by the API.

type Country struct {
	ID      int64  `json:"id" gorm:"primaryKey"`
	Name    string `json:"name"`
	ISOCode string `json:"iso_code" gorm:"column:iso_code;uniqueIndex"`
}

type State struct {
	ID        int64  `json:"id" gorm:"primaryKey"`
	CountryID int64  `json:"country_id" gorm:"index"`
	Name      string `json:"name"`
}

type City struct {
	ID      int64  `json:"id" gorm:"primaryKey"`
	StateID int64  `json:"state_id" gorm:"index"`
	Name    string `json:"name"`
}
