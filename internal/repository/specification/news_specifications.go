package specification

import "gorm.io/gorm"

type ByTicker struct {
	Ticker string
}

func (s ByTicker) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("ticker = ?", s.Ticker)
}

type ByURL struct {
	URL string
}

func (s ByURL) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("url = ?", s.URL)
}

// PublishedBetween filters on the normalized YYYY-MM-DD date, inclusive.
// Empty bounds are open.
type PublishedBetween struct {
	From string
	To   string
}

func (s PublishedBetween) Apply(db *gorm.DB) *gorm.DB {
	if s.From != "" {
		db = db.Where("date >= ?", s.From)
	}
	if s.To != "" {
		db = db.Where("date <= ?", s.To)
	}
	return db
}
