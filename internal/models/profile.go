package models

import (
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Profile 个人资料，与 Account 一对一
type Profile struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	AccountID uint      `gorm:"uniqueIndex;not null" json:"account_id"`
	Account   Account   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"account"`
	BlogTitle string    `gorm:"size:255" json:"blog_title"`
	Bio       string    `gorm:"type:text" json:"bio"`
	City      string    `gorm:"size:100" json:"city"`
	Country   string    `gorm:"size:2" json:"country"` // ISO 3166-1 alpha-2
	Website   string    `gorm:"size:200" json:"website"`
	Twitter   string    `gorm:"size:16" json:"twitter"`
	Github    string    `gorm:"size:100" json:"github"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Username of the owning account. Requires Account to be loaded.
func (p *Profile) Username() string {
	return p.Account.Username
}

// Location formats city and country as "City, Country", either part optional.
func (p *Profile) Location() string {
	country := CountryName(p.Country)
	switch {
	case p.City != "" && country != "":
		return p.City + ", " + country
	case p.City != "":
		return p.City
	default:
		return country
	}
}

// CountryName returns the English name of an ISO 3166-1 alpha-2 code, or
// the code itself when it is not a known region.
func CountryName(code string) string {
	if code == "" {
		return ""
	}
	region, err := language.ParseRegion(code)
	if err != nil {
		return code
	}
	if name := display.English.Regions().Name(region); name != "" {
		return name
	}
	return code
}
