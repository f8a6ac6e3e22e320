package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Name              string          `gorm:"column:name;size:255;not null"`
	Prenom            string          `gorm:"column:prenom;size:255"`
	Email             string          `gorm:"column:email;size:255;uniqueIndex;not null"`
	Password          string          `gorm:"column:password;not null"`
	Phone             string          `gorm:"column:phone;size:20"`
	CIN               *string         `gorm:"column:cin;size:50;uniqueIndex"`
	DateOfBirth       *datatypes.Date `gorm:"column:date_of_birth"`
	Address           string          `gorm:"column:address;size:500"`
	City              string          `gorm:"column:city;size:100"`
	Country           string          `gorm:"column:country;size:100;default:Tunisia"`
	PreferredLanguage string          `gorm:"column:preferred_language;size:5;default:fr"`

	UserType             string  `gorm:"column:user_type;size:20;not null"`
	RiskProfile          string  `gorm:"column:risk_profile;size:20;not null"`
	InitialCapital       float64 `gorm:"column:initial_capital;type:numeric(15,2);default:0"`
	CurrentCapital       float64 `gorm:"column:current_capital;type:numeric(15,2);default:0"`
	InvestmentExperience string  `gorm:"column:investment_experience;size:20"`
	InvestmentObjective  string  `gorm:"column:investment_objective;size:20"`
	InvestmentHorizon    string  `gorm:"column:investment_horizon;size:20"`

	Company  string `gorm:"column:company;size:255"`
	Position string `gorm:"column:position;size:255"`
	Industry string `gorm:"column:industry;size:255"`
	Website  string `gorm:"column:website;size:255"`

	EmailVerifiedAt *time.Time `gorm:"column:email_verified_at"`
	IsActive        bool       `gorm:"column:is_active;default:true;not null"`
	LastLogin       *time.Time `gorm:"column:last_login"`
}

func (u *User) IsVerified() bool {
	return u.EmailVerifiedAt != nil
}
