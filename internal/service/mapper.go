package service

import (
	"strconv"
	"strings"
	"time"

	"github.com/Payphone-Digital/authflow/internal/dto"
	"github.com/Payphone-Digital/authflow/internal/model"
)

const dateLayout = "2006-01-02"

func toUserResponse(u *model.User) *dto.UserResponse {
	resp := &dto.UserResponse{
		ID:                   u.ID,
		Name:                 u.Name,
		Prenom:               u.Prenom,
		Email:                u.Email,
		Phone:                u.Phone,
		Address:              u.Address,
		City:                 u.City,
		Country:              u.Country,
		PreferredLanguage:    u.PreferredLanguage,
		UserType:             u.UserType,
		RiskProfile:          u.RiskProfile,
		InitialCapital:       u.InitialCapital,
		CurrentCapital:       u.CurrentCapital,
		InvestmentExperience: u.InvestmentExperience,
		InvestmentObjective:  u.InvestmentObjective,
		InvestmentHorizon:    u.InvestmentHorizon,
		Company:              u.Company,
		Position:             u.Position,
		Industry:             u.Industry,
		Website:              u.Website,
		EmailVerifiedAt:      u.EmailVerifiedAt,
		IsActive:             u.IsActive,
		LastLogin:            u.LastLogin,
		CreatedAt:            u.CreatedAt,
		UpdatedAt:            u.UpdatedAt,
	}
	if u.CIN != nil {
		resp.CIN = *u.CIN
	}
	if u.DateOfBirth != nil {
		resp.DateOfBirth = time.Time(*u.DateOfBirth).Format(dateLayout)
	}
	return resp
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// humanDuration renders a TTL for mail bodies, e.g. "60 minutes".
func humanDuration(d time.Duration) string {
	if d >= time.Hour && d%time.Hour == 0 {
		return pluralize(int(d/time.Hour), "hour")
	}
	return pluralize(int(d/time.Minute), "minute")
}

func pluralize(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return strconv.Itoa(n) + " " + unit + "s"
}
