package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Payphone-Digital/authflow/internal/constants"
	"github.com/Payphone-Digital/authflow/internal/dto"
	apperrors "github.com/Payphone-Digital/authflow/internal/errors"
	"github.com/Payphone-Digital/authflow/internal/model"
	ctxutil "github.com/Payphone-Digital/authflow/pkg/context"
	"github.com/Payphone-Digital/authflow/pkg/logger"
	"github.com/Payphone-Digital/authflow/pkg/metrics"
	"github.com/Payphone-Digital/authflow/pkg/validation"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type UserService struct {
	users        UserStore
	verification *VerificationService
	notifier     Notifier
}

func NewUserService(users UserStore, verification *VerificationService, notifier Notifier) *UserService {
	return &UserService{users: users, verification: verification, notifier: notifier}
}

func (s *UserService) hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// checkUnique collects email and cin collisions as field errors.
func (s *UserService) checkUnique(ctx context.Context, email, cin string, excludeID uint) (validation.Errors, error) {
	fieldErrs := validation.Errors{}

	if email != "" {
		taken, err := s.users.ExistsByEmail(ctx, email, excludeID)
		if err != nil {
			return nil, apperrors.WrapError(apperrors.ErrInternal, err)
		}
		if taken {
			fieldErrs.Add("email", apperrors.ErrEmailExists.Message)
		}
	}
	if cin != "" {
		taken, err := s.users.ExistsByCIN(ctx, cin, excludeID)
		if err != nil {
			return nil, apperrors.WrapError(apperrors.ErrInternal, err)
		}
		if taken {
			fieldErrs.Add("cin", apperrors.ErrCINExists.Message)
		}
	}
	return fieldErrs, nil
}

// Register creates an unverified account and mails the verification link.
// A failed mail does not fail the registration.
func (s *UserService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserResponse, error) {
	ctx = ctxutil.WithFunction(ctx, "service", "Register")

	email := normalizeEmail(req.Email)
	cin := strings.TrimSpace(req.CIN)

	fieldErrs, err := s.checkUnique(ctx, email, cin, 0)
	if err != nil {
		return nil, err
	}
	needsCapital := req.UserType == constants.UserTypeBeginner || req.UserType == constants.UserTypeTrader
	if needsCapital && req.InitialCapital == nil {
		fieldErrs.Add("initial_capital", "The initial capital field is required when user type is "+req.UserType+".")
	}
	if len(fieldErrs) > 0 {
		logger.InfoWithContext(ctx, "Registration rejected").
			Any("fields", fieldErrs).
			Log()
		return nil, fieldErrs
	}

	dob, err := time.Parse(dateLayout, req.DateOfBirth)
	if err != nil {
		return nil, validation.Errors{"date_of_birth": {"The date of birth is not a valid date."}}
	}

	hashed, err := s.hashPassword(req.Password)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	var capital float64
	if req.InitialCapital != nil {
		capital = *req.InitialCapital
	}
	language := req.PreferredLanguage
	if language == "" {
		language = constants.DefaultLanguage
	}
	date := datatypes.Date(dob)

	user := &model.User{
		Name:                 strings.TrimSpace(req.Name),
		Email:                email,
		Password:             hashed,
		Phone:                req.Phone,
		CIN:                  &cin,
		DateOfBirth:          &date,
		Address:              req.Address,
		City:                 req.City,
		Country:              constants.DefaultCountry,
		PreferredLanguage:    language,
		UserType:             req.UserType,
		RiskProfile:          req.RiskProfile,
		InitialCapital:       capital,
		CurrentCapital:       capital,
		InvestmentExperience: req.InvestmentExperience,
		InvestmentObjective:  req.InvestmentObjective,
		InvestmentHorizon:    req.InvestmentHorizon,
		IsActive:             true,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if err := s.verification.SendVerification(ctx, user); err != nil {
		logger.WarnWithContext(ctx, "Verification mail not sent after registration").
			Uint("new_user_id", user.ID).
			Err(err).
			Log()
	}
	s.notifier.PublishEvent(ctx, constants.EventUserRegistered, map[string]any{
		"user_id":   user.ID,
		"email":     user.Email,
		"user_type": user.UserType,
	})

	metrics.Auth("register", "success")
	logger.InfoWithContext(ctx, "User registered").
		Uint("new_user_id", user.ID).
		Log()
	return toUserResponse(user), nil
}

func (s *UserService) Me(ctx context.Context, id uint) (*dto.UserResponse, error) {
	ctx = ctxutil.WithFunction(ctx, "service", "Me")

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	return toUserResponse(user), nil
}

// UpdateProfile applies the non-nil fields of req. Changing the email keeps
// the verification state.
func (s *UserService) UpdateProfile(ctx context.Context, id uint, req *dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	ctx = ctxutil.WithFunction(ctx, "service", "UpdateProfile")

	fields := map[string]interface{}{}
	var email, cin string

	if req.Email != nil {
		email = normalizeEmail(*req.Email)
		fields["email"] = email
	}
	if req.CIN != nil {
		cin = strings.TrimSpace(*req.CIN)
		if cin == "" {
			fields["cin"] = nil
		} else {
			fields["cin"] = cin
		}
	}

	fieldErrs, err := s.checkUnique(ctx, email, cin, id)
	if err != nil {
		return nil, err
	}
	if len(fieldErrs) > 0 {
		return nil, fieldErrs
	}

	set := func(column string, value *string) {
		if value != nil {
			fields[column] = strings.TrimSpace(*value)
		}
	}
	set("name", req.Name)
	set("prenom", req.Prenom)
	set("phone", req.Phone)
	set("address", req.Address)
	set("company", req.Company)
	set("position", req.Position)
	set("industry", req.Industry)
	set("website", req.Website)

	if err := s.users.UpdateFields(ctx, id, fields); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.InfoWithContext(ctx, "Profile updated").
		Uint("target_id", id).
		Int("field_count", len(fields)).
		Log()
	return s.Me(ctx, id)
}

func (s *UserService) ChangePassword(ctx context.Context, id uint, req *dto.ChangePasswordRequest) error {
	ctx = ctxutil.WithFunction(ctx, "service", "ChangePassword")

	if req.NewPassword != req.NewPasswordConfirmation {
		return apperrors.ErrPasswordMismatch
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrUserNotFound
		}
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)) != nil {
		logger.InfoWithContext(ctx, "Password change rejected: wrong current password").
			Uint("target_id", id).
			Log()
		return apperrors.ErrIncorrectPassword
	}

	hashed, err := s.hashPassword(req.NewPassword)
	if err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}
	if err := s.users.UpdatePassword(ctx, id, hashed); err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}
	return nil
}
