package services

import (
	"context"
	cryptorand "crypto/rand"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/viper"
	"golang.org/x/crypto/argon2"

	"github.com/swiftremit/backend/internal/currency"
	"github.com/swiftremit/backend/internal/models"
	"github.com/swiftremit/backend/internal/wizard"
)

// Signup wizard: account -> profile -> security.
const (
	StepSignupAccount  wizard.Step = "account"
	StepSignupProfile  wizard.Step = "profile"
	StepSignupSecurity wizard.Step = "security"
)

// SignupAccountStep is the credential pair.
type SignupAccountStep struct {
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8,max=72"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

// SignupProfileStep is who is opening the account.
type SignupProfileStep struct {
	FirstName   string `json:"firstName" validate:"required,min=2,max=50"`
	LastName    string `json:"lastName" validate:"required,min=2,max=50"`
	PhoneNumber string `json:"phoneNumber" validate:"required,e164"`
	Country     string `json:"country" validate:"required,len=2"`
}

// SignupSecurityStep sets the transaction PIN and records consent.
type SignupSecurityStep struct {
	PIN           string `json:"pin" validate:"required,len=4,numeric"`
	TermsAccepted bool   `json:"termsAccepted" validate:"eq=true"`
}

// SignupResult is returned once the account is created.
type SignupResult struct {
	Token string      `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	User  models.User `json:"user"`
}

// SignupFlow drives account creation; submit persists the user and hands
// back a session token.
type SignupFlow struct {
	flow      *wizard.Flow
	validator *ValidationHelper
	db        *sql.DB
}

func NewSignupFlow(vh *ValidationHelper, db *sql.DB) *SignupFlow {
	sf := &SignupFlow{
		validator: vh,
		db:        db,
	}
	sf.flow = &wizard.Flow{
		Name:     "signup",
		Steps:    []wizard.Step{StepSignupAccount, StepSignupProfile, StepSignupSecurity},
		Validate: sf.validateStep,
	}
	return sf
}

func (sf *SignupFlow) Flow() *wizard.Flow {
	return sf.flow
}

func (sf *SignupFlow) validateStep(step wizard.Step, data json.RawMessage) map[string]string {
	switch step {
	case StepSignupAccount:
		var s SignupAccountStep
		return sf.validator.ValidateStepPayload(data, &s)
	case StepSignupProfile:
		var s SignupProfileStep
		if errs := sf.validator.ValidateStepPayload(data, &s); len(errs) > 0 {
			return errs
		}
		if _, ok := currency.ForCountry(s.Country); !ok {
			return map[string]string{"country": "is not a supported country"}
		}
		return nil
	case StepSignupSecurity:
		var s SignupSecurityStep
		return sf.validator.ValidateStepPayload(data, &s)
	}
	return map[string]string{"_step": "unknown step"}
}

func (sf *SignupFlow) OnStepData(ctx context.Context, st *wizard.State) error {
	return nil
}

// Submit creates the user inside one database transaction so the wallet
// account row never exists without its owner.
func (sf *SignupFlow) Submit(ctx context.Context, st *wizard.State) (any, error) {
	var account SignupAccountStep
	if err := st.DecodeStep(StepSignupAccount, &account); err != nil {
		return nil, fmt.Errorf("decode account step: %w", err)
	}
	var profile SignupProfileStep
	if err := st.DecodeStep(StepSignupProfile, &profile); err != nil {
		return nil, fmt.Errorf("decode profile step: %w", err)
	}
	var security SignupSecurityStep
	if err := st.DecodeStep(StepSignupSecurity, &security); err != nil {
		return nil, fmt.Errorf("decode security step: %w", err)
	}

	hashedPassword, err := hashPassword(account.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	hashedPIN, err := hashPassword(security.PIN)
	if err != nil {
		return nil, fmt.Errorf("hash pin: %w", err)
	}

	accountID := generateAccountID()

	tx, err := sf.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin signup transaction: %w", err)
	}
	defer tx.Rollback()

	var userID int
	err = tx.QueryRowContext(ctx, `
        INSERT INTO users (email, password, pin, first_name, last_name, account_id, phone_number, country, kyc_status)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING id
    `, strings.ToLower(account.Email), hashedPassword, hashedPIN, profile.FirstName,
		profile.LastName, accountID, profile.PhoneNumber, profile.Country,
		models.KYCNotStarted).Scan(&userID)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	accountName := fmt.Sprintf("%s %s", profile.FirstName, profile.LastName)
	_, err = tx.ExecContext(ctx, `
        INSERT INTO accounts (account_name, account_id, balance, version, updated_at)
        VALUES ($1, $2, $3, $4, NOW())
    `, accountName, accountID, 0, 1)
	if err != nil {
		return nil, fmt.Errorf("create wallet account: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit signup: %w", err)
	}

	token, err := generateJWT(userID)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	log.Printf("[SIGNUP] User created - ID: %d, Email: %s", userID, account.Email)

	return SignupResult{
		Token: token,
		User: models.User{
			ID:          userID,
			Email:       strings.ToLower(account.Email),
			FirstName:   profile.FirstName,
			LastName:    profile.LastName,
			AccountID:   accountID,
			PhoneNumber: profile.PhoneNumber,
			Country:     profile.Country,
			KYCStatus:   models.KYCNotStarted,
			CreatedAt:   time.Now(),
		},
	}, nil
}

func generateJWT(userID int) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(time.Duration(viper.GetInt("jwt.expiry_hours")) * time.Hour).Unix(),
	})

	return token.SignedString([]byte(viper.GetString("jwt.secret_key")))
}

func hashPassword(password string) (string, error) {
	salt := make([]byte, viper.GetInt("argon2.salt_length"))
	if _, err := cryptorand.Read(salt); err != nil {
		return "", err
	}

	hash := argon2.IDKey([]byte(password), salt,
		uint32(viper.GetInt("argon2.time")),
		uint32(viper.GetInt("argon2.memory")),
		uint8(viper.GetInt("argon2.threads")),
		uint32(viper.GetInt("argon2.key_length")))
	return fmt.Sprintf("%s$%s", base64.StdEncoding.EncodeToString(salt), base64.StdEncoding.EncodeToString(hash)), nil
}

func verifyPassword(password, hashedPassword string) bool {
	parts := strings.Split(hashedPassword, "$")
	if len(parts) != 2 {
		return false
	}

	salt, err := base64.StdEncoding.DecodeString(parts[0])
	if err != nil {
		return false
	}

	hash, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return false
	}

	computedHash := argon2.IDKey([]byte(password), salt,
		uint32(viper.GetInt("argon2.time")),
		uint32(viper.GetInt("argon2.memory")),
		uint8(viper.GetInt("argon2.threads")),
		uint32(viper.GetInt("argon2.key_length")))
	return string(hash) == string(computedHash)
}

func generateAccountID() string {
	const digits = "0123456789"
	b := make([]byte, 10)
	for i := range b {
		b[i] = digits[rand.Intn(len(digits))]
	}
	return string(b)
}
