package model

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/thep200/star-neighbours/cfg"
	"github.com/thep200/star-neighbours/pkg/db"
	"github.com/thep200/star-neighbours/pkg/log"
	"gorm.io/gorm"
)

var (
	ErrApiKeyInvalid = errors.New("invalid api key")
	ErrApiKeyExpired = errors.New("api key has expired")
)

// User là một người dùng của API cùng api key được cấp phát
type User struct {
	Model
	Username         string    `json:"username" gorm:"column:username;type:varchar(255);uniqueIndex;not null"`
	Email            string    `json:"email" gorm:"column:email;type:varchar(255);not null"`
	ApiKey           string    `json:"-" gorm:"column:api_key;type:varchar(64);uniqueIndex;not null"`
	ApiKeyValidUntil time.Time `json:"api_key_valid_until" gorm:"column:api_key_valid_until;not null"`
}

func NewUser(config *cfg.Config, logger log.Logger, db *db.Mysql) (*User, error) {
	user := &User{
		Model: Model{
			Config: config,
			Logger: logger,
			Mysql:  db,
		},
	}
	return user, nil
}

func (u *User) TableName() string {
	return "users"
}

// Create cấp phát api key mới cho một người dùng và trả về key.
// validUntil zero thì dùng TTL mặc định từ cấu hình.
func (u *User) Create(username, email string, validUntil time.Time) (string, error) {
	ctx := context.Background()
	username = TruncateString(username, 250)
	email = TruncateString(email, 250)

	if validUntil.IsZero() {
		ttlDays := u.Config.Api.ApiKeyTtlDays
		if ttlDays <= 0 {
			ttlDays = 90
		}
		validUntil = time.Now().AddDate(0, 0, ttlDays)
	}

	newUser := &User{}
	newUser.Username = username
	newUser.Email = email
	newUser.ApiKey = uuid.NewString() + uuid.NewString()[:8]
	newUser.ApiKeyValidUntil = validUntil
	newUser.CreatedAt = time.Now()
	newUser.UpdatedAt = time.Now()

	db, err := u.Mysql.Db()
	if err != nil {
		u.Logger.Error(ctx, "Failed to get database connection: %v", err)
		return "", err
	}

	if err := db.Create(newUser).Error; err != nil {
		u.Logger.Error(ctx, "Failed to create user: %v", err)
		return "", err
	}

	u.Logger.Info(ctx, "Successfully created user %s with ID=%d", username, newUser.ID)
	return newUser.ApiKey, nil
}

// VerifyKey tra cứu api key và kiểm tra hạn sử dụng
func (u *User) VerifyKey(key string) (*User, error) {
	if key == "" {
		return nil, ErrApiKeyInvalid
	}

	db, err := u.Mysql.Db()
	if err != nil {
		return nil, fmt.Errorf("failed to get database connection: %w", err)
	}

	var found User
	if err := db.Where("api_key = ?", key).First(&found).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApiKeyInvalid
		}
		return nil, err
	}

	if found.ApiKeyValidUntil.Before(time.Now()) {
		return nil, ErrApiKeyExpired
	}

	return &found, nil
}
