// Package model chứa các model gorm và message của engine
package model

import (
	"time"

	"github.com/thep200/star-neighbours/cfg"
	"github.com/thep200/star-neighbours/pkg/db"
	"github.com/thep200/star-neighbours/pkg/log"
)

type Model struct {
	Config    *cfg.Config    `gorm:"-"`
	Logger    log.Logger     `gorm:"-"`
	Mysql     *db.Mysql      `gorm:"-"`
	ID        uint           `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}
