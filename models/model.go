package models

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/zenithex/zenex/config"
)

func Lock() (tx *gorm.DB) {
	return config.DataBase.Clauses(clause.Locking{Strength: "UPDATE"})
}

type Reference struct {
	ID   int64
	Type string
}
