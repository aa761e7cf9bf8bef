// internal/models/user.go
package models

import (
	"strings"
	"time"
)

// UserStats is the denormalized stat block kept consistent with the ledger
// and the follow graph by the services that mutate them.
type UserStats struct {
	Followers      int     `json:"followers" gorm:"default:0"`
	Following      int     `json:"following" gorm:"default:0"`
	Prompts        int     `json:"prompts" gorm:"default:0"`
	TotalEarnings  int64   `json:"totalEarnings" gorm:"default:0"`
	AvgRating      float64 `json:"avgRating" gorm:"default:0"`
	TotalViews     int64   `json:"totalViews" gorm:"default:0"`
	TotalPurchases int     `json:"totalPurchases" gorm:"default:0"`
}

type User struct {
	BaseModel
	Address    string     `json:"address" gorm:"uniqueIndex;size:64;not null"`
	Name       string     `json:"name" gorm:"size:100"`
	Bio        string     `json:"bio" gorm:"size:500"`
	Avatar     string     `json:"avatar" gorm:"size:500"`
	Reputation Reputation `json:"reputation" gorm:"type:varchar(20);default:'Bronze'"`
	JoinedDate time.Time  `json:"joined_date"`
	Location   string     `json:"location,omitempty" gorm:"size:100"`
	Website    string     `json:"website,omitempty" gorm:"size:255"`
	Twitter    string     `json:"twitter,omitempty" gorm:"size:100"`
	Github     string     `json:"github,omitempty" gorm:"size:100"`
	Categories StringList `json:"categories" gorm:"type:text"`
	Stats      UserStats  `json:"stats" gorm:"embedded;embeddedPrefix:stats_"`

	// Relationships
	Prompts []Prompt `json:"prompts,omitempty" gorm:"foreignKey:Creator;references:Address"`
}

// NormalizeAddress lowercases an address-like identifier to its canonical form.
func NormalizeAddress(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

// Follow is one edge of the social graph. A single row represents both the
// "following" and the "follower" side of the relationship, so the two-sided
// symmetry invariant holds structurally.
type Follow struct {
	BaseModel
	Follower string `json:"follower" gorm:"size:64;not null;uniqueIndex:idx_follows_edge;index"`
	Followee string `json:"followee" gorm:"size:64;not null;uniqueIndex:idx_follows_edge;index"`
}
