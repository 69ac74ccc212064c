/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/tomoncle/lister/criteria"
	"github.com/tomoncle/lister/database"
	"github.com/tomoncle/lister/paginate"
	"github.com/tomoncle/lister/types"
)

type Address struct {
	bun.BaseModel `bun:"table:addresses,alias:ad"`

	ID      int64  `bun:"id,pk,autoincrement" json:"id"`
	City    string `bun:"city,notnull" json:"city"`
	Country string `bun:"country,notnull" json:"country"`
}

type Profile struct {
	bun.BaseModel `bun:"table:profiles,alias:p"`

	ID        int64    `bun:"id,pk,autoincrement" json:"id"`
	Bio       string   `bun:"bio" json:"bio"`
	AddressID int64    `bun:"address_id" json:"addressId"`
	Address   *Address `bun:"rel:belongs-to,join:address_id=id" json:"address,omitempty"`
}

type Post struct {
	bun.BaseModel `bun:"table:posts,alias:po"`

	ID     int64  `bun:"id,pk,autoincrement" json:"id"`
	UserID int64  `bun:"user_id,notnull" json:"userId"`
	Title  string `bun:"title,notnull" json:"title"`
}

type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID        int64     `bun:"id,pk,autoincrement" json:"id"`
	Name      string    `bun:"name,notnull" json:"name"`
	Email     string    `bun:"email,notnull,unique" json:"email"`
	Status    string    `bun:"status,notnull,default:'ACTIVE'" json:"status"`
	Role      string    `bun:"role,notnull,default:'member'" json:"role"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
	ProfileID int64     `bun:"profile_id" json:"profileId"`
	Profile   *Profile  `bun:"rel:belongs-to,join:profile_id=id" json:"profile,omitempty"`
	Posts     []*Post   `bun:"rel:has-many,join:id=user_id" json:"posts,omitempty"`
}

func init() {
	database.RegisteredModel(
		database.NewModelAdapter((*Address)(nil), 0),
		database.NewModelAdapter((*Profile)(nil), 1),
		database.NewModelAdapter((*User)(nil), 2),
		database.NewModelAdapter((*Post)(nil), 3),
	)
}

// userListOptions hides banned accounts and loads profiles with every page.
var userListOptions = paginate.Options{
	SearchableFields: []string{"name", "email", "profile.address.city"},
	ForcedFilters:    criteria.NewFilters(criteria.Compare("status", criteria.OpNot, "BANNED")),
	Includes:         types.Include{"profile": {"address": nil}, "posts": nil},
}

func seedDemo(ctx context.Context, db *bun.DB) error {
	n, err := db.NewSelect().Model((*User)(nil)).Count(ctx)
	if err != nil || n > 0 {
		return err
	}
	return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		cities := [][2]string{{"Paris", "France"}, {"Austin", "USA"}, {"Lagos", "Nigeria"}}
		for i, c := range cities {
			addr := &Address{City: c[0], Country: c[1]}
			if _, err := tx.NewInsert().Model(addr).Exec(ctx); err != nil {
				return err
			}
			profile := &Profile{Bio: "demo profile " + c[0], AddressID: addr.ID}
			if _, err := tx.NewInsert().Model(profile).Exec(ctx); err != nil {
				return err
			}
			for j := 0; j < 4; j++ {
				status := "ACTIVE"
				if j == 3 {
					status = "BANNED"
				}
				user := &User{
					Name:      fmt.Sprintf("user %d-%d", i+1, j+1),
					Email:     fmt.Sprintf("user%d%d@example.com", i+1, j+1),
					Status:    status,
					Role:      "member",
					ProfileID: profile.ID,
				}
				if _, err := tx.NewInsert().Model(user).Exec(ctx); err != nil {
					return err
				}
				post := &Post{UserID: user.ID, Title: "hello from " + user.Name}
				if _, err := tx.NewInsert().Model(post).Exec(ctx); err != nil {
					return err
				}
			}
		}
		return nil
	})
}
