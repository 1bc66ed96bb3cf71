// Copyright (c) 2026 Herdcount. All rights reserved.

// Package schema holds table and column identifiers for the SQL repositories.
package schema

// UserAccountTable represents the 'users.account' table
type UserAccountTable struct {
	Table     string
	ID        string
	Username  string
	Password  string
	CreatedAt string
}

// UserAccount is the schema definition for users.account
var UserAccount = UserAccountTable{
	Table:     "users.account",
	ID:        "id",
	Username:  "username",
	Password:  "passwordhash",
	CreatedAt: "createdat",
}
