package internal

import "github.com/programme-lv/judge/api"

// RootUserID belongs to the user seeded at start-up.
const RootUserID uint32 = 0

type User struct {
	ID   uint32
	Name string
}

func (u User) Doc() api.UserDoc {
	return api.UserDoc{ID: u.ID, Name: u.Name}
}
