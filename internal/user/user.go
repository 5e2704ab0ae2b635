package user

import (
	"crypto/rand"
	"time"

	userDatamodel "github.com/obsidianfr/intranet/internal/core/datamodel/user"
)

type User struct {
	ID         int64     `json:"id"`
	Username   string    `json:"username"`
	Role       string    `json:"role"`
	Clearance  int       `json:"clearance"`
	Department string    `json:"department"`
	Suspended  bool      `json:"suspended"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type HRNote struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	AuthorID  int64     `json:"author_id"`
	Note      string    `json:"note"`
	CreatedAt time.Time `json:"created_at"`
}

// DirectoryEntry is the public view of a user: no suspension flag, no
// timestamps, never a password hash.
type DirectoryEntry struct {
	ID         int64  `json:"id"`
	Username   string `json:"username"`
	Role       string `json:"role"`
	Department string `json:"department"`
}

func FromDataModel(row *userDatamodel.User) *User {
	return &User{
		ID:         row.ID,
		Username:   row.Username,
		Role:       row.Role,
		Clearance:  row.Clearance,
		Department: row.Department,
		Suspended:  row.Suspended,
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}
}

func NoteFromDataModel(row *userDatamodel.HRNote) *HRNote {
	return &HRNote{
		ID:        row.ID,
		UserID:    row.UserID,
		AuthorID:  row.AuthorID,
		Note:      row.Note,
		CreatedAt: row.CreatedAt,
	}
}

const tempPasswordAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
const tempPasswordLength = 8

// GenerateTemporaryPassword returns an 8-character A-Z0-9 password for a
// freshly provisioned or reset account. The clear value only ever travels on
// the lifecycle event.
func GenerateTemporaryPassword() (string, error) {
	buf := make([]byte, tempPasswordLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = tempPasswordAlphabet[int(b)%len(tempPasswordAlphabet)]
	}
	return string(buf), nil
}
