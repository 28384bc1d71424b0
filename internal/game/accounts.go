package game

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"CinderMUD/internal/store"
)

// AccountExists reports whether an account row exists for the name.
func (w *World) AccountExists(name string) (bool, error) {
	rows, err := w.store.Select("accounts", store.Row{"name": strings.ToLower(name)})
	if err != nil {
		return false, fmt.Errorf("account lookup: %w", err)
	}
	return len(rows) > 0, nil
}

// VerifyAccount checks a password against the stored bcrypt hash. A
// missing account verifies false without error so that login cannot be
// used to probe for names.
func (w *World) VerifyAccount(name, password string) (bool, error) {
	rows, err := w.store.Select("accounts", store.Row{"name": strings.ToLower(name)})
	if err != nil {
		return false, fmt.Errorf("account lookup: %w", err)
	}
	if len(rows) == 0 {
		return false, nil
	}
	hash := rowString(rows[0], "password")
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return false, nil
	}
	_, _ = w.store.Update("accounts", rowID(rows[0]), store.Row{
		"last_login": time.Now().UTC().Format(time.RFC3339),
	})
	return true, nil
}

// CreateAccount persists a new account and its starting character in one
// step. The character's permissions are stored on the account row.
func (w *World) CreateAccount(name, password, email string, char *Character) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	key := strings.ToLower(name)
	if _, err := w.store.Insert("accounts", store.Row{
		"name":        key,
		"password":    string(hash),
		"email":       email,
		"permissions": int64(char.Permissions),
		"created_at":  time.Now().UTC().Format(time.RFC3339),
	}); err != nil {
		return fmt.Errorf("insert account: %w", err)
	}
	char.Account = key
	return w.SaveCharacter(char)
}

// UpdatePassword replaces the stored bcrypt hash.
func (w *World) UpdatePassword(name, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	rows, err := w.store.Select("accounts", store.Row{"name": strings.ToLower(name)})
	if err != nil {
		return fmt.Errorf("account lookup: %w", err)
	}
	if len(rows) == 0 {
		return fmt.Errorf("no account named %s", name)
	}
	if _, err := w.store.Update("accounts", rowID(rows[0]), store.Row{"password": string(hash)}); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// LoadCharacter reads a character row and rebuilds the in-memory
// character. Combat numbers derive from prototype defaults; only the
// persisted fields override them.
func (w *World) LoadCharacter(name string) (*Character, error) {
	rows, err := w.store.Select("characters", store.Row{"name": name})
	if err != nil {
		return nil, fmt.Errorf("character lookup: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no character named %s", name)
	}
	row := rows[0]
	char := NewCharacter(name)
	char.StorageID = rowID(row)
	char.Account = rowString(row, "account")
	char.Gender = rowString(row, "gender")
	char.HP = rowInt(row, "hp")
	char.MaxHP = rowInt(row, "max_hp")
	char.MP = rowInt(row, "mp")
	char.MaxMP = rowInt(row, "max_mp")
	char.Attrs = Attributes{
		Strength:  rowInt(row, "strength"),
		Intellect: rowInt(row, "intellect"),
		Dexterity: rowInt(row, "dexterity"),
		Speed:     rowInt(row, "speed"),
	}
	char.Channels = DecodeChannelSettings(rowString(row, "channels"))
	if accounts, err := w.store.Select("accounts", store.Row{"name": char.Account}); err == nil && len(accounts) > 0 {
		char.Permissions = Perm(rowInt(accounts[0], "permissions"))
	}
	if char.Permissions == 0 {
		char.Permissions = PermPlayer
	}
	char.savedArea = rowString(row, "area")
	char.savedRoom = rowInt(row, "room")
	return char, nil
}

// SaveCharacter writes the character's persistent state, inserting the
// row on first save.
func (w *World) SaveCharacter(char *Character) error {
	fields := store.Row{
		"name":      char.Name,
		"account":   char.Account,
		"gender":    char.Gender,
		"hp":        int64(char.HP),
		"max_hp":    int64(char.MaxHP),
		"mp":        int64(char.MP),
		"max_mp":    int64(char.MaxMP),
		"strength":  int64(char.Attrs.Strength),
		"intellect": int64(char.Attrs.Intellect),
		"dexterity": int64(char.Attrs.Dexterity),
		"speed":     int64(char.Attrs.Speed),
		"channels":  EncodeChannelSettings(char.Channels),
	}
	if room := char.Room(); room != nil {
		fields["area"] = room.Area.Name
		fields["room"] = int64(room.ID)
	}
	if char.StorageID == 0 {
		id, err := w.store.Insert("characters", fields)
		if err != nil {
			return fmt.Errorf("insert character: %w", err)
		}
		char.StorageID = id
		return nil
	}
	if _, err := w.store.Update("characters", char.StorageID, fields); err != nil {
		return fmt.Errorf("update character: %w", err)
	}
	return nil
}

// CreateGod provisions the administrative account used for first setup.
func (w *World) CreateGod(name, password string) error {
	normalized, err := normalizeName(name)
	if err != nil {
		return err
	}
	exists, err := w.AccountExists(normalized)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("account %s already exists", normalized)
	}
	char := NewCharacter(normalized)
	char.Permissions = PermPlayer | PermBuilder | PermAdmin | PermGod
	return w.CreateAccount(normalized, password, "", char)
}

func rowID(row store.Row) int64 {
	switch v := row["id"].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	default:
		return 0
	}
}

func rowString(row store.Row, key string) string {
	switch v := row[key].(type) {
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return ""
	}
}

func rowInt(row store.Row, key string) int {
	switch v := row[key].(type) {
	case int64:
		return int(v)
	case int:
		return v
	case float64:
		return int(v)
	default:
		return 0
	}
}
