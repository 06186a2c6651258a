package domain

import (
	"strings"
	"sync"

	"github.com/google/uuid"
)

// PermissionUser is granted to every user.
const PermissionUser = "%user"

// PermissionAll grants every permission.
const PermissionAll = "*"

// User is a connected player as seen by the framework.
type User struct {
	UUID        uuid.UUID
	DisplayName string

	player *Player

	mu          sync.RWMutex
	permissions map[string]struct{}
}

// OfflineUUID derives the stable identifier for a player name, matching the
// "OfflinePlayer:<name>" scheme used by offline mode voxel servers.
func OfflineUUID(name string) uuid.UUID {
	return uuid.NewMD5(uuid.Nil, []byte("OfflinePlayer:"+name))
}

// NewUser creates a user with a fresh player handle.
func NewUser(id uuid.UUID, displayName string) *User {
	return &User{
		UUID:        id,
		DisplayName: displayName,
		player:      NewPlayer(),
		permissions: make(map[string]struct{}),
	}
}

// Player returns the host handle of this user.
func (u *User) Player() *Player {
	return u.player
}

// Name is the display name. It lets a user act as a command sender.
func (u *User) Name() string {
	return u.DisplayName
}

// SendMessage delivers a chat line to the user.
func (u *User) SendMessage(text string) {
	u.player.Send(Message{Type: MessageChat, Data: text})
}

// Grant adds a permission node.
func (u *User) Grant(node string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.permissions[strings.ToLower(node)] = struct{}{}
}

// Revoke removes a permission node.
func (u *User) Revoke(node string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	delete(u.permissions, strings.ToLower(node))
}

// HasPermission reports whether the user holds the node, "*" or a wildcard
// parent such as "bukkit.command.*".
func (u *User) HasPermission(node string) bool {
	if node == "" || node == PermissionUser {
		return true
	}
	node = strings.ToLower(node)

	u.mu.RLock()
	defer u.mu.RUnlock()
	if _, ok := u.permissions[PermissionAll]; ok {
		return true
	}
	if _, ok := u.permissions[node]; ok {
		return true
	}
	for i := strings.LastIndex(node, "."); i > 0; i = strings.LastIndex(node[:i], ".") {
		if _, ok := u.permissions[node[:i]+".*"]; ok {
			return true
		}
	}
	return false
}
