package identity

import (
	"strings"

	"github.com/google/uuid"
)

// AdminList holds the accounts granted admin rights through configuration
// (ADMIN_EMAILS, ADMIN_USER_IDS) regardless of their stored role.
type AdminList struct {
	emails map[string]bool
	ids    map[string]bool
}

// ParseAdminList reads two comma-separated lists. Entries are trimmed and
// compared case-insensitively.
func ParseAdminList(emails, userIDs string) AdminList {
	return AdminList{emails: csvSet(emails), ids: csvSet(userIDs)}
}

// Contains reports whether the account with this id or email is listed.
func (l AdminList) Contains(userID uuid.UUID, email string) bool {
	if email != "" && l.emails[strings.ToLower(strings.TrimSpace(email))] {
		return true
	}
	return userID != uuid.Nil && l.ids[userID.String()]
}

// Empty is true when neither list names anyone.
func (l AdminList) Empty() bool {
	return len(l.emails) == 0 && len(l.ids) == 0
}

func csvSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, p := range strings.Split(s, ",") {
		if v := strings.ToLower(strings.TrimSpace(p)); v != "" {
			set[v] = true
		}
	}
	return set
}
