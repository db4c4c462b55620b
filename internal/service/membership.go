package service

import (
	"strings"

	"github.com/discussion-activity-api/internal/models"
)

// IsMember checks user against a comma separated list of user names and
// @groups
func IsMember(list string, user models.RequestUser) bool {
	for _, entry := range strings.Split(list, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if group, ok := strings.CutPrefix(entry, "@"); ok {
			for _, g := range user.Groups {
				if strings.TrimSpace(g) == group {
					return true
				}
			}
			continue
		}
		if user.Name != "" && entry == user.Name {
			return true
		}
	}
	return false
}
