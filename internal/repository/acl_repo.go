package repository

import (
	"context"
	"strings"

	"github.com/discussion-activity-api/internal/database"
	"github.com/discussion-activity-api/internal/models"
	"github.com/lib/pq"
)

// everyone is the subject matching all callers, including anonymous ones
const everyone = "@ALL"

// ACLRule grants a level on a scope ("ns:page", "ns:*" or "*") to a subject
// (a user name or an @group)
type ACLRule struct {
	Scope   string
	Subject string
	Level   models.Permission
}

// aclRepo is the concrete implementation of ACLChecker
type aclRepo struct {
	db *database.DB
}

// NewACLRepo creates a new ACL checker backed by the acl_rules table
func NewACLRepo(db *database.DB) ACLChecker {
	return &aclRepo{db: db}
}

// PermissionLevel looks up the rules of the most specific scope that has any
// rule for the user and returns the highest level among them
func (r *aclRepo) PermissionLevel(ctx context.Context, user models.RequestUser, id string) (models.Permission, error) {
	scopes := ACLScopes(id)
	subjects := ACLSubjects(user)

	query := `SELECT scope, subject, level FROM acl_rules WHERE scope = ANY($1) AND subject = ANY($2)`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(scopes), pq.Array(subjects))
	if err != nil {
		return models.PermNone, err
	}
	defer rows.Close()

	var rules []ACLRule
	for rows.Next() {
		var rule ACLRule
		if err := rows.Scan(&rule.Scope, &rule.Subject, &rule.Level); err != nil {
			return models.PermNone, err
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return models.PermNone, err
	}

	return ResolveACL(scopes, rules), nil
}

// ACLScopes lists the scopes that apply to id, most specific first
func ACLScopes(id string) []string {
	scopes := []string{id}
	parts := strings.Split(id, ":")
	for i := len(parts) - 1; i > 0; i-- {
		scopes = append(scopes, strings.Join(parts[:i], ":")+":*")
	}
	return append(scopes, "*")
}

// ACLSubjects lists the rule subjects that match user
func ACLSubjects(user models.RequestUser) []string {
	subjects := make([]string, 0, len(user.Groups)+2)
	if user.Name != "" {
		subjects = append(subjects, user.Name)
	}
	for _, g := range user.Groups {
		if g = strings.TrimSpace(g); g != "" {
			subjects = append(subjects, "@"+g)
		}
	}
	return append(subjects, everyone)
}

// ResolveACL picks the first scope in order that has rules and returns the
// highest level granted there
func ResolveACL(scopes []string, rules []ACLRule) models.Permission {
	for _, scope := range scopes {
		found := false
		level := models.PermNone
		for _, rule := range rules {
			if rule.Scope != scope {
				continue
			}
			found = true
			if rule.Level > level {
				level = rule.Level
			}
		}
		if found {
			return level
		}
	}
	return models.PermNone
}
