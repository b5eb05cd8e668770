// Package login maps authenticated IdP profiles onto existing directory
// accounts. It never creates accounts: provisioning happens over SCIM, and
// the first successful login binds the IdP subject id to the pre-provisioned
// record.
package login

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	apperrors "github.com/dirbridge/dirbridge/internal/common/errors"
	"github.com/dirbridge/dirbridge/internal/directory"
)

// Profile is the identity asserted by a completed IdP authentication.
type Profile struct {
	SubjectID   string `json:"subjectId"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}

// MatchKind tags how a profile was resolved to a directory record.
type MatchKind int

const (
	Unmatched MatchKind = iota
	MatchedByStableID
	MatchedByEmail
)

func (k MatchKind) String() string {
	switch k {
	case MatchedByStableID:
		return "stable_id"
	case MatchedByEmail:
		return "email"
	default:
		return "unmatched"
	}
}

// Match is the outcome of the two-step lookup.
type Match struct {
	Kind MatchKind
	User *directory.User
}

// Reconciler binds external identities to directory records.
type Reconciler struct {
	store  directory.Store
	logger *zap.Logger
}

// NewReconciler creates a login reconciler over the directory store.
func NewReconciler(store directory.Store, logger *zap.Logger) *Reconciler {
	return &Reconciler{store: store, logger: logger}
}

// resolve performs the two-key lookup: the stable subject id first, then the
// human-meaningful email against the userName key. The precedence lets an
// administrator pre-provision accounts by email and have them bound to the
// IdP subject id on first login.
func (r *Reconciler) resolve(ctx context.Context, p Profile) (Match, error) {
	user, err := r.store.GetByKeycloakID(ctx, p.SubjectID)
	if err == nil {
		return Match{Kind: MatchedByStableID, User: user}, nil
	}
	if err != directory.ErrNotFound {
		return Match{}, fmt.Errorf("lookup by subject id: %w", err)
	}

	if p.Email != "" {
		user, err = r.store.GetByUserName(ctx, p.Email)
		if err == nil {
			return Match{Kind: MatchedByEmail, User: user}, nil
		}
		if err != directory.ErrNotFound {
			return Match{}, fmt.Errorf("lookup by email: %w", err)
		}
	}

	return Match{Kind: Unmatched}, nil
}

// Reconcile resolves a profile to a directory record, enforces the
// activation policy, and synchronizes profile fields. A rejected login
// never creates or mutates an account.
func (r *Reconciler) Reconcile(ctx context.Context, p Profile) (*directory.User, error) {
	if p.SubjectID == "" {
		return nil, apperrors.BadRequest("subjectId is required")
	}

	match, err := r.resolve(ctx, p)
	if err != nil {
		return nil, apperrors.Internal("login lookup failed", err)
	}

	if match.Kind == Unmatched {
		r.logger.Warn("Login rejected: user not provisioned",
			zap.String("email", p.Email),
			zap.String("display_name", p.DisplayName))
		return nil, apperrors.NotProvisioned()
	}

	if !match.User.Active {
		r.logger.Warn("Login rejected: account inactive",
			zap.String("user_name", match.User.UserName),
			zap.String("match", match.Kind.String()))
		return nil, apperrors.AccountInactive()
	}

	// Write-through sync: bind the subject id permanently and converge the
	// profile fields. Repeated identical logins are no-ops field-wise.
	fields := directory.UserFields{KeycloakID: &p.SubjectID}
	if p.Email != "" {
		fields.Email = &p.Email
	}
	if p.DisplayName != "" {
		fields.Name = &p.DisplayName
	}

	user, err := r.store.Update(ctx, match.User.ID, fields)
	if err != nil {
		if directory.IsConflict(err) {
			// The subject id is already bound to a different record.
			return nil, apperrors.Conflict("identity is bound to another account")
		}
		return nil, apperrors.Internal("login sync failed", err)
	}

	r.logger.Info("Login reconciled",
		zap.Int64("user_id", user.ID),
		zap.String("user_name", user.UserName),
		zap.String("match", match.Kind.String()))

	return user, nil
}
