package bootstrap

import (
	"errors"
	"net/http"

	"github.com/pdcgo/collection_service/config"
	"github.com/pdcgo/shared/authorization"
	"github.com/pdcgo/shared/interfaces/authorization_iface"
	"github.com/pdcgo/shared/pkg/ware_cache"
)

var ErrNoBackOfficeDatabase = errors.New("jwt authorization needs the back office database")

func NewAuthorization(
	cfg *config.Config,
	backOffice *BackOfficeDatabase,
	cache ware_cache.Cache,
) (authorization_iface.Authorization, error) {
	if cfg.Auth.Mode != config.AuthJwt {
		return &deviceAuthorization{}, nil
	}

	if backOffice.DB == nil {
		return nil, ErrNoBackOfficeDatabase
	}

	return authorization.NewAuthorization(cache, backOffice.DB, cfg.Auth.JwtSecret), nil
}

// deviceAuthorization trusts every caller. It is used when the agent only
// listens on the device itself.
type deviceAuthorization struct{}

type deviceIdentity struct{}

// Err implements authorization_iface.AuthIdentity.
func (d *deviceIdentity) Err() error {
	return nil
}

// HasPermission implements authorization_iface.AuthIdentity.
func (d *deviceIdentity) HasPermission(perms authorization_iface.CheckPermissionGroup) authorization_iface.AuthIdentity {
	return d
}

// Identity implements authorization_iface.AuthIdentity.
func (d *deviceIdentity) Identity() authorization_iface.Identity {
	return nil
}

// ApiQueryCheckPermission implements authorization_iface.Authorization.
func (d *deviceAuthorization) ApiQueryCheckPermission(identity authorization_iface.Identity, query authorization_iface.PermissionQuery) (bool, error) {
	return true, nil
}

// AuthIdentityFromHeader implements authorization_iface.Authorization.
func (d *deviceAuthorization) AuthIdentityFromHeader(header http.Header) authorization_iface.AuthIdentity {
	return &deviceIdentity{}
}

// AuthIdentityFromToken implements authorization_iface.Authorization.
func (d *deviceAuthorization) AuthIdentityFromToken(token string) authorization_iface.AuthIdentity {
	return &deviceIdentity{}
}

// HasPermission implements authorization_iface.Authorization.
func (d *deviceAuthorization) HasPermission(identity authorization_iface.Identity, perms authorization_iface.CheckPermissionGroup) error {
	return nil
}
