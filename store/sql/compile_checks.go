package sqlstore

import "github.com/goliatone/go-authkit/core"

var (
	_ core.AccountStore           = (*AccountStore)(nil)
	_ core.RefreshTokenStore      = (*RefreshTokenStore)(nil)
	_ core.StoreProvider          = (*RepositoryFactory)(nil)
	_ core.RepositoryStoreFactory = (*RepositoryFactory)(nil)
)
