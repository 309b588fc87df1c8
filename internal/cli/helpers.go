package cli

import (
	"gearhub-client/internal/resources"

	xerrors "gearhub-client/internal/pkg/errors"
)

var (
	flagPage  int
	flagLimit int
)

func init() {
	RootCmd.PersistentFlags().IntVar(&flagPage, "page", 0, "page number for list commands")
	RootCmd.PersistentFlags().IntVar(&flagLimit, "limit", 0, "page size for list commands")
}

func pagerFlags() resources.Pager {
	return resources.Pager{Page: flagPage, Limit: flagLimit}
}

func requireLogin() error {
	if !app.Session.IsLoggedIn() {
		return xerrors.ErrNotLoggedIn
	}
	return nil
}
