package gateway

import "errors"

// ErrProviderRequired is returned by NewServer when no provider handler
// was supplied via WithProvider.
var ErrProviderRequired = errors.New("gateway: provider handler required")

// ErrUnknownTool is returned when a Request names a tool outside the
// five meta-tools this package knows how to route.
var ErrUnknownTool = errors.New("gateway: unknown meta-tool")
