// Package sdk assembles a ready-to-use restkit client from configuration.
//
//	cfg, err := sdk.LoadConfig()
//	client, err := sdk.New(cfg)
//	me, err := client.Login(ctx)
//
// Component wraps the same wiring in a component.Component so that an
// application can start and stop it with its other components.
package sdk
