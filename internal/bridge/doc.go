// Package bridge exposes the wallet registry and the outbound launcher to a
// host runtime over two named method channels.
//
// The client channel carries dApp-side traffic (launchIntent,
// isWalletEndpointAvailable). The wallet channel carries session commands
// from the consumer layer and request notifications forwarded by a native
// wallet-session collaborator.
package bridge
