// Package pluginhost loads and supervises out-of-process Renderer and
// MediaSource implementations over github.com/hashicorp/go-plugin, the way
// viewra's pluginmodule.ExternalPluginManager supervises external plugin
// binaries: discover a plugin directory, launch each binary behind a
// handshake, monitor it for crashes, and restart it up to a configured
// attempt limit.
package pluginhost

import (
	goplugin "github.com/hashicorp/go-plugin"
)

// Handshake is the magic-cookie handshake every playcore plugin binary must
// present before its process is trusted, mirroring viewra's
// ExternalPluginHandshake.
var Handshake = goplugin.HandshakeConfig{
	ProtocolVersion:  1,
	MagicCookieKey:   "PLAYCORE_PLUGIN",
	MagicCookieValue: "playcore_plugin_magic_cookie_v1",
}

// Kind identifies which engine collaborator a plugin binary provides.
type Kind string

const (
	KindMediaSource Kind = "media_source"
	KindRenderer    Kind = "renderer"
)

// pluginMap is passed to goplugin.ClientConfig.Plugins; the dispensed name
// is the Kind the caller loaded the binary as.
func pluginMap() map[string]goplugin.Plugin {
	return map[string]goplugin.Plugin{
		string(KindMediaSource): &MediaSourcePlugin{},
		string(KindRenderer):    &RendererPlugin{},
	}
}
