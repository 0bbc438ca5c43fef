package handler

import (
	"encoding/json"
	"log/slog"

	"github.com/jaruizra/Remote-SteamDeck-RC-for-OpenHD/apitypes"
	"github.com/jaruizra/Remote-SteamDeck-RC-for-OpenHD/internal/server/api"
)

// ServerName identifies deckrc in ping replies.
const ServerName = "deckrc"

// Ping returns a handler for the "ping" endpoint.
// It provides a minimal identity + version response.
func Ping(version string) api.HandlerFunc {
	if version == "" {
		version = "dev"
	}
	return func(_ *api.Request, res *api.Response, _ *slog.Logger) error {
		b, err := json.Marshal(apitypes.PingResponse{Server: ServerName, Version: version})
		if err != nil {
			return err
		}
		res.JSON = string(b)
		return nil
	}
}
