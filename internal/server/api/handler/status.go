package handler

import (
	"encoding/json"
	"log/slog"

	"github.com/jaruizra/Remote-SteamDeck-RC-for-OpenHD/apitypes"
	"github.com/jaruizra/Remote-SteamDeck-RC-for-OpenHD/failsafe"
	"github.com/jaruizra/Remote-SteamDeck-RC-for-OpenHD/internal/server/api"
	"github.com/jaruizra/Remote-SteamDeck-RC-for-OpenHD/relay"
)

// Receiver is what the status endpoint reads; *relay.Receiver satisfies it.
type Receiver interface {
	Status() failsafe.Status
	Stats() relay.Stats
}

// Status returns a handler reporting failsafe mode, counters and the
// snapshot that is currently being actuated.
func Status(rx Receiver) api.HandlerFunc {
	return func(_ *api.Request, res *api.Response, _ *slog.Logger) error {
		b, err := json.Marshal(StatusResponse(rx.Status(), rx.Stats()))
		if err != nil {
			return err
		}
		res.JSON = string(b)
		return nil
	}
}

// StatusResponse converts receiver state into its API form.
func StatusResponse(st failsafe.Status, stats relay.Stats) apitypes.StatusResponse {
	out := apitypes.StatusResponse{
		Mode:            st.Output.Mode.String(),
		TimeoutMs:       st.Timeout.Milliseconds(),
		SinceLastMs:     st.SinceLast.Milliseconds(),
		LastSequence:    st.LastSequence,
		Frames:          st.Frames,
		Malformed:       stats.Malformed,
		TransientErrors: stats.TransientErrors,
		Ticks:           stats.Ticks,
		Axes:            st.Output.Snapshot.Axes[:],
		Buttons:         make([]int, len(st.Output.Snapshot.Buttons)),
	}
	for i, v := range st.Output.Snapshot.Buttons {
		out.Buttons[i] = int(v)
	}
	return out
}
