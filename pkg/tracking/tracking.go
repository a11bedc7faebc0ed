package tracking

import (
	"net/http"

	"github.com/minchang/zipscout/pkg/types"
)

type Tracking interface {
	TrackSession(sessionId int, r *http.Request)
	TrackSearch(sessionId int, dataset types.DatasetId, snapshot types.Snapshot, results int, r *http.Request)
	TrackClick(sessionId int, itemId string, position float32) error
	TrackFavorite(sessionId int, itemId string, added bool) error
	TrackPresetApplied(sessionId int, presetId string) error
}
