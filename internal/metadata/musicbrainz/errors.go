package musicbrainz

import "errors"

// Sentinel errors for MusicBrainz API operations.
var (
	ErrRateLimited = errors.New("musicbrainz: rate limited by server")
	ErrBadRequest  = errors.New("musicbrainz: bad request")
	ErrServer      = errors.New("musicbrainz: server error")
)
