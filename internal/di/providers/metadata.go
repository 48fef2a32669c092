package providers

import (
	"github.com/samber/do/v2"

	"github.com/juzzt/juzzt-server/internal/config"
	"github.com/juzzt/juzzt-server/internal/logger"
	"github.com/juzzt/juzzt-server/internal/metadata/coverart"
	"github.com/juzzt/juzzt-server/internal/metadata/musicbrainz"
)

// MusicBrainzHandle wraps the MusicBrainz client with shutdown capability.
type MusicBrainzHandle struct {
	*musicbrainz.Client
}

// Shutdown implements do.Shutdownable.
func (h *MusicBrainzHandle) Shutdown() error {
	h.Close()
	return nil
}

// ProvideMusicBrainzClient provides the MusicBrainz release-group lookup client.
func ProvideMusicBrainzClient(i do.Injector) (*MusicBrainzHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	client := musicbrainz.NewClient(log.Logger, musicbrainz.Options{
		BaseURL:           cfg.MusicBrainz.BaseURL,
		UserAgent:         cfg.MusicBrainz.UserAgent,
		RequestsPerSecond: cfg.MusicBrainz.RequestsPerSecond,
	})

	return &MusicBrainzHandle{Client: client}, nil
}

// ProvideCoverArtClient provides the Cover Art Archive client.
func ProvideCoverArtClient(i do.Injector) (*coverart.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	return coverart.NewClient(log.Logger, cfg.CoverArt.BaseURL), nil
}
