package providers

import (
	"github.com/samber/do/v2"

	"github.com/juzzt/juzzt-server/internal/config"
	"github.com/juzzt/juzzt-server/internal/logger"
	"github.com/juzzt/juzzt-server/internal/media/images"
)

// ProvideImageStorage provides local image storage for cover uploads.
func ProvideImageStorage(i do.Injector) (*images.Storage, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	storage, err := images.NewStorage(cfg.ImageHost.LocalPath)
	if err != nil {
		return nil, err
	}

	log.Info("Image storage initialized", "path", cfg.ImageHost.LocalPath)

	return storage, nil
}

// ProvideImageUploader provides the cover image uploader.
func ProvideImageUploader(i do.Injector) (*images.Uploader, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storage := do.MustInvoke[*images.Storage](i)

	return images.NewUploader(log.Logger, storage, cfg.ImageHost.UploadURL, cfg.ImageHost.APIKey), nil
}
