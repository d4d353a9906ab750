package http

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/tutorconnect/tutor-connect/internal/config"
)

// ServerConfig builds the fiber settings for cfg. Requests may carry a full
// upload plus form overhead. The proxy header is ignored unless the request
// comes from one of the trusted proxies.
func ServerConfig(cfg config.Config, logger *zap.Logger) fiber.Config {
	fc := fiber.Config{
		AppName:      cfg.App.Name,
		BodyLimit:    int(cfg.Upload.MaxBytes) + 1<<20,
		ErrorHandler: ErrorHandler(logger),
	}
	if cfg.App.ProxyHeader != "" {
		fc.ProxyHeader = cfg.App.ProxyHeader
		fc.EnableTrustedProxyCheck = true
		fc.TrustedProxies = cfg.App.TrustedProxies
		fc.EnableIPValidation = true
	}
	return fc
}
