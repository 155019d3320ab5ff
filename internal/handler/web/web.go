// Package web contains the web server and registered routes
package web

import (
	"bytes"
	"context"
	"crypto/x509"
	"encoding/pem"
	"io"
	"net/http"
	"os"

	"github.com/labstack/echo/v4"
	"github.com/sellerops/ozon-supply-connector/internal/app/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gopkg.in/square/go-jose.v2"
)

// SupplyService handles the supply management endpoints.
type SupplyService interface {
	HandleCreateSupplies(c echo.Context) error
	HandleListSupplies(c echo.Context) error
	HandleGetSupply(c echo.Context) error
	HandleCancelSupply(c echo.Context) error
	HandleRetrySupply(c echo.Context) error
	HandlePurgeSupplies(c echo.Context) error
	HandleTick(c echo.Context) error
}

// ConfigureHTTPServers creates an HTTP server with standard middleware
// returns the echo engine for serving API
func ConfigureHTTPServers(lifecycle fx.Lifecycle, shutdowner fx.Shutdowner, cfg *config.Config) (*echo.Echo, error) {
	e := echo.New()

	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := e.Start(cfg.ListenAddr); err != nil && err != http.ErrServerClosed {
					zap.L().Error("failed to start echo server", zap.Error(err))
					if err = shutdowner.Shutdown(); err != nil {
						zap.L().Error("fx shutdown error", zap.Error(err))
					}
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return e.Shutdown(ctx)
		},
	})

	return e, nil
}

// RegisterHandlers wires the management routes. Read endpoints stay in the
// clear, mutating endpoints go through the payload encryption middleware.
func RegisterHandlers(e *echo.Echo, cfg *config.Config, service SupplyService) error {
	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})

	e.GET("/v1/supplies", service.HandleListSupplies)
	e.GET("/v1/supplies/:id", service.HandleGetSupply)

	g := e.Group("/v1")
	addPayloadEncryptionMiddleware(g, cfg.PayloadEncryptionKeyPath())
	g.POST("/supplies", service.HandleCreateSupplies)
	g.POST("/supplies/:id/cancel", service.HandleCancelSupply)
	g.POST("/supplies/:id/retry", service.HandleRetrySupply)
	g.POST("/supplies/purge", service.HandlePurgeSupplies)
	g.POST("/tick", service.HandleTick)

	return nil
}

func addPayloadEncryptionMiddleware(g *echo.Group, keyPath string) {
	privateKeyPemData, err := os.ReadFile(keyPath)
	if err != nil {
		zap.L().Error("payload encryption key not found or readable", zap.Error(err))
		return
	}
	p, _ := pem.Decode(privateKeyPemData)
	if p == nil {
		zap.L().Error("payload encryption key not in PEM format")
		return
	}
	pk, err := x509.ParsePKCS1PrivateKey(p.Bytes)
	if err != nil {
		zap.L().Error("payload encryption key not properly encoded", zap.Error(err))
		return
	}
	zap.L().Info("adding payload encryption middleware")
	g.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			body, err := io.ReadAll(req.Body)
			if err != nil {
				return err
			}
			if len(body) == 0 {
				return next(c)
			}
			object, err := jose.ParseEncrypted(string(body))
			if err != nil {
				return err
			}
			decrypted, err := object.Decrypt(pk)
			if err != nil {
				return err
			}
			req.Body = io.NopCloser(bytes.NewReader(decrypted))
			return next(c)
		}
	})
}
