package handler

import (
	"net/http"

	"walletv5/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo-contrib/pprof"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/samber/do"
)

type Config struct {
	Container *do.Injector
	Mode      string
	Origins   []string
}

func New(cfg *Config) (http.Handler, error) {
	r := echo.New()
	r.Pre(middleware.RemoveTrailingSlash())
	if cfg.Mode == "debug" {
		r.Debug = true
		pprof.Register(r)
	}

	r.JSONSerializer = httpx.SegmentJSONSerializer{}
	r.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339}\t${method}\t${uri}\t${status}\t${latency_human}\n",
	}))
	r.Use(middleware.Recover())

	r.GET("", func(c echo.Context) error {
		return c.String(http.StatusOK, "wallet v5")
	})

	routesAPIv1 := r.Group("/api/v1")
	{
		authentication, err := do.Invoke[*services.Authentication](cfg.Container)
		if err != nil {
			return nil, err
		}
		cors := middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:     cfg.Origins,
			AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
			AllowCredentials: true,
			MaxAge:           60 * 60,
		})

		routesAPIv1.Use(cors)
		routesAPIv1.Use(Authn(authentication)) // Authn will NOT terminate unauthenticated request.
		routesAPIv1.GET("", Hello)

		w := groupWallet{cfg.Container}
		routesAPIv1.POST("/wallets", w.Deploy, RequireOperator)

		routesAPIv1Wallet := routesAPIv1.Group("/wallets/:address")
		{
			routesAPIv1Wallet.POST("/external", w.External)
			routesAPIv1Wallet.POST("/internal", w.Internal)

			routesAPIv1Wallet.GET("/seqno", w.Seqno)
			routesAPIv1Wallet.GET("/public-key", w.PublicKey)
			routesAPIv1Wallet.GET("/wallet-id", w.WalletID)
			routesAPIv1Wallet.GET("/wallet-id-parsed", w.WalletIDParsed)
			routesAPIv1Wallet.GET("/extensions", w.Extensions)
			routesAPIv1Wallet.GET("/extensions-array", w.ExtensionsArray)
			routesAPIv1Wallet.GET("/signature-allowed", w.SignatureAllowed)
			routesAPIv1Wallet.GET("/outbox", w.Outbox)
		}
	}

	return r, nil
}

func Hello(c echo.Context) error {
	return httpx.RestAbort(c, "hello world", nil)
}
