package handler

import (
	"strconv"

	"walletv5/internal/models"
	"walletv5/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

type groupWallet struct {
	container *do.Injector
}

func (gr *groupWallet) serviceWallet() (*services.ServiceWallet, error) {
	serviceWallet, err := do.Invoke[*services.ServiceWallet](gr.container)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}
	return serviceWallet, nil
}

func (gr *groupWallet) Deploy(c echo.Context) error {
	ctx := c.Request().Context()

	var payload models.DeployWalletRequest
	if err := c.Bind(&payload); err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Invalid))
	}

	serviceWallet, err := gr.serviceWallet()
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	res, err := serviceWallet.Deploy(ctx, &payload)
	return httpx.RestAbort(c, res, err)
}

func (gr *groupWallet) External(c echo.Context) error {
	ctx := c.Request().Context()

	var payload models.ExternalMessageRequest
	if err := c.Bind(&payload); err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Invalid))
	}

	serviceWallet, err := gr.serviceWallet()
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	res, err := serviceWallet.HandleExternal(ctx, c.Param("address"), &payload)
	return httpx.RestAbort(c, res, err)
}

func (gr *groupWallet) Internal(c echo.Context) error {
	ctx := c.Request().Context()

	var payload models.InternalMessageRequest
	if err := c.Bind(&payload); err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Invalid))
	}

	serviceWallet, err := gr.serviceWallet()
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	res, err := serviceWallet.HandleInternal(ctx, c.Param("address"), &payload)
	return httpx.RestAbort(c, res, err)
}

func (gr *groupWallet) getters(c echo.Context, pick func(*models.WalletGetters) any) error {
	serviceWallet, err := gr.serviceWallet()
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	getters, err := serviceWallet.GetGetters(c.Request().Context(), c.Param("address"))
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}
	return httpx.RestAbort(c, pick(getters), nil)
}

func (gr *groupWallet) Seqno(c echo.Context) error {
	return gr.getters(c, func(g *models.WalletGetters) any { return g.Seqno })
}

func (gr *groupWallet) PublicKey(c echo.Context) error {
	return gr.getters(c, func(g *models.WalletGetters) any { return g.PublicKey })
}

func (gr *groupWallet) WalletID(c echo.Context) error {
	return gr.getters(c, func(g *models.WalletGetters) any { return g.WalletID })
}

func (gr *groupWallet) WalletIDParsed(c echo.Context) error {
	return gr.getters(c, func(g *models.WalletGetters) any { return g.WalletIDParsed })
}

func (gr *groupWallet) Extensions(c echo.Context) error {
	return gr.getters(c, func(g *models.WalletGetters) any { return g.Extensions })
}

func (gr *groupWallet) ExtensionsArray(c echo.Context) error {
	return gr.getters(c, func(g *models.WalletGetters) any { return g.ExtensionsArray })
}

func (gr *groupWallet) SignatureAllowed(c echo.Context) error {
	return gr.getters(c, func(g *models.WalletGetters) any { return g.SignatureAllowed })
}

func (gr *groupWallet) Outbox(c echo.Context) error {
	ctx := c.Request().Context()

	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 0 {
		page = 0
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit <= 0 {
		limit = services.OUT_MESSAGES_DEFAULT_LIMIT
	}
	if limit > services.OUT_MESSAGES_MAX_LIMIT {
		limit = services.OUT_MESSAGES_MAX_LIMIT
	}

	serviceOutbox, err := do.Invoke[*services.ServiceOutbox](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	messages, err := serviceOutbox.ListByWallet(ctx, c.Param("address"), page, limit)
	return httpx.RestAbort(c, messages, err)
}
