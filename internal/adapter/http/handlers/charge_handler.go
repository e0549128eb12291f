package handlers

import (
	"errors"
	"net/http"

	request "taprelay/internal/adapter/http/dto/request"
	response "taprelay/internal/adapter/http/dto/response"
	"taprelay/internal/usecase"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

var errInvalidChargePayload = errors.New("invalid charge payload")

// ChargeHandler handles HTTP requests for the charge relay.
//
// All failures, transport and provider alike, come back as HTTP 400 with a
// {success:false, error} envelope so the browser client only ever deals with
// two branches.

type ChargeHandler struct {
	usecase usecase.IChargeUseCase
}

func NewChargeHandler(uc usecase.IChargeUseCase) *ChargeHandler {
	return &ChargeHandler{usecase: uc}
}

// CreateCharge forwards a tokenized payment to the provider.
func (h *ChargeHandler) CreateCharge(c *gin.Context) {
	var payload request.ChargeCreateRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		log.Warnf("[charge][handler] invalid payload err=%v", err)
		c.JSON(http.StatusBadRequest, response.FromError(errInvalidChargePayload))
		return
	}
	log.Infof("[charge][handler] create start token=%s", payload.Token)

	charge, err := h.usecase.Create(c.Request.Context(), payload.ToChargeRequest())
	if err != nil {
		log.Warnf("[charge][handler] create failed err=%v", err)
		c.JSON(http.StatusBadRequest, response.FromError(err))
		return
	}
	log.Infof("[charge][handler] create success charge_id=%s status=%s", charge.ID, charge.Status)

	c.JSON(http.StatusOK, response.FromCharge(charge))
}

// GetCharge returns the current provider status for a charge; this is the
// endpoint the polling loop hits every tick.
func (h *ChargeHandler) GetCharge(c *gin.Context) {
	id := c.Param("id")
	log.Infof("[charge][handler] status start charge_id=%s", id)

	charge, err := h.usecase.GetByID(c.Request.Context(), id)
	if err != nil {
		log.Warnf("[charge][handler] status failed charge_id=%s err=%v", id, err)
		c.JSON(http.StatusBadRequest, response.FromError(err))
		return
	}
	log.Infof("[charge][handler] status success charge_id=%s status=%s", charge.ID, charge.Status)

	c.JSON(http.StatusOK, response.FromCharge(charge))
}
