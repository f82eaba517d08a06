package handler

import (
	"github.com/gin-gonic/gin"

	v1 "github.com/insighter-ai/insighter/app/logic/v1"
	"github.com/insighter-ai/insighter/app/response"
)

func (s *HttpSrv) ListAlerts(c *gin.Context) {
	alerts, err := v1.NewAlertLogic(c, s.Core).ListAlerts(c.Param("projectid"))
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, alerts)
}

func (s *HttpSrv) ClearAlert(c *gin.Context) {
	if err := v1.NewAlertLogic(c, s.Core).ClearAlert(c.Param("projectid"), c.Param("alertid")); err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, nil)
}

func (s *HttpSrv) ClearAlerts(c *gin.Context) {
	if err := v1.NewAlertLogic(c, s.Core).ClearAlerts(c.Param("projectid")); err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, nil)
}
