package handler

import (
	"github.com/gin-gonic/gin"

	v1 "github.com/insighter-ai/insighter/app/logic/v1"
	"github.com/insighter-ai/insighter/app/response"
)

func (s *HttpSrv) GenerateCatalog(c *gin.Context) {
	catalog, err := v1.NewInsightLogic(c, s.Core).GenerateCatalog(c.Param("projectid"), c.Param("datasetid"))
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, catalog)
}

func (s *HttpSrv) GetCatalog(c *gin.Context) {
	catalog, err := v1.NewInsightLogic(c, s.Core).GetCatalog(c.Param("projectid"), c.Param("datasetid"))
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, catalog)
}
