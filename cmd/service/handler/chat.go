package handler

import (
	"github.com/gin-gonic/gin"

	v1 "github.com/insighter-ai/insighter/app/logic/v1"
	"github.com/insighter-ai/insighter/app/response"
	"github.com/insighter-ai/insighter/pkg/utils"
)

type ChatRequest struct {
	Query string `json:"query" binding:"required"`
}

func (s *HttpSrv) Chat(c *gin.Context) {
	var req ChatRequest
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	reply, err := v1.NewChatLogic(c, s.Core).ProcessQuery(c.Param("projectid"), req.Query)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, reply)
}

func (s *HttpSrv) ChatHistory(c *gin.Context) {
	messages, err := v1.NewChatLogic(c, s.Core).History(c.Param("projectid"))
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, messages)
}

func (s *HttpSrv) ClearChatHistory(c *gin.Context) {
	if err := v1.NewChatLogic(c, s.Core).ClearHistory(c.Param("projectid")); err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, nil)
}
