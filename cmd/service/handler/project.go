package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	v1 "github.com/insighter-ai/insighter/app/logic/v1"
	"github.com/insighter-ai/insighter/app/response"
	"github.com/insighter-ai/insighter/pkg/errors"
	"github.com/insighter-ai/insighter/pkg/i18n"
	"github.com/insighter-ai/insighter/pkg/utils"
)

type CreateProjectRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

func (s *HttpSrv) CreateProject(c *gin.Context) {
	var req CreateProjectRequest
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	project, err := v1.NewProjectLogic(c, s.Core).CreateProject(req.Name, req.Description)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, project)
}

func (s *HttpSrv) ListProjects(c *gin.Context) {
	projects, err := v1.NewProjectLogic(c, s.Core).ListProjects()
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, projects)
}

func (s *HttpSrv) GetProject(c *gin.Context) {
	project, err := v1.NewProjectLogic(c, s.Core).GetProject(c.Param("projectid"))
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, project)
}

func (s *HttpSrv) DeleteProject(c *gin.Context) {
	if err := v1.NewProjectLogic(c, s.Core).DeleteProject(c.Param("projectid")); err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, nil)
}

func (s *HttpSrv) UploadDataset(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.APIError(c, errors.New("UploadDataset.FormFile", i18n.ERROR_INVALIDARGUMENT, err).Code(http.StatusBadRequest))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.APIError(c, errors.New("UploadDataset.Open", i18n.ERROR_INTERNAL, err))
		return
	}
	defer file.Close()

	dataset, err := v1.NewProjectLogic(c, s.Core).UploadDataset(c.Param("projectid"), fileHeader.Filename, file)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, dataset)
}

func (s *HttpSrv) ListDatasets(c *gin.Context) {
	datasets, err := v1.NewProjectLogic(c, s.Core).ListDatasets(c.Param("projectid"))
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, datasets)
}

func (s *HttpSrv) DeleteDataset(c *gin.Context) {
	if err := v1.NewProjectLogic(c, s.Core).DeleteDataset(c.Param("projectid"), c.Param("datasetid")); err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, nil)
}

type PinInsightRequest struct {
	DatasetID   string `json:"dataset_id" binding:"required"`
	QuestionKey string `json:"question_key" binding:"required"`
}

func (s *HttpSrv) PinInsight(c *gin.Context) {
	var req PinInsightRequest
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	pin, err := v1.NewProjectLogic(c, s.Core).PinInsight(c.Param("projectid"), req.DatasetID, req.QuestionKey)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, pin)
}

func (s *HttpSrv) UnpinInsight(c *gin.Context) {
	if err := v1.NewProjectLogic(c, s.Core).UnpinInsight(c.Param("projectid"), c.Param("pinid")); err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, nil)
}

func (s *HttpSrv) ListPinnedInsights(c *gin.Context) {
	pins, err := v1.NewProjectLogic(c, s.Core).ListPinnedInsights(c.Param("projectid"))
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, pins)
}
