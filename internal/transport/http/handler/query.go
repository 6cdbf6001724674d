package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"docquery/internal/app"
	"docquery/internal/transport/http/response"
)

type QueryHandler struct {
	queryService *app.QueryService
}

type AskRequest struct {
	Question   string            `json:"question" binding:"required"`
	DocumentID string            `json:"document_id"`
	History    []app.HistoryTurn `json:"history"`
}

func NewQueryHandler(queryService *app.QueryService) *QueryHandler {
	return &QueryHandler{queryService: queryService}
}

func (h *QueryHandler) Ask(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	result, err := h.queryService.Ask(c.Request.Context(), app.AskInput{
		UserID:     userID,
		Question:   req.Question,
		DocumentID: req.DocumentID,
		History:    req.History,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrEmptyQuestion), errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrNoDocuments):
			response.Error(c, http.StatusBadRequest, response.CodeNoDocuments, err.Error())
		case errors.Is(err, app.ErrNoRelevantContent):
			response.Error(c, http.StatusBadRequest, response.CodeNoRelevantContent, err.Error())
		case errors.Is(err, app.ErrDocumentNotFound):
			response.Error(c, http.StatusNotFound, response.CodeNotFound, err.Error())
		default:
			response.Error(c, http.StatusBadGateway, response.CodeProviderError, "ask failed")
		}
		return
	}

	response.OK(c, result)
}
