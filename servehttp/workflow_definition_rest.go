package servehttp

import (
	"net/http"
	"taskflow/bizerror"
	"taskflow/domain"
	"taskflow/domain/flow"
	"taskflow/session"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

func RegisterWorkflowDefinitionHandler(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group("/v1/workflow-definitions", middleWares...)
	g.POST("", handleCreateWorkflowDefinition)
	g.GET("", handleQueryWorkflowDefinitions)
	g.GET(":id", handleDetailWorkflowDefinition)
	g.DELETE(":id", handleDeleteWorkflowDefinition)
	g.PUT(":id/activation", handleActivateWorkflowDefinition)
	g.DELETE(":id/activation", handleDeactivateWorkflowDefinition)
}

func handleCreateWorkflowDefinition(c *gin.Context) {
	creation := flow.WorkflowDefinitionCreation{}
	bindJSON(c, &creation)

	def, err := flow.CreateWorkflowDefinitionFunc(&creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, def)
}

func handleQueryWorkflowDefinitions(c *gin.Context) {
	query := domain.WorkflowDefinitionQuery{}
	if err := c.ShouldBindWith(&query, binding.Query); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	defs, err := flow.QueryWorkflowDefinitionsFunc(&query, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, defs)
}

func handleDetailWorkflowDefinition(c *gin.Context) {
	def, err := flow.DetailWorkflowDefinitionFunc(pathID(c, "id"), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, def)
}

func handleDeleteWorkflowDefinition(c *gin.Context) {
	if err := flow.DeleteWorkflowDefinitionFunc(pathID(c, "id"), session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.Status(http.StatusNoContent)
}

func handleActivateWorkflowDefinition(c *gin.Context) {
	if err := flow.ActivateWorkflowDefinitionFunc(pathID(c, "id"), session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.Status(http.StatusNoContent)
}

func handleDeactivateWorkflowDefinition(c *gin.Context) {
	if err := flow.DeactivateWorkflowDefinitionFunc(pathID(c, "id"), session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.Status(http.StatusNoContent)
}
