package servehttp

import (
	"net/http"
	"taskflow/domain/approval"
	"taskflow/session"

	"github.com/gin-gonic/gin"
)

func RegisterApprovalHandler(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group("/v1/tasks/:taskId", middleWares...)
	g.POST("estimation", handleSubmitEstimate)
	g.GET("workflow", handleGetWorkflowSummary)
	g.POST("workflow/actions", handlePerformStepAction)
	g.POST("workflow/final-approval", handleFinalApprove)
}

func handleSubmitEstimate(c *gin.Context) {
	taskID := pathID(c, "taskId")
	submission := approval.EstimateSubmission{}
	bindJSON(c, &submission)

	inst, err := approval.SubmitEstimateFunc(taskID, &submission, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, inst)
}

func handlePerformStepAction(c *gin.Context) {
	taskID := pathID(c, "taskId")
	req := approval.StepActionRequest{}
	bindJSON(c, &req)

	inst, err := approval.PerformStepActionFunc(taskID, &req, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, inst)
}

func handleFinalApprove(c *gin.Context) {
	taskID := pathID(c, "taskId")
	req := approval.FinalApprovalRequest{}
	bindJSON(c, &req)

	task, err := approval.FinalApproveFunc(taskID, &req, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, task)
}

// handleGetWorkflowSummary answers null before the first submission.
func handleGetWorkflowSummary(c *gin.Context) {
	summary, err := approval.GetWorkflowSummaryFunc(pathID(c, "taskId"), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, summary)
}
