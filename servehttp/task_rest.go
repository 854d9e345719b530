package servehttp

import (
	"net/http"
	"taskflow/domain/task"
	"taskflow/session"

	"github.com/gin-gonic/gin"
)

func RegisterTaskHandler(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	r.Group("/v1/projects", middleWares...).POST("", handleCreateProject)

	g := r.Group("/v1/tasks", middleWares...)
	g.POST("", handleCreateTask)
	g.GET(":taskId", handleDetailTask)
	g.POST(":taskId/assignments", handleAssignTask)
}

func handleCreateProject(c *gin.Context) {
	creation := task.ProjectCreation{}
	bindJSON(c, &creation)
	project, err := task.CreateProjectFunc(&creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, project)
}

func handleCreateTask(c *gin.Context) {
	creation := task.TaskCreation{}
	bindJSON(c, &creation)
	t, err := task.CreateTaskFunc(&creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, t)
}

func handleDetailTask(c *gin.Context) {
	t, err := task.DetailTaskFunc(pathID(c, "taskId"), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, t)
}

func handleAssignTask(c *gin.Context) {
	taskID := pathID(c, "taskId")
	creation := task.AssignmentCreation{}
	bindJSON(c, &creation)
	assignment, err := task.AssignTaskFunc(taskID, &creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, assignment)
}
