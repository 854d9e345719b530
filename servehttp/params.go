package servehttp

import (
	"fmt"
	"taskflow/bizerror"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

func pathID(c *gin.Context, name string) types.ID {
	id, err := types.ParseID(c.Param(name))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: fmt.Errorf("invalid id '%s'", c.Param(name))})
	}
	return id
}

func bindJSON(c *gin.Context, target interface{}) {
	if err := c.ShouldBindBodyWith(target, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
}
