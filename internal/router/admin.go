package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// seedDemo 初始化演示数据，仅限携带管理令牌的请求。
func (h *Handlers) seedDemo(c *gin.Context) {
	if c.GetHeader("X-Admin-Token") != h.cfg.AdminToken {
		c.JSON(http.StatusForbidden, gin.H{"code": 403, "msg": "管理令牌无效"})
		return
	}
	seeded, err := h.st.SeedDemo()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
		return
	}
	if !seeded {
		c.JSON(http.StatusOK, gin.H{"code": 0, "msg": "已有数据，跳过"})
		return
	}
	h.invalidateMenu(c)
	c.JSON(http.StatusOK, gin.H{"code": 0, "msg": "演示数据已写入"})
}
